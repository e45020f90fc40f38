package server

import (
	"os"
	"testing"
	"time"

	"github.com/iov-one/fiva/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
)

func TestParseStartArgs(t *testing.T) {
	opts, err := parseStartArgs(nil)
	require.NoError(t, err)
	assert.Equal(t, "tcp://localhost:26658", opts.bind)
	assert.Equal(t, "", opts.metrics)
	assert.False(t, opts.debug)

	opts, err = parseStartArgs([]string{"-bind", "tcp://127.0.0.1:1234", "-metrics", ":9100", "-debug"})
	require.NoError(t, err)
	assert.Equal(t, "tcp://127.0.0.1:1234", opts.bind)
	assert.Equal(t, ":9100", opts.metrics)
	assert.True(t, opts.debug)

	_, err = parseStartArgs([]string{"-unknown"})
	assert.True(t, errors.ErrInput.Is(err))
}

func TestServeUntilSignal(t *testing.T) {
	var gotDebug bool
	gen := func(home string, logger log.Logger, debug bool) (abci.Application, error) {
		gotDebug = debug
		return abci.NewBaseApplication(), nil
	}

	stop := make(chan os.Signal, 1)
	done := make(chan error, 1)
	args := []string{"-bind", "tcp://127.0.0.1:0", "-metrics", "127.0.0.1:0", "-debug"}
	go func() { done <- serve(gen, log.NewNopLogger(), "", args, stop) }()

	stop <- os.Interrupt
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
	assert.True(t, gotDebug)
}

func TestServeGeneratorError(t *testing.T) {
	gen := func(string, log.Logger, bool) (abci.Application, error) {
		return nil, errors.ErrDatabase
	}
	err := serve(gen, log.NewNopLogger(), "", nil, nil)
	assert.True(t, errors.ErrDatabase.Is(err))
}
