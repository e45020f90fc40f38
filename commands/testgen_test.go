package commands

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/iov-one/fiva/chain"
	"github.com/iov-one/fiva/orm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTestGen(t *testing.T) {
	dir, err := ioutil.TempDir("", "testgen")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	acc := &chain.Account{Code: "wallet", Balance: 1234}
	err = TestGenCmd([]Example{{Filename: "account", Obj: acc}}, []string{dir})
	require.NoError(t, err)

	js, err := ioutil.ReadFile(filepath.Join(dir, "account.json"))
	require.NoError(t, err)
	assert.Contains(t, string(js), `"code": "wallet"`)

	bin, err := ioutil.ReadFile(filepath.Join(dir, "account.bin"))
	require.NoError(t, err)
	var got chain.Account
	require.NoError(t, orm.Unmarshal(bin, &got))
	assert.Equal(t, *acc, got)
}
