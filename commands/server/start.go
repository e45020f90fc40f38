package server

import (
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/iov-one/fiva/errors"
	"github.com/iov-one/fiva/metrics"
	"github.com/tendermint/tendermint/abci/server"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
)

const (
	flagBind    = "bind"
	flagDebug   = "debug"
	flagMetrics = "metrics"
)

type startArgs struct {
	bind    string
	metrics string
	debug   bool
}

func parseStartArgs(args []string) (startArgs, error) {
	var res startArgs
	startFlags := flag.NewFlagSet("start", flag.ContinueOnError)
	startFlags.StringVar(&res.bind, flagBind, "tcp://localhost:26658", "address server listens on")
	startFlags.StringVar(&res.metrics, flagMetrics, "", "address of the prometheus endpoint, disabled when empty")
	startFlags.BoolVar(&res.debug, flagDebug, false, "call stack returned on error")
	if err := startFlags.Parse(args); err != nil {
		return res, errors.Wrap(errors.ErrInput, err.Error())
	}
	return res, nil
}

// AppGenerator lets us lazily initialize app, using home dir
// and logger potentially initialized with other flags
type AppGenerator func(string, log.Logger, bool) (abci.Application, error)

// StartCmd initializes the application and serves it over an ABCI socket
// until the process is interrupted.
func StartCmd(gen AppGenerator, logger log.Logger, home string, args []string) error {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	return serve(gen, logger, home, args, sig)
}

func serve(gen AppGenerator, logger log.Logger, home string, args []string, stop <-chan os.Signal) error {
	opts, err := parseStartArgs(args)
	if err != nil {
		return err
	}

	// Generate the app in the proper dir
	app, err := gen(home, logger, opts.debug)
	if err != nil {
		return err
	}

	if opts.metrics != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		msrv := &http.Server{Addr: opts.metrics, Handler: mux}
		go func() {
			if err := msrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics server", "err", err)
			}
		}()
		defer msrv.Close()
		logger.Info("Serving metrics", "bind", opts.metrics)
	}

	logger.Info("Starting ABCI app", "bind", opts.bind)
	svr, err := server.NewServer(opts.bind, "socket", app)
	if err != nil {
		return errors.Wrapf(errors.ErrInput, "creating listener: %s", err)
	}
	svr.SetLogger(logger.With("module", "abci-server"))
	if err := svr.Start(); err != nil {
		return errors.Wrap(err, "start abci server")
	}

	s := <-stop
	logger.Info("Shutting down", "signal", s)
	return svr.Stop()
}
