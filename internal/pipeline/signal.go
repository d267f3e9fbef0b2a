package pipeline

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// exit is replaced in tests
var exit = os.Exit

// SetupSignalHandler returns a context that is cancelled on SIGTERM or SIGINT.
// onSignal, if set, runs before the cancel. A second signal exits the process
// with status 1. The returned stop func releases the handler.
func SetupSignalHandler(parent context.Context, log *slog.Logger, onSignal func()) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigCh := make(chan os.Signal, 1)
	stopped := make(chan struct{})
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		var sig os.Signal
		select {
		case sig = <-sigCh:
		case <-stopped:
			return
		}
		log.Warn("received signal, cancelling run", "signal", sig.String())

		if onSignal != nil {
			onSignal()
		}
		cancel()

		// Handle second signal - force exit
		select {
		case sig = <-sigCh:
			log.Error("received second signal, forcing exit", "signal", sig.String())
			exit(1)
		case <-stopped:
		}
	}()

	var once sync.Once
	stop := func() {
		once.Do(func() {
			signal.Stop(sigCh)
			close(stopped)
			cancel()
		})
	}
	return ctx, stop
}
