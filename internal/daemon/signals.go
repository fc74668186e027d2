package daemon

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/manav03panchal/remindly/internal/logging"
)

// SignalHandler turns SIGINT and SIGTERM into shutdown and SIGHUP into a
// reminder reload.
type SignalHandler struct {
	shutdown chan os.Signal
	reload   chan os.Signal
}

// NewSignalHandler creates a new signal handler.
func NewSignalHandler() *SignalHandler {
	return &SignalHandler{
		shutdown: make(chan os.Signal, 1),
		reload:   make(chan os.Signal, 1),
	}
}

// Setup registers signal handlers.
func (h *SignalHandler) Setup() {
	signal.Notify(h.shutdown, syscall.SIGINT, syscall.SIGTERM)
	signal.Notify(h.reload, syscall.SIGHUP)
}

// Wait blocks until a shutdown signal arrives or ctx is done, calling
// onReload for every SIGHUP in between. It returns the shutdown signal, or
// nil if ctx ended first.
func (h *SignalHandler) Wait(ctx context.Context, onReload func()) os.Signal {
	for {
		select {
		case sig := <-h.shutdown:
			logging.Info("received signal", "signal", sig.String())
			return sig
		case sig := <-h.reload:
			logging.Info("received signal, reloading reminders", "signal", sig.String())
			if onReload != nil {
				onReload()
			}
		case <-ctx.Done():
			return nil
		}
	}
}

// Cleanup stops signal delivery.
func (h *SignalHandler) Cleanup() {
	signal.Stop(h.shutdown)
	signal.Stop(h.reload)
}
