package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

// Stopper is the part of a server that signal handling needs.
type Stopper interface {
	// Shutdown drains in-flight work and stops the server.
	Shutdown(ctx context.Context) error
	// Close stops the server immediately.
	Close() error
}

// NotifyShutdown stops srv when the process receives SIGINT or SIGTERM.
// The first signal calls Shutdown bounded by timeout (zero means no outer
// bound); each later signal calls Close. The returned function stops
// listening for signals.
func NotifyShutdown(srv Stopper, timeout time.Duration, logger *slog.Logger) (stop func()) {
	sigChan := make(chan os.Signal, 2)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	h := newSignalHandler(srv, timeout, logger)
	go h.run(sigChan)

	return func() {
		h.stop()
		signal.Stop(sigChan)
	}
}

type signalHandler struct {
	srv     Stopper
	timeout time.Duration
	logger  *slog.Logger

	done     chan struct{}
	stopOnce sync.Once
	// drained is closed when the graceful Shutdown call has returned.
	drained chan struct{}
}

func newSignalHandler(srv Stopper, timeout time.Duration, logger *slog.Logger) *signalHandler {
	return &signalHandler{
		srv:     srv,
		timeout: timeout,
		logger:  logger.With("component", "signals"),
		done:    make(chan struct{}),
		drained: make(chan struct{}),
	}
}

func (h *signalHandler) stop() {
	h.stopOnce.Do(func() {
		close(h.done)
	})
}

func (h *signalHandler) run(sigs <-chan os.Signal) {
	select {
	case sig := <-sigs:
		h.logger.Info("received shutdown signal", "signal", sig.String())
	case <-h.done:
		return
	}

	go h.shutdown()

	for {
		select {
		case sig := <-sigs:
			h.logger.Warn("received another signal, closing immediately", "signal", sig.String())
			if err := h.srv.Close(); err != nil {
				h.logger.Debug("close returned error", "error", err)
			}
		case <-h.done:
			return
		}
	}
}

func (h *signalHandler) shutdown() {
	defer close(h.drained)

	ctx := context.Background()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	if err := h.srv.Shutdown(ctx); err != nil {
		h.logger.Error("graceful shutdown failed", "error", err)
	}
}
