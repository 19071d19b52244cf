package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"mercator-hq/harbor/pkg/config"
	"mercator-hq/harbor/pkg/server"
	"mercator-hq/harbor/pkg/telemetry/health"
	"mercator-hq/harbor/pkg/telemetry/logging"
	"mercator-hq/harbor/pkg/telemetry/metrics"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// opsServer is the plain-HTTP listener for metrics and health probes.
type opsServer struct {
	httpServer *http.Server
	addr       net.Addr
	done       chan struct{}
	logger     *slog.Logger
}

func newOpsHandler(cfg config.MetricsConfig, checker *health.Checker, collector *metrics.Collector, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	mux.Handle(cfg.Path, collector.HandlerWithOptions(promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		ErrorHandling:     promhttp.ContinueOnError,
		ErrorLog:          metrics.ErrorLogger(logger),
	}))
	health.Register(mux, checker, versionInfo())
	return mux
}

func startOpsServer(cfg config.MetricsConfig, checker *health.Checker, collector *metrics.Collector, logger *slog.Logger) (*opsServer, error) {
	logger = logger.With("component", "ops")

	ln, err := net.Listen("tcp", cfg.ListenAddress)
	if err != nil {
		return nil, &server.BindError{Address: cfg.ListenAddress, Err: err}
	}

	ops := &opsServer{
		httpServer: &http.Server{
			Handler:           newOpsHandler(cfg, checker, collector, logger),
			ReadHeaderTimeout: 5 * time.Second,
			ErrorLog:          logging.StdLogger(logger, slog.LevelDebug),
		},
		addr:   ln.Addr(),
		done:   make(chan struct{}),
		logger: logger,
	}

	go func() {
		defer close(ops.done)
		if err := ops.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("ops listener stopped", "error", err)
		}
	}()

	logger.Info("ops listener started",
		"address", ln.Addr().String(),
		"metrics_path", cfg.Path,
		"readiness_checks", checker.CheckCount(),
	)
	return ops, nil
}

func (o *opsServer) stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := o.httpServer.Shutdown(ctx); err != nil {
		_ = o.httpServer.Close()
	}
	<-o.done
}
