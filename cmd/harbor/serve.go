package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"mercator-hq/harbor/pkg/cli"
	"mercator-hq/harbor/pkg/config"
	securitytls "mercator-hq/harbor/pkg/security/tls"
	"mercator-hq/harbor/pkg/server"
	"mercator-hq/harbor/pkg/telemetry/health"
	"mercator-hq/harbor/pkg/telemetry/logging"
	"mercator-hq/harbor/pkg/telemetry/metrics"
	"mercator-hq/harbor/pkg/telemetry/tracing"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var serveFlags struct {
	root      string
	listen    string
	certFile  string
	keyFile   string
	logLevel  string
	logFormat string
	dryRun    bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the document root over HTTPS",
	Long: `Serve static files from the document root over HTTPS.

Configuration is read from --config when the file exists, then HARBOR_*
environment variables, then the flags below. Without any of them harbor
serves the current directory on 0.0.0.0:4433 using ./cert.pem and
./key.pem.

The first SIGINT or SIGTERM stops accepting connections and lets
in-flight requests finish for up to server.shutdown_timeout. A second
signal closes every connection immediately. Both exit with status 0.

Examples:
  # Serve the current directory
  harbor serve

  # Serve /srv/www on port 8443
  harbor serve --root /srv/www --listen :8443

  # Use a specific certificate
  harbor serve --cert /etc/harbor/cert.pem --key /etc/harbor/key.pem

  # Validate configuration and certificate without binding
  harbor serve --dry-run`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveFlags.root, "root", "r", "", "override document root")
	serveCmd.Flags().StringVarP(&serveFlags.listen, "listen", "l", "", "override listen address (host:port)")
	serveCmd.Flags().StringVar(&serveFlags.certFile, "cert", "", "override certificate file")
	serveCmd.Flags().StringVar(&serveFlags.keyFile, "key", "", "override private key file")
	serveCmd.Flags().StringVar(&serveFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	serveCmd.Flags().StringVar(&serveFlags.logFormat, "log-format", "", "override log format (text, json)")
	serveCmd.Flags().BoolVar(&serveFlags.dryRun, "dry-run", false, "validate config and certificate without starting server")
}

func runServe(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, err := logging.New(logging.FromConfig(cfg.Telemetry.Logging, cmd.ErrOrStderr()))
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}
	logger = logger.With("instance_id", uuid.NewString())
	slog.SetDefault(logger)

	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)

	tracer, err := tracing.New(&cfg.Telemetry.Tracing, Version)
	if err != nil {
		return cli.NewConfigError("telemetry.tracing", err.Error())
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracer.Shutdown(ctx); err != nil {
			logger.Warn("failed to flush traces", "error", err)
		}
	}()

	srv, err := server.New(server.ConfigFrom(cfg),
		server.WithLogger(logger),
		server.WithAnnouncer(out),
		server.WithRecorder(collector),
		server.WithTracer(tracer),
		server.WithStateObserver(func(s server.State) {
			collector.SetServerState(s.String())
		}),
	)
	if err != nil {
		return cli.NewCommandError("serve", err)
	}

	if serveFlags.dryRun {
		fmt.Fprintln(out, "✓ Configuration valid")
		fmt.Fprintf(out, "✓ Certificate %q valid until %s\n",
			srv.Identity().Leaf.Subject.CommonName,
			srv.Identity().Leaf.NotAfter.Format(time.RFC3339))
		return nil
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	monitor := securitytls.NewExpiryMonitor(srv.Identity(), securitytls.MonitorConfig{
		Schedule:   cfg.Monitor.Schedule,
		WarnWithin: cfg.Monitor.WarnWithin,
	}, logger, collector.SetCertificateExpiry)
	if err := monitor.Start(ctx); err != nil {
		return cli.NewConfigError("monitor.schedule", err.Error())
	}
	defer monitor.Stop()

	if cfg.Monitor.WatchFiles {
		watcher, err := securitytls.NewFileWatcher(srv.Identity(), 0, logger, func(c securitytls.FileChange) {
			collector.ObserveCertificateChange(certificateOutcome(c))
		})
		if err != nil {
			return err
		}
		if err := watcher.Start(ctx); err != nil {
			_ = watcher.Stop()
			return cli.NewConfigError("monitor.watch_files", err.Error())
		}
		defer watcher.Stop()
	}

	if cfg.Telemetry.Metrics.Enabled {
		checker := health.New(2 * time.Second)
		checker.RegisterCheck("server", health.StateCheck(srv.State, server.StateServing.String()))
		checker.RegisterCheck("certificate", health.CertificateCheck(srv.Identity().Leaf))

		ops, err := startOpsServer(cfg.Telemetry.Metrics, checker, collector, logger)
		if err != nil {
			return err
		}
		defer ops.stop()
	}

	stop := cli.NotifyShutdown(srv, cfg.Server.ShutdownTimeout, logger)
	defer stop()

	if err := srv.Start(ctx); err != nil {
		return cli.NewCommandError("serve", err)
	}

	fmt.Fprintln(out, "Server stopped")
	return nil
}

func certificateOutcome(c securitytls.FileChange) string {
	switch {
	case c.Err != nil:
		return metrics.CertificateInvalid
	case c.RestartPending:
		return metrics.CertificateChanged
	default:
		return metrics.CertificateUnchanged
	}
}

// loadConfig merges defaults, the config file, HARBOR_* variables and
// flags, in increasing order of precedence.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, found, err := config.LoadOptional(cfgFile)
	if err != nil {
		return nil, configError(err)
	}
	if !found && cmd.Flags().Changed("config") {
		return nil, cli.NewConfigError("config", fmt.Sprintf("config file %q not found", cfgFile))
	}

	if serveFlags.root != "" {
		cfg.Static.DocumentRoot = serveFlags.root
	}
	if serveFlags.listen != "" {
		cfg.Server.ListenAddress = serveFlags.listen
	}
	if serveFlags.certFile != "" {
		cfg.TLS.CertFile = serveFlags.certFile
	}
	if serveFlags.keyFile != "" {
		cfg.TLS.KeyFile = serveFlags.keyFile
	}
	if serveFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = serveFlags.logLevel
	}
	if serveFlags.logFormat != "" {
		cfg.Telemetry.Logging.Format = serveFlags.logFormat
	}

	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func configError(err error) error {
	var validationErr config.ValidationError
	if errors.As(err, &validationErr) {
		return err
	}
	return cli.NewConfigError("config", err.Error())
}
