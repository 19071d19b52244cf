package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"sync"
	"sync/atomic"

	securitytls "mercator-hq/harbor/pkg/security/tls"
	"mercator-hq/harbor/pkg/static"
	"mercator-hq/harbor/pkg/telemetry/logging"
)

// Server is the HTTPS static file server.
type Server struct {
	config     Config
	identity   *securitytls.Identity
	tlsConfig  *tls.Config
	handler    *static.Handler
	httpServer *http.Server

	logger   *slog.Logger
	announce io.Writer
	recorder static.Recorder
	tracer   static.SpanStarter
	observe  func(State)

	state   atomic.Int32
	started atomic.Bool

	mu   sync.RWMutex
	addr net.Addr

	ready       chan struct{}
	stopped     chan struct{}
	stopOnce    sync.Once
	shutdownErr error
	shutdownMu  sync.Once
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the structured logger. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithAnnouncer sets where the human-readable startup line is printed.
// The default is os.Stdout.
func WithAnnouncer(w io.Writer) Option {
	return func(s *Server) {
		s.announce = w
	}
}

// WithRecorder reports every request outcome to r.
func WithRecorder(r static.Recorder) Option {
	return func(s *Server) {
		s.recorder = r
	}
}

// WithTracer records a span for every request.
func WithTracer(t static.SpanStarter) Option {
	return func(s *Server) {
		s.tracer = t
	}
}

// WithStateObserver calls fn after every lifecycle transition.
func WithStateObserver(fn func(State)) Option {
	return func(s *Server) {
		s.observe = fn
	}
}

// New loads the TLS identity and document root described by cfg. It does
// not bind the listen address.
func New(cfg Config, opts ...Option) (*Server, error) {
	s := &Server{
		config:   cfg,
		logger:   logging.Discard(),
		announce: os.Stdout,
		ready:    make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "server")

	identity, err := securitytls.LoadIdentity(cfg.TLS.CertFile, cfg.TLS.KeyFile)
	if err != nil {
		return nil, identityError(cfg.TLS, err)
	}
	s.identity = identity

	tlsConfig, err := cfg.TLS.ToTLSConfig(identity)
	if err != nil {
		return nil, &ConfigurationError{Field: "tls", Err: err}
	}
	s.tlsConfig = tlsConfig

	handlerOpts := []static.Option{static.WithLogger(s.logger)}
	if s.recorder != nil {
		handlerOpts = append(handlerOpts, static.WithRecorder(s.recorder))
	}
	if s.tracer != nil {
		handlerOpts = append(handlerOpts, static.WithTracer(s.tracer))
	}
	handler, err := static.NewHandler(static.Config{
		DocumentRoot:     cfg.DocumentRoot,
		IndexFiles:       cfg.IndexFiles,
		DirectoryListing: cfg.DirectoryListing,
	}, handlerOpts...)
	if err != nil {
		return nil, &ConfigurationError{Field: "static.document_root", Err: err}
	}
	s.handler = handler

	s.httpServer = &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
		// HTTP/1.1 only.
		TLSNextProto: make(map[string]func(*http.Server, *tls.Conn, http.Handler)),
		ErrorLog:     logging.StdLogger(s.logger, slog.LevelDebug),
	}

	s.setState(StateStarting)

	return s, nil
}

func identityError(cfg securitytls.Config, err error) error {
	if errors.Is(err, securitytls.ErrIdentityInvalid) {
		return &CertificateError{CertFile: cfg.CertFile, KeyFile: cfg.KeyFile, Err: err}
	}
	return &ConfigurationError{Field: "tls", Err: err}
}

// Start binds the listen address and serves until the server is shut down
// or ctx is cancelled. It returns nil after a clean shutdown, a *BindError
// if the address cannot be bound, or the error that stopped serving.
func (s *Server) Start(ctx context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		return fmt.Errorf("server is already started")
	}

	if s.State() != StateStarting {
		// Shutdown or Close won the race with Start.
		<-s.stopped
		return nil
	}

	ln, err := net.Listen("tcp", s.config.ListenAddress)
	if err != nil {
		s.setState(StateStopped)
		s.finish()
		return &BindError{Address: s.config.ListenAddress, Err: err}
	}

	s.mu.Lock()
	s.addr = ln.Addr()
	s.mu.Unlock()

	if !s.transition(StateStarting, StateServing) {
		_ = ln.Close()
		<-s.stopped
		return nil
	}

	s.logger.Info("server listening",
		"address", ln.Addr().String(),
		"document_root", s.handler.Root(),
		"tls_min_version", s.config.TLS.MinVersion,
		"certificate_subject", s.identity.Leaf.Subject.String(),
		"certificate_not_after", s.identity.Leaf.NotAfter,
	)
	fmt.Fprintf(s.announce, "Starting HTTPS server on %s...\n", ln.Addr())
	close(s.ready)

	go func() {
		select {
		case <-ctx.Done():
			s.logger.Info("context cancelled, initiating shutdown")
			_ = s.Shutdown(context.Background())
		case <-s.stopped:
		}
	}()

	err = s.httpServer.Serve(tls.NewListener(ln, s.tlsConfig))
	if errors.Is(err, http.ErrServerClosed) {
		<-s.stopped
		return nil
	}

	s.logger.Error("server stopped unexpectedly", "error", err)
	_ = s.httpServer.Close()
	s.swapState(StateStopped)
	s.finish()
	return fmt.Errorf("serve: %w", err)
}

// Shutdown stops accepting connections and waits for in-flight requests,
// bounded by ctx and ShutdownTimeout. Connections still open at the
// deadline are closed. Calls after the first return the first result.
func (s *Server) Shutdown(ctx context.Context) error {
	s.shutdownMu.Do(func() {
		s.shutdownErr = s.shutdown(ctx)
	})
	return s.shutdownErr
}

func (s *Server) shutdown(ctx context.Context) error {
	for {
		switch s.State() {
		case StateStarting:
			if !s.transition(StateStarting, StateStopped) {
				continue
			}
			_ = s.httpServer.Close()
			s.finish()
			return nil
		case StateServing:
			if !s.transition(StateServing, StateShuttingDown) {
				continue
			}
		default:
			return nil
		}
		break
	}

	s.logger.Info("initiating graceful shutdown", "timeout", s.config.ShutdownTimeout.String())

	if s.config.ShutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.ShutdownTimeout)
		defer cancel()
	}

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Warn("shutdown deadline reached, closing remaining connections", "error", err)
		_ = s.httpServer.Close()
	}

	s.swapState(StateStopped)
	s.finish()
	s.logger.Info("server stopped")

	return nil
}

// Close immediately closes the listener and every connection, abandoning
// in-flight requests. It is safe to call at any time and more than once.
func (s *Server) Close() error {
	prev := s.swapState(StateStopped)
	if prev != StateStopped {
		s.logger.Warn("closing server immediately", "previous_state", prev.String())
	}

	err := s.httpServer.Close()
	s.finish()
	return err
}

// Ready is closed once the listener is bound and serving.
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Done is closed once the server has stopped.
func (s *Server) Done() <-chan struct{} {
	return s.stopped
}

// Addr returns the bound address, or nil before Start has bound it.
func (s *Server) Addr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.addr
}

// State returns the current lifecycle state.
func (s *Server) State() State {
	return State(s.state.Load())
}

// Identity returns the loaded TLS identity.
func (s *Server) Identity() *securitytls.Identity {
	return s.identity
}

func (s *Server) finish() {
	s.stopOnce.Do(func() {
		close(s.stopped)
	})
}

func (s *Server) transition(from, to State) bool {
	if !s.state.CompareAndSwap(int32(from), int32(to)) {
		return false
	}
	s.notify(to)
	return true
}

func (s *Server) swapState(to State) State {
	prev := State(s.state.Swap(int32(to)))
	if prev != to {
		s.notify(to)
	}
	return prev
}

func (s *Server) setState(to State) {
	s.state.Store(int32(to))
	s.notify(to)
}

func (s *Server) notify(st State) {
	if s.observe != nil {
		s.observe(st)
	}
}
