package static

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"mercator-hq/harbor/pkg/telemetry/tracing"

	securejoin "github.com/cyphar/filepath-securejoin"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Request outcomes reported to a Recorder.
const (
	ResultOK               = "ok"
	ResultPartial          = "partial"
	ResultNotModified      = "not_modified"
	ResultListing          = "listing"
	ResultRedirect         = "redirect"
	ResultForbidden        = "forbidden"
	ResultNotFound         = "not_found"
	ResultMethodNotAllowed = "method_not_allowed"
	ResultError            = "error"
)

// ErrDocumentRoot is returned by NewHandler when the document root is
// missing or not a directory.
var ErrDocumentRoot = errors.New("document root unavailable")

// Config controls how a Handler serves the document root.
type Config struct {
	// DocumentRoot is the directory files are served from.
	DocumentRoot string

	// IndexFiles are tried in order for directory requests.
	IndexFiles []string

	// DirectoryListing renders directories that have no index file.
	DirectoryListing bool
}

// Recorder receives the outcome of every request.
type Recorder interface {
	ObserveRequest(result string, bytes int64, duration time.Duration)
}

// SpanStarter starts the span recorded for each request.
type SpanStarter interface {
	Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span)
}

// Handler serves files below a document root.
type Handler struct {
	root     string
	index    []string
	listing  bool
	logger   *slog.Logger
	recorder Recorder
	tracer   SpanStarter
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the logger used for unexpected filesystem errors.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

// WithRecorder reports request outcomes to r.
func WithRecorder(r Recorder) Option {
	return func(h *Handler) {
		h.recorder = r
	}
}

// WithTracer records a span for every request.
func WithTracer(t SpanStarter) Option {
	return func(h *Handler) {
		h.tracer = t
	}
}

// NewHandler creates a handler for cfg.DocumentRoot. The root is made
// absolute and its symbolic links are resolved once, up front.
func NewHandler(cfg Config, opts ...Option) (*Handler, error) {
	root, err := ResolveRoot(cfg.DocumentRoot)
	if err != nil {
		return nil, err
	}

	h := &Handler{
		root:    root,
		index:   cfg.IndexFiles,
		listing: cfg.DirectoryListing,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		tracer:  noop.NewTracerProvider().Tracer(""),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.logger = h.logger.With("component", "static")

	return h, nil
}

// ResolveRoot returns the absolute, symlink-free form of dir after
// checking that it is a readable directory.
func ResolveRoot(dir string) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("%w: path is empty", ErrDocumentRoot)
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrDocumentRoot, err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrDocumentRoot, err)
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrDocumentRoot, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s is not a directory", ErrDocumentRoot, dir)
	}

	f, err := os.Open(resolved)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrDocumentRoot, err)
	}
	_ = f.Close()

	return resolved, nil
}

// Root returns the resolved document root.
func (h *Handler) Root() string {
	return h.root
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	sw := &statusWriter{ResponseWriter: w}

	ctx := tracing.Extract(r.Context(), r.Header)
	ctx, span := h.tracer.Start(ctx, tracing.SpanStaticServe, trace.WithSpanKind(trace.SpanKindServer))
	defer span.End()
	tracing.SetRequestAttributes(span, r.Method, r.URL.Path)

	result := h.serve(sw, r.WithContext(ctx))

	tracing.SetResponseAttributes(span, sw.status, result, sw.bytes)
	if h.recorder != nil {
		h.recorder.ObserveRequest(result, sw.bytes, time.Since(start))
	}
}

func (h *Handler) serve(w *statusWriter, r *http.Request) string {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "405 method not allowed", http.StatusMethodNotAllowed)
		return ResultMethodNotAllowed
	}

	urlPath := r.URL.Path
	if !strings.HasPrefix(urlPath, "/") {
		urlPath = "/" + urlPath
	}

	if containsDotDot(urlPath) || strings.ContainsRune(urlPath, 0) {
		h.logger.Debug("rejected path traversal", "path", urlPath, "remote_addr", r.RemoteAddr)
		return forbidden(w)
	}

	name, err := securejoin.SecureJoin(h.root, filepath.FromSlash(urlPath))
	if err != nil {
		h.logger.Debug("path resolution failed", "path", urlPath, "error", err)
		return forbidden(w)
	}

	f, err := os.Open(name)
	if err != nil {
		return h.fsError(w, urlPath, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return h.fsError(w, urlPath, err)
	}

	if info.IsDir() {
		return h.serveDir(w, r, urlPath, f)
	}
	if !info.Mode().IsRegular() {
		return forbidden(w)
	}

	return serveFile(w, r, info, f)
}

func (h *Handler) serveDir(w *statusWriter, r *http.Request, urlPath string, f *os.File) string {
	if !strings.HasSuffix(urlPath, "/") {
		target := path.Base(urlPath) + "/"
		if r.URL.RawQuery != "" {
			target += "?" + r.URL.RawQuery
		}
		http.Redirect(w, r, target, http.StatusMovedPermanently)
		return ResultRedirect
	}

	for _, index := range h.index {
		// Index files may themselves be symlinks; resolve them under the root.
		name, err := securejoin.SecureJoin(h.root, filepath.FromSlash(path.Join(urlPath, index)))
		if err != nil {
			continue
		}
		idx, err := os.Open(name)
		if err != nil {
			continue
		}
		info, err := idx.Stat()
		if err != nil || !info.Mode().IsRegular() {
			_ = idx.Close()
			continue
		}
		result := serveFile(w, r, info, idx)
		_ = idx.Close()
		return result
	}

	if !h.listing {
		return forbidden(w)
	}

	entries, err := f.ReadDir(-1)
	if err != nil {
		return h.fsError(w, urlPath, err)
	}
	if err := writeListing(w, r, urlPath, entries); err != nil {
		h.logger.Error("failed to render directory listing", "path", urlPath, "error", err)
		return ResultError
	}
	return ResultListing
}

func serveFile(w *statusWriter, r *http.Request, info fs.FileInfo, f *os.File) string {
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)

	switch w.status {
	case http.StatusNotModified:
		return ResultNotModified
	case http.StatusPartialContent:
		return ResultPartial
	case http.StatusOK, 0:
		return ResultOK
	default:
		return ResultError
	}
}

func (h *Handler) fsError(w http.ResponseWriter, urlPath string, err error) string {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		http.Error(w, "404 page not found", http.StatusNotFound)
		return ResultNotFound
	case errors.Is(err, fs.ErrPermission):
		return forbidden(w)
	default:
		h.logger.Error("failed to open path", "path", urlPath, "error", err)
		http.Error(w, "500 internal server error", http.StatusInternalServerError)
		return ResultError
	}
}

func forbidden(w http.ResponseWriter) string {
	http.Error(w, "403 forbidden", http.StatusForbidden)
	return ResultForbidden
}

func containsDotDot(v string) bool {
	if !strings.Contains(v, "..") {
		return false
	}
	for _, ent := range strings.FieldsFunc(v, isSlashRune) {
		if ent == ".." {
			return true
		}
	}
	return false
}

func isSlashRune(r rune) bool { return r == '/' || r == '\\' }

// statusWriter remembers the status code and counts body bytes.
type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int64
}

func (w *statusWriter) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(p)
	w.bytes += int64(n)
	return n, err
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
