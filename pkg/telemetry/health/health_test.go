package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mercator-hq/harbor/internal/testcerts"
)

type fakeState string

func (s fakeState) String() string { return string(s) }

func TestNew(t *testing.T) {
	tests := []struct {
		name            string
		timeout         time.Duration
		expectedTimeout time.Duration
	}{
		{name: "default timeout", timeout: 0, expectedTimeout: 5 * time.Second},
		{name: "custom timeout", timeout: 10 * time.Second, expectedTimeout: 10 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := New(tt.timeout)

			if checker.checkTimeout != tt.expectedTimeout {
				t.Errorf("expected timeout %v, got %v", tt.expectedTimeout, checker.checkTimeout)
			}
			if checker.CheckCount() != 0 {
				t.Errorf("expected 0 checks, got %d", checker.CheckCount())
			}
		})
	}
}

func TestCheckReadiness(t *testing.T) {
	tests := []struct {
		name   string
		checks map[string]CheckFunc
		want   string
	}{
		{
			name: "no checks",
			want: StatusReady,
		},
		{
			name: "all healthy",
			checks: map[string]CheckFunc{
				"a": func(ctx context.Context) error { return nil },
				"b": func(ctx context.Context) error { return nil },
			},
			want: StatusReady,
		},
		{
			name: "one failing",
			checks: map[string]CheckFunc{
				"a": func(ctx context.Context) error { return nil },
				"b": func(ctx context.Context) error { return errors.New("boom") },
			},
			want: StatusNotReady,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := New(time.Second)
			for name, check := range tt.checks {
				checker.RegisterCheck(name, check)
			}

			status := checker.CheckReadiness(context.Background())
			if status.Status != tt.want {
				t.Errorf("status = %q, want %q", status.Status, tt.want)
			}
			if len(status.Checks) != len(tt.checks) {
				t.Errorf("got %d results, want %d", len(status.Checks), len(tt.checks))
			}
		})
	}
}

func TestCheckReadiness_Timeout(t *testing.T) {
	checker := New(20 * time.Millisecond)
	checker.RegisterCheck("slow", func(ctx context.Context) error {
		<-ctx.Done()
		time.Sleep(50 * time.Millisecond)
		return nil
	})

	status := checker.CheckReadiness(context.Background())

	result := status.Checks["slow"]
	if result.Status != StatusUnhealthy || result.Message != ErrCheckTimeout.Error() {
		t.Errorf("unexpected result %+v", result)
	}
}

func TestStateCheck(t *testing.T) {
	state := fakeState("starting")
	check := StateCheck(func() fakeState { return state }, "serving")

	if err := check(context.Background()); err == nil {
		t.Error("expected error while starting")
	}

	state = "serving"
	if err := check(context.Background()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestCertificateCheck(t *testing.T) {
	valid := testcerts.Generate(t, testcerts.Options{})
	expired := testcerts.Generate(t, testcerts.Options{
		NotBefore: time.Now().Add(-48 * time.Hour),
		NotAfter:  time.Now().Add(-24 * time.Hour),
	})

	if err := CertificateCheck(valid.Cert)(context.Background()); err != nil {
		t.Errorf("valid certificate: %v", err)
	}
	if err := CertificateCheck(expired.Cert)(context.Background()); err == nil {
		t.Error("expected error for expired certificate")
	}
}

func TestHandlers(t *testing.T) {
	state := fakeState("serving")
	checker := New(time.Second)
	checker.RegisterCheck("server", StateCheck(func() fakeState { return state }, "serving"))

	mux := http.NewServeMux()
	Register(mux, checker, VersionInfo{Version: "1.2.3", Commit: "abc"})

	tests := []struct {
		name     string
		method   string
		path     string
		state    fakeState
		wantCode int
	}{
		{name: "liveness", method: http.MethodGet, path: "/health", state: "serving", wantCode: http.StatusOK},
		{name: "ready while serving", method: http.MethodGet, path: "/ready", state: "serving", wantCode: http.StatusOK},
		{name: "not ready while draining", method: http.MethodGet, path: "/ready", state: "shutting_down", wantCode: http.StatusServiceUnavailable},
		{name: "liveness while draining", method: http.MethodGet, path: "/health", state: "shutting_down", wantCode: http.StatusOK},
		{name: "version", method: http.MethodGet, path: "/version", state: "serving", wantCode: http.StatusOK},
		{name: "head", method: http.MethodHead, path: "/health", state: "serving", wantCode: http.StatusOK},
		{name: "post rejected", method: http.MethodPost, path: "/health", state: "serving", wantCode: http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state = tt.state

			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))

			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if tt.method == http.MethodHead && rec.Body.Len() != 0 {
				t.Error("HEAD response has a body")
			}
		})
	}
}

func TestVersionHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	VersionHandler(VersionInfo{Version: "1.2.3"}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/version", nil))

	var info VersionInfo
	if err := json.NewDecoder(rec.Body).Decode(&info); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if info.Version != "1.2.3" {
		t.Errorf("version = %q", info.Version)
	}
	if info.GoVersion == "" {
		t.Error("expected go version to be filled in")
	}
}
