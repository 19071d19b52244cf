package main

import (
	"crypto/tls"
	"errors"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"testing"
	"time"

	"mercator-hq/harbor/internal/testcerts"
	"mercator-hq/harbor/pkg/cli"
)

// serveFixture writes a certificate pair and a document root under a
// temporary directory.
func serveFixture(t *testing.T) (root, certFile, keyFile string) {
	t.Helper()

	dir := t.TempDir()
	certFile, keyFile = testcerts.WriteFiles(t, dir)

	root = filepath.Join(dir, "www")
	if err := os.Mkdir(root, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "hello.txt"), []byte("hello over tls\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return root, certFile, keyFile
}

func TestServe_DryRun(t *testing.T) {
	root, certFile, keyFile := serveFixture(t)

	var out syncBuffer
	err := runCommand(t, &out, "serve", "--dry-run",
		"--root", root, "--cert", certFile, "--key", keyFile, "--listen", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("dry run failed: %v", err)
	}

	if !strings.Contains(out.String(), "Configuration valid") {
		t.Errorf("missing confirmation:\n%s", out.String())
	}
	if strings.Contains(out.String(), "Starting HTTPS server") {
		t.Error("dry run announced a listener")
	}
}

func TestServe_StartupFailures(t *testing.T) {
	root, certFile, keyFile := serveFixture(t)

	other := testcerts.Generate(t, testcerts.Options{})
	_, otherKey := other.Write(t, t.TempDir())

	missingConfig := filepath.Join(t.TempDir(), "missing.yaml")

	tests := []struct {
		name     string
		args     []string
		wantCode int
	}{
		{
			name:     "missing certificate",
			args:     []string{"--root", root, "--cert", filepath.Join(root, "nope.pem"), "--key", keyFile},
			wantCode: cli.ExitConfig,
		},
		{
			name:     "missing document root",
			args:     []string{"--root", filepath.Join(root, "nope"), "--cert", certFile, "--key", keyFile},
			wantCode: cli.ExitConfig,
		},
		{
			name:     "mismatched key",
			args:     []string{"--root", root, "--cert", certFile, "--key", otherKey},
			wantCode: cli.ExitCertificate,
		},
		{
			name:     "invalid log level",
			args:     []string{"--root", root, "--cert", certFile, "--key", keyFile, "--log-level", "loud"},
			wantCode: cli.ExitConfig,
		},
		{
			name:     "explicit config file missing",
			args:     []string{"--config", missingConfig, "--root", root, "--cert", certFile, "--key", keyFile},
			wantCode: cli.ExitConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out syncBuffer
			args := append([]string{"serve", "--dry-run", "--listen", "127.0.0.1:0"}, tt.args...)
			err := runCommand(t, &out, args...)
			if got := cli.ExitCode(err); got != tt.wantCode {
				t.Errorf("exit code = %d (err %v), want %d", got, err, tt.wantCode)
			}
		})
	}
}

func TestServe_PortInUse(t *testing.T) {
	root, certFile, keyFile := serveFixture(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	var out syncBuffer
	err = runCommand(t, &out, "serve",
		"--root", root, "--cert", certFile, "--key", keyFile,
		"--listen", ln.Addr().String())

	var cmdErr *cli.CommandError
	if !errors.As(err, &cmdErr) || cmdErr.Command != "serve" {
		t.Fatalf("error = %v, want a serve CommandError", err)
	}
	if got := cli.ExitCode(err); got != cli.ExitBind {
		t.Errorf("exit code = %d, want %d", got, cli.ExitBind)
	}
}

func TestLoadConfig_Precedence(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "harbor.yaml")
	yaml := `
server:
  listen_address: "127.0.0.1:5000"
static:
  document_root: "/from/file"
tls:
  cert_file: "file-cert.pem"
  key_file: "file-key.pem"
`
	if err := os.WriteFile(cfgPath, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("HARBOR_TLS_CERT_FILE", "env-cert.pem")
	t.Setenv("HARBOR_STATIC_DOCUMENT_ROOT", "/from/env")

	resetFlags(rootCmd)
	t.Cleanup(func() { resetFlags(rootCmd) })
	if err := rootCmd.PersistentFlags().Set("config", cfgPath); err != nil {
		t.Fatal(err)
	}
	if err := serveCmd.Flags().Set("root", "/from/flag"); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(serveCmd)
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}

	if cfg.Server.ListenAddress != "127.0.0.1:5000" {
		t.Errorf("ListenAddress = %q, want file value", cfg.Server.ListenAddress)
	}
	if cfg.TLS.CertFile != "env-cert.pem" {
		t.Errorf("CertFile = %q, want env value", cfg.TLS.CertFile)
	}
	if cfg.TLS.KeyFile != "file-key.pem" {
		t.Errorf("KeyFile = %q, want file value", cfg.TLS.KeyFile)
	}
	if cfg.Static.DocumentRoot != "/from/flag" {
		t.Errorf("DocumentRoot = %q, want flag value", cfg.Static.DocumentRoot)
	}
}

func TestLoadConfig_DefaultFileOptional(t *testing.T) {
	resetFlags(rootCmd)
	t.Cleanup(func() { resetFlags(rootCmd) })
	if err := rootCmd.PersistentFlags().Set("config", filepath.Join(t.TempDir(), defaultConfigFile)); err != nil {
		t.Fatal(err)
	}
	// Set marks the flag as changed; clear it to mimic the default value.
	rootCmd.PersistentFlags().Lookup("config").Changed = false

	cfg, err := loadConfig(serveCmd)
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}
	if !strings.HasSuffix(cfg.Server.ListenAddress, ":4433") {
		t.Errorf("ListenAddress = %q, want default port 4433", cfg.Server.ListenAddress)
	}
}

var announceRE = regexp.MustCompile(`Starting HTTPS server on (\S+)\.\.\.`)

func TestServe_InterruptExitsCleanly(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("signals are not delivered to self on windows")
	}

	root, certFile, keyFile := serveFixture(t)

	var out syncBuffer
	errc := make(chan error, 1)
	go func() {
		errc <- runCommand(t, &out, "serve",
			"--root", root, "--cert", certFile, "--key", keyFile,
			"--listen", "127.0.0.1:0", "--log-level", "error")
	}()

	var addr string
	deadline := time.Now().Add(5 * time.Second)
	for addr == "" {
		if m := announceRE.FindStringSubmatch(out.String()); m != nil {
			addr = m[1]
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("server did not announce itself:\n%s", out.String())
		}
		time.Sleep(10 * time.Millisecond)
	}

	client := &http.Client{
		Transport: &http.Transport{TLSClientConfig: &tls.Config{InsecureSkipVerify: true}},
		Timeout:   5 * time.Second,
	}
	resp, err := client.Get("https://" + addr + "/hello.txt")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || string(body) != "hello over tls\n" {
		t.Fatalf("got %d %q", resp.StatusCode, body)
	}
	client.CloseIdleConnections()

	self, err := os.FindProcess(os.Getpid())
	if err != nil {
		t.Fatal(err)
	}
	if err := self.Signal(os.Interrupt); err != nil {
		t.Fatal(err)
	}

	select {
	case err := <-errc:
		if code := cli.ExitCode(err); code != cli.ExitOK {
			t.Fatalf("exit code = %d (err %v), want 0", code, err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not return after SIGINT")
	}

	if !strings.Contains(out.String(), "Server stopped") {
		t.Errorf("missing stop message:\n%s", out.String())
	}
}
