package server

import (
	"testing"

	"mercator-hq/harbor/pkg/config"
)

func TestConfigFrom(t *testing.T) {
	cfg := config.Default()
	cfg.Static.DocumentRoot = "/srv/www"
	cfg.TLS.CipherSuites = []string{"TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256"}

	got := ConfigFrom(cfg)

	if got.ListenAddress != "0.0.0.0:4433" {
		t.Errorf("ListenAddress = %q", got.ListenAddress)
	}
	if got.DocumentRoot != "/srv/www" {
		t.Errorf("DocumentRoot = %q", got.DocumentRoot)
	}
	if got.TLS.CertFile != "cert.pem" || got.TLS.KeyFile != "key.pem" {
		t.Errorf("TLS files = %q, %q", got.TLS.CertFile, got.TLS.KeyFile)
	}
	if !got.DirectoryListing {
		t.Error("DirectoryListing should default to true")
	}
	if got.ShutdownTimeout != cfg.Server.ShutdownTimeout {
		t.Errorf("ShutdownTimeout = %v", got.ShutdownTimeout)
	}

	cfg.TLS.CipherSuites[0] = "changed"
	if got.TLS.CipherSuites[0] == "changed" {
		t.Error("ConfigFrom shares the cipher suite slice")
	}
}
