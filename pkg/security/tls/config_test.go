package tls

import (
	"crypto/tls"
	"sort"
	"strings"
	"testing"

	"mercator-hq/harbor/internal/testcerts"
)

func loadTestIdentity(t *testing.T) *Identity {
	t.Helper()
	pair := testcerts.Generate(t, testcerts.Options{})
	id, err := ParseIdentity(pair.CertPEM, pair.KeyPEM)
	if err != nil {
		t.Fatalf("ParseIdentity() failed: %v", err)
	}
	return id
}

func TestConfig_ToTLSConfig(t *testing.T) {
	id := loadTestIdentity(t)

	tests := []struct {
		name        string
		config      Config
		wantVersion uint16
		wantSuites  int
		expectError bool
		errorMsg    string
	}{
		{
			name:        "default version is TLS 1.2",
			config:      Config{},
			wantVersion: tls.VersionTLS12,
		},
		{
			name:        "TLS 1.3",
			config:      Config{MinVersion: "1.3"},
			wantVersion: tls.VersionTLS13,
		},
		{
			name: "with cipher suites",
			config: Config{
				MinVersion: "1.2",
				CipherSuites: []string{
					"TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256",
					"TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384",
				},
			},
			wantVersion: tls.VersionTLS12,
			wantSuites:  2,
		},
		{
			name:        "TLS 1.1 rejected",
			config:      Config{MinVersion: "1.1"},
			expectError: true,
			errorMsg:    "unsupported TLS version",
		},
		{
			name:        "unknown cipher suite",
			config:      Config{CipherSuites: []string{"TLS_RSA_WITH_RC4_128_SHA"}},
			expectError: true,
			errorMsg:    "cipher suite",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tlsConfig, err := tt.config.ToTLSConfig(id)

			if tt.expectError {
				if err == nil {
					t.Fatal("expected error but got none")
				}
				if !strings.Contains(err.Error(), tt.errorMsg) {
					t.Errorf("expected error containing %q, got %q", tt.errorMsg, err.Error())
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if tlsConfig.MinVersion != tt.wantVersion {
				t.Errorf("MinVersion = %d, want %d", tlsConfig.MinVersion, tt.wantVersion)
			}
			if len(tlsConfig.CipherSuites) != tt.wantSuites {
				t.Errorf("CipherSuites = %d, want %d", len(tlsConfig.CipherSuites), tt.wantSuites)
			}
			if len(tlsConfig.Certificates) != 1 {
				t.Errorf("Certificates = %d, want 1", len(tlsConfig.Certificates))
			}
			if len(tlsConfig.NextProtos) != 1 || tlsConfig.NextProtos[0] != "http/1.1" {
				t.Errorf("NextProtos = %v, want [http/1.1]", tlsConfig.NextProtos)
			}
		})
	}
}

func TestConfig_ToTLSConfig_NilIdentity(t *testing.T) {
	cfg := Config{}
	if _, err := cfg.ToTLSConfig(nil); err == nil {
		t.Error("expected error for nil identity")
	}
}

func TestCipherSuiteNames(t *testing.T) {
	names := CipherSuiteNames()
	if len(names) != len(cipherSuiteMap) {
		t.Errorf("got %d names, want %d", len(names), len(cipherSuiteMap))
	}
	if _, err := ParseCipherSuites(names); err != nil {
		t.Errorf("every listed suite should parse: %v", err)
	}
	if !sort.StringsAreSorted(names) {
		t.Errorf("names not sorted: %v", names)
	}

	_, err := ParseCipherSuites([]string{"TLS_RSA_WITH_RC4_128_SHA"})
	if err == nil {
		t.Fatal("expected error for insecure suite")
	}
	if !strings.Contains(err.Error(), "TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256") {
		t.Errorf("error %q should list the supported suites", err)
	}
}
