package tls

import (
	"crypto/tls"
	"fmt"
	"sort"
	"strings"
)

// Config represents TLS configuration for the harbor file server.
// It supports TLS 1.2 and 1.3 and an optional cipher suite allow-list.
type Config struct {
	// CertFile is the path to the PEM-encoded certificate file
	CertFile string `yaml:"cert_file"`

	// KeyFile is the path to the PEM-encoded private key file
	KeyFile string `yaml:"key_file"`

	// MinVersion is the minimum TLS version to accept ("1.2" or "1.3")
	// Default: "1.2"
	MinVersion string `yaml:"min_version"`

	// CipherSuites is a list of enabled TLS 1.2 cipher suites.
	// If empty, Go's default secure cipher suites are used.
	// TLS 1.3 suites are not configurable.
	CipherSuites []string `yaml:"cipher_suites"`
}

// ToTLSConfig builds a crypto/tls.Config serving the given identity.
func (c *Config) ToTLSConfig(id *Identity) (*tls.Config, error) {
	if id == nil {
		return nil, fmt.Errorf("%w: identity is nil", ErrIdentityInvalid)
	}

	version, err := ParseTLSVersion(c.MinVersion)
	if err != nil {
		return nil, err
	}

	suites, err := ParseCipherSuites(c.CipherSuites)
	if err != nil {
		return nil, err
	}

	// #nosec G402 - MinVersion is validated (TLS 1.0/1.1 rejected)
	return &tls.Config{
		Certificates: []tls.Certificate{id.Certificate},
		MinVersion:   version,
		CipherSuites: suites,
		NextProtos:   []string{"http/1.1"},
	}, nil
}

// ParseTLSVersion converts a version string to a tls.Version constant.
// Supported versions: "1.2" (default), "1.3".
// TLS 1.0 and 1.1 are rejected.
func ParseTLSVersion(v string) (uint16, error) {
	switch v {
	case "1.2", "":
		return tls.VersionTLS12, nil
	case "1.3":
		return tls.VersionTLS13, nil
	default:
		return 0, fmt.Errorf("unsupported TLS version %q (must be 1.2 or 1.3)", v)
	}
}

// ParseCipherSuites converts cipher suite names to tls.CipherSuite constants.
// If no cipher suites are specified, returns nil to use Go's secure defaults.
func ParseCipherSuites(names []string) ([]uint16, error) {
	if len(names) == 0 {
		return nil, nil
	}

	suites := make([]uint16, 0, len(names))
	for _, name := range names {
		id, ok := cipherSuiteMap[name]
		if !ok {
			return nil, fmt.Errorf("unknown or insecure cipher suite %q (supported: %s)",
				name, strings.Join(CipherSuiteNames(), ", "))
		}
		suites = append(suites, id)
	}
	return suites, nil
}

// cipherSuiteMap maps cipher suite names to their tls package constants.
// Only secure TLS 1.2 cipher suites are included.
var cipherSuiteMap = map[string]uint16{
	"TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256":   tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
	"TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384":   tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
	"TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256": tls.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
	"TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384": tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
	"TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305":    tls.TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305_SHA256,
	"TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305":  tls.TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305_SHA256,
}

// CipherSuiteNames returns the sorted names accepted by ParseCipherSuites.
func CipherSuiteNames() []string {
	names := make([]string, 0, len(cipherSuiteMap))
	for name := range cipherSuiteMap {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
