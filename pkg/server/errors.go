package server

import "fmt"

// ConfigurationError reports a missing or unreadable input: the
// certificate or key file, the document root, or an invalid setting.
type ConfigurationError struct {
	// Field names the offending input, e.g. "tls.cert_file".
	Field string
	Err   error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %v", e.Field, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// CertificateError reports a certificate or key that was read but cannot
// be used: unparseable PEM, a key that does not match the certificate, or
// a certificate outside its validity period.
type CertificateError struct {
	CertFile string
	KeyFile  string
	Err      error
}

func (e *CertificateError) Error() string {
	return fmt.Sprintf("certificate error: %s / %s: %v", e.CertFile, e.KeyFile, e.Err)
}

func (e *CertificateError) Unwrap() error {
	return e.Err
}

// BindError reports that the listen address could not be bound, for
// example because the port is in use or needs privileges.
type BindError struct {
	Address string
	Err     error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("bind error: %s: %v", e.Address, e.Err)
}

func (e *BindError) Unwrap() error {
	return e.Err
}
