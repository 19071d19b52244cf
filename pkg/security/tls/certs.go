package tls

import (
	"crypto/x509"
	"fmt"
	"time"
)

// DefaultExpiryWarning is how close to expiry a certificate has to be
// before CheckCertificateExpiration reports a warning.
const DefaultExpiryWarning = 30 * 24 * time.Hour

// now is replaced in tests.
var now = time.Now

// ValidateX509Certificate validates an x509 certificate for expiration.
func ValidateX509Certificate(cert *x509.Certificate) error {
	if cert == nil {
		return fmt.Errorf("certificate is nil")
	}

	t := now()

	if t.Before(cert.NotBefore) {
		return fmt.Errorf("certificate is not yet valid (valid from %s)", cert.NotBefore.Format(time.RFC3339))
	}

	if t.After(cert.NotAfter) {
		return fmt.Errorf("certificate expired on %s", cert.NotAfter.Format(time.RFC3339))
	}

	return nil
}

// CheckCertificateExpiration checks if a certificate is expiring soon.
// It returns the remaining validity and a warning when less than window
// remains. A non-positive window uses DefaultExpiryWarning.
func CheckCertificateExpiration(cert *x509.Certificate, window time.Duration) (remaining time.Duration, warning string) {
	if window <= 0 {
		window = DefaultExpiryWarning
	}

	remaining = cert.NotAfter.Sub(now())
	days := int(remaining.Hours() / 24)

	switch {
	case remaining <= 0:
		warning = fmt.Sprintf("certificate expired on %s", cert.NotAfter.Format("2006-01-02"))
	case remaining < window:
		warning = fmt.Sprintf("certificate expires in %d days (on %s)",
			days, cert.NotAfter.Format("2006-01-02"))
	}

	return remaining, warning
}

// ValidateCertificateChain validates a certificate chain against a CA pool.
func ValidateCertificateChain(cert *x509.Certificate, caPool *x509.CertPool) error {
	opts := x509.VerifyOptions{
		Roots:       caPool,
		KeyUsages:   []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		CurrentTime: now(),
	}

	if _, err := cert.Verify(opts); err != nil {
		return fmt.Errorf("certificate chain validation failed: %w", err)
	}

	return nil
}

// CertificateInfo holds human-readable information from a certificate.
type CertificateInfo struct {
	Subject            string    `json:"subject"`
	Issuer             string    `json:"issuer"`
	SerialNumber       string    `json:"serial_number"`
	NotBefore          time.Time `json:"not_before"`
	NotAfter           time.Time `json:"not_after"`
	DNSNames           []string  `json:"dns_names,omitempty"`
	IPAddresses        []string  `json:"ip_addresses,omitempty"`
	SignatureAlgorithm string    `json:"signature_algorithm"`
	PublicKeyAlgorithm string    `json:"public_key_algorithm"`
	IsCA               bool      `json:"is_ca"`
}

// ExtractCertificateInfo extracts information from an x509 certificate.
func ExtractCertificateInfo(cert *x509.Certificate) *CertificateInfo {
	info := &CertificateInfo{
		Subject:            cert.Subject.String(),
		Issuer:             cert.Issuer.String(),
		SerialNumber:       fmt.Sprintf("%x", cert.SerialNumber),
		NotBefore:          cert.NotBefore,
		NotAfter:           cert.NotAfter,
		DNSNames:           cert.DNSNames,
		SignatureAlgorithm: cert.SignatureAlgorithm.String(),
		PublicKeyAlgorithm: cert.PublicKeyAlgorithm.String(),
		IsCA:               cert.IsCA,
	}

	for _, ip := range cert.IPAddresses {
		info.IPAddresses = append(info.IPAddresses, ip.String())
	}

	return info
}
