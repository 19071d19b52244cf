package health

import (
	"context"
	"crypto/x509"
	"fmt"

	securitytls "mercator-hq/harbor/pkg/security/tls"
)

// StateCheck passes while current() returns want.
func StateCheck[S fmt.Stringer](current func() S, want string) CheckFunc {
	return func(ctx context.Context) error {
		if got := current().String(); got != want {
			return fmt.Errorf("state is %s, want %s", got, want)
		}
		return nil
	}
}

// CertificateCheck fails once cert is outside its validity window.
func CertificateCheck(cert *x509.Certificate) CheckFunc {
	return func(ctx context.Context) error {
		return securitytls.ValidateX509Certificate(cert)
	}
}
