package main

import (
	"crypto/x509"
	"errors"
	"fmt"
	"os"
	"time"

	securitytls "mercator-hq/harbor/pkg/security/tls"
	"mercator-hq/harbor/pkg/server"

	"github.com/spf13/cobra"
)

var certsValidateFlags struct {
	certFile string
	keyFile  string
	caFile   string
	warn     time.Duration
}

var certsValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate certificate and key",
	Long: `Validate a TLS certificate and, optionally, its private key.

This command validates:
  - Certificate parses and is within its validity period
  - Certificate and key pair match (if --key provided)
  - Certificate chain against a CA bundle (if --ca provided)
  - Certificate expiration warnings (default <30 days)

It performs the same checks harbor serve runs at startup, so a pair that
passes here will not fail with a certificate error.

Examples:
  # Validate certificate and key match
  harbor certs validate --cert cert.pem --key key.pem

  # Validate certificate chain against CA
  harbor certs validate --cert cert.pem --ca ca.pem`,
	Args: cobra.NoArgs,
	RunE: validateCertificate,
}

func init() {
	certsCmd.AddCommand(certsValidateCmd)

	certsValidateCmd.Flags().StringVar(&certsValidateFlags.certFile, "cert", "", "certificate file (required)")
	certsValidateCmd.Flags().StringVar(&certsValidateFlags.keyFile, "key", "", "private key file")
	certsValidateCmd.Flags().StringVar(&certsValidateFlags.caFile, "ca", "", "CA certificate file")
	certsValidateCmd.Flags().DurationVar(&certsValidateFlags.warn, "warn-within", securitytls.DefaultExpiryWarning, "warn when the certificate expires within this duration")

	_ = certsValidateCmd.MarkFlagRequired("cert")
}

func validateCertificate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	certFile, keyFile := certsValidateFlags.certFile, certsValidateFlags.keyFile

	fmt.Fprintf(out, "Validating certificate: %s\n\n", certFile)

	var cert *x509.Certificate
	if keyFile != "" {
		id, err := securitytls.LoadIdentity(certFile, keyFile)
		if err != nil {
			fmt.Fprintln(out, "✗ Certificate and key are NOT usable together")
			return identityFailure(certFile, keyFile, err)
		}
		fmt.Fprintln(out, "✓ Certificate and key match")
		cert = id.Leaf
	} else {
		certPEM, err := os.ReadFile(certFile)
		if err != nil {
			return &server.ConfigurationError{Field: "cert", Err: err}
		}
		chain, err := securitytls.ParseCertificatePEM(certPEM)
		if err != nil {
			return &server.CertificateError{CertFile: certFile, Err: err}
		}
		cert = chain[0]
		if err := securitytls.ValidateX509Certificate(cert); err != nil {
			fmt.Fprintf(out, "✗ %v\n", err)
			return &server.CertificateError{CertFile: certFile, Err: err}
		}
	}
	fmt.Fprintf(out, "✓ Certificate within validity period (valid until %s)\n", cert.NotAfter.Format("2006-01-02"))

	if certsValidateFlags.caFile != "" {
		if err := validateChain(cert, certsValidateFlags.caFile); err != nil {
			fmt.Fprintln(out, "✗ Certificate chain invalid")
			return &server.CertificateError{CertFile: certFile, KeyFile: keyFile, Err: err}
		}
		fmt.Fprintln(out, "✓ Certificate chain valid")
	}

	if _, warning := securitytls.CheckCertificateExpiration(cert, certsValidateFlags.warn); warning != "" {
		fmt.Fprintf(out, "⚠  %s\n", warning)
	}

	fmt.Fprintln(out, "\nCertificate Details:")
	fmt.Fprintf(out, "  Subject: %s\n", cert.Subject.CommonName)
	fmt.Fprintf(out, "  Issuer: %s\n", cert.Issuer.CommonName)
	fmt.Fprintf(out, "  Serial: %x\n", cert.SerialNumber)
	fmt.Fprintf(out, "  Valid From: %s\n", cert.NotBefore.Format(time.RFC3339))
	fmt.Fprintf(out, "  Valid Until: %s\n", cert.NotAfter.Format(time.RFC3339))
	if len(cert.DNSNames) > 0 {
		fmt.Fprintf(out, "  SANs (DNS): %v\n", cert.DNSNames)
	}
	if len(cert.IPAddresses) > 0 {
		fmt.Fprintf(out, "  SANs (IP): %v\n", cert.IPAddresses)
	}

	return nil
}

func identityFailure(certFile, keyFile string, err error) error {
	if errors.Is(err, securitytls.ErrIdentityInvalid) {
		return &server.CertificateError{CertFile: certFile, KeyFile: keyFile, Err: err}
	}
	return &server.ConfigurationError{Field: "tls", Err: err}
}

func validateChain(cert *x509.Certificate, caFile string) error {
	caPEM, err := os.ReadFile(caFile)
	if err != nil {
		return fmt.Errorf("failed to read CA certificate: %w", err)
	}

	caPool := x509.NewCertPool()
	if !caPool.AppendCertsFromPEM(caPEM) {
		return fmt.Errorf("failed to parse CA certificate")
	}

	return securitytls.ValidateCertificateChain(cert, caPool)
}
