package main

import (
	"crypto/x509"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"mercator-hq/harbor/pkg/cli"
	securitytls "mercator-hq/harbor/pkg/security/tls"

	"github.com/spf13/cobra"
)

var infoFlags struct {
	format string
}

var certsInfoCmd = &cobra.Command{
	Use:   "info [cert-file]",
	Short: "Display certificate details",
	Long: `Display detailed information about a PEM certificate.

Shows subject, issuer, validity, Subject Alternative Names, key usage and
algorithms of the first certificate in the file.

Output formats:
  - text (default): Human-readable formatted output
  - json: JSON-formatted output for scripting

Examples:
  # Display certificate info in text format
  harbor certs info cert.pem

  # Display in JSON format
  harbor certs info --format json cert.pem`,
	Args: cobra.ExactArgs(1),
	RunE: displayCertInfo,
}

func init() {
	certsCmd.AddCommand(certsInfoCmd)

	certsInfoCmd.Flags().StringVar(&infoFlags.format, "format", "text", "output format: text, json")
}

// certInfo is the certs info result.
type certInfo struct {
	File string `json:"file"`
	*securitytls.CertificateInfo
	DurationDays  int      `json:"duration_days"`
	DaysRemaining int      `json:"days_remaining"`
	Expired       bool     `json:"is_expired"`
	KeyUsage      []string `json:"key_usage,omitempty"`
	ExtKeyUsage   []string `json:"ext_key_usage,omitempty"`
}

func displayCertInfo(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(infoFlags.format)
	if err != nil {
		return err
	}

	certFile := args[0]
	certPEM, err := os.ReadFile(certFile)
	if err != nil {
		return fmt.Errorf("failed to read certificate: %w", err)
	}

	chain, err := securitytls.ParseCertificatePEM(certPEM)
	if err != nil {
		return fmt.Errorf("failed to parse certificate: %w", err)
	}
	cert := chain[0]

	info := certInfo{
		File:            certFile,
		CertificateInfo: securitytls.ExtractCertificateInfo(cert),
		DurationDays:    int(cert.NotAfter.Sub(cert.NotBefore).Hours() / 24),
		DaysRemaining:   int(time.Until(cert.NotAfter).Hours() / 24),
		Expired:         time.Now().After(cert.NotAfter),
		KeyUsage:        keyUsages(cert.KeyUsage),
		ExtKeyUsage:     extKeyUsages(cert.ExtKeyUsage),
	}

	if format == cli.FormatJSON {
		return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), info)
	}
	printCertText(cmd.OutOrStdout(), info)
	return nil
}

func printCertText(out io.Writer, info certInfo) {
	fmt.Fprintf(out, "Certificate: %s\n\n", info.File)

	fmt.Fprintf(out, "Subject: %s\n", info.Subject)
	fmt.Fprintf(out, "Issuer:  %s\n", info.Issuer)

	fmt.Fprintln(out, "\nValidity:")
	fmt.Fprintf(out, "  Not Before: %s\n", info.NotBefore.Format(time.RFC3339))
	fmt.Fprintf(out, "  Not After: %s\n", info.NotAfter.Format(time.RFC3339))
	fmt.Fprintf(out, "  Duration: %d days\n", info.DurationDays)
	if info.Expired {
		fmt.Fprintf(out, "  Status: ✗ EXPIRED on %s\n", info.NotAfter.Format("2006-01-02"))
	} else {
		fmt.Fprintf(out, "  Status: ✓ Valid (%d days remaining)\n", info.DaysRemaining)
		if time.Duration(info.DaysRemaining)*24*time.Hour < securitytls.DefaultExpiryWarning {
			fmt.Fprintf(out, "  Warning: ⚠  Certificate expires in %d days\n", info.DaysRemaining)
		}
	}

	if len(info.DNSNames) > 0 || len(info.IPAddresses) > 0 {
		fmt.Fprintln(out, "\nSubject Alternative Names:")
		for _, san := range info.DNSNames {
			fmt.Fprintf(out, "  - DNS: %s\n", san)
		}
		for _, ip := range info.IPAddresses {
			fmt.Fprintf(out, "  - IP: %s\n", ip)
		}
	}

	if len(info.KeyUsage) > 0 {
		fmt.Fprintf(out, "\nKey Usage: %s\n", strings.Join(info.KeyUsage, ", "))
	}
	if len(info.ExtKeyUsage) > 0 {
		fmt.Fprintf(out, "Extended Key Usage: %s\n", strings.Join(info.ExtKeyUsage, ", "))
	}

	fmt.Fprintln(out, "\nAlgorithms:")
	fmt.Fprintf(out, "  Signature Algorithm: %s\n", info.SignatureAlgorithm)
	fmt.Fprintf(out, "  Public Key Algorithm: %s\n", info.PublicKeyAlgorithm)

	fmt.Fprintln(out, "\nAdditional Information:")
	fmt.Fprintf(out, "  Serial Number: %s\n", info.SerialNumber)
	fmt.Fprintf(out, "  Is CA: %v\n", info.IsCA)
}

func keyUsages(usage x509.KeyUsage) []string {
	names := []struct {
		bit  x509.KeyUsage
		name string
	}{
		{x509.KeyUsageDigitalSignature, "Digital Signature"},
		{x509.KeyUsageContentCommitment, "Content Commitment"},
		{x509.KeyUsageKeyEncipherment, "Key Encipherment"},
		{x509.KeyUsageDataEncipherment, "Data Encipherment"},
		{x509.KeyUsageKeyAgreement, "Key Agreement"},
		{x509.KeyUsageCertSign, "Certificate Sign"},
		{x509.KeyUsageCRLSign, "CRL Sign"},
		{x509.KeyUsageEncipherOnly, "Encipher Only"},
		{x509.KeyUsageDecipherOnly, "Decipher Only"},
	}

	var usages []string
	for _, n := range names {
		if usage&n.bit != 0 {
			usages = append(usages, n.name)
		}
	}
	return usages
}

func extKeyUsages(usages []x509.ExtKeyUsage) []string {
	var result []string
	for _, usage := range usages {
		switch usage {
		case x509.ExtKeyUsageAny:
			result = append(result, "Any")
		case x509.ExtKeyUsageServerAuth:
			result = append(result, "Server Authentication")
		case x509.ExtKeyUsageClientAuth:
			result = append(result, "Client Authentication")
		case x509.ExtKeyUsageCodeSigning:
			result = append(result, "Code Signing")
		case x509.ExtKeyUsageEmailProtection:
			result = append(result, "Email Protection")
		case x509.ExtKeyUsageTimeStamping:
			result = append(result, "Time Stamping")
		case x509.ExtKeyUsageOCSPSigning:
			result = append(result, "OCSP Signing")
		default:
			result = append(result, fmt.Sprintf("Unknown (%d)", usage))
		}
	}
	return result
}
