package main

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var generateFlags struct {
	hosts    string
	org      string
	validity int
	keyType  string
	keySize  int
	output   string
	force    bool
}

var certsGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate self-signed certificate",
	Long: `Generate a self-signed TLS certificate and private key for development.

The files are written as cert.pem and key.pem in the output directory,
which are the names harbor serve looks for by default. The private key is
written with 0600 permissions. Existing files are not overwritten unless
--force is given.

⚠️  WARNING: Self-signed certificates are for TESTING ONLY!
   Browsers and clients will not trust them without extra setup.

Examples:
  # Generate certificate for localhost
  harbor certs generate --host localhost

  # Generate with multiple hosts and an ECDSA key
  harbor certs generate --host "localhost,127.0.0.1,files.local" --key-type ecdsa

  # Generate into another directory
  harbor certs generate --output /etc/harbor --validity 90`,
	Args: cobra.NoArgs,
	RunE: generateCertificate,
}

func init() {
	certsCmd.AddCommand(certsGenerateCmd)

	certsGenerateCmd.Flags().StringVar(&generateFlags.hosts, "host", "localhost,127.0.0.1", "comma-separated hostnames and IPs")
	certsGenerateCmd.Flags().StringVar(&generateFlags.org, "org", "Harbor", "organization name")
	certsGenerateCmd.Flags().IntVar(&generateFlags.validity, "validity", 365, "validity in days")
	certsGenerateCmd.Flags().StringVar(&generateFlags.keyType, "key-type", "rsa", "key type (rsa, ecdsa)")
	certsGenerateCmd.Flags().IntVar(&generateFlags.keySize, "key-size", 2048, "RSA key size (2048, 3072, 4096)")
	certsGenerateCmd.Flags().StringVarP(&generateFlags.output, "output", "o", ".", "output directory")
	certsGenerateCmd.Flags().BoolVar(&generateFlags.force, "force", false, "overwrite existing cert.pem and key.pem")
}

func generateCertificate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if generateFlags.validity <= 0 {
		return fmt.Errorf("invalid validity: %d days (must be positive)", generateFlags.validity)
	}

	hosts, dnsNames, ipAddresses := splitHosts(generateFlags.hosts)
	if len(hosts) == 0 {
		return fmt.Errorf("at least one --host is required")
	}

	certPath := filepath.Join(generateFlags.output, "cert.pem")
	keyPath := filepath.Join(generateFlags.output, "key.pem")
	if !generateFlags.force {
		for _, p := range []string{certPath, keyPath} {
			if _, err := os.Stat(p); err == nil {
				return fmt.Errorf("%s already exists (use --force to overwrite)", p)
			} else if !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("failed to check %s: %w", p, err)
			}
		}
	}

	signer, keyBlock, err := generateKey(out, generateFlags.keyType, generateFlags.keySize)
	if err != nil {
		return err
	}

	serialNumber, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return fmt.Errorf("failed to generate serial number: %w", err)
	}

	notBefore := time.Now()
	notAfter := notBefore.AddDate(0, 0, generateFlags.validity)

	keyUsage := x509.KeyUsageDigitalSignature
	if _, isRSA := signer.(*rsa.PrivateKey); isRSA {
		keyUsage |= x509.KeyUsageKeyEncipherment
	}

	template := x509.Certificate{
		SerialNumber: serialNumber,
		Subject: pkix.Name{
			Organization: []string{generateFlags.org},
			CommonName:   hosts[0],
		},
		NotBefore:             notBefore,
		NotAfter:              notAfter,
		KeyUsage:              keyUsage,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		DNSNames:              dnsNames,
		IPAddresses:           ipAddresses,
	}

	fmt.Fprintln(out, "Creating self-signed certificate...")
	derBytes, err := x509.CreateCertificate(rand.Reader, &template, &template, signer.Public(), signer)
	if err != nil {
		return fmt.Errorf("failed to create certificate: %w", err)
	}

	if err := os.MkdirAll(generateFlags.output, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: derBytes})
	if err := os.WriteFile(certPath, certPEM, 0644); err != nil {
		return fmt.Errorf("failed to write certificate: %w", err)
	}
	if err := os.WriteFile(keyPath, pem.EncodeToMemory(keyBlock), 0600); err != nil {
		return fmt.Errorf("failed to write private key: %w", err)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Certificate Generation Summary:")
	fmt.Fprintln(out, "================================")
	if len(dnsNames) > 0 {
		fmt.Fprintf(out, "  DNS Names: %v\n", dnsNames)
	}
	if len(ipAddresses) > 0 {
		fmt.Fprintf(out, "  IP Addresses: %v\n", ipAddresses)
	}
	fmt.Fprintf(out, "Organization: %s\n", generateFlags.org)
	fmt.Fprintf(out, "Validity: %d days\n", generateFlags.validity)
	fmt.Fprintf(out, "Not Before: %s\n", notBefore.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(out, "Not After: %s\n", notAfter.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintln(out)
	fmt.Fprintf(out, "✓ Certificate generated: %s\n", certPath)
	fmt.Fprintf(out, "✓ Private key generated: %s\n", keyPath)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "To use a different location, add to harbor.yaml:")
	fmt.Fprintln(out, "---")
	fmt.Fprintln(out, "tls:")
	fmt.Fprintf(out, "  cert_file: %q\n", certPath)
	fmt.Fprintf(out, "  key_file: %q\n", keyPath)

	return nil
}

func splitHosts(list string) (hosts, dnsNames []string, ips []net.IP) {
	for _, host := range strings.Split(list, ",") {
		host = strings.TrimSpace(host)
		if host == "" {
			continue
		}
		hosts = append(hosts, host)
		if ip := net.ParseIP(host); ip != nil {
			ips = append(ips, ip)
		} else {
			dnsNames = append(dnsNames, host)
		}
	}
	return hosts, dnsNames, ips
}

func generateKey(out io.Writer, keyType string, keySize int) (crypto.Signer, *pem.Block, error) {
	switch strings.ToLower(keyType) {
	case "rsa":
		if keySize != 2048 && keySize != 3072 && keySize != 4096 {
			return nil, nil, fmt.Errorf("invalid key size: %d (must be 2048, 3072, or 4096)", keySize)
		}
		fmt.Fprintf(out, "Generating %d-bit RSA private key...\n", keySize)
		key, err := rsa.GenerateKey(rand.Reader, keySize)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to generate private key: %w", err)
		}
		return key, &pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)}, nil

	case "ecdsa":
		fmt.Fprintln(out, "Generating P-256 ECDSA private key...")
		key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to generate private key: %w", err)
		}
		der, err := x509.MarshalECPrivateKey(key)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to encode private key: %w", err)
		}
		return key, &pem.Block{Type: "EC PRIVATE KEY", Bytes: der}, nil

	default:
		return nil, nil, fmt.Errorf("invalid key type %q (must be rsa or ecdsa)", keyType)
	}
}
