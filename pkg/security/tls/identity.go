package tls

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
)

var (
	// ErrIdentityFile is returned when the certificate or key file is
	// missing or cannot be read.
	ErrIdentityFile = errors.New("tls identity file unavailable")

	// ErrIdentityInvalid is returned when the certificate or key cannot be
	// parsed, the key does not belong to the certificate, or the
	// certificate is outside its validity period.
	ErrIdentityInvalid = errors.New("tls identity invalid")
)

// Identity is the certificate and private key presented during the TLS
// handshake. It is loaded once and never mutated.
type Identity struct {
	// CertFile is the path the certificate was loaded from.
	CertFile string

	// KeyFile is the path the private key was loaded from.
	KeyFile string

	// Certificate is the pair handed to crypto/tls.
	Certificate tls.Certificate

	// Leaf is the parsed first certificate of the chain.
	Leaf *x509.Certificate
}

// LoadIdentity reads and parses a PEM certificate chain and a PEM private
// key from disk.
func LoadIdentity(certFile, keyFile string) (*Identity, error) {
	if certFile == "" {
		return nil, fmt.Errorf("%w: certificate path is empty", ErrIdentityFile)
	}
	if keyFile == "" {
		return nil, fmt.Errorf("%w: key path is empty", ErrIdentityFile)
	}

	certPEM, err := os.ReadFile(certFile)
	if err != nil {
		return nil, fmt.Errorf("%w: read certificate: %w", ErrIdentityFile, err)
	}
	keyPEM, err := os.ReadFile(keyFile)
	if err != nil {
		return nil, fmt.Errorf("%w: read private key: %w", ErrIdentityFile, err)
	}

	id, err := ParseIdentity(certPEM, keyPEM)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", certFile, err)
	}
	id.CertFile = certFile
	id.KeyFile = keyFile
	return id, nil
}

// ParseIdentity builds an Identity from PEM-encoded certificate and key bytes.
func ParseIdentity(certPEM, keyPEM []byte) (*Identity, error) {
	chain, err := ParseCertificatePEM(certPEM)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIdentityInvalid, err)
	}
	key, err := ParsePrivateKeyPEM(keyPEM)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIdentityInvalid, err)
	}

	leaf := chain[0]
	if err := KeyMatchesCertificate(key, leaf); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIdentityInvalid, err)
	}
	if err := ValidateX509Certificate(leaf); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIdentityInvalid, err)
	}

	raw := make([][]byte, 0, len(chain))
	for _, c := range chain {
		raw = append(raw, c.Raw)
	}

	return &Identity{
		Certificate: tls.Certificate{
			Certificate: raw,
			PrivateKey:  key,
			Leaf:        leaf,
		},
		Leaf: leaf,
	}, nil
}

// ParseCertificatePEM parses every CERTIFICATE block in data. The first
// certificate is the leaf.
func ParseCertificatePEM(data []byte) ([]*x509.Certificate, error) {
	var certs []*x509.Certificate
	rest := data
	for {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			break
		}
		if block.Type != "CERTIFICATE" {
			continue
		}
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("failed to parse certificate: %w", err)
		}
		certs = append(certs, cert)
	}

	if len(certs) == 0 {
		return nil, errors.New("no CERTIFICATE block found in PEM data")
	}
	return certs, nil
}

// ParsePrivateKeyPEM parses the first private key block in data. PKCS#1 RSA,
// SEC 1 EC and PKCS#8 encodings are accepted.
func ParsePrivateKeyPEM(data []byte) (crypto.Signer, error) {
	rest := data
	for {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			return nil, errors.New("no private key block found in PEM data")
		}

		switch block.Type {
		case "RSA PRIVATE KEY":
			key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
			if err != nil {
				return nil, fmt.Errorf("failed to parse RSA private key: %w", err)
			}
			return key, nil
		case "EC PRIVATE KEY":
			key, err := x509.ParseECPrivateKey(block.Bytes)
			if err != nil {
				return nil, fmt.Errorf("failed to parse EC private key: %w", err)
			}
			return key, nil
		case "PRIVATE KEY":
			key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
			if err != nil {
				return nil, fmt.Errorf("failed to parse PKCS#8 private key: %w", err)
			}
			switch k := key.(type) {
			case *rsa.PrivateKey:
				return k, nil
			case *ecdsa.PrivateKey:
				return k, nil
			case ed25519.PrivateKey:
				return k, nil
			default:
				return nil, fmt.Errorf("unsupported PKCS#8 key type %T", key)
			}
		}
	}
}

// KeyMatchesCertificate reports an error unless key is the private half of
// cert's public key.
func KeyMatchesCertificate(key crypto.Signer, cert *x509.Certificate) error {
	pub, ok := key.Public().(interface{ Equal(crypto.PublicKey) bool })
	if !ok {
		return fmt.Errorf("unsupported public key type %T", key.Public())
	}
	if !pub.Equal(cert.PublicKey) {
		return errors.New("private key does not match certificate public key")
	}
	return nil
}
