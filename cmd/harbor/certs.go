package main

import (
	"github.com/spf13/cobra"
)

var certsCmd = &cobra.Command{
	Use:   "certs",
	Short: "Manage TLS certificates",
	Long: `Manage the TLS certificate and key harbor serves with.

Subcommands:
  generate - Generate a self-signed certificate for development
  info     - Display certificate details
  validate - Validate a certificate and key pair

Examples:
  # Generate cert.pem and key.pem in the current directory
  harbor certs generate --host localhost,127.0.0.1

  # Display certificate information
  harbor certs info cert.pem

  # Validate certificate and key
  harbor certs validate --cert cert.pem --key key.pem`,
}

func init() {
	rootCmd.AddCommand(certsCmd)
}
