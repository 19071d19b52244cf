package main

import (
	"fmt"
	"os"

	"mercator-hq/harbor/pkg/cli"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
)

// defaultConfigFile is read when present; its absence is not an error
// unless --config names it explicitly.
const defaultConfigFile = "harbor.yaml"

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "harbor",
		Short: "Harbor - TLS static file server",
		Long: `Harbor serves a directory of static files over HTTPS.

It loads a PEM certificate and private key, listens on port 4433 by
default and answers GET and HEAD requests with files from the document
root. Path traversal outside the root is refused. An interrupt drains
in-flight requests; a second interrupt stops immediately.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return cli.ExitCode(err)
	}
	return cli.ExitOK
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", defaultConfigFile, "config file path")
}
