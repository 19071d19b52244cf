package cli

import (
	"errors"
	"fmt"

	"mercator-hq/harbor/pkg/config"
	"mercator-hq/harbor/pkg/server"
)

// Process exit codes.
const (
	ExitOK          = 0
	ExitError       = 1
	ExitConfig      = 2
	ExitCertificate = 3
	ExitBind        = 4
)

// ConfigError represents an error in configuration.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error in %s: %s", e.Field, e.Message)
}

// CommandError represents an error from a command execution.
type CommandError struct {
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %s failed: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{
		Field:   field,
		Message: message,
	}
}

// NewCommandError creates a new CommandError.
func NewCommandError(command string, err error) *CommandError {
	return &CommandError{
		Command: command,
		Err:     err,
	}
}

// ExitCode returns the process exit status for err.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var (
		cfgErr       *ConfigError
		validateErr  config.ValidationError
		serverCfgErr *server.ConfigurationError
		certErr      *server.CertificateError
		bindErr      *server.BindError
	)
	switch {
	case errors.As(err, &certErr):
		return ExitCertificate
	case errors.As(err, &bindErr):
		return ExitBind
	case errors.As(err, &cfgErr), errors.As(err, &validateErr), errors.As(err, &serverCfgErr):
		return ExitConfig
	default:
		return ExitError
	}
}
