// Package config provides configuration management for harbor.
//
// This package handles loading, validating, and managing configuration from
// YAML files with environment variable overrides. It provides a type-safe
// configuration system with validation and sensible defaults.
//
// # Configuration Loading
//
// Configuration can be loaded in two ways:
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("harbor.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("harbor.yaml")
//
// When the file does not exist and the path is optional, Default() returns
// the built-in configuration, which serves the working directory on port
// 4433 with cert.pem and key.pem.
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention HARBOR_SECTION_FIELD.
// For example:
//
//   - HARBOR_SERVER_LISTEN_ADDRESS overrides server.listen_address
//   - HARBOR_STATIC_DOCUMENT_ROOT overrides static.document_root
//   - HARBOR_TLS_CERT_FILE overrides tls.cert_file
//   - HARBOR_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// # Configuration Precedence
//
// Configuration values are applied in the following order (later overrides earlier):
//
//  1. Default values (defined in defaults.go)
//  2. Values from YAML file
//  3. Environment variable overrides
//  4. Command-line flags (applied by cmd/harbor)
//  5. Validation (fails fast if invalid)
//
// The resulting Config is loaded once at startup and is not reloaded.
//
// # Example Configuration
//
//	server:
//	  listen_address: "0.0.0.0:4433"
//	  shutdown_timeout: "10s"
//
//	static:
//	  document_root: "./public"
//	  directory_listing: false
//
//	tls:
//	  cert_file: "cert.pem"
//	  key_file: "key.pem"
//	  min_version: "1.2"
//
//	telemetry:
//	  logging:
//	    level: "info"
//	    format: "json"
package config
