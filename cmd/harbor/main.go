// Harbor is a TLS-terminated static file server.
//
// It serves files from a document root over HTTPS (port 4433 by default)
// using a PEM certificate and key, and shuts down cleanly on SIGINT or
// SIGTERM.
//
// Usage:
//
//	# Serve the current directory with ./cert.pem and ./key.pem
//	harbor serve
//
//	# Serve another directory on another port
//	harbor serve --root /srv/www --listen :8443
//
//	# Start from a configuration file
//	harbor serve --config /etc/harbor/harbor.yaml
//
//	# Create a development certificate
//	harbor certs generate --host localhost,127.0.0.1
//
//	# Show version information
//	harbor version
//
// Exit status is 0 after a clean shutdown, 2 for configuration errors,
// 3 for certificate errors, 4 when the address cannot be bound and 1
// otherwise.
package main

import "os"

func main() {
	os.Exit(Execute())
}
