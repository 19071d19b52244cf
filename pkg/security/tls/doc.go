/*
Package tls loads and validates the TLS identity served by harbor.

# Loading an Identity

The certificate and private key are read from PEM files once at startup:

	id, err := tls.LoadIdentity("cert.pem", "key.pem")
	if errors.Is(err, tls.ErrIdentityFile) {
		// missing or unreadable file
	}
	if errors.Is(err, tls.ErrIdentityInvalid) {
		// malformed PEM, key does not match certificate, or expired
	}

# TLS Server Configuration

	cfg := &tls.Config{
		MinVersion: "1.2",
		CipherSuites: []string{
			"TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256",
		},
	}

	tlsConfig, err := cfg.ToTLSConfig(id)

Only HTTP/1.1 is advertised through ALPN.

# Expiry Monitoring

ExpiryMonitor checks the loaded certificate on a cron schedule and logs
when it is close to expiring. It never reloads the certificate:

	monitor := tls.NewExpiryMonitor(id, tls.MonitorConfig{
		Schedule:   "@hourly",
		WarnWithin: 30 * 24 * time.Hour,
	}, logger, collector.SetCertificateExpiry)
	if err := monitor.Start(ctx); err != nil {
		log.Fatal(err)
	}
	defer monitor.Stop()

# File Watching

FileWatcher uses fsnotify to notice when the certificate or key is
replaced on disk. The served pair stays in place; the watcher logs that a
restart is required and reports the outcome to a callback.
*/
package tls
