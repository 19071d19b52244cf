// Package logging builds the structured slog loggers used across harbor.
//
// # Usage
//
//	logger, err := logging.New(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	})
//	if err != nil {
//	    return err
//	}
//	slog.SetDefault(logger)
//
//	logger.Info("server listening", "address", addr)
//
// Components derive their own logger with a component attribute:
//
//	log := logger.With("component", "server")
//
// StdLogger adapts a slog.Logger for APIs that still take a *log.Logger,
// such as http.Server.ErrorLog.
package logging
