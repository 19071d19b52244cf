/*
Package cli provides command-line helpers used by the harbor command.

Output Formatting:

Commands that print structured results accept --format text|json:

	formatter := cli.NewFormatter(cli.FormatJSON)
	if err := formatter.FormatTo(os.Stdout, info); err != nil {
		return err
	}

Signal Handling:

NotifyShutdown ties SIGINT and SIGTERM to a running server. The first
signal starts a graceful shutdown; any further signal closes the server
immediately. The process never dies from the signal itself, so the command
still returns normally and exits 0:

	stop := cli.NotifyShutdown(srv, cfg.Server.ShutdownTimeout, logger)
	defer stop()
	err := srv.Start(ctx)

Exit Codes:

ExitCode maps an error returned by a command to the process exit status.
*/
package cli
