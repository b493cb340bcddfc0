// Package httpserver provides a lightweight wrapper around net/http that adds
// graceful shutdown, configurable timeouts, and structured logging via slog.
//
// Run blocks until the context is cancelled or an interrupt/TERM signal is
// received, then shuts the server down within Config.ShutdownTimeout. Listen
// errors are wrapped with ErrStart, shutdown errors with ErrShutdown, so both
// can be inspected with errors.Is.
//
//	srv := httpserver.New(cfg, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, router); err != nil {
//	    log.Error("server stopped", "error", err)
//	}
package httpserver
