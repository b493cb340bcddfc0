// Package logger provides a small factory around log/slog with environment
// driven configuration.
//
// The factory produces either JSON (production) or text (development) handlers
// and supports static attributes attached to every record, which is how the
// service name and environment are injected once at startup.
//
// # Usage
//
//	var cfg logger.Config
//	if err := env.Parse(&cfg); err != nil {
//	    panic(err)
//	}
//
//	log := logger.NewFromConfig(cfg, logger.WithAttr(slog.String("service", "planforge")))
//	log.Info("server starting", "addr", ":8080")
//
// Services that accept a logger through functional options should default to
// NewDiscard so logging stays opt-in.
package logger
