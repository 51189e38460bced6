// Package logger provides structured logging for the wallpaper parser.
//
// It wraps zerolog behind a small Logger interface so components can be handed
// a TestLogger or a no-op logger in tests:
//
//	log, err := logger.New(&cfg.Logging)
//	log.WithField("stage", "paginate").Info("Listing exhausted")
//	log.InfoWithFields("Download completed", map[string]interface{}{
//	    "file": "wallpaper_flare_3.jpg",
//	})
//
// Console output goes to stderr so progress output on stdout stays readable.
package logger
