// Package logging provides structured logging with per-module log level
// configuration.
//
// The logging system uses Go's slog package with automatic output routing:
// stdout when a terminal, pipe, or file is connected; the systemd journal
// when journald is available; and a ring buffer of recent entries served by
// the HTTP API.
//
// Initialize the logging system once at startup:
//
//	logging.Initialize(logging.Config{
//		Level:  "info",
//		Format: "text",
//		Modules: map[string]string{
//			"streaming": "debug",
//			"api":       "warn",
//		},
//	})
//
// Get a logger for your module:
//
//	logger := logging.GetLogger("streaming")
//	logger.Info("stream opened", "direction", "rx", "mtu", 4096)
//
// When running under systemd:
//
//	journalctl -t soapybladerf -f
//	journalctl -t soapybladerf MODULE=streaming
package logging
