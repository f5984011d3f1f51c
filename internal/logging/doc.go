// Package logging provides structured module loggers on top of log/slog.
//
// Every module gets one cached logger from GetLogger, tagged with a
// "module" attribute. Levels are set globally and per module through
// Initialize, which may run before or after loggers are handed out:
//
//	logging.Initialize(logging.Config{
//		Level:   "info",
//		Format:  "text",
//		Modules: map[string]string{"binder": "debug"},
//	})
//	log := logging.GetLogger("binder")
//	log.Debug("Plane enabled", "plane", 42)
//
// Records go to standard error as text or JSON, and additionally to the
// systemd journal when journald is running, with SYSLOG_IDENTIFIER set to
// Identifier and every attribute as an upper-case field:
//
//	journalctl -t mlcsnap MODULE=binder
//	journalctl -t mlcsnap -p warning
//
// In the TOML configuration, keys under [logging] other than level and
// format are module levels:
//
//	[logging]
//	level = "info"
//	format = "text"
//	capture = "debug"
package logging
