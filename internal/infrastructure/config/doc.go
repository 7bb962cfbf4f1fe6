// Package config provides 12-factor configuration management for the driverbook server.
//
// Configuration is loaded from environment variables with sensible defaults.
// CLI flags can override environment variables for development flexibility.
//
// Configuration Sections:
//   - Server: HTTP listen address and shutdown timeout
//   - Catalog: driver record source (local file or remote URL)
//   - Widget: host-side bundle path and the time zone used for "today"
//   - Logging: Log level and output format
//   - RateLimit: Per-IP rate limiting configuration
//   - CORS: allowed browser origins
//
// Example Usage:
//
//	cfg, err := config.Load()
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Printf("Server running on %s\n", cfg.Addr())
//
// Environment Variables:
//   - PORT, HOST, SHUTDOWN_TIMEOUT
//   - DRIVERS_DATA_PATH, DRIVERS_DATA_URL, DRIVERS_LOAD_ATTEMPTS, DRIVERS_RETRY_WAIT
//   - WIDGET_BUNDLE_PATH, WIDGET_TIMEZONE
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
//   - CORS_ORIGINS
package config
