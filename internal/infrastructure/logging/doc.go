// Package logging provides structured logging using uber/zap.
//
// Two output modes are supported:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// Components take a *Logger and derive a tagged child with Component, so every
// line carries the subsystem that produced it (catalog, rpc, widget, http).
//
// Example Usage:
//
//	logger := logging.NewOrNop(logging.Config{Level: "info"})
//	logger.Component("rpc").Info("request", zap.String("method", "tools/list"))
//	logger.Error("catalog load failed", zap.Error(err))
package logging
