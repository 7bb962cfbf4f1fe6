// Package main is the entry point for the driverbook server.
//
// The server answers JSON-RPC requests from agent hosts over HTTP, exposing
// three driver tools and the driver card widget resource.
//
// Configuration:
//   - Environment variables (12-factor)
//   - CLI flags (override env vars)
//   - Defaults for development
//
// Usage:
//
//	# Production mode
//	./server -port 3000 -data data/drivers.json
//
//	# Remote catalog
//	./server -data-url https://example.com/drivers.yaml
//
//	# Development mode (colored logs, debug level)
//	./server -dev
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
