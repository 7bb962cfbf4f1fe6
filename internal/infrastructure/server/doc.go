// Package server assembles the driverbook process: catalog store, tool
// registry, protocol dispatcher and widget bundle behind a gin router with
// tracing, metrics, CORS, rate limiting and gzip compression.
package server
