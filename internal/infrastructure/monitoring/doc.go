/*
Package monitoring provides metrics collection for the driverbook server.

# Overview

Metrics are Prometheus collectors registered on a registry owned by the
Metrics value (not the global default registry), exposed through Handler.

# Features

- HTTP request metrics (latency, throughput, response size)
- JSON-RPC dispatch metrics by method and outcome
- Tool invocation metrics by tool and status
- Catalog size and widget bundle availability gauges
- Server-side widget render counts

# Usage

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	metrics.RecordToolCall("search_drivers", "ok", elapsed)
*/
package monitoring
