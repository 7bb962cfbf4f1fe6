/*
Package http exposes the protocol dispatcher and operational endpoints over gin.

Routes:
  - POST /mcp and POST /: one JSON-RPC request per call
  - GET /: server info
  - GET /health: catalog size and widget bundle status
  - GET /metrics, GET /metrics/json
  - GET /widget/preview: server-rendered widget for a tool call
*/
package http
