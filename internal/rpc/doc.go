/*
Package rpc implements the JSON-RPC 2.0 dispatcher spoken by agent hosts.

Supported methods:
  - initialize, ping
  - resources/list, resources/read (the driver card widget)
  - tools/list, tools/call

Request ids are echoed byte-for-byte. Notifications get no response. Handler
failures and panics become -32603 errors; unknown methods -32601; unknown
resources -32602. Params are read loosely, so a wrongly typed tool name is
reported as an unknown tool rather than a decode error.
*/
package rpc
