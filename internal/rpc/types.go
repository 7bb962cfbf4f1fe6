package rpc

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Version is the only JSON-RPC version spoken.
const Version = "2.0"

// Standard error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// Request is an inbound JSON-RPC call. The id is kept raw so it can be echoed
// exactly as received, whatever its JSON type.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// IsNotification reports whether the request expects no response.
func (r *Request) IsNotification() bool {
	return len(r.ID) == 0 && strings.HasPrefix(r.Method, "notifications/")
}

// Response carries exactly one of Result or Error.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// Error is a JSON-RPC error object.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// Errorf builds an Error with a formatted message.
func Errorf(code int, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

var nullID = json.RawMessage("null")

func result(id json.RawMessage, res any) *Response {
	return &Response{JSONRPC: Version, ID: echo(id), Result: res}
}

func failure(id json.RawMessage, err *Error) *Response {
	return &Response{JSONRPC: Version, ID: echo(id), Error: err}
}

func echo(id json.RawMessage) json.RawMessage {
	if len(id) == 0 {
		return nullID
	}
	return id
}

// Method results.

// InitializeResult answers initialize.
type InitializeResult struct {
	ProtocolVersion string       `json:"protocolVersion"`
	Capabilities    Capabilities `json:"capabilities"`
	ServerInfo      ServerInfo   `json:"serverInfo"`
}

// Capabilities advertises the supported feature groups.
type Capabilities struct {
	Tools     struct{} `json:"tools"`
	Resources struct{} `json:"resources"`
}

// ServerInfo identifies the server.
type ServerInfo struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description"`
}

// Resource is one entry of resources/list.
type Resource struct {
	URI         string `json:"uri"`
	Name        string `json:"name"`
	Description string `json:"description"`
	MimeType    string `json:"mimeType"`
}

// ResourceContents is one entry of resources/read.
type ResourceContents struct {
	URI      string         `json:"uri"`
	MimeType string         `json:"mimeType"`
	Text     string         `json:"text"`
	Meta     map[string]any `json:"_meta,omitempty"`
}

type resourcesList struct {
	Resources []Resource `json:"resources"`
}

type resourcesRead struct {
	Contents []ResourceContents `json:"contents"`
}

// Params members are decoded loosely: a wrongly typed member surfaces as an
// unknown tool or resource rather than a decode error.
type readParams struct {
	URI json.RawMessage `json:"uri"`
}

type callParams struct {
	Name      json.RawMessage `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}
