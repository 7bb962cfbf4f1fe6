package rpc

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/bytedance/sonic"
)

// api matches encoding/json output (sorted map keys, HTML escaping) so
// responses are byte-stable.
var api = sonic.ConfigStd

// Decode parses a request body. On failure it still tries to recover the id
// so the error response can be correlated by the client.
func Decode(body []byte) (*Request, json.RawMessage, error) {
	var req Request
	if err := api.Unmarshal(body, &req); err != nil {
		return nil, recoverID(body), fmt.Errorf("decode request: %w", err)
	}
	return &req, req.ID, nil
}

// Encode serializes a response.
func Encode(resp *Response) ([]byte, error) {
	return api.Marshal(resp)
}

func recoverID(body []byte) json.RawMessage {
	node, err := sonic.Get(body, "id")
	if err != nil {
		return nil
	}
	raw, err := node.Raw()
	if err != nil || !json.Valid([]byte(raw)) {
		return nil
	}
	return json.RawMessage(raw)
}

// decodeObject unmarshals params into v when they form a JSON object. Absent
// or non-object params leave v untouched and report false.
func decodeObject(params json.RawMessage, v any) bool {
	params = bytes.TrimLeft(params, " \t\r\n")
	if len(params) == 0 || params[0] != '{' {
		return false
	}
	return api.Unmarshal(params, v) == nil
}

// looseString reads a params member as text. Strings are unquoted, any other
// JSON value is kept as written and an absent member reads as empty.
func looseString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := api.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// looseObject reads a params member as an object. Anything else reads as nil.
func looseObject(raw json.RawMessage) map[string]any {
	var m map[string]any
	if !decodeObject(raw, &m) {
		return nil
	}
	return m
}
