package rpc

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/GriffinCanCode/driverbook/internal/domain/catalog"
	"github.com/GriffinCanCode/driverbook/internal/domain/tools"
	"github.com/GriffinCanCode/driverbook/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/driverbook/internal/infrastructure/tracing"
	"github.com/antchfx/htmlquery"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type staticBundle []byte

func (b staticBundle) Code(context.Context) []byte { return b }

type panicTool struct{}

func (panicTool) Descriptor() tools.Descriptor {
	return tools.Descriptor{Name: "explode", InputSchema: tools.InputSchema{Type: "object"}}
}

func (panicTool) Execute(context.Context, map[string]any) (*tools.Result, error) {
	panic("boom")
}

func testStore() *catalog.Store {
	return catalog.NewStore(catalog.StaticSource{
		{ID: "driver-001", Name: "Marcus Johnson", Rating: 4.9, HourlyRate: 45,
			Vehicle: catalog.Vehicle{Type: "Sedan"}, ServiceArea: catalog.ServiceArea{City: "San Francisco"}},
		{ID: "driver-002", Name: "Sarah Chen", Rating: 4.8, HourlyRate: 55,
			Vehicle: catalog.Vehicle{Type: "SUV"}, ServiceArea: catalog.ServiceArea{City: "Oakland"}},
	}, nil)
}

func newTestDispatcher(opts ...Option) *Dispatcher {
	return NewDispatcher(tools.NewDriverRegistry(testStore()), staticBundle("render();"), opts...)
}

type wireResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *Error          `json:"error"`
}

func call(t *testing.T, d *Dispatcher, body string) (wireResponse, int) {
	t.Helper()
	resp, status := d.HandleBytes(context.Background(), []byte(body))
	if resp == nil {
		return wireResponse{}, status
	}
	data, err := Encode(resp)
	require.NoError(t, err)

	var out wireResponse
	require.NoError(t, json.Unmarshal(data, &out))
	return out, status
}

func TestInitialize(t *testing.T) {
	resp, status := call(t, newTestDispatcher(), `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05"}}`)
	require.Equal(t, http.StatusOK, status)
	require.Nil(t, resp.Error)
	assert.Equal(t, "2.0", resp.JSONRPC)

	var res InitializeResult
	require.NoError(t, json.Unmarshal(resp.Result, &res))
	assert.Equal(t, "2024-11-05", res.ProtocolVersion)
	assert.Equal(t, "drivers", res.ServerInfo.Name)
	assert.Equal(t, "1.0.0", res.ServerInfo.Version)
	assert.JSONEq(t, `{"tools":{},"resources":{}}`, string(mustField(t, resp.Result, "capabilities")))
}

func mustField(t *testing.T, raw json.RawMessage, key string) json.RawMessage {
	t.Helper()
	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &m))
	v, ok := m[key]
	require.True(t, ok, "missing %q", key)
	return v
}

func TestPing(t *testing.T) {
	resp, status := call(t, newTestDispatcher(), `{"jsonrpc":"2.0","id":"p","method":"ping"}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Nil(t, resp.Error)
	assert.JSONEq(t, `{}`, string(resp.Result))
}

func TestIDEcho(t *testing.T) {
	d := newTestDispatcher()
	tests := map[string]string{
		`"abc-123"`: `{"jsonrpc":"2.0","id":"abc-123","method":"ping"}`,
		`42`:        `{"jsonrpc":"2.0","id":42,"method":"ping"}`,
		`1.5`:       `{"jsonrpc":"2.0","id":1.5,"method":"nope"}`,
		`null`:      `{"jsonrpc":"2.0","id":null,"method":"ping"}`,
	}
	for want, body := range tests {
		resp, _ := call(t, d, body)
		assert.JSONEq(t, want, string(resp.ID), body)
	}

	resp, _ := call(t, d, `{"jsonrpc":"2.0","method":"ping"}`)
	assert.Equal(t, "null", string(resp.ID), "missing id on a request echoes null")
}

func TestToolsList(t *testing.T) {
	resp, _ := call(t, newTestDispatcher(), `{"jsonrpc":"2.0","id":2,"method":"tools/list"}`)
	require.Nil(t, resp.Error)

	var res struct {
		Tools []tools.Descriptor `json:"tools"`
	}
	require.NoError(t, json.Unmarshal(resp.Result, &res))
	require.Len(t, res.Tools, 3)
	assert.Equal(t, []string{"search_drivers", "list_all_drivers", "get_driver_details"},
		[]string{res.Tools[0].Name, res.Tools[1].Name, res.Tools[2].Name})
	assert.Equal(t, []string{"driverId"}, res.Tools[2].InputSchema.Required)
}

func TestToolsCall(t *testing.T) {
	resp, status := call(t, newTestDispatcher(),
		`{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"search_drivers","arguments":{"city":"oak"}}}`)
	require.Equal(t, http.StatusOK, status)
	require.Nil(t, resp.Error)

	var res tools.Result
	require.NoError(t, json.Unmarshal(resp.Result, &res))
	require.Len(t, res.Content, 1)
	assert.Equal(t, "text", res.Content[0].Type)
	assert.True(t, strings.HasPrefix(res.Content[0].Text, "\n# 🚗 Sarah Chen\n"))
	require.NotNil(t, res.StructuredContent)
	require.Len(t, res.StructuredContent.Drivers, 1)
	assert.Equal(t, "driver-002", res.StructuredContent.Drivers[0].ID)
}

func TestToolsCallWithoutArguments(t *testing.T) {
	resp, _ := call(t, newTestDispatcher(),
		`{"jsonrpc":"2.0","id":4,"method":"tools/call","params":{"name":"list_all_drivers"}}`)
	require.Nil(t, resp.Error)

	var res tools.Result
	require.NoError(t, json.Unmarshal(resp.Result, &res))
	require.Len(t, res.Content, 1)
	assert.Contains(t, res.Content[0].Text, "# Available Drivers")
	assert.Nil(t, res.StructuredContent)
}

func TestToolsCallIgnoresNonObjectArguments(t *testing.T) {
	resp, _ := call(t, newTestDispatcher(),
		`{"jsonrpc":"2.0","id":4,"method":"tools/call","params":{"name":"search_drivers","arguments":"x"}}`)
	require.Nil(t, resp.Error)

	var res tools.Result
	require.NoError(t, json.Unmarshal(resp.Result, &res))
	require.NotNil(t, res.StructuredContent)
	assert.Len(t, res.StructuredContent.Drivers, 2)
}

func TestErrors(t *testing.T) {
	d := newTestDispatcher()
	tests := []struct {
		name    string
		body    string
		code    int
		message string
	}{
		{"unknown method", `{"jsonrpc":"2.0","id":1,"method":"prompts/list"}`, CodeMethodNotFound, "Method not found: prompts/list"},
		{"unknown tool", `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"nope"}}`, CodeInternalError, "Unknown tool: nope"},
		{"bad argument", `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"search_drivers","arguments":{"city":7}}}`, CodeInternalError, ""},
		{"unknown resource", `{"jsonrpc":"2.0","id":1,"method":"resources/read","params":{"uri":"ui://widget/other.html"}}`, CodeInvalidParams, "Unknown resource: ui://widget/other.html"},
		{"deep arguments", `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"search_drivers","arguments":{"city":[[[[[[[[[["x"]]]]]]]]]]}}}`, CodeInternalError, "Invalid arguments for search_drivers: arguments: JSON nesting depth 9 exceeds maximum 8"},
		{"numeric tool name", `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":5}}`, CodeInternalError, "Unknown tool: 5"},
		{"array params", `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":[1,2]}`, CodeInternalError, "Unknown tool: "},
		{"numeric resource uri", `{"jsonrpc":"2.0","id":1,"method":"resources/read","params":{"uri":5}}`, CodeInvalidParams, "Unknown resource: 5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, status := call(t, d, tt.body)
			assert.Equal(t, http.StatusOK, status)
			assert.Nil(t, resp.Result)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
			if tt.message != "" {
				assert.Equal(t, tt.message, resp.Error.Message)
			}
			assert.Equal(t, "1", string(resp.ID))
		})
	}
}

func TestMalformedBody(t *testing.T) {
	d := newTestDispatcher()

	resp, status := call(t, d, `{"jsonrpc":"2.0","id":9,"method":42}`)
	assert.Equal(t, http.StatusInternalServerError, status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeInternalError, resp.Error.Code)
	assert.Equal(t, "9", string(resp.ID), "id recovered from an undecodable request")

	big := `{"jsonrpc":"2.0","id":10,"method":"ping","params":{"pad":"` + strings.Repeat("x", 1<<20) + `"}}`
	resp, status = call(t, d, big)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "10", string(resp.ID))

	resp, status = call(t, d, `not json`)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "null", string(resp.ID))
}

func TestNotifications(t *testing.T) {
	d := newTestDispatcher()

	resp, status := d.HandleBytes(context.Background(), []byte(`{"jsonrpc":"2.0","method":"notifications/initialized"}`))
	assert.Nil(t, resp)
	assert.Equal(t, http.StatusAccepted, status)

	// With an id it is a request and gets an answer.
	out, status := call(t, d, `{"jsonrpc":"2.0","id":5,"method":"notifications/initialized"}`)
	assert.Equal(t, http.StatusOK, status)
	require.NotNil(t, out.Error)
	assert.Equal(t, CodeMethodNotFound, out.Error.Code)
}

func TestPanicRecovery(t *testing.T) {
	registry := tools.NewRegistry()
	require.NoError(t, registry.Register(panicTool{}))
	d := NewDispatcher(registry, nil)

	resp, status := call(t, d, `{"jsonrpc":"2.0","id":"x","method":"tools/call","params":{"name":"explode"}}`)
	assert.Equal(t, http.StatusOK, status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeInternalError, resp.Error.Code)
	assert.Equal(t, "boom", resp.Error.Message)

	// The dispatcher keeps serving.
	resp, _ = call(t, d, `{"jsonrpc":"2.0","id":"y","method":"ping"}`)
	assert.Nil(t, resp.Error)
}

func TestResourcesList(t *testing.T) {
	resp, _ := call(t, newTestDispatcher(), `{"jsonrpc":"2.0","id":1,"method":"resources/list"}`)
	require.Nil(t, resp.Error)

	var res resourcesList
	require.NoError(t, json.Unmarshal(resp.Result, &res))
	require.Len(t, res.Resources, 1)
	assert.Equal(t, "ui://widget/driver-card.html", res.Resources[0].URI)
	assert.Equal(t, "text/html+skybridge", res.Resources[0].MimeType)
}

func TestResourcesRead(t *testing.T) {
	resp, _ := call(t, newTestDispatcher(),
		`{"jsonrpc":"2.0","id":1,"method":"resources/read","params":{"uri":"ui://widget/driver-card.html"}}`)
	require.Nil(t, resp.Error)

	var res resourcesRead
	require.NoError(t, json.Unmarshal(resp.Result, &res))
	require.Len(t, res.Contents, 1)
	content := res.Contents[0]
	assert.Equal(t, "text/html+skybridge", content.MimeType)
	assert.Equal(t, false, content.Meta["openai/widgetPrefersBorder"])
	assert.NotEmpty(t, content.Meta["openai/widgetDescription"])

	doc, err := htmlquery.Parse(strings.NewReader(content.Text))
	require.NoError(t, err)
	assert.NotNil(t, htmlquery.FindOne(doc, `//div[@id="root"]`))
	script := htmlquery.FindOne(doc, `//script[@type="module"]`)
	require.NotNil(t, script)
	assert.Equal(t, "render();", htmlquery.InnerText(script))
}

func TestResourcesReadWithoutBundle(t *testing.T) {
	d := NewDispatcher(tools.NewDriverRegistry(testStore()), nil)
	resp, _ := call(t, d,
		`{"jsonrpc":"2.0","id":1,"method":"resources/read","params":{"uri":"ui://widget/driver-card.html"}}`)
	require.Nil(t, resp.Error)

	var res resourcesRead
	require.NoError(t, json.Unmarshal(resp.Result, &res))
	doc, err := htmlquery.Parse(strings.NewReader(res.Contents[0].Text))
	require.NoError(t, err)
	script := htmlquery.FindOne(doc, `//script[@type="module"]`)
	require.NotNil(t, script)
	assert.Empty(t, htmlquery.InnerText(script))
}

func TestMetricsAndTracing(t *testing.T) {
	metrics := monitoring.NewMetrics()
	tracer := tracing.New(zap.NewNop())
	defer tracer.Close()
	d := newTestDispatcher(WithMetrics(metrics), WithTracer(tracer))

	call(t, d, `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"list_all_drivers"}}`)
	call(t, d, `{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"nope"}}`)
	call(t, d, `{"jsonrpc":"2.0","id":3,"method":"no/such/method"}`)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.RPCRequests.WithLabelValues("tools/call", monitoring.OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.RPCRequests.WithLabelValues("tools/call", monitoring.OutcomeInternal)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.RPCRequests.WithLabelValues("unknown", monitoring.OutcomeMethodMissing)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ToolCalls.WithLabelValues("list_all_drivers", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ToolCalls.WithLabelValues("unknown", "error")))

	snap := metrics.Snapshot()
	assert.Equal(t, int64(2), snap.RPCErrors)
	assert.Equal(t, int64(2), snap.ToolCalls)
}

func TestMethods(t *testing.T) {
	assert.ElementsMatch(t,
		[]string{"initialize", "ping", "resources/list", "resources/read", "tools/list", "tools/call"},
		newTestDispatcher().Methods())
}
