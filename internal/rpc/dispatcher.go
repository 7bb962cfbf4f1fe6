package rpc

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/GriffinCanCode/driverbook/internal/domain/tools"
	"github.com/GriffinCanCode/driverbook/internal/infrastructure/logging"
	"github.com/GriffinCanCode/driverbook/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/driverbook/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/driverbook/internal/utils"
	"go.uber.org/zap"
)

// Server identity reported by initialize.
const (
	ProtocolVersion   = "2024-11-05"
	ServerName        = "drivers"
	ServerVersion     = "1.0.0"
	ServerDescription = "Find and book professional drivers in your area. Browse available drivers, view their profiles with ratings and availability, and book rides for any occasion."
)

// HandlerFunc serves one method. Exactly one of the return values is non-nil.
type HandlerFunc func(ctx context.Context, params json.RawMessage) (any, *Error)

// Dispatcher routes requests to method handlers.
type Dispatcher struct {
	methods map[string]HandlerFunc
	tools   *tools.Registry
	widget  Bundle

	logger  *logging.Logger
	metrics *monitoring.Metrics
	tracer  *tracing.Tracer
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the request logger.
func WithLogger(l *logging.Logger) Option {
	return func(d *Dispatcher) { d.logger = l.Component("rpc") }
}

// WithMetrics records per-method and per-tool metrics.
func WithMetrics(m *monitoring.Metrics) Option {
	return func(d *Dispatcher) { d.metrics = m }
}

// WithTracer opens a span per dispatched request.
func WithTracer(t *tracing.Tracer) Option {
	return func(d *Dispatcher) { d.tracer = t }
}

// NewDispatcher builds the method table over a tool registry and the widget
// bundle. A nil bundle serves the widget resource without a script body.
func NewDispatcher(registry *tools.Registry, widget Bundle, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		tools:  registry,
		widget: widget,
		logger: logging.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}

	d.methods = map[string]HandlerFunc{
		"initialize":     d.initialize,
		"ping":           d.ping,
		"resources/list": d.listResources,
		"resources/read": d.readResource,
		"tools/list":     d.listTools,
		"tools/call":     d.callTool,
	}
	return d
}

// Methods returns the registered method names.
func (d *Dispatcher) Methods() []string {
	names := make([]string, 0, len(d.methods))
	for name := range d.methods {
		names = append(names, name)
	}
	return names
}

// Handle dispatches one request. It returns nil for notifications.
func (d *Dispatcher) Handle(ctx context.Context, req *Request) *Response {
	if req.IsNotification() {
		d.logger.Debug("notification", zap.String("method", req.Method))
		return nil
	}

	start := time.Now()
	if d.tracer != nil {
		var span *tracing.Span
		span, ctx = d.tracer.StartSpan(ctx, "rpc "+req.Method)
		defer d.tracer.Finish(span)
		span.SetTag("rpc.method", req.Method)
	}

	resp := d.dispatch(ctx, req)

	outcome := outcomeOf(resp.Error)
	if d.metrics != nil {
		d.metrics.RecordRPC(metricMethod(req.Method, d.methods), outcome, time.Since(start))
	}
	fields := []zap.Field{
		zap.String("method", req.Method),
		zap.String("outcome", outcome),
		zap.Duration("duration", time.Since(start)),
	}
	if resp.Error != nil {
		d.logger.Warn("rpc request failed", append(fields, zap.Int("code", resp.Error.Code), zap.String("error", resp.Error.Message))...)
	} else {
		d.logger.Info("rpc request", fields...)
	}
	return resp
}

// HandleBytes decodes, dispatches and reports the HTTP status to use. A nil
// response means nothing should be written.
func (d *Dispatcher) HandleBytes(ctx context.Context, body []byte) (*Response, int) {
	req, id, err := Decode(body)
	if err == nil {
		err = utils.DefaultJSONValidator().ValidateSize(body)
	}
	if err != nil {
		d.logger.Warn("malformed rpc request", zap.Error(err))
		if d.metrics != nil {
			d.metrics.RecordRPC("malformed", monitoring.OutcomeInternal, 0)
		}
		return failure(id, &Error{Code: CodeInternalError, Message: err.Error()}), http.StatusInternalServerError
	}

	resp := d.Handle(ctx, req)
	if resp == nil {
		return nil, http.StatusAccepted
	}
	return resp, http.StatusOK
}

func (d *Dispatcher) dispatch(ctx context.Context, req *Request) (resp *Response) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("rpc handler panic", zap.String("method", req.Method), zap.Any("panic", r), zap.Stack("stack"))
			resp = failure(req.ID, Errorf(CodeInternalError, "%v", r))
		}
	}()

	handler, ok := d.methods[req.Method]
	if !ok {
		return failure(req.ID, Errorf(CodeMethodNotFound, "Method not found: %s", req.Method))
	}

	res, rpcErr := handler(ctx, req.Params)
	if rpcErr != nil {
		return failure(req.ID, rpcErr)
	}
	return result(req.ID, res)
}

func (d *Dispatcher) initialize(context.Context, json.RawMessage) (any, *Error) {
	return InitializeResult{
		ProtocolVersion: ProtocolVersion,
		ServerInfo: ServerInfo{
			Name:        ServerName,
			Version:     ServerVersion,
			Description: ServerDescription,
		},
	}, nil
}

func (d *Dispatcher) ping(context.Context, json.RawMessage) (any, *Error) {
	return struct{}{}, nil
}

func (d *Dispatcher) listTools(context.Context, json.RawMessage) (any, *Error) {
	return struct {
		Tools []tools.Descriptor `json:"tools"`
	}{Tools: d.tools.List()}, nil
}

func (d *Dispatcher) callTool(ctx context.Context, params json.RawMessage) (any, *Error) {
	var p callParams
	decodeObject(params, &p)
	name, args := looseString(p.Name), looseObject(p.Arguments)

	// Oversized or deeply nested arguments fail like any other tool error.
	if err := utils.ValidateArguments(args); err != nil {
		if d.metrics != nil {
			d.metrics.RecordToolCall(metricTool(name, d.tools), "error", 0)
		}
		return nil, Errorf(CodeInternalError, "Invalid arguments for %s: %v", name, err)
	}

	start := time.Now()
	res, err := d.tools.Call(ctx, name, args)
	if d.metrics != nil {
		d.metrics.RecordToolCall(metricTool(name, d.tools), toolStatus(err), time.Since(start))
	}
	if err != nil {
		return nil, &Error{Code: CodeInternalError, Message: err.Error()}
	}
	return res, nil
}

func outcomeOf(err *Error) string {
	if err == nil {
		return monitoring.OutcomeOK
	}
	switch err.Code {
	case CodeMethodNotFound:
		return monitoring.OutcomeMethodMissing
	case CodeInvalidParams:
		return monitoring.OutcomeInvalidParams
	default:
		return monitoring.OutcomeInternal
	}
}

// metricMethod bounds label cardinality to the known method set.
func metricMethod(method string, known map[string]HandlerFunc) string {
	if _, ok := known[method]; ok {
		return method
	}
	return "unknown"
}

func metricTool(name string, registry *tools.Registry) string {
	if _, ok := registry.Get(name); ok {
		return name
	}
	return "unknown"
}

func toolStatus(err error) string {
	if err == nil {
		return "success"
	}
	return "error"
}
