package rpc

import (
	"context"
	"encoding/json"

	"github.com/GriffinCanCode/driverbook/internal/widget"
)

// Bundle supplies the widget script. Code returns nil when the widget is
// unavailable and the host should fall back to text.
type Bundle interface {
	Code(ctx context.Context) []byte
}

var widgetResource = Resource{
	URI:         widget.ResourceURI,
	Name:        "Driver Profile Widget",
	Description: "Interactive driver profile component with booking information",
	MimeType:    widget.ResourceMimeType,
}

func (d *Dispatcher) listResources(context.Context, json.RawMessage) (any, *Error) {
	return resourcesList{Resources: []Resource{widgetResource}}, nil
}

func (d *Dispatcher) readResource(ctx context.Context, params json.RawMessage) (any, *Error) {
	var p readParams
	decodeObject(params, &p)
	if uri := looseString(p.URI); uri != widget.ResourceURI {
		return nil, Errorf(CodeInvalidParams, "Unknown resource: %s", uri)
	}

	var code []byte
	if d.widget != nil {
		code = d.widget.Code(ctx)
	}
	return resourcesRead{Contents: []ResourceContents{{
		URI:      widget.ResourceURI,
		MimeType: widget.ResourceMimeType,
		Text:     widget.Document(code),
		Meta: map[string]any{
			"openai/widgetPrefersBorder": false,
			"openai/widgetDescription":   "Displays driver profiles with ratings, vehicle information, availability, and booking options.",
		},
	}}}, nil
}
