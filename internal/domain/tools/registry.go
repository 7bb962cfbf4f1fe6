package tools

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/GriffinCanCode/driverbook/internal/domain/catalog"
)

var (
	// ErrUnknownTool is returned by Call for a name that was never registered.
	ErrUnknownTool = errors.New("unknown tool")
	// ErrInvalidArgument is returned when an argument has the wrong JSON type.
	ErrInvalidArgument = errors.New("invalid argument")
)

// Descriptor is the discovery record advertised by tools/list.
type Descriptor struct {
	Name        string            `json:"name"`
	Title       string            `json:"title,omitempty"`
	Description string            `json:"description"`
	InputSchema InputSchema       `json:"inputSchema"`
	Meta        map[string]string `json:"_meta,omitempty"`
}

// InputSchema is the JSON-schema subset used for tool arguments.
type InputSchema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties"`
	Required   []string            `json:"required,omitempty"`
}

// Property describes one argument.
type Property struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

// Content is one block of tool output.
type Content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Structured carries records for the widget alongside the text.
type Structured struct {
	Drivers []catalog.Driver `json:"drivers"`
}

// Result is what tools/call returns on success.
type Result struct {
	Content           []Content   `json:"content"`
	StructuredContent *Structured `json:"structuredContent,omitempty"`
}

// TextResult builds a text-only result.
func TextResult(text string) *Result {
	return &Result{Content: []Content{{Type: "text", Text: text}}}
}

// Tool is a registered tool implementation.
type Tool interface {
	Descriptor() Descriptor
	Execute(ctx context.Context, args map[string]any) (*Result, error)
}

// Registry holds tools in registration order.
type Registry struct {
	mu    sync.RWMutex
	order []string
	tools map[string]Tool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds a tool. Names must be unique and non-empty.
func (r *Registry) Register(tool Tool) error {
	name := tool.Descriptor().Name
	if name == "" {
		return fmt.Errorf("tool name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool %q already registered", name)
	}
	r.tools[name] = tool
	r.order = append(r.order, name)
	return nil
}

// Get retrieves a tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// List returns all descriptors in registration order.
func (r *Registry) List() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Descriptor, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name].Descriptor())
	}
	return out
}

// Call runs the named tool. A nil args map is treated as empty.
func (r *Registry) Call(ctx context.Context, name string, args map[string]any) (*Result, error) {
	tool, ok := r.Get(name)
	if !ok {
		return nil, &UnknownToolError{Name: name}
	}
	if args == nil {
		args = map[string]any{}
	}
	return tool.Execute(ctx, args)
}

// UnknownToolError reports a call to an unregistered tool. Its message is
// what clients see.
type UnknownToolError struct {
	Name string
}

func (e *UnknownToolError) Error() string { return "Unknown tool: " + e.Name }

func (e *UnknownToolError) Is(target error) bool { return target == ErrUnknownTool }

// optionalString reads an optional string argument. Absent and null are
// both treated as unset.
func optionalString(args map[string]any, key string) (string, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s must be a string, got %T", ErrInvalidArgument, key, v)
	}
	return s, nil
}
