package sandbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dop251/goja"
)

// ErrNotCallable is returned by Call when the global is not a function
var ErrNotCallable = errors.New("global is not a function")

// SetGlobalsEvent is dispatched on window when host globals change
const SetGlobalsEvent = "openai:set_globals"

// Runtime wraps a goja VM with a stub widget host. State persists across
// calls, so a test can load a bundle and then drive it.
type Runtime struct {
	vm     *goja.Runtime
	config Config
	mu     sync.Mutex

	console   []LogEntry
	followups []string

	root      *goja.Object
	openai    *goja.Object
	listeners map[string][]goja.Callable
}

// New creates a sandboxed runtime with window, document and window.openai
func New(config Config, host Host) (*Runtime, error) {
	r := &Runtime{
		vm:        goja.New(),
		config:    config,
		listeners: make(map[string][]goja.Callable),
	}
	if config.MaxCallStackSize > 0 {
		r.vm.SetMaxCallStackSize(config.MaxCallStackSize)
	}

	if err := r.setupGlobals(); err != nil {
		return nil, err
	}
	if err := r.setupHost(host); err != nil {
		return nil, err
	}
	return r, nil
}

// Execute runs a script in the global scope
func (r *Runtime) Execute(ctx context.Context, script string) (*Result, error) {
	return r.run(ctx, func() (goja.Value, error) {
		return r.vm.RunString(script)
	})
}

// Call invokes the global function name with args
func (r *Runtime) Call(ctx context.Context, name string, args ...interface{}) (*Result, error) {
	return r.run(ctx, func() (goja.Value, error) {
		fn, ok := goja.AssertFunction(r.vm.Get(name))
		if !ok {
			return nil, fmt.Errorf("%s: %w", name, ErrNotCallable)
		}
		vals := make([]goja.Value, len(args))
		for i, a := range args {
			vals[i] = r.vm.ToValue(a)
		}
		return fn(goja.Undefined(), vals...)
	})
}

// SetGlobals replaces the host globals and dispatches openai:set_globals
func (r *Runtime) SetGlobals(ctx context.Context, toolOutput json.RawMessage, theme string) (*Result, error) {
	return r.run(ctx, func() (goja.Value, error) {
		if err := r.setToolOutput(toolOutput); err != nil {
			return nil, err
		}
		if err := r.openai.Set("theme", theme); err != nil {
			return nil, err
		}
		event := r.vm.NewObject()
		_ = event.Set("type", SetGlobalsEvent)
		for _, fn := range r.listeners[SetGlobalsEvent] {
			if _, err := fn(goja.Undefined(), event); err != nil {
				return nil, err
			}
		}
		return goja.Undefined(), nil
	})
}

// run applies the timeout and collects output
func (r *Runtime) run(ctx context.Context, fn func() (goja.Value, error)) (*Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.vm == nil {
		return nil, errors.New("runtime closed")
	}

	start := time.Now()
	r.console = r.console[:0]
	r.followups = r.followups[:0]

	timeout := r.config.Timeout
	if timeout <= 0 {
		timeout = DefaultConfig().Timeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	done := make(chan struct{})
	exited := make(chan struct{})
	go func() {
		defer close(exited)
		select {
		case <-timer.C:
			r.vm.Interrupt("execution timeout exceeded")
		case <-ctx.Done():
			r.vm.Interrupt("context cancelled")
		case <-done:
		}
	}()

	val, err := fn()
	close(done)
	<-exited
	r.vm.ClearInterrupt()

	result := &Result{
		Duration:  time.Since(start),
		Console:   append([]LogEntry{}, r.console...),
		Followups: append([]string{}, r.followups...),
		RootHTML:  r.rootHTML(),
	}
	if err != nil {
		return result, err
	}
	result.Value = exportValue(val)
	return result, nil
}

// setupGlobals removes host escape hatches and installs console and timers
func (r *Runtime) setupGlobals() error {
	for _, name := range []string{"require", "process", "module", "exports"} {
		if err := r.vm.Set(name, goja.Undefined()); err != nil {
			return err
		}
	}

	console := r.vm.NewObject()
	for _, level := range []string{"log", "warn", "error", "info"} {
		if err := console.Set(level, r.makeConsoleFunc(level)); err != nil {
			return err
		}
	}
	if err := r.vm.Set("console", console); err != nil {
		return err
	}

	// Timers never fire.
	noop := func(goja.FunctionCall) goja.Value { return goja.Undefined() }
	_ = r.vm.Set("setTimeout", noop)
	_ = r.vm.Set("setInterval", noop)
	_ = r.vm.Set("clearTimeout", noop)
	return nil
}

// setupHost installs window, document and window.openai
func (r *Runtime) setupHost(host Host) error {
	global := r.vm.GlobalObject()
	if err := r.vm.Set("window", global); err != nil {
		return err
	}
	if err := r.vm.Set("globalThis", global); err != nil {
		return err
	}

	_ = global.Set("addEventListener", func(call goja.FunctionCall) goja.Value {
		if fn, ok := goja.AssertFunction(call.Argument(1)); ok {
			typ := call.Argument(0).String()
			r.listeners[typ] = append(r.listeners[typ], fn)
		}
		return goja.Undefined()
	})
	_ = global.Set("removeEventListener", func(goja.FunctionCall) goja.Value { return goja.Undefined() })

	for k, v := range host.Globals {
		if err := global.Set(k, v); err != nil {
			return err
		}
	}

	r.root = r.vm.NewObject()
	_ = r.root.Set("id", "root")
	_ = r.root.Set("innerHTML", "")

	document := r.vm.NewObject()
	_ = document.Set("getElementById", func(call goja.FunctionCall) goja.Value {
		if call.Argument(0).String() == "root" {
			return r.root
		}
		return goja.Null()
	})
	_ = document.Set("querySelector", func(call goja.FunctionCall) goja.Value {
		if call.Argument(0).String() == "#root" {
			return r.root
		}
		return goja.Null()
	})
	if err := r.vm.Set("document", document); err != nil {
		return err
	}

	r.openai = r.vm.NewObject()
	if err := r.setToolOutput(host.ToolOutput); err != nil {
		return err
	}
	_ = r.openai.Set("theme", host.Theme)
	if !host.DisableFollowups {
		_ = r.openai.Set("sendFollowupMessage", r.sendFollowup)
	}
	return global.Set("openai", r.openai)
}

func (r *Runtime) setToolOutput(raw json.RawMessage) error {
	if len(raw) == 0 {
		return r.openai.Delete("toolOutput")
	}
	parse, ok := goja.AssertFunction(r.vm.Get("JSON").ToObject(r.vm).Get("parse"))
	if !ok {
		return errors.New("JSON.parse unavailable")
	}
	val, err := parse(goja.Undefined(), r.vm.ToValue(string(raw)))
	if err != nil {
		return fmt.Errorf("parse tool output: %w", err)
	}
	return r.openai.Set("toolOutput", val)
}

// sendFollowup records the prompt
func (r *Runtime) sendFollowup(call goja.FunctionCall) goja.Value {
	if obj, ok := call.Argument(0).(*goja.Object); ok {
		if p := obj.Get("prompt"); p != nil && !goja.IsUndefined(p) {
			r.followups = append(r.followups, p.String())
		}
	}
	return goja.Undefined()
}

// makeConsoleFunc creates a console function
func (r *Runtime) makeConsoleFunc(level string) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		if !r.config.EnableConsole {
			return goja.Undefined()
		}
		parts := make([]string, len(call.Arguments))
		for i, arg := range call.Arguments {
			parts[i] = arg.String()
		}
		r.console = append(r.console, LogEntry{
			Level:   level,
			Message: strings.Join(parts, " "),
			Time:    time.Now(),
		})
		return goja.Undefined()
	}
}

func (r *Runtime) rootHTML() string {
	if v := r.root.Get("innerHTML"); v != nil && !goja.IsUndefined(v) && !goja.IsNull(v) {
		return v.String()
	}
	return ""
}

// exportValue converts goja value to Go value
func exportValue(val goja.Value) interface{} {
	if val == nil || goja.IsUndefined(val) || goja.IsNull(val) {
		return nil
	}
	return val.Export()
}

// Close releases the VM
func (r *Runtime) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.vm = nil
	r.console = nil
	r.listeners = nil
	return nil
}
