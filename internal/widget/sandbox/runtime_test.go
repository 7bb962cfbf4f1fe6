package sandbox

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuntimeExecution(t *testing.T) {
	rt, err := New(DefaultConfig(), Host{})
	require.NoError(t, err)
	defer rt.Close()

	tests := []struct {
		name   string
		script string
		want   interface{}
	}{
		{"simple return", "42", int64(42)},
		{"string operations", "'hello'.toUpperCase()", "HELLO"},
		{"window is global", "var x = 7; window.x", int64(7)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := rt.Execute(context.Background(), tt.script)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Value)
		})
	}
}

func TestRuntimeSecurity(t *testing.T) {
	rt, err := New(DefaultConfig(), Host{})
	require.NoError(t, err)
	defer rt.Close()

	for _, script := range []string{"require('fs')", "process.exit(1)"} {
		t.Run(script, func(t *testing.T) {
			_, err := rt.Execute(context.Background(), script)
			assert.Error(t, err)
		})
	}
}

func TestRuntimeTimeout(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Timeout = 50 * time.Millisecond
	rt, err := New(cfg, Host{})
	require.NoError(t, err)
	defer rt.Close()

	_, err = rt.Execute(context.Background(), "for (;;) {}")
	require.Error(t, err)

	// The VM stays usable after an interrupt.
	res, err := rt.Execute(context.Background(), "1 + 1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Value)
}

func TestRuntimeContextCancel(t *testing.T) {
	rt, err := New(DefaultConfig(), Host{})
	require.NoError(t, err)
	defer rt.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = rt.Execute(ctx, "while (true) {}")
	assert.Error(t, err)
}

func TestHostStub(t *testing.T) {
	rt, err := New(DefaultConfig(), Host{
		ToolOutput: json.RawMessage(`{"drivers":[{"name":"Ada"}]}`),
		Theme:      "dark",
		Globals:    map[string]any{"__flag": true},
	})
	require.NoError(t, err)
	defer rt.Close()

	res, err := rt.Execute(context.Background(), `
		var d = window.openai.toolOutput.drivers;
		document.getElementById('root').innerHTML = d[0].name + ':' + window.openai.theme + ':' + window.__flag;
		window.openai.sendFollowupMessage({ prompt: 'hi ' + d.length });
		console.log('rendered', d.length);
		document.getElementById('missing') === null;
	`)
	require.NoError(t, err)
	assert.Equal(t, true, res.Value)
	assert.Equal(t, "Ada:dark:true", res.RootHTML)
	assert.Equal(t, []string{"hi 1"}, res.Followups)
	require.Len(t, res.Console, 1)
	assert.Equal(t, "log", res.Console[0].Level)
	assert.Equal(t, "rendered 1", res.Console[0].Message)
}

func TestSetGlobalsDispatchesEvent(t *testing.T) {
	rt, err := New(DefaultConfig(), Host{Theme: "light"})
	require.NoError(t, err)
	defer rt.Close()

	_, err = rt.Execute(context.Background(), `
		window.addEventListener('openai:set_globals', function () {
			var out = window.openai.toolOutput;
			document.getElementById('root').innerHTML = window.openai.theme + ':' + (out ? out.drivers.length : 'none');
		});
		window.bump = function (n) { return n + 1; };
	`)
	require.NoError(t, err)

	res, err := rt.SetGlobals(context.Background(), json.RawMessage(`{"drivers":[1,2]}`), "dark")
	require.NoError(t, err)
	assert.Equal(t, "dark:2", res.RootHTML)

	res, err = rt.SetGlobals(context.Background(), nil, "light")
	require.NoError(t, err)
	assert.Equal(t, "light:none", res.RootHTML)

	res, err = rt.Call(context.Background(), "bump", 41)
	require.NoError(t, err)
	assert.Equal(t, int64(42), res.Value)

	_, err = rt.Call(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotCallable)
}

func TestFollowupsCanBeDisabled(t *testing.T) {
	rt, err := New(DefaultConfig(), Host{DisableFollowups: true})
	require.NoError(t, err)
	defer rt.Close()

	res, err := rt.Execute(context.Background(), "typeof window.openai.sendFollowupMessage")
	require.NoError(t, err)
	assert.Equal(t, "undefined", res.Value)
}

func TestClosedRuntime(t *testing.T) {
	rt, err := New(DefaultConfig(), Host{})
	require.NoError(t, err)
	require.NoError(t, rt.Close())

	_, err = rt.Execute(context.Background(), "1")
	assert.Error(t, err)
}
