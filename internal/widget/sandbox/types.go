package sandbox

import (
	"encoding/json"
	"time"
)

// Config defines sandbox configuration
type Config struct {
	Timeout          time.Duration // Execution timeout
	MaxCallStackSize int           // Recursion guard, 0 keeps the goja default
	EnableConsole    bool          // Capture console.log/warn/error/info
}

// DefaultConfig returns limits suitable for validating a widget bundle
func DefaultConfig() Config {
	return Config{
		Timeout:          2 * time.Second,
		MaxCallStackSize: 1024,
		EnableConsole:    true,
	}
}

// Host is the stub of the agent host exposed to the script as window.openai
type Host struct {
	// ToolOutput is injected as window.openai.toolOutput. Nil leaves it undefined.
	ToolOutput json.RawMessage
	// Theme is injected as window.openai.theme
	Theme string
	// Globals are extra properties set on window before the script runs
	Globals map[string]any
	// DisableFollowups leaves sendFollowupMessage undefined
	DisableFollowups bool
}

// Result holds execution result
type Result struct {
	Value     interface{}   // Return value of the script
	Console   []LogEntry    // Console output
	RootHTML  string        // innerHTML of #root after the run
	Followups []string      // Prompts sent through sendFollowupMessage
	Duration  time.Duration // Execution time
}

// LogEntry represents console output
type LogEntry struct {
	Level   string    // log, warn, error, info
	Message string    // Log message
	Time    time.Time // Timestamp
}
