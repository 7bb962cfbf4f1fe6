package widget

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/GriffinCanCode/driverbook/internal/infrastructure/logging"
	"github.com/GriffinCanCode/driverbook/internal/widget/sandbox"
	"go.uber.org/zap"
)

// ErrBundleInvalid is returned by Validate when the bundle does not render
// the empty state.
var ErrBundleInvalid = errors.New("widget bundle failed validation")

const emptyPlaceholder = "No drivers available"

// BundleOptions tunes a BundleSource.
type BundleOptions struct {
	Logger *logging.Logger
	// TimeZone is handed to the bundle so "today" matches server rendering.
	TimeZone string
	// SkipValidation serves the file without running it in the sandbox.
	SkipValidation bool
	Sandbox        sandbox.Config
}

// BundleSource loads the widget script once. An unreadable or invalid
// bundle yields nil and the widget degrades to text-only.
type BundleSource struct {
	path   string
	opts   BundleOptions
	logger *logging.Logger
	onLoad func(loaded bool)

	once sync.Once
	code []byte
}

// NewBundleSource creates a source for the script at path.
func NewBundleSource(path string, opts BundleOptions) *BundleSource {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	if opts.TimeZone == "" {
		opts.TimeZone = "UTC"
	}
	if opts.Sandbox.Timeout == 0 {
		opts.Sandbox = sandbox.DefaultConfig()
	}
	return &BundleSource{path: path, opts: opts, logger: logger.Component("widget")}
}

// OnLoad registers a callback run once after the load attempt.
func (b *BundleSource) OnLoad(fn func(loaded bool)) {
	b.onLoad = fn
}

// Code returns the script to embed, or nil in text-only mode. Safe on a nil
// receiver.
func (b *BundleSource) Code(ctx context.Context) []byte {
	if b == nil {
		return nil
	}
	b.once.Do(func() {
		b.code = b.load(context.WithoutCancel(ctx))
		if b.onLoad != nil {
			b.onLoad(b.code != nil)
		}
	})
	return b.code
}

// Loaded reports whether a bundle is being served.
func (b *BundleSource) Loaded(ctx context.Context) bool {
	return b.Code(ctx) != nil
}

func (b *BundleSource) load(ctx context.Context) []byte {
	raw, err := os.ReadFile(b.path)
	if err != nil {
		b.logger.Warn("widget bundle unavailable, falling back to text only",
			zap.String("path", b.path), zap.Error(err))
		return nil
	}

	code := append(Prelude(b.opts.TimeZone), raw...)
	if !b.opts.SkipValidation {
		if err := Validate(ctx, code, b.opts.Sandbox); err != nil {
			b.logger.Error("widget bundle rejected, falling back to text only",
				zap.String("path", b.path), zap.Error(err))
			return nil
		}
	}

	b.logger.Info("widget bundle loaded",
		zap.String("path", b.path),
		zap.Int("bytes", len(code)))
	return code
}

// Prelude is the configuration statement placed ahead of the bundle.
func Prelude(timeZone string) []byte {
	cfg, _ := json.Marshal(map[string]string{"timeZone": timeZone})
	return []byte("window.__driverbookConfig = " + string(cfg) + ";\n")
}

// Validate runs code against a stub host with an empty result set and checks
// that it renders the empty placeholder without errors.
func Validate(ctx context.Context, code []byte, cfg sandbox.Config) error {
	rt, err := sandbox.New(cfg, sandbox.Host{
		ToolOutput: json.RawMessage(`{"drivers":[]}`),
		Theme:      string(ThemeLight),
	})
	if err != nil {
		return fmt.Errorf("create sandbox: %w", err)
	}
	defer rt.Close()

	res, err := rt.Execute(ctx, string(code))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBundleInvalid, err)
	}
	if !strings.Contains(res.RootHTML, emptyPlaceholder) {
		return fmt.Errorf("%w: empty result set rendered %q", ErrBundleInvalid, res.RootHTML)
	}
	return nil
}
