package catalog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/GriffinCanCode/driverbook/internal/infrastructure/resilience"
	"github.com/bytedance/sonic"
	"github.com/gabriel-vasile/mimetype"
	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-yaml"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"
)

// Source produces raw driver records. Records are normalized by the Store.
type Source interface {
	Name() string
	Load(ctx context.Context) ([]Driver, error)
}

// StaticSource serves a fixed slice. Each Load returns a copy.
type StaticSource []Driver

func (s StaticSource) Name() string { return "static" }

func (s StaticSource) Load(context.Context) ([]Driver, error) {
	out := make([]Driver, len(s))
	copy(out, s)
	return out, nil
}

// FileSource reads records from a JSON, YAML or TOML file. The format comes
// from the extension, or from content sniffing when the extension is unknown.
type FileSource struct {
	Path string
}

func (f FileSource) Name() string { return "file:" + f.Path }

func (f FileSource) Load(ctx context.Context) ([]Driver, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Decode(data, formatFromExt(filepath.Ext(f.Path)))
}

// Format names a catalog document encoding.
type Format string

const (
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
	FormatTOML    Format = "toml"
	FormatUnknown Format = ""
)

func formatFromExt(ext string) Format {
	switch strings.ToLower(ext) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	}
	return FormatUnknown
}

func formatFromContentType(ct string) Format {
	ct = strings.ToLower(ct)
	switch {
	case strings.Contains(ct, "json"):
		return FormatJSON
	case strings.Contains(ct, "yaml"):
		return FormatYAML
	case strings.Contains(ct, "toml"):
		return FormatTOML
	}
	return FormatUnknown
}

// document is the wrapped form shared by all encodings.
type document struct {
	Drivers []Driver `json:"drivers" yaml:"drivers" toml:"drivers"`
}

// Decode parses a catalog document. JSON and YAML accept either a bare list
// of records or an object with a "drivers" list; TOML uses [[drivers]] tables.
func Decode(data []byte, format Format) ([]Driver, error) {
	if format == FormatUnknown {
		format = sniff(data)
	}

	switch format {
	case FormatJSON:
		return decodeJSON(data)
	case FormatYAML:
		return decodeYAML(data)
	case FormatTOML:
		var doc document
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decode toml catalog: %w", err)
		}
		return doc.Drivers, nil
	}

	// Not JSON by signature. TOML is the stricter grammar so it goes first.
	if drivers, err := Decode(data, FormatTOML); err == nil {
		return drivers, nil
	}
	return Decode(data, FormatYAML)
}

func sniff(data []byte) Format {
	if mimetype.Detect(data).Is("application/json") {
		return FormatJSON
	}
	return FormatUnknown
}

func decodeJSON(data []byte) ([]Driver, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var drivers []Driver
		if err := sonic.Unmarshal(trimmed, &drivers); err != nil {
			return nil, fmt.Errorf("decode json catalog: %w", err)
		}
		return drivers, nil
	}
	var doc document
	if err := sonic.Unmarshal(trimmed, &doc); err != nil {
		return nil, fmt.Errorf("decode json catalog: %w", err)
	}
	return doc.Drivers, nil
}

func decodeYAML(data []byte) ([]Driver, error) {
	var drivers []Driver
	if err := yaml.Unmarshal(data, &drivers); err == nil {
		return drivers, nil
	}
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode yaml catalog: %w", err)
	}
	return doc.Drivers, nil
}

// HTTPSource fetches the catalog document from a URL. Transient failures are
// retried by the transport; repeated failures open the breaker.
type HTTPSource struct {
	URL     string
	client  *resty.Client
	breaker *resilience.Breaker
}

// HTTPOptions tunes an HTTPSource.
type HTTPOptions struct {
	Timeout      time.Duration
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	Logger       *zap.Logger
}

// DefaultHTTPOptions returns conservative settings for a catalog fetch.
func DefaultHTTPOptions() HTTPOptions {
	return HTTPOptions{
		Timeout:      15 * time.Second,
		RetryMax:     3,
		RetryWaitMin: 500 * time.Millisecond,
		RetryWaitMax: 5 * time.Second,
	}
}

// NewHTTPSource builds a source backed by a retrying resty client.
func NewHTTPSource(url string, opts HTTPOptions) *HTTPSource {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = opts.RetryMax
	retryClient.RetryWaitMin = opts.RetryWaitMin
	retryClient.RetryWaitMax = opts.RetryWaitMax
	retryClient.Logger = retryLogger{logger.Named("retry")}

	client := resty.NewWithClient(retryClient.StandardClient()).
		SetTimeout(opts.Timeout).
		SetHeader("Accept", "application/json, application/yaml, application/toml").
		SetHeader("User-Agent", "driverbook/1.0")

	breaker := resilience.New("catalog-http", resilience.Settings{
		FailureThreshold: 3,
		Cooldown:         30 * time.Second,
		OnStateChange: func(name string, from, to resilience.State) {
			logger.Warn("circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return &HTTPSource{URL: url, client: client, breaker: breaker}
}

func (h *HTTPSource) Name() string { return "http:" + h.URL }

// Breaker exposes the source's circuit breaker.
func (h *HTTPSource) Breaker() *resilience.Breaker { return h.breaker }

func (h *HTTPSource) Load(ctx context.Context) ([]Driver, error) {
	var drivers []Driver
	err := h.breaker.Do(ctx, func(ctx context.Context) error {
		resp, err := h.client.R().SetContext(ctx).Get(h.URL)
		if err != nil {
			return fmt.Errorf("fetch catalog: %w", err)
		}
		if resp.IsError() {
			return fmt.Errorf("fetch catalog: unexpected status %s", resp.Status())
		}
		drivers, err = Decode(resp.Body(), formatFromContentType(resp.Header().Get("Content-Type")))
		return err
	})
	if errors.Is(err, resilience.ErrCircuitOpen) {
		return nil, fmt.Errorf("catalog source %s unavailable: %w", h.URL, err)
	}
	return drivers, err
}

// retryLogger adapts zap to retryablehttp.LeveledLogger.
type retryLogger struct {
	l *zap.Logger
}

func (r retryLogger) Error(msg string, kv ...interface{}) { r.l.Sugar().Errorw(msg, kv...) }
func (r retryLogger) Info(msg string, kv ...interface{})  { r.l.Sugar().Infow(msg, kv...) }
func (r retryLogger) Debug(msg string, kv ...interface{}) { r.l.Sugar().Debugw(msg, kv...) }
func (r retryLogger) Warn(msg string, kv ...interface{})  { r.l.Sugar().Warnw(msg, kv...) }
