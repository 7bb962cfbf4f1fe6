package http

import (
	"net/http"

	"github.com/GriffinCanCode/driverbook/internal/domain/catalog"
	"github.com/GriffinCanCode/driverbook/internal/domain/tools"
	"github.com/GriffinCanCode/driverbook/internal/infrastructure/logging"
	"github.com/GriffinCanCode/driverbook/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/driverbook/internal/rpc"
	"github.com/GriffinCanCode/driverbook/internal/widget"
	"github.com/gin-gonic/gin"
)

// ServiceName is reported by the info endpoint.
const ServiceName = "Drivers - Find and Book Drivers MCP Server"

// Deps are the components served over HTTP.
type Deps struct {
	Store      *catalog.Store
	Tools      *tools.Registry
	Dispatcher *rpc.Dispatcher
	Bundle     *widget.BundleSource
	Renderer   *widget.Renderer
	Metrics    *monitoring.Metrics
	Logger     *logging.Logger
}

// Handlers contains all HTTP handlers
type Handlers struct {
	store      *catalog.Store
	tools      *tools.Registry
	dispatcher *rpc.Dispatcher
	bundle     *widget.BundleSource
	renderer   *widget.Renderer
	metrics    *monitoring.Metrics
	logger     *logging.Logger
}

// NewHandlers creates a new handler set
func NewHandlers(deps Deps) *Handlers {
	h := &Handlers{
		store:      deps.Store,
		tools:      deps.Tools,
		dispatcher: deps.Dispatcher,
		bundle:     deps.Bundle,
		renderer:   deps.Renderer,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
	}
	if h.logger == nil {
		h.logger = logging.Nop()
	}
	h.logger = h.logger.Component("http")
	if h.renderer == nil {
		h.renderer = widget.NewRenderer(nil)
	}
	return h
}

// Register mounts every route on r.
func (h *Handlers) Register(r gin.IRoutes) {
	r.GET("/", h.Info)
	r.POST("/", h.MCP)
	r.POST("/mcp", h.MCP)
	r.GET("/health", h.Health)
	r.GET("/metrics", h.Metrics)
	r.GET("/metrics/json", h.MetricsJSON)
	r.GET("/widget/preview", h.Preview)
}

// Info describes the server
func (h *Handlers) Info(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":     ServiceName,
		"version":  rpc.ServerVersion,
		"status":   "running",
		"drivers":  h.store.Len(c.Request.Context()),
		"endpoint": "/mcp",
	})
}

// Health reports catalog size and whether the widget bundle is served
func (h *Handlers) Health(c *gin.Context) {
	ctx := c.Request.Context()
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"drivers": h.store.Len(ctx),
		"widget":  h.bundle.Loaded(ctx),
	})
}
