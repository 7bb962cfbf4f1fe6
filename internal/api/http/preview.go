package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/GriffinCanCode/driverbook/internal/domain/catalog"
	"github.com/GriffinCanCode/driverbook/internal/domain/tools"
	"github.com/GriffinCanCode/driverbook/internal/widget"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// FollowupHeader carries the prompt a preview action would have sent.
const FollowupHeader = "X-Widget-Followup"

// previewHost feeds a tool result to a server-side widget session. Follow-ups
// have no agent to go to; they are logged and echoed in a response header.
type previewHost struct {
	drivers  []catalog.Driver
	theme    widget.Theme
	logger   *zap.Logger
	followup string
}

func (p *previewHost) ToolOutput() []catalog.Driver { return p.drivers }
func (p *previewHost) Theme() widget.Theme          { return p.theme }

func (p *previewHost) SendFollowup(_ context.Context, prompt string) error {
	p.logger.Info("preview follow-up", zap.String("prompt", prompt))
	p.followup = prompt
	return nil
}

var previewArgs = []string{"city", "vehicleType", "driverId"}

// Preview renders the widget for a tool call as a standalone page. The
// session is positioned with index, then moved by each nav (next or prev) in
// order, then given one card action.
//
//	GET /widget/preview?tool=search_drivers&city=oakland&index=1&nav=next&action=contact&theme=dark
func (h *Handlers) Preview(c *gin.Context) {
	ctx := c.Request.Context()
	name := c.DefaultQuery("tool", "search_drivers")

	args := make(map[string]any)
	for _, key := range previewArgs {
		if v, ok := c.GetQuery(key); ok {
			args[key] = v
		}
	}

	res, err := h.tools.Call(ctx, name, args)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, tools.ErrUnknownTool) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	var drivers []catalog.Driver
	if res.StructuredContent != nil {
		drivers = res.StructuredContent.Drivers
	}
	host := &previewHost{
		drivers: drivers,
		theme:   widget.ParseTheme(c.Query("theme")),
		logger:  h.logger.Zap(),
	}
	session := widget.NewSession(host, widget.WithRenderer(h.renderer))

	view, err := session.Render()
	if err != nil {
		h.renderFailed(c, err)
		return
	}
	if raw, ok := c.GetQuery("index"); ok {
		i, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "index must be an integer"})
			return
		}
		if view, err = session.Select(i); err != nil {
			h.sessionFailed(c, err)
			return
		}
	}
	for _, nav := range c.QueryArray("nav") {
		switch nav {
		case "next":
			view, err = session.Next()
		case "prev":
			view, err = session.Prev()
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "nav must be next or prev"})
			return
		}
		if err != nil {
			h.renderFailed(c, err)
			return
		}
	}
	if action, ok := c.GetQuery("action"); ok {
		if view, err = session.Perform(ctx, action); err != nil {
			h.sessionFailed(c, err)
			return
		}
		if host.followup != "" {
			c.Header(FollowupHeader, host.followup)
		}
	}

	page, err := h.renderer.Page(view)
	if err != nil {
		h.renderFailed(c, err)
		return
	}
	if h.metrics != nil {
		h.metrics.RecordWidgetRender(view.State)
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
}

// sessionFailed maps a rejected widget transition to a client error.
func (h *Handlers) sessionFailed(c *gin.Context, err error) {
	switch {
	case errors.Is(err, widget.ErrIndexOutOfRange),
		errors.Is(err, widget.ErrUnknownAction),
		errors.Is(err, widget.ErrNoDriver):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.renderFailed(c, err)
	}
}

func (h *Handlers) renderFailed(c *gin.Context, err error) {
	h.logger.Error("failed to render preview", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "render failed"})
}
