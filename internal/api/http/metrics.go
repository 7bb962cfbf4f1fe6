package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Metrics serves the Prometheus exposition format
func (h *Handlers) Metrics(c *gin.Context) {
	if h.metrics == nil {
		c.Status(http.StatusNotFound)
		return
	}
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}

// MetricsJSON returns the counter snapshot
func (h *Handlers) MetricsJSON(c *gin.Context) {
	if h.metrics == nil {
		c.Status(http.StatusNotFound)
		return
	}
	c.JSON(http.StatusOK, h.metrics.Snapshot())
}
