package http

import (
	"io"
	"net/http"

	"github.com/GriffinCanCode/driverbook/internal/api/middleware"
	"github.com/GriffinCanCode/driverbook/internal/rpc"
	"github.com/GriffinCanCode/driverbook/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MCP serves one JSON-RPC request. Notifications get 202 with no body.
func (h *Handlers) MCP(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, utils.MaxRequestSize+1))
	if err != nil {
		h.logger.Warn("failed to read request body", zap.Error(err))
		body = nil
	}

	resp, status := h.dispatcher.HandleBytes(c.Request.Context(), body)
	if resp == nil {
		c.Status(status)
		return
	}

	// A session id is minted on initialize and echoed afterwards.
	if _, ok := resp.Result.(rpc.InitializeResult); ok {
		c.Header(middleware.SessionHeader, uuid.NewString())
	} else if sid := c.GetHeader(middleware.SessionHeader); sid != "" {
		if _, err := uuid.Parse(sid); err == nil {
			c.Header(middleware.SessionHeader, sid)
		}
	}

	data, err := rpc.Encode(resp)
	if err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"jsonrpc": rpc.Version,
			"id":      nil,
			"error":   gin.H{"code": rpc.CodeInternalError, "message": err.Error()},
		})
		return
	}
	c.Data(status, "application/json", data)
}
