package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/opencua/gateway/internal/api/middleware"
	"github.com/opencua/gateway/internal/domain/session"
	"github.com/opencua/gateway/internal/infrastructure/logging"
	"github.com/opencua/gateway/internal/shared/types"
)

// Handlers contains all HTTP handlers.
type Handlers struct {
	manager *session.Manager
	logger  *logging.Logger
	track   *HandlerMetrics
}

// NewHandlers creates a new handler set.
func NewHandlers(manager *session.Manager, logger *logging.Logger) *Handlers {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Handlers{manager: manager, logger: logger}
}

// WithMetrics attaches session operation tracking.
func (h *Handlers) WithMetrics(hm *HandlerMetrics) *Handlers {
	h.track = hm
	return h
}

// Root handles the service banner.
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "CUA Gateway (Go)",
		"version": "0.1.0",
	})
}

// Health handles the health check.
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"sessions": h.manager.Count(),
	})
}

type createSessionRequest struct {
	Computer string `json:"computer"`
	StartURL string `json:"start_url"`
	Debug    bool   `json:"debug"`
	Show     bool   `json:"show"`
}

// CreateSession provisions a remote environment and registers a session
// around it. An empty body creates a browser session with defaults.
func (h *Handlers) CreateSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Computer == "" {
		req.Computer = string(types.ComputerBrowser)
	}
	computer := types.ComputerType(req.Computer)
	if !computer.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("Unknown computer type: %s. Only %s and %s are supported.",
				req.Computer, types.ComputerBrowser, types.ComputerDesktop),
		})
		return
	}

	done := h.track.Track("create")
	sess, screenshot, err := h.manager.Create(c.Request.Context(), types.CreateParams{
		ComputerType: computer,
		StartURL:     req.StartURL,
		Debug:        req.Debug,
		Show:         req.Show,
	})
	done(err)
	if err != nil {
		h.logger.Error("Session creation failed",
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.Error(err))
		writeError(c, err)
		return
	}

	resp := gin.H{
		"session_id":    sess.ID,
		"computer_type": sess.Computer,
		"screenshot":    screenshot,
		"message":       fmt.Sprintf("Session created with %s", sess.Computer),
	}
	if sess.StreamURL != "" {
		resp["stream_url"] = sess.StreamURL
	}
	c.JSON(http.StatusOK, resp)
}

// ListSessions lists all active sessions.
func (h *Handlers) ListSessions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sessions": h.manager.List()})
}

// DeleteSession releases the session's instance and removes it.
func (h *Handlers) DeleteSession(c *gin.Context) {
	sessionID := c.Param("id")
	done := h.track.Track("delete")
	err := h.manager.Delete(c.Request.Context(), sessionID)
	done(err)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Session %s deleted", sessionID)})
}

type interactRequest struct {
	Input string `json:"input"`
}

// Interact sends a message to the agent and runs it to completion.
func (h *Handlers) Interact(c *gin.Context) {
	sessionID := c.Param("id")

	var req interactRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Input == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Input is required"})
		return
	}

	sess, err := h.manager.Get(sessionID)
	if err != nil {
		writeError(c, err)
		return
	}

	done := h.track.Track("interact")
	res, err := h.manager.Interact(c.Request.Context(), sessionID, req.Input)
	done(err)
	if err != nil {
		h.logger.Error("Interaction failed",
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.String("session_id", sessionID),
			zap.Error(err))
		writeError(c, err)
		return
	}

	resp := gin.H{
		"items":      res.Items,
		"screenshot": res.Screenshot,
	}
	if sess.StreamURL != "" {
		resp["stream_url"] = sess.StreamURL
	}
	if res.CurrentURL != "" {
		resp["current_url"] = res.CurrentURL
	}
	c.JSON(http.StatusOK, resp)
}

// ExecuteAction runs one caller-supplied action against the session.
func (h *Handlers) ExecuteAction(c *gin.Context) {
	sessionID := c.Param("id")

	payload, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess, err := h.manager.Get(sessionID)
	if err != nil {
		writeError(c, err)
		return
	}

	done := h.track.Track("action")
	a, res, err := h.manager.ExecuteAction(c.Request.Context(), sessionID, payload)
	done(err)
	if err != nil {
		h.logger.Warn("Action failed",
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.String("session_id", sessionID),
			zap.Error(err))
		writeError(c, err)
		return
	}

	resp := gin.H{
		"message":    fmt.Sprintf("Action %s executed", a.Type),
		"screenshot": res.Screenshot,
	}
	if sess.StreamURL != "" {
		resp["stream_url"] = sess.StreamURL
	}
	if res.CurrentURL != "" {
		resp["current_url"] = res.CurrentURL
	}
	c.JSON(http.StatusOK, resp)
}

// Screenshot captures the session's current screen.
func (h *Handlers) Screenshot(c *gin.Context) {
	sessionID := c.Param("id")

	sess, err := h.manager.Get(sessionID)
	if err != nil {
		writeError(c, err)
		return
	}

	screenshot, err := h.manager.Screenshot(c.Request.Context(), sessionID)
	if err != nil {
		writeError(c, err)
		return
	}

	resp := gin.H{"screenshot": screenshot}
	if sess.StreamURL != "" {
		resp["stream_url"] = sess.StreamURL
	}
	c.JSON(http.StatusOK, resp)
}

// DebugSession exposes a session's internals for inspection.
func (h *Handlers) DebugSession(c *gin.Context) {
	sessionID := c.Param("id")

	sess, err := h.manager.Get(sessionID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id":     sess.ID,
		"computer_type":  sess.Computer,
		"created_at":     sess.CreatedAt,
		"stream_url":     sess.StreamURL,
		"instance_id":    sess.Instance().ID(),
		"history_length": sess.HistoryLen(),
		"debug":          sess.Debug,
		"show":           sess.Show,
	})
}
