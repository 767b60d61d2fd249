package ingest

import (
	"net/http"

	"github.com/Netboss008/yacoolo/internal/core/ports"
	"github.com/Netboss008/yacoolo/internal/infrastructure/monitoring"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HookHandler receives callbacks from the media ingest server. The media
// plane is external; these hooks are its only contact with session state.
// A non-200 response tells the ingest server to drop the connection.
type HookHandler struct {
	gate      ports.AdmissionGate
	secret    string
	collector *monitoring.PrometheusCollector
	logger    *zap.SugaredLogger
}

func NewHookHandler(gate ports.AdmissionGate, secret string, collector *monitoring.PrometheusCollector, logger *zap.SugaredLogger) *HookHandler {
	return &HookHandler{
		gate:      gate,
		secret:    secret,
		collector: collector,
		logger:    logger,
	}
}

type hookRequest struct {
	Key string `json:"key" binding:"required"`
}

func (h *HookHandler) RegisterRoutes(router *gin.Engine) {
	hooks := router.Group("/hooks", h.checkSecret)
	{
		hooks.POST("/pre_publish", h.PrePublish)
		hooks.POST("/post_publish", h.PostPublish)
		hooks.POST("/done_publish", h.DonePublish)
		hooks.POST("/pre_connect", h.PreConnect)
		hooks.POST("/done_connect", h.DoneConnect)
	}
}

// checkSecret rejects hook calls that do not carry the shared ingest
// secret. The hook surface must never be reachable by end users.
func (h *HookHandler) checkSecret(c *gin.Context) {
	if h.secret == "" || c.GetHeader("X-Hook-Secret") != h.secret {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid hook secret"})
		return
	}
	c.Next()
}

// PrePublish validates the publish key and flips the stream live. This is
// the admission decision for the broadcast itself.
func (h *HookHandler) PrePublish(c *gin.Context) {
	var req hookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "key is required"})
		return
	}

	stream, err := h.gate.AdmitBroadcast(c.Request.Context(), req.Key)
	if err != nil {
		h.collector.RecordHookRequest("pre_publish", false)
		h.logger.Infow("broadcast rejected", "error", err)
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		return
	}

	h.collector.RecordHookRequest("pre_publish", true)
	c.JSON(http.StatusOK, gin.H{"stream_id": stream.ID})
}

// PostPublish is informational; admission already happened in PrePublish.
func (h *HookHandler) PostPublish(c *gin.Context) {
	var req hookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "key is required"})
		return
	}

	h.collector.RecordHookRequest("post_publish", true)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// DonePublish ends the live session when the encoder disconnects. Always
// returns 200; there is nothing the ingest server could do with a failure.
func (h *HookHandler) DonePublish(c *gin.Context) {
	var req hookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "key is required"})
		return
	}

	if err := h.gate.ReleaseBroadcast(c.Request.Context(), req.Key); err != nil {
		h.logger.Warnw("broadcast release failed", "error", err)
	}
	h.collector.RecordHookRequest("done_publish", true)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// PreConnect admits guest co-broadcasters against the fixed slot capacity.
func (h *HookHandler) PreConnect(c *gin.Context) {
	var req hookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "key is required"})
		return
	}

	count, err := h.gate.AdmitGuest(c.Request.Context(), req.Key)
	if err != nil {
		h.collector.RecordHookRequest("pre_connect", false)
		h.logger.Infow("guest rejected", "error", err)
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		return
	}

	h.collector.RecordHookRequest("pre_connect", true)
	c.JSON(http.StatusOK, gin.H{"guest_count": count})
}

// DoneConnect frees a guest slot when the co-broadcaster disconnects.
func (h *HookHandler) DoneConnect(c *gin.Context) {
	var req hookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "key is required"})
		return
	}

	if err := h.gate.ReleaseGuest(c.Request.Context(), req.Key); err != nil {
		h.logger.Warnw("guest release failed", "error", err)
	}
	h.collector.RecordHookRequest("done_connect", true)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
