package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/Netboss008/yacoolo/internal/core/domain"
	"github.com/Netboss008/yacoolo/internal/core/ports"
	"github.com/Netboss008/yacoolo/internal/core/services"
	"github.com/Netboss008/yacoolo/internal/infrastructure/middleware"

	"github.com/gin-gonic/gin"
)

type ModerationHandler struct {
	moderationService ports.ModerationService
	streamService     ports.StreamService
	moderatorRepo     ports.ModeratorRepository
	authService       services.AuthService
}

func NewModerationHandler(
	moderationService ports.ModerationService,
	streamService ports.StreamService,
	moderatorRepo ports.ModeratorRepository,
	authService services.AuthService,
) *ModerationHandler {
	return &ModerationHandler{
		moderationService: moderationService,
		streamService:     streamService,
		moderatorRepo:     moderatorRepo,
		authService:       authService,
	}
}

func (h *ModerationHandler) SetupRoutes(router *gin.Engine) {
	mod := router.Group("/api/moderation", middleware.AuthMiddleware(h.authService))
	{
		mod.POST("/chat/:streamId/moderate", h.RecordAction)
		mod.POST("/moderate-chat", h.ModerateChat)
		mod.GET("/logs/:streamId", h.GetLogs)
		mod.GET("/stats/:streamId", h.GetStats)

		mod.POST("/legal-analysis/:streamId", h.RunLegalAnalysis)
		mod.GET("/legal-analysis/:streamId", h.ListLegalAnalyses)

		mod.GET("/settings", h.GetSettings)
		mod.PUT("/settings", h.UpdateSettings)
		mod.GET("/blocked-words", h.ListBlockedWords)
		mod.POST("/blocked-words", h.AddBlockedWord)
		mod.DELETE("/blocked-words/:id", h.RemoveBlockedWord)
	}
}

// canModerate allows the host, a platform admin, or a moderator holding
// the chat moderation permission.
func (h *ModerationHandler) canModerate(c *gin.Context, userID domain.UserID, streamID domain.StreamID) (bool, error) {
	if isAdmin, exists := c.Get("is_admin"); exists && isAdmin == true {
		return true, nil
	}

	stream, err := h.streamService.GetStream(c.Request.Context(), streamID)
	if err != nil {
		return false, err
	}
	if stream.StreamerID == userID {
		return true, nil
	}

	mod, err := h.moderatorRepo.FindByStreamAndUser(c.Request.Context(), streamID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrModeratorNotFound) {
			return false, nil
		}
		return false, err
	}
	return mod.HasPermission(domain.PermChatModeration), nil
}

func (h *ModerationHandler) RecordAction(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	streamID := domain.StreamID(c.Param("streamId"))

	allowed, err := h.canModerate(c, userID, streamID)
	if err != nil {
		c.Error(err)
		return
	}
	if !allowed {
		c.JSON(http.StatusForbidden, gin.H{"error": "chat moderation permission required"})
		return
	}

	var req struct {
		MessageID       domain.MessageID        `json:"message_id" binding:"required"`
		UserID          domain.UserID           `json:"user_id" binding:"required"`
		Action          domain.ModerationAction `json:"action" binding:"required"`
		DurationSeconds int                     `json:"duration_seconds"`
		Reason          string                  `json:"reason" binding:"max=500"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var duration *time.Duration
	if req.DurationSeconds > 0 {
		d := time.Duration(req.DurationSeconds) * time.Second
		duration = &d
	}

	entry, err := h.moderationService.Record(c.Request.Context(), ports.RecordRequest{
		MessageID: req.MessageID,
		StreamID:  streamID,
		UserID:    req.UserID,
		Action:    req.Action,
		Duration:  duration,
		Reason:    req.Reason,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"entry": entry})
}

// ModerateChat runs the AI judgment pipeline on a single stored message.
func (h *ModerationHandler) ModerateChat(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req struct {
		StreamID  domain.StreamID  `json:"stream_id" binding:"required"`
		MessageID domain.MessageID `json:"message_id" binding:"required"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	allowed, err := h.canModerate(c, userID, req.StreamID)
	if err != nil {
		c.Error(err)
		return
	}
	if !allowed {
		c.JSON(http.StatusForbidden, gin.H{"error": "chat moderation permission required"})
		return
	}

	verdict, err := h.moderationService.ModerateMessage(c.Request.Context(), req.StreamID, req.MessageID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"verdict": verdict})
}

func (h *ModerationHandler) GetLogs(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	streamID := domain.StreamID(c.Param("streamId"))

	allowed, err := h.canModerate(c, userID, streamID)
	if err != nil {
		c.Error(err)
		return
	}
	if !allowed {
		c.JSON(http.StatusForbidden, gin.H{"error": "chat moderation permission required"})
		return
	}

	entries, err := h.moderationService.Logs(c.Request.Context(), streamID, time.Time{})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"logs": entries})
}

func (h *ModerationHandler) GetStats(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	streamID := domain.StreamID(c.Param("streamId"))

	allowed, err := h.canModerate(c, userID, streamID)
	if err != nil {
		c.Error(err)
		return
	}
	if !allowed {
		c.JSON(http.StatusForbidden, gin.H{"error": "chat moderation permission required"})
		return
	}

	stats, err := h.moderationService.Stats(c.Request.Context(), streamID, c.DefaultQuery("range", "day"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// RunLegalAnalysis is host only; the transcript belongs to the streamer.
func (h *ModerationHandler) RunLegalAnalysis(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	streamID := domain.StreamID(c.Param("streamId"))

	stream, err := h.streamService.GetStream(c.Request.Context(), streamID)
	if err != nil {
		c.Error(err)
		return
	}
	if stream.StreamerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "host only"})
		return
	}

	var req struct {
		Transcription string `json:"transcription" binding:"required"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	analyses, err := h.moderationService.AnalyzeLegalContent(c.Request.Context(), streamID, userID, req.Transcription)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"analyses": analyses})
}

func (h *ModerationHandler) ListLegalAnalyses(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	streamID := domain.StreamID(c.Param("streamId"))

	stream, err := h.streamService.GetStream(c.Request.Context(), streamID)
	if err != nil {
		c.Error(err)
		return
	}
	if stream.StreamerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "host only"})
		return
	}

	analyses, err := h.moderationService.ListLegalAnalyses(c.Request.Context(), streamID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"analyses": analyses})
}

func (h *ModerationHandler) GetSettings(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	settings, err := h.moderationService.Settings(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

func (h *ModerationHandler) UpdateSettings(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req struct {
		LegalAnalysis    bool `json:"legalAnalysis"`
		ChatModeration   bool `json:"chatModeration"`
		SensitivityLevel int  `json:"sensitivityLevel" binding:"required,min=1,max=10"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	settings, err := h.moderationService.UpdateSettings(c.Request.Context(), &domain.StreamerSettings{
		StreamerID:       userID,
		LegalAnalysis:    req.LegalAnalysis,
		ChatModeration:   req.ChatModeration,
		SensitivityLevel: req.SensitivityLevel,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

func (h *ModerationHandler) ListBlockedWords(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	words, err := h.moderationService.ListBlockedWords(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"blocked_words": words})
}

func (h *ModerationHandler) AddBlockedWord(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req struct {
		Word string `json:"word" binding:"required,max=100"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	word, err := h.moderationService.AddBlockedWord(c.Request.Context(), userID, req.Word)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"blocked_word": word})
}

func (h *ModerationHandler) RemoveBlockedWord(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.moderationService.RemoveBlockedWord(c.Request.Context(), userID, c.Param("id")); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "removed"})
}
