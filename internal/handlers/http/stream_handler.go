package http

import (
	"net/http"

	"github.com/Netboss008/yacoolo/internal/core/domain"
	"github.com/Netboss008/yacoolo/internal/core/ports"
	"github.com/Netboss008/yacoolo/internal/core/services"
	"github.com/Netboss008/yacoolo/internal/infrastructure/middleware"

	"github.com/gin-gonic/gin"
)

type StreamHandler struct {
	streamService    ports.StreamService
	moderatorService ports.ModeratorService
	controlAuthority ports.ControlAuthority
	messageRepo      ports.ChatMessageRepository
	authService      services.AuthService
}

func NewStreamHandler(
	streamService ports.StreamService,
	moderatorService ports.ModeratorService,
	controlAuthority ports.ControlAuthority,
	messageRepo ports.ChatMessageRepository,
	authService services.AuthService,
) *StreamHandler {
	return &StreamHandler{
		streamService:    streamService,
		moderatorService: moderatorService,
		controlAuthority: controlAuthority,
		messageRepo:      messageRepo,
		authService:      authService,
	}
}

func (h *StreamHandler) SetupRoutes(router *gin.Engine) {
	api := router.Group("/api")
	{
		api.GET("/streams", h.ListStreams)
		api.GET("/streams/:id", middleware.OptionalAuthMiddleware(h.authService), h.GetStream)

		authed := api.Group("", middleware.AuthMiddleware(h.authService))
		{
			authed.POST("/streams", h.CreateStream)
			authed.PUT("/streams/:id", h.UpdateStream)
			authed.DELETE("/streams/:id", h.DeleteStream)
			authed.GET("/streams/:id/messages", h.ListMessages)

			authed.GET("/streams/:id/moderators", h.ListModerators)
			authed.POST("/streams/:id/moderators", h.AddModerator)
			authed.PUT("/streams/:id/moderators/:modId", h.UpdateModerator)
			authed.DELETE("/streams/:id/moderators/:modId", h.RemoveModerator)

			authed.POST("/streams/:id/takeover", h.StartTakeover)
			authed.PUT("/streams/:id/takeover/:takeoverId/end", h.EndTakeover)
		}
	}
}

func (h *StreamHandler) CreateStream(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req struct {
		Title       string   `json:"title" binding:"required,min=3,max=100"`
		Description string   `json:"description" binding:"max=2000"`
		Category    string   `json:"category"`
		Tags        []string `json:"tags"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	stream, err := h.streamService.CreateStream(c.Request.Context(), userID, req.Title, req.Description, req.Category, req.Tags)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"stream": stream})
}

func (h *StreamHandler) GetStream(c *gin.Context) {
	stream, err := h.streamService.GetStream(c.Request.Context(), domain.StreamID(c.Param("id")))
	if err != nil {
		c.Error(err)
		return
	}

	// The publish key is a credential; only its owner sees it.
	public := *stream
	if uid, exists := c.Get("user_id"); !exists || uid != stream.StreamerID {
		public.StreamKey = ""
	}
	c.JSON(http.StatusOK, gin.H{"stream": &public})
}

func (h *StreamHandler) UpdateStream(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req struct {
		Title       string   `json:"title" binding:"required,min=3,max=100"`
		Description string   `json:"description" binding:"max=2000"`
		Category    string   `json:"category"`
		Tags        []string `json:"tags"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	stream, err := h.streamService.UpdateStream(c.Request.Context(), userID, &domain.Stream{
		ID:          domain.StreamID(c.Param("id")),
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Tags:        req.Tags,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"stream": stream})
}

func (h *StreamHandler) DeleteStream(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.streamService.EndStream(c.Request.Context(), userID, domain.StreamID(c.Param("id"))); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ended"})
}

func (h *StreamHandler) ListStreams(c *gin.Context) {
	streams, err := h.streamService.ListLive(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	for _, s := range streams {
		s.StreamKey = ""
	}
	c.JSON(http.StatusOK, gin.H{"streams": streams})
}

func (h *StreamHandler) ListMessages(c *gin.Context) {
	messages, err := h.messageRepo.FindByStream(c.Request.Context(), domain.StreamID(c.Param("id")), 100)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

func (h *StreamHandler) ListModerators(c *gin.Context) {
	moderators, err := h.moderatorService.ListModerators(c.Request.Context(), domain.StreamID(c.Param("id")))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"moderators": moderators})
}

func (h *StreamHandler) AddModerator(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req struct {
		UserID      domain.UserID        `json:"user_id" binding:"required"`
		Rank        domain.ModeratorRank `json:"rank" binding:"required"`
		Permissions []string             `json:"permissions"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	mod, err := h.moderatorService.AddModerator(c.Request.Context(), userID, domain.StreamID(c.Param("id")), req.UserID, req.Rank, req.Permissions)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"moderator": mod})
}

func (h *StreamHandler) UpdateModerator(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req struct {
		Rank        domain.ModeratorRank `json:"rank" binding:"required"`
		Permissions []string             `json:"permissions"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	mod, err := h.moderatorService.UpdateModerator(c.Request.Context(), userID,
		domain.StreamID(c.Param("id")), domain.ModeratorID(c.Param("modId")), req.Rank, req.Permissions)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"moderator": mod})
}

func (h *StreamHandler) RemoveModerator(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.moderatorService.RemoveModerator(c.Request.Context(), userID,
		domain.StreamID(c.Param("id")), domain.ModeratorID(c.Param("modId"))); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "removed"})
}

func (h *StreamHandler) StartTakeover(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req struct {
		Reason string `json:"reason" binding:"required,max=500"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	takeover, err := h.controlAuthority.StartTakeover(c.Request.Context(), userID, domain.StreamID(c.Param("id")), req.Reason)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"takeover": takeover})
}

func (h *StreamHandler) EndTakeover(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	takeover, err := h.controlAuthority.EndTakeover(c.Request.Context(), domain.TakeoverID(c.Param("takeoverId")), userID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"takeover": takeover})
}
