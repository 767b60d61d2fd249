package http

import (
	"net/http"

	"github.com/Netboss008/yacoolo/internal/core/domain"
	"github.com/Netboss008/yacoolo/internal/core/ports"
	"github.com/Netboss008/yacoolo/internal/core/services"
	"github.com/Netboss008/yacoolo/internal/infrastructure/middleware"

	"github.com/gin-gonic/gin"
)

// AdminHandler exposes platform-admin control over live streams.
type AdminHandler struct {
	controlAuthority ports.ControlAuthority
	authService      services.AuthService
}

func NewAdminHandler(controlAuthority ports.ControlAuthority, authService services.AuthService) *AdminHandler {
	return &AdminHandler{
		controlAuthority: controlAuthority,
		authService:      authService,
	}
}

func (h *AdminHandler) SetupRoutes(router *gin.Engine) {
	admin := router.Group("/api/admin",
		middleware.AuthMiddleware(h.authService),
		middleware.AdminOnlyMiddleware(),
	)
	{
		admin.POST("/intervene/:streamId", h.Intervene)
		admin.POST("/intervention/:id/end", h.EndIntervention)
	}
}

func (h *AdminHandler) Intervene(c *gin.Context) {
	adminID, ok := currentUserID(c)
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

	iv, err := h.controlAuthority.StartIntervention(c.Request.Context(), adminID, domain.StreamID(c.Param("streamId")), req.Reason)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"intervention": iv})
}

func (h *AdminHandler) EndIntervention(c *gin.Context) {
	iv, err := h.controlAuthority.EndIntervention(c.Request.Context(), domain.InterventionID(c.Param("id")))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"intervention": iv})
}
