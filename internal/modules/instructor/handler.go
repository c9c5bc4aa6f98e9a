package instructor

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"driveconnect/internal/domain"
	"driveconnect/internal/middleware"
	"driveconnect/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/instructors", h.List)
}

func (h *Handler) RegisterProtectedRoutes(rg *gin.RouterGroup) {
	me := rg.Group("/instructors/me", middleware.RequireRole(domain.RoleInstructor))
	{
		me.GET("", h.Me)
		me.PUT("", h.UpdateMe)
	}
}

func (h *Handler) List(c *gin.Context) {
	views, err := h.service.List(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "server error")
		return
	}
	response.JSON(c, http.StatusOK, views)
}

func (h *Handler) Me(c *gin.Context) {
	ident, ok := middleware.Identity(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "authentication required")
		return
	}

	profile, err := h.service.Me(c.Request.Context(), ident.UID)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			response.Error(c, http.StatusNotFound, "instructor profile not found")
			return
		}
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "server error")
		return
	}

	response.JSON(c, http.StatusOK, profile)
}

func (h *Handler) UpdateMe(c *gin.Context) {
	ident, ok := middleware.Identity(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "authentication required")
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}

	profile, err := h.service.UpdateMe(c.Request.Context(), ident.UID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrProfileNotFound):
			response.Error(c, http.StatusNotFound, "instructor profile not found")
		case errors.Is(err, ErrRateTooLow):
			response.Error(c, http.StatusBadRequest, fmt.Sprintf("minimum rate: %d XPF/h", h.service.params.MinHourlyRate))
		default:
			_ = c.Error(err)
			response.Error(c, http.StatusInternalServerError, "server error")
		}
		return
	}

	response.JSON(c, http.StatusOK, profile)
}
