package slot

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

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

// RegisterPublicRoutes exposes slot discovery without authentication.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/slots", h.List)
}

func (h *Handler) RegisterProtectedRoutes(rg *gin.RouterGroup) {
	rg.POST("/slots", middleware.RequireRole(domain.RoleInstructor), h.Create)
	rg.DELETE("/slots/:id", middleware.RequireRole(domain.RoleInstructor), h.Delete)
}

func (h *Handler) List(c *gin.Context) {
	instructorID, err := strconv.ParseInt(c.Query("instructorId"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "instructorId is required")
		return
	}

	slots, err := h.service.ListAvailable(c.Request.Context(), instructorID)
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "server error")
		return
	}

	response.JSON(c, http.StatusOK, slots)
}

func (h *Handler) Create(c *gin.Context) {
	ident, ok := middleware.Identity(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "authentication required")
		return
	}

	var req CreateSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "date, time, duration and price are required")
		return
	}

	slot, err := h.service.Publish(c.Request.Context(), ident.UID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrValidation):
			response.Error(c, http.StatusBadRequest, "invalid date or time format")
		case errors.Is(err, ErrRateTooLow):
			response.Error(c, http.StatusBadRequest, fmt.Sprintf("minimum rate: %d XPF/h", h.service.params.MinHourlyRate))
		case errors.Is(err, ErrDateInPast):
			response.Error(c, http.StatusBadRequest, "date must be in the future")
		case errors.Is(err, ErrProfileNotFound):
			response.Error(c, http.StatusNotFound, "instructor profile not found")
		case errors.Is(err, ErrDuplicateSlot):
			response.Error(c, http.StatusConflict, "you already have a slot at this time")
		default:
			_ = c.Error(err)
			response.Error(c, http.StatusInternalServerError, "server error")
		}
		return
	}

	response.JSON(c, http.StatusCreated, slot)
}

func (h *Handler) Delete(c *gin.Context) {
	ident, ok := middleware.Identity(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "authentication required")
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid slot id")
		return
	}

	if err := h.service.Delete(c.Request.Context(), ident, id); err != nil {
		switch {
		case errors.Is(err, ErrSlotNotFound):
			response.Error(c, http.StatusNotFound, "slot not found")
		case errors.Is(err, ErrNotOwner):
			response.Error(c, http.StatusForbidden, "this slot is not yours")
		case errors.Is(err, ErrSlotBooked):
			response.Error(c, http.StatusConflict, "cannot delete a booked slot")
		default:
			_ = c.Error(err)
			response.Error(c, http.StatusInternalServerError, "server error")
		}
		return
	}

	response.JSON(c, http.StatusOK, gin.H{"success": true})
}
