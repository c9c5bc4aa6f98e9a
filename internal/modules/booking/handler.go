package booking

import (
	"errors"
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

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/bookings", middleware.RequireRole(domain.RoleStudent), h.Create)
	rg.GET("/bookings", h.List)
	rg.PUT("/bookings/:id", h.Act)
}

func (h *Handler) Create(c *gin.Context) {
	ident, ok := middleware.Identity(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "authentication required")
		return
	}

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "slot_id is required")
		return
	}

	b, err := h.service.Reserve(c.Request.Context(), ident.UID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrSlotNotFound):
			response.Error(c, http.StatusNotFound, "slot not found")
		case errors.Is(err, ErrSlotUnavailable):
			response.Error(c, http.StatusConflict, "this slot has just been booked by someone else")
		case errors.Is(err, ErrSlotInPast):
			response.Error(c, http.StatusBadRequest, "this slot is in the past")
		default:
			_ = c.Error(err)
			response.Error(c, http.StatusInternalServerError, "server error")
		}
		return
	}

	response.JSON(c, http.StatusCreated, b)
}

func (h *Handler) List(c *gin.Context) {
	ident, ok := middleware.Identity(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "authentication required")
		return
	}

	views, err := h.service.ListForCaller(c.Request.Context(), ident)
	if err != nil {
		switch {
		case errors.Is(err, ErrProfileNotFound):
			response.Error(c, http.StatusNotFound, "instructor profile not found")
		case errors.Is(err, ErrForbidden):
			response.Error(c, http.StatusForbidden, "forbidden")
		default:
			_ = c.Error(err)
			response.Error(c, http.StatusInternalServerError, "server error")
		}
		return
	}

	response.JSON(c, http.StatusOK, views)
}

func (h *Handler) Act(c *gin.Context) {
	ident, ok := middleware.Identity(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "authentication required")
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid booking id")
		return
	}

	var req ActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "action is required")
		return
	}

	result, err := h.service.Act(c.Request.Context(), ident, id, req.Action)
	if err != nil {
		switch {
		case errors.Is(err, ErrBookingNotFound):
			response.Error(c, http.StatusNotFound, "booking not found")
		case errors.Is(err, ErrForbidden):
			response.Error(c, http.StatusForbidden, "not allowed on this booking")
		case errors.Is(err, ErrAlreadyCancelled):
			response.Error(c, http.StatusConflict, "this booking is already cancelled")
		case errors.Is(err, ErrInvalidAction):
			response.Error(c, http.StatusBadRequest, "invalid action, expected one of: cancel, confirm, reject")
		default:
			_ = c.Error(err)
			response.Error(c, http.StatusInternalServerError, "server error")
		}
		return
	}

	response.JSON(c, http.StatusOK, result)
}
