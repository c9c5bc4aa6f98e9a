package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

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
	authGroup := rg.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
	}
}

func (h *Handler) RegisterProtectedRoutes(rg *gin.RouterGroup) {
	rg.GET("/users/me", h.Me)
}

func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "email, password (min 6 chars), name and role are required")
		return
	}

	res, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidRole):
			response.Error(c, http.StatusBadRequest, "role must be student or instructor")
		case errors.Is(err, ErrEmailTaken):
			response.Error(c, http.StatusConflict, "this email is already in use")
		default:
			_ = c.Error(err)
			response.Error(c, http.StatusInternalServerError, "could not create account")
		}
		return
	}

	response.JSON(c, http.StatusCreated, res)
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "email and password are required")
		return
	}

	res, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.Error(c, http.StatusUnauthorized, "incorrect email or password")
			return
		}
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "server error")
		return
	}

	response.JSON(c, http.StatusOK, res)
}

func (h *Handler) Me(c *gin.Context) {
	ident, ok := middleware.Identity(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "authentication required")
		return
	}

	user, err := h.service.Me(c.Request.Context(), ident.UID)
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "server error")
		return
	}

	response.JSON(c, http.StatusOK, user)
}
