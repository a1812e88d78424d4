package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"taskmanager/internal/service"
)

type AuthService interface {
	Register(ctx context.Context, req service.RegisterRequest) (*service.AuthResponse, error)
	Login(ctx context.Context, req service.LoginRequest) (*service.AuthResponse, error)
}

type UserHandler struct {
	auth AuthService
}

func NewUserHandler(auth AuthService) *UserHandler {
	return &UserHandler{auth: auth}
}

// Register создает пользователя и сразу выдает токен
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body service.RegisterRequest true "Account details"
// @Success      201 {object} APIResponse{data=service.AuthResponse}
// @Failure      400 {object} APIResponse
// @Router       /api/auth/register [post]
func (h *UserHandler) Register(c *gin.Context) {
	var req service.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindingError(c, err)
		return
	}

	resp, err := h.auth.Register(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	respond(c, http.StatusCreated, "User registered successfully", resp)
}

// Login проверяет учетные данные
// @Summary      Log in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body service.LoginRequest true "Credentials"
// @Success      200 {object} APIResponse{data=service.AuthResponse}
// @Failure      400 {object} APIResponse
// @Failure      401 {object} APIResponse
// @Router       /api/auth/login [post]
func (h *UserHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindingError(c, err)
		return
	}

	resp, err := h.auth.Login(c.Request.Context(), req)
	if err != nil {
		// неизвестный пользователь и неверный пароль неразличимы
		if service.KindOf(err) == service.KindAuthentication {
			respondError(c, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		writeServiceError(c, err)
		return
	}

	respond(c, http.StatusOK, "Login successful", resp)
}
