package handler

import (
	"context"
	"time"

	"safeher/dto"
	"safeher/model"
	"safeher/usecase"
	"safeher/utils"

	"github.com/gin-gonic/gin"
)

type AuthService interface {
	Register(ctx context.Context, req model.RegisterRequest) (*usecase.AuthResult, error)
	Login(ctx context.Context, req model.LoginRequest) (*usecase.AuthResult, error)
	Me(ctx context.Context, userID string) (*model.User, error)
	Logout(ctx context.Context, token string, expiresAt time.Time) error
}

type AuthHandler struct {
	users AuthService
}

func NewAuthHandler(users AuthService) *AuthHandler {
	return &AuthHandler{users: users}
}

func authResponse(res *usecase.AuthResult) dto.AuthResponse {
	return dto.AuthResponse{
		Token:     res.Token,
		ExpiresAt: res.ExpiresAt,
		User:      dto.ToUserProfileResponse(res.User, profileLinks()),
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if !bindJSON(c, &req, false) {
		utils.TrackAuthAttempt("failure", "validation")
		return
	}

	res, err := h.users.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Registration failed")
		return
	}

	utils.Created(c, "User registered successfully", authResponse(res))
}
