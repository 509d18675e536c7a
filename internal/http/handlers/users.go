package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/geocoder89/taskhub/internal/auth"
	"github.com/geocoder89/taskhub/internal/config"
	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/gin-gonic/gin"
)

const requestTimeout = 3 * time.Second

type AuthService interface {
	Register(ctx context.Context, req user.RegisterRequest) (user.User, error)
	Login(ctx context.Context, req user.LoginRequest) (auth.LoginResult, error)
	Profile(ctx context.Context, userID int64) (user.User, error)
	UpdateProfile(ctx context.Context, userID int64, req user.UpdateProfileRequest) (user.User, error)
}

type UsersHandler struct {
	auth AuthService
}

func NewUsersHandler(auth AuthService) *UsersHandler {
	return &UsersHandler{auth: auth}
}

func (h *UsersHandler) Register(ctx *gin.Context) {
	var req user.RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeoutFrom(ctx.Request.Context(), requestTimeout)
	defer cancel()

	u, err := h.auth.Register(cctx, req)
	if err != nil {
		RespondAppError(ctx, err, "Could not register user")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully.",
		"user":    u,
	})
}

func (h *UsersHandler) Login(ctx *gin.Context) {
	var req user.LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeoutFrom(ctx.Request.Context(), requestTimeout)
	defer cancel()

	res, err := h.auth.Login(cctx, req)
	if err != nil {
		RespondAppError(ctx, err, "Could not log in")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message":    "Login successful.",
		"token":      res.Token,
		"expires_at": res.ExpiresAt,
		"user":       res.User,
	})
}

func (h *UsersHandler) Profile(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeoutFrom(ctx.Request.Context(), requestTimeout)
	defer cancel()

	u, err := h.auth.Profile(cctx, userID)
	if err != nil {
		RespondAppError(ctx, err, "Could not fetch profile")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": u})
}

func (h *UsersHandler) UpdateProfile(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var req user.UpdateProfileRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeoutFrom(ctx.Request.Context(), requestTimeout)
	defer cancel()

	u, err := h.auth.UpdateProfile(cctx, userID, req)
	if err != nil {
		RespondAppError(ctx, err, "Could not update profile")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Profile updated successfully.",
		"user":    u,
	})
}
