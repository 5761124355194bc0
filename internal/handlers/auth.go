package handlers

import (
	"net/http"

	"devsquare/internal/logger"
	"devsquare/internal/middleware"
	"devsquare/internal/models"
	"devsquare/internal/services"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	svc *services.Services
}

func NewAuthHandler(svc *services.Services) *AuthHandler {
	return &AuthHandler{svc: svc}
}

type signUpRequest struct {
	Username    string `json:"username" binding:"required"`
	Password    string `json:"password" binding:"required"`
	DisplayName string `json:"displayName"`
}

type signInRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
}

// startSession creates a session for user and hands the token back both as a
// cookie and in the body for bearer clients.
func (h *AuthHandler) startSession(c *gin.Context, code int, user *models.User) {
	token, err := h.svc.Sessions.Create(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := middleware.SetSessionCookie(c, token); err != nil {
		logger.Warn().Err(err).Str("user_id", user.ID).Msg("failed to write session cookie")
	}
	respond(c, code, gin.H{"user": user, "token": token})
}

func (h *AuthHandler) SignUp(c *gin.Context) {
	var req signUpRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.svc.Auth.SignUp(c.Request.Context(), req.Username, req.Password, req.DisplayName)
	if err != nil {
		respondError(c, err)
		return
	}
	h.startSession(c, http.StatusCreated, user)
}

func (h *AuthHandler) SignIn(c *gin.Context) {
	var req signInRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.svc.Auth.SignIn(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	h.startSession(c, http.StatusOK, user)
}

// SignOut deletes the current session, if any, and clears the cookie.
func (h *AuthHandler) SignOut(c *gin.Context) {
	if token := middleware.CurrentToken(c); token != "" {
		if err := h.svc.Sessions.Delete(c.Request.Context(), token); err != nil {
			respondError(c, err)
			return
		}
	}
	if err := middleware.ClearSessionCookie(c); err != nil {
		logger.Warn().Err(err).Msg("failed to clear session cookie")
	}
	respond(c, http.StatusOK, gin.H{"message": "Signed out successfully"})
}

// Me reports the signed-in user, or user=null for anonymous callers.
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		respond(c, http.StatusOK, gin.H{"user": nil})
		return
	}
	respond(c, http.StatusOK, gin.H{"user": user, "unreadCount": middleware.UnreadCount(c)})
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	user := currentUser(c)
	if err := h.svc.Auth.ChangePassword(c.Request.Context(), user.ID, req.CurrentPassword, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"message": "Password changed successfully"})
}

// DeleteAccount removes the signed-in user and everything they own.
func (h *AuthHandler) DeleteAccount(c *gin.Context) {
	user := currentUser(c)
	if err := h.svc.Accounts.Delete(c.Request.Context(), user.ID); err != nil {
		respondError(c, err)
		return
	}
	if err := middleware.ClearSessionCookie(c); err != nil {
		logger.Warn().Err(err).Msg("failed to clear session cookie")
	}
	respond(c, http.StatusOK, gin.H{"message": "Account deleted successfully"})
}
