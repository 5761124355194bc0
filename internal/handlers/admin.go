package handlers

import (
	"net/http"

	"devsquare/internal/logger"
	"devsquare/internal/services"

	"github.com/gin-gonic/gin"
)

// AdminHandler serves the dashboard. Routes sit behind middleware.AdminRequired.
type AdminHandler struct {
	svc *services.Services
}

func NewAdminHandler(svc *services.Services) *AdminHandler {
	return &AdminHandler{svc: svc}
}

func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.svc.Admin.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"stats": stats})
}

func (h *AdminHandler) Users(c *gin.Context) {
	users, err := h.svc.Admin.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"users": users})
}

func (h *AdminHandler) Posts(c *gin.Context) {
	posts, err := h.svc.Admin.ListPosts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"posts": posts})
}

func (h *AdminHandler) DeleteUser(c *gin.Context) {
	id := c.Param("id")
	if err := h.svc.Admin.DeleteUser(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	logger.Info().Str("admin_id", currentUser(c).ID).Str("user_id", id).Msg("admin deleted user")
	respond(c, http.StatusOK, gin.H{"message": "User deleted successfully"})
}

func (h *AdminHandler) DeletePost(c *gin.Context) {
	id := c.Param("id")
	if err := h.svc.Admin.DeletePost(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	logger.Info().Str("admin_id", currentUser(c).ID).Str("post_id", id).Msg("admin deleted post")
	respond(c, http.StatusOK, gin.H{"message": "Post deleted successfully"})
}
