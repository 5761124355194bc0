package handlers

import (
	"net/http"

	"devsquare/internal/services"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	svc *services.Services
}

func NewUserHandler(svc *services.Services) *UserHandler {
	return &UserHandler{svc: svc}
}

type updateProfileRequest struct {
	DisplayName *string  `json:"displayName" binding:"omitempty,max=50"`
	Bio         *string  `json:"bio" binding:"omitempty,max=500"`
	Avatar      *string  `json:"avatar" binding:"omitempty,max=500"`
	TechStack   []string `json:"techStack" binding:"omitempty,max=20"`
}

// Current returns the signed-in user's own record.
func (h *UserHandler) Current(c *gin.Context) {
	respond(c, http.StatusOK, gin.H{"user": currentUser(c)})
}

func (h *UserHandler) Update(c *gin.Context) {
	var req updateProfileRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.svc.Users.UpdateProfile(c.Request.Context(), currentUser(c).ID, services.ProfileUpdate{
		DisplayName: req.DisplayName,
		Bio:         req.Bio,
		Avatar:      req.Avatar,
		TechStack:   req.TechStack,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"user": user})
}

// Profile shows a user by username together with their posts.
func (h *UserHandler) Profile(c *gin.Context) {
	ctx := c.Request.Context()
	user, err := h.svc.Users.GetByUsername(ctx, c.Param("username"))
	if err != nil {
		respondError(c, err)
		return
	}
	posts, err := h.svc.Posts.ListByAuthor(ctx, user.ID, viewerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"user": user, "posts": posts})
}

func (h *UserHandler) Search(c *gin.Context) {
	users, err := h.svc.Users.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"users": users})
}
