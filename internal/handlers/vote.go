package handlers

import (
	"net/http"

	"devsquare/internal/models"
	"devsquare/internal/services"

	"github.com/gin-gonic/gin"
)

// VoteHandler applies toggle votes to posts and comments.
type VoteHandler struct {
	svc *services.Services
}

func NewVoteHandler(svc *services.Services) *VoteHandler {
	return &VoteHandler{svc: svc}
}

// voteRequest carries "up", "down" or null to clear.
type voteRequest struct {
	Vote *string `json:"vote"`
}

func (r voteRequest) direction() models.VoteDirection {
	if r.Vote == nil {
		return ""
	}
	return models.VoteDirection(*r.Vote)
}

func (h *VoteHandler) Vote(c *gin.Context) {
	var req voteRequest
	if !bindJSON(c, &req) {
		return
	}
	post, err := h.svc.Posts.Vote(c.Request.Context(), c.Param("id"), currentUser(c).ID, req.direction())
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"post": post})
}

func (h *VoteHandler) VoteComment(c *gin.Context) {
	var req voteRequest
	if !bindJSON(c, &req) {
		return
	}
	post, err := h.svc.Posts.VoteComment(c.Request.Context(), c.Param("id"), c.Param("commentId"), currentUser(c).ID, req.direction())
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"post": post})
}
