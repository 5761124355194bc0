package handlers

import (
	"context"
	"net/http"
	"time"

	"devsquare/internal/apperrors"
	"devsquare/internal/models"
	"devsquare/internal/services"

	"github.com/gin-gonic/gin"
)

type FriendHandler struct {
	svc *services.Services
}

func NewFriendHandler(svc *services.Services) *FriendHandler {
	return &FriendHandler{svc: svc}
}

type friendRequest struct {
	FriendUsername string `json:"friendUsername" binding:"required"`
}

type friendActionRequest struct {
	Action   string `json:"action" binding:"required,oneof=accept reject block unblock unfriend"`
	FriendID string `json:"friendId" binding:"required"`
}

type friendEntry struct {
	ID        string                  `json:"id"`
	Friend    *models.User            `json:"friend,omitempty"`
	From      *models.User            `json:"from,omitempty"`
	Status    models.FriendshipStatus `json:"status"`
	CreatedAt time.Time               `json:"createdAt"`
}

// entries resolves the other side of each friendship; records pointing at
// deleted users are skipped.
func (h *FriendHandler) entries(ctx context.Context, userID string, list []models.Friendship, incoming bool) []friendEntry {
	out := make([]friendEntry, 0, len(list))
	for _, f := range list {
		other, err := h.svc.Users.GetByID(ctx, f.Other(userID))
		if err != nil {
			continue
		}
		e := friendEntry{ID: f.ID, Status: f.Status, CreatedAt: f.CreatedAt}
		if incoming {
			e.From = other
		} else {
			e.Friend = other
		}
		out = append(out, e)
	}
	return out
}

func (h *FriendHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	user := currentUser(c)
	friends, err := h.svc.Friends.ListFriends(ctx, user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"friends": h.entries(ctx, user.ID, friends, false)})
}

func (h *FriendHandler) Requests(c *gin.Context) {
	ctx := c.Request.Context()
	user := currentUser(c)
	pending, err := h.svc.Friends.ListPendingIncoming(ctx, user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"requests": h.entries(ctx, user.ID, pending, true)})
}

// SendRequest addresses the recipient by username.
func (h *FriendHandler) SendRequest(c *gin.Context) {
	var req friendRequest
	if !bindJSON(c, &req) {
		return
	}
	ctx := c.Request.Context()
	target, err := h.svc.Users.GetByUsername(ctx, req.FriendUsername)
	if err != nil {
		respondError(c, err)
		return
	}
	friendship, err := h.svc.Friends.SendRequest(ctx, currentUser(c).ID, target.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, gin.H{"friendship": friendship})
}

func (h *FriendHandler) Respond(c *gin.Context) {
	var req friendActionRequest
	if !bindJSON(c, &req) {
		return
	}
	ctx := c.Request.Context()
	userID := currentUser(c).ID

	var (
		friendship *models.Friendship
		err        error
	)
	switch req.Action {
	case "accept":
		friendship, err = h.svc.Friends.Accept(ctx, userID, req.FriendID)
	case "reject":
		err = h.svc.Friends.Reject(ctx, userID, req.FriendID)
	case "block":
		friendship, err = h.svc.Friends.Block(ctx, userID, req.FriendID)
	case "unblock":
		err = h.svc.Friends.Unblock(ctx, userID, req.FriendID)
	case "unfriend":
		err = h.svc.Friends.Unfriend(ctx, userID, req.FriendID)
	default:
		err = apperrors.NewValidationError("unknown action " + req.Action)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	if friendship == nil {
		respond(c, http.StatusOK, nil)
		return
	}
	respond(c, http.StatusOK, gin.H{"friendship": friendship})
}
