package handlers

import (
	"net/http"

	"devsquare/internal/models"
	"devsquare/internal/services"

	"github.com/gin-gonic/gin"
)

type MessageHandler struct {
	svc *services.Services
}

func NewMessageHandler(svc *services.Services) *MessageHandler {
	return &MessageHandler{svc: svc}
}

type sendToUserRequest struct {
	ToUserID string `json:"toUserId" binding:"required"`
	Content  string `json:"content" binding:"required,max=5000"`
}

type sendMessageRequest struct {
	Content string `json:"content" binding:"required,max=5000"`
}

func (h *MessageHandler) List(c *gin.Context) {
	conversations, err := h.svc.Messages.ListConversations(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"conversations": conversations})
}

func (h *MessageHandler) Send(c *gin.Context) {
	var req sendToUserRequest
	if !bindJSON(c, &req) {
		return
	}
	conv, msg, err := h.svc.Messages.SendToUser(c.Request.Context(), currentUser(c).ID, req.ToUserID, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, gin.H{"conversationId": conv.ID, "message": msg})
}

// Conversation opens a conversation by its id or by the other participant's
// user id, marking incoming messages read.
func (h *MessageHandler) Conversation(c *gin.Context) {
	ctx := c.Request.Context()
	user := currentUser(c)
	conv, messages, err := h.svc.Messages.Fetch(ctx, user.ID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	var other *models.User
	if u, err := h.svc.Users.GetByID(ctx, conv.Other(user.ID)); err == nil {
		other = u
	}
	respond(c, http.StatusOK, gin.H{"conversationId": conv.ID, "messages": messages, "otherUser": other})
}

func (h *MessageHandler) Reply(c *gin.Context) {
	var req sendMessageRequest
	if !bindJSON(c, &req) {
		return
	}
	msg, err := h.svc.Messages.Send(c.Request.Context(), c.Param("id"), currentUser(c).ID, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, gin.H{"message": msg})
}
