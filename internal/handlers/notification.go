package handlers

import (
	"net/http"

	"devsquare/internal/services"
	"devsquare/internal/utils"

	"github.com/gin-gonic/gin"
)

const notificationPageSize = 50

type NotificationHandler struct {
	svc *services.Services
}

func NewNotificationHandler(svc *services.Services) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

func (h *NotificationHandler) List(c *gin.Context) {
	user := currentUser(c)
	notifications, err := h.svc.Notifications.ListFor(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	if limit := utils.StringToInt(c.Query("limit"), notificationPageSize); len(notifications) > limit {
		notifications = notifications[:limit]
	}
	respond(c, http.StatusOK, gin.H{"notifications": notifications})
}

func (h *NotificationHandler) Count(c *gin.Context) {
	count, err := h.svc.Notifications.UnreadCount(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"count": count})
}

func (h *NotificationHandler) Read(c *gin.Context) {
	if err := h.svc.Notifications.MarkRead(c.Request.Context(), currentUser(c).ID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, nil)
}

func (h *NotificationHandler) ReadAll(c *gin.Context) {
	updated, err := h.svc.Notifications.MarkAllRead(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"updated": updated})
}

func (h *NotificationHandler) Delete(c *gin.Context) {
	if err := h.svc.Notifications.Delete(c.Request.Context(), currentUser(c).ID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, nil)
}
