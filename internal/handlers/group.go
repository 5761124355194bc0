package handlers

import (
	"net/http"

	"devsquare/internal/apperrors"
	"devsquare/internal/models"
	"devsquare/internal/services"

	"github.com/gin-gonic/gin"
)

type GroupHandler struct {
	svc *services.Services
}

func NewGroupHandler(svc *services.Services) *GroupHandler {
	return &GroupHandler{svc: svc}
}

type createGroupRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description" binding:"max=500"`
	Avatar      string `json:"avatar"`
}

type manageGroupRequest struct {
	Action   string `json:"action" binding:"required,oneof=addMember removeMember"`
	GroupID  string `json:"groupId" binding:"required"`
	MemberID string `json:"memberId" binding:"required"`
}

func (h *GroupHandler) List(c *gin.Context) {
	groups, err := h.svc.Groups.ListForUser(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"groups": groups})
}

func (h *GroupHandler) Create(c *gin.Context) {
	var req createGroupRequest
	if !bindJSON(c, &req) {
		return
	}
	group, err := h.svc.Groups.Create(c.Request.Context(), currentUser(c).ID, services.CreateGroupInput{
		Name:        req.Name,
		Description: req.Description,
		Avatar:      req.Avatar,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, gin.H{"group": group})
}

// Manage adds or removes a member; only the group admin may do either.
func (h *GroupHandler) Manage(c *gin.Context) {
	var req manageGroupRequest
	if !bindJSON(c, &req) {
		return
	}
	ctx := c.Request.Context()
	requester := currentUser(c).ID

	var (
		group *models.Group
		err   error
	)
	switch req.Action {
	case "addMember":
		group, err = h.svc.Groups.AddMember(ctx, req.GroupID, requester, req.MemberID)
	case "removeMember":
		group, err = h.svc.Groups.RemoveMember(ctx, req.GroupID, requester, req.MemberID)
	default:
		err = apperrors.NewValidationError("unknown action " + req.Action)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"group": group})
}

func (h *GroupHandler) Detail(c *gin.Context) {
	group, err := h.svc.Groups.Get(c.Request.Context(), c.Param("id"), currentUser(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"group": group})
}

func (h *GroupHandler) SendMessage(c *gin.Context) {
	var req sendMessageRequest
	if !bindJSON(c, &req) {
		return
	}
	msg, err := h.svc.Groups.SendMessage(c.Request.Context(), c.Param("id"), currentUser(c).ID, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, gin.H{"message": msg})
}
