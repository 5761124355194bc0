package handlers

import (
	"net/http"

	"devsquare/internal/models"
	"devsquare/internal/services"
	"devsquare/internal/utils"

	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	svc *services.Services
}

func NewPostHandler(svc *services.Services) *PostHandler {
	return &PostHandler{svc: svc}
}

type createPostRequest struct {
	Title       string              `json:"title" binding:"required,max=300"`
	Content     string              `json:"content" binding:"required"`
	Category    string              `json:"category" binding:"required"`
	Tags        []string            `json:"tags" binding:"omitempty,max=10"`
	CodeSnippet *models.CodeSnippet `json:"codeSnippet"`
	MediaEmbeds []models.MediaEmbed `json:"mediaEmbeds"`
}

type commentRequest struct {
	Content     string              `json:"content" binding:"required"`
	CodeSnippet *models.CodeSnippet `json:"codeSnippet"`
	ParentID    string              `json:"parentId"`
}

func (h *PostHandler) List(c *gin.Context) {
	posts, err := h.svc.Posts.List(c.Request.Context(), services.ListFilter{
		Category: c.Query("category"),
		Sort:     services.SortMode(c.Query("sort")),
		Limit:    utils.StringToInt(c.Query("limit"), services.DefaultListLimit),
	}, viewerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"posts": posts})
}

func (h *PostHandler) Create(c *gin.Context) {
	var req createPostRequest
	if !bindJSON(c, &req) {
		return
	}
	post, err := h.svc.Posts.Create(c.Request.Context(), currentUser(c).ID, services.CreatePostInput{
		Title:       req.Title,
		Content:     req.Content,
		Category:    models.PostCategory(req.Category),
		Tags:        req.Tags,
		CodeSnippet: req.CodeSnippet,
		MediaEmbeds: req.MediaEmbeds,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, gin.H{"post": post})
}

func (h *PostHandler) Detail(c *gin.Context) {
	post, err := h.svc.Posts.Get(c.Request.Context(), c.Param("id"), viewerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"post": post})
}

func (h *PostHandler) Delete(c *gin.Context) {
	if err := h.svc.Posts.Delete(c.Request.Context(), c.Param("id"), currentUser(c).ID); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"message": "Post deleted successfully"})
}

func (h *PostHandler) AddComment(c *gin.Context) {
	var req commentRequest
	if !bindJSON(c, &req) {
		return
	}
	post, err := h.svc.Posts.AddComment(c.Request.Context(), c.Param("id"), currentUser(c).ID, services.CommentInput{
		Content:     req.Content,
		CodeSnippet: req.CodeSnippet,
		ParentID:    req.ParentID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, gin.H{"post": post})
}
