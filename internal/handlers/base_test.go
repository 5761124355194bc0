package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"devsquare/internal/apperrors"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type sampleRequest struct {
	Name  string `json:"name" binding:"required"`
	Count int    `json:"count" binding:"min=1"`
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) apperrors.ErrorResponse {
	t.Helper()
	var body apperrors.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return body
}

func TestBindJSONReportsFirstFailingField(t *testing.T) {
	r := gin.New()
	r.POST("/", func(c *gin.Context) {
		var req sampleRequest
		if !bindJSON(c, &req) {
			return
		}
		respond(c, http.StatusOK, gin.H{"name": req.Name})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"count": 2}`)))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	body := decodeError(t, w)
	if body.Error.Code != apperrors.CodeValidation || body.Error.Message != "name is required" {
		t.Fatalf("unexpected error: %+v", body.Error)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`not json`)))
	if body := decodeError(t, w); w.Code != http.StatusBadRequest || body.Error.Message != "invalid request body" {
		t.Fatalf("malformed json should be a validation error: %d %+v", w.Code, body.Error)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x","count":1}`)))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"success":true`) {
		t.Fatalf("valid body should pass: %d %s", w.Code, w.Body.String())
	}
}

func TestRespondErrorHidesInternalCause(t *testing.T) {
	r := gin.New()
	r.GET("/", func(c *gin.Context) {
		respondError(c, apperrors.NewInternalError(errors.New("open /data/posts.json: permission denied"), "failed to read posts"))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "permission denied") || strings.Contains(w.Body.String(), "posts.json") {
		t.Fatalf("internal details leaked: %s", w.Body.String())
	}
	if body := decodeError(t, w); body.Error.Code != apperrors.CodeInternal {
		t.Fatalf("unexpected code %s", body.Error.Code)
	}
}
