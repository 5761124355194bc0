package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"devsquare/internal/apperrors"
	"devsquare/internal/db"
	"devsquare/internal/services"
	"devsquare/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newServices(t *testing.T) *services.Services {
	t.Helper()
	backend, err := db.NewFileBackend(t.TempDir())
	if err != nil {
		t.Fatalf("backend: %v", err)
	}
	store, err := db.NewStore(backend, 0, zerolog.Nop())
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	return services.New(db.NewCollections(store), services.Options{
		Hasher: utils.BcryptHasher{Cost: bcrypt.MinCost},
		Logger: zerolog.Nop(),
	})
}

func newEngine(svc *services.Services) *gin.Engine {
	r := gin.New()
	r.Use(sessions.Sessions("test_session", cookie.NewStore([]byte("test-secret"))))
	r.Use(LoadUser(svc))
	r.GET("/open", func(c *gin.Context) {
		_, ok := CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"signedIn": ok})
	})
	r.GET("/private", AuthRequired(), func(c *gin.Context) {
		user, _ := CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"id": user.ID, "unread": UnreadCount(c)})
	})
	r.GET("/admin", AdminRequired(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestAuthRequiredRejectsAnonymous(t *testing.T) {
	r := newEngine(newServices(t))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/private", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	var body apperrors.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Success || body.Error.Code != apperrors.CodeAuth {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/open", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("anonymous request to an open route should pass, got %d", w.Code)
	}
}

func TestLoadUserFromBearerToken(t *testing.T) {
	svc := newServices(t)
	ctx := context.Background()
	user, err := svc.Auth.SignUp(ctx, "alice", "password1", "")
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}
	token, err := svc.Sessions.Create(ctx, user.ID)
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	r := newEngine(svc)

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var body struct {
		ID string `json:"id"`
	}
	json.Unmarshal(w.Body.Bytes(), &body)
	if body.ID != user.ID {
		t.Fatalf("expected user %s, got %s", user.ID, body.ID)
	}

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("non-admin should get 403, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("unknown token should get 401, got %d", w.Code)
	}
}

func TestLoadUserFromCookie(t *testing.T) {
	svc := newServices(t)
	ctx := context.Background()
	admin, err := svc.Auth.EnsureAdmin(ctx, "root", "adminpass", "")
	if err != nil {
		t.Fatalf("admin: %v", err)
	}
	token, _ := svc.Sessions.Create(ctx, admin.ID)

	r := newEngine(svc)
	r.GET("/login", func(c *gin.Context) {
		if err := SetSessionCookie(c, token); err != nil {
			t.Errorf("set cookie: %v", err)
		}
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/login", nil))
	cookies := w.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatalf("expected a session cookie")
	}

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("admin cookie should pass, got %d", w.Code)
	}
}

func TestIPRateLimiterSlidingWindow(t *testing.T) {
	rl := NewIPRateLimiter(2, time.Minute)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	if !rl.Allow("1.1.1.1") || !rl.Allow("1.1.1.1") {
		t.Fatalf("first two requests should pass")
	}
	if rl.Allow("1.1.1.1") {
		t.Fatalf("third request inside the window should be rejected")
	}
	if !rl.Allow("2.2.2.2") {
		t.Fatalf("other IPs have their own budget")
	}
	now = now.Add(61 * time.Second)
	if !rl.Allow("1.1.1.1") {
		t.Fatalf("window should have slid")
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	r := gin.New()
	r.POST("/signin", RateLimit(NewIPRateLimiter(1, time.Minute)), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	first := httptest.NewRecorder()
	r.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/signin", nil))
	second := httptest.NewRecorder()
	r.ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/signin", nil))
	if first.Code != http.StatusOK || second.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 200 then 429, got %d then %d", first.Code, second.Code)
	}
}
