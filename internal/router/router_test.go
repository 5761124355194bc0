package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"devsquare/internal/apperrors"
	"devsquare/internal/db"
	"devsquare/internal/middleware"
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

type testServer struct {
	t   *testing.T
	svc *services.Services
	r   *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	backend, err := db.NewFileBackend(t.TempDir())
	if err != nil {
		t.Fatalf("backend: %v", err)
	}
	store, err := db.NewStore(backend, 32, zerolog.Nop())
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	svc := services.New(db.NewCollections(store), services.Options{
		Hasher: utils.BcryptHasher{Cost: bcrypt.MinCost},
		Logger: zerolog.Nop(),
	})

	r := gin.New()
	r.Use(sessions.Sessions("devsquare_test", cookie.NewStore([]byte("test-secret"))))
	r.Use(middleware.LoadUser(svc))
	RegisterRoutes(r, svc, nil)
	return &testServer{t: t, svc: svc, r: r}
}

// do sends a JSON request with an optional bearer token and decodes the reply.
func (s *testServer) do(method, path, token string, body interface{}) (int, map[string]interface{}) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			s.t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.r.ServeHTTP(w, req)

	out := map[string]interface{}{}
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
			s.t.Fatalf("%s %s: decode %q: %v", method, path, w.Body.String(), err)
		}
	}
	return w.Code, out
}

// signUp registers username and returns its id and bearer token.
func (s *testServer) signUp(username string) (string, string) {
	s.t.Helper()
	code, body := s.do(http.MethodPost, "/api/auth/signup", "", gin.H{"username": username, "password": "password1"})
	if code != http.StatusCreated {
		s.t.Fatalf("sign up %s: %d %v", username, code, body)
	}
	user := body["user"].(map[string]interface{})
	return user["id"].(string), body["token"].(string)
}

func errorCode(body map[string]interface{}) string {
	detail, _ := body["error"].(map[string]interface{})
	code, _ := detail["code"].(string)
	return code
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	if code, body := s.do(http.MethodGet, "/healthz", "", nil); code != http.StatusOK || body["status"] != "ok" {
		t.Fatalf("unexpected health response: %d %v", code, body)
	}
}

func TestVoteScenarioOverHTTP(t *testing.T) {
	s := newTestServer(t)
	_, aliceToken := s.signUp("alice")
	_, bobToken := s.signUp("bob")

	code, body := s.do(http.MethodPost, "/api/posts", aliceToken, gin.H{
		"title":    "Hello",
		"content":  "first post",
		"category": "discussion",
	})
	if code != http.StatusCreated {
		t.Fatalf("create post: %d %v", code, body)
	}
	postID := body["post"].(map[string]interface{})["id"].(string)

	code, body = s.do(http.MethodPost, "/api/posts/"+postID+"/vote", bobToken, gin.H{"vote": "up"})
	if code != http.StatusOK {
		t.Fatalf("vote: %d %v", code, body)
	}

	_, body = s.do(http.MethodGet, "/api/posts/"+postID, bobToken, nil)
	post := body["post"].(map[string]interface{})
	if post["votes"].(float64) != 1 || post["userVote"] != "up" {
		t.Fatalf("expected votes=1 userVote=up, got %v %v", post["votes"], post["userVote"])
	}

	s.do(http.MethodPost, "/api/posts/"+postID+"/vote", bobToken, gin.H{"vote": nil})
	_, body = s.do(http.MethodGet, "/api/posts/"+postID, "", nil)
	post = body["post"].(map[string]interface{})
	if post["votes"].(float64) != 0 || post["userVote"] != nil {
		t.Fatalf("expected cleared vote, got %v %v", post["votes"], post["userVote"])
	}
}

func TestErrorTaxonomyMapping(t *testing.T) {
	s := newTestServer(t)
	_, aliceToken := s.signUp("alice")
	_, bobToken := s.signUp("bob")

	cases := []struct {
		name   string
		method string
		path   string
		token  string
		body   interface{}
		status int
		code   string
	}{
		{"anonymous create", http.MethodPost, "/api/posts", "", gin.H{"title": "x"}, http.StatusUnauthorized, apperrors.CodeAuth},
		{"duplicate username", http.MethodPost, "/api/auth/signup", "", gin.H{"username": "ALICE", "password": "password1"}, http.StatusConflict, apperrors.CodeConflict},
		{"missing field", http.MethodPost, "/api/auth/signup", "", gin.H{"password": "password1"}, http.StatusBadRequest, apperrors.CodeValidation},
		{"bad credentials", http.MethodPost, "/api/auth/signin", "", gin.H{"username": "alice", "password": "wrong-pass"}, http.StatusUnauthorized, apperrors.CodeAuth},
		{"unknown post", http.MethodGet, "/api/posts/nope", "", nil, http.StatusNotFound, apperrors.CodeNotFound},
		{"unknown sort", http.MethodGet, "/api/posts?sort=random", "", nil, http.StatusBadRequest, apperrors.CodeValidation},
		{"non-admin stats", http.MethodGet, "/api/admin/stats", bobToken, nil, http.StatusForbidden, apperrors.CodeAuthorization},
		{"bad group action", http.MethodPut, "/api/groups", aliceToken, gin.H{"action": "explode", "groupId": "g", "memberId": "m"}, http.StatusBadRequest, apperrors.CodeValidation},
	}
	for _, tc := range cases {
		code, body := s.do(tc.method, tc.path, tc.token, tc.body)
		if code != tc.status || errorCode(body) != tc.code {
			t.Fatalf("%s: expected %d %s, got %d %v", tc.name, tc.status, tc.code, code, body)
		}
		if body["success"] != false || body["timestamp"] == nil {
			t.Fatalf("%s: missing envelope fields: %v", tc.name, body)
		}
	}

	_, body := s.do(http.MethodPost, "/api/auth/signup", "", gin.H{"password": "password1"})
	details := body["error"].(map[string]interface{})["details"].(map[string]interface{})
	if details["field"] != "username" {
		t.Fatalf("validation error should name the json field, got %v", details)
	}
}

func TestDeletePostAuthorOnly(t *testing.T) {
	s := newTestServer(t)
	_, aliceToken := s.signUp("alice")
	_, bobToken := s.signUp("bob")

	_, body := s.do(http.MethodPost, "/api/posts", aliceToken, gin.H{"title": "t", "content": "c", "category": "help"})
	postID := body["post"].(map[string]interface{})["id"].(string)

	if code, body := s.do(http.MethodDelete, "/api/posts/"+postID, bobToken, nil); code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d %v", code, body)
	}
	if code, _ := s.do(http.MethodDelete, "/api/posts/"+postID, aliceToken, nil); code != http.StatusOK {
		t.Fatalf("author delete failed: %d", code)
	}
	if code, _ := s.do(http.MethodGet, "/api/posts/"+postID, "", nil); code != http.StatusNotFound {
		t.Fatalf("post should be gone, got %d", code)
	}
}

func TestSessionLifecycle(t *testing.T) {
	s := newTestServer(t)
	_, token := s.signUp("alice")

	code, body := s.do(http.MethodGet, "/api/auth/me", token, nil)
	user, _ := body["user"].(map[string]interface{})
	if code != http.StatusOK || user["username"] != "alice" {
		t.Fatalf("me: %d %v", code, body)
	}

	code, body = s.do(http.MethodPost, "/api/auth/signin", "", gin.H{"username": "Alice", "password": "password1"})
	if code != http.StatusOK || body["token"] == "" {
		t.Fatalf("sign in: %d %v", code, body)
	}

	if code, _ := s.do(http.MethodPost, "/api/auth/signout", token, nil); code != http.StatusOK {
		t.Fatalf("sign out: %d", code)
	}
	if code, _ := s.do(http.MethodGet, "/api/user", token, nil); code != http.StatusUnauthorized {
		t.Fatalf("signed-out token must be rejected, got %d", code)
	}
	_, body = s.do(http.MethodGet, "/api/auth/me", token, nil)
	if body["user"] != nil {
		t.Fatalf("me should report no user after sign out, got %v", body["user"])
	}
}

func TestMessagingAndFriendsOverHTTP(t *testing.T) {
	s := newTestServer(t)
	aliceID, aliceToken := s.signUp("alice")
	bobID, bobToken := s.signUp("bob")

	code, body := s.do(http.MethodPost, "/api/messages", aliceToken, gin.H{"toUserId": bobID, "content": "hi bob"})
	if code != http.StatusCreated {
		t.Fatalf("send: %d %v", code, body)
	}
	convID := body["conversationId"].(string)

	_, body = s.do(http.MethodGet, "/api/messages", bobToken, nil)
	convs := body["conversations"].([]interface{})
	if len(convs) != 1 || convs[0].(map[string]interface{})["unreadCount"].(float64) != 1 {
		t.Fatalf("bob should have one unread conversation: %v", convs)
	}

	code, body = s.do(http.MethodGet, "/api/messages/"+aliceID, bobToken, nil)
	if code != http.StatusOK || body["conversationId"] != convID {
		t.Fatalf("fetch by user id should resolve the same conversation: %d %v", code, body)
	}
	if msgs := body["messages"].([]interface{}); len(msgs) != 1 || msgs[0].(map[string]interface{})["read"] != true {
		t.Fatalf("message should be marked read: %v", msgs)
	}

	code, body = s.do(http.MethodPost, "/api/friends", aliceToken, gin.H{"friendUsername": "BOB"})
	if code != http.StatusCreated {
		t.Fatalf("friend request: %d %v", code, body)
	}
	_, body = s.do(http.MethodGet, "/api/friends/requests", bobToken, nil)
	if reqs := body["requests"].([]interface{}); len(reqs) != 1 {
		t.Fatalf("expected one incoming request, got %v", reqs)
	}
	code, body = s.do(http.MethodPut, "/api/friends", bobToken, gin.H{"action": "accept", "friendId": aliceID})
	if code != http.StatusOK || body["friendship"].(map[string]interface{})["status"] != "accepted" {
		t.Fatalf("accept: %d %v", code, body)
	}
	_, body = s.do(http.MethodGet, "/api/friends", aliceToken, nil)
	friends := body["friends"].([]interface{})
	if len(friends) != 1 || friends[0].(map[string]interface{})["friend"].(map[string]interface{})["id"] != bobID {
		t.Fatalf("alice should list bob as a friend: %v", friends)
	}

	_, body = s.do(http.MethodGet, "/api/notifications/count", aliceToken, nil)
	if body["count"].(float64) != 1 {
		t.Fatalf("alice should have a friend_accepted notification, got %v", body["count"])
	}
	s.do(http.MethodPut, "/api/notifications/read-all", aliceToken, nil)
	_, body = s.do(http.MethodGet, "/api/notifications/count", aliceToken, nil)
	if body["count"].(float64) != 0 {
		t.Fatalf("read-all should clear the count, got %v", body["count"])
	}
}

func TestGroupsOverHTTP(t *testing.T) {
	s := newTestServer(t)
	_, aliceToken := s.signUp("alice")
	bobID, bobToken := s.signUp("bob")

	code, body := s.do(http.MethodPost, "/api/groups", aliceToken, gin.H{"name": "gophers"})
	if code != http.StatusCreated {
		t.Fatalf("create group: %d %v", code, body)
	}
	groupID := body["group"].(map[string]interface{})["id"].(string)

	if code, _ := s.do(http.MethodGet, "/api/groups/"+groupID, bobToken, nil); code != http.StatusForbidden {
		t.Fatalf("non-member view should be forbidden, got %d", code)
	}
	code, body = s.do(http.MethodPut, "/api/groups", aliceToken, gin.H{"action": "addMember", "groupId": groupID, "memberId": bobID})
	if code != http.StatusOK {
		t.Fatalf("add member: %d %v", code, body)
	}
	if code, _ := s.do(http.MethodPost, "/api/groups/"+groupID+"/messages", bobToken, gin.H{"content": "hello"}); code != http.StatusCreated {
		t.Fatalf("member send failed: %d", code)
	}
	_, body = s.do(http.MethodGet, "/api/groups", bobToken, nil)
	if groups := body["groups"].([]interface{}); len(groups) != 1 {
		t.Fatalf("bob should see one group, got %v", groups)
	}
}

func TestAdminRoutes(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	admin, err := s.svc.Auth.EnsureAdmin(ctx, "root", "adminpass", "")
	if err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	adminToken, _ := s.svc.Sessions.Create(ctx, admin.ID)
	bobID, bobToken := s.signUp("bob")
	s.do(http.MethodPost, "/api/posts", bobToken, gin.H{"title": "t", "content": "c", "category": "question"})

	code, body := s.do(http.MethodGet, "/api/admin/stats", adminToken, nil)
	stats, _ := body["stats"].(map[string]interface{})
	if code != http.StatusOK || stats["totalUsers"].(float64) != 2 || stats["totalPosts"].(float64) != 1 {
		t.Fatalf("stats: %d %v", code, body)
	}

	if code, _ := s.do(http.MethodDelete, "/api/admin/users/"+admin.ID, adminToken, nil); code != http.StatusForbidden {
		t.Fatalf("admin accounts must not be deletable, got %d", code)
	}
	if code, _ := s.do(http.MethodDelete, "/api/admin/users/"+bobID, adminToken, nil); code != http.StatusOK {
		t.Fatalf("delete user failed: %d", code)
	}
	_, body = s.do(http.MethodGet, "/api/admin/posts", adminToken, nil)
	if posts := body["posts"].([]interface{}); len(posts) != 0 {
		t.Fatalf("deleted user's posts should be gone, got %d", len(posts))
	}
}
