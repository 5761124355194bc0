package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"devsquare/internal/db"
	"devsquare/internal/models"
	"devsquare/internal/utils"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// testClock advances one second on every reading so orderings are strict.
type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type fixture struct {
	*Services
	cols  *db.Collections
	clock *testClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	backend, err := db.NewFileBackend(t.TempDir())
	if err != nil {
		t.Fatalf("backend: %v", err)
	}
	store, err := db.NewStore(backend, 16, zerolog.Nop())
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	clock := &testClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	cols := db.NewCollections(store)
	svc := New(cols, Options{
		Hasher: utils.BcryptHasher{Cost: bcrypt.MinCost},
		Now:    clock.Now,
		Logger: zerolog.Nop(),
	})
	return &fixture{Services: svc, cols: cols, clock: clock}
}

func (f *fixture) signUp(t *testing.T, username string) *models.User {
	t.Helper()
	u, err := f.Auth.SignUp(context.Background(), username, "password1", "")
	if err != nil {
		t.Fatalf("sign up %s: %v", username, err)
	}
	return u
}

func (f *fixture) post(t *testing.T, author *models.User, title, content string) *models.PostView {
	t.Helper()
	p, err := f.Posts.Create(context.Background(), author.ID, CreatePostInput{
		Title:    title,
		Content:  content,
		Category: models.CategoryDiscussion,
	})
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	return p
}

func (f *fixture) user(t *testing.T, id string) *models.User {
	t.Helper()
	u, err := f.Users.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("load user %s: %v", id, err)
	}
	return u
}

func up() models.VoteDirection   { return models.VoteUp }
func down() models.VoteDirection { return models.VoteDown }
