package services

import (
	"context"
	"testing"
	"time"

	"devsquare/internal/apperrors"
)

func TestSignUpRejectsDuplicateUsernameIgnoringCase(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u := f.signUp(t, "Alice")
	if u.Username != "alice" || u.DisplayName != "Alice" {
		t.Fatalf("unexpected user %+v", u)
	}
	if u.Posts != 0 || u.Comments != 0 || u.Reputation != 0 {
		t.Fatalf("counters must start at zero: %+v", u)
	}

	_, err := f.Auth.SignUp(ctx, "ALICE", "password1", "")
	if !apperrors.Is(err, apperrors.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestSignUpValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cases := []struct{ username, password string }{
		{"ab", "password1"},
		{"bad name", "password1"},
		{"bad-name", "password1"},
		{"goodname", "short"},
	}
	for _, tc := range cases {
		_, err := f.Auth.SignUp(ctx, tc.username, tc.password, "")
		if !apperrors.Is(err, apperrors.ErrValidation) {
			t.Fatalf("SignUp(%q, %q): expected validation error, got %v", tc.username, tc.password, err)
		}
	}
}

func TestCredentialsStoredApartFromUser(t *testing.T) {
	f := newFixture(t)
	u := f.signUp(t, "carol")
	creds, err := f.cols.Credentials.Load(context.Background())
	if err != nil {
		t.Fatalf("load credentials: %v", err)
	}
	cred, ok := creds[u.ID]
	if !ok || cred.Hash == "" || cred.Hash == "password1" {
		t.Fatalf("expected hashed credential for %s, got %+v", u.ID, cred)
	}
}

func TestSignInGenericFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.signUp(t, "dave")

	if _, err := f.Auth.SignIn(ctx, "DAVE", "password1"); err != nil {
		t.Fatalf("sign in should be case-insensitive: %v", err)
	}
	_, wrongPass := f.Auth.SignIn(ctx, "dave", "nope-nope")
	_, unknown := f.Auth.SignIn(ctx, "nobody", "password1")
	if !apperrors.Is(wrongPass, apperrors.ErrUnauthenticated) || !apperrors.Is(unknown, apperrors.ErrUnauthenticated) {
		t.Fatalf("expected auth errors, got %v / %v", wrongPass, unknown)
	}
	if wrongPass.Error() != unknown.Error() {
		t.Fatalf("failures must not reveal which part was wrong: %q vs %q", wrongPass, unknown)
	}
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.signUp(t, "erin")

	if err := f.Auth.ChangePassword(ctx, u.ID, "wrong-one", "newpass1"); !apperrors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("expected rejection of wrong current password, got %v", err)
	}
	if err := f.Auth.ChangePassword(ctx, u.ID, "password1", "123"); !apperrors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("expected short new password to fail, got %v", err)
	}
	if err := f.Auth.ChangePassword(ctx, u.ID, "password1", "newpass1"); err != nil {
		t.Fatalf("change password: %v", err)
	}
	if _, err := f.Auth.SignIn(ctx, "erin", "newpass1"); err != nil {
		t.Fatalf("new password should work: %v", err)
	}
	if _, err := f.Auth.SignIn(ctx, "erin", "password1"); err == nil {
		t.Fatalf("old password must stop working")
	}
}

func TestEnsureAdminPromotes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin, err := f.Auth.EnsureAdmin(ctx, "root_admin", "adminpass", "Admin")
	if err != nil {
		t.Fatalf("ensure admin: %v", err)
	}
	if !admin.IsAdmin || admin.Reputation != adminReputation {
		t.Fatalf("expected promoted admin, got %+v", admin)
	}
	again, err := f.Auth.EnsureAdmin(ctx, "root_admin", "adminpass", "Admin")
	if err != nil || again.ID != admin.ID {
		t.Fatalf("second call must be idempotent: %+v %v", again, err)
	}
}

func TestSessionExpiryIsLazy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.signUp(t, "frank")

	token, err := f.Sessions.CreateWithTTL(ctx, u.ID, 0)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if _, err := f.Sessions.Get(ctx, token); !apperrors.Is(err, apperrors.ErrUnauthenticated) {
		t.Fatalf("zero-ttl session must be absent, got %v", err)
	}
	sessions, _ := f.cols.Sessions.Load(ctx)
	if _, ok := sessions[token]; ok {
		t.Fatalf("expired session must be removed from storage")
	}

	live, _ := f.Sessions.CreateWithTTL(ctx, u.ID, time.Hour)
	if s, err := f.Sessions.Get(ctx, live); err != nil || s.UserID != u.ID {
		t.Fatalf("live session lookup failed: %v", err)
	}
	f.clock.Advance(2 * time.Hour)
	if _, err := f.Sessions.Get(ctx, live); err == nil {
		t.Fatalf("session must expire after its ttl")
	}
}

func TestSessionDeleteAllForUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.signUp(t, "gina")
	b := f.signUp(t, "hank")
	t1, _ := f.Sessions.Create(ctx, a.ID)
	t2, _ := f.Sessions.Create(ctx, a.ID)
	t3, _ := f.Sessions.Create(ctx, b.ID)

	if n, _ := f.Sessions.ActiveUsers(ctx); n != 2 {
		t.Fatalf("expected 2 active users, got %d", n)
	}
	if err := f.Sessions.DeleteAllForUser(ctx, a.ID); err != nil {
		t.Fatalf("delete all: %v", err)
	}
	for _, tok := range []string{t1, t2} {
		if _, err := f.Sessions.Get(ctx, tok); err == nil {
			t.Fatalf("session %s should be gone", tok)
		}
	}
	if _, err := f.Sessions.Get(ctx, t3); err != nil {
		t.Fatalf("other user's session must survive: %v", err)
	}
	if err := f.Sessions.Delete(ctx, t3); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := f.Sessions.Get(ctx, t3); err == nil {
		t.Fatalf("deleted session must be absent")
	}
}
