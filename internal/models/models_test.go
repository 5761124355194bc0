package models

import (
	"testing"
	"time"
)

func TestVoteBookToggle(t *testing.T) {
	book := VoteBook{}
	book.Toggle("p1", "bob", VoteUp)
	if got := book.Tally("p1"); got != 1 {
		t.Fatalf("expected 1 after up, got %d", got)
	}
	book.Toggle("p1", "bob", VoteUp)
	if got := book.Tally("p1"); got != 0 {
		t.Fatalf("expected 0 after repeated up, got %d", got)
	}
	if _, ok := book["p1"]; ok {
		t.Fatalf("expected empty entry to be dropped")
	}

	book.Toggle("p1", "bob", VoteUp)
	book.Toggle("p1", "bob", VoteDown)
	if got := book.Tally("p1"); got != -1 {
		t.Fatalf("expected -1 after flip, got %d", got)
	}
	if d := book.UserVote("p1", "bob"); d == nil || *d != VoteDown {
		t.Fatalf("expected bob's vote to be down, got %v", d)
	}

	book.Toggle("p1", "bob", "")
	if book.UserVote("p1", "bob") != nil {
		t.Fatalf("expected vote cleared")
	}
}

func TestInsertReplyDeepTree(t *testing.T) {
	post := Post{Comments: []Comment{
		{ID: "c1", Replies: []Comment{
			{ID: "c2", Replies: []Comment{{ID: "c3"}}},
		}},
		{ID: "c4"},
	}}

	if !InsertReply(post.Comments, "c3", Comment{ID: "c5", ParentID: "c3"}) {
		t.Fatalf("expected c3 to be found")
	}
	if got := post.Comments[0].Replies[0].Replies[0].Replies; len(got) != 1 || got[0].ID != "c5" {
		t.Fatalf("reply not attached under c3: %+v", got)
	}
	if InsertReply(post.Comments, "missing", Comment{ID: "c6"}) {
		t.Fatalf("expected unknown parent to be reported")
	}
	if n := post.CommentCount(); n != 5 {
		t.Fatalf("expected 5 comments in tree, got %d", n)
	}
	if c := FindComment(post.Comments, "c5"); c == nil || c.ParentID != "c3" {
		t.Fatalf("FindComment did not locate c5")
	}
}

func TestFriendshipBetweenIsSymmetric(t *testing.T) {
	f := Friendship{UserID: "a", FriendID: "b"}
	if !f.Between("a", "b") || !f.Between("b", "a") || f.Between("a", "c") {
		t.Fatalf("Between must ignore direction")
	}
	if f.Other("b") != "a" {
		t.Fatalf("unexpected other side")
	}
}

func TestSessionExpiredAtBoundary(t *testing.T) {
	now := time.Now()
	s := Session{ExpiresAt: now}
	if !s.Expired(now) {
		t.Fatalf("a session is expired at its expiry instant")
	}
	if s.Expired(now.Add(-time.Second)) {
		t.Fatalf("session should be live before expiry")
	}
}
