package models

type VoteDirection string

const (
	VoteUp   VoteDirection = "up"
	VoteDown VoteDirection = "down"
)

func (d VoteDirection) Valid() bool {
	return d == VoteUp || d == VoteDown
}

// Value is the direction's contribution to a total.
func (d VoteDirection) Value() int {
	switch d {
	case VoteUp:
		return 1
	case VoteDown:
		return -1
	}
	return 0
}

// VoteBook maps a vote target (post id, or CommentVoteKey) to user id → direction.
type VoteBook map[string]map[string]VoteDirection

func CommentVoteKey(postID, commentID string) string {
	return postID + "_" + commentID
}

// Tally sums the entries recorded for key.
func (b VoteBook) Tally(key string) int {
	total := 0
	for _, d := range b[key] {
		total += d.Value()
	}
	return total
}

// UserVote returns the direction userID cast on key, or nil.
func (b VoteBook) UserVote(key, userID string) *VoteDirection {
	if userID == "" {
		return nil
	}
	d, ok := b[key][userID]
	if !ok {
		return nil
	}
	return &d
}

// Toggle applies dir for userID on key. An empty dir clears the vote and so
// does repeating the current direction. It returns the direction now in effect.
func (b VoteBook) Toggle(key, userID string, dir VoteDirection) VoteDirection {
	entries := b[key]
	current, had := entries[userID]
	if dir == "" || (had && current == dir) {
		if had {
			delete(entries, userID)
			if len(entries) == 0 {
				delete(b, key)
			}
		}
		return ""
	}
	if entries == nil {
		entries = make(map[string]VoteDirection)
		b[key] = entries
	}
	entries[userID] = dir
	return dir
}
