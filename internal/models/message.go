package models

import (
	"time"
)

type Message struct {
	ID        string    `json:"id"`
	SenderID  string    `json:"senderId"`
	Sender    *User     `json:"sender,omitempty"` // attached on delivery, not persisted
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Read      bool      `json:"read"`
}

// DirectMessage is the conversation between exactly two users.
type DirectMessage struct {
	ID           string    `json:"id"`
	Participants []string  `json:"participants"`
	Messages     []Message `json:"messages"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (d *DirectMessage) HasParticipant(userID string) bool {
	for _, p := range d.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// Other returns the participant that is not userID.
func (d *DirectMessage) Other(userID string) string {
	for _, p := range d.Participants {
		if p != userID {
			return p
		}
	}
	return ""
}

type ConversationSummary struct {
	ID          string    `json:"id"`
	User        User      `json:"user"`
	LastMessage *Message  `json:"lastMessage"`
	UnreadCount int       `json:"unreadCount"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Group struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Avatar      string    `json:"avatar,omitempty"`
	AdminID     string    `json:"adminId"`
	Members     []string  `json:"members"`
	Messages    []Message `json:"messages"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (g *Group) IsMember(userID string) bool {
	for _, m := range g.Members {
		if m == userID {
			return true
		}
	}
	return false
}
