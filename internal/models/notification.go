package models

import (
	"time"
)

type NotificationType string

const (
	NotificationMention        NotificationType = "mention"
	NotificationFriendRequest  NotificationType = "friend_request"
	NotificationFriendAccepted NotificationType = "friend_accepted"
	NotificationLike           NotificationType = "like"
	NotificationComment        NotificationType = "comment"
	NotificationReply          NotificationType = "reply"
	NotificationVoteUp         NotificationType = "vote_up"
	NotificationVoteDown       NotificationType = "vote_down"
)

type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"userId"` // recipient
	Type      NotificationType `json:"type"`
	Actor     UserSummary      `json:"user"`
	PostID    string           `json:"postId,omitempty"`
	PostTitle string           `json:"postTitle,omitempty"`
	CommentID string           `json:"commentId,omitempty"`
	Message   string           `json:"message,omitempty"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"createdAt"`
}

// NotificationPayload carries the optional references of a notification.
type NotificationPayload struct {
	PostID    string
	PostTitle string
	CommentID string
	Message   string
}

// Mention is an audit record of an @username reference.
type Mention struct {
	ID              string      `json:"id"`
	MentionedUserID string      `json:"mentionedUserId"`
	MentionedBy     UserSummary `json:"mentionedBy"`
	PostID          string      `json:"postId,omitempty"`
	CommentID       string      `json:"commentId,omitempty"`
	CreatedAt       time.Time   `json:"createdAt"`
}

type AdminStats struct {
	TotalUsers    int `json:"totalUsers"`
	TotalPosts    int `json:"totalPosts"`
	TotalComments int `json:"totalComments"`
	OnlineUsers   int `json:"onlineUsers"` // users holding an unexpired session
}
