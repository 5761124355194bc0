package models

import (
	"time"
)

type BadgeLevel string

const (
	BadgeBronze   BadgeLevel = "bronze"
	BadgeSilver   BadgeLevel = "silver"
	BadgeGold     BadgeLevel = "gold"
	BadgePlatinum BadgeLevel = "platinum"
)

type Badge struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Icon        string     `json:"icon"`
	Description string     `json:"description"`
	AwardedAt   time.Time  `json:"awardedAt"`
	Level       BadgeLevel `json:"level"`
}

type User struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"` // stored lower-cased, unique
	DisplayName string    `json:"displayName"`
	Avatar      string    `json:"avatar,omitempty"`
	Bio         string    `json:"bio,omitempty"`
	Reputation  int       `json:"reputation"`
	Badges      []Badge   `json:"badges"`
	TechStack   []string  `json:"techStack"`
	JoinedAt    time.Time `json:"joinedAt"`
	Posts       int       `json:"posts"`    // authored, non-deleted
	Comments    int       `json:"comments"` // authored, non-deleted
	IsAdmin     bool      `json:"isAdmin,omitempty"`
}

// UserSummary is the small actor snapshot carried by notifications and mentions.
type UserSummary struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Avatar      string `json:"avatar,omitempty"`
}

func (u User) Summary() UserSummary {
	return UserSummary{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		Avatar:      u.Avatar,
	}
}

// Credential lives in its own collection, keyed by user id.
type Credential struct {
	UserID    string    `json:"userId"`
	Hash      string    `json:"hash"` // salt is embedded in the hash
	UpdatedAt time.Time `json:"updatedAt"`
}

type Session struct {
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the session is no longer valid at now.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
