package utils

import (
	"net/url"
	"regexp"
	"strings"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// ValidUsername checks the length and character rules for usernames.
func ValidUsername(username string) bool {
	return len(username) >= 3 && usernamePattern.MatchString(username)
}

// NormalizeUsername is the stored and compared form of a username.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// DefaultAvatar builds a generated avatar URL from the display name.
func DefaultAvatar(displayName string) string {
	return "https://ui-avatars.com/api/?name=" + url.QueryEscape(displayName) + "&background=random"
}
