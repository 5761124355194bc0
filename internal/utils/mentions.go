package utils

import (
	"regexp"
)

var mentionPattern = regexp.MustCompile(`@(\w{1,30})`)

// ParseMentions returns the distinct usernames referenced as @name, in order of appearance.
func ParseMentions(text string) []string {
	matches := mentionPattern.FindAllStringSubmatch(text, -1)
	seen := make(map[string]bool, len(matches))
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		name := NormalizeUsername(m[1])
		if seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}
