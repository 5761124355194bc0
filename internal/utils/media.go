package utils

import (
	"net/url"
	"regexp"
	"strings"

	"devsquare/internal/models"
)

type mediaProvider struct {
	name    string
	pattern *regexp.Regexp
	idGroup int
}

var mediaProviders = []mediaProvider{
	{"youtube", regexp.MustCompile(`(?:https?://)?(?:www\.)?(?:youtube\.com/(?:watch\?v=|embed/|v/)|youtu\.be/)([a-zA-Z0-9_-]{11})`), 1},
	{"tiktok", regexp.MustCompile(`(?:https?://)?(?:www\.)?tiktok\.com/@[\w.-]+/video/(\d+)`), 1},
	{"instagram", regexp.MustCompile(`(?:https?://)?(?:www\.)?instagram\.com/p/([a-zA-Z0-9_-]+)(?:/\?\S*)?`), 1},
	{"twitter", regexp.MustCompile(`(?:https?://)?(?:www\.)?(?:twitter|x)\.com/\w+/status/(\d+)`), 1},
	{"vimeo", regexp.MustCompile(`(?:https?://)?(?:www\.)?vimeo\.com/(\d+)`), 1},
	{"spotify", regexp.MustCompile(`(?:https?://)?(?:open\.)?spotify\.com/(track|playlist|album)/([a-zA-Z0-9]+)`), 2},
}

// ParseMediaLinks detects embeddable links, deduplicated by (provider, id).
func ParseMediaLinks(content string) []models.MediaEmbed {
	embeds := []models.MediaEmbed{}
	seen := map[string]bool{}
	for _, p := range mediaProviders {
		for _, m := range p.pattern.FindAllStringSubmatch(content, -1) {
			key := p.name + ":" + m[p.idGroup]
			if seen[key] {
				continue
			}
			seen[key] = true
			embeds = append(embeds, models.MediaEmbed{Type: p.name, URL: m[0], ID: m[p.idGroup]})
		}
	}
	return embeds
}

// EmbedURL returns the player URL for an embed.
func EmbedURL(e models.MediaEmbed) string {
	switch e.Type {
	case "youtube":
		return "https://www.youtube.com/embed/" + e.ID
	case "tiktok":
		return "https://www.tiktok.com/embed/v2/" + e.ID
	case "instagram":
		return "https://www.instagram.com/p/" + e.ID + "/embed"
	case "twitter":
		link := e.URL
		if !strings.HasPrefix(link, "http") {
			link = "https://" + link
		}
		return "https://twitframe.com/show?url=" + url.QueryEscape(link)
	case "vimeo":
		return "https://player.vimeo.com/video/" + e.ID
	case "spotify":
		for _, p := range mediaProviders {
			if p.name != "spotify" {
				continue
			}
			if m := p.pattern.FindStringSubmatch(e.URL); m != nil {
				return "https://open.spotify.com/embed/" + m[1] + "/" + m[2]
			}
		}
	}
	return e.URL
}

// StripMediaLinks removes every embeddable link from content.
func StripMediaLinks(content string) string {
	for _, p := range mediaProviders {
		content = p.pattern.ReplaceAllString(content, "")
	}
	return strings.TrimSpace(content)
}
