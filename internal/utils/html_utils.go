package utils

import (
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// EnhanceHTMLContent hardens image tags and turns paragraphs that consist of a
// single embeddable link into a player iframe.
func EnhanceHTMLContent(htmlStr string) string {
	if htmlStr == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	if err != nil {
		return htmlStr
	}

	doc.Find("img").Each(func(i int, s *goquery.Selection) {
		s.SetAttr("referrerpolicy", "no-referrer")
		s.SetAttr("loading", "lazy")
	})

	doc.Find("p").Each(func(i int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if !strings.HasPrefix(text, "http") || strings.ContainsAny(text, " \n\t") {
			return
		}
		embeds := ParseMediaLinks(text)
		if len(embeds) != 1 || embeds[0].URL != text {
			return
		}
		s.ReplaceWithHtml(`<div class="embed embed-` + embeds[0].Type + `"><iframe src="` +
			html.EscapeString(EmbedURL(embeds[0])) +
			`" frameborder="0" allowfullscreen loading="lazy" allow="accelerometer; clipboard-write; encrypted-media; gyroscope; picture-in-picture"></iframe></div>`)
	})

	out, _ := doc.Find("body").Html()
	if out == "" {
		out, _ = doc.Html()
	}
	return out
}
