package models

import (
	"time"
)

type PostCategory string

const (
	CategoryDiscussion PostCategory = "discussion"
	CategoryQuestion   PostCategory = "question"
	CategoryShowcase   PostCategory = "showcase"
	CategoryTutorial   PostCategory = "tutorial"
	CategoryHelp       PostCategory = "help"
	CategoryHiring     PostCategory = "hiring"
	CategoryOpenSource PostCategory = "opensource"
)

var Categories = []PostCategory{
	CategoryDiscussion,
	CategoryQuestion,
	CategoryShowcase,
	CategoryTutorial,
	CategoryHelp,
	CategoryHiring,
	CategoryOpenSource,
}

func (c PostCategory) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

type CodeSnippet struct {
	Language string `json:"language"`
	Code     string `json:"code"`
}

type MediaEmbed struct {
	Type string `json:"type"` // provider: youtube, tiktok, instagram, twitter, vimeo, spotify
	URL  string `json:"url"`
	ID   string `json:"id"`
}

// Post embeds a snapshot of its author taken at creation time.
// Vote totals are never stored here; see VoteBook.
type Post struct {
	ID          string       `json:"id"`
	Author      User         `json:"author"`
	Title       string       `json:"title"`
	Content     string       `json:"content"`
	CodeSnippet *CodeSnippet `json:"codeSnippet,omitempty"`
	MediaEmbeds []MediaEmbed `json:"mediaEmbeds,omitempty"`
	Tags        []string     `json:"tags"`
	Comments    []Comment    `json:"comments"`
	Category    PostCategory `json:"category"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// CommentCount counts every comment in the tree, replies included.
func (p *Post) CommentCount() int {
	n := 0
	stack := make([][]Comment, 0, 8)
	stack = append(stack, p.Comments)
	for len(stack) > 0 {
		level := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n += len(level)
		for i := range level {
			if len(level[i].Replies) > 0 {
				stack = append(stack, level[i].Replies)
			}
		}
	}
	return n
}

// PostView is a post as delivered to a viewer, with derived fields merged in.
type PostView struct {
	Post
	Votes       int            `json:"votes"`
	UserVote    *VoteDirection `json:"userVote"`
	ContentHTML string         `json:"contentHtml"`
	Comments    []CommentView  `json:"comments"`
}
