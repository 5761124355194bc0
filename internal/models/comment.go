package models

import (
	"time"
)

type Comment struct {
	ID          string       `json:"id"`
	Author      User         `json:"author"`
	Content     string       `json:"content"`
	CodeSnippet *CodeSnippet `json:"codeSnippet,omitempty"`
	Replies     []Comment    `json:"replies"`
	CreatedAt   time.Time    `json:"createdAt"`
	ParentID    string       `json:"parentId,omitempty"`
}

// InsertReply appends reply under the comment whose id is parentID, searching
// the tree depth-first. It reports whether the parent was found.
func InsertReply(comments []Comment, parentID string, reply Comment) bool {
	type frame struct {
		list *[]Comment
		idx  int
	}
	stack := []frame{{list: &comments}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.idx >= len(*top.list) {
			stack = stack[:len(stack)-1]
			continue
		}
		c := &(*top.list)[top.idx]
		top.idx++
		if c.ID == parentID {
			c.Replies = append(c.Replies, reply)
			return true
		}
		if len(c.Replies) > 0 {
			stack = append(stack, frame{list: &c.Replies})
		}
	}
	return false
}

// FindComment returns the comment with id anywhere in the tree.
func FindComment(comments []Comment, id string) *Comment {
	stack := []*[]Comment{&comments}
	for len(stack) > 0 {
		list := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for i := range *list {
			c := &(*list)[i]
			if c.ID == id {
				return c
			}
			if len(c.Replies) > 0 {
				stack = append(stack, &c.Replies)
			}
		}
	}
	return nil
}

type CommentView struct {
	Comment
	Votes       int            `json:"votes"`
	UserVote    *VoteDirection `json:"userVote"`
	ContentHTML string         `json:"contentHtml"`
	Replies     []CommentView  `json:"replies"`
}
