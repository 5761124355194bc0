package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"devsquare/internal/apperrors"
	"devsquare/internal/db"
	"devsquare/internal/models"
	"devsquare/internal/utils"

	"github.com/rs/zerolog"
)

type SortMode string

const (
	SortNewest  SortMode = "newest"
	SortOldest  SortMode = "oldest"
	SortPopular SortMode = "popular"

	DefaultListLimit = 50
)

type ListFilter struct {
	Category string // "" or "all" disables the filter
	Sort     SortMode
	Limit    int
}

type CreatePostInput struct {
	Title       string
	Content     string
	Category    models.PostCategory
	Tags        []string
	CodeSnippet *models.CodeSnippet
	MediaEmbeds []models.MediaEmbed // nil means detect from content
}

type CommentInput struct {
	Content     string
	CodeSnippet *models.CodeSnippet
	ParentID    string
}

// PostService owns posts, their comment trees and the vote book.
type PostService struct {
	posts         *db.Collection[[]models.Post]
	votes         *db.Collection[models.VoteBook]
	mentions      *db.Collection[[]models.Mention]
	users         *UserService
	notifications *NotificationService
	reputation    *ReputationService
	now           func() time.Time
	log           zerolog.Logger
}

func NewPostService(cols *db.Collections, users *UserService, notifications *NotificationService, reputation *ReputationService, now func() time.Time, log zerolog.Logger) *PostService {
	return &PostService{
		posts:         cols.Posts,
		votes:         cols.Votes,
		mentions:      cols.Mentions,
		users:         users,
		notifications: notifications,
		reputation:    reputation,
		now:           now,
		log:           log.With().Str("service", "posts").Logger(),
	}
}

func cleanTags(tags []string) []string {
	out := []string{}
	seen := map[string]bool{}
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[strings.ToLower(t)] {
			continue
		}
		seen[strings.ToLower(t)] = true
		out = append(out, t)
	}
	return out
}

func cleanSnippet(s *models.CodeSnippet) *models.CodeSnippet {
	if s == nil || strings.TrimSpace(s.Code) == "" {
		return nil
	}
	return s
}

// Create stores a new post authored by authorID.
func (s *PostService) Create(ctx context.Context, authorID string, in CreatePostInput) (*models.PostView, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" || strings.TrimSpace(in.Content) == "" || in.Category == "" {
		return nil, apperrors.NewValidationError("title, content and category are required")
	}
	if !in.Category.Valid() {
		return nil, apperrors.NewValidationError("unknown category " + string(in.Category))
	}

	author, err := s.users.GetByID(ctx, authorID)
	if err != nil {
		return nil, err
	}

	embeds := in.MediaEmbeds
	if embeds == nil {
		embeds = utils.ParseMediaLinks(in.Content)
	}
	now := s.now()
	post := models.Post{
		ID:          utils.GenerateID(),
		Author:      *author,
		Title:       in.Title,
		Content:     in.Content,
		CodeSnippet: cleanSnippet(in.CodeSnippet),
		MediaEmbeds: embeds,
		Tags:        cleanTags(in.Tags),
		Comments:    []models.Comment{},
		Category:    in.Category,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = s.posts.Update(ctx, func(posts *[]models.Post) error {
		*posts = append(*posts, post)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := s.users.adjustCounters(ctx, author.ID, 1, 0); err != nil {
		return nil, err
	}

	s.fanOutMentions(ctx, *author, post.Content, post, "")

	view := s.view(post, models.VoteBook{}, authorID)
	return &view, nil
}

// fanOutMentions records a Mention and a mention notification for every
// existing user referenced in text, other than the author.
func (s *PostService) fanOutMentions(ctx context.Context, author models.User, text string, post models.Post, commentID string) {
	names := utils.ParseMentions(text)
	if len(names) == 0 {
		return
	}
	users, err := s.users.users.Load(ctx)
	if err != nil {
		s.log.Error().Err(err).Str("post_id", post.ID).Msg("mention lookup failed")
		return
	}

	now := s.now()
	var records []models.Mention
	for _, name := range names {
		u := findUsername(users, name)
		if u == nil || u.ID == author.ID {
			continue
		}
		records = append(records, models.Mention{
			ID:              utils.GenerateID(),
			MentionedUserID: u.ID,
			MentionedBy:     author.Summary(),
			PostID:          post.ID,
			CommentID:       commentID,
			CreatedAt:       now,
		})
	}
	if len(records) == 0 {
		return
	}

	err = s.mentions.Update(ctx, func(all *[]models.Mention) error {
		*all = append(*all, records...)
		return nil
	})
	if err != nil {
		s.log.Error().Err(err).Str("post_id", post.ID).Msg("failed to record mentions")
		return
	}
	for _, m := range records {
		_, err := s.notifications.Notify(ctx, m.MentionedUserID, models.NotificationMention, author.Summary(), models.NotificationPayload{
			PostID:    post.ID,
			PostTitle: post.Title,
			CommentID: commentID,
		})
		if err != nil {
			s.log.Error().Err(err).Str("user_id", m.MentionedUserID).Msg("failed to send mention notification")
		}
	}
}

// List filters, sorts and truncates posts.
func (s *PostService) List(ctx context.Context, filter ListFilter, viewerID string) ([]models.PostView, error) {
	if filter.Sort == "" {
		filter.Sort = SortNewest
	}
	switch filter.Sort {
	case SortNewest, SortOldest, SortPopular:
	default:
		return nil, apperrors.NewValidationError("sort must be one of newest, oldest, popular")
	}
	if filter.Limit <= 0 {
		filter.Limit = DefaultListLimit
	}

	posts, err := s.posts.Load(ctx)
	if err != nil {
		return nil, err
	}
	book, err := s.votes.Load(ctx)
	if err != nil {
		return nil, err
	}

	selected := make([]models.Post, 0, len(posts))
	for _, p := range posts {
		if filter.Category == "" || filter.Category == "all" || string(p.Category) == filter.Category {
			selected = append(selected, p)
		}
	}

	sortPosts(selected, filter.Sort, book)
	if len(selected) > filter.Limit {
		selected = selected[:filter.Limit]
	}

	views := make([]models.PostView, 0, len(selected))
	for _, p := range selected {
		views = append(views, s.view(p, book, viewerID))
	}
	return views, nil
}

func sortPosts(posts []models.Post, mode SortMode, book models.VoteBook) {
	switch mode {
	case SortOldest:
		sort.SliceStable(posts, func(i, j int) bool {
			return posts[i].CreatedAt.Before(posts[j].CreatedAt)
		})
	case SortPopular:
		totals := make(map[string]int, len(posts))
		for _, p := range posts {
			totals[p.ID] = book.Tally(p.ID)
		}
		sort.SliceStable(posts, func(i, j int) bool {
			if totals[posts[i].ID] != totals[posts[j].ID] {
				return totals[posts[i].ID] > totals[posts[j].ID]
			}
			return posts[i].CreatedAt.After(posts[j].CreatedAt)
		})
	default:
		sort.SliceStable(posts, func(i, j int) bool {
			return posts[i].CreatedAt.After(posts[j].CreatedAt)
		})
	}
}

func (s *PostService) find(ctx context.Context, id string) (*models.Post, error) {
	posts, err := s.posts.Load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range posts {
		if posts[i].ID == id {
			return &posts[i], nil
		}
	}
	return nil, apperrors.NewResourceNotFoundError("post not found")
}

// Get returns the post with its vote total computed from the vote book.
func (s *PostService) Get(ctx context.Context, id, viewerID string) (*models.PostView, error) {
	post, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	book, err := s.votes.Load(ctx)
	if err != nil {
		return nil, err
	}
	view := s.view(*post, book, viewerID)
	return &view, nil
}

// ListByAuthor returns authorID's posts, newest first.
func (s *PostService) ListByAuthor(ctx context.Context, authorID, viewerID string) ([]models.PostView, error) {
	posts, err := s.posts.Load(ctx)
	if err != nil {
		return nil, err
	}
	book, err := s.votes.Load(ctx)
	if err != nil {
		return nil, err
	}
	mine := []models.Post{}
	for _, p := range posts {
		if p.Author.ID == authorID {
			mine = append(mine, p)
		}
	}
	sortPosts(mine, SortNewest, book)
	views := make([]models.PostView, 0, len(mine))
	for _, p := range mine {
		views = append(views, s.view(p, book, viewerID))
	}
	return views, nil
}

// castVote toggles userID's vote on key and returns the directions before and after.
func (s *PostService) castVote(ctx context.Context, key, userID string, dir models.VoteDirection) (models.VoteDirection, models.VoteDirection, error) {
	var before, after models.VoteDirection
	err := s.votes.Update(ctx, func(book *models.VoteBook) error {
		before = (*book)[key][userID]
		after = book.Toggle(key, userID, dir)
		if before == after {
			return db.ErrSkipWrite
		}
		return nil
	})
	return before, after, err
}

func (s *PostService) afterVote(ctx context.Context, voter, authorID string, before, after models.VoteDirection, payload models.NotificationPayload) {
	if authorID == voter {
		return
	}
	if err := s.reputation.Apply(ctx, authorID, voteDelta(before, after)); err != nil {
		s.log.Error().Err(err).Str("user_id", authorID).Msg("failed to update reputation")
	}
	if after == "" || after == before {
		return
	}
	actor, err := s.users.GetByID(ctx, voter)
	if err != nil {
		return
	}
	typ := models.NotificationVoteUp
	if after == models.VoteDown {
		typ = models.NotificationVoteDown
	}
	if _, err := s.notifications.Notify(ctx, authorID, typ, actor.Summary(), payload); err != nil {
		s.log.Error().Err(err).Str("user_id", authorID).Msg("failed to send vote notification")
	}
}

func validDirection(dir models.VoteDirection) error {
	if dir != "" && !dir.Valid() {
		return apperrors.NewValidationError("vote must be up, down or null")
	}
	return nil
}

// Vote applies toggle semantics: repeating a direction or passing "" clears
// the vote, the opposite direction flips it.
func (s *PostService) Vote(ctx context.Context, postID, userID string, dir models.VoteDirection) (*models.PostView, error) {
	if err := validDirection(dir); err != nil {
		return nil, err
	}
	post, err := s.find(ctx, postID)
	if err != nil {
		return nil, err
	}
	before, after, err := s.castVote(ctx, postID, userID, dir)
	if err != nil {
		return nil, err
	}
	s.afterVote(ctx, userID, post.Author.ID, before, after, models.NotificationPayload{PostID: post.ID, PostTitle: post.Title})
	return s.Get(ctx, postID, userID)
}

// VoteComment applies the same toggle semantics to a comment.
func (s *PostService) VoteComment(ctx context.Context, postID, commentID, userID string, dir models.VoteDirection) (*models.PostView, error) {
	if err := validDirection(dir); err != nil {
		return nil, err
	}
	post, err := s.find(ctx, postID)
	if err != nil {
		return nil, err
	}
	comment := models.FindComment(post.Comments, commentID)
	if comment == nil {
		return nil, apperrors.NewResourceNotFoundError("comment not found")
	}
	before, after, err := s.castVote(ctx, models.CommentVoteKey(postID, commentID), userID, dir)
	if err != nil {
		return nil, err
	}
	s.afterVote(ctx, userID, comment.Author.ID, before, after, models.NotificationPayload{PostID: post.ID, PostTitle: post.Title, CommentID: commentID})
	return s.Get(ctx, postID, userID)
}

// AddComment appends a top-level comment, or a reply under ParentID anywhere in the tree.
func (s *PostService) AddComment(ctx context.Context, postID, authorID string, in CommentInput) (*models.PostView, error) {
	if strings.TrimSpace(in.Content) == "" {
		return nil, apperrors.NewValidationError("content is required")
	}
	author, err := s.users.GetByID(ctx, authorID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	comment := models.Comment{
		ID:          utils.GenerateID(),
		Author:      *author,
		Content:     in.Content,
		CodeSnippet: cleanSnippet(in.CodeSnippet),
		Replies:     []models.Comment{},
		CreatedAt:   now,
		ParentID:    in.ParentID,
	}

	var (
		post         models.Post
		parentAuthor string
	)
	err = s.posts.Update(ctx, func(posts *[]models.Post) error {
		for i := range *posts {
			p := &(*posts)[i]
			if p.ID != postID {
				continue
			}
			if in.ParentID != "" {
				parent := models.FindComment(p.Comments, in.ParentID)
				if parent == nil {
					return apperrors.NewResourceNotFoundError("parent comment not found")
				}
				parentAuthor = parent.Author.ID
				models.InsertReply(p.Comments, in.ParentID, comment)
			} else {
				p.Comments = append(p.Comments, comment)
			}
			p.UpdatedAt = now
			post = *p
			return nil
		}
		return apperrors.NewResourceNotFoundError("post not found")
	})
	if err != nil {
		return nil, err
	}
	if err := s.users.adjustCounters(ctx, author.ID, 0, 1); err != nil {
		return nil, err
	}

	payload := models.NotificationPayload{PostID: post.ID, PostTitle: post.Title, CommentID: comment.ID}
	if parentAuthor != "" && parentAuthor != author.ID {
		if _, err := s.notifications.Notify(ctx, parentAuthor, models.NotificationReply, author.Summary(), payload); err != nil {
			s.log.Error().Err(err).Msg("failed to send reply notification")
		}
	}
	if post.Author.ID != author.ID && post.Author.ID != parentAuthor {
		if _, err := s.notifications.Notify(ctx, post.Author.ID, models.NotificationComment, author.Summary(), payload); err != nil {
			s.log.Error().Err(err).Msg("failed to send comment notification")
		}
	}
	s.fanOutMentions(ctx, *author, comment.Content, post, comment.ID)

	return s.Get(ctx, postID, authorID)
}

// Delete removes a post on behalf of its author.
func (s *PostService) Delete(ctx context.Context, postID, requesterID string) error {
	post, err := s.find(ctx, postID)
	if err != nil {
		return err
	}
	if post.Author.ID != requesterID {
		return apperrors.NewForbiddenError("only the author can delete this post")
	}
	_, err = s.remove(ctx, postID)
	return err
}

// remove deletes the post and its votes and adjusts the author's counters.
func (s *PostService) remove(ctx context.Context, postID string) (*models.Post, error) {
	var removed models.Post
	err := s.posts.Update(ctx, func(posts *[]models.Post) error {
		for i := range *posts {
			if (*posts)[i].ID == postID {
				removed = (*posts)[i]
				*posts = append((*posts)[:i], (*posts)[i+1:]...)
				return nil
			}
		}
		return apperrors.NewResourceNotFoundError("post not found")
	})
	if err != nil {
		return nil, err
	}
	if err := s.dropVotes(ctx, map[string]bool{postID: true}); err != nil {
		return nil, err
	}
	if err := s.users.adjustCounters(ctx, removed.Author.ID, -1, -removed.CommentCount()); err != nil {
		return nil, err
	}
	s.log.Info().Str("post_id", postID).Str("author_id", removed.Author.ID).Msg("post deleted")
	return &removed, nil
}

// dropVotes removes post and comment vote entries for every post id in ids.
func (s *PostService) dropVotes(ctx context.Context, ids map[string]bool) error {
	return s.votes.Update(ctx, func(book *models.VoteBook) error {
		removed := 0
		for key := range *book {
			if ids[key] || ids[postIDFromKey(key, ids)] {
				delete(*book, key)
				removed++
			}
		}
		if removed == 0 {
			return db.ErrSkipWrite
		}
		return nil
	})
}

// postIDFromKey returns the post id a comment vote key belongs to, if it is in ids.
func postIDFromKey(key string, ids map[string]bool) string {
	for id := range ids {
		if strings.HasPrefix(key, id+"_") {
			return id
		}
	}
	return ""
}

// deleteByAuthor removes every post by authorID along with its votes.
func (s *PostService) deleteByAuthor(ctx context.Context, authorID string) (int, error) {
	ids := map[string]bool{}
	err := s.posts.Update(ctx, func(posts *[]models.Post) error {
		kept := (*posts)[:0]
		for _, p := range *posts {
			if p.Author.ID == authorID {
				ids[p.ID] = true
				continue
			}
			kept = append(kept, p)
		}
		if len(ids) == 0 {
			return db.ErrSkipWrite
		}
		*posts = kept
		return nil
	})
	if err != nil || len(ids) == 0 {
		return 0, err
	}
	return len(ids), s.dropVotes(ctx, ids)
}

// dropVotesBy removes every vote cast by userID.
func (s *PostService) dropVotesBy(ctx context.Context, userID string) error {
	return s.votes.Update(ctx, func(book *models.VoteBook) error {
		removed := 0
		for key, entries := range *book {
			if _, ok := entries[userID]; ok {
				delete(entries, userID)
				removed++
				if len(entries) == 0 {
					delete(*book, key)
				}
			}
		}
		if removed == 0 {
			return db.ErrSkipWrite
		}
		return nil
	})
}

func (s *PostService) view(p models.Post, book models.VoteBook, viewerID string) models.PostView {
	if p.Tags == nil {
		p.Tags = []string{}
	}
	return models.PostView{
		Post:        p,
		Votes:       book.Tally(p.ID),
		UserVote:    book.UserVote(p.ID, viewerID),
		ContentHTML: utils.RenderMarkdown(p.Content),
		Comments:    commentViews(p.ID, p.Comments, book, viewerID),
	}
}

func commentViews(postID string, comments []models.Comment, book models.VoteBook, viewerID string) []models.CommentView {
	views := make([]models.CommentView, 0, len(comments))
	for _, c := range comments {
		key := models.CommentVoteKey(postID, c.ID)
		views = append(views, models.CommentView{
			Comment:     c,
			Votes:       book.Tally(key),
			UserVote:    book.UserVote(key, viewerID),
			ContentHTML: utils.RenderMarkdown(c.Content),
			Replies:     commentViews(postID, c.Replies, book, viewerID),
		})
	}
	return views
}
