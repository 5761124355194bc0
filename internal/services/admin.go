package services

import (
	"context"

	"devsquare/internal/db"
	"devsquare/internal/models"
)

// AdminService backs the admin dashboard. Callers must already be verified as admins.
type AdminService struct {
	posts    *db.Collection[[]models.Post]
	users    *UserService
	postSvc  *PostService
	sessions *SessionService
	accounts *AccountService
}

func NewAdminService(cols *db.Collections, users *UserService, posts *PostService, sessions *SessionService, accounts *AccountService) *AdminService {
	return &AdminService{
		posts:    cols.Posts,
		users:    users,
		postSvc:  posts,
		sessions: sessions,
		accounts: accounts,
	}
}

func (s *AdminService) Stats(ctx context.Context) (*models.AdminStats, error) {
	users, err := s.users.users.Load(ctx)
	if err != nil {
		return nil, err
	}
	posts, err := s.posts.Load(ctx)
	if err != nil {
		return nil, err
	}
	online, err := s.sessions.ActiveUsers(ctx)
	if err != nil {
		return nil, err
	}

	stats := &models.AdminStats{
		TotalUsers:  len(users),
		TotalPosts:  len(posts),
		OnlineUsers: online,
	}
	for i := range posts {
		stats.TotalComments += posts[i].CommentCount()
	}
	return stats, nil
}

func (s *AdminService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.users.List(ctx)
}

func (s *AdminService) ListPosts(ctx context.Context) ([]models.PostView, error) {
	posts, err := s.posts.Load(ctx)
	if err != nil {
		return nil, err
	}
	return s.postSvc.List(ctx, ListFilter{Sort: SortNewest, Limit: max(len(posts), 1)}, "")
}

// DeleteUser removes a non-admin user with the same cascade as self-service deletion.
func (s *AdminService) DeleteUser(ctx context.Context, id string) error {
	return s.accounts.Delete(ctx, id)
}

// DeletePost removes any post, with vote cleanup and author counter adjustment.
func (s *AdminService) DeletePost(ctx context.Context, id string) error {
	_, err := s.postSvc.remove(ctx, id)
	return err
}
