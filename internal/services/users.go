package services

import (
	"context"
	"sort"
	"strings"

	"devsquare/internal/apperrors"
	"devsquare/internal/db"
	"devsquare/internal/models"
	"devsquare/internal/utils"
)

type UserService struct {
	users *db.Collection[[]models.User]
}

func NewUserService(cols *db.Collections) *UserService {
	return &UserService{users: cols.Users}
}

func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	users, err := s.users.Load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].ID == id {
			return &users[i], nil
		}
	}
	return nil, apperrors.NewResourceNotFoundError("user not found")
}

// GetByUsername matches case-insensitively.
func (s *UserService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	users, err := s.users.Load(ctx)
	if err != nil {
		return nil, err
	}
	if u := findUsername(users, username); u != nil {
		return u, nil
	}
	return nil, apperrors.NewResourceNotFoundError("user not found")
}

func findUsername(users []models.User, username string) *models.User {
	name := utils.NormalizeUsername(username)
	for i := range users {
		if strings.ToLower(users[i].Username) == name {
			return &users[i]
		}
	}
	return nil
}

// List returns every user, most recently joined first.
func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	users, err := s.users.Load(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(users, func(i, j int) bool {
		return users[i].JoinedAt.After(users[j].JoinedAt)
	})
	return users, nil
}

type ProfileUpdate struct {
	DisplayName *string
	Bio         *string
	Avatar      *string
	TechStack   []string
}

func (s *UserService) UpdateProfile(ctx context.Context, id string, in ProfileUpdate) (*models.User, error) {
	if in.DisplayName != nil && strings.TrimSpace(*in.DisplayName) == "" {
		return nil, apperrors.NewValidationError("display name cannot be empty")
	}
	var updated models.User
	err := s.users.Update(ctx, func(users *[]models.User) error {
		for i := range *users {
			u := &(*users)[i]
			if u.ID != id {
				continue
			}
			if in.DisplayName != nil {
				u.DisplayName = strings.TrimSpace(*in.DisplayName)
			}
			if in.Bio != nil {
				u.Bio = *in.Bio
			}
			if in.Avatar != nil {
				u.Avatar = *in.Avatar
			}
			if in.TechStack != nil {
				u.TechStack = in.TechStack
			}
			updated = *u
			return nil
		}
		return apperrors.NewResourceNotFoundError("user not found")
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

const searchLimit = 20

// Search matches q against usernames and display names.
func (s *UserService) Search(ctx context.Context, q string) ([]models.User, error) {
	q = strings.ToLower(strings.TrimSpace(q))
	if len(q) < 2 {
		return nil, apperrors.NewValidationError("search query must be at least 2 characters")
	}
	users, err := s.users.Load(ctx)
	if err != nil {
		return nil, err
	}
	found := []models.User{}
	for _, u := range users {
		if strings.Contains(strings.ToLower(u.Username), q) || strings.Contains(strings.ToLower(u.DisplayName), q) {
			found = append(found, u)
			if len(found) == searchLimit {
				break
			}
		}
	}
	return found, nil
}

// adjustCounters shifts the post and comment counters, clamping at zero.
// Users that no longer exist are ignored.
func (s *UserService) adjustCounters(ctx context.Context, id string, posts, comments int) error {
	return s.users.Update(ctx, func(users *[]models.User) error {
		for i := range *users {
			u := &(*users)[i]
			if u.ID != id {
				continue
			}
			u.Posts = max(0, u.Posts+posts)
			u.Comments = max(0, u.Comments+comments)
			return nil
		}
		return db.ErrSkipWrite
	})
}

func (s *UserService) remove(ctx context.Context, id string) error {
	return s.users.Update(ctx, func(users *[]models.User) error {
		for i := range *users {
			if (*users)[i].ID == id {
				*users = append((*users)[:i], (*users)[i+1:]...)
				return nil
			}
		}
		return apperrors.NewResourceNotFoundError("user not found")
	})
}

// index maps id to user for snapshot lookups.
func (s *UserService) index(ctx context.Context) (map[string]models.User, error) {
	users, err := s.users.Load(ctx)
	if err != nil {
		return nil, err
	}
	m := make(map[string]models.User, len(users))
	for _, u := range users {
		m[u.ID] = u
	}
	return m, nil
}
