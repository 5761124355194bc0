package services

import (
	"context"

	"devsquare/internal/apperrors"

	"github.com/rs/zerolog"
)

// AccountService removes a user and everything that belongs to them. Both
// self-service deletion and admin deletion go through Delete.
type AccountService struct {
	users         *UserService
	posts         *PostService
	sessions      *SessionService
	auth          *AuthService
	friends       *FriendService
	notifications *NotificationService
	log           zerolog.Logger
}

func NewAccountService(users *UserService, posts *PostService, sessions *SessionService, auth *AuthService, friends *FriendService, notifications *NotificationService, log zerolog.Logger) *AccountService {
	return &AccountService{
		users:         users,
		posts:         posts,
		sessions:      sessions,
		auth:          auth,
		friends:       friends,
		notifications: notifications,
		log:           log.With().Str("service", "accounts").Logger(),
	}
}

// Delete removes the user's posts (with their votes), the votes they cast,
// their friendships, notifications, sessions, credential and finally the
// user record. Admin accounts cannot be deleted.
func (s *AccountService) Delete(ctx context.Context, userID string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.IsAdmin {
		return apperrors.NewForbiddenError("admin accounts cannot be deleted")
	}

	removedPosts, err := s.posts.deleteByAuthor(ctx, userID)
	if err != nil {
		return err
	}
	steps := []func(context.Context, string) error{
		s.posts.dropVotesBy,
		s.friends.deleteForUser,
		s.notifications.deleteForUser,
		s.sessions.DeleteAllForUser,
		s.auth.deleteCredential,
		s.users.remove,
	}
	for _, step := range steps {
		if err := step(ctx, userID); err != nil {
			return err
		}
	}

	s.log.Info().Str("user_id", userID).Int("posts_removed", removedPosts).Msg("account deleted")
	return nil
}
