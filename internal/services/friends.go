package services

import (
	"context"
	"time"

	"devsquare/internal/apperrors"
	"devsquare/internal/db"
	"devsquare/internal/models"
	"devsquare/internal/utils"

	"github.com/rs/zerolog"
)

// FriendService keeps exactly one Friendship record per pair of users.
type FriendService struct {
	friendships   *db.Collection[[]models.Friendship]
	users         *UserService
	notifications *NotificationService
	now           func() time.Time
	log           zerolog.Logger
}

func NewFriendService(cols *db.Collections, users *UserService, notifications *NotificationService, now func() time.Time, log zerolog.Logger) *FriendService {
	return &FriendService{
		friendships:   cols.Friendships,
		users:         users,
		notifications: notifications,
		now:           now,
		log:           log.With().Str("service", "friends").Logger(),
	}
}

func indexOfPair(all []models.Friendship, a, b string) int {
	for i := range all {
		if all[i].Between(a, b) {
			return i
		}
	}
	return -1
}

// Get returns the record between a and b regardless of argument order.
func (s *FriendService) Get(ctx context.Context, a, b string) (*models.Friendship, error) {
	all, err := s.friendships.Load(ctx)
	if err != nil {
		return nil, err
	}
	if i := indexOfPair(all, a, b); i >= 0 {
		return &all[i], nil
	}
	return nil, apperrors.NewResourceNotFoundError("no friendship between these users")
}

// SendRequest creates a pending request from fromID to toID.
func (s *FriendService) SendRequest(ctx context.Context, fromID, toID string) (*models.Friendship, error) {
	if fromID == toID {
		return nil, apperrors.NewValidationError("you cannot befriend yourself")
	}
	from, err := s.users.GetByID(ctx, fromID)
	if err != nil {
		return nil, err
	}
	if _, err := s.users.GetByID(ctx, toID); err != nil {
		return nil, err
	}

	now := s.now()
	f := models.Friendship{
		ID:        utils.GenerateID(),
		UserID:    fromID,
		FriendID:  toID,
		Status:    models.FriendshipPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err = s.friendships.Update(ctx, func(all *[]models.Friendship) error {
		if indexOfPair(*all, fromID, toID) >= 0 {
			return apperrors.NewConflictError("a friendship or block already exists between these users")
		}
		*all = append(*all, f)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if _, err := s.notifications.Notify(ctx, toID, models.NotificationFriendRequest, from.Summary(), models.NotificationPayload{}); err != nil {
		s.log.Error().Err(err).Msg("failed to send friend request notification")
	}
	return &f, nil
}

// Accept turns the pending request between the pair into a friendship.
func (s *FriendService) Accept(ctx context.Context, userID, friendID string) (*models.Friendship, error) {
	var accepted models.Friendship
	err := s.friendships.Update(ctx, func(all *[]models.Friendship) error {
		i := indexOfPair(*all, userID, friendID)
		if i < 0 || (*all)[i].Status != models.FriendshipPending {
			return apperrors.NewResourceNotFoundError("friend request not found")
		}
		(*all)[i].Status = models.FriendshipAccepted
		(*all)[i].UpdatedAt = s.now()
		accepted = (*all)[i]
		return nil
	})
	if err != nil {
		return nil, err
	}

	if actor, err := s.users.GetByID(ctx, userID); err == nil {
		requester := accepted.UserID
		if requester == userID {
			requester = accepted.FriendID
		}
		if _, err := s.notifications.Notify(ctx, requester, models.NotificationFriendAccepted, actor.Summary(), models.NotificationPayload{}); err != nil {
			s.log.Error().Err(err).Msg("failed to send friend accepted notification")
		}
	}
	return &accepted, nil
}

// Reject deletes the pending request between the pair.
func (s *FriendService) Reject(ctx context.Context, userID, friendID string) error {
	return s.removeWithStatus(ctx, userID, friendID, models.FriendshipPending, "friend request not found")
}

// Unfriend deletes an accepted friendship.
func (s *FriendService) Unfriend(ctx context.Context, userID, friendID string) error {
	return s.removeWithStatus(ctx, userID, friendID, models.FriendshipAccepted, "friendship not found")
}

// Unblock deletes the pair's record only if it is a block.
func (s *FriendService) Unblock(ctx context.Context, userID, friendID string) error {
	return s.removeWithStatus(ctx, userID, friendID, models.FriendshipBlocked, "user is not blocked")
}

func (s *FriendService) removeWithStatus(ctx context.Context, a, b string, status models.FriendshipStatus, notFound string) error {
	return s.friendships.Update(ctx, func(all *[]models.Friendship) error {
		i := indexOfPair(*all, a, b)
		if i < 0 || (*all)[i].Status != status {
			return apperrors.NewResourceNotFoundError(notFound)
		}
		*all = append((*all)[:i], (*all)[i+1:]...)
		return nil
	})
}

// Block upserts the pair's record to blocked, whatever it was before.
func (s *FriendService) Block(ctx context.Context, userID, friendID string) (*models.Friendship, error) {
	if userID == friendID {
		return nil, apperrors.NewValidationError("you cannot block yourself")
	}
	if _, err := s.users.GetByID(ctx, friendID); err != nil {
		return nil, err
	}
	var blocked models.Friendship
	now := s.now()
	err := s.friendships.Update(ctx, func(all *[]models.Friendship) error {
		if i := indexOfPair(*all, userID, friendID); i >= 0 {
			f := &(*all)[i]
			f.UserID, f.FriendID = userID, friendID
			f.Status = models.FriendshipBlocked
			f.UpdatedAt = now
			blocked = *f
			return nil
		}
		blocked = models.Friendship{
			ID:        utils.GenerateID(),
			UserID:    userID,
			FriendID:  friendID,
			Status:    models.FriendshipBlocked,
			CreatedAt: now,
			UpdatedAt: now,
		}
		*all = append(*all, blocked)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &blocked, nil
}

// ListFriends returns userID's accepted friendships.
func (s *FriendService) ListFriends(ctx context.Context, userID string) ([]models.Friendship, error) {
	return s.list(ctx, func(f models.Friendship) bool {
		return f.Status == models.FriendshipAccepted && f.Involves(userID)
	})
}

// ListPendingIncoming returns requests waiting for userID to answer.
func (s *FriendService) ListPendingIncoming(ctx context.Context, userID string) ([]models.Friendship, error) {
	return s.list(ctx, func(f models.Friendship) bool {
		return f.Status == models.FriendshipPending && f.FriendID == userID
	})
}

func (s *FriendService) list(ctx context.Context, keep func(models.Friendship) bool) ([]models.Friendship, error) {
	all, err := s.friendships.Load(ctx)
	if err != nil {
		return nil, err
	}
	out := []models.Friendship{}
	for _, f := range all {
		if keep(f) {
			out = append(out, f)
		}
	}
	return out, nil
}

func (s *FriendService) deleteForUser(ctx context.Context, userID string) error {
	return s.friendships.Update(ctx, func(all *[]models.Friendship) error {
		kept := (*all)[:0]
		for _, f := range *all {
			if !f.Involves(userID) {
				kept = append(kept, f)
			}
		}
		if len(kept) == len(*all) {
			return db.ErrSkipWrite
		}
		*all = kept
		return nil
	})
}
