package services

import (
	"context"
	"sort"
	"time"

	"devsquare/internal/apperrors"
	"devsquare/internal/db"
	"devsquare/internal/models"
	"devsquare/internal/utils"
)

type NotificationService struct {
	notifications *db.Collection[[]models.Notification]
	now           func() time.Time
}

func NewNotificationService(cols *db.Collections, now func() time.Time) *NotificationService {
	return &NotificationService{notifications: cols.Notifications, now: now}
}

// Notify appends a notification for userID.
func (s *NotificationService) Notify(ctx context.Context, userID string, typ models.NotificationType, actor models.UserSummary, payload models.NotificationPayload) (*models.Notification, error) {
	n := models.Notification{
		ID:        utils.GenerateID(),
		UserID:    userID,
		Type:      typ,
		Actor:     actor,
		PostID:    payload.PostID,
		PostTitle: payload.PostTitle,
		CommentID: payload.CommentID,
		Message:   payload.Message,
		CreatedAt: s.now(),
	}
	err := s.notifications.Update(ctx, func(all *[]models.Notification) error {
		*all = append(*all, n)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// ListFor returns userID's notifications, newest first.
func (s *NotificationService) ListFor(ctx context.Context, userID string) ([]models.Notification, error) {
	all, err := s.notifications.Load(ctx)
	if err != nil {
		return nil, err
	}
	mine := []models.Notification{}
	for _, n := range all {
		if n.UserID == userID {
			mine = append(mine, n)
		}
	}
	sort.SliceStable(mine, func(i, j int) bool {
		return mine[i].CreatedAt.After(mine[j].CreatedAt)
	})
	return mine, nil
}

// MarkRead marks one of userID's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, userID, id string) error {
	return s.notifications.Update(ctx, func(all *[]models.Notification) error {
		for i := range *all {
			n := &(*all)[i]
			if n.ID != id || n.UserID != userID {
				continue
			}
			if n.Read {
				return db.ErrSkipWrite
			}
			n.Read = true
			return nil
		}
		return apperrors.NewResourceNotFoundError("notification not found")
	})
}

// MarkAllRead returns how many notifications flipped to read.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (int, error) {
	flipped := 0
	err := s.notifications.Update(ctx, func(all *[]models.Notification) error {
		for i := range *all {
			n := &(*all)[i]
			if n.UserID == userID && !n.Read {
				n.Read = true
				flipped++
			}
		}
		if flipped == 0 {
			return db.ErrSkipWrite
		}
		return nil
	})
	return flipped, err
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int, error) {
	all, err := s.notifications.Load(ctx)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, n := range all {
		if n.UserID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

func (s *NotificationService) Delete(ctx context.Context, userID, id string) error {
	return s.notifications.Update(ctx, func(all *[]models.Notification) error {
		for i, n := range *all {
			if n.ID == id && n.UserID == userID {
				*all = append((*all)[:i], (*all)[i+1:]...)
				return nil
			}
		}
		return apperrors.NewResourceNotFoundError("notification not found")
	})
}

func (s *NotificationService) deleteForUser(ctx context.Context, userID string) error {
	return s.notifications.Update(ctx, func(all *[]models.Notification) error {
		kept := (*all)[:0]
		for _, n := range *all {
			if n.UserID != userID {
				kept = append(kept, n)
			}
		}
		if len(kept) == len(*all) {
			return db.ErrSkipWrite
		}
		*all = kept
		return nil
	})
}
