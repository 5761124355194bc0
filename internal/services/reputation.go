package services

import (
	"context"

	"devsquare/internal/db"
	"devsquare/internal/models"
)

// ReputationService moves a user's reputation by the net effect of votes on
// their content.
type ReputationService struct {
	users *db.Collection[[]models.User]
}

func NewReputationService(cols *db.Collections) *ReputationService {
	return &ReputationService{users: cols.Users}
}

// voteDelta is the reputation change when a vote moves from before to after.
func voteDelta(before, after models.VoteDirection) int {
	return after.Value() - before.Value()
}

// Apply adds delta to userID's reputation. Missing users and zero deltas are no-ops.
func (s *ReputationService) Apply(ctx context.Context, userID string, delta int) error {
	if delta == 0 || userID == "" {
		return nil
	}
	return s.users.Update(ctx, func(users *[]models.User) error {
		for i := range *users {
			if (*users)[i].ID == userID {
				(*users)[i].Reputation += delta
				return nil
			}
		}
		return db.ErrSkipWrite
	})
}
