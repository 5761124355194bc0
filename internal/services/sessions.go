package services

import (
	"context"
	"time"

	"devsquare/internal/apperrors"
	"devsquare/internal/db"
	"devsquare/internal/models"
	"devsquare/internal/utils"
)

const DefaultSessionTTL = 30 * 24 * time.Hour

// SessionService maps opaque bearer tokens to user ids. Expired sessions are
// removed when they are next looked up.
type SessionService struct {
	sessions *db.Collection[map[string]models.Session]
	ttl      time.Duration
	now      func() time.Time
}

func NewSessionService(cols *db.Collections, ttl time.Duration, now func() time.Time) *SessionService {
	return &SessionService{sessions: cols.Sessions, ttl: ttl, now: now}
}

// Create starts a session with the default lifetime.
func (s *SessionService) Create(ctx context.Context, userID string) (string, error) {
	return s.CreateWithTTL(ctx, userID, s.ttl)
}

func (s *SessionService) CreateWithTTL(ctx context.Context, userID string, ttl time.Duration) (string, error) {
	token, err := utils.GenerateToken()
	if err != nil {
		return "", apperrors.NewInternalError(err, "failed to generate session token")
	}
	now := s.now()
	err = s.sessions.Update(ctx, func(sessions *map[string]models.Session) error {
		(*sessions)[token] = models.Session{
			UserID:    userID,
			CreatedAt: now,
			ExpiresAt: now.Add(ttl),
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return token, nil
}

func errNoSession() error {
	return apperrors.NewAuthError("session is missing or expired")
}

// Get resolves token. Unknown and expired tokens return an AuthError; an
// expired one is deleted as a side effect.
func (s *SessionService) Get(ctx context.Context, token string) (*models.Session, error) {
	if token == "" {
		return nil, errNoSession()
	}
	sessions, err := s.sessions.Load(ctx)
	if err != nil {
		return nil, err
	}
	session, ok := sessions[token]
	if !ok {
		return nil, errNoSession()
	}
	if session.Expired(s.now()) {
		err := s.sessions.Update(ctx, func(sessions *map[string]models.Session) error {
			if _, ok := (*sessions)[token]; !ok {
				return db.ErrSkipWrite
			}
			delete(*sessions, token)
			return nil
		})
		if err != nil {
			return nil, err
		}
		return nil, errNoSession()
	}
	return &session, nil
}

func (s *SessionService) Delete(ctx context.Context, token string) error {
	return s.sessions.Update(ctx, func(sessions *map[string]models.Session) error {
		if _, ok := (*sessions)[token]; !ok {
			return db.ErrSkipWrite
		}
		delete(*sessions, token)
		return nil
	})
}

func (s *SessionService) DeleteAllForUser(ctx context.Context, userID string) error {
	return s.sessions.Update(ctx, func(sessions *map[string]models.Session) error {
		removed := 0
		for token, session := range *sessions {
			if session.UserID == userID {
				delete(*sessions, token)
				removed++
			}
		}
		if removed == 0 {
			return db.ErrSkipWrite
		}
		return nil
	})
}

// ActiveUsers counts distinct users holding an unexpired session.
func (s *SessionService) ActiveUsers(ctx context.Context) (int, error) {
	sessions, err := s.sessions.Load(ctx)
	if err != nil {
		return 0, err
	}
	now := s.now()
	users := make(map[string]struct{})
	for _, session := range sessions {
		if !session.Expired(now) {
			users[session.UserID] = struct{}{}
		}
	}
	return len(users), nil
}
