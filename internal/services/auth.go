package services

import (
	"context"
	"strings"
	"time"

	"devsquare/internal/apperrors"
	"devsquare/internal/db"
	"devsquare/internal/models"
	"devsquare/internal/utils"

	"github.com/rs/zerolog"
)

const minPasswordLength = 6

// AuthService registers and authenticates users. Password hashes live in the
// credentials collection and never in the user record.
type AuthService struct {
	users       *UserService
	userRecords *db.Collection[[]models.User]
	credentials *db.Collection[map[string]models.Credential]
	hasher      PasswordHasher
	now         func() time.Time
	log         zerolog.Logger
}

func NewAuthService(cols *db.Collections, users *UserService, hasher PasswordHasher, now func() time.Time, log zerolog.Logger) *AuthService {
	if hasher == nil {
		hasher = utils.BcryptHasher{}
	}
	return &AuthService{
		users:       users,
		userRecords: cols.Users,
		credentials: cols.Credentials,
		hasher:      hasher,
		now:         now,
		log:         log.With().Str("service", "auth").Logger(),
	}
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return apperrors.NewValidationError("password must be at least 6 characters")
	}
	return nil
}

// SignUp creates a user with zeroed counters and stores its credential.
func (s *AuthService) SignUp(ctx context.Context, username, password, displayName string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if !utils.ValidUsername(username) {
		return nil, apperrors.NewValidationError("username must be at least 3 characters and contain only letters, numbers and underscores")
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, apperrors.NewInternalError(err, "failed to hash password")
	}

	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		displayName = username
	}
	now := s.now()
	user := models.User{
		ID:          utils.GenerateID(),
		Username:    utils.NormalizeUsername(username),
		DisplayName: displayName,
		Avatar:      utils.DefaultAvatar(displayName),
		Badges:      []models.Badge{},
		TechStack:   []string{},
		JoinedAt:    now,
	}

	err = s.userRecords.Update(ctx, func(users *[]models.User) error {
		if findUsername(*users, user.Username) != nil {
			return apperrors.NewConflictError("username already taken")
		}
		*users = append(*users, user)
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = s.credentials.Update(ctx, func(creds *map[string]models.Credential) error {
		(*creds)[user.ID] = models.Credential{UserID: user.ID, Hash: hash, UpdatedAt: now}
		return nil
	})
	if err != nil {
		// no user without a credential
		if rmErr := s.users.remove(ctx, user.ID); rmErr != nil {
			s.log.Error().Err(rmErr).Str("user_id", user.ID).Msg("failed to roll back user after credential write failure")
		}
		return nil, err
	}

	s.log.Info().Str("user_id", user.ID).Str("username", user.Username).Msg("user signed up")
	return &user, nil
}

func errInvalidCredentials() error {
	return apperrors.NewAuthError("Invalid username or password")
}

// SignIn fails the same way for unknown users and wrong passwords.
func (s *AuthService) SignIn(ctx context.Context, username, password string) (*models.User, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return nil, apperrors.NewValidationError("username and password are required")
	}
	user, err := s.users.GetByUsername(ctx, username)
	if apperrors.Is(err, apperrors.ErrNotFound) {
		return nil, errInvalidCredentials()
	}
	if err != nil {
		return nil, err
	}
	if err := s.verify(ctx, user.ID, password); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) verify(ctx context.Context, userID, password string) error {
	creds, err := s.credentials.Load(ctx)
	if err != nil {
		return err
	}
	cred, ok := creds[userID]
	if !ok || s.hasher.Compare(cred.Hash, password) != nil {
		return errInvalidCredentials()
	}
	return nil
}

// ChangePassword re-verifies the current password before replacing the hash.
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if currentPassword == "" {
		return apperrors.NewValidationError("current password is required")
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	if err := s.verify(ctx, userID, currentPassword); err != nil {
		if apperrors.Is(err, apperrors.ErrUnauthenticated) {
			return apperrors.NewValidationError("current password is incorrect")
		}
		return err
	}
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return apperrors.NewInternalError(err, "failed to hash password")
	}
	return s.credentials.Update(ctx, func(creds *map[string]models.Credential) error {
		(*creds)[userID] = models.Credential{UserID: userID, Hash: hash, UpdatedAt: s.now()}
		return nil
	})
}

func (s *AuthService) deleteCredential(ctx context.Context, userID string) error {
	return s.credentials.Update(ctx, func(creds *map[string]models.Credential) error {
		if _, ok := (*creds)[userID]; !ok {
			return db.ErrSkipWrite
		}
		delete(*creds, userID)
		return nil
	})
}

// EnsureAdmin creates or promotes the configured admin account.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, password, displayName string) (*models.User, error) {
	existing, err := s.users.GetByUsername(ctx, username)
	if err != nil && !apperrors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}
	if existing == nil {
		if existing, err = s.SignUp(ctx, username, password, displayName); err != nil {
			return nil, err
		}
	}
	if existing.IsAdmin {
		return existing, nil
	}

	var promoted models.User
	err = s.userRecords.Update(ctx, func(users *[]models.User) error {
		for i := range *users {
			u := &(*users)[i]
			if u.ID == existing.ID {
				u.IsAdmin = true
				u.Reputation = max(u.Reputation, adminReputation)
				promoted = *u
				return nil
			}
		}
		return apperrors.NewResourceNotFoundError("user not found")
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("user_id", promoted.ID).Str("username", promoted.Username).Msg("admin account ready")
	return &promoted, nil
}

const adminReputation = 10000
