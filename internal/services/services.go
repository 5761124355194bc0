package services

import (
	"time"

	"devsquare/internal/db"

	"github.com/rs/zerolog"
)

// PasswordHasher is the pluggable password hashing capability.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

type Options struct {
	SessionTTL time.Duration
	Hasher     PasswordHasher
	Now        func() time.Time
	Logger     zerolog.Logger
}

// Services bundles every domain service, wired in dependency order.
type Services struct {
	Sessions      *SessionService
	Users         *UserService
	Auth          *AuthService
	Notifications *NotificationService
	Reputation    *ReputationService
	Posts         *PostService
	Messages      *MessageService
	Groups        *GroupService
	Friends       *FriendService
	Accounts      *AccountService
	Admin         *AdminService
}

func New(cols *db.Collections, opts Options) *Services {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = DefaultSessionTTL
	}
	log := opts.Logger

	s := &Services{}
	s.Sessions = NewSessionService(cols, opts.SessionTTL, opts.Now)
	s.Users = NewUserService(cols)
	s.Auth = NewAuthService(cols, s.Users, opts.Hasher, opts.Now, log)
	s.Notifications = NewNotificationService(cols, opts.Now)
	s.Reputation = NewReputationService(cols)
	s.Posts = NewPostService(cols, s.Users, s.Notifications, s.Reputation, opts.Now, log)
	s.Messages = NewMessageService(cols, s.Users, opts.Now)
	s.Groups = NewGroupService(cols, s.Users, opts.Now)
	s.Friends = NewFriendService(cols, s.Users, s.Notifications, opts.Now, log)
	s.Accounts = NewAccountService(s.Users, s.Posts, s.Sessions, s.Auth, s.Friends, s.Notifications, log)
	s.Admin = NewAdminService(cols, s.Users, s.Posts, s.Sessions, s.Accounts)
	return s
}
