package db

import "devsquare/internal/models"

const (
	UsersCollection          = "users"
	CredentialsCollection    = "credentials"
	SessionsCollection       = "sessions"
	PostsCollection          = "posts"
	VotesCollection          = "votes"
	DirectMessagesCollection = "direct-messages"
	GroupsCollection         = "groups"
	FriendshipsCollection    = "friendships"
	NotificationsCollection  = "notifications"
	MentionsCollection       = "mentions"
)

// Collections is the typed set of every collection the services use.
type Collections struct {
	Users          *Collection[[]models.User]
	Credentials    *Collection[map[string]models.Credential]
	Sessions       *Collection[map[string]models.Session]
	Posts          *Collection[[]models.Post]
	Votes          *Collection[models.VoteBook]
	DirectMessages *Collection[[]models.DirectMessage]
	Groups         *Collection[[]models.Group]
	Friendships    *Collection[[]models.Friendship]
	Notifications  *Collection[[]models.Notification]
	Mentions       *Collection[[]models.Mention]
}

func NewCollections(s *Store) *Collections {
	return &Collections{
		Users:          NewCollection(s, UsersCollection, func() []models.User { return []models.User{} }),
		Credentials:    NewCollection(s, CredentialsCollection, func() map[string]models.Credential { return map[string]models.Credential{} }),
		Sessions:       NewCollection(s, SessionsCollection, func() map[string]models.Session { return map[string]models.Session{} }),
		Posts:          NewCollection(s, PostsCollection, func() []models.Post { return []models.Post{} }),
		Votes:          NewCollection(s, VotesCollection, func() models.VoteBook { return models.VoteBook{} }),
		DirectMessages: NewCollection(s, DirectMessagesCollection, func() []models.DirectMessage { return []models.DirectMessage{} }),
		Groups:         NewCollection(s, GroupsCollection, func() []models.Group { return []models.Group{} }),
		Friendships:    NewCollection(s, FriendshipsCollection, func() []models.Friendship { return []models.Friendship{} }),
		Notifications:  NewCollection(s, NotificationsCollection, func() []models.Notification { return []models.Notification{} }),
		Mentions:       NewCollection(s, MentionsCollection, func() []models.Mention { return []models.Mention{} }),
	}
}
