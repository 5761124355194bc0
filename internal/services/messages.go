package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"devsquare/internal/apperrors"
	"devsquare/internal/db"
	"devsquare/internal/models"
	"devsquare/internal/utils"

	"github.com/google/uuid"
)

// MessageService handles one-to-one conversations. There is at most one
// conversation per unordered pair of users.
type MessageService struct {
	conversations *db.Collection[[]models.DirectMessage]
	users         *UserService
	now           func() time.Time
}

func NewMessageService(cols *db.Collections, users *UserService, now func() time.Time) *MessageService {
	return &MessageService{conversations: cols.DirectMessages, users: users, now: now}
}

func findConversation(all []models.DirectMessage, a, b string) *models.DirectMessage {
	for i := range all {
		if len(all[i].Participants) == 2 && all[i].HasParticipant(a) && all[i].HasParticipant(b) {
			return &all[i]
		}
	}
	return nil
}

// GetOrCreateConversation returns the conversation between a and b, creating it on first contact.
func (s *MessageService) GetOrCreateConversation(ctx context.Context, a, b string) (*models.DirectMessage, error) {
	if a == b {
		return nil, apperrors.NewValidationError("cannot start a conversation with yourself")
	}
	if _, err := s.users.GetByID(ctx, b); err != nil {
		return nil, err
	}

	var conv models.DirectMessage
	err := s.conversations.Update(ctx, func(all *[]models.DirectMessage) error {
		if existing := findConversation(*all, a, b); existing != nil {
			conv = *existing
			return db.ErrSkipWrite
		}
		now := s.now()
		conv = models.DirectMessage{
			ID:           utils.GenerateID(),
			Participants: []string{a, b},
			Messages:     []models.Message{},
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		*all = append(*all, conv)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

func (s *MessageService) get(ctx context.Context, id, viewerID string) (*models.DirectMessage, error) {
	all, err := s.conversations.Load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID != id {
			continue
		}
		if !all[i].HasParticipant(viewerID) {
			return nil, apperrors.NewForbiddenError("you are not part of this conversation")
		}
		return &all[i], nil
	}
	return nil, apperrors.NewResourceNotFoundError("conversation not found")
}

func newMessage(senderID, content string, now time.Time) (models.Message, error) {
	if strings.TrimSpace(content) == "" {
		return models.Message{}, apperrors.NewValidationError("message content is required")
	}
	return models.Message{
		ID:        uuid.NewString(),
		SenderID:  senderID,
		Content:   content,
		Timestamp: now,
	}, nil
}

// Send appends a message from senderID, unread by the recipient.
func (s *MessageService) Send(ctx context.Context, conversationID, senderID, content string) (*models.Message, error) {
	now := s.now()
	msg, err := newMessage(senderID, content, now)
	if err != nil {
		return nil, err
	}
	err = s.conversations.Update(ctx, func(all *[]models.DirectMessage) error {
		for i := range *all {
			c := &(*all)[i]
			if c.ID != conversationID {
				continue
			}
			if !c.HasParticipant(senderID) {
				return apperrors.NewForbiddenError("you are not part of this conversation")
			}
			c.Messages = append(c.Messages, msg)
			c.UpdatedAt = now
			return nil
		}
		return apperrors.NewResourceNotFoundError("conversation not found")
	})
	if err != nil {
		return nil, err
	}
	return s.attachSender(ctx, msg), nil
}

// SendToUser sends to the conversation with toID, creating it if needed.
func (s *MessageService) SendToUser(ctx context.Context, fromID, toID, content string) (*models.DirectMessage, *models.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, nil, apperrors.NewValidationError("message content is required")
	}
	conv, err := s.GetOrCreateConversation(ctx, fromID, toID)
	if err != nil {
		return nil, nil, err
	}
	msg, err := s.Send(ctx, conv.ID, fromID, content)
	if err != nil {
		return nil, nil, err
	}
	return conv, msg, nil
}

// Open marks every message not sent by viewerID as read and returns the
// full list with senders attached. Nothing is written if nothing flipped.
func (s *MessageService) Open(ctx context.Context, conversationID, viewerID string) ([]models.Message, error) {
	var messages []models.Message
	err := s.conversations.Update(ctx, func(all *[]models.DirectMessage) error {
		for i := range *all {
			c := &(*all)[i]
			if c.ID != conversationID {
				continue
			}
			if !c.HasParticipant(viewerID) {
				return apperrors.NewForbiddenError("you are not part of this conversation")
			}
			flipped := false
			for j := range c.Messages {
				if c.Messages[j].SenderID != viewerID && !c.Messages[j].Read {
					c.Messages[j].Read = true
					flipped = true
				}
			}
			messages = append([]models.Message{}, c.Messages...)
			if !flipped {
				return db.ErrSkipWrite
			}
			return nil
		}
		return apperrors.NewResourceNotFoundError("conversation not found")
	})
	if err != nil {
		return nil, err
	}
	return s.attachSenders(ctx, messages)
}

// Fetch resolves id as a conversation id first and otherwise as the other
// participant's user id, then opens the conversation.
func (s *MessageService) Fetch(ctx context.Context, viewerID, id string) (*models.DirectMessage, []models.Message, error) {
	conv, err := s.get(ctx, id, viewerID)
	if apperrors.Is(err, apperrors.ErrNotFound) {
		conv, err = s.GetOrCreateConversation(ctx, viewerID, id)
	}
	if err != nil {
		return nil, nil, err
	}
	messages, err := s.Open(ctx, conv.ID, viewerID)
	if err != nil {
		return nil, nil, err
	}
	return conv, messages, nil
}

// ListConversations summarizes userID's conversations, most recently updated first.
func (s *MessageService) ListConversations(ctx context.Context, userID string) ([]models.ConversationSummary, error) {
	all, err := s.conversations.Load(ctx)
	if err != nil {
		return nil, err
	}
	users, err := s.users.index(ctx)
	if err != nil {
		return nil, err
	}

	summaries := []models.ConversationSummary{}
	for _, c := range all {
		if !c.HasParticipant(userID) {
			continue
		}
		other, ok := users[c.Other(userID)]
		if !ok {
			continue
		}
		summary := models.ConversationSummary{ID: c.ID, User: other, UpdatedAt: c.UpdatedAt}
		if n := len(c.Messages); n > 0 {
			last := c.Messages[n-1]
			summary.LastMessage = &last
		}
		for _, m := range c.Messages {
			if m.SenderID != userID && !m.Read {
				summary.UnreadCount++
			}
		}
		summaries = append(summaries, summary)
	}
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].UpdatedAt.After(summaries[j].UpdatedAt)
	})
	return summaries, nil
}

func (s *MessageService) attachSender(ctx context.Context, msg models.Message) *models.Message {
	if u, err := s.users.GetByID(ctx, msg.SenderID); err == nil {
		msg.Sender = u
	}
	return &msg
}

func (s *MessageService) attachSenders(ctx context.Context, messages []models.Message) ([]models.Message, error) {
	return attachSenders(ctx, s.users, messages)
}

// attachSenders fills Sender from the live user records.
func attachSenders(ctx context.Context, users *UserService, messages []models.Message) ([]models.Message, error) {
	index, err := users.index(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Message, len(messages))
	for i, m := range messages {
		if u, ok := index[m.SenderID]; ok {
			m.Sender = &u
		}
		out[i] = m
	}
	return out, nil
}
