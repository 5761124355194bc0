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
)

// GroupService manages group chats. The creator is the permanent admin and
// the only one who can change membership.
type GroupService struct {
	groups *db.Collection[[]models.Group]
	users  *UserService
	now    func() time.Time
}

func NewGroupService(cols *db.Collections, users *UserService, now func() time.Time) *GroupService {
	return &GroupService{groups: cols.Groups, users: users, now: now}
}

type CreateGroupInput struct {
	Name        string
	Description string
	Avatar      string
}

func (s *GroupService) Create(ctx context.Context, creatorID string, in CreateGroupInput) (*models.Group, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, apperrors.NewValidationError("group name is required")
	}
	now := s.now()
	group := models.Group{
		ID:          utils.GenerateID(),
		Name:        in.Name,
		Description: in.Description,
		Avatar:      in.Avatar,
		AdminID:     creatorID,
		Members:     []string{creatorID},
		Messages:    []models.Message{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err := s.groups.Update(ctx, func(all *[]models.Group) error {
		*all = append(*all, group)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &group, nil
}

// mutate runs fn on the group with groupID after checking requesterID is its admin.
func (s *GroupService) mutate(ctx context.Context, groupID, requesterID string, fn func(g *models.Group) error) (*models.Group, error) {
	var out models.Group
	err := s.groups.Update(ctx, func(all *[]models.Group) error {
		for i := range *all {
			g := &(*all)[i]
			if g.ID != groupID {
				continue
			}
			if g.AdminID != requesterID {
				return apperrors.NewForbiddenError("only the group admin can manage members")
			}
			if err := fn(g); err != nil {
				return err
			}
			g.UpdatedAt = s.now()
			out = *g
			return nil
		}
		return apperrors.NewResourceNotFoundError("group not found")
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *GroupService) AddMember(ctx context.Context, groupID, requesterID, memberID string) (*models.Group, error) {
	if _, err := s.users.GetByID(ctx, memberID); err != nil {
		return nil, err
	}
	return s.mutate(ctx, groupID, requesterID, func(g *models.Group) error {
		if g.IsMember(memberID) {
			return apperrors.NewConflictError("user is already a member")
		}
		g.Members = append(g.Members, memberID)
		return nil
	})
}

func (s *GroupService) RemoveMember(ctx context.Context, groupID, requesterID, memberID string) (*models.Group, error) {
	return s.mutate(ctx, groupID, requesterID, func(g *models.Group) error {
		if memberID == g.AdminID {
			return apperrors.NewValidationError("the group admin cannot be removed")
		}
		for i, m := range g.Members {
			if m == memberID {
				g.Members = append(g.Members[:i], g.Members[i+1:]...)
				return nil
			}
		}
		return apperrors.NewResourceNotFoundError("user is not a member")
	})
}

// ListForUser returns the groups userID belongs to, most recently active first.
func (s *GroupService) ListForUser(ctx context.Context, userID string) ([]models.Group, error) {
	all, err := s.groups.Load(ctx)
	if err != nil {
		return nil, err
	}
	mine := []models.Group{}
	for _, g := range all {
		if g.IsMember(userID) {
			mine = append(mine, g)
		}
	}
	sort.SliceStable(mine, func(i, j int) bool {
		return mine[i].UpdatedAt.After(mine[j].UpdatedAt)
	})
	return mine, nil
}

// Get returns a group to one of its members, senders attached.
func (s *GroupService) Get(ctx context.Context, groupID, viewerID string) (*models.Group, error) {
	all, err := s.groups.Load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		g := all[i]
		if g.ID != groupID {
			continue
		}
		if !g.IsMember(viewerID) {
			return nil, apperrors.NewForbiddenError("you are not a member of this group")
		}
		if g.Messages, err = attachSenders(ctx, s.users, g.Messages); err != nil {
			return nil, err
		}
		return &g, nil
	}
	return nil, apperrors.NewResourceNotFoundError("group not found")
}

// SendMessage posts to a group; members only.
func (s *GroupService) SendMessage(ctx context.Context, groupID, senderID, content string) (*models.Message, error) {
	now := s.now()
	msg, err := newMessage(senderID, content, now)
	if err != nil {
		return nil, err
	}
	err = s.groups.Update(ctx, func(all *[]models.Group) error {
		for i := range *all {
			g := &(*all)[i]
			if g.ID != groupID {
				continue
			}
			if !g.IsMember(senderID) {
				return apperrors.NewForbiddenError("you are not a member of this group")
			}
			g.Messages = append(g.Messages, msg)
			g.UpdatedAt = now
			return nil
		}
		return apperrors.NewResourceNotFoundError("group not found")
	})
	if err != nil {
		return nil, err
	}
	if u, err := s.users.GetByID(ctx, senderID); err == nil {
		msg.Sender = u
	}
	return &msg, nil
}
