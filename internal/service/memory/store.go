// Package memory provides in-process implementations of the storage ports for
// development and tests. Every method takes the store mutex, so each call is
// atomic with respect to all others.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/kapu/group-notice-bot/internal/domain"
	"github.com/kapu/group-notice-bot/pkg/errors"
)

// Error Contract:
// - Get/Delete return errors.NotFound when the entity does not exist
// - Create returns errors.AlreadyRegistered / errors.AlreadyExists on collision
// - Returned records are copies; callers may mutate them freely

type MemberStore struct {
	mu      sync.RWMutex
	members map[domain.MemberID]*domain.Member
}

func NewMemberStore() *MemberStore {
	return &MemberStore{members: make(map[domain.MemberID]*domain.Member)}
}

func (s *MemberStore) Create(_ context.Context, member *domain.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.members[member.ID]; ok {
		return errors.AlreadyRegistered(int64(member.ID))
	}
	s.members[member.ID] = member.Clone()
	return nil
}

func (s *MemberStore) Get(_ context.Context, id domain.MemberID) (*domain.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	member, ok := s.members[id]
	if !ok {
		return nil, errors.NotFound("member", int64(id))
	}
	return member.Clone(), nil
}

func (s *MemberStore) Delete(_ context.Context, id domain.MemberID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.members[id]; !ok {
		return errors.NotFound("member", int64(id))
	}
	delete(s.members, id)
	return nil
}

func (s *MemberStore) List(_ context.Context) ([]*domain.Member, error) {
	return s.filter(func(*domain.Member) bool { return true }), nil
}

func (s *MemberStore) ListByGroup(_ context.Context, groupName string) ([]*domain.Member, error) {
	return s.filter(func(m *domain.Member) bool { return m.GroupName == groupName }), nil
}

// filter returns matching members ordered by ID.
func (s *MemberStore) filter(keep func(*domain.Member) bool) []*domain.Member {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Member, 0, len(s.members))
	for _, m := range s.members {
		if keep(m) {
			out = append(out, m.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type GroupStore struct {
	mu     sync.RWMutex
	groups map[string]*domain.Group
}

func NewGroupStore() *GroupStore {
	return &GroupStore{groups: make(map[string]*domain.Group)}
}

func (s *GroupStore) Create(_ context.Context, group *domain.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.groups[group.Name]; ok {
		return errors.AlreadyExists("group", group.Name)
	}
	g := *group
	s.groups[group.Name] = &g
	return nil
}

func (s *GroupStore) Exists(_ context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.groups[name]
	return ok, nil
}

func (s *GroupStore) List(_ context.Context) ([]*domain.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Group, 0, len(s.groups))
	for _, g := range s.groups {
		c := *g
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type AnnouncementStore struct {
	mu    sync.RWMutex
	slots map[string]*domain.Announcement
}

func NewAnnouncementStore() *AnnouncementStore {
	return &AnnouncementStore{slots: make(map[string]*domain.Announcement)}
}

// Put replaces the group's announcement in a single step.
func (s *AnnouncementStore) Put(_ context.Context, announcement *domain.Announcement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots[announcement.GroupName] = announcement.Clone()
	return nil
}

func (s *AnnouncementStore) Get(_ context.Context, groupName string) (*domain.Announcement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.slots[groupName]
	if !ok {
		return nil, errors.NotFound("announcement", groupName)
	}
	return a.Clone(), nil
}

// Delete removes the group's announcement and reports whether one existed.
func (s *AnnouncementStore) Delete(_ context.Context, groupName string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.slots[groupName]
	delete(s.slots, groupName)
	return ok, nil
}
