package cache

import (
	"context"
	"encoding/json"
	"sort"
	"strconv"

	"github.com/kapu/group-notice-bot/internal/domain"
	"github.com/kapu/group-notice-bot/pkg/errors"
)

const (
	memberHashKey      = "groupbot:members"
	groupHashKey       = "groupbot:groups"
	announcementPrefix = "groupbot:announcement:"
)

// MemberStore keeps every member as a JSON field of one hash keyed by ID.
// Create uses HSETNX, so the create-only check and the write are one command.
type MemberStore struct {
	cache *CacheService
}

func NewMemberStore(cache *CacheService) *MemberStore {
	return &MemberStore{cache: cache}
}

func (s *MemberStore) Create(ctx context.Context, m *domain.Member) error {
	payload, err := json.Marshal(m)
	if err != nil {
		return errors.NewCacheError("marshal failed", "hsetnx", memberHashKey, err)
	}
	set, err := s.cache.HSetNX(ctx, memberHashKey, memberField(m.ID), string(payload))
	if err != nil {
		return err
	}
	if !set {
		return errors.AlreadyRegistered(int64(m.ID))
	}
	return nil
}

func (s *MemberStore) Get(ctx context.Context, id domain.MemberID) (*domain.Member, error) {
	raw, ok, err := s.cache.HGet(ctx, memberHashKey, memberField(id))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.NotFound("member", int64(id))
	}
	return decodeMember(memberField(id), raw)
}

func (s *MemberStore) Delete(ctx context.Context, id domain.MemberID) error {
	removed, err := s.cache.HDel(ctx, memberHashKey, memberField(id))
	if err != nil {
		return err
	}
	if removed == 0 {
		return errors.NotFound("member", int64(id))
	}
	return nil
}

func (s *MemberStore) List(ctx context.Context) ([]*domain.Member, error) {
	return s.filter(ctx, func(*domain.Member) bool { return true })
}

func (s *MemberStore) ListByGroup(ctx context.Context, groupName string) ([]*domain.Member, error) {
	return s.filter(ctx, func(m *domain.Member) bool { return m.GroupName == groupName })
}

func (s *MemberStore) filter(ctx context.Context, keep func(*domain.Member) bool) ([]*domain.Member, error) {
	all, err := s.cache.HGetAll(ctx, memberHashKey)
	if err != nil {
		return nil, err
	}
	members := make([]*domain.Member, 0, len(all))
	for field, raw := range all {
		m, err := decodeMember(field, raw)
		if err != nil {
			return nil, err
		}
		if keep(m) {
			members = append(members, m)
		}
	}
	sort.Slice(members, func(i, j int) bool { return members[i].ID < members[j].ID })
	return members, nil
}

func memberField(id domain.MemberID) string {
	return strconv.FormatInt(int64(id), 10)
}

func decodeMember(field, raw string) (*domain.Member, error) {
	var m domain.Member
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, errors.NewCorruptionError("undecodable member record", map[string]any{
			"key":   memberHashKey,
			"field": field,
		}).WithCause(err)
	}
	return &m, nil
}

// GroupStore keeps groups as JSON fields of one hash keyed by name.
type GroupStore struct {
	cache *CacheService
}

func NewGroupStore(cache *CacheService) *GroupStore {
	return &GroupStore{cache: cache}
}

func (s *GroupStore) Create(ctx context.Context, g *domain.Group) error {
	payload, err := json.Marshal(g)
	if err != nil {
		return errors.NewCacheError("marshal failed", "hsetnx", groupHashKey, err)
	}
	set, err := s.cache.HSetNX(ctx, groupHashKey, g.Name, string(payload))
	if err != nil {
		return err
	}
	if !set {
		return errors.AlreadyExists("group", g.Name)
	}
	return nil
}

func (s *GroupStore) Exists(ctx context.Context, name string) (bool, error) {
	return s.cache.HExists(ctx, groupHashKey, name)
}

func (s *GroupStore) List(ctx context.Context) ([]*domain.Group, error) {
	all, err := s.cache.HGetAll(ctx, groupHashKey)
	if err != nil {
		return nil, err
	}
	groups := make([]*domain.Group, 0, len(all))
	for name, raw := range all {
		var g domain.Group
		if err := json.Unmarshal([]byte(raw), &g); err != nil {
			return nil, errors.NewCorruptionError("undecodable group record", map[string]any{
				"key":   groupHashKey,
				"field": name,
			}).WithCause(err)
		}
		groups = append(groups, &g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Name < groups[j].Name })
	return groups, nil
}

// AnnouncementStore keeps one string key per group. Put is a single SET.
type AnnouncementStore struct {
	cache *CacheService
}

func NewAnnouncementStore(cache *CacheService) *AnnouncementStore {
	return &AnnouncementStore{cache: cache}
}

func (s *AnnouncementStore) Put(ctx context.Context, a *domain.Announcement) error {
	payload, err := json.Marshal(a)
	if err != nil {
		return errors.NewCacheError("marshal failed", "set", announcementKey(a.GroupName), err)
	}
	return s.cache.SetRaw(ctx, announcementKey(a.GroupName), string(payload), 0)
}

func (s *AnnouncementStore) Get(ctx context.Context, groupName string) (*domain.Announcement, error) {
	key := announcementKey(groupName)
	raw, ok, err := s.cache.GetRaw(ctx, key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.NotFound("announcement", groupName)
	}
	var a domain.Announcement
	if err := json.Unmarshal([]byte(raw), &a); err != nil {
		return nil, errors.NewCorruptionError("undecodable announcement record", map[string]any{
			"key": key,
		}).WithCause(err)
	}
	return &a, nil
}

func (s *AnnouncementStore) Delete(ctx context.Context, groupName string) (bool, error) {
	removed, err := s.cache.Del(ctx, announcementKey(groupName))
	if err != nil {
		return false, err
	}
	return removed > 0, nil
}

func announcementKey(groupName string) string {
	return announcementPrefix + groupName
}
