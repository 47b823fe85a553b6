package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/kapu/group-notice-bot/internal/domain"
	"github.com/kapu/group-notice-bot/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*CacheService, *miniredis.Miniredis) {
	t.Helper()
	mini := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCacheServiceFromClient(client, nil), mini
}

func TestMemberStoreCreateOnly(t *testing.T) {
	c, _ := newTestCache(t)
	store := NewMemberStore(c)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, domain.NewMember(1, "A", true)))
	err := store.Create(ctx, domain.NewMember(1, "B", false))
	assert.ErrorIs(t, err, errors.ErrAlreadyRegistered)

	got, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "A", got.GroupName)
	assert.True(t, got.IsLeader)
}

func TestMemberStoreDeleteAndLists(t *testing.T) {
	c, _ := newTestCache(t)
	store := NewMemberStore(c)
	ctx := context.Background()

	assert.ErrorIs(t, store.Delete(ctx, 5), errors.ErrNotFound)

	require.NoError(t, store.Create(ctx, domain.NewMember(3, "A", false)))
	require.NoError(t, store.Create(ctx, domain.NewMember(1, "A", false)))
	require.NoError(t, store.Create(ctx, domain.NewMember(2, "B", false)))

	inA, err := store.ListByGroup(ctx, "A")
	require.NoError(t, err)
	require.Len(t, inA, 2)
	assert.Equal(t, domain.MemberID(1), inA[0].ID)

	require.NoError(t, store.Delete(ctx, 1))
	all, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = store.Get(ctx, 1)
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestMemberStoreUndecodableRecordIsCorruption(t *testing.T) {
	c, mini := newTestCache(t)
	store := NewMemberStore(c)
	mini.HSet(memberHashKey, "7", "{not json")

	_, err := store.Get(context.Background(), 7)
	require.Error(t, err)
	assert.True(t, errors.IsCorruption(err))
	assert.False(t, errors.IsTransient(err))
}

func TestGroupStore(t *testing.T) {
	c, _ := newTestCache(t)
	store := NewGroupStore(c)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, domain.NewGroup("b", 1)))
	require.NoError(t, store.Create(ctx, domain.NewGroup("a", 1)))
	assert.ErrorIs(t, store.Create(ctx, domain.NewGroup("a", 2)), errors.ErrAlreadyExists)

	ok, err := store.Exists(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = store.Exists(ctx, "A")
	require.NoError(t, err)
	assert.False(t, ok)

	groups, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "a", groups[0].Name)
}

func TestAnnouncementStore(t *testing.T) {
	c, mini := newTestCache(t)
	store := NewAnnouncementStore(c)
	ctx := context.Background()

	_, err := store.Get(ctx, "A")
	assert.ErrorIs(t, err, errors.ErrNotFound)

	require.NoError(t, store.Put(ctx, domain.NewAnnouncement("A", "m1", 1)))
	require.NoError(t, store.Put(ctx, domain.NewAnnouncement("A", "m2", 1)))
	assert.True(t, mini.Exists(announcementKey("A")))

	got, err := store.Get(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, "m2", got.Body)

	removed, err := store.Delete(ctx, "A")
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = store.Delete(ctx, "A")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestUnavailableRedisIsTransient(t *testing.T) {
	c, mini := newTestCache(t)
	store := NewMemberStore(c)
	mini.Close()

	_, err := store.Get(context.Background(), 1)
	require.Error(t, err)
	assert.True(t, errors.IsTransient(err))
}
