package announcement

import (
	"context"
	"fmt"

	"github.com/kapu/group-notice-bot/internal/domain"
	"github.com/kapu/group-notice-bot/internal/util"
	"github.com/kapu/group-notice-bot/pkg/errors"
	"go.uber.org/zap"
)

// Store is the storage port for the per-group announcement slot.
//
// Put must replace the slot in one atomic operation so a reader never sees an
// empty or partial slot while a replacement is in flight. Get returns an error
// matching errors.ErrNotFound when the slot is empty.
type Store interface {
	Put(ctx context.Context, announcement *domain.Announcement) error
	Get(ctx context.Context, groupName string) (*domain.Announcement, error)
	Delete(ctx context.Context, groupName string) (bool, error)
}

// Board holds at most one current announcement per group. Writers to the same
// group are serialised; the last writer wins.
type Board struct {
	store  Store
	locks  *util.KeyedMutex
	logger *zap.Logger
}

func NewBoard(store Store, logger *zap.Logger) *Board {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Board{
		store:  store,
		locks:  util.NewKeyedMutex(),
		logger: logger,
	}
}

// Set replaces the group's announcement, creating the slot if absent.
func (b *Board) Set(ctx context.Context, groupName, body string, author domain.MemberID) (*domain.Announcement, error) {
	unlock := b.locks.Lock(groupName)
	defer unlock()

	announcement := domain.NewAnnouncement(groupName, body, author)
	if err := b.store.Put(ctx, announcement); err != nil {
		return nil, fmt.Errorf("set announcement for %q: %w", groupName, err)
	}

	b.logger.Info("Announcement replaced",
		zap.String("group", groupName),
		zap.String("announcement_id", announcement.ID),
		zap.Int64("author_id", int64(author)),
		zap.Int("length", len([]rune(body))),
	)
	return announcement, nil
}

// Get returns the current announcement; ok is false when the slot is empty.
func (b *Board) Get(ctx context.Context, groupName string) (*domain.Announcement, bool, error) {
	announcement, err := b.store.Get(ctx, groupName)
	if errors.IsCode(err, errors.CodeNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get announcement for %q: %w", groupName, err)
	}
	return announcement, true, nil
}

// Clear empties the slot and reports whether there was anything to remove.
func (b *Board) Clear(ctx context.Context, groupName string) (bool, error) {
	unlock := b.locks.Lock(groupName)
	defer unlock()

	removed, err := b.store.Delete(ctx, groupName)
	if err != nil {
		return false, fmt.Errorf("clear announcement for %q: %w", groupName, err)
	}
	if removed {
		b.logger.Info("Announcement cleared", zap.String("group", groupName))
	}
	return removed, nil
}
