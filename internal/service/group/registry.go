package group

import (
	"context"
	"fmt"

	"github.com/kapu/group-notice-bot/internal/domain"
	"github.com/kapu/group-notice-bot/pkg/errors"
	"go.uber.org/zap"
)

// Store is the storage port for groups. Create must be a uniqueness-checked
// insert returning an error matching errors.ErrAlreadyExists on collision.
type Store interface {
	Create(ctx context.Context, group *domain.Group) error
	Exists(ctx context.Context, name string) (bool, error)
	List(ctx context.Context) ([]*domain.Group, error)
}

// Registry owns the set of valid group names. It does not know who is allowed
// to create groups; callers enforce that.
type Registry struct {
	store  Store
	logger *zap.Logger
}

func NewRegistry(store Store, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{store: store, logger: logger}
}

func (r *Registry) Create(ctx context.Context, name string, createdBy domain.MemberID) (*domain.Group, error) {
	group := domain.NewGroup(name, createdBy)
	if err := r.store.Create(ctx, group); err != nil {
		return nil, fmt.Errorf("create group %q: %w", name, err)
	}

	r.logger.Info("Group created",
		zap.String("group", name),
		zap.Int64("created_by", int64(createdBy)),
	)
	return group, nil
}

func (r *Registry) Exists(ctx context.Context, name string) (bool, error) {
	if name == "" {
		return false, nil
	}
	ok, err := r.store.Exists(ctx, name)
	if err != nil {
		return false, fmt.Errorf("check group %q: %w", name, err)
	}
	return ok, nil
}

func (r *Registry) List(ctx context.Context) ([]*domain.Group, error) {
	groups, err := r.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	return groups, nil
}

// IsAlreadyExists reports whether err means the group name is taken.
func IsAlreadyExists(err error) bool {
	return errors.IsCode(err, errors.CodeAlreadyExists)
}
