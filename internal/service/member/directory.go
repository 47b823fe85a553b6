package member

import (
	"context"
	"fmt"
	"strconv"

	"github.com/kapu/group-notice-bot/internal/credential"
	"github.com/kapu/group-notice-bot/internal/domain"
	"github.com/kapu/group-notice-bot/internal/util"
	"github.com/kapu/group-notice-bot/pkg/errors"
	"go.uber.org/zap"
)

// Store is the storage port for member records.
//
// Create must be create-only: it returns an error matching errors.ErrAlreadyRegistered
// when a record with the same ID exists. Get and Delete return an error matching
// errors.ErrNotFound for unknown IDs.
type Store interface {
	Create(ctx context.Context, member *domain.Member) error
	Get(ctx context.Context, id domain.MemberID) (*domain.Member, error)
	Delete(ctx context.Context, id domain.MemberID) error
	List(ctx context.Context) ([]*domain.Member, error)
	ListByGroup(ctx context.Context, groupName string) ([]*domain.Member, error)
}

// Directory owns the member lifecycle.
type Directory struct {
	store   Store
	modulus int
	locks   *util.KeyedMutex
	logger  *zap.Logger
}

func NewDirectory(store Store, modulus int, logger *zap.Logger) *Directory {
	if modulus <= 0 {
		modulus = credential.DefaultModulus
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Directory{
		store:   store,
		modulus: modulus,
		locks:   util.NewKeyedMutex(),
		logger:  logger,
	}
}

// ListAll returns a snapshot of every registered member.
func (d *Directory) ListAll(ctx context.Context) ([]*domain.Member, error) {
	members, err := d.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	return members, nil
}

// ListByGroup returns the members currently assigned to groupName.
func (d *Directory) ListByGroup(ctx context.Context, groupName string) ([]*domain.Member, error) {
	members, err := d.store.ListByGroup(ctx, groupName)
	if err != nil {
		return nil, fmt.Errorf("list members of %q: %w", groupName, err)
	}
	return members, nil
}

// Register creates a member record. A failing or missing credential never fails
// the registration; it only yields a non-leader member.
func (d *Directory) Register(ctx context.Context, id domain.MemberID, groupName, cred string) (*domain.Member, error) {
	unlock := d.locks.Lock(memberKey(id))
	defer unlock()

	isLeader := cred != "" && credential.Verify(cred, d.modulus)
	member := domain.NewMember(id, groupName, isLeader)

	if err := d.store.Create(ctx, member); err != nil {
		return nil, fmt.Errorf("register member %d: %w", id, err)
	}

	d.logger.Info("Member registered",
		zap.Int64("member_id", int64(id)),
		zap.String("group", groupName),
		zap.Bool("leader", isLeader),
		zap.Bool("credential_supplied", cred != ""),
	)
	return member, nil
}

// Lookup returns the member or an error matching errors.ErrNotFound.
func (d *Directory) Lookup(ctx context.Context, id domain.MemberID) (*domain.Member, error) {
	member, err := d.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("lookup member %d: %w", id, err)
	}
	return member, nil
}

// Unregister deletes the member. Deleting an unknown member is reported with an
// error matching errors.ErrNotFound.
func (d *Directory) Unregister(ctx context.Context, id domain.MemberID) error {
	unlock := d.locks.Lock(memberKey(id))
	defer unlock()

	if err := d.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("unregister member %d: %w", id, err)
	}

	d.logger.Info("Member unregistered", zap.Int64("member_id", int64(id)))
	return nil
}

func (d *Directory) GroupOf(ctx context.Context, id domain.MemberID) (string, error) {
	member, err := d.Lookup(ctx, id)
	if err != nil {
		return "", err
	}
	return member.GroupName, nil
}

func (d *Directory) IsLeader(ctx context.Context, id domain.MemberID) (bool, error) {
	member, err := d.Lookup(ctx, id)
	if err != nil {
		return false, err
	}
	return member.IsLeader, nil
}

func memberKey(id domain.MemberID) string {
	return "member:" + strconv.FormatInt(int64(id), 10)
}

// IsNotFound reports whether err means the member does not exist.
func IsNotFound(err error) bool {
	return errors.IsCode(err, errors.CodeNotFound)
}

// IsAlreadyRegistered reports whether err means the member already exists.
func IsAlreadyRegistered(err error) bool {
	return errors.IsCode(err, errors.CodeAlreadyRegistered)
}
