// Package directory is the entry point callers talk to. It composes the member
// directory, group registry and announcement board into the registration,
// publishing and listing operations, and turns component failures into
// business outcomes.
package directory

import (
	"context"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/kapu/group-notice-bot/internal/constants"
	"github.com/kapu/group-notice-bot/internal/domain"
	"github.com/kapu/group-notice-bot/internal/service/announcement"
	"github.com/kapu/group-notice-bot/internal/service/group"
	"github.com/kapu/group-notice-bot/internal/service/member"
	"github.com/kapu/group-notice-bot/internal/service/metrics"
	"github.com/kapu/group-notice-bot/pkg/errors"
	"go.uber.org/zap"
)

const (
	defaultStorageTimeout       = 5 * time.Second
	defaultBroadcastConcurrency = 8
)

type Config struct {
	AdminID              domain.MemberID
	StorageTimeout       time.Duration
	BroadcastConcurrency int
}

type RegisterRequest struct {
	ActorID    domain.MemberID
	GroupName  string
	Credential string
}

type UnregisterRequest struct {
	ActorID domain.MemberID
}

type PublishRequest struct {
	ActorID domain.MemberID
	Body    string
}

type ReadRequest struct {
	ActorID domain.MemberID
}

type ClearRequest struct {
	ActorID domain.MemberID
}

type CreateGroupRequest struct {
	ActorID domain.MemberID
	Name    string
}

// Service returns (*domain.Result, nil) for every business outcome. A non-nil
// error is either transient (errors.IsTransient) or storage corruption
// (errors.IsCorruption).
type Service struct {
	members *member.Directory
	groups  *group.Registry
	board   *announcement.Board
	cfg     Config
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewService(
	members *member.Directory,
	groups *group.Registry,
	board *announcement.Board,
	cfg Config,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Service {
	if cfg.StorageTimeout <= 0 {
		cfg.StorageTimeout = defaultStorageTimeout
	}
	if cfg.BroadcastConcurrency <= 0 {
		cfg.BroadcastConcurrency = defaultBroadcastConcurrency
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		members: members,
		groups:  groups,
		board:   board,
		cfg:     cfg,
		metrics: m,
		logger:  logger,
	}
}

func (s *Service) IsAdmin(id domain.MemberID) bool {
	return s.cfg.AdminID != 0 && id == s.cfg.AdminID
}

// Register adds the actor to an existing group. Outcomes: OK, AlreadyRegistered,
// InvalidArgument (blank or unknown group).
func (s *Service) Register(ctx context.Context, req RegisterRequest) (res *domain.Result, err error) {
	defer s.observe("register", time.Now(), &res)
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	groupName := strings.TrimSpace(req.GroupName)
	if groupName == "" {
		return domain.Rejected(domain.OutcomeInvalidArgument, "group name is required"), nil
	}

	exists, err := s.groups.Exists(ctx, groupName)
	if err != nil {
		return nil, s.fail("register", err, zap.Int64("actor_id", int64(req.ActorID)))
	}
	if !exists {
		return domain.Rejected(domain.OutcomeInvalidArgument, domain.ReasonUnknownGroup), nil
	}

	m, err := s.members.Register(ctx, req.ActorID, groupName, req.Credential)
	if member.IsAlreadyRegistered(err) {
		return domain.ResultOf(domain.OutcomeAlreadyRegistered), nil
	}
	if err != nil {
		return nil, s.fail("register", err, zap.Int64("actor_id", int64(req.ActorID)))
	}
	return &domain.Result{Outcome: domain.OutcomeOK, Member: m}, nil
}

// Unregister removes the actor's record. Outcomes: OK, NotRegistered.
func (s *Service) Unregister(ctx context.Context, req UnregisterRequest) (res *domain.Result, err error) {
	defer s.observe("unregister", time.Now(), &res)
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	err = s.members.Unregister(ctx, req.ActorID)
	if member.IsNotFound(err) {
		return domain.ResultOf(domain.OutcomeNotRegistered), nil
	}
	if err != nil {
		return nil, s.fail("unregister", err, zap.Int64("actor_id", int64(req.ActorID)))
	}
	return domain.ResultOf(domain.OutcomeOK), nil
}

// ListAll returns every member. Outcome: OK.
func (s *Service) ListAll(ctx context.Context) (res *domain.Result, err error) {
	defer s.observe("list_all", time.Now(), &res)
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	members, err := s.members.ListAll(ctx)
	if err != nil {
		return nil, s.fail("list_all", err)
	}
	return &domain.Result{Outcome: domain.OutcomeOK, Members: members}, nil
}

// PublishAnnouncement replaces the actor's group announcement. Checks run in
// order: registered, leader, non-blank body, body length.
func (s *Service) PublishAnnouncement(ctx context.Context, req PublishRequest) (res *domain.Result, err error) {
	defer s.observe("publish", time.Now(), &res)
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	actor, rejected, err := s.resolveActor(ctx, "publish", req.ActorID)
	if rejected != nil || err != nil {
		return rejected, err
	}
	if !actor.IsLeader {
		return domain.Rejected(domain.OutcomeForbidden, "only a group leader can publish"), nil
	}

	body := strings.TrimSpace(req.Body)
	if body == "" {
		return domain.ResultOf(domain.OutcomeEmptyMessage), nil
	}
	if utf8.RuneCountInString(body) > constants.MessageLimits.MaxAnnouncementLength {
		return domain.Rejected(domain.OutcomeInvalidArgument, domain.ReasonAnnouncementLong), nil
	}
	if !actor.HasGroup() {
		return &domain.Result{Outcome: domain.OutcomeInvalidArgument, Reason: "member has no group", Member: actor}, nil
	}
	if err := s.ensureGroup(ctx, "publish", actor); err != nil {
		return nil, err
	}

	a, err := s.board.Set(ctx, actor.GroupName, body, actor.ID)
	if err != nil {
		return nil, s.fail("publish", err, zap.String("group", actor.GroupName))
	}
	return &domain.Result{Outcome: domain.OutcomeOK, Member: actor, Announcement: a}, nil
}

// ReadAnnouncement returns the actor's group announcement. Outcomes: OK,
// NotRegistered, Empty.
func (s *Service) ReadAnnouncement(ctx context.Context, req ReadRequest) (res *domain.Result, err error) {
	defer s.observe("read", time.Now(), &res)
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	actor, rejected, err := s.resolveActor(ctx, "read", req.ActorID)
	if rejected != nil || err != nil {
		return rejected, err
	}
	if !actor.HasGroup() {
		return &domain.Result{Outcome: domain.OutcomeEmpty, Member: actor}, nil
	}
	if err := s.ensureGroup(ctx, "read", actor); err != nil {
		return nil, err
	}

	a, ok, err := s.board.Get(ctx, actor.GroupName)
	if err != nil {
		return nil, s.fail("read", err, zap.String("group", actor.GroupName))
	}
	if !ok {
		return &domain.Result{Outcome: domain.OutcomeEmpty, Member: actor}, nil
	}
	return &domain.Result{Outcome: domain.OutcomeOK, Member: actor, Announcement: a}, nil
}

// ClearAnnouncement empties the actor's group slot. Clearing an empty slot
// reports OutcomeEmpty.
func (s *Service) ClearAnnouncement(ctx context.Context, req ClearRequest) (res *domain.Result, err error) {
	defer s.observe("clear", time.Now(), &res)
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	actor, rejected, err := s.resolveActor(ctx, "clear", req.ActorID)
	if rejected != nil || err != nil {
		return rejected, err
	}
	if !actor.IsLeader {
		return domain.Rejected(domain.OutcomeForbidden, "only a group leader can clear"), nil
	}
	if !actor.HasGroup() {
		return &domain.Result{Outcome: domain.OutcomeInvalidArgument, Reason: "member has no group", Member: actor}, nil
	}

	removed, err := s.board.Clear(ctx, actor.GroupName)
	if err != nil {
		return nil, s.fail("clear", err, zap.String("group", actor.GroupName))
	}
	if !removed {
		return &domain.Result{Outcome: domain.OutcomeEmpty, Member: actor}, nil
	}
	return &domain.Result{Outcome: domain.OutcomeOK, Member: actor}, nil
}

// CreateGroup registers a new group name. Outcomes: OK, Forbidden (not the
// administrator), InvalidArgument (blank, whitespace or over-long name),
// AlreadyExists.
func (s *Service) CreateGroup(ctx context.Context, req CreateGroupRequest) (res *domain.Result, err error) {
	defer s.observe("create_group", time.Now(), &res)
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if !s.IsAdmin(req.ActorID) {
		return domain.Rejected(domain.OutcomeForbidden, "only the administrator can create groups"), nil
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Rejected(domain.OutcomeInvalidArgument, "group name is required"), nil
	}
	// Register takes the group as a single word.
	if strings.ContainsFunc(name, unicode.IsSpace) {
		return domain.Rejected(domain.OutcomeInvalidArgument, domain.ReasonGroupNameSpace), nil
	}
	if utf8.RuneCountInString(name) > constants.MessageLimits.MaxGroupNameLength {
		return domain.Rejected(domain.OutcomeInvalidArgument, domain.ReasonGroupNameTooLong), nil
	}

	g, err := s.groups.Create(ctx, name, req.ActorID)
	if group.IsAlreadyExists(err) {
		return domain.ResultOf(domain.OutcomeAlreadyExists), nil
	}
	if err != nil {
		return nil, s.fail("create_group", err, zap.String("group", name))
	}
	return &domain.Result{Outcome: domain.OutcomeOK, Group: g}, nil
}

// ListGroups returns every group. Outcome: OK.
func (s *Service) ListGroups(ctx context.Context) (res *domain.Result, err error) {
	defer s.observe("list_groups", time.Now(), &res)
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	groups, err := s.groups.List(ctx)
	if err != nil {
		return nil, s.fail("list_groups", err)
	}
	return &domain.Result{Outcome: domain.OutcomeOK, Groups: groups}, nil
}

// resolveActor loads the acting member. A missing member yields a
// NotRegistered result instead of an error.
func (s *Service) resolveActor(ctx context.Context, op string, id domain.MemberID) (*domain.Member, *domain.Result, error) {
	m, err := s.members.Lookup(ctx, id)
	if member.IsNotFound(err) {
		return nil, domain.ResultOf(domain.OutcomeNotRegistered), nil
	}
	if err != nil {
		return nil, nil, s.fail(op, err, zap.Int64("actor_id", int64(id)))
	}
	return m, nil, nil
}

// ensureGroup reports corruption when a member points at a group the registry
// does not know.
func (s *Service) ensureGroup(ctx context.Context, op string, m *domain.Member) error {
	exists, err := s.groups.Exists(ctx, m.GroupName)
	if err != nil {
		return s.fail(op, err, zap.String("group", m.GroupName))
	}
	if exists {
		return nil
	}
	return s.fail(op, errors.NewCorruptionError("member references unknown group", map[string]any{
		"member_id": int64(m.ID),
		"group":     m.GroupName,
	}))
}

// fail classifies an unexpected component error. Corruption passes through and
// is logged at error level; everything else becomes a transient error.
func (s *Service) fail(op string, err error, fields ...zap.Field) error {
	fields = append(fields, zap.String("operation", op), zap.Error(err))
	if errors.IsCorruption(err) {
		s.logger.Error("Storage corruption detected", fields...)
		return err
	}
	s.logger.Warn("Storage operation failed", fields...)
	if errors.IsCode(err, errors.CodeTransient) {
		return err
	}
	return errors.NewTransientError(op, err)
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.cfg.StorageTimeout)
}

func (s *Service) observe(op string, start time.Time, res **domain.Result) {
	outcome := "error"
	if *res != nil {
		outcome = (*res).Outcome.String()
	}
	s.metrics.ObserveOperation(op, outcome, start)
}
