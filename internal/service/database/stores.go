package database

import (
	"context"
	"database/sql"
	stderrors "errors"
	"time"

	"github.com/kapu/group-notice-bot/internal/domain"
	"github.com/kapu/group-notice-bot/pkg/errors"
)

// MemberStore persists members. Create relies on ON CONFLICT DO NOTHING so
// uniqueness is enforced by the primary key in a single statement.
type MemberStore struct {
	svc *Service
}

func NewMemberStore(svc *Service) *MemberStore {
	return &MemberStore{svc: svc}
}

func (s *MemberStore) Create(ctx context.Context, m *domain.Member) error {
	res, err := s.svc.db.ExecContext(ctx, s.svc.Rebind(`
		INSERT INTO members (id, group_name, is_leader, registered_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING`),
		int64(m.ID), m.GroupName, m.IsLeader, toMillis(m.RegisteredAt),
	)
	if err != nil {
		return errors.NewDatabaseError("insert", "members", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.NewDatabaseError("insert", "members", err)
	}
	if n == 0 {
		return errors.AlreadyRegistered(int64(m.ID))
	}
	return nil
}

func (s *MemberStore) Get(ctx context.Context, id domain.MemberID) (*domain.Member, error) {
	row := s.svc.db.QueryRowContext(ctx, s.svc.Rebind(`
		SELECT id, group_name, is_leader, registered_at
		FROM members WHERE id = $1`), int64(id))

	m, err := scanMember(row)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NotFound("member", int64(id))
	}
	if err != nil {
		return nil, errors.NewDatabaseError("select", "members", err)
	}
	return m, nil
}

func (s *MemberStore) Delete(ctx context.Context, id domain.MemberID) error {
	res, err := s.svc.db.ExecContext(ctx, s.svc.Rebind(`DELETE FROM members WHERE id = $1`), int64(id))
	if err != nil {
		return errors.NewDatabaseError("delete", "members", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.NewDatabaseError("delete", "members", err)
	}
	if n == 0 {
		return errors.NotFound("member", int64(id))
	}
	return nil
}

func (s *MemberStore) List(ctx context.Context) ([]*domain.Member, error) {
	return s.query(ctx, `
		SELECT id, group_name, is_leader, registered_at
		FROM members ORDER BY id`)
}

func (s *MemberStore) ListByGroup(ctx context.Context, groupName string) ([]*domain.Member, error) {
	return s.query(ctx, s.svc.Rebind(`
		SELECT id, group_name, is_leader, registered_at
		FROM members WHERE group_name = $1 ORDER BY id`), groupName)
}

func (s *MemberStore) query(ctx context.Context, query string, args ...any) ([]*domain.Member, error) {
	rows, err := s.svc.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewDatabaseError("select", "members", err)
	}
	defer rows.Close()

	members := make([]*domain.Member, 0)
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, errors.NewDatabaseError("scan", "members", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDatabaseError("select", "members", err)
	}
	return members, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMember(row scanner) (*domain.Member, error) {
	var (
		id           int64
		m            domain.Member
		registeredAt int64
	)
	if err := row.Scan(&id, &m.GroupName, &m.IsLeader, &registeredAt); err != nil {
		return nil, err
	}
	m.ID = domain.MemberID(id)
	m.RegisteredAt = fromMillis(registeredAt)
	return &m, nil
}

type GroupStore struct {
	svc *Service
}

func NewGroupStore(svc *Service) *GroupStore {
	return &GroupStore{svc: svc}
}

func (s *GroupStore) Create(ctx context.Context, g *domain.Group) error {
	res, err := s.svc.db.ExecContext(ctx, s.svc.Rebind(`
		INSERT INTO notice_groups (name, created_by, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO NOTHING`),
		g.Name, int64(g.CreatedBy), toMillis(g.CreatedAt),
	)
	if err != nil {
		return errors.NewDatabaseError("insert", "notice_groups", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.NewDatabaseError("insert", "notice_groups", err)
	}
	if n == 0 {
		return errors.AlreadyExists("group", g.Name)
	}
	return nil
}

func (s *GroupStore) Exists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := s.svc.db.QueryRowContext(ctx, s.svc.Rebind(
		`SELECT EXISTS (SELECT 1 FROM notice_groups WHERE name = $1)`), name).Scan(&exists)
	if err != nil {
		return false, errors.NewDatabaseError("select", "notice_groups", err)
	}
	return exists, nil
}

func (s *GroupStore) List(ctx context.Context) ([]*domain.Group, error) {
	rows, err := s.svc.db.QueryContext(ctx, `SELECT name, created_by, created_at FROM notice_groups ORDER BY name`)
	if err != nil {
		return nil, errors.NewDatabaseError("select", "notice_groups", err)
	}
	defer rows.Close()

	groups := make([]*domain.Group, 0)
	for rows.Next() {
		var (
			g         domain.Group
			createdBy int64
			createdAt int64
		)
		if err := rows.Scan(&g.Name, &createdBy, &createdAt); err != nil {
			return nil, errors.NewDatabaseError("scan", "notice_groups", err)
		}
		g.CreatedBy = domain.MemberID(createdBy)
		g.CreatedAt = fromMillis(createdAt)
		groups = append(groups, &g)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDatabaseError("select", "notice_groups", err)
	}
	return groups, nil
}

// AnnouncementStore keeps one row per group. Put is a single upsert, so a
// reader sees either the old row or the new one.
type AnnouncementStore struct {
	svc *Service
}

func NewAnnouncementStore(svc *Service) *AnnouncementStore {
	return &AnnouncementStore{svc: svc}
}

func (s *AnnouncementStore) Put(ctx context.Context, a *domain.Announcement) error {
	_, err := s.svc.db.ExecContext(ctx, s.svc.Rebind(`
		INSERT INTO announcements (group_name, id, body, author_id, published_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (group_name) DO UPDATE SET
			id = excluded.id,
			body = excluded.body,
			author_id = excluded.author_id,
			published_at = excluded.published_at`),
		a.GroupName, a.ID, a.Body, int64(a.AuthorID), toMillis(a.PublishedAt),
	)
	if err != nil {
		return errors.NewDatabaseError("upsert", "announcements", err)
	}
	return nil
}

func (s *AnnouncementStore) Get(ctx context.Context, groupName string) (*domain.Announcement, error) {
	var (
		a           domain.Announcement
		authorID    int64
		publishedAt int64
	)
	err := s.svc.db.QueryRowContext(ctx, s.svc.Rebind(`
		SELECT group_name, id, body, author_id, published_at
		FROM announcements WHERE group_name = $1`), groupName).
		Scan(&a.GroupName, &a.ID, &a.Body, &authorID, &publishedAt)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NotFound("announcement", groupName)
	}
	if err != nil {
		return nil, errors.NewDatabaseError("select", "announcements", err)
	}
	a.AuthorID = domain.MemberID(authorID)
	a.PublishedAt = fromMillis(publishedAt)
	return &a, nil
}

func (s *AnnouncementStore) Delete(ctx context.Context, groupName string) (bool, error) {
	res, err := s.svc.db.ExecContext(ctx, s.svc.Rebind(`DELETE FROM announcements WHERE group_name = $1`), groupName)
	if err != nil {
		return false, errors.NewDatabaseError("delete", "announcements", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.NewDatabaseError("delete", "announcements", err)
	}
	return n > 0, nil
}

func toMillis(t time.Time) int64 {
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
