package database

import (
	"context"
	"sync"
	"testing"

	"github.com/kapu/group-notice-bot/internal/domain"
	"github.com/kapu/group-notice-bot/pkg/errors"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type SQLiteStoreSuite struct {
	suite.Suite
	ctx           context.Context
	svc           *Service
	members       *MemberStore
	groups        *GroupStore
	announcements *AnnouncementStore
}

func TestSQLiteStoreSuite(t *testing.T) {
	suite.Run(t, new(SQLiteStoreSuite))
}

func (s *SQLiteStoreSuite) SetupTest() {
	s.ctx = context.Background()
	svc, err := NewSQLiteService(":memory:", zap.NewNop())
	s.Require().NoError(err)
	s.Require().NoError(svc.Migrate(s.ctx))
	s.Require().NoError(svc.Migrate(s.ctx), "migrate is idempotent")

	s.svc = svc
	s.members = NewMemberStore(svc)
	s.groups = NewGroupStore(svc)
	s.announcements = NewAnnouncementStore(svc)
}

func (s *SQLiteStoreSuite) TearDownTest() {
	s.Require().NoError(s.svc.Close())
}

func (s *SQLiteStoreSuite) TestRebind() {
	s.Equal("SELECT ?1, ?2", s.svc.Rebind("SELECT $1, $2"))
	pg := &Service{dialect: DialectPostgres}
	s.Equal("SELECT $1", pg.Rebind("SELECT $1"))
}

func (s *SQLiteStoreSuite) TestMemberRoundTrip() {
	m := domain.NewMember(42, "ECO-22", true)
	s.Require().NoError(s.members.Create(s.ctx, m))

	got, err := s.members.Get(s.ctx, 42)
	s.Require().NoError(err)
	s.Equal(domain.MemberID(42), got.ID)
	s.Equal("ECO-22", got.GroupName)
	s.True(got.IsLeader)
	s.Equal(m.RegisteredAt.UnixMilli(), got.RegisteredAt.UnixMilli())
}

func (s *SQLiteStoreSuite) TestMemberCreateOnly() {
	s.Require().NoError(s.members.Create(s.ctx, domain.NewMember(1, "A", false)))
	err := s.members.Create(s.ctx, domain.NewMember(1, "B", true))
	s.ErrorIs(err, errors.ErrAlreadyRegistered)

	got, err := s.members.Get(s.ctx, 1)
	s.Require().NoError(err)
	s.Equal("A", got.GroupName)
	s.False(got.IsLeader)
}

func (s *SQLiteStoreSuite) TestMemberDelete() {
	s.ErrorIs(s.members.Delete(s.ctx, 1), errors.ErrNotFound)

	s.Require().NoError(s.members.Create(s.ctx, domain.NewMember(1, "A", false)))
	s.Require().NoError(s.members.Delete(s.ctx, 1))

	_, err := s.members.Get(s.ctx, 1)
	s.ErrorIs(err, errors.ErrNotFound)
}

func (s *SQLiteStoreSuite) TestMemberLists() {
	for _, m := range []*domain.Member{
		domain.NewMember(3, "A", false),
		domain.NewMember(1, "A", true),
		domain.NewMember(2, "B", false),
	} {
		s.Require().NoError(s.members.Create(s.ctx, m))
	}

	all, err := s.members.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(all, 3)
	s.Equal(domain.MemberID(1), all[0].ID)

	inA, err := s.members.ListByGroup(s.ctx, "A")
	s.Require().NoError(err)
	s.Require().Len(inA, 2)
	s.Equal(domain.MemberID(1), inA[0].ID)
	s.Equal(domain.MemberID(3), inA[1].ID)

	none, err := s.members.ListByGroup(s.ctx, "Z")
	s.Require().NoError(err)
	s.Empty(none)
}

func (s *SQLiteStoreSuite) TestConcurrentCreateOneWins() {
	const workers = 20
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			if err := s.members.Create(s.ctx, domain.NewMember(9, "A", false)); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	s.Equal(1, successes)
}

func (s *SQLiteStoreSuite) TestGroups() {
	ok, err := s.groups.Exists(s.ctx, "A")
	s.Require().NoError(err)
	s.False(ok)

	s.Require().NoError(s.groups.Create(s.ctx, domain.NewGroup("B", 100)))
	s.Require().NoError(s.groups.Create(s.ctx, domain.NewGroup("A", 100)))
	s.ErrorIs(s.groups.Create(s.ctx, domain.NewGroup("A", 7)), errors.ErrAlreadyExists)

	ok, err = s.groups.Exists(s.ctx, "A")
	s.Require().NoError(err)
	s.True(ok)

	list, err := s.groups.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal("A", list[0].Name)
	s.Equal(domain.MemberID(100), list[0].CreatedBy)
}

func (s *SQLiteStoreSuite) TestAnnouncementUpsert() {
	_, err := s.announcements.Get(s.ctx, "A")
	s.ErrorIs(err, errors.ErrNotFound)

	first := domain.NewAnnouncement("A", "m1", 1)
	second := domain.NewAnnouncement("A", "m2", 2)
	s.Require().NoError(s.announcements.Put(s.ctx, first))
	s.Require().NoError(s.announcements.Put(s.ctx, second))

	got, err := s.announcements.Get(s.ctx, "A")
	s.Require().NoError(err)
	s.Equal("m2", got.Body)
	s.Equal(second.ID, got.ID)
	s.Equal(domain.MemberID(2), got.AuthorID)

	removed, err := s.announcements.Delete(s.ctx, "A")
	s.Require().NoError(err)
	s.True(removed)

	removed, err = s.announcements.Delete(s.ctx, "A")
	s.Require().NoError(err)
	s.False(removed)
}

func (s *SQLiteStoreSuite) TestClosedDatabaseIsTransient() {
	s.Require().NoError(s.svc.Close())
	_, err := s.members.Get(s.ctx, 1)
	s.True(errors.IsTransient(err))
	s.False(errors.IsCorruption(err))
}

func (s *SQLiteStoreSuite) TestOpenRequiresPath() {
	_, err := NewSQLiteService("  ", zap.NewNop())
	s.Error(err)
}
