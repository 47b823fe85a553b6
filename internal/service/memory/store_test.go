package memory

import (
	"context"
	"testing"

	"github.com/kapu/group-notice-bot/internal/domain"
	"github.com/kapu/group-notice-bot/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type StoreSuite struct {
	suite.Suite
	ctx           context.Context
	members       *MemberStore
	groups        *GroupStore
	announcements *AnnouncementStore
}

func (s *StoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.members = NewMemberStore()
	s.groups = NewGroupStore()
	s.announcements = NewAnnouncementStore()
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) TestMemberCreateOnly() {
	s.Require().NoError(s.members.Create(s.ctx, domain.NewMember(1, "A", false)))

	err := s.members.Create(s.ctx, domain.NewMember(1, "B", true))
	s.Require().ErrorIs(err, errors.ErrAlreadyRegistered)

	got, err := s.members.Get(s.ctx, 1)
	s.Require().NoError(err)
	s.Equal("A", got.GroupName)
}

func (s *StoreSuite) TestMemberCopiesAreIsolated() {
	m := domain.NewMember(1, "A", false)
	s.Require().NoError(s.members.Create(s.ctx, m))
	m.GroupName = "mutated"

	got, err := s.members.Get(s.ctx, 1)
	s.Require().NoError(err)
	s.Equal("A", got.GroupName)

	got.IsLeader = true
	again, _ := s.members.Get(s.ctx, 1)
	s.False(again.IsLeader)
}

func (s *StoreSuite) TestMemberDeleteUnknown() {
	s.ErrorIs(s.members.Delete(s.ctx, 5), errors.ErrNotFound)
	_, err := s.members.Get(s.ctx, 5)
	s.ErrorIs(err, errors.ErrNotFound)
}

func (s *StoreSuite) TestGroupCreateAndList() {
	s.Require().NoError(s.groups.Create(s.ctx, domain.NewGroup("b", 1)))
	s.Require().NoError(s.groups.Create(s.ctx, domain.NewGroup("a", 1)))
	s.ErrorIs(s.groups.Create(s.ctx, domain.NewGroup("a", 2)), errors.ErrAlreadyExists)

	ok, err := s.groups.Exists(s.ctx, "A")
	s.Require().NoError(err)
	s.False(ok, "names are case-sensitive")

	list, err := s.groups.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal("a", list[0].Name)
	s.Equal("b", list[1].Name)
}

func (s *StoreSuite) TestAnnouncementSlot() {
	_, err := s.announcements.Get(s.ctx, "A")
	s.ErrorIs(err, errors.ErrNotFound)

	s.Require().NoError(s.announcements.Put(s.ctx, domain.NewAnnouncement("A", "first", 1)))
	s.Require().NoError(s.announcements.Put(s.ctx, domain.NewAnnouncement("A", "second", 1)))

	got, err := s.announcements.Get(s.ctx, "A")
	s.Require().NoError(err)
	s.Equal("second", got.Body)

	removed, err := s.announcements.Delete(s.ctx, "A")
	s.Require().NoError(err)
	s.True(removed)

	removed, err = s.announcements.Delete(s.ctx, "A")
	s.Require().NoError(err)
	s.False(removed)
}
