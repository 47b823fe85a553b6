package adapter

import (
	stderrors "errors"
	"strings"
	"testing"
	"time"

	"github.com/kapu/group-notice-bot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplatesParse(t *testing.T) {
	_, err := loadFormatterTemplates()
	require.NoError(t, err)
}

func TestFormatHelpUsesPrefix(t *testing.T) {
	f := NewResponseFormatter("!")
	help := f.FormatHelp()
	assert.Contains(t, help, "!register")
	assert.Contains(t, help, "!create_message")
	assert.NotContains(t, help, "❌")

	assert.Contains(t, f.FormatStart(), "!register ECO-22")
}

func TestFormatRegister(t *testing.T) {
	f := NewResponseFormatter("/")

	ok := &domain.Result{Outcome: domain.OutcomeOK, Member: domain.NewMember(1, "ECO-22", true)}
	out := f.FormatRegister(ok)
	assert.Contains(t, out, "ECO-22")
	assert.Contains(t, out, "그룹장: 예")

	assert.Contains(t, f.FormatRegister(domain.ResultOf(domain.OutcomeAlreadyRegistered)), "/unregister")
	assert.Contains(t, f.FormatRegister(domain.Rejected(domain.OutcomeInvalidArgument, domain.ReasonUnknownGroup)), "/groups")
	assert.Contains(t, f.FormatRegister(domain.Rejected(domain.OutcomeInvalidArgument, "group name is required")), "/register ECO-22")
}

func TestFormatMemberList(t *testing.T) {
	f := NewResponseFormatter("/")

	empty := f.FormatMemberList(&domain.Result{Outcome: domain.OutcomeOK})
	assert.Contains(t, empty, "없습니다")

	res := &domain.Result{Outcome: domain.OutcomeOK, Members: []*domain.Member{
		domain.NewMember(1, "A", true),
		domain.NewMember(2, "", false),
	}}
	out := f.FormatMemberList(res)
	assert.Contains(t, out, "2명")
	assert.Contains(t, out, "ID: 1 | 그룹: A | 그룹장: 예")
	assert.Contains(t, out, "ID: 2 | 그룹: (없음) | 그룹장: 아니오")
}

func TestFormatGroupList(t *testing.T) {
	f := NewResponseFormatter("/")
	out := f.FormatGroupList(&domain.Result{Outcome: domain.OutcomeOK, Groups: []*domain.Group{
		domain.NewGroup("A", 1), domain.NewGroup("B", 1),
	}})
	assert.Contains(t, out, "1. A")
	assert.Contains(t, out, "2. B")
}

func TestFormatAnnouncement(t *testing.T) {
	f := NewResponseFormatter("/")
	a := domain.NewAnnouncement("ECO-22", "exam moved", 1)
	a.PublishedAt = time.Date(2026, 3, 2, 0, 30, 0, 0, time.UTC)

	out := f.FormatAnnouncement(&domain.Result{Outcome: domain.OutcomeOK, Announcement: a})
	assert.Contains(t, out, "[ECO-22]")
	assert.Contains(t, out, "exam moved")
	assert.Contains(t, out, "2026-03-02 09:30")

	empty := f.FormatAnnouncement(&domain.Result{Outcome: domain.OutcomeEmpty, Member: domain.NewMember(2, "ECO-22", false)})
	assert.Contains(t, empty, "ECO-22")

	assert.Contains(t, f.FormatAnnouncement(domain.ResultOf(domain.OutcomeNotRegistered)), "/register")
}

func TestFormatOutcomeRejections(t *testing.T) {
	f := NewResponseFormatter("/")
	assert.Contains(t, f.FormatPublish(domain.ResultOf(domain.OutcomeForbidden)), "권한")
	assert.Contains(t, f.FormatPublish(domain.ResultOf(domain.OutcomeEmptyMessage)), "/create_message")
	assert.Contains(t, f.FormatClear(domain.ResultOf(domain.OutcomeEmpty)), "없습니다")
	assert.Contains(t, f.FormatCreateGroup(domain.ResultOf(domain.OutcomeAlreadyExists)), "이미")

	assert.Contains(t, f.FormatCreateGroup(domain.Rejected(domain.OutcomeInvalidArgument, domain.ReasonGroupNameSpace)), "공백")
	assert.Contains(t, f.FormatCreateGroup(domain.Rejected(domain.OutcomeInvalidArgument, domain.ReasonGroupNameTooLong)), "64자")
	assert.Contains(t, f.FormatCreateGroup(domain.ResultOf(domain.OutcomeInvalidArgument)), "입력해 주세요")
	assert.Contains(t, f.FormatPublish(domain.Rejected(domain.OutcomeInvalidArgument, domain.ReasonAnnouncementLong)), "2000자")

	noGroup := &domain.Result{Outcome: domain.OutcomeInvalidArgument, Member: domain.NewMember(1, "", true)}
	assert.Contains(t, f.FormatPublish(noGroup), "소속 그룹")
}

func TestFormatBroadcast(t *testing.T) {
	f := NewResponseFormatter("/")
	a := domain.NewAnnouncement("A", "hello", 1)
	assert.True(t, strings.HasPrefix(f.FormatBroadcast(a), "📢 [A]"))

	report := &domain.BroadcastReport{
		Delivered: []domain.MemberID{2, 3},
		Failed:    map[domain.MemberID]error{4: stderrors.New("x")},
	}
	out := f.FormatBroadcastReport(report)
	assert.Contains(t, out, "3명 중 2명")
	assert.Contains(t, out, "전달 실패 1명")

	clean := f.FormatBroadcastReport(&domain.BroadcastReport{Delivered: []domain.MemberID{2}})
	assert.NotContains(t, clean, "실패")
}
