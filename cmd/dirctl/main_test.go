package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/kapu/group-notice-bot/internal/adapter"
	"github.com/kapu/group-notice-bot/internal/domain"
	"github.com/kapu/group-notice-bot/internal/service/announcement"
	"github.com/kapu/group-notice-bot/internal/service/directory"
	"github.com/kapu/group-notice-bot/internal/service/group"
	"github.com/kapu/group-notice-bot/internal/service/member"
	"github.com/kapu/group-notice-bot/internal/service/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const admin domain.MemberID = 1000

func newTestDirectory() *directory.Service {
	return directory.NewService(
		member.NewDirectory(memory.NewMemberStore(), 10, nil),
		group.NewRegistry(memory.NewGroupStore(), nil),
		announcement.NewBoard(memory.NewAnnouncementStore(), nil),
		directory.Config{AdminID: admin, StorageTimeout: time.Second},
		nil,
		nil,
	)
}

func run(t *testing.T, dir *directory.Service, actor domain.MemberID, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	require.NoError(t, execute(context.Background(), dir, adapter.NewResponseFormatter("/"), actor, args, &out))
	return out.String()
}

func TestExecuteFlow(t *testing.T) {
	dir := newTestDirectory()

	assert.Contains(t, run(t, dir, admin, "new-group", "ECO-22"), "ECO-22 그룹이 생성되었습니다")
	assert.Contains(t, run(t, dir, 0, "groups"), "1. ECO-22")
	assert.Contains(t, run(t, dir, 42, "register", "ECO-22", "a7"), "그룹장: 예")
	assert.Contains(t, run(t, dir, 42, "publish", "exam", "moved"), "공지가 등록되었습니다")
	assert.Contains(t, run(t, dir, 42, "read"), "exam moved")
	assert.Contains(t, run(t, dir, 0, "members"), "ID: 42 | 그룹: ECO-22")
	assert.Contains(t, run(t, dir, 42, "clear"), "삭제했습니다")
	assert.Contains(t, run(t, dir, 42, "unregister"), "취소되었습니다")
}

func TestExecuteNonAdminNewGroup(t *testing.T) {
	dir := newTestDirectory()
	assert.Contains(t, run(t, dir, 5, "new-group", "X"), "권한이 없습니다")
}

func TestExecuteArgumentErrors(t *testing.T) {
	dir := newTestDirectory()
	f := adapter.NewResponseFormatter("/")
	var out bytes.Buffer

	require.ErrorContains(t, execute(context.Background(), dir, f, 0, []string{"read"}, &out), "requires -as")
	require.ErrorContains(t, execute(context.Background(), dir, f, 1, []string{"register"}, &out), "requires a group")
	require.ErrorContains(t, execute(context.Background(), dir, f, admin, []string{"new-group"}, &out), "requires a name")
	require.ErrorContains(t, execute(context.Background(), dir, f, 1, []string{"bogus"}, &out), "unknown command")
	assert.Empty(t, out.String())
}
