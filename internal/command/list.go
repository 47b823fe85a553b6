package command

import (
	"context"

	"github.com/kapu/group-notice-bot/internal/domain"
)

type ListMembersCommand struct {
	deps *Dependencies
}

func NewListMembersCommand(deps *Dependencies) *ListMembersCommand {
	return &ListMembersCommand{deps: deps}
}

func (c *ListMembersCommand) Name() string {
	return domain.CommandListMembers.String()
}

func (c *ListMembersCommand) Description() string {
	return "전체 사용자 목록을 표시합니다"
}

func (c *ListMembersCommand) Execute(ctx context.Context, cmdCtx *domain.CommandContext, _ map[string]any) error {
	res, err := c.deps.Directory.ListAll(ctx)
	if err != nil {
		return c.deps.replyFailure(cmdCtx, c.Name(), err)
	}
	return c.deps.SendMessage(cmdCtx.Room, c.deps.Formatter.FormatMemberList(res))
}

type ListGroupsCommand struct {
	deps *Dependencies
}

func NewListGroupsCommand(deps *Dependencies) *ListGroupsCommand {
	return &ListGroupsCommand{deps: deps}
}

func (c *ListGroupsCommand) Name() string {
	return domain.CommandListGroups.String()
}

func (c *ListGroupsCommand) Description() string {
	return "그룹 목록을 표시합니다"
}

func (c *ListGroupsCommand) Execute(ctx context.Context, cmdCtx *domain.CommandContext, _ map[string]any) error {
	res, err := c.deps.Directory.ListGroups(ctx)
	if err != nil {
		return c.deps.replyFailure(cmdCtx, c.Name(), err)
	}
	return c.deps.SendMessage(cmdCtx.Room, c.deps.Formatter.FormatGroupList(res))
}
