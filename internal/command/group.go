package command

import (
	"context"

	"github.com/kapu/group-notice-bot/internal/domain"
	"github.com/kapu/group-notice-bot/internal/service/directory"
)

// NewGroupCommand is restricted to the administrator; the directory service
// enforces the check.
type NewGroupCommand struct {
	deps *Dependencies
}

func NewNewGroupCommand(deps *Dependencies) *NewGroupCommand {
	return &NewGroupCommand{deps: deps}
}

func (c *NewGroupCommand) Name() string {
	return domain.CommandNewGroup.String()
}

func (c *NewGroupCommand) Description() string {
	return "새 그룹을 생성합니다 (관리자)"
}

func (c *NewGroupCommand) Execute(ctx context.Context, cmdCtx *domain.CommandContext, params map[string]any) error {
	res, err := c.deps.Directory.CreateGroup(ctx, directory.CreateGroupRequest{
		ActorID: cmdCtx.SenderID,
		Name:    stringParam(params, "name"),
	})
	if err != nil {
		return c.deps.replyFailure(cmdCtx, c.Name(), err)
	}
	return c.deps.SendMessage(cmdCtx.Room, c.deps.Formatter.FormatCreateGroup(res))
}
