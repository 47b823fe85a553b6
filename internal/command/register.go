package command

import (
	"context"

	"github.com/kapu/group-notice-bot/internal/domain"
	"github.com/kapu/group-notice-bot/internal/service/directory"
)

type RegisterCommand struct {
	deps *Dependencies
}

func NewRegisterCommand(deps *Dependencies) *RegisterCommand {
	return &RegisterCommand{deps: deps}
}

func (c *RegisterCommand) Name() string {
	return domain.CommandRegister.String()
}

func (c *RegisterCommand) Description() string {
	return "그룹에 등록합니다"
}

func (c *RegisterCommand) Execute(ctx context.Context, cmdCtx *domain.CommandContext, params map[string]any) error {
	groupName := stringParam(params, "group")
	if groupName == "" {
		return c.deps.SendMessage(cmdCtx.Room, c.deps.Formatter.FormatRegisterUsage())
	}

	res, err := c.deps.Directory.Register(ctx, directory.RegisterRequest{
		ActorID:    cmdCtx.SenderID,
		GroupName:  groupName,
		Credential: stringParam(params, "credential"),
	})
	if err != nil {
		return c.deps.replyFailure(cmdCtx, c.Name(), err)
	}
	return c.deps.SendMessage(cmdCtx.Room, c.deps.Formatter.FormatRegister(res))
}

type UnregisterCommand struct {
	deps *Dependencies
}

func NewUnregisterCommand(deps *Dependencies) *UnregisterCommand {
	return &UnregisterCommand{deps: deps}
}

func (c *UnregisterCommand) Name() string {
	return domain.CommandUnregister.String()
}

func (c *UnregisterCommand) Description() string {
	return "등록을 취소합니다"
}

func (c *UnregisterCommand) Execute(ctx context.Context, cmdCtx *domain.CommandContext, _ map[string]any) error {
	res, err := c.deps.Directory.Unregister(ctx, directory.UnregisterRequest{ActorID: cmdCtx.SenderID})
	if err != nil {
		return c.deps.replyFailure(cmdCtx, c.Name(), err)
	}
	return c.deps.SendMessage(cmdCtx.Room, c.deps.Formatter.FormatUnregister(res))
}
