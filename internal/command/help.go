package command

import (
	"context"

	"github.com/kapu/group-notice-bot/internal/domain"
)

type HelpCommand struct {
	deps *Dependencies
}

func NewHelpCommand(deps *Dependencies) *HelpCommand {
	return &HelpCommand{deps: deps}
}

func (c *HelpCommand) Name() string {
	return domain.CommandHelp.String()
}

func (c *HelpCommand) Description() string {
	return "도움말을 표시합니다"
}

func (c *HelpCommand) Execute(_ context.Context, cmdCtx *domain.CommandContext, _ map[string]any) error {
	return c.deps.SendMessage(cmdCtx.Room, c.deps.Formatter.FormatHelp())
}

type StartCommand struct {
	deps *Dependencies
}

func NewStartCommand(deps *Dependencies) *StartCommand {
	return &StartCommand{deps: deps}
}

func (c *StartCommand) Name() string {
	return domain.CommandStart.String()
}

func (c *StartCommand) Description() string {
	return "시작 안내를 표시합니다"
}

func (c *StartCommand) Execute(_ context.Context, cmdCtx *domain.CommandContext, _ map[string]any) error {
	return c.deps.SendMessage(cmdCtx.Room, c.deps.Formatter.FormatStart())
}
