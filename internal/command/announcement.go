package command

import (
	"context"

	"github.com/kapu/group-notice-bot/internal/domain"
	"github.com/kapu/group-notice-bot/internal/service/directory"
	"go.uber.org/zap"
)

type ShowMessageCommand struct {
	deps *Dependencies
}

func NewShowMessageCommand(deps *Dependencies) *ShowMessageCommand {
	return &ShowMessageCommand{deps: deps}
}

func (c *ShowMessageCommand) Name() string {
	return domain.CommandShowMessage.String()
}

func (c *ShowMessageCommand) Description() string {
	return "우리 그룹 공지를 표시합니다"
}

func (c *ShowMessageCommand) Execute(ctx context.Context, cmdCtx *domain.CommandContext, _ map[string]any) error {
	res, err := c.deps.Directory.ReadAnnouncement(ctx, directory.ReadRequest{ActorID: cmdCtx.SenderID})
	if err != nil {
		return c.deps.replyFailure(cmdCtx, c.Name(), err)
	}
	return c.deps.SendMessage(cmdCtx.Room, c.deps.Formatter.FormatAnnouncement(res))
}

// CreateMessageCommand publishes a group announcement and, when a broadcaster
// is configured, pushes it to the rest of the group.
type CreateMessageCommand struct {
	deps *Dependencies
}

func NewCreateMessageCommand(deps *Dependencies) *CreateMessageCommand {
	return &CreateMessageCommand{deps: deps}
}

func (c *CreateMessageCommand) Name() string {
	return domain.CommandCreateMessage.String()
}

func (c *CreateMessageCommand) Description() string {
	return "그룹 공지를 작성합니다 (그룹장)"
}

func (c *CreateMessageCommand) Execute(ctx context.Context, cmdCtx *domain.CommandContext, params map[string]any) error {
	res, err := c.deps.Directory.PublishAnnouncement(ctx, directory.PublishRequest{
		ActorID: cmdCtx.SenderID,
		Body:    stringParam(params, "body"),
	})
	if err != nil {
		return c.deps.replyFailure(cmdCtx, c.Name(), err)
	}
	if err := c.deps.SendMessage(cmdCtx.Room, c.deps.Formatter.FormatPublish(res)); err != nil {
		return err
	}
	if !res.OK() || c.deps.Broadcaster == nil {
		return nil
	}

	report, err := c.deps.Directory.Broadcast(ctx, res.Announcement, c.deps.Broadcaster)
	if err != nil {
		// The announcement itself is already stored.
		c.deps.Logger.Warn("Broadcast skipped",
			zap.String("group", res.Announcement.GroupName),
			zap.Error(err),
		)
		return nil
	}
	if report.Attempted() == 0 {
		return nil
	}
	return c.deps.SendMessage(cmdCtx.Room, c.deps.Formatter.FormatBroadcastReport(report))
}

type ClearMessageCommand struct {
	deps *Dependencies
}

func NewClearMessageCommand(deps *Dependencies) *ClearMessageCommand {
	return &ClearMessageCommand{deps: deps}
}

func (c *ClearMessageCommand) Name() string {
	return domain.CommandClearMessage.String()
}

func (c *ClearMessageCommand) Description() string {
	return "그룹 공지를 삭제합니다 (그룹장)"
}

func (c *ClearMessageCommand) Execute(ctx context.Context, cmdCtx *domain.CommandContext, _ map[string]any) error {
	res, err := c.deps.Directory.ClearAnnouncement(ctx, directory.ClearRequest{ActorID: cmdCtx.SenderID})
	if err != nil {
		return c.deps.replyFailure(cmdCtx, c.Name(), err)
	}
	return c.deps.SendMessage(cmdCtx.Room, c.deps.Formatter.FormatClear(res))
}
