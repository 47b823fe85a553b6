package command

import (
	"context"

	"github.com/kapu/group-notice-bot/internal/adapter"
	"github.com/kapu/group-notice-bot/internal/domain"
	"github.com/kapu/group-notice-bot/internal/service/directory"
	"github.com/kapu/group-notice-bot/pkg/errors"
	"go.uber.org/zap"
)

type Command interface {
	Name() string
	Description() string
	Execute(ctx context.Context, cmdCtx *domain.CommandContext, params map[string]any) error
}

// Directory is the subset of the directory service the chat commands use.
type Directory interface {
	Register(ctx context.Context, req directory.RegisterRequest) (*domain.Result, error)
	Unregister(ctx context.Context, req directory.UnregisterRequest) (*domain.Result, error)
	ListAll(ctx context.Context) (*domain.Result, error)
	PublishAnnouncement(ctx context.Context, req directory.PublishRequest) (*domain.Result, error)
	ReadAnnouncement(ctx context.Context, req directory.ReadRequest) (*domain.Result, error)
	ClearAnnouncement(ctx context.Context, req directory.ClearRequest) (*domain.Result, error)
	CreateGroup(ctx context.Context, req directory.CreateGroupRequest) (*domain.Result, error)
	ListGroups(ctx context.Context) (*domain.Result, error)
	Broadcast(ctx context.Context, a *domain.Announcement, sender directory.Sender) (*domain.BroadcastReport, error)
}

type Dependencies struct {
	Directory   Directory
	Formatter   *adapter.ResponseFormatter
	Broadcaster directory.Sender
	SendMessage func(room, message string) error
	SendError   func(room, message string) error
	Logger      *zap.Logger
}

// replyFailure tells the user the request could not be served and hands the
// error back to the caller for logging.
func (d *Dependencies) replyFailure(cmdCtx *domain.CommandContext, op string, err error) error {
	message := "요청을 처리하지 못했습니다. 관리자에게 문의해 주세요."
	if errors.IsTransient(err) {
		message = "일시적인 오류가 발생했습니다. 잠시 후 다시 시도해 주세요."
	}
	if sendErr := d.SendError(cmdCtx.Room, message); sendErr != nil {
		d.Logger.Warn("Failed to send error reply", zap.String("command", op), zap.Error(sendErr))
	}
	return err
}

func stringParam(params map[string]any, key string) string {
	if v, ok := params[key].(string); ok {
		return v
	}
	return ""
}
