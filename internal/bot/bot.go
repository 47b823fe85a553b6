package bot

import (
	"context"
	"fmt"
	"runtime/debug"
	"strconv"
	"sync"
	"time"

	"github.com/kapu/group-notice-bot/internal/adapter"
	"github.com/kapu/group-notice-bot/internal/command"
	"github.com/kapu/group-notice-bot/internal/config"
	"github.com/kapu/group-notice-bot/internal/constants"
	"github.com/kapu/group-notice-bot/internal/domain"
	"github.com/kapu/group-notice-bot/internal/iris"
	"github.com/kapu/group-notice-bot/internal/util"
	"go.uber.org/zap"
)

// MessageClient is the outbound half of Iris the bot needs.
type MessageClient interface {
	SendMessage(ctx context.Context, room, message string) error
	Ping(ctx context.Context) bool
}

// ReadinessChecker is implemented by backends that need a warm-up wait, such
// as the Redis cache.
type ReadinessChecker interface {
	WaitUntilReady(ctx context.Context, timeout time.Duration) error
}

type Dependencies struct {
	Config         *config.Config
	Logger         *zap.Logger
	Client         MessageClient
	WebSocket      *iris.WebSocket
	Storage        ReadinessChecker
	MessageAdapter *adapter.MessageAdapter
	Formatter      *adapter.ResponseFormatter
	Directory      command.Directory
}

type Bot struct {
	config         *config.Config
	logger         *zap.Logger
	client         MessageClient
	ws             *iris.WebSocket
	storage        ReadinessChecker
	messageAdapter *adapter.MessageAdapter
	formatter      *adapter.ResponseFormatter
	directory      command.Directory

	registry   *command.Registry
	dispatcher command.Dispatcher

	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewBot(deps *Dependencies) (*Bot, error) {
	if deps == nil {
		return nil, fmt.Errorf("bot dependencies must not be nil")
	}
	if deps.Config == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}
	if deps.Client == nil {
		return nil, fmt.Errorf("iris client must not be nil")
	}
	if deps.MessageAdapter == nil {
		return nil, fmt.Errorf("message adapter must not be nil")
	}
	if deps.Formatter == nil {
		return nil, fmt.Errorf("formatter must not be nil")
	}
	if deps.Directory == nil {
		return nil, fmt.Errorf("directory service must not be nil")
	}

	b := &Bot{
		config:         deps.Config,
		logger:         deps.Logger,
		client:         deps.Client,
		ws:             deps.WebSocket,
		storage:        deps.Storage,
		messageAdapter: deps.MessageAdapter,
		formatter:      deps.Formatter,
		directory:      deps.Directory,
		stopCh:         make(chan struct{}),
	}
	b.initializeCommands()

	return b, nil
}

func (b *Bot) initializeCommands() {
	deps := &command.Dependencies{
		Directory:   b.directory,
		Formatter:   b.formatter,
		SendMessage: b.sendMessage,
		SendError:   b.sendError,
		Logger:      b.logger,
	}
	if b.config.Broadcast.Enabled {
		deps.Broadcaster = &irisBroadcaster{client: b.client, formatter: b.formatter}
	}

	b.registry = command.NewRegistry()
	command.RegisterBuiltins(b.registry, deps)
	b.dispatcher = command.NewSequentialDispatcher(b.registry, nil)

	b.logger.Info("Commands registered", zap.Strings("commands", b.registry.Names()))
}

// Start blocks until ctx ends, Shutdown is called, or the websocket gives up
// reconnecting.
func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info("Starting group notice bot...")

	if b.storage != nil {
		if err := b.storage.WaitUntilReady(ctx, constants.RedisConfig.ReadyTimeout); err != nil {
			return fmt.Errorf("storage not ready: %w", err)
		}
	}

	if !b.client.Ping(ctx) {
		b.logger.Warn("Iris server is not reachable, replies will fail until it comes back")
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-b.stopCh:
			cancel()
		case <-runCtx.Done():
		}
	}()

	if b.ws == nil {
		b.logger.Info("Bot started (webhook mode)")
		<-runCtx.Done()
		return nil
	}

	b.ws.OnMessage(b.HandleMessage)
	b.ws.OnStateChange(func(state iris.WebSocketState) {
		b.logger.Debug("WebSocket state changed", zap.String("state", state.String()))
	})
	b.logger.Info("Bot started (websocket mode)")
	return b.ws.Run(runCtx)
}

// HandleMessage parses one inbound chat message and runs the command it names.
// Messages without a numeric sender or outside the allowed rooms are ignored.
func (b *Bot) HandleMessage(ctx context.Context, message *iris.Message) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Panic in HandleMessage",
				zap.Any("panic", r),
				zap.String("stack", string(debug.Stack())),
			)
		}
	}()

	if message == nil {
		return
	}
	if !b.config.Kakao.AllowsRoom(message.Room) {
		return
	}

	senderID, ok := message.SenderID()
	if !ok {
		b.logger.Debug("Ignoring message without sender id", zap.String("room", message.Room))
		return
	}

	parsed := b.messageAdapter.ParseMessage(message)
	if parsed == nil || parsed.Type == domain.CommandUnknown {
		return
	}

	cmdCtx := domain.NewCommandContext(message.Room, domain.MemberID(senderID), message.SenderName(), message.Msg)

	b.logger.Info("Command received",
		zap.String("command", parsed.Type.String()),
		zap.String("room", message.Room),
		zap.Int64("sender_id", senderID),
		zap.String("message", util.TruncateString(message.Msg, 80)),
	)

	event := command.CommandEvent{Type: parsed.Type, Params: parsed.Params}
	if _, err := b.dispatcher.Publish(ctx, cmdCtx, event); err != nil {
		b.logger.Error("Command execution failed",
			zap.String("command", parsed.Type.String()),
			zap.Int64("sender_id", senderID),
			zap.Error(err),
		)
	}
}

func (b *Bot) sendMessage(room, message string) error {
	ctx, cancel := context.WithTimeout(context.Background(), constants.APIConfig.IrisTimeout)
	defer cancel()
	return b.client.SendMessage(ctx, room, message)
}

func (b *Bot) sendError(room, message string) error {
	return b.sendMessage(room, b.formatter.FormatError(message))
}

// Shutdown stops Start. It is safe to call more than once.
func (b *Bot) Shutdown(_ context.Context) error {
	b.stopOnce.Do(func() {
		b.logger.Info("Shutting down bot...")
		close(b.stopCh)
	})
	return nil
}

// irisBroadcaster delivers an announcement to a member's private room, which
// Iris addresses by the member's user id.
type irisBroadcaster struct {
	client    MessageClient
	formatter *adapter.ResponseFormatter
}

func (s *irisBroadcaster) Send(ctx context.Context, recipient domain.MemberID, a *domain.Announcement) error {
	room := strconv.FormatInt(int64(recipient), 10)
	return s.client.SendMessage(ctx, room, s.formatter.FormatBroadcast(a))
}
