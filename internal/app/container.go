package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/kapu/group-notice-bot/internal/adapter"
	"github.com/kapu/group-notice-bot/internal/bot"
	"github.com/kapu/group-notice-bot/internal/config"
	"github.com/kapu/group-notice-bot/internal/constants"
	"github.com/kapu/group-notice-bot/internal/domain"
	"github.com/kapu/group-notice-bot/internal/iris"
	"github.com/kapu/group-notice-bot/internal/server"
	"github.com/kapu/group-notice-bot/internal/service/announcement"
	"github.com/kapu/group-notice-bot/internal/service/directory"
	"github.com/kapu/group-notice-bot/internal/service/group"
	"github.com/kapu/group-notice-bot/internal/service/member"
	"github.com/kapu/group-notice-bot/internal/service/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

// Container bundles the assembled runtime components.
type Container struct {
	Config    *config.Config
	Logger    *zap.Logger
	Storage   *Storage
	Directory *directory.Service
	Registry  *prometheus.Registry
	Bot       *bot.Bot
	WebSocket *iris.WebSocket
	HTTP      *http.Server
}

// Close releases the storage backend.
func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	return c.Storage.Close()
}

// NewDirectoryService composes the directory service on top of an opened
// backend.
func NewDirectoryService(cfg *config.Config, storage *Storage, m *metrics.Metrics, logger *zap.Logger) *directory.Service {
	return directory.NewService(
		member.NewDirectory(storage.Members, cfg.Directory.CredentialModulus, logger),
		group.NewRegistry(storage.Groups, logger),
		announcement.NewBoard(storage.Announcements, logger),
		directory.Config{
			AdminID:              domain.MemberID(cfg.Directory.AdminID),
			StorageTimeout:       cfg.Storage.Timeout,
			BroadcastConcurrency: cfg.Broadcast.Concurrency,
		},
		m,
		logger,
	)
}

// Build opens storage and wires the directory service, the bot and the HTTP
// server. Nothing is started.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (container *Container, err error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}

	storage, err := OpenStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = storage.Close()
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	dir := NewDirectoryService(cfg, storage, metrics.New(registry), logger)

	irisClient := iris.NewClient(cfg.Iris.BaseURL, logger)
	var irisWS *iris.WebSocket
	if cfg.Iris.WebSocketEnabled {
		irisWS = iris.NewWebSocket(
			cfg.Iris.WSURL,
			constants.WebSocketConfig.MaxReconnectAttempts,
			constants.WebSocketConfig.ReconnectDelay,
			logger,
		)
	}

	deps := &bot.Dependencies{
		Config:         cfg,
		Logger:         logger,
		Client:         irisClient,
		WebSocket:      irisWS,
		MessageAdapter: adapter.NewMessageAdapter(cfg.Bot.Prefix),
		Formatter:      adapter.NewResponseFormatter(cfg.Bot.Prefix),
		Directory:      dir,
	}
	if storage.Cache != nil {
		deps.Storage = storage.Cache
	}
	groupBot, err := bot.NewBot(deps)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize bot: %w", err)
	}

	handler := server.NewHandler(groupBot, registry, storage.Health, logger)
	httpServer := server.New(cfg.HTTP.Addr, server.NewRouter(handler))

	logger.Info("Application assembled",
		zap.String("storage", storage.Backend),
		zap.Bool("websocket", irisWS != nil),
		zap.Bool("broadcast", cfg.Broadcast.Enabled),
		zap.String("http_addr", cfg.HTTP.Addr),
	)

	return &Container{
		Config:    cfg,
		Logger:    logger,
		Storage:   storage,
		Directory: dir,
		Registry:  registry,
		Bot:       groupBot,
		WebSocket: irisWS,
		HTTP:      httpServer,
	}, nil
}
