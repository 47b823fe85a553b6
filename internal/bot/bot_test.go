package bot

import (
	"context"
	stderrors "errors"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kapu/group-notice-bot/internal/adapter"
	"github.com/kapu/group-notice-bot/internal/command"
	"github.com/kapu/group-notice-bot/internal/config"
	"github.com/kapu/group-notice-bot/internal/domain"
	"github.com/kapu/group-notice-bot/internal/iris"
	"github.com/kapu/group-notice-bot/internal/service/announcement"
	"github.com/kapu/group-notice-bot/internal/service/directory"
	"github.com/kapu/group-notice-bot/internal/service/group"
	"github.com/kapu/group-notice-bot/internal/service/member"
	"github.com/kapu/group-notice-bot/internal/service/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const adminID = 900

type outbound struct {
	room    string
	message string
}

type fakeClient struct {
	mu   sync.Mutex
	sent []outbound
	up   bool
}

func (c *fakeClient) SendMessage(_ context.Context, room, message string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, outbound{room: room, message: message})
	return nil
}

func (c *fakeClient) Ping(context.Context) bool { return c.up }

func (c *fakeClient) to(room string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []string
	for _, m := range c.sent {
		if m.room == room {
			out = append(out, m.message)
		}
	}
	return out
}

type notReady struct{}

func (notReady) WaitUntilReady(context.Context, time.Duration) error {
	return stderrors.New("redis not ready")
}

type panickingDirectory struct {
	command.Directory
}

func (panickingDirectory) ListGroups(context.Context) (*domain.Result, error) {
	panic("boom")
}

func testConfig() *config.Config {
	return &config.Config{
		Broadcast: config.BroadcastConfig{Enabled: true, Concurrency: 4},
		Bot:       config.BotConfig{Prefix: "/"},
	}
}

func testDirectory() *directory.Service {
	logger := zap.NewNop()
	return directory.NewService(
		member.NewDirectory(memory.NewMemberStore(), 10, logger),
		group.NewRegistry(memory.NewGroupStore(), logger),
		announcement.NewBoard(memory.NewAnnouncementStore(), logger),
		directory.Config{AdminID: adminID, StorageTimeout: time.Second},
		nil,
		logger,
	)
}

func newTestBot(t *testing.T, cfg *config.Config, dir command.Directory) (*Bot, *fakeClient) {
	t.Helper()
	client := &fakeClient{up: true}
	b, err := NewBot(&Dependencies{
		Config:         cfg,
		Logger:         zap.NewNop(),
		Client:         client,
		MessageAdapter: adapter.NewMessageAdapter(cfg.Bot.Prefix),
		Formatter:      adapter.NewResponseFormatter(cfg.Bot.Prefix),
		Directory:      dir,
	})
	require.NoError(t, err)
	return b, client
}

func chat(room string, sender int64, text string) *iris.Message {
	name := "user" + strconv.FormatInt(sender, 10)
	return &iris.Message{
		Msg:    text,
		Room:   room,
		Sender: &name,
		JSON:   &iris.MessageJSON{UserID: strconv.FormatInt(sender, 10)},
	}
}

func TestNewBotValidatesDependencies(t *testing.T) {
	_, err := NewBot(nil)
	require.Error(t, err)

	_, err = NewBot(&Dependencies{Config: testConfig(), Logger: zap.NewNop()})
	require.ErrorContains(t, err, "iris client")
}

func TestHandleMessageBroadcastsToGroup(t *testing.T) {
	b, client := newTestBot(t, testConfig(), testDirectory())
	ctx := context.Background()

	b.HandleMessage(ctx, chat("class", adminID, "/new_group ECO-22"))
	b.HandleMessage(ctx, chat("class", 1, "/register ECO-22 a7"))
	b.HandleMessage(ctx, chat("class", 2, "/register ECO-22"))
	b.HandleMessage(ctx, chat("class", 3, "/register ECO-22"))
	b.HandleMessage(ctx, chat("class", 1, "/create_message 내일 시험"))

	for _, room := range []string{"2", "3"} {
		got := client.to(room)
		require.Len(t, got, 1, "room %s", room)
		assert.Contains(t, got[0], "내일 시험")
	}
	assert.Empty(t, client.to("1"), "author must not receive own broadcast")

	replies := client.to("class")
	require.NotEmpty(t, replies)
	assert.Contains(t, replies[len(replies)-1], "2명 중 2명")
}

func TestBroadcastDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Broadcast.Enabled = false
	b, client := newTestBot(t, cfg, testDirectory())
	ctx := context.Background()

	b.HandleMessage(ctx, chat("class", adminID, "/new_group A"))
	b.HandleMessage(ctx, chat("class", 1, "/register A a7"))
	b.HandleMessage(ctx, chat("class", 2, "/register A"))
	b.HandleMessage(ctx, chat("class", 1, "/create_message hi"))

	assert.Empty(t, client.to("2"))
}

func TestHandleMessageIgnoresDisallowedRoom(t *testing.T) {
	cfg := testConfig()
	cfg.Kakao.Rooms = []string{"allowed"}
	b, client := newTestBot(t, cfg, testDirectory())

	b.HandleMessage(context.Background(), chat("elsewhere", 1, "/help"))
	assert.Empty(t, client.to("elsewhere"))

	b.HandleMessage(context.Background(), chat("allowed", 1, "/help"))
	assert.Len(t, client.to("allowed"), 1)
}

func TestHandleMessageIgnoresUnknownSenderAndText(t *testing.T) {
	b, client := newTestBot(t, testConfig(), testDirectory())

	b.HandleMessage(context.Background(), &iris.Message{Msg: "/help", Room: "r"})
	b.HandleMessage(context.Background(), chat("r", 1, "hello there"))
	b.HandleMessage(context.Background(), nil)

	assert.Empty(t, client.to("r"))
}

func TestHandleMessageRecoversFromPanic(t *testing.T) {
	b, _ := newTestBot(t, testConfig(), panickingDirectory{})
	assert.NotPanics(t, func() {
		b.HandleMessage(context.Background(), chat("r", 1, "/groups"))
	})
}

func TestStartReturnsAfterShutdown(t *testing.T) {
	b, _ := newTestBot(t, testConfig(), testDirectory())

	done := make(chan error, 1)
	go func() { done <- b.Start(context.Background()) }()

	require.NoError(t, b.Shutdown(context.Background()))
	require.NoError(t, b.Shutdown(context.Background()))

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after Shutdown")
	}
}

func TestStartFailsWhenStorageNotReady(t *testing.T) {
	client := &fakeClient{up: true}
	cfg := testConfig()
	b, err := NewBot(&Dependencies{
		Config:         cfg,
		Logger:         zap.NewNop(),
		Client:         client,
		Storage:        notReady{},
		MessageAdapter: adapter.NewMessageAdapter("/"),
		Formatter:      adapter.NewResponseFormatter("/"),
		Directory:      testDirectory(),
	})
	require.NoError(t, err)

	err = b.Start(context.Background())
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "storage not ready"))
}
