package iris

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/kapu/group-notice-bot/internal/util"
	"go.uber.org/zap"
)

type MessageHandler func(ctx context.Context, message *Message)

type StateCallback func(state WebSocketState)

// WebSocket receives chat events from Iris. Run blocks, reconnecting after
// read errors until the context ends or the reconnect budget runs out.
type WebSocket struct {
	wsURL                string
	handler              MessageHandler
	onState              StateCallback
	maxReconnectAttempts int
	reconnectDelay       time.Duration
	logger               *zap.Logger

	mu    sync.Mutex
	conn  *websocket.Conn
	state WebSocketState
}

func NewWebSocket(wsURL string, maxReconnectAttempts int, reconnectDelay time.Duration, logger *zap.Logger) *WebSocket {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebSocket{
		wsURL:                wsURL,
		state:                WSStateDisconnected,
		maxReconnectAttempts: maxReconnectAttempts,
		reconnectDelay:       reconnectDelay,
		logger:               logger,
	}
}

// OnMessage sets the handler invoked for every decoded message. Call before Run.
func (ws *WebSocket) OnMessage(handler MessageHandler) {
	ws.handler = handler
}

// OnStateChange sets a callback for connection state transitions. Call before Run.
func (ws *WebSocket) OnStateChange(callback StateCallback) {
	ws.onState = callback
}

func (ws *WebSocket) Run(ctx context.Context) error {
	attempts := 0
	for {
		err := ws.session(ctx)
		if ctx.Err() != nil {
			ws.setState(WSStateDisconnected)
			return nil
		}
		if err == nil {
			attempts = 0
		}

		attempts++
		if attempts > ws.maxReconnectAttempts {
			ws.setState(WSStateFailed)
			ws.logger.Error("Max reconnect attempts reached", zap.Int("attempts", attempts-1), zap.Error(err))
			return fmt.Errorf("websocket: giving up after %d attempts: %w", attempts-1, err)
		}

		ws.setState(WSStateReconnecting)
		ws.logger.Info("Scheduling reconnect",
			zap.Int("attempt", attempts),
			zap.Int("max", ws.maxReconnectAttempts),
			zap.Duration("delay", ws.reconnectDelay),
		)

		select {
		case <-ctx.Done():
			ws.setState(WSStateDisconnected)
			return nil
		case <-time.After(ws.reconnectDelay):
		}
	}
}

// session dials once and reads until the connection breaks. A nil return means
// the connection was established and later dropped.
func (ws *WebSocket) session(ctx context.Context) error {
	ws.setState(WSStateConnecting)

	dialer := *websocket.DefaultDialer
	dialer.HandshakeTimeout = 10 * time.Second

	conn, _, err := dialer.DialContext(ctx, ws.wsURL, nil)
	if err != nil {
		ws.logger.Error("Failed to connect WebSocket", zap.Error(err))
		ws.setState(WSStateFailed)
		return err
	}

	ws.mu.Lock()
	ws.conn = conn
	ws.mu.Unlock()
	ws.setState(WSStateConnected)
	ws.logger.Info("WebSocket connected", zap.String("url", ws.wsURL))

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()
	defer ws.closeConn()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				ws.logger.Warn("WebSocket read error", zap.Error(err))
			}
			ws.setState(WSStateDisconnected)
			return nil
		}
		ws.dispatch(ctx, data)
	}
}

func (ws *WebSocket) dispatch(ctx context.Context, data []byte) {
	var message Message
	if err := json.Unmarshal(data, &message); err != nil {
		ws.logger.Error("Failed to parse message",
			zap.Error(err),
			zap.String("data", util.TruncateString(string(data), 200)),
		)
		return
	}
	if ws.handler != nil {
		ws.handler(ctx, &message)
	}
}

func (ws *WebSocket) closeConn() {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	if ws.conn != nil {
		_ = ws.conn.Close()
		ws.conn = nil
	}
}

func (ws *WebSocket) setState(newState WebSocketState) {
	ws.mu.Lock()
	oldState := ws.state
	ws.state = newState
	ws.mu.Unlock()

	if oldState == newState {
		return
	}
	ws.logger.Debug("WebSocket state changed",
		zap.String("from", oldState.String()),
		zap.String("to", newState.String()),
	)
	if ws.onState != nil {
		ws.onState(newState)
	}
}

func (ws *WebSocket) GetState() WebSocketState {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return ws.state
}

func (ws *WebSocket) IsConnected() bool {
	return ws.GetState() == WSStateConnected
}
