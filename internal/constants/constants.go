package constants

import "time"

var WebSocketConfig = struct {
	MaxReconnectAttempts int
	ReconnectDelay       time.Duration
}{
	MaxReconnectAttempts: 5,
	ReconnectDelay:       5 * time.Second,
}

var RedisConfig = struct {
	ReadyTimeout time.Duration
}{
	ReadyTimeout: 5 * time.Second,
}

var CircuitBreakerConfig = struct {
	FailureThreshold int
	ResetTimeout     time.Duration
}{
	FailureThreshold: 3,                // 3회 연속 실패 시 Circuit OPEN
	ResetTimeout:     30 * time.Second, // 재시도 대기 시간
}

var APIConfig = struct {
	IrisTimeout time.Duration
}{
	IrisTimeout: 10 * time.Second,
}

var ServerConfig = struct {
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
	MaxWebhookBody    int64
}{
	ReadHeaderTimeout: 5 * time.Second,
	ShutdownTimeout:   10 * time.Second,
	MaxWebhookBody:    1 << 20,
}

var MessageLimits = struct {
	MaxAnnouncementLength int
	MaxGroupNameLength    int
}{
	MaxAnnouncementLength: 2000,
	MaxGroupNameLength:    64,
}
