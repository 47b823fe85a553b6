// Package server exposes the bot over HTTP: Iris webhook delivery, a health
// probe and Prometheus metrics.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/kapu/group-notice-bot/internal/constants"
	"github.com/kapu/group-notice-bot/internal/iris"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// MessageHandler consumes one inbound chat event.
type MessageHandler interface {
	HandleMessage(ctx context.Context, message *iris.Message)
}

// HealthFunc reports whether the storage backend is reachable. Nil means
// always healthy.
type HealthFunc func(ctx context.Context) error

type Handler struct {
	bot      MessageHandler
	gatherer prometheus.Gatherer
	health   HealthFunc
	logger   *zap.Logger
}

func NewHandler(bot MessageHandler, gatherer prometheus.Gatherer, health HealthFunc, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &Handler{bot: bot, gatherer: gatherer, health: health, logger: logger}
}

func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))
	r.Post("/webhook/iris", h.handleWebhook)
	return r
}

// New builds an HTTP server with the project's timeouts.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: constants.ServerConfig.ReadHeaderTimeout,
	}
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if h.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.health(ctx); err != nil {
			h.logger.Warn("Health check failed", zap.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleWebhook(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, constants.ServerConfig.MaxWebhookBody)

	var msg iris.Message
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		h.logger.Debug("Rejected webhook payload", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}

	// Replies go out through Iris, so the handler outlives a dropped webhook
	// connection.
	h.bot.HandleMessage(context.WithoutCancel(r.Context()), &msg)
	writeJSON(w, http.StatusOK, map[string]string{"status": "accepted"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
