package realtime

import (
	"log/slog"
	"net/http"

	"voicecollect/internal/config"
	"voicecollect/internal/session"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var sessionsStartedTotal = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "voicecollect",
	Name:      "realtime_sessions_started_total",
	Help:      "Total number of realtime sessions accepted.",
})

// Handler upgrades inbound connections and hands them to the configured
// session driver. Instructions are re-derived from the stored profile
// before every upgrade so a session always starts from the latest
// customer record.
type Handler struct {
	upgrader     websocket.Upgrader
	configurator *session.Configurator
	driver       SessionDriver
	credential   config.Credential
	logger       *slog.Logger
}

func NewHandler(configurator *session.Configurator, driver SessionDriver, credential config.Credential, logger *slog.Logger) *Handler {
	if configurator == nil || driver == nil || logger == nil {
		panic("Handler dependencies cannot be nil")
	}
	return &Handler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:    64 * 1024,
			WriteBufferSize:   64 * 1024,
			EnableCompression: true,
			CheckOrigin: func(r *http.Request) bool {
				// Telephony gateways do not send browser Origin headers.
				return true
			},
		},
		configurator: configurator,
		driver:       driver,
		credential:   credential,
		logger:       logger.With("component", "RealtimeHandler"),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.configurator.Refresh(ctx); err != nil {
		h.logger.ErrorContext(ctx, "Failed to refresh instructions before upgrade", slog.Any("error", err))
		http.Error(w, "instructions unavailable", http.StatusServiceUnavailable)
		return
	}

	instructions, ok := h.configurator.Slot().Current()
	if !ok {
		h.logger.ErrorContext(ctx, "Instruction slot is empty after refresh")
		http.Error(w, "instructions unavailable", http.StatusServiceUnavailable)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade writes its own error response.
		h.logger.WarnContext(ctx, "WebSocket upgrade failed", slog.Any("error", err))
		return
	}

	sess := Session{
		ID:           uuid.NewString(),
		Instructions: instructions,
		Credential:   h.credential,
	}
	sessionsStartedTotal.Inc()
	h.logger.InfoContext(ctx, "Realtime session started", slog.String("sessionID", sess.ID))

	if err := h.driver.Run(ctx, conn, sess); err != nil {
		h.logger.WarnContext(ctx, "Realtime session ended with error",
			slog.String("sessionID", sess.ID), slog.Any("error", err))
		return
	}
	h.logger.InfoContext(ctx, "Realtime session closed", slog.String("sessionID", sess.ID))
}
