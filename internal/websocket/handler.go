package websocket

import (
	"net/http"

	"github.com/dennisdiepolder/monti/leadqueue/internal/config"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Handler handles WebSocket upgrade requests
type Handler struct {
	hub      *Hub
	config   *config.Config
	upgrader websocket.Upgrader
	logger   zerolog.Logger
}

// NewHandler creates a new WebSocket handler. Browser origins are checked
// against cfg.AllowedOrigins; requests without an Origin header are accepted.
func NewHandler(hub *Hub, cfg *config.Config, logger zerolog.Logger) *Handler {
	allowed := make(map[string]bool, len(cfg.AllowedOrigins))
	for _, origin := range cfg.AllowedOrigins {
		allowed[origin] = true
	}

	return &Handler{
		hub:    hub,
		config: cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowed["*"] || allowed[origin]
			},
		},
		logger: logger,
	}
}

// ServeHTTP handles WebSocket upgrade requests
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Upgrade HTTP connection to WebSocket
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to upgrade connection")
		return
	}

	client := NewClient(h.hub, conn, h.config, h.logger)

	// Register client with hub
	h.hub.register <- client

	client.Start()
}
