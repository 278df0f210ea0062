package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/dennisdiepolder/monti/leadqueue/internal/config"
	"github.com/dennisdiepolder/monti/leadqueue/internal/metrics"
	"github.com/dennisdiepolder/monti/leadqueue/internal/ranker"
	"github.com/dennisdiepolder/monti/leadqueue/internal/types"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Client is a middleman between the websocket connection and the hub
type Client struct {
	// Unique client ID
	id string

	// The hub this client belongs to
	hub *Hub

	// The websocket connection
	conn *websocket.Conn

	// Buffered channel of outbound snapshots, closed by the hub
	send chan []byte

	// Replies to this client's own requests, never closed
	replies chan []byte

	// Configuration
	config *config.Config

	// Logger
	logger zerolog.Logger

	// Current view, set by "view" messages
	view   ranker.Query
	viewMu sync.RWMutex
}

// NewClient creates a new Client with the hub's default view
func NewClient(hub *Hub, conn *websocket.Conn, cfg *config.Config, logger zerolog.Logger) *Client {
	clientID := uuid.New().String()
	return &Client{
		id:      clientID,
		hub:     hub,
		conn:    conn,
		send:    make(chan []byte, 256),
		replies: make(chan []byte, 8),
		config:  cfg,
		logger:  logger.With().Str("client_id", clientID).Logger(),
		view:    hub.DefaultQuery(),
	}
}

// View returns the client's current ranking query
func (c *Client) View() ranker.Query {
	c.viewMu.RLock()
	defer c.viewMu.RUnlock()
	return c.view
}

// SetView replaces the client's ranking query
func (c *Client) SetView(q ranker.Query) {
	c.viewMu.Lock()
	c.view = q
	c.viewMu.Unlock()
}

// handleMessage applies a client request and returns an error reply, if any
func (c *Client) handleMessage(message []byte) *types.ErrorMessage {
	var req types.ViewRequest
	if err := json.Unmarshal(message, &req); err != nil {
		return &types.ErrorMessage{Type: "error", Message: "invalid JSON message"}
	}
	if req.Type != "view" {
		return &types.ErrorMessage{Type: "error", Message: "unknown message type " + req.Type}
	}

	q, err := ranker.ParseQuery(req.Sort, req.Level, req.Search)
	if err != nil {
		return &types.ErrorMessage{Type: "error", Message: err.Error()}
	}

	c.SetView(q)
	c.logger.Debug().
		Str("sort", string(q.Sort)).
		Str("level", string(q.Level)).
		Str("search", q.Search).
		Msg("client view changed")
	return nil
}

// reply queues a message for this client only
func (c *Client) reply(msg interface{}) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.logger.Error().Err(err).Msg("failed to marshal reply")
		return
	}
	select {
	case c.replies <- data:
	default:
		c.logger.Warn().Msg("reply buffer full, dropping reply")
	}
}

// readPump pumps messages from the websocket connection to the hub
//
// The application runs readPump in a per-connection goroutine. The application
// ensures that there is at most one reader on a connection by executing all
// reads from this goroutine.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	m := metrics.Get()
	c.conn.SetReadLimit(c.config.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error().Err(err).Msg("websocket read error")
				m.RecordWebSocketError()
			}
			break
		}
		m.RecordWebSocketMessage()

		if errMsg := c.handleMessage(message); errMsg != nil {
			m.RecordWebSocketError()
			c.reply(errMsg)
			continue
		}
		c.hub.requestRefresh(c)
	}
}

// writePump pumps messages from the hub to the websocket connection
//
// A goroutine running writePump is started for each connection. The
// application ensures that there is at most one writer to a connection by
// executing all writes from this goroutine.
func (c *Client) writePump() {
	ticker := time.NewTicker(c.config.PingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case message := <-c.replies:
			c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Start starts the client's read and write pumps
func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}
