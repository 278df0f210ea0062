package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/dennisdiepolder/monti/leadqueue/internal/metrics"
	"github.com/dennisdiepolder/monti/leadqueue/internal/ranker"
	"github.com/dennisdiepolder/monti/leadqueue/internal/types"
	"github.com/rs/zerolog"
)

// QueueRanker ranks a lead snapshot for one client view
type QueueRanker interface {
	Rank(leads []types.Lead, q ranker.Query) (ranker.Result, error)
}

// Snapshot is the raw queue state published to the hub
type Snapshot struct {
	Timestamp    time.Time
	Leads        []types.Lead
	ServiceLevel types.ServiceLevel
}

// Hub maintains the set of active clients and pushes each of them the
// queue ranked according to its own view.
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// Queue snapshots to rank and fan out
	broadcast chan Snapshot

	// Register requests from the clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Clients that changed their view and want a fresh ranking
	refresh chan *Client

	// Last published snapshot, replayed on register and refresh
	last *Snapshot

	ranker       QueueRanker
	defaultQuery ranker.Query

	// Mutex to protect clients map
	mu sync.RWMutex

	// Logger
	logger zerolog.Logger
}

// NewHub creates a new Hub. New clients start with defaultQuery as their view.
func NewHub(r QueueRanker, defaultQuery ranker.Query, logger zerolog.Logger) *Hub {
	return &Hub{
		broadcast:    make(chan Snapshot, 16),
		register:     make(chan *Client),
		unregister:   make(chan *Client),
		refresh:      make(chan *Client, 64),
		clients:      make(map[*Client]bool),
		ranker:       r,
		defaultQuery: defaultQuery,
		logger:       logger,
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	m := metrics.Get()
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()
			m.RecordWebSocketConnect()
			h.logger.Info().
				Str("client_id", client.id).
				Int("total_clients", total).
				Msg("client connected")
			h.replay(client)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				h.drop(client)
				h.logger.Info().
					Str("client_id", client.id).
					Int("total_clients", len(h.clients)).
					Msg("client disconnected")
			}
			h.mu.Unlock()

		case client := <-h.refresh:
			h.replay(client)

		case snap := <-h.broadcast:
			h.last = &snap
			h.fanOut(snap)
		}
	}
}

// Publish queues a snapshot for ranking and delivery to every client.
// A full queue drops the snapshot; the next publish supersedes it anyway.
func (h *Hub) Publish(snap Snapshot) bool {
	select {
	case h.broadcast <- snap:
		return true
	default:
		h.logger.Warn().Msg("hub broadcast queue full, dropping snapshot")
		return false
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// DefaultQuery returns the view assigned to new clients
func (h *Hub) DefaultQuery() ranker.Query {
	return h.defaultQuery
}

// requestRefresh asks the hub to resend the last snapshot to one client
func (h *Hub) requestRefresh(c *Client) {
	select {
	case h.refresh <- c:
	default:
	}
}

// replay sends the most recent snapshot to a single client
func (h *Hub) replay(client *Client) {
	if h.last == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.clients[client] {
		return
	}
	data, ok := h.render(*h.last, client.View())
	if !ok {
		return
	}
	h.deliver(client, data)
}

// fanOut ranks the snapshot once per distinct view and sends it to every client
func (h *Hub) fanOut(snap Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()

	rendered := make(map[ranker.Query][]byte)
	for client := range h.clients {
		q := client.View()
		data, cached := rendered[q]
		if !cached {
			var ok bool
			data, ok = h.render(snap, q)
			if !ok {
				continue
			}
			rendered[q] = data
		}
		h.deliver(client, data)
	}
}

// render ranks the snapshot for one view and marshals the message
func (h *Hub) render(snap Snapshot, q ranker.Query) ([]byte, bool) {
	res, err := h.ranker.Rank(snap.Leads, q)
	if err != nil {
		h.logger.Error().Err(err).Str("sort", string(q.Sort)).Msg("failed to rank snapshot")
		return nil, false
	}

	msg := types.QueueSnapshot{
		Type:      "queue_snapshot",
		Timestamp: snap.Timestamp,
		View: types.ViewRequest{
			Type:   "view",
			Sort:   string(q.Sort),
			Level:  string(q.Level),
			Search: q.Search,
		},
		Leads:        res.Leads,
		Stats:        res.Stats,
		ServiceLevel: snap.ServiceLevel,
	}
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to marshal queue snapshot")
		return nil, false
	}
	return data, true
}

// deliver sends to a client, dropping it when its buffer is full.
// Callers hold h.mu.
func (h *Hub) deliver(client *Client, data []byte) {
	select {
	case client.send <- data:
	default:
		h.drop(client)
		h.logger.Warn().
			Str("client_id", client.id).
			Msg("client send buffer full, closing connection")
	}
}

// drop removes a client and closes its send channel. Callers hold h.mu.
func (h *Hub) drop(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.send)
	metrics.Get().RecordWebSocketDisconnect()
}
