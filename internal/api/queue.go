package api

import (
	"net/http"
	"time"

	"github.com/dennisdiepolder/monti/leadqueue/internal/leadqueue"
	"github.com/dennisdiepolder/monti/leadqueue/internal/metrics"
	"github.com/dennisdiepolder/monti/leadqueue/internal/ranker"
	"github.com/dennisdiepolder/monti/leadqueue/internal/types"
	"github.com/rs/zerolog"
)

// queueResponse is the ranked queue returned by GET /api/queue
type queueResponse struct {
	Sort         ranker.SortKey      `json:"sort"`
	Level        types.PriorityLevel `json:"level,omitempty"`
	Search       string              `json:"search,omitempty"`
	Leads        []types.ScoredLead  `json:"leads"`
	Rejected     []ranker.Rejection  `json:"rejected,omitempty"`
	Stats        types.QueueStats    `json:"stats"`
	ServiceLevel types.ServiceLevel  `json:"serviceLevel"`
}

// statsResponse is returned by GET /api/queue/stats
type statsResponse struct {
	Stats        types.QueueStats   `json:"stats"`
	ServiceLevel types.ServiceLevel `json:"serviceLevel"`
}

// QueueHandler serves ranked views of the lead queue
type QueueHandler struct {
	store       *leadqueue.Store
	ranker      *ranker.Ranker
	defaultSort ranker.SortKey
	logger      zerolog.Logger
}

// NewQueueHandler creates a new QueueHandler. Requests without a sort
// parameter use defaultSort.
func NewQueueHandler(store *leadqueue.Store, r *ranker.Ranker, defaultSort ranker.SortKey, logger zerolog.Logger) *QueueHandler {
	if defaultSort == "" {
		defaultSort = ranker.SortPriority
	}
	return &QueueHandler{
		store:       store,
		ranker:      r,
		defaultSort: defaultSort,
		logger:      logger.With().Str("component", "queue_api").Logger(),
	}
}

// GetQueue handles GET /api/queue?sort=&level=&search=
func (h *QueueHandler) GetQueue(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	sort := params.Get("sort")
	if sort == "" {
		sort = string(h.defaultSort)
	}

	q, err := ranker.ParseQuery(sort, params.Get("level"), params.Get("search"))
	if err != nil {
		writeErr(w, err)
		return
	}

	start := time.Now()
	res, err := h.ranker.Rank(h.store.Snapshot(), q)
	if err != nil {
		writeErr(w, err)
		return
	}
	metrics.Get().RecordRank(time.Since(start), len(res.Rejected))

	writeJSON(w, http.StatusOK, queueResponse{
		Sort:         q.Sort,
		Level:        q.Level,
		Search:       q.Search,
		Leads:        res.Leads,
		Rejected:     res.Rejected,
		Stats:        res.Stats,
		ServiceLevel: h.store.ServiceLevel(),
	})
}

// GetStats handles GET /api/queue/stats
func (h *QueueHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	res, err := h.ranker.Rank(h.store.Snapshot(), ranker.Query{Sort: ranker.SortPriority})
	if err != nil {
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, statsResponse{
		Stats:        res.Stats,
		ServiceLevel: h.store.ServiceLevel(),
	})
}
