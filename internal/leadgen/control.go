package leadgen

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// maxInject caps a single /inject request
const maxInject = 1000

// Status describes whether the feed is running
type Status struct {
	Running   bool       `json:"running"`
	StartedAt *time.Time `json:"startedAt,omitempty"`
	Stats     Stats      `json:"stats"`
}

// Control exposes start/stop/config endpoints for a Feed
type Control struct {
	feed   *Feed
	base   context.Context
	logger zerolog.Logger

	mu        sync.Mutex
	cancel    context.CancelFunc
	done      chan struct{}
	startedAt *time.Time
}

// NewControl creates a control API; feeds it starts stop when base is cancelled
func NewControl(base context.Context, feed *Feed, logger zerolog.Logger) *Control {
	return &Control{
		feed:   feed,
		base:   base,
		logger: logger.With().Str("component", "control").Logger(),
	}
}

// SetupRoutes configures HTTP routes
func (c *Control) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/health", c.healthHandler).Methods("GET")
	router.HandleFunc("/status", c.statusHandler).Methods("GET")
	router.HandleFunc("/start", c.startHandler).Methods("POST")
	router.HandleFunc("/stop", c.stopHandler).Methods("POST")
	router.HandleFunc("/config", c.configHandler).Methods("GET", "PUT")
	router.HandleFunc("/inject", c.injectHandler).Methods("POST")
}

// Start launches the feed loop; it returns false when already running
func (c *Control) Start() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		return false
	}

	ctx, cancel := context.WithCancel(c.base)
	done := make(chan struct{})
	go func() {
		defer close(done)
		c.feed.Run(ctx)
	}()

	now := time.Now()
	c.cancel = cancel
	c.done = done
	c.startedAt = &now
	return true
}

// Stop halts the feed loop and waits for it; it returns false when not running
func (c *Control) Stop() bool {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.cancel, c.done, c.startedAt = nil, nil, nil
	c.mu.Unlock()

	if cancel == nil {
		return false
	}
	cancel()
	<-done
	return true
}

// Status returns the current run state and counters
func (c *Control) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Status{
		Running:   c.cancel != nil,
		StartedAt: c.startedAt,
		Stats:     c.feed.Stats(),
	}
}

// Serve runs the control API on addr until ctx is cancelled
func (c *Control) Serve(ctx context.Context, addr string) error {
	router := mux.NewRouter()
	c.SetupRoutes(router)

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		<-ctx.Done()
		c.logger.Info().Msg("shutting down control API")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	c.logger.Info().Str("addr", addr).Msg("control API started")
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (c *Control) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (c *Control) statusHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, c.Status())
}

func (c *Control) startHandler(w http.ResponseWriter, r *http.Request) {
	if !c.Start() {
		http.Error(w, "feed already running", http.StatusConflict)
		return
	}
	c.logger.Info().Msg("feed started via control API")
	writeJSON(w, http.StatusOK, map[string]string{"message": "feed started"})
}

func (c *Control) stopHandler(w http.ResponseWriter, r *http.Request) {
	if !c.Stop() {
		http.Error(w, "feed not running", http.StatusConflict)
		return
	}
	c.logger.Info().Msg("feed stopped via control API")
	writeJSON(w, http.StatusOK, map[string]string{"message": "feed stopped"})
}

// configHandler gets or updates the feed config; updates apply while running
func (c *Control) configHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		writeJSON(w, http.StatusOK, c.feed.Config())
		return
	}

	cfg := c.feed.Config()
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := c.feed.SetConfig(cfg); err != nil {
		http.Error(w, "leadsPerMin must be >= 0 and shares within [0,1]", http.StatusBadRequest)
		return
	}

	c.logger.Info().Interface("config", cfg).Msg("feed config updated")
	writeJSON(w, http.StatusOK, cfg)
}

func (c *Control) injectHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Count <= 0 {
		req.Count = 1
	}
	if req.Count > maxInject {
		req.Count = maxInject
	}

	injected := c.feed.Inject(r.Context(), req.Count)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"injected": injected,
		"errors":   req.Count - injected,
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
