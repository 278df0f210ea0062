package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dennisdiepolder/monti/leadqueue/internal/api"
	"github.com/dennisdiepolder/monti/leadqueue/internal/config"
	"github.com/dennisdiepolder/monti/leadqueue/internal/leadqueue"
	"github.com/dennisdiepolder/monti/leadqueue/internal/matcher"
	"github.com/dennisdiepolder/monti/leadqueue/internal/ranker"
	"github.com/dennisdiepolder/monti/leadqueue/internal/roster"
	"github.com/dennisdiepolder/monti/leadqueue/internal/scoring"
	"github.com/dennisdiepolder/monti/leadqueue/internal/storage"
	"github.com/rs/zerolog"
)

func TestHealthHandler(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	healthHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}

	contentType := rec.Header().Get("Content-Type")
	if contentType != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", contentType)
	}

	var response map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}

	if response["status"] != "ok" {
		t.Errorf("expected status ok, got %s", response["status"])
	}
	if response["service"] != "leadqueue" {
		t.Errorf("expected service leadqueue, got %s", response["service"])
	}
}

func TestLoadRoster(t *testing.T) {
	directory, err := loadRoster("")
	if err != nil {
		t.Fatalf("demo roster: %v", err)
	}
	if directory.Count() != len(roster.DemoAgents()) {
		t.Errorf("expected demo agents, got %d", directory.Count())
	}

	path := filepath.Join(t.TempDir(), "roster.yaml")
	data := "agents:\n  - id: a1\n    name: Solo\n    skills: [Enterprise]\n    availability: 0.5\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	directory, err = loadRoster(path)
	if err != nil {
		t.Fatalf("file roster: %v", err)
	}
	if directory.Count() != 1 {
		t.Errorf("expected 1 agent, got %d", directory.Count())
	}

	if _, err := loadRoster(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing roster file")
	}
}

func TestRouter(t *testing.T) {
	logger := zerolog.Nop()
	directory, err := roster.NewDirectory(roster.DemoAgents())
	if err != nil {
		t.Fatal(err)
	}
	scorer, err := scoring.NewScorer(scoring.DefaultWeights(), scoring.RealClock{})
	if err != nil {
		t.Fatal(err)
	}
	rk := ranker.New(scorer, matcher.New(directory))
	store := leadqueue.NewStore(1, logger)
	outcomes := storage.NewNoopStore()

	handlers := api.Handlers{
		Queue:    api.NewQueueHandler(store, rk, ranker.SortPriority, logger),
		Leads:    api.NewLeadHandler(store, rk, directory, logger),
		Agents:   api.NewAgentHandler(directory, logger),
		Admin:    api.NewAdminHandler(store, outcomes, logger),
		Outcomes: api.NewOutcomeHandler(outcomes, logger),
	}
	ws := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})
	cfg := &config.Config{AllowedOrigins: []string{"http://localhost:5173"}}
	r := newRouter(cfg, handlers, ws, logger)

	tests := []struct {
		method     string
		path       string
		wantStatus int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodGet, "/ws", http.StatusAccepted},
		{http.MethodGet, "/api/queue", http.StatusOK},
		{http.MethodGet, "/api/queue/stats", http.StatusOK},
		{http.MethodGet, "/api/agents", http.StatusOK},
		{http.MethodGet, "/api/outcomes", http.StatusOK},
		{http.MethodGet, "/api/unknown", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
		})
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "leadqueue_http_requests_total") {
		t.Error("expected HTTP request metrics to be exposed")
	}
}
