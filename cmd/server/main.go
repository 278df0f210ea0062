package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/dennisdiepolder/monti/leadqueue/internal/aggregator"
	"github.com/dennisdiepolder/monti/leadqueue/internal/api"
	"github.com/dennisdiepolder/monti/leadqueue/internal/config"
	"github.com/dennisdiepolder/monti/leadqueue/internal/kafka"
	"github.com/dennisdiepolder/monti/leadqueue/internal/leadqueue"
	"github.com/dennisdiepolder/monti/leadqueue/internal/matcher"
	"github.com/dennisdiepolder/monti/leadqueue/internal/metrics"
	"github.com/dennisdiepolder/monti/leadqueue/internal/ranker"
	"github.com/dennisdiepolder/monti/leadqueue/internal/roster"
	"github.com/dennisdiepolder/monti/leadqueue/internal/scoring"
	"github.com/dennisdiepolder/monti/leadqueue/internal/storage"
	"github.com/dennisdiepolder/monti/leadqueue/internal/ticker"
	"github.com/dennisdiepolder/monti/leadqueue/internal/websocket"
	"github.com/dennisdiepolder/monti/leadqueue/pkg/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Configure logger
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Set log level
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warn().Str("level", cfg.LogLevel).Msg("invalid log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	log.Info().
		Str("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Str("log_level", cfg.LogLevel).
		Dur("tick_interval", cfg.TickInterval).
		Int("tick_minutes", cfg.TickMinutes).
		Str("default_sort", string(cfg.DefaultSort)).
		Msg("starting lead queue server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Agent roster
	directory, err := loadRoster(cfg.RosterFile)
	if err != nil {
		log.Fatal().Err(err).Str("file", cfg.RosterFile).Msg("failed to load roster")
	}
	log.Info().Int("agents", directory.Count()).Msg("roster loaded")

	// Scoring engine
	scorer, err := scoring.NewScorer(scoring.DefaultWeights(), scoring.RealClock{})
	if err != nil {
		log.Fatal().Err(err).Msg("invalid scoring weights")
	}
	leadRanker := ranker.New(scorer, matcher.New(directory))

	// Lead queue
	store := leadqueue.NewStore(cfg.TickMinutes, log.Logger)

	// Outcome sinks
	outcomeStore, err := storage.NewStore(ctx, storage.LoadDynamoConfig(), log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize outcome storage")
	}
	recorders := leadqueue.MultiRecorder{outcomeStore}

	var producer *kafka.Producer
	kafkaCfg := kafka.LoadConfig()
	if kafkaCfg.Enabled() {
		producer = kafka.NewProducer(kafkaCfg, log.Logger)
		recorders = append(recorders, producer)
		log.Info().Strs("brokers", kafkaCfg.Brokers).Str("topic", kafkaCfg.Topic).Msg("kafka outcome producer enabled")
	}
	store.SetRecorder(recorders)

	// Create WebSocket hub
	hub := websocket.NewHub(leadRanker, ranker.Query{Sort: cfg.DefaultSort}, log.Logger)
	go hub.Run()

	wsHandler := websocket.NewHandler(hub, cfg, log.Logger)

	// Simulated clock and broadcast loop
	tickerService := ticker.NewTicker(store, cfg.TickInterval, log.Logger)
	go tickerService.Start(ctx)

	aggregatorService := aggregator.NewAggregator(store, leadRanker, hub, cfg.BroadcastInterval, log.Logger)
	go aggregatorService.Start(ctx)

	handlers := api.Handlers{
		Queue:    api.NewQueueHandler(store, leadRanker, cfg.DefaultSort, log.Logger),
		Leads:    api.NewLeadHandler(store, leadRanker, directory, log.Logger),
		Agents:   api.NewAgentHandler(directory, log.Logger),
		Admin:    api.NewAdminHandler(store, outcomeStore, log.Logger),
		Outcomes: api.NewOutcomeHandler(outcomeStore, log.Logger),
	}
	r := newRouter(cfg, handlers, wsHandler, log.Logger)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Msgf("server listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	// Stop ticker and aggregator
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	// Drain outcome writes before closing the sinks
	if err := store.Flush(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("lead outcomes lost on shutdown")
	}
	if producer != nil {
		if err := producer.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close kafka producer")
		}
	}

	log.Info().Msg("server stopped")
}

// loadRoster reads the YAML roster, falling back to the demo agents
func loadRoster(path string) (*roster.Directory, error) {
	if path == "" {
		return roster.NewDirectory(roster.DemoAgents())
	}
	return roster.LoadFile(path)
}

// newRouter wires middleware, API routes, the dashboard socket and operational endpoints
func newRouter(cfg *config.Config, handlers api.Handlers, ws http.Handler, logger zerolog.Logger) chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics(metrics.Get()))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	r.Get("/health", healthHandler)
	r.Method(http.MethodGet, "/metrics", metrics.Get().Handler())
	r.Method(http.MethodGet, "/ws", ws)

	handlers.Register(r)
	return r
}

// healthHandler handles health check requests
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"ok","service":"leadqueue"}`)
}
