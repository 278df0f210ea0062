package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dennisdiepolder/monti/leadqueue/internal/ranker"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Port              string
	AllowedOrigins    []string
	WSReadTimeout     time.Duration
	WSWriteTimeout    time.Duration
	LogLevel          string
	PingPeriod        time.Duration
	PongWait          time.Duration
	WriteWait         time.Duration
	MaxMessageSize    int64
	TickInterval      time.Duration // wall time between simulated clock ticks
	TickMinutes       int           // minutes added to every wait per tick
	BroadcastInterval time.Duration
	RosterFile        string // optional YAML roster, demo agents when empty
	DefaultSort       ranker.SortKey
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:5173"), ","),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		RosterFile:     strings.TrimSpace(os.Getenv("ROSTER_FILE")),
	}

	// Parse WebSocket timeouts
	wsReadTimeout, err := strconv.Atoi(getEnv("WS_READ_TIMEOUT", "60"))
	if err != nil {
		return nil, fmt.Errorf("invalid WS_READ_TIMEOUT: %w", err)
	}
	config.WSReadTimeout = time.Duration(wsReadTimeout) * time.Second

	wsWriteTimeout, err := strconv.Atoi(getEnv("WS_WRITE_TIMEOUT", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid WS_WRITE_TIMEOUT: %w", err)
	}
	config.WSWriteTimeout = time.Duration(wsWriteTimeout) * time.Second

	// Queue clock
	tickInterval, err := positiveInt("TICK_INTERVAL", "60")
	if err != nil {
		return nil, err
	}
	config.TickInterval = time.Duration(tickInterval) * time.Second

	config.TickMinutes, err = positiveInt("TICK_MINUTES", "1")
	if err != nil {
		return nil, err
	}

	broadcastInterval, err := positiveInt("BROADCAST_INTERVAL", "1000")
	if err != nil {
		return nil, err
	}
	config.BroadcastInterval = time.Duration(broadcastInterval) * time.Millisecond

	query, err := ranker.ParseQuery(os.Getenv("DEFAULT_SORT"), "", "")
	if err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_SORT: %w", err)
	}
	config.DefaultSort = query.Sort

	// Calculate WebSocket constants
	config.PongWait = config.WSReadTimeout
	config.PingPeriod = (config.PongWait * 9) / 10 // Must be less than pongWait
	config.WriteWait = config.WSWriteTimeout
	config.MaxMessageSize = 512

	// Trim spaces from allowed origins
	for i, origin := range config.AllowedOrigins {
		config.AllowedOrigins[i] = strings.TrimSpace(origin)
	}

	return config, nil
}

// getEnv gets an environment variable with a fallback default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// positiveInt reads an integer variable that must be at least 1
func positiveInt(key, defaultValue string) (int, error) {
	v, err := strconv.Atoi(getEnv(key, defaultValue))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if v < 1 {
		return 0, fmt.Errorf("invalid %s: must be positive, got %d", key, v)
	}
	return v, nil
}
