package storage

import (
	"os"
	"strings"
)

// DynamoMode represents the DynamoDB connection mode
type DynamoMode string

const (
	DynamoModeLocal DynamoMode = "local" // DynamoDB Local, table created on startup
	DynamoModeAWS   DynamoMode = "aws"
	DynamoModeNone  DynamoMode = "none" // outcomes are not persisted
)

// DynamoConfig holds the outcome table settings
type DynamoConfig struct {
	Mode          DynamoMode
	Endpoint      string // local mode only
	Region        string
	OutcomesTable string
}

// Enabled reports whether outcomes are written to DynamoDB
func (c DynamoConfig) Enabled() bool {
	return c.Mode == DynamoModeLocal || c.Mode == DynamoModeAWS
}

// LoadDynamoConfig reads DYNAMO_* variables. Unknown modes disable persistence.
func LoadDynamoConfig() DynamoConfig {
	cfg := DynamoConfig{
		Mode:          DynamoMode(strings.ToLower(strings.TrimSpace(os.Getenv("DYNAMO_MODE")))),
		Endpoint:      envOr("DYNAMO_ENDPOINT", "http://localhost:8000"),
		Region:        envOr("DYNAMO_REGION", "eu-central-1"),
		OutcomesTable: envOr("DYNAMO_OUTCOMES_TABLE", "leadqueue-outcomes"),
	}
	if !cfg.Enabled() {
		cfg.Mode = DynamoModeNone
	}
	return cfg
}

func envOr(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}
