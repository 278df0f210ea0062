package storage

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/dennisdiepolder/monti/leadqueue/internal/types"
	"github.com/rs/zerolog"
)

func TestLoadDynamoConfig(t *testing.T) {
	tests := []struct {
		name     string
		env      map[string]string
		wantMode DynamoMode
		check    func(*testing.T, DynamoConfig)
	}{
		{
			name:     "defaults to disabled",
			env:      map[string]string{},
			wantMode: DynamoModeNone,
			check: func(t *testing.T, cfg DynamoConfig) {
				if cfg.OutcomesTable != "leadqueue-outcomes" {
					t.Errorf("expected default table, got %s", cfg.OutcomesTable)
				}
				if cfg.Region != "eu-central-1" {
					t.Errorf("expected default region, got %s", cfg.Region)
				}
			},
		},
		{
			name:     "local mode",
			env:      map[string]string{"DYNAMO_MODE": "local", "DYNAMO_ENDPOINT": "http://dynamo:8000"},
			wantMode: DynamoModeLocal,
			check: func(t *testing.T, cfg DynamoConfig) {
				if cfg.Endpoint != "http://dynamo:8000" {
					t.Errorf("expected custom endpoint, got %s", cfg.Endpoint)
				}
			},
		},
		{
			name:     "mode is case insensitive",
			env:      map[string]string{"DYNAMO_MODE": " LOCAL "},
			wantMode: DynamoModeLocal,
		},
		{
			name:     "unknown mode falls back to none",
			env:      map[string]string{"DYNAMO_MODE": "postgres"},
			wantMode: DynamoModeNone,
		},
		{
			name:     "custom table",
			env:      map[string]string{"DYNAMO_MODE": "aws", "DYNAMO_OUTCOMES_TABLE": "prod-outcomes"},
			wantMode: DynamoModeAWS,
			check: func(t *testing.T, cfg DynamoConfig) {
				if cfg.OutcomesTable != "prod-outcomes" {
					t.Errorf("expected prod-outcomes, got %s", cfg.OutcomesTable)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range []string{"DYNAMO_MODE", "DYNAMO_ENDPOINT", "DYNAMO_REGION", "DYNAMO_OUTCOMES_TABLE"} {
				t.Setenv(key, "")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg := LoadDynamoConfig()
			if cfg.Mode != tt.wantMode {
				t.Errorf("expected mode %s, got %s", tt.wantMode, cfg.Mode)
			}
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestNewStoreDisabled(t *testing.T) {
	store, err := NewStore(context.Background(), DynamoConfig{Mode: DynamoModeNone}, zerolog.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := store.(*NoopStore); !ok {
		t.Fatalf("expected NoopStore, got %T", store)
	}

	ctx := context.Background()
	if err := store.RecordOutcome(ctx, types.LeadOutcome{LeadID: "a"}); err != nil {
		t.Errorf("noop record failed: %v", err)
	}
	if out, err := store.GetOutcomes(ctx, "2026-10-14"); err != nil || out != nil {
		t.Errorf("expected empty noop result, got %v %v", out, err)
	}
	if err := store.TruncateAll(ctx); err != nil {
		t.Errorf("noop truncate failed: %v", err)
	}
}

func TestMarshalOutcomeKeys(t *testing.T) {
	outcome := types.LeadOutcome{
		DateKey:     "2026-10-14",
		LeadID:      "lead-42",
		Kind:        types.OutcomeRouted,
		AgentID:     "agent-1",
		Company:     "Acme",
		WaitMinutes: 12,
		SLAMinutes:  60,
		WithinSLA:   true,
		Tags:        []string{"Enterprise"},
		Timestamp:   time.Date(2026, time.October, 14, 9, 0, 0, 0, time.UTC),
	}

	item, err := marshalOutcome(outcome)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, key := range []string{outcomePartitionKey, outcomeSortKey, "Kind", "AgentID", "WaitMinutes", "WithinSLA"} {
		if _, ok := item[key]; !ok {
			t.Errorf("expected attribute %s in item", key)
		}
	}
	for _, key := range []string{"Score", "Level", "Factors"} {
		if _, ok := item[key]; ok {
			t.Errorf("derived attribute %s must not be persisted", key)
		}
	}

	var decoded types.LeadOutcome
	if err := attributevalue.UnmarshalMap(item, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.LeadID != "lead-42" || decoded.WaitMinutes != 12 || !decoded.Timestamp.Equal(outcome.Timestamp) {
		t.Errorf("unexpected round trip: %+v", decoded)
	}
}

func TestDeleteBatches(t *testing.T) {
	items := make([]map[string]dbtypes.AttributeValue, 0, 60)
	for i := 0; i < 60; i++ {
		items = append(items, map[string]dbtypes.AttributeValue{
			outcomePartitionKey: &dbtypes.AttributeValueMemberS{Value: "2026-10-14"},
			outcomeSortKey:      &dbtypes.AttributeValueMemberS{Value: fmt.Sprintf("lead-%d", i)},
			"Company":           &dbtypes.AttributeValueMemberS{Value: "ignored"},
		})
	}

	batches := deleteBatches(items, outcomePartitionKey, outcomeSortKey)
	if len(batches) != 3 {
		t.Fatalf("expected 3 batches, got %d", len(batches))
	}
	if len(batches[0]) != 25 || len(batches[1]) != 25 || len(batches[2]) != 10 {
		t.Errorf("unexpected batch sizes %d/%d/%d", len(batches[0]), len(batches[1]), len(batches[2]))
	}
	key := batches[2][9].DeleteRequest.Key
	if len(key) != 2 {
		t.Errorf("expected delete key with 2 attributes, got %d", len(key))
	}
	if sk, ok := key[outcomeSortKey].(*dbtypes.AttributeValueMemberS); !ok || sk.Value != "lead-59" {
		t.Errorf("unexpected sort key %+v", key[outcomeSortKey])
	}

	if got := deleteBatches(nil, outcomePartitionKey, outcomeSortKey); len(got) != 0 {
		t.Errorf("expected no batches for empty scan, got %d", len(got))
	}
}

func TestDynamoConfigEnabled(t *testing.T) {
	for mode, want := range map[DynamoMode]bool{
		DynamoModeLocal: true,
		DynamoModeAWS:   true,
		DynamoModeNone:  false,
		"":              false,
	} {
		if got := (DynamoConfig{Mode: mode}).Enabled(); got != want {
			t.Errorf("mode %q: expected enabled=%v, got %v", mode, want, got)
		}
	}
}

func TestOutcomesTableInput(t *testing.T) {
	input := outcomesTableInput("outcomes")

	if *input.TableName != "outcomes" {
		t.Errorf("expected table name outcomes, got %s", *input.TableName)
	}
	if len(input.KeySchema) != 2 {
		t.Fatalf("expected 2 key elements, got %d", len(input.KeySchema))
	}
	if *input.KeySchema[0].AttributeName != outcomePartitionKey || input.KeySchema[0].KeyType != dbtypes.KeyTypeHash {
		t.Errorf("unexpected partition key %+v", input.KeySchema[0])
	}
	if *input.KeySchema[1].AttributeName != outcomeSortKey || input.KeySchema[1].KeyType != dbtypes.KeyTypeRange {
		t.Errorf("unexpected sort key %+v", input.KeySchema[1])
	}
	if input.BillingMode != dbtypes.BillingModePayPerRequest {
		t.Errorf("expected on-demand billing, got %s", input.BillingMode)
	}
}
