package storage

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/dennisdiepolder/monti/leadqueue/internal/types"
	"github.com/rs/zerolog"
)

// batchWriteLimit is the DynamoDB maximum number of requests per BatchWriteItem
const batchWriteLimit = 25

// DynamoDBStore implements Store using AWS DynamoDB
type DynamoDBStore struct {
	client *dynamodb.Client
	config DynamoConfig
	logger zerolog.Logger
}

// NewDynamoDBStore creates a new DynamoDB store
func NewDynamoDBStore(ctx context.Context, cfg DynamoConfig, logger zerolog.Logger) (*DynamoDBStore, error) {
	var client *dynamodb.Client

	if cfg.Mode == DynamoModeLocal {
		// LoadDefaultConfig probes the EC2 IMDS endpoint, which hangs on EC2
		// instances when static credentials are intended.
		client = dynamodb.New(dynamodb.Options{
			Region:       cfg.Region,
			BaseEndpoint: aws.String(cfg.Endpoint),
			Credentials:  credentials.NewStaticCredentialsProvider("local", "local", ""),
		})
	} else {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		client = dynamodb.NewFromConfig(awsCfg)
	}

	store := &DynamoDBStore{
		client: client,
		config: cfg,
		logger: logger,
	}

	// Create the table in local mode
	if cfg.Mode == DynamoModeLocal {
		if err := EnsureOutcomesTable(ctx, client, cfg, logger); err != nil {
			return nil, err
		}
	}

	logger.Info().
		Str("mode", string(cfg.Mode)).
		Str("region", cfg.Region).
		Str("table", cfg.OutcomesTable).
		Msg("DynamoDB store initialized")

	return store, nil
}

// RecordOutcome writes one lead outcome
func (s *DynamoDBStore) RecordOutcome(ctx context.Context, outcome types.LeadOutcome) error {
	item, err := marshalOutcome(outcome)
	if err != nil {
		return err
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.config.OutcomesTable),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to save lead outcome: %w", err)
	}
	return nil
}

// GetOutcomes returns every outcome recorded on the given YYYY-MM-DD day
func (s *DynamoDBStore) GetOutcomes(ctx context.Context, dateKey string) ([]types.LeadOutcome, error) {
	keyCond := expression.Key(outcomePartitionKey).Equal(expression.Value(dateKey))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build expression: %w", err)
	}

	return s.query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(s.config.OutcomesTable),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
}

// GetAgentOutcomes returns the leads routed to one agent on the given day
func (s *DynamoDBStore) GetAgentOutcomes(ctx context.Context, agentID, dateKey string) ([]types.LeadOutcome, error) {
	keyCond := expression.Key(outcomePartitionKey).Equal(expression.Value(dateKey))
	filter := expression.Name("AgentID").Equal(expression.Value(agentID))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).WithFilter(filter).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build expression: %w", err)
	}

	return s.query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(s.config.OutcomesTable),
		KeyConditionExpression:    expr.KeyCondition(),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
}

// query pages through a query and unmarshals every item
func (s *DynamoDBStore) query(ctx context.Context, input *dynamodb.QueryInput) ([]types.LeadOutcome, error) {
	var outcomes []types.LeadOutcome

	paginator := dynamodb.NewQueryPaginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to query lead outcomes: %w", err)
		}
		var batch []types.LeadOutcome
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, fmt.Errorf("failed to unmarshal lead outcomes: %w", err)
		}
		outcomes = append(outcomes, batch...)
	}
	return outcomes, nil
}

// NewStore creates the appropriate store based on configuration
func NewStore(ctx context.Context, cfg DynamoConfig, logger zerolog.Logger) (Store, error) {
	if !cfg.Enabled() {
		logger.Info().Msg("DynamoDB disabled (DYNAMO_MODE=none)")
		return NewNoopStore(), nil
	}
	store, err := NewDynamoDBStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return store, nil
}

// TruncateAll deletes every item from the outcomes table (scan + batch delete)
func (s *DynamoDBStore) TruncateAll(ctx context.Context) error {
	if err := s.truncateTable(ctx, s.config.OutcomesTable, outcomePartitionKey, outcomeSortKey); err != nil {
		return fmt.Errorf("failed to truncate %s: %w", s.config.OutcomesTable, err)
	}
	return nil
}

func (s *DynamoDBStore) truncateTable(ctx context.Context, tableName, pk, sk string) error {
	var lastKey map[string]dbtypes.AttributeValue

	for {
		input := &dynamodb.ScanInput{
			TableName:            aws.String(tableName),
			ProjectionExpression: aws.String("#pk, #sk"),
			ExpressionAttributeNames: map[string]string{
				"#pk": pk,
				"#sk": sk,
			},
			Limit: aws.Int32(500),
		}
		if lastKey != nil {
			input.ExclusiveStartKey = lastKey
		}

		result, err := s.client.Scan(ctx, input)
		if err != nil {
			return err
		}

		for _, requests := range deleteBatches(result.Items, pk, sk) {
			_, err := s.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
				RequestItems: map[string][]dbtypes.WriteRequest{
					tableName: requests,
				},
			})
			if err != nil {
				return err
			}
		}

		lastKey = result.LastEvaluatedKey
		if lastKey == nil {
			break
		}
	}

	s.logger.Info().Str("table", tableName).Msg("table truncated")
	return nil
}

// deleteBatches groups scanned keys into BatchWriteItem-sized delete requests
func deleteBatches(items []map[string]dbtypes.AttributeValue, pk, sk string) [][]dbtypes.WriteRequest {
	var batches [][]dbtypes.WriteRequest
	for i := 0; i < len(items); i += batchWriteLimit {
		end := min(i+batchWriteLimit, len(items))

		requests := make([]dbtypes.WriteRequest, 0, end-i)
		for _, item := range items[i:end] {
			requests = append(requests, dbtypes.WriteRequest{
				DeleteRequest: &dbtypes.DeleteRequest{
					Key: map[string]dbtypes.AttributeValue{
						pk: item[pk],
						sk: item[sk],
					},
				},
			})
		}
		batches = append(batches, requests)
	}
	return batches
}

// marshalOutcome converts an outcome into a DynamoDB item
func marshalOutcome(outcome types.LeadOutcome) (map[string]dbtypes.AttributeValue, error) {
	item, err := attributevalue.MarshalMap(outcome)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal lead outcome: %w", err)
	}
	return item, nil
}
