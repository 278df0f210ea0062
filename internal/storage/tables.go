package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog"
)

// Key attributes of the outcomes table
const (
	outcomePartitionKey = "DateKey"
	outcomeSortKey      = "LeadID"
)

// tableActiveTimeout bounds how long local startup waits for a new table
const tableActiveTimeout = 30 * time.Second

// outcomesTableInput describes the outcomes table: one partition per day,
// one item per lead leaving the queue
func outcomesTableInput(name string) *dynamodb.CreateTableInput {
	return &dynamodb.CreateTableInput{
		TableName: aws.String(name),
		KeySchema: []dbtypes.KeySchemaElement{
			{AttributeName: aws.String(outcomePartitionKey), KeyType: dbtypes.KeyTypeHash},
			{AttributeName: aws.String(outcomeSortKey), KeyType: dbtypes.KeyTypeRange},
		},
		AttributeDefinitions: []dbtypes.AttributeDefinition{
			{AttributeName: aws.String(outcomePartitionKey), AttributeType: dbtypes.ScalarAttributeTypeS},
			{AttributeName: aws.String(outcomeSortKey), AttributeType: dbtypes.ScalarAttributeTypeS},
		},
		BillingMode: dbtypes.BillingModePayPerRequest,
	}
}

// EnsureOutcomesTable creates the outcomes table when it is missing and
// waits for it to become active. Used in local mode only.
func EnsureOutcomesTable(ctx context.Context, client *dynamodb.Client, cfg DynamoConfig, logger zerolog.Logger) error {
	name := cfg.OutcomesTable

	_, err := client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(name)})
	if err == nil {
		logger.Info().Str("table", name).Msg("table already exists")
		return nil
	}
	var notFound *dbtypes.ResourceNotFoundException
	if !errors.As(err, &notFound) {
		return fmt.Errorf("failed to describe table %s: %w", name, err)
	}

	if _, err := client.CreateTable(ctx, outcomesTableInput(name)); err != nil {
		return fmt.Errorf("failed to create table %s: %w", name, err)
	}

	waiter := dynamodb.NewTableExistsWaiter(client)
	if err := waiter.Wait(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(name)}, tableActiveTimeout); err != nil {
		return fmt.Errorf("table %s not active: %w", name, err)
	}

	logger.Info().Str("table", name).Msg("table created")
	return nil
}
