package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jacentio/catalog/store"
)

// tableWait bounds how long EnsureTables waits for a table to become active.
const tableWait = 2 * time.Minute

// EnsureTables creates the entity tables named by names and the unique
// constraint table, if they don't exist yet. Tables use on-demand billing.
// Entity tables are keyed by "id"; the constraint table by "pk" and "sk".
func EnsureTables(ctx context.Context, client API, config store.Config, names ...string) error {
	config.Validate()

	for _, name := range names {
		if err := createTable(ctx, client, config.Table(name), []types.KeySchemaElement{
			{AttributeName: aws.String("id"), KeyType: types.KeyTypeHash},
		}); err != nil {
			return err
		}
	}

	return createTable(ctx, client, config.UniqueTable, []types.KeySchemaElement{
		{AttributeName: aws.String("pk"), KeyType: types.KeyTypeHash},
		{AttributeName: aws.String("sk"), KeyType: types.KeyTypeRange},
	})
}

func createTable(ctx context.Context, client API, name string, keys []types.KeySchemaElement) error {
	attrs := make([]types.AttributeDefinition, 0, len(keys))
	for _, k := range keys {
		attrs = append(attrs, types.AttributeDefinition{
			AttributeName: k.AttributeName,
			AttributeType: types.ScalarAttributeTypeS,
		})
	}

	_, err := client.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName:            aws.String(name),
		KeySchema:            keys,
		AttributeDefinitions: attrs,
		BillingMode:          types.BillingModePayPerRequest,
	})
	if err != nil {
		var inUse *types.ResourceInUseException
		if !errors.As(err, &inUse) {
			return fmt.Errorf("create table %s: %w", name, err)
		}
	}

	waiter := dynamodb.NewTableExistsWaiter(client)
	if err := waiter.Wait(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(name)}, tableWait); err != nil {
		return fmt.Errorf("wait for table %s: %w", name, err)
	}
	return nil
}
