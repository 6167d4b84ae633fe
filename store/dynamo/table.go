// Package dynamo provides DynamoDB-backed store tables.
package dynamo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"github.com/jacentio/catalog/internal/shard"
	"github.com/jacentio/catalog/store"
)

// API is the subset of the DynamoDB client used by this package.
// *dynamodb.Client satisfies it.
type API interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
	CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// Table stores one entity type in a DynamoDB table keyed by "id".
type Table[T store.Record[T]] struct {
	client API
	config store.Config
	name   string
	newID  func() string
}

// NewTable creates a Table for the logical table name.
// The physical table name is config.Table(name).
func NewTable[T store.Record[T]](client API, config store.Config, name string) *Table[T] {
	config.Validate()
	return &Table[T]{
		client: client,
		config: config,
		name:   name,
		newID:  uuid.NewString,
	}
}

// Name returns the logical table name.
func (t *Table[T]) Name() string { return t.name }

func (t *Table[T]) physical() string { return t.config.Table(t.name) }

// List scans the table and returns records ordered by creation time.
func (t *Table[T]) List(ctx context.Context) ([]T, error) {
	raws, err := t.scan(ctx, &dynamodb.ScanInput{
		TableName: aws.String(t.physical()),
	}, false)
	if err != nil {
		return nil, err
	}
	return t.decodeSorted(raws)
}

// Get retrieves a record by id, returning store.ErrNotFound if missing.
func (t *Table[T]) Get(ctx context.Context, id string) (T, error) {
	var zero T
	raw, err := t.getRaw(ctx, id)
	if err != nil {
		return zero, err
	}
	return t.decode(raw)
}

// Create assigns a UUID and writes the record with parent validation and
// unique constraints in a single transaction.
func (t *Table[T]) Create(ctx context.Context, rec T) (T, error) {
	var zero T
	rec = rec.WithID(t.newID())

	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return zero, fmt.Errorf("marshal %s: %w", rec.EntityType(), err)
	}

	nowISO := time.Now().UTC().Format(time.RFC3339Nano)
	items := []types.TransactWriteItem{}

	// 1. Parent condition checks
	checks := t.parentChecks(rec)
	items = append(items, t.conditionChecks(checks)...)

	// 2. Set managed fields
	item["entity_ref"] = &types.AttributeValueMemberS{Value: rec.EntityRef()}
	item["version"] = &types.AttributeValueMemberN{Value: "1"}
	item["created_at"] = &types.AttributeValueMemberS{Value: nowISO}
	item["updated_at"] = &types.AttributeValueMemberS{Value: nowISO}

	// 3. Unique constraints
	uniques := uniqueFields(rec)
	var uniquePKs []string
	for _, f := range uniques {
		pk := shard.UniqueConstraintPK(t.name, f.field, f.value)
		uniquePKs = append(uniquePKs, pk)
		items = append(items, t.constraintPut(rec, pk, f))
	}
	if len(uniquePKs) > 0 {
		uniquePKsAttr, err := attributevalue.MarshalList(uniquePKs)
		if err != nil {
			return zero, fmt.Errorf("marshal unique keys: %w", err)
		}
		item["_unique_pks"] = &types.AttributeValueMemberL{Value: uniquePKsAttr}
	}

	// 4. Entity put
	entityIndex := len(items)
	items = append(items, types.TransactWriteItem{
		Put: &types.Put{
			TableName:           aws.String(t.physical()),
			Item:                item,
			ConditionExpression: aws.String("attribute_not_exists(id)"),
		},
	})

	_, err = t.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: items,
	})
	if err := mapTransactionError(err, checks, entityIndex, store.ErrAlreadyExists); err != nil {
		return zero, err
	}
	return rec, nil
}

// Put replaces an existing record with optimistic locking. Parent checks are
// re-run and unique constraint records are swapped when their values change.
func (t *Table[T]) Put(ctx context.Context, rec T) (T, error) {
	var zero T
	current, err := t.getRaw(ctx, rec.GetID())
	if err != nil {
		return zero, err
	}
	meta := readMeta(current)

	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return zero, fmt.Errorf("marshal %s: %w", rec.EntityType(), err)
	}

	items := []types.TransactWriteItem{}
	checks := t.parentChecks(rec)
	items = append(items, t.conditionChecks(checks)...)

	// Swap changed unique constraints
	var uniquePKs []string
	for _, f := range uniqueFields(rec) {
		newPK := shard.UniqueConstraintPK(t.name, f.field, f.value)
		uniquePKs = append(uniquePKs, newPK)

		old, ok := current[f.field].(*types.AttributeValueMemberS)
		if ok && old.Value == f.value {
			continue
		}
		if ok && old.Value != "" {
			oldPK := shard.UniqueConstraintPK(t.name, f.field, old.Value)
			items = append(items, t.constraintDelete(oldPK))
		}
		items = append(items, t.constraintPut(rec, newPK, f))
	}
	if len(uniquePKs) > 0 {
		uniquePKsAttr, err := attributevalue.MarshalList(uniquePKs)
		if err != nil {
			return zero, fmt.Errorf("marshal unique keys: %w", err)
		}
		item["_unique_pks"] = &types.AttributeValueMemberL{Value: uniquePKsAttr}
	}

	item["entity_ref"] = &types.AttributeValueMemberS{Value: rec.EntityRef()}
	item["version"] = &types.AttributeValueMemberN{Value: strconv.FormatInt(meta.Version+1, 10)}
	item["created_at"] = &types.AttributeValueMemberS{Value: meta.CreatedAt}
	item["updated_at"] = &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339Nano)}

	entityIndex := len(items)
	items = append(items, types.TransactWriteItem{
		Put: &types.Put{
			TableName:                aws.String(t.physical()),
			Item:                     item,
			ConditionExpression:      aws.String("#version = :expected_version"),
			ExpressionAttributeNames: map[string]string{"#version": "version"},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":expected_version": &types.AttributeValueMemberN{Value: strconv.FormatInt(meta.Version, 10)},
			},
		},
	})

	_, err = t.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: items,
	})
	if err := mapTransactionError(err, checks, entityIndex, store.ErrConcurrentModification); err != nil {
		return zero, err
	}
	return rec, nil
}

// Delete physically removes the record and its unique constraint records.
func (t *Table[T]) Delete(ctx context.Context, id string) (T, error) {
	var zero T
	current, err := t.getRaw(ctx, id)
	if err != nil {
		return zero, err
	}
	rec, err := t.decode(current)
	if err != nil {
		return zero, err
	}
	meta := readMeta(current)

	items := []types.TransactWriteItem{{
		Delete: &types.Delete{
			TableName:                aws.String(t.physical()),
			Key:                      keyFor(id),
			ConditionExpression:      aws.String("#version = :expected_version"),
			ExpressionAttributeNames: map[string]string{"#version": "version"},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":expected_version": &types.AttributeValueMemberN{Value: strconv.FormatInt(meta.Version, 10)},
			},
		},
	}}
	for _, pk := range meta.UniquePKs {
		items = append(items, t.constraintDelete(pk))
	}

	_, err = t.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: items,
	})
	if err := mapTransactionError(err, nil, 0, store.ErrConcurrentModification); err != nil {
		return zero, err
	}
	return rec, nil
}

// Find scans for records whose attribute attr equals value.
func (t *Table[T]) Find(ctx context.Context, attr, value string) ([]T, error) {
	raws, err := t.scan(ctx, t.filterScan(attr, value), false)
	if err != nil {
		return nil, err
	}
	return t.decodeSorted(raws)
}

// Exists reports whether any record has attribute attr equal to value.
// Scanning stops at the first page containing a match.
func (t *Table[T]) Exists(ctx context.Context, attr, value string) (bool, error) {
	raws, err := t.scan(ctx, t.filterScan(attr, value), true)
	if err != nil {
		return false, err
	}
	return len(raws) > 0, nil
}

func (t *Table[T]) filterScan(attr, value string) *dynamodb.ScanInput {
	return &dynamodb.ScanInput{
		TableName:                aws.String(t.physical()),
		FilterExpression:         aws.String("#attr = :value"),
		ExpressionAttributeNames: map[string]string{"#attr": attr},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":value": &types.AttributeValueMemberS{Value: value},
		},
	}
}

// scan paginates through the table. Limit is not used with filters since
// DynamoDB applies it before filtering.
func (t *Table[T]) scan(ctx context.Context, input *dynamodb.ScanInput, firstMatch bool) ([]map[string]types.AttributeValue, error) {
	var raws []map[string]types.AttributeValue
	paginator := dynamodb.NewScanPaginator(t.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		raws = append(raws, page.Items...)
		if firstMatch && len(raws) > 0 {
			break
		}
	}
	return raws, nil
}

func (t *Table[T]) getRaw(ctx context.Context, id string) (map[string]types.AttributeValue, error) {
	result, err := t.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(t.physical()),
		Key:            keyFor(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if result.Item == nil {
		return nil, store.ErrNotFound
	}
	return result.Item, nil
}

func (t *Table[T]) decode(raw map[string]types.AttributeValue) (T, error) {
	var rec T
	if err := attributevalue.UnmarshalMap(raw, &rec); err != nil {
		return rec, fmt.Errorf("unmarshal %s: %w", t.name, err)
	}
	return rec, nil
}

// decodeSorted orders items by created_at, then id, and decodes them.
func (t *Table[T]) decodeSorted(raws []map[string]types.AttributeValue) ([]T, error) {
	metas := make([]meta, len(raws))
	for i, raw := range raws {
		metas[i] = readMeta(raw)
	}
	idx := make([]int, len(raws))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ma, mb := metas[idx[a]], metas[idx[b]]
		if ma.CreatedAt != mb.CreatedAt {
			return ma.CreatedAt < mb.CreatedAt
		}
		return ma.ID < mb.ID
	})

	out := make([]T, 0, len(raws))
	for _, i := range idx {
		rec, err := t.decode(raws[i])
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func (t *Table[T]) parentChecks(rec T) []store.ConditionCheck {
	if pc, ok := any(rec).(store.ParentChecker); ok {
		return pc.ParentChecks()
	}
	return nil
}

func (t *Table[T]) conditionChecks(checks []store.ConditionCheck) []types.TransactWriteItem {
	items := make([]types.TransactWriteItem, 0, len(checks))
	for _, check := range checks {
		items = append(items, types.TransactWriteItem{
			ConditionCheck: &types.ConditionCheck{
				TableName:           aws.String(t.config.Table(check.TableName)),
				Key:                 keyFor(check.ID),
				ConditionExpression: aws.String("attribute_exists(id)"),
			},
		})
	}
	return items
}

func (t *Table[T]) constraintPut(rec T, pk string, f uniqueField) types.TransactWriteItem {
	return types.TransactWriteItem{
		Put: &types.Put{
			TableName: aws.String(t.config.UniqueTable),
			Item: map[string]types.AttributeValue{
				"pk":          &types.AttributeValueMemberS{Value: pk},
				"sk":          &types.AttributeValueMemberS{Value: "CONSTRAINT"},
				"table_name":  &types.AttributeValueMemberS{Value: t.name},
				"entity_type": &types.AttributeValueMemberS{Value: rec.EntityType()},
				"field_name":  &types.AttributeValueMemberS{Value: f.field},
				"field_value": &types.AttributeValueMemberS{Value: f.value},
				"entity_ref":  &types.AttributeValueMemberS{Value: rec.EntityRef()},
			},
			// Fails if another entity already has this unique value
			ConditionExpression: aws.String("attribute_not_exists(pk)"),
		},
	}
}

func (t *Table[T]) constraintDelete(pk string) types.TransactWriteItem {
	return types.TransactWriteItem{
		Delete: &types.Delete{
			TableName: aws.String(t.config.UniqueTable),
			Key: map[string]types.AttributeValue{
				"pk": &types.AttributeValueMemberS{Value: pk},
				"sk": &types.AttributeValueMemberS{Value: "CONSTRAINT"},
			},
		},
	}
}

// mapTransactionError maps DynamoDB transaction errors.
// Items [0, len(checks)) are parent checks; entityIndex is the entity write,
// whose condition failure maps to entityErr. Anything else is a unique constraint.
func mapTransactionError(err error, checks []store.ConditionCheck, entityIndex int, entityErr error) error {
	if err == nil {
		return nil
	}

	var txErr *types.TransactionCanceledException
	if !errors.As(err, &txErr) {
		return err
	}

	var missing []store.ConditionCheck
	var mapped error
	for i, reason := range txErr.CancellationReasons {
		if reason.Code == nil || *reason.Code != "ConditionalCheckFailed" {
			continue
		}
		switch {
		case i < len(checks):
			missing = append(missing, checks[i])
		case i == entityIndex:
			if mapped == nil {
				mapped = entityErr
			}
		default:
			if mapped == nil {
				mapped = store.ErrDuplicateValue
			}
		}
	}
	if len(missing) > 0 {
		return &store.ParentError{Missing: missing}
	}
	if mapped != nil {
		return mapped
	}
	return err
}

func keyFor(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: id},
	}
}

type uniqueField struct {
	field string
	value string
}

// uniqueFields returns the record's unique fields sorted by name so
// transaction item indices are stable.
func uniqueFields(rec any) []uniqueField {
	uf, ok := rec.(store.UniqueFielder)
	if !ok {
		return nil
	}
	var out []uniqueField
	for field, value := range uf.UniqueFields() {
		out = append(out, uniqueField{field: field, value: value})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].field < out[j].field })
	return out
}

// meta holds the managed attributes of a stored item.
type meta struct {
	ID        string
	Version   int64
	CreatedAt string
	UpdatedAt string
	EntityRef string
	UniquePKs []string
}

// readMeta extracts managed attributes, leaving zero values for missing or
// mistyped ones.
func readMeta(raw map[string]types.AttributeValue) meta {
	var m meta

	if v, ok := raw["id"].(*types.AttributeValueMemberS); ok {
		m.ID = v.Value
	}
	if v, ok := raw["version"].(*types.AttributeValueMemberN); ok {
		m.Version, _ = strconv.ParseInt(v.Value, 10, 64)
	}
	if v, ok := raw["created_at"].(*types.AttributeValueMemberS); ok {
		m.CreatedAt = v.Value
	}
	if v, ok := raw["updated_at"].(*types.AttributeValueMemberS); ok {
		m.UpdatedAt = v.Value
	}
	if v, ok := raw["entity_ref"].(*types.AttributeValueMemberS); ok {
		m.EntityRef = v.Value
	}
	if v, ok := raw["_unique_pks"].(*types.AttributeValueMemberL); ok {
		for _, av := range v.Value {
			if s, ok := av.(*types.AttributeValueMemberS); ok {
				m.UniquePKs = append(m.UniquePKs, s.Value)
			}
		}
	}

	return m
}
