package dynamo

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jacentio/catalog/internal/shard"
	"github.com/jacentio/catalog/store"
)

// --- Test Entity ---

type widget struct {
	ID       string `dynamodbav:"id"`
	GadgetID string `dynamodbav:"gadgetId"`
	Code     string `dynamodbav:"code"`
}

func (w widget) TableName() string       { return "widgets" }
func (w widget) EntityType() string      { return "widget" }
func (w widget) EntityRef() string       { return "widget#" + w.ID }
func (w widget) GetID() string           { return w.ID }
func (w widget) WithID(id string) widget { w.ID = id; return w }

func (w widget) ParentChecks() []store.ConditionCheck {
	return []store.ConditionCheck{{TableName: "gadgets", ID: w.GadgetID}}
}

func (w widget) UniqueFields() map[string]string {
	return map[string]string{"code": w.Code}
}

// --- Fake client ---

type fakeAPI struct {
	items    map[string]map[string]types.AttributeValue
	scan     []map[string]types.AttributeValue
	txErr    error
	txInputs []*dynamodb.TransactWriteItemsInput
	created  []string
	createFn func(name string) error
}

func (f *fakeAPI) GetItem(ctx context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	id := in.Key["id"].(*types.AttributeValueMemberS).Value
	return &dynamodb.GetItemOutput{Item: f.items[id]}, nil
}

func (f *fakeAPI) Scan(ctx context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	return &dynamodb.ScanOutput{Items: f.scan}, nil
}

func (f *fakeAPI) TransactWriteItems(ctx context.Context, in *dynamodb.TransactWriteItemsInput, _ ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
	f.txInputs = append(f.txInputs, in)
	if f.txErr != nil {
		return nil, f.txErr
	}
	return &dynamodb.TransactWriteItemsOutput{}, nil
}

func (f *fakeAPI) CreateTable(ctx context.Context, in *dynamodb.CreateTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error) {
	name := aws.ToString(in.TableName)
	f.created = append(f.created, name)
	if f.createFn != nil {
		if err := f.createFn(name); err != nil {
			return nil, err
		}
	}
	return &dynamodb.CreateTableOutput{}, nil
}

func (f *fakeAPI) DescribeTable(ctx context.Context, in *dynamodb.DescribeTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	return &dynamodb.DescribeTableOutput{Table: &types.TableDescription{
		TableName:   in.TableName,
		TableStatus: types.TableStatusActive,
	}}, nil
}

func newWidgets(api *fakeAPI) *Table[widget] {
	t := NewTable[widget](api, store.Config{TablePrefix: "test_"}, "widgets")
	t.newID = func() string { return "w1" }
	return t
}

func storedWidget(id, gadget, code, version, created string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id":          &types.AttributeValueMemberS{Value: id},
		"gadgetId":    &types.AttributeValueMemberS{Value: gadget},
		"code":        &types.AttributeValueMemberS{Value: code},
		"version":     &types.AttributeValueMemberN{Value: version},
		"created_at":  &types.AttributeValueMemberS{Value: created},
		"_unique_pks": &types.AttributeValueMemberL{Value: []types.AttributeValue{&types.AttributeValueMemberS{Value: shard.UniqueConstraintPK("widgets", "code", code)}}},
	}
}

func cancelled(codes ...string) error {
	reasons := make([]types.CancellationReason, len(codes))
	for i, c := range codes {
		reasons[i] = types.CancellationReason{Code: aws.String(c)}
	}
	return &types.TransactionCanceledException{
		Message:             aws.String("Transaction cancelled"),
		CancellationReasons: reasons,
	}
}

// --- Tests ---

func TestCreate_TransactionShape(t *testing.T) {
	api := &fakeAPI{}
	tbl := newWidgets(api)

	got, err := tbl.Create(context.Background(), widget{GadgetID: "g1", Code: "abc"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if got.ID != "w1" {
		t.Errorf("expected assigned ID w1, got %q", got.ID)
	}

	if len(api.txInputs) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(api.txInputs))
	}
	items := api.txInputs[0].TransactItems
	if len(items) != 3 {
		t.Fatalf("expected 3 transaction items, got %d", len(items))
	}

	check := items[0].ConditionCheck
	if check == nil || aws.ToString(check.TableName) != "test_gadgets" {
		t.Fatalf("expected parent check on test_gadgets, got %+v", items[0])
	}

	constraint := items[1].Put
	if constraint == nil || aws.ToString(constraint.TableName) != "test_catalog_unique_constraints" {
		t.Fatalf("expected constraint put, got %+v", items[1])
	}
	wantPK := shard.UniqueConstraintPK("widgets", "code", "abc")
	if pk := constraint.Item["pk"].(*types.AttributeValueMemberS).Value; pk != wantPK {
		t.Errorf("expected constraint pk %q, got %q", wantPK, pk)
	}

	entity := items[2].Put
	if entity == nil || aws.ToString(entity.TableName) != "test_widgets" {
		t.Fatalf("expected entity put, got %+v", items[2])
	}
	if aws.ToString(entity.ConditionExpression) != "attribute_not_exists(id)" {
		t.Errorf("unexpected entity condition %q", aws.ToString(entity.ConditionExpression))
	}
	m := readMeta(entity.Item)
	if m.ID != "w1" || m.Version != 1 || m.EntityRef != "widget#w1" || m.CreatedAt == "" {
		t.Errorf("unexpected managed attributes %+v", m)
	}
	if len(m.UniquePKs) != 1 || m.UniquePKs[0] != wantPK {
		t.Errorf("expected unique pks [%s], got %v", wantPK, m.UniquePKs)
	}
}

func TestCreate_MapsCancellation(t *testing.T) {
	tests := []struct {
		name    string
		codes   []string
		wantErr error
	}{
		{"parent missing", []string{"ConditionalCheckFailed", "None", "None"}, store.ErrParentNotFound},
		{"duplicate value", []string{"None", "ConditionalCheckFailed", "None"}, store.ErrDuplicateValue},
		{"id collision", []string{"None", "None", "ConditionalCheckFailed"}, store.ErrAlreadyExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeAPI{txErr: cancelled(tt.codes...)}
			_, err := newWidgets(api).Create(context.Background(), widget{GadgetID: "g1", Code: "abc"})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestGet_NotFound(t *testing.T) {
	api := &fakeAPI{}
	if _, err := newWidgets(api).Get(context.Background(), "nope"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestPut_SwapsChangedConstraint(t *testing.T) {
	api := &fakeAPI{items: map[string]map[string]types.AttributeValue{
		"w1": storedWidget("w1", "g1", "old", "3", "2024-01-01T00:00:00Z"),
	}}
	tbl := newWidgets(api)

	if _, err := tbl.Put(context.Background(), widget{ID: "w1", GadgetID: "g1", Code: "new"}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	items := api.txInputs[0].TransactItems
	if len(items) != 4 {
		t.Fatalf("expected check, delete, put and entity put; got %d items", len(items))
	}
	oldPK := shard.UniqueConstraintPK("widgets", "code", "old")
	if del := items[1].Delete; del == nil || del.Key["pk"].(*types.AttributeValueMemberS).Value != oldPK {
		t.Errorf("expected old constraint delete, got %+v", items[1])
	}
	if items[2].Put == nil {
		t.Errorf("expected new constraint put, got %+v", items[2])
	}

	entity := items[3].Put
	expected := entity.ExpressionAttributeValues[":expected_version"].(*types.AttributeValueMemberN).Value
	if expected != "3" {
		t.Errorf("expected version condition 3, got %s", expected)
	}
	m := readMeta(entity.Item)
	if m.Version != 4 || m.CreatedAt != "2024-01-01T00:00:00Z" {
		t.Errorf("unexpected managed attributes %+v", m)
	}
}

func TestPut_UnchangedConstraint(t *testing.T) {
	api := &fakeAPI{items: map[string]map[string]types.AttributeValue{
		"w1": storedWidget("w1", "g1", "same", "1", "2024-01-01T00:00:00Z"),
	}}

	if _, err := newWidgets(api).Put(context.Background(), widget{ID: "w1", GadgetID: "g2", Code: "same"}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if n := len(api.txInputs[0].TransactItems); n != 2 {
		t.Errorf("expected parent check and entity put only, got %d items", n)
	}
}

func TestPut_VersionConflict(t *testing.T) {
	api := &fakeAPI{
		items: map[string]map[string]types.AttributeValue{
			"w1": storedWidget("w1", "g1", "same", "1", "2024-01-01T00:00:00Z"),
		},
		txErr: cancelled("None", "ConditionalCheckFailed"),
	}

	_, err := newWidgets(api).Put(context.Background(), widget{ID: "w1", GadgetID: "g1", Code: "same"})
	if !errors.Is(err, store.ErrConcurrentModification) {
		t.Errorf("expected ErrConcurrentModification, got %v", err)
	}
}

func TestDelete_RemovesConstraints(t *testing.T) {
	api := &fakeAPI{items: map[string]map[string]types.AttributeValue{
		"w1": storedWidget("w1", "g1", "abc", "2", "2024-01-01T00:00:00Z"),
	}}

	got, err := newWidgets(api).Delete(context.Background(), "w1")
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if got.Code != "abc" {
		t.Errorf("expected deleted record returned, got %+v", got)
	}

	items := api.txInputs[0].TransactItems
	if len(items) != 2 || items[0].Delete == nil || items[1].Delete == nil {
		t.Fatalf("expected entity and constraint deletes, got %+v", items)
	}
	if aws.ToString(items[1].Delete.TableName) != "test_catalog_unique_constraints" {
		t.Errorf("unexpected constraint table %q", aws.ToString(items[1].Delete.TableName))
	}
}

func TestList_OrdersByCreation(t *testing.T) {
	api := &fakeAPI{scan: []map[string]types.AttributeValue{
		storedWidget("c", "g", "3", "1", "2024-01-03T00:00:00Z"),
		storedWidget("b", "g", "2", "1", "2024-01-01T00:00:00Z"),
		storedWidget("a", "g", "1", "1", "2024-01-01T00:00:00Z"),
	}}

	got, err := newWidgets(api).List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(got))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("position %d: expected %q, got %q", i, id, got[i].ID)
		}
	}
}

func TestExists(t *testing.T) {
	api := &fakeAPI{}
	tbl := newWidgets(api)

	ok, err := tbl.Exists(context.Background(), "gadgetId", "g1")
	if err != nil || ok {
		t.Errorf("expected false, got %v, %v", ok, err)
	}

	api.scan = []map[string]types.AttributeValue{storedWidget("w1", "g1", "abc", "1", "x")}
	ok, err = tbl.Exists(context.Background(), "gadgetId", "g1")
	if err != nil || !ok {
		t.Errorf("expected true, got %v, %v", ok, err)
	}
}

func TestMapTransactionError(t *testing.T) {
	checks := []store.ConditionCheck{
		{TableName: "brands", ID: "1"},
		{TableName: "categories", ID: "2"},
	}
	plain := errors.New("network down")

	tests := []struct {
		name    string
		err     error
		wantErr error
		missing []string
	}{
		{name: "nil", err: nil, wantErr: nil},
		{name: "not a cancellation", err: plain, wantErr: plain},
		{name: "both parents", err: cancelled("ConditionalCheckFailed", "ConditionalCheckFailed", "None"), wantErr: store.ErrParentNotFound, missing: []string{"brands", "categories"}},
		{name: "second parent", err: cancelled("None", "ConditionalCheckFailed", "None"), wantErr: store.ErrParentNotFound, missing: []string{"categories"}},
		{name: "entity", err: cancelled("None", "None", "ConditionalCheckFailed"), wantErr: store.ErrAlreadyExists},
		{name: "unique", err: cancelled("None", "None", "None", "ConditionalCheckFailed"), wantErr: store.ErrDuplicateValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := mapTransactionError(tt.err, checks, 2, store.ErrAlreadyExists)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("expected nil, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
			var pe *store.ParentError
			if errors.As(err, &pe) {
				if len(pe.Missing) != len(tt.missing) {
					t.Fatalf("expected %d missing, got %+v", len(tt.missing), pe.Missing)
				}
				for i, table := range tt.missing {
					if pe.Missing[i].TableName != table {
						t.Errorf("missing[%d]: expected %s, got %s", i, table, pe.Missing[i].TableName)
					}
				}
			}
		})
	}
}

func TestReadMeta(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]types.AttributeValue
		want meta
	}{
		{
			name: "empty item",
			raw:  map[string]types.AttributeValue{},
			want: meta{},
		},
		{
			name: "all fields",
			raw: map[string]types.AttributeValue{
				"id":          &types.AttributeValueMemberS{Value: "42"},
				"version":     &types.AttributeValueMemberN{Value: "7"},
				"created_at":  &types.AttributeValueMemberS{Value: "2024-01-01T00:00:00Z"},
				"updated_at":  &types.AttributeValueMemberS{Value: "2024-01-02T00:00:00Z"},
				"entity_ref":  &types.AttributeValueMemberS{Value: "brand#42"},
				"_unique_pks": &types.AttributeValueMemberL{Value: []types.AttributeValue{&types.AttributeValueMemberS{Value: "UNIQUE#x"}}},
			},
			want: meta{
				ID:        "42",
				Version:   7,
				CreatedAt: "2024-01-01T00:00:00Z",
				UpdatedAt: "2024-01-02T00:00:00Z",
				EntityRef: "brand#42",
				UniquePKs: []string{"UNIQUE#x"},
			},
		},
		{
			name: "wrong types are ignored",
			raw: map[string]types.AttributeValue{
				"id":      &types.AttributeValueMemberN{Value: "42"},
				"version": &types.AttributeValueMemberS{Value: "7"},
			},
			want: meta{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := readMeta(tt.raw)
			if got.ID != tt.want.ID || got.Version != tt.want.Version ||
				got.CreatedAt != tt.want.CreatedAt || got.UpdatedAt != tt.want.UpdatedAt ||
				got.EntityRef != tt.want.EntityRef || len(got.UniquePKs) != len(tt.want.UniquePKs) {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestUniqueFieldsSorted(t *testing.T) {
	got := uniqueFields(multiUnique{})
	if len(got) != 3 {
		t.Fatalf("expected 3 fields, got %d", len(got))
	}
	for i, want := range []string{"a", "b", "c"} {
		if got[i].field != want {
			t.Errorf("position %d: expected %q, got %q", i, want, got[i].field)
		}
	}
	if uniqueFields(struct{}{}) != nil {
		t.Error("expected nil for a type without unique fields")
	}
}

type multiUnique struct{}

func (multiUnique) UniqueFields() map[string]string {
	return map[string]string{"c": "3", "a": "1", "b": "2"}
}

func TestEnsureTables(t *testing.T) {
	api := &fakeAPI{createFn: func(name string) error {
		if name == "test_widgets" {
			return &types.ResourceInUseException{Message: aws.String("exists")}
		}
		return nil
	}}

	err := EnsureTables(context.Background(), api, store.Config{TablePrefix: "test_"}, "widgets", "gadgets")
	if err != nil {
		t.Fatalf("EnsureTables failed: %v", err)
	}
	want := []string{"test_widgets", "test_gadgets", "test_catalog_unique_constraints"}
	if len(api.created) != len(want) {
		t.Fatalf("expected %v, got %v", want, api.created)
	}
	for i := range want {
		if api.created[i] != want[i] {
			t.Errorf("position %d: expected %q, got %q", i, want[i], api.created[i])
		}
	}
}

func TestEnsureTables_CreateError(t *testing.T) {
	boom := errors.New("access denied")
	api := &fakeAPI{createFn: func(string) error { return boom }}

	err := EnsureTables(context.Background(), api, store.DefaultConfig(), "widgets")
	if !errors.Is(err, boom) {
		t.Errorf("expected wrapped error, got %v", err)
	}
}
