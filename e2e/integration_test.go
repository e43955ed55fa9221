//go:build e2e

// Package e2e contains end-to-end integration tests using real DynamoDB tables.
// Run with: go test -tags=e2e -v ./e2e/...
package e2e

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"github.com/jacentio/vellum/document"
	"github.com/jacentio/vellum/dynamostore"
	"github.com/jacentio/vellum/hash"
	"github.com/jacentio/vellum/schema"
)

// Test configuration
const (
	awsProfile = "jacent-alpha-cp"

	// Table names - unique per test run to avoid conflicts
	tablePrefix = "vellum-e2e-test"
)

var (
	testID          string
	documentTable   string
	constraintTable string

	ddbClient *dynamodb.Client
	resolver  *document.Resolver

	userSchema    *schema.Schema
	addressSchema *schema.Schema
)

// --- Test Setup & Teardown ---

func TestMain(m *testing.M) {
	// Generate unique test ID
	testID = uuid.New().String()[:8]
	documentTable = fmt.Sprintf("%s-%s-documents", tablePrefix, testID)
	constraintTable = fmt.Sprintf("%s-%s-constraints", tablePrefix, testID)

	fmt.Printf("Test ID: %s\n", testID)
	fmt.Printf("Tables:\n")
	fmt.Printf("  - Documents: %s\n", documentTable)
	fmt.Printf("  - Constraints: %s\n", constraintTable)

	// Initialize AWS client (uses region from profile config)
	ctx := context.Background()
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithSharedConfigProfile(awsProfile),
	)
	if err != nil {
		fmt.Printf("Failed to load AWS config: %v\n", err)
		os.Exit(1)
	}

	ddbClient = dynamodb.NewFromConfig(cfg)

	// Create tables
	if err := createTables(ctx); err != nil {
		fmt.Printf("Failed to create tables: %v\n", err)
		os.Exit(1)
	}

	// Declare schemas
	addressSchema = schema.MustNew("address",
		schema.Text("street", schema.Required()),
		schema.Text("city"),
	)
	userSchema = schema.MustNew("user",
		schema.Text("name", schema.Required()),
		schema.Text("email", schema.Unique()),
		schema.Set("tags", schema.Text("tag")),
		schema.Reference("friend", "user"),
		schema.Embedded("address", addressSchema),
		schema.Password("password", hash.Bcrypt()),
	)
	registry := schema.NewRegistry()
	registry.MustRegister(userSchema)
	registry.MustRegister(addressSchema)

	// Initialize store and resolver
	st := dynamostore.NewWithRegistry(ddbClient, dynamostore.Config{
		Table:           documentTable,
		ConstraintTable: constraintTable,
	}, registry)
	resolver = document.NewResolver(st, registry)

	// Run tests
	code := m.Run()

	// Cleanup tables
	if err := deleteTables(ctx); err != nil {
		fmt.Printf("Failed to delete tables: %v\n", err)
	}

	os.Exit(code)
}

func createTables(ctx context.Context) error {
	fmt.Println("Creating test tables...")

	// Document table (pk)
	_, err := ddbClient.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: aws.String(documentTable),
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String("pk"), KeyType: types.KeyTypeHash},
		},
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String("pk"), AttributeType: types.ScalarAttributeTypeS},
		},
		BillingMode: types.BillingModePayPerRequest,
	})
	if err != nil {
		return fmt.Errorf("create document table: %w", err)
	}

	// Unique constraints table (pk, sk)
	_, err = ddbClient.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: aws.String(constraintTable),
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String("pk"), KeyType: types.KeyTypeHash},
			{AttributeName: aws.String("sk"), KeyType: types.KeyTypeRange},
		},
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String("pk"), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String("sk"), AttributeType: types.ScalarAttributeTypeS},
		},
		BillingMode: types.BillingModePayPerRequest,
	})
	if err != nil {
		return fmt.Errorf("create constraint table: %w", err)
	}

	// Wait for all tables to be active
	for _, tableName := range []string{documentTable, constraintTable} {
		waiter := dynamodb.NewTableExistsWaiter(ddbClient)
		if err := waiter.Wait(ctx, &dynamodb.DescribeTableInput{
			TableName: aws.String(tableName),
		}, 2*time.Minute); err != nil {
			return fmt.Errorf("wait for table %s: %w", tableName, err)
		}
	}

	fmt.Println("All tables created and active")
	return nil
}

func deleteTables(ctx context.Context) error {
	fmt.Println("Deleting test tables...")

	for _, tableName := range []string{documentTable, constraintTable} {
		_, err := ddbClient.DeleteTable(ctx, &dynamodb.DeleteTableInput{
			TableName: aws.String(tableName),
		})
		if err != nil {
			fmt.Printf("Warning: failed to delete table %s: %v\n", tableName, err)
		}
	}

	fmt.Println("Tables deleted")
	return nil
}

func mustSet(t *testing.T, doc *document.Document, name string, value any) {
	t.Helper()
	if err := doc.Set(name, value); err != nil {
		t.Fatalf("Set %s failed: %v", name, err)
	}
}

// --- CRUD Tests ---

func TestSaveAndReload(t *testing.T) {
	ctx := context.Background()

	alice := resolver.New(userSchema)
	mustSet(t, alice, "name", "Alice")
	mustSet(t, alice, "email", uuid.New().String()+"@example.com")
	mustSet(t, alice, "tags", []string{"admin", "beta"})

	if err := alice.Save(ctx); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if alice.Key() == "" {
		t.Fatal("expected key to be assigned on save")
	}

	loaded, err := resolver.Load(ctx, userSchema, alice.Key())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	name, err := loaded.Get(ctx, "name")
	if err != nil {
		t.Fatalf("Get name failed: %v", err)
	}
	if name != "Alice" {
		t.Errorf("expected name 'Alice', got %v", name)
	}

	tags, err := loaded.Get(ctx, "tags")
	if err != nil {
		t.Fatalf("Get tags failed: %v", err)
	}
	set, ok := tags.(map[any]struct{})
	if !ok {
		t.Fatalf("expected set, got %T", tags)
	}
	if _, ok := set["admin"]; !ok {
		t.Error("expected 'admin' in tags")
	}
}

func TestLoad_NotFound(t *testing.T) {
	ctx := context.Background()

	_, err := resolver.Load(ctx, userSchema, uuid.New().String())
	if !errors.Is(err, document.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()

	doc := resolver.New(userSchema)
	mustSet(t, doc, "name", "Ephemeral")
	if err := doc.Save(ctx); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if err := doc.Delete(ctx); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	_, err := resolver.Load(ctx, userSchema, doc.Key())
	if !errors.Is(err, document.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

// --- Reference Tests ---

func TestReferenceResolution(t *testing.T) {
	ctx := context.Background()

	bob := resolver.New(userSchema)
	mustSet(t, bob, "name", "Bob")
	if err := bob.Save(ctx); err != nil {
		t.Fatalf("Save bob failed: %v", err)
	}

	alice := resolver.New(userSchema)
	mustSet(t, alice, "name", "Alice")
	mustSet(t, alice, "friend", bob)
	if err := alice.Save(ctx); err != nil {
		t.Fatalf("Save alice failed: %v", err)
	}

	loaded, err := resolver.Load(ctx, userSchema, alice.Key())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.RawData()["friend"] != bob.Key() {
		t.Errorf("expected raw friend %q, got %v", bob.Key(), loaded.RawData()["friend"])
	}

	friend, err := loaded.Get(ctx, "friend")
	if err != nil {
		t.Fatalf("Get friend failed: %v", err)
	}
	friendDoc, ok := friend.(*document.Document)
	if !ok {
		t.Fatalf("expected *document.Document, got %T", friend)
	}
	friendName, err := friendDoc.Get(ctx, "name")
	if err != nil {
		t.Fatalf("Get friend name failed: %v", err)
	}
	if friendName != "Bob" {
		t.Errorf("expected friend name 'Bob', got %v", friendName)
	}
}

// --- Embedded Document Tests ---

func TestEmbeddedRoundTrip(t *testing.T) {
	ctx := context.Background()

	addr := document.NewSimple(addressSchema)
	if err := addr.Set("street", "1 Main St"); err != nil {
		t.Fatalf("Set street failed: %v", err)
	}
	if err := addr.Set("city", "Springfield"); err != nil {
		t.Fatalf("Set city failed: %v", err)
	}

	doc := resolver.New(userSchema)
	mustSet(t, doc, "name", "Homer")
	mustSet(t, doc, "address", addr)
	if err := doc.Save(ctx); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := resolver.Load(ctx, userSchema, doc.Key())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	got, err := loaded.Get(ctx, "address")
	if err != nil {
		t.Fatalf("Get address failed: %v", err)
	}
	embedded, ok := got.(*document.SimpleDocument)
	if !ok {
		t.Fatalf("expected *document.SimpleDocument, got %T", got)
	}
	street, err := embedded.Get("street")
	if err != nil {
		t.Fatalf("Get street failed: %v", err)
	}
	if street != "1 Main St" {
		t.Errorf("expected street '1 Main St', got %v", street)
	}
}

// --- Password Tests ---

func TestPasswordSurvivesRoundTrip(t *testing.T) {
	ctx := context.Background()

	doc := resolver.New(userSchema)
	mustSet(t, doc, "name", "Secret Keeper")
	mustSet(t, doc, "password", "hunter2")
	if err := doc.Save(ctx); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := resolver.Load(ctx, userSchema, doc.Key())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	got, err := loaded.Get(ctx, "password")
	if err != nil {
		t.Fatalf("Get password failed: %v", err)
	}
	verifier, ok := got.(schema.Verifier)
	if !ok {
		t.Fatalf("expected schema.Verifier, got %T", got)
	}
	if !verifier.Matches("hunter2") {
		t.Error("expected stored password to match 'hunter2'")
	}
	if verifier.Matches("wrong") {
		t.Error("expected wrong password to not match")
	}
}

// --- Unique Constraint Tests ---

func TestUniqueConstraint_Enforced(t *testing.T) {
	ctx := context.Background()

	email := uuid.New().String() + "@example.com"

	first := resolver.New(userSchema)
	mustSet(t, first, "name", "First")
	mustSet(t, first, "email", email)
	if err := first.Save(ctx); err != nil {
		t.Fatalf("Save first failed: %v", err)
	}

	second := resolver.New(userSchema)
	mustSet(t, second, "name", "Second")
	mustSet(t, second, "email", email)
	err := second.Save(ctx)
	if !errors.Is(err, document.ErrDuplicateValue) {
		t.Errorf("expected ErrDuplicateValue, got %v", err)
	}
}

func TestUniqueConstraint_ReleasedOnChange(t *testing.T) {
	ctx := context.Background()

	oldEmail := uuid.New().String() + "@example.com"
	newEmail := uuid.New().String() + "@example.com"

	doc := resolver.New(userSchema)
	mustSet(t, doc, "name", "Mover")
	mustSet(t, doc, "email", oldEmail)
	if err := doc.Save(ctx); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	mustSet(t, doc, "email", newEmail)
	if err := doc.Save(ctx); err != nil {
		t.Fatalf("Second save failed: %v", err)
	}

	// Old value is free again.
	claimant := resolver.New(userSchema)
	mustSet(t, claimant, "name", "Claimant")
	mustSet(t, claimant, "email", oldEmail)
	if err := claimant.Save(ctx); err != nil {
		t.Errorf("expected old email to be released, got %v", err)
	}
}

func TestUniqueConstraint_ReleasedOnDelete(t *testing.T) {
	ctx := context.Background()

	email := uuid.New().String() + "@example.com"

	doc := resolver.New(userSchema)
	mustSet(t, doc, "name", "Deleted")
	mustSet(t, doc, "email", email)
	if err := doc.Save(ctx); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := doc.Delete(ctx); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	claimant := resolver.New(userSchema)
	mustSet(t, claimant, "name", "Claimant")
	mustSet(t, claimant, "email", email)
	if err := claimant.Save(ctx); err != nil {
		t.Errorf("expected email to be released on delete, got %v", err)
	}
}

// --- Reload Tests ---

func TestReloadSeesExternalWrites(t *testing.T) {
	ctx := context.Background()

	doc := resolver.New(userSchema)
	mustSet(t, doc, "name", "Before")
	if err := doc.Save(ctx); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	other, err := resolver.Load(ctx, userSchema, doc.Key())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	mustSet(t, other, "name", "After")
	if err := other.Save(ctx); err != nil {
		t.Fatalf("Save other failed: %v", err)
	}

	if err := doc.Reload(ctx); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	name, err := doc.Get(ctx, "name")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if name != "After" {
		t.Errorf("expected name 'After', got %v", name)
	}
}
