package integration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"jalai-market/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SeededActors holds the fixed actor ids inserted by SeedActors.
type SeededActors struct {
	BuyerID     uuid.UUID
	SellerID    uuid.UUID
	AdminID     uuid.UUID
	OrphanageID uuid.UUID
}

// SetupTestDB creates a PostgreSQL test container and connection pool.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	// Create PostgreSQL container
	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	// Get connection string
	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	// Create connection pool
	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		t.Fatalf("failed to parse connection string: %v", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("failed to ping database: %v", err)
	}

	// Apply the real schema
	applySchema(t, pool)

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// applySchema runs the production migration file against the test database
// so integration tests exercise the same constraints as deployments.
func applySchema(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	schema, err := os.ReadFile(filepath.Join("..", "..", "migrations", "000001_init.up.sql"))
	if err != nil {
		t.Fatalf("failed to read migration file: %v", err)
	}

	if _, err := pool.Exec(ctx, string(schema)); err != nil {
		t.Fatalf("failed to apply schema: %v", err)
	}
}

// SeedActors inserts a buyer, a seller, an admin and an approved orphanage.
func SeedActors(t *testing.T, pool *pgxpool.Pool) SeededActors {
	t.Helper()

	ctx := context.Background()
	actors := SeededActors{
		BuyerID:     uuid.New(),
		SellerID:    uuid.New(),
		AdminID:     uuid.New(),
		OrphanageID: uuid.New(),
	}

	_, err := pool.Exec(ctx,
		"INSERT INTO clients (id, name, email) VALUES ($1, $2, $3), ($4, $5, $6)",
		actors.BuyerID, "Test Buyer", "buyer@example.com",
		actors.SellerID, "Test Seller", "seller@example.com",
	)
	if err != nil {
		t.Fatalf("failed to seed clients: %v", err)
	}

	_, err = pool.Exec(ctx,
		"INSERT INTO admins (id, name, email) VALUES ($1, $2, $3)",
		actors.AdminID, "Test Admin", "admin@example.com",
	)
	if err != nil {
		t.Fatalf("failed to seed admin: %v", err)
	}

	_, err = pool.Exec(ctx,
		"INSERT INTO orphanages (id, name, email, location, is_approved, approved_by) VALUES ($1, $2, $3, $4, TRUE, $5)",
		actors.OrphanageID, "Test Orphanage", "orphanage@example.com", "Douala", actors.AdminID,
	)
	if err != nil {
		t.Fatalf("failed to seed orphanage: %v", err)
	}

	return actors
}

// SeedProduct inserts one approved, available product for the given seller
// and returns its id.
func SeedProduct(t *testing.T, pool *pgxpool.Pool, sellerID uuid.UUID, name, price string) uuid.UUID {
	t.Helper()

	ctx := context.Background()
	id := uuid.New()

	_, err := pool.Exec(ctx,
		`INSERT INTO products (id, name, description, price, is_available, is_approved, seller_id)
		 VALUES ($1, $2, $3, $4, TRUE, TRUE, $5)`,
		id, name, "seeded product", decimal.RequireFromString(price), sellerID,
	)
	if err != nil {
		t.Fatalf("failed to seed product %s: %v", name, err)
	}

	return id
}

// SeedCartLine inserts a cart line with the product's current price.
func SeedCartLine(t *testing.T, pool *pgxpool.Pool, clientID, productID uuid.UUID, quantity int, unitPrice string) {
	t.Helper()

	ctx := context.Background()

	_, err := pool.Exec(ctx,
		"INSERT INTO cart_items (id, client_id, product_id, quantity, unit_price) VALUES ($1, $2, $3, $4, $5)",
		uuid.New(), clientID, productID, quantity, decimal.RequireFromString(unitPrice),
	)
	if err != nil {
		t.Fatalf("failed to seed cart line: %v", err)
	}
}

// SeedOrder inserts an order in the given status and returns its id.
func SeedOrder(t *testing.T, pool *pgxpool.Pool, clientID, sellerID uuid.UUID, status model.OrderStatus, total string) uuid.UUID {
	t.Helper()

	ctx := context.Background()
	id := uuid.New()

	_, err := pool.Exec(ctx,
		`INSERT INTO orders (id, client_id, seller_id, status, total_amount, delivery_date)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		id, clientID, sellerID, status, decimal.RequireFromString(total), time.Now().UTC().Add(72*time.Hour),
	)
	if err != nil {
		t.Fatalf("failed to seed order: %v", err)
	}

	return id
}

// CleanupDB cleans all data from test tables.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	tables := []string{
		"notifications", "donations", "payments",
		"order_items", "orders", "cart_items",
		"products", "categories", "orphanages", "admins", "clients",
	}
	for _, table := range tables {
		_, err := pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}
}
