package integration

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"storekart/internal/model"

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

// SetupTestDB creates a PostgreSQL test container with the schema applied.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

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

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		t.Fatalf("failed to parse connection string: %v", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("failed to ping database: %v", err)
	}

	createSchema(t, pool)

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

// createSchema applies the migration schema to the test database.
func createSchema(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	schema, err := os.ReadFile("../../migrations/schema.sql")
	if err != nil {
		t.Fatalf("failed to read schema file: %v", err)
	}

	if _, err := pool.Exec(context.Background(), string(schema)); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}
}

// SeedProduct inserts a product and returns it.
func SeedProduct(t *testing.T, pool *pgxpool.Pool, name string, price string, stock int, active bool) model.Product {
	t.Helper()

	product := model.Product{
		ID:     uuid.New(),
		Name:   name,
		Price:  decimal.RequireFromString(price),
		Stock:  stock,
		Active: active,
	}

	_, err := pool.Exec(context.Background(),
		"INSERT INTO products (id, name, price, stock, active) VALUES ($1, $2, $3, $4, $5)",
		product.ID, product.Name, product.Price, product.Stock, product.Active,
	)
	if err != nil {
		t.Fatalf("failed to seed product %s: %v", name, err)
	}

	return product
}

// SeedAddress inserts an address for a customer and returns it.
func SeedAddress(t *testing.T, pool *pgxpool.Pool, customerID uuid.UUID) model.Address {
	t.Helper()

	address := model.Address{
		ID:         uuid.New(),
		CustomerID: customerID,
		Line1:      "1 Test Street",
		City:       "Testville",
		PostalCode: "1234",
	}

	_, err := pool.Exec(context.Background(),
		"INSERT INTO addresses (id, customer_id, line1, city, postal_code) VALUES ($1, $2, $3, $4, $5)",
		address.ID, address.CustomerID, address.Line1, address.City, address.PostalCode,
	)
	if err != nil {
		t.Fatalf("failed to seed address: %v", err)
	}

	return address
}

// SetProductPrice updates a product's catalogue price directly.
func SetProductPrice(t *testing.T, pool *pgxpool.Pool, productID uuid.UUID, price string) {
	t.Helper()

	_, err := pool.Exec(context.Background(),
		"UPDATE products SET price = $2 WHERE id = $1",
		productID, decimal.RequireFromString(price),
	)
	if err != nil {
		t.Fatalf("failed to update product price: %v", err)
	}
}

// CleanupDB removes all rows from every table.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	tables := []string{"order_items", "orders", "cart_items", "carts", "addresses", "products"}
	for _, table := range tables {
		if _, err := pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", table)); err != nil {
			t.Fatalf("failed to clean table %s: %v", table, err)
		}
	}
}
