package database

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/yourusername/paddock-parser/internal/config"
)

// TestDatabaseEnv names the variable that enables database integration
// tests. It holds the host of a disposable PostgreSQL instance.
const TestDatabaseEnv = "PADDOCK_TEST_DB_HOST"

// SetupTestDB connects to the integration database and applies the schema.
// The test is skipped when TestDatabaseEnv is unset.
func SetupTestDB(t *testing.T) *DB {
	t.Helper()

	host := os.Getenv(TestDatabaseEnv)
	if host == "" {
		t.Skipf("%s not set, skipping database integration test", TestDatabaseEnv)
	}

	port := 5432
	if p, err := strconv.Atoi(os.Getenv("PADDOCK_TEST_DB_PORT")); err == nil {
		port = p
	}
	cfg := &config.DatabaseConfig{
		Host:           host,
		Port:           port,
		Name:           envOr("PADDOCK_TEST_DB_NAME", "paddock_test"),
		User:           envOr("PADDOCK_TEST_DB_USER", "postgres"),
		Password:       os.Getenv("PADDOCK_TEST_DB_PASSWORD"),
		SSLMode:        "disable",
		MaxConnections: 4,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := Initialize(ctx, cfg)
	if err != nil {
		t.Fatalf("failed to initialize test database: %v", err)
	}
	return db
}

// TeardownTestDB empties the score table and closes the pool.
func TeardownTestDB(t *testing.T, db *DB) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.GetPool().Exec(ctx, "TRUNCATE race_scores"); err != nil {
		t.Errorf("failed to truncate race_scores: %v", err)
	}
	db.Close()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
