package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/yourusername/paddock-parser/internal/config"
)

// schema is applied on start-up. Every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS race_scores (
		id                BIGSERIAL PRIMARY KEY,
		batch_id          UUID NOT NULL,
		race_key          TEXT NOT NULL,
		score             DOUBLE PRECISION NOT NULL,
		reason            TEXT NOT NULL,
		best_value_score  DOUBLE PRECISION,
		best_value_reason TEXT,
		race              JSONB NOT NULL,
		recorded_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_race_scores_batch ON race_scores (batch_id)`,
	`CREATE INDEX IF NOT EXISTS idx_race_scores_race_key ON race_scores (race_key, recorded_at DESC)`,
}

// Initialize creates a connection pool and makes sure the schema exists.
func Initialize(ctx context.Context, cfg *config.DatabaseConfig) (*DB, error) {
	db, err := NewDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Migrate applies the schema.
func (db *DB) Migrate(ctx context.Context) error {
	return db.WithTransaction(ctx, func(tx pgx.Tx) error {
		for i, stmt := range schema {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("schema statement %d: %w", i+1, err)
			}
		}
		return nil
	})
}
