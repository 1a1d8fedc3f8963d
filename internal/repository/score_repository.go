package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/yourusername/paddock-parser/internal/database"
	"github.com/yourusername/paddock-parser/internal/models"
)

const errScanScore = "failed to scan score: %w"

// PostgresScoreRepository implements ScoreRepository for PostgreSQL
type PostgresScoreRepository struct {
	db *database.DB
}

// NewPostgresScoreRepository creates a new score repository
func NewPostgresScoreRepository(db *database.DB) ScoreRepository {
	return &PostgresScoreRepository{db: db}
}

// SaveBatch inserts every record of the batch in one transaction.
func (r *PostgresScoreRepository) SaveBatch(ctx context.Context, batch ScoreBatch) error {
	query := `
		INSERT INTO race_scores (batch_id, race_key, score, reason, best_value_score, best_value_reason, race, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	return r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		for _, rec := range batch.Records {
			race, err := json.Marshal(rec.Race)
			if err != nil {
				return fmt.Errorf("failed to encode race %s: %w", rec.RaceKey, err)
			}
			_, err = tx.Exec(ctx, query,
				batch.ID, rec.RaceKey, rec.Score, rec.Reason,
				rec.BestValueScore, rec.BestValueReason, race, batch.RecordedAt,
			)
			if err != nil {
				return fmt.Errorf("failed to insert score for %s: %w", rec.RaceKey, err)
			}
		}
		return nil
	})
}

// GetBatch retrieves a batch ordered by score, highest first.
func (r *PostgresScoreRepository) GetBatch(ctx context.Context, batchID uuid.UUID) ([]models.ScoreRecord, error) {
	query := `
		SELECT race_key, score, reason, best_value_score, best_value_reason, race
		FROM race_scores WHERE batch_id = $1
		ORDER BY score DESC, id
	`

	rows, err := r.db.GetPool().Query(ctx, query, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query batch: %w", err)
	}
	defer rows.Close()

	var records []models.ScoreRecord
	for rows.Next() {
		rec, err := scanScore(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate batch: %w", err)
	}
	return records, nil
}

// GetLatestForRace retrieves the most recent score stored for a race.
func (r *PostgresScoreRepository) GetLatestForRace(ctx context.Context, raceKey string) (*models.ScoreRecord, error) {
	query := `
		SELECT race_key, score, reason, best_value_score, best_value_reason, race
		FROM race_scores WHERE race_key = $1
		ORDER BY recorded_at DESC, id DESC
		LIMIT 1
	`

	rec, err := scanScore(r.db.GetPool().QueryRow(ctx, query, raceKey))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	return rec, err
}

func scanScore(row pgx.Row) (*models.ScoreRecord, error) {
	var (
		rec  models.ScoreRecord
		race []byte
	)
	if err := row.Scan(&rec.RaceKey, &rec.Score, &rec.Reason, &rec.BestValueScore, &rec.BestValueReason, &race); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf(errScanScore, err)
	}
	if err := json.Unmarshal(race, &rec.Race); err != nil {
		return nil, fmt.Errorf(errScanScore, err)
	}
	return &rec, nil
}

// NewBatch stamps records with a fresh batch id.
func NewBatch(records []models.ScoreRecord, recordedAt time.Time) ScoreBatch {
	return ScoreBatch{ID: uuid.New(), RecordedAt: recordedAt.UTC(), Records: records}
}
