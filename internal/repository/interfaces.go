package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/paddock-parser/internal/models"
)

// ScoreBatch is the set of results one report write persists together.
type ScoreBatch struct {
	ID         uuid.UUID
	RecordedAt time.Time
	Records    []models.ScoreRecord
}

// ScoreRepository defines the interface for score data access
type ScoreRepository interface {
	SaveBatch(ctx context.Context, batch ScoreBatch) error
	GetBatch(ctx context.Context, batchID uuid.UUID) ([]models.ScoreRecord, error)
	GetLatestForRace(ctx context.Context, raceKey string) (*models.ScoreRecord, error)
}
