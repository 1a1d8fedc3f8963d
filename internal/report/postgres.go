package report

import (
	"context"
	"fmt"
	"time"

	"github.com/yourusername/paddock-parser/internal/models"
	"github.com/yourusername/paddock-parser/internal/repository"
)

// PostgresSink stores every write as one score batch.
type PostgresSink struct {
	repo repository.ScoreRepository
	now  func() time.Time
}

// NewPostgresSink creates a sink backed by a score repository.
func NewPostgresSink(repo repository.ScoreRepository) *PostgresSink {
	return &PostgresSink{repo: repo, now: time.Now}
}

// Name returns the sink name
func (s *PostgresSink) Name() string {
	return "postgres"
}

// Write saves the results. Empty runs are not stored.
func (s *PostgresSink) Write(ctx context.Context, results []models.ScoreResult) error {
	if len(results) == 0 {
		return nil
	}
	batch := repository.NewBatch(records(results), s.now())
	if err := s.repo.SaveBatch(ctx, batch); err != nil {
		return fmt.Errorf("failed to save score batch %s: %w", batch.ID, err)
	}
	return nil
}
