// Package report writes scored races to the console, files, PostgreSQL and
// memory.
package report

import (
	"context"
	"sync"
	"time"

	"github.com/yourusername/paddock-parser/internal/models"
)

// Sink receives the scored races of a run, best first.
type Sink interface {
	Name() string
	Write(ctx context.Context, results []models.ScoreResult) error
}

func records(results []models.ScoreResult) []models.ScoreRecord {
	out := make([]models.ScoreRecord, len(results))
	for i := range results {
		out[i] = results[i].Record()
	}
	return out
}

// MemorySink keeps the latest results for the health server.
type MemorySink struct {
	mu        sync.RWMutex
	results   []models.ScoreResult
	updatedAt time.Time
	now       func() time.Time
}

// NewMemorySink creates an empty memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{now: time.Now}
}

// Name returns the sink name
func (s *MemorySink) Name() string {
	return "memory"
}

// Write replaces the stored results.
func (s *MemorySink) Write(_ context.Context, results []models.ScoreResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append([]models.ScoreResult(nil), results...)
	s.updatedAt = s.now()
	return nil
}

// Results returns the most recently written results.
func (s *MemorySink) Results() []models.ScoreResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.ScoreResult(nil), s.results...)
}

// Records returns the most recently written results in reporting form.
func (s *MemorySink) Records() []models.ScoreRecord {
	return records(s.Results())
}

// UpdatedAt returns when results were last written, or the zero time.
func (s *MemorySink) UpdatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updatedAt
}
