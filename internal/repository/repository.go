// Package repository provides PostgreSQL persistence for scored races.
package repository

import (
	"fmt"

	"github.com/yourusername/paddock-parser/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	Score ScoreRepository
}

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Score: NewPostgresScoreRepository(db),
	}, nil
}
