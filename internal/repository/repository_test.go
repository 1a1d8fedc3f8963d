package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/paddock-parser/internal/database"
	"github.com/yourusername/paddock-parser/internal/models"
)

func TestNewRepositories_RequiresDB(t *testing.T) {
	_, err := NewRepositories(nil)
	assert.Error(t, err)
}

func TestNewBatch(t *testing.T) {
	at := time.Date(2024, 6, 1, 15, 0, 0, 0, time.FixedZone("BST", 3600))
	batch := NewBatch([]models.ScoreRecord{{RaceKey: "ascot::r1430"}}, at)

	assert.NotEqual(t, uuid.Nil, batch.ID)
	assert.Equal(t, time.UTC, batch.RecordedAt.Location())
	assert.True(t, at.Equal(batch.RecordedAt))
	assert.Len(t, batch.Records, 1)
}

func TestScoreRepository_SaveAndLoad(t *testing.T) {
	db := database.SetupTestDB(t)
	defer database.TeardownTestDB(t, db)

	repos, err := NewRepositories(db)
	require.NoError(t, err)

	value := 85.0
	pick := "Value Pick: Third (6.00)"
	records := []models.ScoreRecord{
		{RaceKey: "york::r1500", Score: 40, Reason: "r2", Race: models.NormalizedRace{RaceKey: "york::r1500", TrackKey: "york"}},
		{RaceKey: "ascot::r1430", Score: 75, Reason: "r1", BestValueScore: &value, BestValueReason: &pick,
			Race: models.NormalizedRace{RaceKey: "ascot::r1430", TrackKey: "ascot", SourceIDs: []string{"a", "b"}}},
	}
	batch := NewBatch(records, time.Now())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, repos.Score.SaveBatch(ctx, batch))

	loaded, err := repos.Score.GetBatch(ctx, batch.ID)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "ascot::r1430", loaded[0].RaceKey)
	require.NotNil(t, loaded[0].BestValueScore)
	assert.Equal(t, 85.0, *loaded[0].BestValueScore)
	assert.Equal(t, []string{"a", "b"}, loaded[0].Race.SourceIDs)
	assert.Nil(t, loaded[1].BestValueScore)

	latest, err := repos.Score.GetLatestForRace(ctx, "york::r1500")
	require.NoError(t, err)
	assert.Equal(t, 40.0, latest.Score)

	_, err = repos.Score.GetLatestForRace(ctx, "nowhere::r0000")
	assert.ErrorIs(t, err, models.ErrNotFound)
}
