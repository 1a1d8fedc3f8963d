package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/paddock-parser/internal/models"
	"github.com/yourusername/paddock-parser/internal/repository"
)

func ptr[T any](v T) *T {
	return &v
}

func sampleResults() []models.ScoreResult {
	return []models.ScoreResult{
		{
			Race: models.NormalizedRace{
				RaceKey:      "ascot::r1430",
				TrackKey:     "ascot",
				StartTimeISO: "2024-06-01T14:30:00",
				SourceIDs:    []string{"cards-page", "racecards"},
				Runners: []models.NormalizedRunner{
					{Name: "Reserve", SaddleCloth: "R"},
					{Name: "Number Ten", SaddleCloth: "10", OddsDecimal: ptr(6.0)},
					{Name: "Number Two", SaddleCloth: "2", OddsDecimal: ptr(3.5), JockeyName: ptr("J Smith")},
				},
			},
			Score:           75,
			Reason:          "Field: 4 (60), Fav Odds: 3.50 (80), Spread: 0.50 (50), FavRatio: 0.76(90)",
			BestValueScore:  ptr(88.0),
			BestValueReason: ptr("Value Pick: Number Ten (6.00)"),
		},
		{
			Race:   models.NormalizedRace{RaceKey: "york::r1500", TrackKey: "york"},
			Score:  0,
			Reason: "insufficient odds data",
		},
	}
}

func TestConsoleSink_Write(t *testing.T) {
	var buf bytes.Buffer
	sink := NewConsoleSink(&buf, 0)

	require.NoError(t, sink.Write(context.Background(), sampleResults()))
	out := buf.String()

	assert.Contains(t, out, "Displaying top 2 scored races")
	assert.Contains(t, out, "ascot::r1430 (Score: 75.00)")
	assert.Contains(t, out, "york::r1500 (Score: 0.00)")
	assert.Contains(t, out, "5/2")
	assert.Contains(t, out, "N/A")
	assert.Contains(t, out, "cards-page, racecards")
	assert.Contains(t, out, "88.00 (Value Pick: Number Ten (6.00))")

	two := strings.Index(out, "Number Two")
	ten := strings.Index(out, "Number Ten")
	reserve := strings.Index(out, "Reserve")
	require.True(t, two >= 0 && ten >= 0 && reserve >= 0)
	assert.Less(t, two, ten, "runners sorted by saddle cloth")
	assert.Less(t, ten, reserve, "non-numeric saddle cloth sorts last")
}

func TestConsoleSink_Limit(t *testing.T) {
	var buf bytes.Buffer
	sink := NewConsoleSink(&buf, 1)

	require.NoError(t, sink.Write(context.Background(), sampleResults()))
	assert.Contains(t, buf.String(), "Displaying top 1 scored races")
	assert.NotContains(t, buf.String(), "york::r1500")
}

func TestSaddleOrder(t *testing.T) {
	assert.Equal(t, 3, saddleOrder("3"))
	assert.Equal(t, 12, saddleOrder(" 12 "))
	assert.Equal(t, unnumbered, saddleOrder("1A"))
	assert.Equal(t, unnumbered, saddleOrder(""))
}

func TestJSONFileSink_Write(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	sink := NewJSONFileSink(dir)
	day := time.Date(2024, 6, 1, 18, 0, 0, 0, time.UTC)
	sink.now = func() time.Time { return day }

	require.NoError(t, sink.Write(context.Background(), sampleResults()))

	path := filepath.Join(dir, "paddock_report_2024-06-01.json")
	assert.Equal(t, path, sink.Path(day))
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got []models.ScoreRecord
	require.NoError(t, json.Unmarshal(data, &got))
	require.Len(t, got, 2)
	assert.Equal(t, "ascot::r1430", got[0].RaceKey)
	assert.Equal(t, 75.0, got[0].Score)
	require.NotNil(t, got[0].BestValueScore)
	assert.Nil(t, got[1].BestValueScore)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file is renamed into place")

	// A second run on the same day replaces the report.
	require.NoError(t, sink.Write(context.Background(), sampleResults()[:1]))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Len(t, got, 1)
}

type fakeScoreRepository struct {
	batches []repository.ScoreBatch
	err     error
}

func (f *fakeScoreRepository) SaveBatch(_ context.Context, batch repository.ScoreBatch) error {
	if f.err != nil {
		return f.err
	}
	f.batches = append(f.batches, batch)
	return nil
}

func (f *fakeScoreRepository) GetBatch(context.Context, uuid.UUID) ([]models.ScoreRecord, error) {
	return nil, nil
}

func (f *fakeScoreRepository) GetLatestForRace(context.Context, string) (*models.ScoreRecord, error) {
	return nil, models.ErrNotFound
}

func TestPostgresSink_Write(t *testing.T) {
	repo := &fakeScoreRepository{}
	sink := NewPostgresSink(repo)

	require.NoError(t, sink.Write(context.Background(), nil))
	assert.Empty(t, repo.batches, "empty runs are not stored")

	require.NoError(t, sink.Write(context.Background(), sampleResults()))
	require.Len(t, repo.batches, 1)
	batch := repo.batches[0]
	assert.NotEqual(t, uuid.Nil, batch.ID)
	require.Len(t, batch.Records, 2)
	assert.Equal(t, "york::r1500", batch.Records[1].RaceKey)

	repo.err = errors.New("connection refused")
	err := sink.Write(context.Background(), sampleResults())
	assert.ErrorIs(t, err, repo.err)
}

func TestMemorySink(t *testing.T) {
	sink := NewMemorySink()
	assert.True(t, sink.UpdatedAt().IsZero())
	assert.Empty(t, sink.Results())

	results := sampleResults()
	require.NoError(t, sink.Write(context.Background(), results))
	results[0].Score = 1

	got := sink.Results()
	require.Len(t, got, 2)
	assert.Equal(t, 75.0, got[0].Score, "sink keeps its own copy")
	assert.False(t, sink.UpdatedAt().IsZero())
	assert.Equal(t, "ascot::r1430", sink.Records()[0].RaceKey)
}
