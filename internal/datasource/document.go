package datasource

import (
	"fmt"
	"strings"
	"time"

	"github.com/yourusername/paddock-parser/internal/models"
	"github.com/yourusername/paddock-parser/internal/normalize"
)

// raceListing is the source-neutral shape every collector parses into
// before it becomes a RawRaceDocument.
type raceListing struct {
	Venue    string
	OffTime  string
	Date     string // YYYY-MM-DD; empty means the fetch date
	RaceName string
	Going    string
	Runners  []runnerListing
	Extras   map[string]any
}

type runnerListing struct {
	ID      string
	Name    string
	Number  string
	Odds    string
	Jockey  string
	Trainer string
	Extras  map[string]any
}

// documentBuilder turns listings into RawRaceDocuments tagged with the
// collector's source name and confidence.
type documentBuilder struct {
	source     string
	confidence float64
	fetchedAt  time.Time
}

func newDocumentBuilder(source string, confidence float64, fetchedAt time.Time) documentBuilder {
	if confidence <= 0 {
		confidence = 0.5
	}
	return documentBuilder{source: source, confidence: confidence, fetchedAt: fetchedAt.UTC()}
}

// build derives the track and race keys from the listing's venue and off
// time. Listings without a recognisable time are rejected.
func (b documentBuilder) build(l raceListing) (models.RawRaceDocument, error) {
	venue := strings.TrimSpace(l.Venue)
	if venue == "" {
		return models.RawRaceDocument{}, NewDataSourceError(b.source, ErrCodeInvalidData, "listing has no venue", nil)
	}
	hhmm, ok := normalize.ParseHHMM(l.OffTime)
	if !ok {
		return models.RawRaceDocument{}, NewDataSourceError(b.source, ErrCodeInvalidData,
			fmt.Sprintf("no off time in %q", l.OffTime), nil)
	}

	trackKey := normalize.CanonicalTrackKey(normalize.NormalizeCourseName(venue))
	raceKey, err := normalize.CanonicalRaceKey(trackKey, hhmm)
	if err != nil {
		return models.RawRaceDocument{}, NewDataSourceError(b.source, ErrCodeInvalidData, "cannot derive race key", err)
	}

	date := strings.TrimSpace(l.Date)
	if date == "" {
		date = b.fetchedAt.Format("2006-01-02")
	}

	doc := models.RawRaceDocument{
		SourceID:     b.source,
		FetchedAt:    b.fetchedAt.Format(time.RFC3339),
		TrackKey:     trackKey,
		RaceKey:      raceKey,
		StartTimeISO: fmt.Sprintf("%sT%s:00", date, hhmm),
		RaceName:     b.optional(l.RaceName),
		Going:        b.optional(l.Going),
		Runners:      make([]models.RawRunner, 0, len(l.Runners)),
		Extras: map[string]models.Field[any]{
			"venue":      models.NewField[any](venue, b.confidence, b.source),
			"discipline": models.NewField[any](string(normalize.MapDiscipline(venue+" "+l.RaceName)), b.confidence, b.source),
		},
	}
	for k, v := range l.Extras {
		doc.Extras[k] = models.NewField(v, b.confidence, b.source)
	}

	for _, r := range l.Runners {
		if strings.TrimSpace(r.Name) == "" {
			continue
		}
		doc.Runners = append(doc.Runners, b.runner(r))
	}
	return doc, nil
}

func (b documentBuilder) runner(r runnerListing) models.RawRunner {
	runner := models.RawRunner{
		RunnerID: r.ID,
		Name:     models.NewField(strings.TrimSpace(r.Name), b.confidence, b.source),
		Number:   models.NewField(strings.TrimSpace(r.Number), b.confidence, b.source),
		Odds:     b.optional(r.Odds),
		Jockey:   b.optional(r.Jockey),
		Trainer:  b.optional(r.Trainer),
	}
	if len(r.Extras) > 0 {
		runner.Extras = make(map[string]models.Field[any], len(r.Extras))
		for k, v := range r.Extras {
			runner.Extras[k] = models.NewField(v, b.confidence, b.source)
		}
	}
	return runner
}

func (b documentBuilder) optional(value string) *models.Field[string] {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return models.FieldPtr(value, b.confidence, b.source)
}
