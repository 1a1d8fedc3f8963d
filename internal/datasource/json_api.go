package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/paddock-parser/internal/config"
	"github.com/yourusername/paddock-parser/internal/logger"
	"github.com/yourusername/paddock-parser/internal/models"
)

// JSONAPICollector reads a racecard JSON API.
type JSONAPICollector struct {
	name       string
	httpClient *RateLimitedHTTPClient
	url        string
	apiKey     string
	confidence float64
	logger     *logger.CollectorLogger
	now        func() time.Time
}

// racecardResponse is the API's response envelope.
type racecardResponse struct {
	Racecards []racecard `json:"racecards"`
}

type racecard struct {
	ID       string          `json:"id"`
	Course   string          `json:"course"`
	Date     string          `json:"date"`
	OffTime  string          `json:"off_time"`
	RaceName string          `json:"race_name"`
	Going    string          `json:"going"`
	Distance string          `json:"distance"`
	Class    string          `json:"race_class"`
	Runners  []racecardEntry `json:"runners"`
}

type racecardEntry struct {
	ID      string     `json:"id"`
	Name    string     `json:"name"`
	Number  flexString `json:"number"`
	Odds    string     `json:"odds"`
	Jockey  string     `json:"jockey"`
	Trainer string     `json:"trainer"`
	Form    string     `json:"form"`
	Age     *int       `json:"age"`
}

// NewJSONAPICollector creates a collector for a racecard JSON API.
func NewJSONAPICollector(cfg config.SourceConfig, httpClient *RateLimitedHTTPClient, log logrus.FieldLogger) (*JSONAPICollector, error) {
	if httpClient == nil {
		return nil, fmt.Errorf("HTTP client is required")
	}
	if cfg.URL == "" {
		return nil, fmt.Errorf("source %s: url is required", cfg.Name)
	}
	return &JSONAPICollector{
		name:       cfg.Name,
		httpClient: httpClient,
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		confidence: cfg.Confidence,
		logger:     logger.NewCollectorLogger(log, cfg.Name),
		now:        time.Now,
	}, nil
}

// Name returns the data source name
func (c *JSONAPICollector) Name() string {
	return c.name
}

// Collect fetches the racecards and converts each into a document.
func (c *JSONAPICollector) Collect(ctx context.Context) (*Batch, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, NewDataSourceError(c.name, ErrCodeNetworkError, "failed to create request", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return nil, NewDataSourceError(c.name, ErrCodeNetworkError, "failed to fetch racecards", err)
	}
	defer resp.Body.Close()
	c.logger.LogFetch(c.url, resp.StatusCode, time.Since(start))

	if err := statusError(c.name, resp); err != nil {
		return nil, err
	}

	var payload racecardResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, NewDataSourceError(c.name, ErrCodeInvalidData, "failed to parse response", err)
	}

	builder := newDocumentBuilder(c.name, c.confidence, c.now())
	batch := &Batch{Documents: make([]models.RawRaceDocument, 0, len(payload.Racecards))}
	for _, card := range payload.Racecards {
		doc, err := builder.build(c.convertRace(card))
		if err != nil {
			c.logger.LogSkipped(err.Error(), logrus.Fields{"race_id": card.ID, "course": card.Course})
			continue
		}
		batch.Documents = append(batch.Documents, doc)
	}
	return batch, nil
}

func (c *JSONAPICollector) convertRace(card racecard) raceListing {
	listing := raceListing{
		Venue:    card.Course,
		OffTime:  card.OffTime,
		Date:     card.Date,
		RaceName: card.RaceName,
		Going:    card.Going,
		Runners:  make([]runnerListing, 0, len(card.Runners)),
		Extras:   map[string]any{},
	}
	if card.ID != "" {
		listing.Extras["source_race_id"] = card.ID
	}
	if card.Distance != "" {
		listing.Extras["distance"] = card.Distance
	}
	if card.Class != "" {
		listing.Extras["race_class"] = card.Class
	}

	for _, entry := range card.Runners {
		runner := runnerListing{
			ID:      entry.ID,
			Name:    entry.Name,
			Number:  string(entry.Number),
			Odds:    entry.Odds,
			Jockey:  entry.Jockey,
			Trainer: entry.Trainer,
		}
		extras := map[string]any{}
		if entry.Form != "" {
			extras["form"] = entry.Form
		}
		if entry.Age != nil {
			extras["age"] = strconv.Itoa(*entry.Age)
		}
		if len(extras) > 0 {
			runner.Extras = extras
		}
		listing.Runners = append(listing.Runners, runner)
	}
	return listing
}

// flexString accepts a JSON string or number.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// statusError maps non-200 responses onto DataSourceErrors.
func statusError(source string, resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return NewDataSourceError(source, ErrCodeAuthenticationFailed, "invalid API key", nil)
	case http.StatusNotFound:
		return NewDataSourceError(source, ErrCodeNotFound, "resource not found", nil)
	case http.StatusTooManyRequests:
		return NewDataSourceError(source, ErrCodeRateLimitExceeded, "rate limit exceeded", nil)
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return NewDataSourceError(source, ErrCodeServerError, fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(body)), nil)
}
