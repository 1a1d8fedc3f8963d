package datasource

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/paddock-parser/internal/config"
	"github.com/yourusername/paddock-parser/internal/logger"
	"github.com/yourusername/paddock-parser/internal/models"
)

// CSV columns. Each row is one runner; rows sharing venue, date and off
// time form a race.
const (
	colVenue    = "venue"
	colDate     = "date"
	colOffTime  = "off_time"
	colRaceName = "race_name"
	colGoing    = "going"
	colRunnerID = "runner_id"
	colName     = "name"
	colNumber   = "number"
	colOdds     = "odds"
	colJockey   = "jockey"
	colTrainer  = "trainer"
)

var requiredCSVColumns = []string{colVenue, colOffTime, colName}

// CSVCollector reads a runner-per-row CSV feed from disk or over HTTP.
type CSVCollector struct {
	name       string
	path       string
	url        string
	httpClient *RateLimitedHTTPClient
	confidence float64
	logger     *logger.CollectorLogger
	now        func() time.Time
}

// NewCSVCollector creates a CSV feed collector. A path takes precedence
// over a url.
func NewCSVCollector(cfg config.SourceConfig, httpClient *RateLimitedHTTPClient, log logrus.FieldLogger) (*CSVCollector, error) {
	if cfg.Path == "" && cfg.URL == "" {
		return nil, fmt.Errorf("source %s: path or url is required", cfg.Name)
	}
	if cfg.Path == "" && httpClient == nil {
		return nil, fmt.Errorf("HTTP client is required")
	}
	return &CSVCollector{
		name:       cfg.Name,
		path:       cfg.Path,
		url:        cfg.URL,
		httpClient: httpClient,
		confidence: cfg.Confidence,
		logger:     logger.NewCollectorLogger(log, cfg.Name),
		now:        time.Now,
	}, nil
}

// Name returns the data source name
func (c *CSVCollector) Name() string {
	return c.name
}

// Collect reads the whole feed and groups its rows into races.
func (c *CSVCollector) Collect(ctx context.Context) (*Batch, error) {
	body, err := c.open(ctx)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	return c.parse(body)
}

func (c *CSVCollector) open(ctx context.Context) (io.ReadCloser, error) {
	if c.path != "" {
		f, err := os.Open(c.path)
		if err != nil {
			code := ErrCodeNetworkError
			if errors.Is(err, os.ErrNotExist) {
				code = ErrCodeNotFound
			}
			return nil, NewDataSourceError(c.name, code, "opening feed", err)
		}
		return f, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, NewDataSourceError(c.name, ErrCodeNetworkError, "creating request", err)
	}
	req.Header.Set("Accept", "text/csv")

	start := time.Now()
	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return nil, NewDataSourceError(c.name, ErrCodeNetworkError, "fetching feed", err)
	}
	c.logger.LogFetch(c.url, resp.StatusCode, time.Since(start))
	if err := statusError(c.name, resp); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}

func (c *CSVCollector) parse(r io.Reader) (*Batch, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, NewDataSourceError(c.name, ErrCodeInvalidData, "reading header", err)
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range requiredCSVColumns {
		if _, ok := index[col]; !ok {
			return nil, NewDataSourceError(c.name, ErrCodeInvalidData, fmt.Sprintf("missing column %q", col), nil)
		}
	}

	get := func(row []string, col string) string {
		if i, ok := index[col]; ok && i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	var order []string
	listings := make(map[string]*raceListing)
	line := 1
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, NewDataSourceError(c.name, ErrCodeInvalidData, fmt.Sprintf("reading line %d", line), err)
		}

		key := strings.Join([]string{get(row, colVenue), get(row, colDate), get(row, colOffTime)}, "|")
		listing, ok := listings[key]
		if !ok {
			listing = &raceListing{
				Venue:    get(row, colVenue),
				Date:     get(row, colDate),
				OffTime:  get(row, colOffTime),
				RaceName: get(row, colRaceName),
				Going:    get(row, colGoing),
			}
			listings[key] = listing
			order = append(order, key)
		}
		listing.Runners = append(listing.Runners, runnerListing{
			ID:      get(row, colRunnerID),
			Name:    get(row, colName),
			Number:  get(row, colNumber),
			Odds:    get(row, colOdds),
			Jockey:  get(row, colJockey),
			Trainer: get(row, colTrainer),
		})
	}

	builder := newDocumentBuilder(c.name, c.confidence, c.now())
	batch := &Batch{Documents: make([]models.RawRaceDocument, 0, len(order))}
	for _, key := range order {
		doc, err := builder.build(*listings[key])
		if err != nil {
			c.logger.LogSkipped(err.Error(), logrus.Fields{"race": key})
			continue
		}
		batch.Documents = append(batch.Documents, doc)
	}
	return batch, nil
}
