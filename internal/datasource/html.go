package datasource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/paddock-parser/internal/config"
	"github.com/yourusername/paddock-parser/internal/logger"
	"github.com/yourusername/paddock-parser/internal/models"
)

// HTMLCollector scrapes a racecard page with configurable CSS selectors.
type HTMLCollector struct {
	name       string
	httpClient *RateLimitedHTTPClient
	url        string
	selectors  config.HTMLSelectors
	confidence float64
	logger     *logger.CollectorLogger
	now        func() time.Time
}

// NewHTMLCollector creates a selector-driven page scraper.
func NewHTMLCollector(cfg config.SourceConfig, httpClient *RateLimitedHTTPClient, log logrus.FieldLogger) (*HTMLCollector, error) {
	if httpClient == nil {
		return nil, fmt.Errorf("HTTP client is required")
	}
	if cfg.URL == "" {
		return nil, fmt.Errorf("source %s: url is required", cfg.Name)
	}
	if cfg.Selectors.Race == "" || cfg.Selectors.Runner == "" {
		return nil, fmt.Errorf("source %s: race and runner selectors are required", cfg.Name)
	}
	return &HTMLCollector{
		name:       cfg.Name,
		httpClient: httpClient,
		url:        cfg.URL,
		selectors:  cfg.Selectors,
		confidence: cfg.Confidence,
		logger:     logger.NewCollectorLogger(log, cfg.Name),
		now:        time.Now,
	}, nil
}

// Name returns the data source name
func (c *HTMLCollector) Name() string {
	return c.name
}

// Collect fetches the page and scrapes every race card on it.
func (c *HTMLCollector) Collect(ctx context.Context) (*Batch, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, NewDataSourceError(c.name, ErrCodeNetworkError, "creating request", err)
	}
	req.Header.Set("Accept", "text/html")

	start := time.Now()
	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return nil, NewDataSourceError(c.name, ErrCodeNetworkError, "fetching page", err)
	}
	defer resp.Body.Close()
	c.logger.LogFetch(c.url, resp.StatusCode, time.Since(start))

	if err := statusError(c.name, resp); err != nil {
		return nil, err
	}
	return c.parse(resp.Body)
}

func (c *HTMLCollector) parse(r io.Reader) (*Batch, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, NewDataSourceError(c.name, ErrCodeInvalidData, "parsing HTML", err)
	}

	builder := newDocumentBuilder(c.name, c.confidence, c.now())
	batch := &Batch{Documents: make([]models.RawRaceDocument, 0)}

	doc.Find(c.selectors.Race).Each(func(i int, card *goquery.Selection) {
		listing := raceListing{
			Venue:    c.text(card, c.selectors.Venue),
			OffTime:  c.text(card, c.selectors.Time),
			RaceName: c.text(card, c.selectors.RaceName),
			Going:    c.text(card, c.selectors.Going),
		}
		if date, ok := card.Attr("data-date"); ok {
			listing.Date = strings.TrimSpace(date)
		}

		card.Find(c.selectors.Runner).Each(func(j int, row *goquery.Selection) {
			runner := runnerListing{
				Name:    c.text(row, c.selectors.Name),
				Number:  c.text(row, c.selectors.Number),
				Odds:    c.text(row, c.selectors.Odds),
				Jockey:  c.text(row, c.selectors.Jockey),
				Trainer: c.text(row, c.selectors.Trainer),
			}
			if id, ok := row.Attr("data-runner-id"); ok {
				runner.ID = strings.TrimSpace(id)
			}
			listing.Runners = append(listing.Runners, runner)
		})

		raceDoc, err := builder.build(listing)
		if err != nil {
			c.logger.LogSkipped(err.Error(), logrus.Fields{"card": i, "venue": listing.Venue})
			return
		}
		batch.Documents = append(batch.Documents, raceDoc)
	})

	return batch, nil
}

// text returns the collapsed text of the first match of selector under sel.
// An empty selector yields an empty string.
func (c *HTMLCollector) text(sel *goquery.Selection, selector string) string {
	if selector == "" {
		return ""
	}
	return strings.Join(strings.Fields(sel.Find(selector).First().Text()), " ")
}
