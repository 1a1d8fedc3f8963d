package datasource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/paddock-parser/internal/config"
	"github.com/yourusername/paddock-parser/internal/logger"
	"github.com/yourusername/paddock-parser/internal/models"
)

const (
	defaultMaxMessages = 500
	defaultReadTimeout = 5 * time.Second
)

// Stream message types
const (
	MessageDocument = "document"
	MessageRace     = "race"
	MessageEnd      = "end"
)

// StreamMessage is one frame pushed by a websocket feed.
type StreamMessage struct {
	Type     string                  `json:"type"`
	Document *models.RawRaceDocument `json:"document,omitempty"`
	Race     *models.NormalizedRace  `json:"race,omitempty"`
}

// StreamCollector drains a websocket feed into a batch. Collection stops at
// an "end" frame, a close frame, the message limit or the read deadline,
// whichever comes first.
type StreamCollector struct {
	name        string
	url         string
	apiKey      string
	maxMessages int
	readTimeout time.Duration
	dialer      *websocket.Dialer
	logger      *logger.CollectorLogger
}

// NewStreamCollector creates a websocket feed collector.
func NewStreamCollector(cfg config.SourceConfig, log logrus.FieldLogger) (*StreamCollector, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("source %s: url is required", cfg.Name)
	}
	maxMessages := cfg.MaxMessages
	if maxMessages <= 0 {
		maxMessages = defaultMaxMessages
	}
	readTimeout := cfg.ReadTimeout()
	if readTimeout <= 0 {
		readTimeout = defaultReadTimeout
	}
	return &StreamCollector{
		name:        cfg.Name,
		url:         cfg.URL,
		apiKey:      cfg.APIKey,
		maxMessages: maxMessages,
		readTimeout: readTimeout,
		dialer:      &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		logger:      logger.NewCollectorLogger(log, cfg.Name),
	}, nil
}

// Name returns the data source name
func (c *StreamCollector) Name() string {
	return c.name
}

// Collect connects, reads frames and disconnects.
func (c *StreamCollector) Collect(ctx context.Context) (*Batch, error) {
	header := http.Header{}
	if c.apiKey != "" {
		header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	conn, resp, err := c.dialer.DialContext(ctx, c.url, header)
	if err != nil {
		if resp != nil {
			c.logger.LogFetch(c.url, resp.StatusCode, time.Since(start))
			if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
				return nil, NewDataSourceError(c.name, ErrCodeAuthenticationFailed, "stream handshake rejected", err)
			}
		}
		return nil, NewDataSourceError(c.name, ErrCodeNetworkError, "connecting to stream", err)
	}
	defer conn.Close()
	c.logger.LogFetch(c.url, resp.StatusCode, time.Since(start))

	// Unblock ReadMessage when the caller gives up.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	batch := &Batch{}
	for received := 0; received < c.maxMessages; received++ {
		if err := conn.SetReadDeadline(time.Now().Add(c.readTimeout)); err != nil {
			return nil, NewDataSourceError(c.name, ErrCodeNetworkError, "setting read deadline", err)
		}
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if c.finished(err) {
				break
			}
			return nil, NewDataSourceError(c.name, ErrCodeNetworkError, "reading stream", err)
		}

		var msg StreamMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.logger.LogSkipped("undecodable frame", logrus.Fields{"error": err.Error()})
			continue
		}
		if msg.Type == MessageEnd {
			break
		}
		c.accept(batch, msg)
	}

	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	return batch, nil
}

// finished reports whether a read error just means the feed has nothing
// more to say.
func (c *StreamCollector) finished(err error) bool {
	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		c.logger.Debug("Stream read deadline reached")
		return true
	}
	return false
}

func (c *StreamCollector) accept(batch *Batch, msg StreamMessage) {
	switch msg.Type {
	case MessageDocument:
		if msg.Document == nil {
			c.logger.LogSkipped("document frame without document", nil)
			return
		}
		doc := *msg.Document
		if doc.SourceID == "" {
			doc.SourceID = c.name
		}
		batch.Documents = append(batch.Documents, doc)
	case MessageRace:
		if msg.Race == nil {
			c.logger.LogSkipped("race frame without race", nil)
			return
		}
		batch.Races = append(batch.Races, *msg.Race)
	default:
		c.logger.LogSkipped("unknown frame type", logrus.Fields{"type": msg.Type})
	}
}
