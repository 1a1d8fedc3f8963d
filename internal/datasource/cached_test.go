package datasource

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/paddock-parser/internal/models"
)

type countingCollector struct {
	name  string
	calls int32
	err   error
}

func (c *countingCollector) Name() string { return c.name }

func (c *countingCollector) Collect(ctx context.Context) (*Batch, error) {
	atomic.AddInt32(&c.calls, 1)
	if c.err != nil {
		return nil, c.err
	}
	return &Batch{Documents: []models.RawRaceDocument{{SourceID: c.name, RaceKey: "ascot::r1430"}}}, nil
}

func TestCachedCollector_ServesCachedBatch(t *testing.T) {
	inner := &countingCollector{name: "api"}
	c := NewCachedCollector(inner, time.Minute, testLogger())
	ctx := context.Background()

	first, err := c.Collect(ctx)
	require.NoError(t, err)
	second, err := c.Collect(ctx)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&inner.calls))
	assert.Equal(t, "api", c.Name())

	c.Invalidate()
	_, err = c.Collect(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&inner.calls))
}

func TestCachedCollector_DoesNotCacheFailures(t *testing.T) {
	inner := &countingCollector{name: "api", err: errors.New("boom")}
	c := NewCachedCollector(inner, time.Minute, testLogger())
	ctx := context.Background()

	_, err := c.Collect(ctx)
	require.Error(t, err)
	_, err = c.Collect(ctx)
	require.Error(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&inner.calls))
}

func TestCachedCollector_Expires(t *testing.T) {
	inner := &countingCollector{name: "api"}
	c := NewCachedCollector(inner, 20*time.Millisecond, testLogger())
	ctx := context.Background()

	_, err := c.Collect(ctx)
	require.NoError(t, err)
	time.Sleep(40 * time.Millisecond)
	_, err = c.Collect(ctx)
	require.NoError(t, err)

	assert.Equal(t, int32(2), atomic.LoadInt32(&inner.calls))
}
