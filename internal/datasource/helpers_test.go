package datasource

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func testLogger() logrus.FieldLogger {
	l, _ := test.NewNullLogger()
	return l
}

func testHTTPClientConfig() HTTPClientConfig {
	return HTTPClientConfig{
		Timeout:               5 * time.Second,
		MaxRetries:            0,
		RetryWaitMin:          time.Millisecond,
		RetryWaitMax:          5 * time.Millisecond,
		RateLimit:             1000,
		Burst:                 100,
		CircuitBreakerMax:     5,
		CircuitBreakerTimeout: time.Minute,
		UserAgent:             "paddock-test",
	}
}

func testHTTPClient(t *testing.T) *RateLimitedHTTPClient {
	t.Helper()
	c := NewRateLimitedHTTPClient(testHTTPClientConfig(), testLogger())
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func fixedClock() time.Time {
	return time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
}
