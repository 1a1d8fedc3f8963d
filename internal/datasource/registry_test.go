package datasource

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/paddock-parser/internal/config"
)

func testSources() []config.SourceConfig {
	return []config.SourceConfig{
		{Name: "racecards", Kind: config.KindJSONAPI, Enabled: true, URL: "http://api.example.com/racecards"},
		{Name: "cards-page", Kind: config.KindHTML, Enabled: false, URL: "http://example.com/cards", Selectors: testSelectors()},
		{Name: "csv-feed", Kind: config.KindCSV, Enabled: true, Path: "testdata/feed.csv", CacheTTLSeconds: 60},
		{Name: "live", Kind: config.KindWebSocket, Enabled: true, URL: "ws://example.com/live"},
	}
}

func TestRegistry_Resolve(t *testing.T) {
	r := NewRegistry(testSources(), testHTTPClient(t), testLogger())

	tests := []struct {
		name string
		want ResolutionStatus
	}{
		{"racecards", StatusEnabled},
		{"cards-page", StatusDisabled},
		{"missing", StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := r.Resolve(tt.name)
			assert.Equal(t, tt.want, res.Status)
			if tt.want != StatusNotFound {
				assert.Equal(t, tt.name, res.Config.Name)
			}
		})
	}
}

func TestResolutionStatus_String(t *testing.T) {
	assert.Equal(t, "enabled", StatusEnabled.String())
	assert.Equal(t, "disabled", StatusDisabled.String())
	assert.Equal(t, "not_found", StatusNotFound.String())
}

func TestRegistry_Kinds(t *testing.T) {
	r := NewRegistry(nil, testHTTPClient(t), testLogger())
	assert.Equal(t, config.SourceKinds, r.Kinds())
}

func TestRegistry_BuildEnabled(t *testing.T) {
	r := NewRegistry(testSources(), testHTTPClient(t), testLogger())

	collectors, err := r.BuildEnabled()
	require.NoError(t, err)
	require.Len(t, collectors, 3)

	assert.IsType(t, &JSONAPICollector{}, collectors[0])
	assert.IsType(t, &CachedCollector{}, collectors[1], "cache ttl wraps the collector")
	assert.IsType(t, &StreamCollector{}, collectors[2])

	names := make([]string, len(collectors))
	for i, c := range collectors {
		names[i] = c.Name()
	}
	assert.Equal(t, []string{"racecards", "csv-feed", "live"}, names)
}

func TestRegistry_BuildErrors(t *testing.T) {
	r := NewRegistry(nil, testHTTPClient(t), testLogger())

	_, err := r.Build(config.SourceConfig{Name: "odd", Kind: "ftp"})
	assert.ErrorContains(t, err, "unsupported kind")

	_, err = r.Build(config.SourceConfig{Name: "page", Kind: config.KindHTML, URL: "http://x"})
	assert.ErrorContains(t, err, "failed to create collector page")
}
