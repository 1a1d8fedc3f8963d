package datasource

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/paddock-parser/internal/config"
)

// Factory builds a collector for one configured source.
type Factory func(cfg config.SourceConfig, httpClient *RateLimitedHTTPClient, log logrus.FieldLogger) (Collector, error)

// ResolutionStatus says what the registry knows about a source name.
type ResolutionStatus int

const (
	// StatusNotFound means no source is configured under the name
	StatusNotFound ResolutionStatus = iota
	// StatusDisabled means the source is configured but switched off
	StatusDisabled
	// StatusEnabled means the source will be collected
	StatusEnabled
)

func (s ResolutionStatus) String() string {
	switch s {
	case StatusEnabled:
		return "enabled"
	case StatusDisabled:
		return "disabled"
	default:
		return "not_found"
	}
}

// Resolution is the result of looking a source up by name.
type Resolution struct {
	Status ResolutionStatus
	Config config.SourceConfig
}

// Registry maps configured sources to collectors. The set of kinds is
// fixed at construction.
type Registry struct {
	factories  map[string]Factory
	sources    []config.SourceConfig
	httpClient *RateLimitedHTTPClient
	logger     logrus.FieldLogger
}

// NewRegistry creates a registry for the configured sources sharing one
// HTTP client.
func NewRegistry(sources []config.SourceConfig, httpClient *RateLimitedHTTPClient, logger logrus.FieldLogger) *Registry {
	return &Registry{
		factories: map[string]Factory{
			config.KindJSONAPI: func(cfg config.SourceConfig, c *RateLimitedHTTPClient, l logrus.FieldLogger) (Collector, error) {
				return NewJSONAPICollector(cfg, c, l)
			},
			config.KindHTML: func(cfg config.SourceConfig, c *RateLimitedHTTPClient, l logrus.FieldLogger) (Collector, error) {
				return NewHTMLCollector(cfg, c, l)
			},
			config.KindCSV: func(cfg config.SourceConfig, c *RateLimitedHTTPClient, l logrus.FieldLogger) (Collector, error) {
				return NewCSVCollector(cfg, c, l)
			},
			config.KindWebSocket: func(cfg config.SourceConfig, _ *RateLimitedHTTPClient, l logrus.FieldLogger) (Collector, error) {
				return NewStreamCollector(cfg, l)
			},
		},
		sources:    sources,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Kinds returns the registered collector kinds.
func (r *Registry) Kinds() []string {
	kinds := make([]string, 0, len(r.factories))
	for _, kind := range config.SourceKinds {
		if _, ok := r.factories[kind]; ok {
			kinds = append(kinds, kind)
		}
	}
	return kinds
}

// Resolve looks up a configured source by name.
func (r *Registry) Resolve(name string) Resolution {
	for _, src := range r.sources {
		if src.Name != name {
			continue
		}
		if !src.Enabled {
			return Resolution{Status: StatusDisabled, Config: src}
		}
		return Resolution{Status: StatusEnabled, Config: src}
	}
	return Resolution{Status: StatusNotFound}
}

// Build creates a collector for one source.
func (r *Registry) Build(cfg config.SourceConfig) (Collector, error) {
	factory, ok := r.factories[cfg.Kind]
	if !ok {
		return nil, fmt.Errorf("source %s: unsupported kind %q", cfg.Name, cfg.Kind)
	}
	collector, err := factory(cfg, r.httpClient, r.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create collector %s: %w", cfg.Name, err)
	}
	if ttl := cfg.CacheTTL(); ttl > 0 {
		return NewCachedCollector(collector, ttl, r.logger), nil
	}
	return collector, nil
}

// BuildEnabled creates collectors for every enabled source, in
// configuration order.
func (r *Registry) BuildEnabled() ([]Collector, error) {
	collectors := make([]Collector, 0, len(r.sources))
	for _, src := range r.sources {
		res := r.Resolve(src.Name)
		if res.Status != StatusEnabled {
			r.logger.WithFields(logrus.Fields{
				"source": src.Name,
				"status": res.Status.String(),
			}).Info("Skipping source")
			continue
		}
		collector, err := r.Build(res.Config)
		if err != nil {
			return nil, err
		}
		collectors = append(collectors, collector)
	}
	return collectors, nil
}
