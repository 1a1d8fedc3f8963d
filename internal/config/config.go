// Package config provides configuration management for paddock-parser.
package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App         AppConfig         `mapstructure:"app" validate:"required"`
	Sources     []SourceConfig    `mapstructure:"sources" validate:"dive"`
	HTTP        HTTPConfig        `mapstructure:"http"`
	Scoring     ScoringConfig     `mapstructure:"scoring"`
	RaceFilters RaceFiltersConfig `mapstructure:"race_filters"`
	Report      ReportConfig      `mapstructure:"report"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Schedule    ScheduleConfig    `mapstructure:"schedule"`
	Health      HealthConfig      `mapstructure:"health"`
	Secrets     SecretsConfig     `mapstructure:"secrets"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// SourceConfig describes one collector.
type SourceConfig struct {
	Name               string        `mapstructure:"name" validate:"required"`
	Kind               string        `mapstructure:"kind" validate:"required,sourcekind"`
	Enabled            bool          `mapstructure:"enabled"`
	URL                string        `mapstructure:"url" validate:"omitempty,url"`
	Path               string        `mapstructure:"path"`
	APIKey             string        `mapstructure:"api_key"`
	Confidence         float64       `mapstructure:"confidence" validate:"gte=0,lte=1"`
	CacheTTLSeconds    int           `mapstructure:"cache_ttl_seconds" validate:"gte=0"`
	MaxMessages        int           `mapstructure:"max_messages" validate:"gte=0"`
	ReadTimeoutSeconds int           `mapstructure:"read_timeout_seconds" validate:"gte=0"`
	Selectors          HTMLSelectors `mapstructure:"selectors"`
}

// HTMLSelectors are the CSS selectors an HTML collector scrapes with.
type HTMLSelectors struct {
	Race     string `mapstructure:"race"`
	Venue    string `mapstructure:"venue"`
	Time     string `mapstructure:"time"`
	RaceName string `mapstructure:"race_name"`
	Going    string `mapstructure:"going"`
	Runner   string `mapstructure:"runner"`
	Name     string `mapstructure:"name"`
	Number   string `mapstructure:"number"`
	Odds     string `mapstructure:"odds"`
	Jockey   string `mapstructure:"jockey"`
	Trainer  string `mapstructure:"trainer"`
}

// HTTPConfig configures the shared rate limited client.
type HTTPConfig struct {
	TimeoutSeconds          int     `mapstructure:"timeout_seconds" validate:"gt=0"`
	RequestsPerSecond       float64 `mapstructure:"requests_per_second" validate:"gt=0"`
	Burst                   int     `mapstructure:"burst" validate:"gt=0"`
	RetryMax                int     `mapstructure:"retry_max" validate:"gte=0"`
	CircuitBreakerThreshold int     `mapstructure:"circuit_breaker_threshold" validate:"gt=0"`
	CircuitBreakerCooldown  int     `mapstructure:"circuit_breaker_cooldown_seconds" validate:"gt=0"`
	UserAgent               string  `mapstructure:"user_agent"`
}

// ScoringConfig holds the scorer weight sets. Keys are matched
// case-insensitively.
type ScoringConfig struct {
	ScorerWeights    map[string]float64 `mapstructure:"scorer_weights"`
	BestValueWeights map[string]float64 `mapstructure:"best_value_weights"`
}

// RaceFiltersConfig is the inclusive runner-count band races must fall in.
type RaceFiltersConfig struct {
	MinRunners int `mapstructure:"min_runners" validate:"gte=0"`
	MaxRunners int `mapstructure:"max_runners" validate:"gte=0"`
}

// ReportConfig selects the report sinks.
type ReportConfig struct {
	Console  bool   `mapstructure:"console"`
	JSONDir  string `mapstructure:"json_dir"`
	Postgres bool   `mapstructure:"postgres"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Name           string `mapstructure:"name"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	SSLMode        string `mapstructure:"ssl_mode" validate:"omitempty,oneof=disable require verify-full"`
	MaxConnections int    `mapstructure:"max_connections" validate:"gte=0"`
}

// ScheduleConfig configures the cron runner.
type ScheduleConfig struct {
	Cron     string `mapstructure:"cron"`
	Timezone string `mapstructure:"timezone"`
}

// HealthConfig configures the health and metrics HTTP server.
type HealthConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
}

// SecretsConfig points at an optional AWS Secrets Manager secret.
type SecretsConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Region     string `mapstructure:"region"`
	SecretName string `mapstructure:"secret_name"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// Source returns the configuration for the named source.
func (c *Config) Source(name string) (SourceConfig, bool) {
	for _, s := range c.Sources {
		if s.Name == name {
			return s, true
		}
	}
	return SourceConfig{}, false
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// HTTPTimeout returns the per-request timeout.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}

// CacheTTL returns how long a source's batch may be reused.
func (s SourceConfig) CacheTTL() time.Duration {
	return time.Duration(s.CacheTTLSeconds) * time.Second
}

// ReadTimeout returns the stream read deadline for websocket sources.
func (s SourceConfig) ReadTimeout() time.Duration {
	return time.Duration(s.ReadTimeoutSeconds) * time.Second
}
