package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
)

// Source kinds understood by the collector registry.
const (
	KindJSONAPI   = "json_api"
	KindHTML      = "html"
	KindCSV       = "csv"
	KindWebSocket = "websocket"
)

// SourceKinds lists every valid source kind.
var SourceKinds = []string{KindJSONAPI, KindHTML, KindCSV, KindWebSocket}

// CustomValidator wraps the validator with custom validation rules
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new validator with custom validation functions
func NewValidator() *CustomValidator {
	v := validator.New()

	_ = v.RegisterValidation("environment", validateEnvironment)
	_ = v.RegisterValidation("loglevel", validateLogLevel)
	_ = v.RegisterValidation("sourcekind", validateSourceKind)

	return &CustomValidator{validator: v}
}

// Validate validates the entire configuration
func Validate(cfg *Config) error {
	return NewValidator().Validate(cfg)
}

// Validate validates the configuration using registered validation rules
func (cv *CustomValidator) Validate(cfg *Config) error {
	if err := cv.validator.Struct(cfg); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return formatValidationErrors(validationErrors)
		}
		return fmt.Errorf("validation failed: %w", err)
	}

	// Additional cross-field validations
	return validateCrossField(cfg)
}

func validateEnvironment(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "development", "staging", "production":
		return true
	default:
		return false
	}
}

func validateLogLevel(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

func validateSourceKind(fl validator.FieldLevel) bool {
	kind := fl.Field().String()
	for _, k := range SourceKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// validateCrossField performs cross-field validations
func validateCrossField(cfg *Config) error {
	// max_runners of zero leaves the band open-ended.
	if cfg.RaceFilters.MaxRunners > 0 && cfg.RaceFilters.MinRunners > cfg.RaceFilters.MaxRunners {
		return fmt.Errorf("race_filters.min_runners (%d) cannot exceed max_runners (%d)",
			cfg.RaceFilters.MinRunners, cfg.RaceFilters.MaxRunners)
	}

	for name, weights := range map[string]map[string]float64{
		"scorer_weights":     cfg.Scoring.ScorerWeights,
		"best_value_weights": cfg.Scoring.BestValueWeights,
	} {
		for key, w := range weights {
			if w < 0 {
				return fmt.Errorf("scoring.%s.%s must not be negative, got %v", name, strings.ToUpper(key), w)
			}
		}
	}

	seen := make(map[string]bool, len(cfg.Sources))
	for _, s := range cfg.Sources {
		if seen[s.Name] {
			return fmt.Errorf("duplicate source name %q", s.Name)
		}
		seen[s.Name] = true

		if !s.Enabled {
			continue
		}
		switch s.Kind {
		case KindJSONAPI, KindHTML, KindWebSocket:
			if s.URL == "" {
				return fmt.Errorf("source %q of kind %s requires a url", s.Name, s.Kind)
			}
		case KindCSV:
			if s.Path == "" && s.URL == "" {
				return fmt.Errorf("source %q of kind csv requires a path or url", s.Name)
			}
		}
		if s.Kind == KindHTML && (s.Selectors.Race == "" || s.Selectors.Runner == "") {
			return fmt.Errorf("source %q requires race and runner selectors", s.Name)
		}
	}

	if cfg.Report.Postgres {
		if cfg.Database.Host == "" || cfg.Database.Name == "" || cfg.Database.User == "" {
			return fmt.Errorf("report.postgres requires database host, name and user")
		}
		if cfg.IsProduction() && cfg.Database.SSLMode == "disable" {
			return fmt.Errorf("production environment requires SSL mode to be 'require' or 'verify-full'")
		}
	}

	if cfg.Schedule.Cron != "" {
		if _, err := cron.ParseStandard(cfg.Schedule.Cron); err != nil {
			return fmt.Errorf("invalid schedule.cron %q: %w", cfg.Schedule.Cron, err)
		}
	}

	if cfg.Secrets.Enabled && (cfg.Secrets.Region == "" || cfg.Secrets.SecretName == "") {
		return fmt.Errorf("secrets.enabled requires region and secret_name")
	}

	return nil
}

// formatValidationErrors formats validation errors into a readable string
func formatValidationErrors(validationErrors validator.ValidationErrors) error {
	var b strings.Builder
	for _, fieldError := range validationErrors {
		field := fieldError.Namespace()
		tag := fieldError.Tag()
		value := fieldError.Value()

		switch tag {
		case "required":
			fmt.Fprintf(&b, "- Field '%s' is required\n", field)
		case "url":
			fmt.Fprintf(&b, "- Field '%s' must be a valid URL, got '%v'\n", field, value)
		case "min", "max":
			fmt.Fprintf(&b, "- Field '%s' validation failed: %s constraint violated\n", field, tag)
		case "gt", "gte", "lt", "lte":
			fmt.Fprintf(&b, "- Field '%s' validation failed: numeric constraint %s violated\n", field, tag)
		case "environment":
			fmt.Fprintf(&b, "- Field '%s' must be one of: development, staging, production\n", field)
		case "loglevel":
			fmt.Fprintf(&b, "- Field '%s' must be one of: debug, info, warn, error\n", field)
		case "sourcekind":
			fmt.Fprintf(&b, "- Field '%s' must be one of: %s, got '%v'\n", field, strings.Join(SourceKinds, ", "), value)
		case "oneof":
			fmt.Fprintf(&b, "- Field '%s' has invalid value '%v'\n", field, value)
		default:
			fmt.Fprintf(&b, "- Field '%s' failed validation: %s\n", field, tag)
		}
	}
	return fmt.Errorf("configuration validation failed:\n%s", b.String())
}
