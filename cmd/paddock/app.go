package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/paddock-parser/internal/config"
	"github.com/yourusername/paddock-parser/internal/database"
	"github.com/yourusername/paddock-parser/internal/datasource"
	"github.com/yourusername/paddock-parser/internal/normalize"
	"github.com/yourusername/paddock-parser/internal/pipeline"
	"github.com/yourusername/paddock-parser/internal/report"
	"github.com/yourusername/paddock-parser/internal/repository"
	"github.com/yourusername/paddock-parser/internal/scoring"
)

// app holds everything a pipeline run needs.
type app struct {
	pipeline   *pipeline.Pipeline
	memory     *report.MemorySink
	db         *database.DB
	httpClient *datasource.RateLimitedHTTPClient
}

// newApp builds collectors, sinks and the pipeline from configuration.
func newApp(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*app, error) {
	a := &app{
		memory:     report.NewMemorySink(),
		httpClient: datasource.NewRateLimitedHTTPClient(datasource.HTTPClientConfigFrom(cfg.HTTP), log),
	}

	registry := datasource.NewRegistry(cfg.Sources, a.httpClient, log)
	collectors, err := registry.BuildEnabled()
	if err != nil {
		a.close(log)
		return nil, err
	}
	if len(collectors) == 0 {
		log.Warn("No sources enabled, runs will produce empty reports")
	}

	sinks := []report.Sink{a.memory}
	if cfg.Report.Console {
		sinks = append(sinks, report.NewConsoleSink(os.Stdout, 0))
	}
	if cfg.Report.JSONDir != "" {
		sinks = append(sinks, report.NewJSONFileSink(cfg.Report.JSONDir))
	}
	if cfg.Report.Postgres {
		a.db, err = database.Initialize(ctx, &cfg.Database)
		if err != nil {
			a.close(log)
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		repos, err := repository.NewRepositories(a.db)
		if err != nil {
			a.close(log)
			return nil, err
		}
		sinks = append(sinks, report.NewPostgresSink(repos.Score))
		log.Info("Database connection established")
	}

	a.pipeline = pipeline.New(
		collectors,
		normalize.NewNormalizer(log),
		scoring.NewScorer(cfg.Scoring.ScorerWeights, cfg.Scoring.BestValueWeights, log),
		sinks,
		pipeline.FiltersFrom(cfg.RaceFilters),
		log,
	)
	return a, nil
}

func (a *app) close(log logrus.FieldLogger) {
	if a.httpClient != nil {
		if err := a.httpClient.Close(); err != nil {
			log.WithError(err).Warn("Failed to close HTTP client")
		}
	}
	if a.db != nil {
		a.db.Close()
	}
}
