package report

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/yourusername/paddock-parser/internal/models"
	"github.com/yourusername/paddock-parser/internal/normalize"
)

// unnumbered sorts runners without a numeric saddle cloth last.
const unnumbered = 999

// ConsoleSink renders one table per race.
type ConsoleSink struct {
	out   io.Writer
	limit int
}

// NewConsoleSink creates a console sink. A limit of zero prints every race.
func NewConsoleSink(out io.Writer, limit int) *ConsoleSink {
	return &ConsoleSink{out: out, limit: limit}
}

// Name returns the sink name
func (s *ConsoleSink) Name() string {
	return "console"
}

// Write prints the results in the order given.
func (s *ConsoleSink) Write(_ context.Context, results []models.ScoreResult) error {
	shown := results
	if s.limit > 0 && len(shown) > s.limit {
		shown = shown[:s.limit]
	}
	if _, err := fmt.Fprintf(s.out, "Displaying top %d scored races:\n", len(shown)); err != nil {
		return err
	}
	for i := range shown {
		s.render(&shown[i])
	}
	return nil
}

func (s *ConsoleSink) render(result *models.ScoreResult) {
	race := result.Race

	t := table.NewWriter()
	t.SetOutputMirror(s.out)
	style := table.StyleRounded
	style.Format.Footer = text.FormatDefault
	style.Title.Format = text.FormatDefault
	t.SetStyle(style)
	t.SetTitle("%s (Score: %.2f)", race.RaceKey, result.Score)
	t.AppendHeader(table.Row{"#", "Runner", "Odds", "Price", "Jockey", "Trainer"})

	for _, runner := range sortedRunners(race.Runners) {
		odds := "N/A"
		price := "-"
		if runner.OddsDecimal != nil {
			odds = fmt.Sprintf("%.2f", *runner.OddsDecimal)
			price = normalize.FormatFractional(*runner.OddsDecimal)
		}
		t.AppendRow(table.Row{runner.SaddleCloth, runner.Name, odds, price, deref(runner.JockeyName), deref(runner.TrainerName)})
	}

	t.AppendFooter(table.Row{"", "Start", race.StartTimeISO})
	t.AppendFooter(table.Row{"", "Sources", strings.Join(race.SourceIDs, ", ")})
	t.AppendFooter(table.Row{"", "Reason", result.Reason})
	if result.BestValueScore != nil {
		t.AppendFooter(table.Row{"", "Value", fmt.Sprintf("%.2f (%s)", *result.BestValueScore, deref(result.BestValueReason))})
	}
	t.Render()
}

// sortedRunners orders runners by saddle cloth number.
func sortedRunners(runners []models.NormalizedRunner) []models.NormalizedRunner {
	out := append([]models.NormalizedRunner(nil), runners...)
	sort.SliceStable(out, func(i, j int) bool {
		return saddleOrder(out[i].SaddleCloth) < saddleOrder(out[j].SaddleCloth)
	})
	return out
}

func saddleOrder(cloth string) int {
	n, err := strconv.Atoi(strings.TrimSpace(cloth))
	if err != nil || n < 0 {
		return unnumbered
	}
	return n
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
