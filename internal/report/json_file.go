package report

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/yourusername/paddock-parser/internal/models"
)

// JSONFileSink writes a daily JSON report. The file is replaced atomically
// so readers never see a partial report.
type JSONFileSink struct {
	dir string
	now func() time.Time
}

// NewJSONFileSink creates a sink writing into dir.
func NewJSONFileSink(dir string) *JSONFileSink {
	return &JSONFileSink{dir: dir, now: time.Now}
}

// Name returns the sink name
func (s *JSONFileSink) Name() string {
	return "json_file"
}

// Path returns the report file for the given day.
func (s *JSONFileSink) Path(day time.Time) string {
	return filepath.Join(s.dir, fmt.Sprintf("paddock_report_%s.json", day.Format("2006-01-02")))
}

// Write serialises the results and renames them into place.
func (s *JSONFileSink) Write(_ context.Context, results []models.ScoreResult) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	data, err := json.MarshalIndent(records(results), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, ".paddock_report_*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close report: %w", err)
	}
	if err := os.Rename(tmpName, s.Path(s.now())); err != nil {
		return fmt.Errorf("failed to move report into place: %w", err)
	}
	return nil
}
