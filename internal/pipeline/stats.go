package pipeline

import "fmt"

// Stats tracks what happened to entries during one run.
type Stats struct {
	CollectorsRun      int
	CollectorsFailed   int
	DocumentsCollected int
	RacesCollected     int
	DocumentsRejected  int
	RacesMerged        int
	RacesFiltered      int
	RacesScored        int
	SinkFailures       int
}

// Map returns the counters keyed by snake_case name, for structured logs.
func (s Stats) Map() map[string]int {
	return map[string]int{
		"collectors_run":      s.CollectorsRun,
		"collectors_failed":   s.CollectorsFailed,
		"documents_collected": s.DocumentsCollected,
		"races_collected":     s.RacesCollected,
		"documents_rejected":  s.DocumentsRejected,
		"races_merged":        s.RacesMerged,
		"races_filtered":      s.RacesFiltered,
		"races_scored":        s.RacesScored,
		"sink_failures":       s.SinkFailures,
	}
}

// String returns a formatted string representation of the counters
func (s Stats) String() string {
	return fmt.Sprintf(
		"Stats{Collectors=%d (failed %d), Documents=%d, Races=%d, Rejected=%d, Merged=%d, Filtered=%d, Scored=%d, SinkFailures=%d}",
		s.CollectorsRun,
		s.CollectorsFailed,
		s.DocumentsCollected,
		s.RacesCollected,
		s.DocumentsRejected,
		s.RacesMerged,
		s.RacesFiltered,
		s.RacesScored,
		s.SinkFailures,
	)
}
