package models

// ScoreResult wraps a race with its bettability score.
type ScoreResult struct {
	Race            NormalizedRace `json:"race"`
	Score           float64        `json:"score"`
	Reason          string         `json:"reason"`
	BestValueScore  *float64       `json:"best_value_score,omitempty"`
	BestValueReason *string        `json:"best_value_reason,omitempty"`
}

// ScoreRecord is the flat form of a ScoreResult handed to report sinks.
type ScoreRecord struct {
	RaceKey         string         `json:"race_key"`
	Score           float64        `json:"score"`
	Reason          string         `json:"reason"`
	BestValueScore  *float64       `json:"best_value_score"`
	BestValueReason *string        `json:"best_value_reason"`
	Race            NormalizedRace `json:"race"`
}

// Record flattens the result for reporting.
func (s *ScoreResult) Record() ScoreRecord {
	return ScoreRecord{
		RaceKey:         s.Race.RaceKey,
		Score:           s.Score,
		Reason:          s.Reason,
		BestValueScore:  s.BestValueScore,
		BestValueReason: s.BestValueReason,
		Race:            s.Race,
	}
}
