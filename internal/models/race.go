package models

import "time"

// NormalizedRace is the canonical record for one race, possibly merged from
// several sources.
type NormalizedRace struct {
	RaceKey      string             `json:"race_key"`
	TrackKey     string             `json:"track_key"`
	StartTimeISO string             `json:"start_time_iso"`
	RaceName     *string            `json:"race_name,omitempty"`
	Going        *string            `json:"going,omitempty"`
	Runners      []NormalizedRunner `json:"runners"`
	SourceIDs    []string           `json:"source_ids"`
	Extras       map[string]any     `json:"extras"`
}

// RunnersWithOdds returns the runners that carry decimal odds.
func (r *NormalizedRace) RunnersWithOdds() []NormalizedRunner {
	priced := make([]NormalizedRunner, 0, len(r.Runners))
	for _, runner := range r.Runners {
		if runner.HasOdds() {
			priced = append(priced, runner)
		}
	}
	return priced
}

// FieldSize returns the number of declared runners, priced or not.
func (r *NormalizedRace) FieldSize() int {
	return len(r.Runners)
}

// StartTime parses StartTimeISO. The zero time is returned when the source
// gave no usable timestamp.
func (r *NormalizedRace) StartTime() time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04"} {
		if t, err := time.Parse(layout, r.StartTimeISO); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Clone returns a deep copy so merges never alias a collector's data.
func (r *NormalizedRace) Clone() *NormalizedRace {
	out := *r
	out.Runners = make([]NormalizedRunner, len(r.Runners))
	for i := range r.Runners {
		out.Runners[i] = r.Runners[i].Clone()
	}
	out.SourceIDs = append([]string(nil), r.SourceIDs...)
	out.Extras = make(map[string]any, len(r.Extras))
	for k, v := range r.Extras {
		out.Extras[k] = v
	}
	return &out
}
