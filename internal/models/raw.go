package models

// Field is a single value reported by a source together with how much we
// trust it.
type Field[T any] struct {
	Value      T       `json:"value"`
	Confidence float64 `json:"confidence"`
	Source     string  `json:"source"`
}

// NewField builds a Field for value tagged with source and confidence.
func NewField[T any](value T, confidence float64, source string) Field[T] {
	return Field[T]{Value: value, Confidence: confidence, Source: source}
}

// FieldPtr is NewField returning a pointer, for optional runner attributes.
func FieldPtr[T any](value T, confidence float64, source string) *Field[T] {
	f := NewField(value, confidence, source)
	return &f
}

// RawRunner is one source's view of a single runner.
type RawRunner struct {
	RunnerID string                `json:"runner_id"`
	Name     Field[string]         `json:"name"`
	Number   Field[string]         `json:"number"`
	Odds     *Field[string]        `json:"odds,omitempty"`
	Jockey   *Field[string]        `json:"jockey,omitempty"`
	Trainer  *Field[string]        `json:"trainer,omitempty"`
	Extras   map[string]Field[any] `json:"extras,omitempty"`
}

// RawRaceDocument is one source's view of one race, as produced by a
// collector. It is not modified after it has been produced.
type RawRaceDocument struct {
	SourceID     string                `json:"source_id" validate:"required"`
	FetchedAt    string                `json:"fetched_at"`
	TrackKey     string                `json:"track_key" validate:"required"`
	RaceKey      string                `json:"race_key" validate:"required,racekey"`
	StartTimeISO string                `json:"start_time_iso"`
	RaceName     *Field[string]        `json:"race_name,omitempty"`
	Going        *Field[string]        `json:"going,omitempty"`
	Runners      []RawRunner           `json:"runners"`
	Extras       map[string]Field[any] `json:"extras,omitempty"`
}
