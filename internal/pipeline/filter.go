package pipeline

import (
	"github.com/yourusername/paddock-parser/internal/config"
	"github.com/yourusername/paddock-parser/internal/models"
)

// Filters is the inclusive runner-count band a race must fall in to be
// scored. A MaxRunners of zero or less leaves the band open-ended.
type Filters struct {
	MinRunners int
	MaxRunners int
}

// FiltersFrom maps the race_filters configuration section.
func FiltersFrom(cfg config.RaceFiltersConfig) Filters {
	return Filters{MinRunners: cfg.MinRunners, MaxRunners: cfg.MaxRunners}
}

// Allows reports whether the race's declared field size is within the band.
func (f Filters) Allows(race *models.NormalizedRace) bool {
	n := race.FieldSize()
	if n < f.MinRunners {
		return false
	}
	return f.MaxRunners <= 0 || n <= f.MaxRunners
}

// Apply keeps the races the band allows, preserving order.
func (f Filters) Apply(races []models.NormalizedRace) (kept []models.NormalizedRace, dropped int) {
	kept = make([]models.NormalizedRace, 0, len(races))
	for i := range races {
		if f.Allows(&races[i]) {
			kept = append(kept, races[i])
			continue
		}
		dropped++
	}
	return kept, dropped
}
