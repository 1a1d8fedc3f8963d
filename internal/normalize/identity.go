package normalize

import (
	"strings"

	"github.com/yourusername/paddock-parser/internal/models"
)

// RunnerIdentity is the key runners are matched on: the name, trimmed,
// lower-cased and with internal whitespace collapsed.
func RunnerIdentity(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// RunnerIndex locates runners in a slice by RunnerIdentity, falling back to a
// non-empty runner id.
type RunnerIndex struct {
	byName map[string]int
	byID   map[string]int
}

// NewRunnerIndex indexes runners by position.
func NewRunnerIndex(runners []models.NormalizedRunner) *RunnerIndex {
	idx := &RunnerIndex{
		byName: make(map[string]int, len(runners)),
		byID:   make(map[string]int, len(runners)),
	}
	for i := range runners {
		idx.add(runners[i], i)
	}
	return idx
}

func (idx *RunnerIndex) add(runner models.NormalizedRunner, pos int) {
	if key := RunnerIdentity(runner.Name); key != "" {
		if _, seen := idx.byName[key]; !seen {
			idx.byName[key] = pos
		}
	}
	if runner.RunnerID != "" {
		if _, seen := idx.byID[runner.RunnerID]; !seen {
			idx.byID[runner.RunnerID] = pos
		}
	}
}

func (idx *RunnerIndex) lookup(runner models.NormalizedRunner) (int, bool) {
	if key := RunnerIdentity(runner.Name); key != "" {
		if pos, ok := idx.byName[key]; ok {
			return pos, true
		}
	}
	if runner.RunnerID != "" {
		if pos, ok := idx.byID[runner.RunnerID]; ok {
			return pos, true
		}
	}
	return 0, false
}

// Fold adds runner to runners, which must be the slice idx was built over.
// A runner with no match is appended. A matched runner is kept unless the
// newcomer is priced and it is not, in which case the newcomer replaces it.
// The newcomer is stored as given; callers clone when they need isolation.
func (idx *RunnerIndex) Fold(runners []models.NormalizedRunner, runner models.NormalizedRunner) []models.NormalizedRunner {
	pos, found := idx.lookup(runner)
	if !found {
		runners = append(runners, runner)
		idx.add(runner, len(runners)-1)
		return runners
	}
	if runner.HasOdds() && !runners[pos].HasOdds() {
		runners[pos] = runner
		idx.add(runner, pos)
	}
	return runners
}

// DedupeRunners collapses runners that share an identity, applying the same
// rule as Fold.
func DedupeRunners(runners []models.NormalizedRunner) []models.NormalizedRunner {
	out := make([]models.NormalizedRunner, 0, len(runners))
	idx := NewRunnerIndex(nil)
	for _, r := range runners {
		out = idx.Fold(out, r)
	}
	return out
}
