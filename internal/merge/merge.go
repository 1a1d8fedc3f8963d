// Package merge reconciles several normalized views of the same race into
// one record.
package merge

import (
	"fmt"
	"sort"

	"github.com/yourusername/paddock-parser/internal/models"
	"github.com/yourusername/paddock-parser/internal/normalize"
)

// Merge folds incoming into target and returns target. Both races must carry
// the same race key; anything else means coalescing is broken and Merge
// panics.
//
// Runners are matched by normalize.RunnerIdentity, falling back to a
// non-empty runner id. A matched target runner is kept unless incoming has odds and target has
// none, in which case the incoming record replaces it whole. Unmatched runners
// are appended. Source ids are unioned and sorted; extras only fill keys that
// target lacks or holds as nil.
func Merge(target, incoming *models.NormalizedRace) *models.NormalizedRace {
	if target.RaceKey != incoming.RaceKey {
		panic(fmt.Errorf("%w: cannot merge %q into %q", models.ErrRaceKeyMismatch, incoming.RaceKey, target.RaceKey))
	}

	idx := normalize.NewRunnerIndex(target.Runners)
	for _, runner := range incoming.Runners {
		target.Runners = idx.Fold(target.Runners, runner.Clone())
	}

	target.SourceIDs = unionSorted(target.SourceIDs, incoming.SourceIDs)

	if target.Extras == nil {
		target.Extras = make(map[string]any, len(incoming.Extras))
	}
	for k, v := range incoming.Extras {
		if existing, ok := target.Extras[k]; !ok || existing == nil {
			target.Extras[k] = v
		}
	}

	if target.RaceName == nil && incoming.RaceName != nil {
		name := *incoming.RaceName
		target.RaceName = &name
	}
	if target.Going == nil && incoming.Going != nil {
		going := *incoming.Going
		target.Going = &going
	}
	if target.StartTimeISO == "" {
		target.StartTimeISO = incoming.StartTimeISO
	}

	return target
}

func unionSorted(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, id := range list {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}
