package merge

import "sort"

// Keyed is anything that can be grouped by race key.
type Keyed interface {
	Key() string
}

// Group is the run of entries that share one race key, in arrival order.
type Group[T Keyed] struct {
	RaceKey string
	Entries []T
}

// Coalesce stable-sorts entries by race key and groups consecutive equal
// keys. Entries with the same key keep the order they arrived in, which is
// the order they will be merged in.
func Coalesce[T Keyed](entries []T) []Group[T] {
	sorted := make([]T, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Key() < sorted[j].Key()
	})

	var groups []Group[T]
	for _, e := range sorted {
		key := e.Key()
		if n := len(groups); n > 0 && groups[n-1].RaceKey == key {
			groups[n-1].Entries = append(groups[n-1].Entries, e)
			continue
		}
		groups = append(groups, Group[T]{RaceKey: key, Entries: []T{e}})
	}
	return groups
}
