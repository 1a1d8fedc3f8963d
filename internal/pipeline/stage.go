// Package pipeline runs collection, merging, scoring and reporting as one
// pass over every enabled source.
package pipeline

// Stage is one step of a run. Stages execute strictly in order.
type Stage int

const (
	StageCollect Stage = iota
	StageCoalesce
	StageNormalizeMerge
	StageFilter
	StageScore
	StageReport
)

// Stages lists every stage in execution order.
var Stages = []Stage{StageCollect, StageCoalesce, StageNormalizeMerge, StageFilter, StageScore, StageReport}

func (s Stage) String() string {
	switch s {
	case StageCollect:
		return "COLLECT"
	case StageCoalesce:
		return "COALESCE"
	case StageNormalizeMerge:
		return "NORMALIZE_MERGE"
	case StageFilter:
		return "FILTER"
	case StageScore:
		return "SCORE"
	case StageReport:
		return "REPORT"
	default:
		return "UNKNOWN"
	}
}
