package merge

import "math"

// aggregateRuns folds classified rows into one Run per run id. Bounds are
// min Start / max Stop, Duration is the sum over members, and AOI and
// EventIndex come from the first member in sort order — a deterministic
// representative, not a vote.
func aggregateRuns(key Key, rows []classified) []Run {
	var runs []Run
	for _, row := range rows {
		if len(runs) == 0 || runs[len(runs)-1].RunID != row.runID {
			runs = append(runs, Run{
				Key:            key,
				RunID:          row.runID,
				Start:          row.Start,
				Stop:           row.Stop,
				Duration:       row.Duration,
				AOI:            row.AOI,
				EventIndex:     row.EventIndex,
				SegmentsMerged: 1,
			})
			continue
		}

		run := &runs[len(runs)-1]
		run.Start = nanMin(run.Start, row.Start)
		run.Stop = nanMax(run.Stop, row.Stop)
		run.Duration += row.Duration
		run.SegmentsMerged++
	}
	return runs
}

// nanMin returns the smaller value, ignoring NaN when a real value exists.
func nanMin(a, b float64) float64 {
	if math.IsNaN(a) {
		return b
	}
	if math.IsNaN(b) {
		return a
	}
	return math.Min(a, b)
}

func nanMax(a, b float64) float64 {
	if math.IsNaN(a) {
		return b
	}
	if math.IsNaN(b) {
		return a
	}
	return math.Max(a, b)
}
