package merge

// classified pairs a mergeable row with its run id.
type classified struct {
	Row
	runID int
}

// classifyGroup scans one group's ordered rows and assigns run ids.
// A row continues the previous run only when it keeps the same AOI and is
// contiguous with the row immediately before it in sort order:
//
//   - primary rule: Start equals the previous Stop (bit-exact), or
//   - step fallback: Start minus the previous Start equals the threshold
//     and both rows have Duration equal to the threshold.
//
// The first row of a group always opens run 1; every broken condition
// opens the next run. NaN bounds fail both rules, so a malformed boundary
// always breaks continuity.
func classifyGroup(g group, opts Options) []classified {
	out := make([]classified, len(g.rows))
	runID := 0

	for i, row := range g.rows {
		newRun := true
		if i > 0 {
			prev := g.rows[i-1]
			contiguous := row.Start == prev.Stop
			if !contiguous && opts.StepFallback {
				contiguous = row.Start-prev.Start == opts.Threshold &&
					row.Duration == opts.Threshold &&
					prev.Duration == opts.Threshold
			}
			newRun = !(row.AOI == prev.AOI && contiguous)
		}
		if newRun {
			runID++
		}
		out[i] = classified{Row: row, runID: runID}
	}
	return out
}
