package merge

import "sort"

// summarizeAOI rolls up the mergeable stream per AOI: row count, summed
// Duration, earliest Start, latest Stop. These totals deliberately bypass
// the merge step so they measure gaze time independent of run segmentation.
// Result is sorted by total duration descending, ties by AOI ascending.
func summarizeAOI(rows []Row) []AOITotal {
	totals := make(map[string]*AOITotal)
	var aois []string
	for _, row := range rows {
		t, ok := totals[row.AOI]
		if !ok {
			t = &AOITotal{
				AOI:        row.AOI,
				FirstStart: row.Start,
				LastStop:   row.Stop,
			}
			totals[row.AOI] = t
			aois = append(aois, row.AOI)
		}
		t.Rows++
		t.TotalDuration += row.Duration
		t.FirstStart = nanMin(t.FirstStart, row.Start)
		t.LastStop = nanMax(t.LastStop, row.Stop)
	}

	out := make([]AOITotal, 0, len(aois))
	for _, aoi := range aois {
		out = append(out, *totals[aoi])
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalDuration != out[j].TotalDuration {
			return out[i].TotalDuration > out[j].TotalDuration
		}
		return out[i].AOI < out[j].AOI
	})
	return out
}

// summarizeAOIByGroup produces the same four aggregates per (group, AOI),
// in (Key, AOI) order.
func summarizeAOIByGroup(groups []group) []GroupAOITotal {
	var out []GroupAOITotal
	for _, g := range groups {
		perAOI := make(map[string]*GroupAOITotal)
		var aois []string
		for _, row := range g.rows {
			t, ok := perAOI[row.AOI]
			if !ok {
				t = &GroupAOITotal{
					Key: g.key,
					AOITotal: AOITotal{
						AOI:        row.AOI,
						FirstStart: row.Start,
						LastStop:   row.Stop,
					},
				}
				perAOI[row.AOI] = t
				aois = append(aois, row.AOI)
			}
			t.Rows++
			t.TotalDuration += row.Duration
			t.FirstStart = nanMin(t.FirstStart, row.Start)
			t.LastStop = nanMax(t.LastStop, row.Stop)
		}
		sort.Strings(aois)
		for _, aoi := range aois {
			out = append(out, *perAOI[aoi])
		}
	}
	return out
}
