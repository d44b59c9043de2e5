package merge

import (
	"fmt"
	"sort"
)

// MergedSourceTag labels aggregated runs in the combined timeline.
func (o Options) MergedSourceTag() string {
	if o.Mode == ModeExact {
		return fmt.Sprintf("Merged%gmsRun", o.Threshold)
	}
	return fmt.Sprintf("Merged<=%gmsRun", o.Threshold)
}

// RawSourceTag labels pass-through rows in the combined timeline.
func (o Options) RawSourceTag() string {
	if o.Mode == ModeExact {
		return fmt.Sprintf("RawNon%gRow", o.Threshold)
	}
	return fmt.Sprintf("Raw>%gmsRow", o.Threshold)
}

// composeTimeline unions aggregated runs with pass-through rows into one
// chronological table tagged by provenance. The sort is stable with runs
// listed ahead of raw rows, so entries sharing identical (Key, Start, Stop)
// keep a deterministic relative order across invocations.
func composeTimeline(runs []Run, passThrough []Row, opts Options) []TimelineEntry {
	mergedTag := opts.MergedSourceTag()
	rawTag := opts.RawSourceTag()

	entries := make([]TimelineEntry, 0, len(runs)+len(passThrough))
	for _, run := range runs {
		entries = append(entries, TimelineEntry{
			Key:              run.Key,
			Source:           mergedTag,
			Start:            run.Start,
			Stop:             run.Stop,
			Duration:         run.Duration,
			AOI:              run.AOI,
			EventIndex:       run.EventIndex,
			RunID:            run.RunID,
			SegmentsMerged:   run.SegmentsMerged,
			OriginalRowIndex: -1,
		})
	}
	for _, row := range passThrough {
		entries = append(entries, TimelineEntry{
			Key:              row.Key,
			Source:           rawTag,
			Start:            row.Start,
			Stop:             row.Stop,
			Duration:         row.Duration,
			AOI:              row.AOI,
			EventIndex:       row.EventIndex,
			OriginalRowIndex: row.Index,
			Extra:            row.Extra,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Key != entries[j].Key {
			return entries[i].Key.Less(entries[j].Key)
		}
		if entries[i].Start != entries[j].Start {
			return lessNumeric(entries[i].Start, entries[j].Start)
		}
		if entries[i].Stop != entries[j].Stop {
			return lessNumeric(entries[i].Stop, entries[j].Stop)
		}
		return false
	})
	return entries
}
