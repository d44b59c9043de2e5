// Package merge implements the run-merging engine: it partitions
// gaze-interval rows by a duration threshold, detects continuous same-AOI
// runs inside a 7-field grouping context, and folds each run into a single
// aggregated record. Every stage consumes immutable input and produces new
// values; nothing is mutated after the stage that creates it.
package merge

// Result is the full output of one merge pass over an input table.
type Result struct {
	// Runs holds the aggregated runs in (Key, Start, Stop) order.
	Runs []Run
	// Mergeable is the threshold-eligible stream in sort order, kept for
	// the summary sheets and debug output.
	Mergeable []Row
	// PassThrough holds rows excluded by the threshold predicate, in
	// original input order and untouched.
	PassThrough []Row
	// Timeline is the union of Runs and PassThrough, chronologically
	// ordered and provenance-tagged.
	Timeline []TimelineEntry
	// AOISummary totals the mergeable stream per AOI.
	AOISummary []AOITotal
	// AOIByGroup totals the mergeable stream per (group, AOI).
	AOIByGroup []GroupAOITotal
}

// Merge runs the whole pipeline over one input table. Rows must already be
// normalized (ToNumber applied to Start/Stop/Duration). The input slice is
// not modified.
func Merge(rows []Row, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	mergeable, passThrough := Partition(rows, opts)
	groups := groupRows(mergeable)

	var runs []Run
	for _, g := range groups {
		runs = append(runs, aggregateRuns(g.key, classifyGroup(g, opts))...)
	}

	return &Result{
		Runs:        runs,
		Mergeable:   sortedMergeable(groups),
		PassThrough: passThrough,
		Timeline:    composeTimeline(runs, passThrough, opts),
		AOISummary:  summarizeAOI(mergeable),
		AOIByGroup:  summarizeAOIByGroup(groups),
	}, nil
}
