package workbook

import (
	"fmt"
	"math"

	"github.com/xuri/excelize/v2"

	"github.com/lyu-lab/gazerun/internal/merge"
)

// Result workbook sheet names. Downstream consumers key on these.
const (
	SheetTimeline   = "Timeline_Combined"
	SheetMergedRuns = "MergedRuns"
	SheetAOISummary = "AOI_Summary"
	SheetAOIByGroup = "AOI_ByGroup"
)

// debugSheetNames returns the names of the raw partitioned stream sheets,
// parameterized on the configured mode and threshold the way the exporting
// pipeline named them.
func debugSheetNames(opts merge.Options) (mergeableSheet, passThroughSheet string) {
	if opts.Mode == merge.ModeExact {
		return fmt.Sprintf("Raw_Duration_eq%g", opts.Threshold),
			fmt.Sprintf("Raw_Duration_ne%g", opts.Threshold)
	}
	return fmt.Sprintf("Raw_Duration_le%g", opts.Threshold),
		fmt.Sprintf("Raw_Duration_gt%g", opts.Threshold)
}

// WriteResult writes one merge result as a multi-sheet xlsx workbook:
// the combined timeline, the aggregated runs, both AOI summaries, and the
// raw partitioned streams for debugging (the pass-through sheet only when
// non-empty).
func WriteResult(path string, res *merge.Result, table *Table, opts merge.Options) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetTimeline); err != nil {
		return fmt.Errorf("rename default sheet: %w", err)
	}
	if err := fillSheet(f, SheetTimeline, timelineRows(res, table)); err != nil {
		return err
	}
	if err := addSheet(f, SheetMergedRuns, mergedRunRows(res, table)); err != nil {
		return err
	}
	if err := addSheet(f, SheetAOISummary, aoiSummaryRows(res)); err != nil {
		return err
	}
	if err := addSheet(f, SheetAOIByGroup, aoiByGroupRows(res)); err != nil {
		return err
	}

	mergeableSheet, passThroughSheet := debugSheetNames(opts)
	if err := addSheet(f, mergeableSheet, rawRows(res.Mergeable, table)); err != nil {
		return err
	}
	if len(res.PassThrough) > 0 {
		if err := addSheet(f, passThroughSheet, rawRows(res.PassThrough, table)); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func addSheet(f *excelize.File, name string, rows [][]any) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("create sheet %q: %w", name, err)
	}
	return fillSheet(f, name, rows)
}

func fillSheet(f *excelize.File, name string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("sheet %q row %d: %w", name, i+1, err)
		}
		if err := f.SetSheetRow(name, cell, &row); err != nil {
			return fmt.Errorf("write sheet %q row %d: %w", name, i+1, err)
		}
	}
	return nil
}

// num renders a float cell, leaving unparseable (NaN) values empty the way
// the source export does.
func num(v float64) any {
	if math.IsNaN(v) {
		return nil
	}
	return v
}

func keyCells(k merge.Key) []any {
	fields := k.Fields()
	out := make([]any, len(fields))
	for i, v := range fields {
		out[i] = v
	}
	return out
}

func keyHeader() []any {
	out := make([]any, len(merge.KeyColumns))
	for i, name := range merge.KeyColumns {
		out[i] = name
	}
	return out
}

func timelineRows(res *merge.Result, table *Table) [][]any {
	header := keyHeader()
	header = append(header, "run_id", "Start", "Stop", "Duration", "AOI")
	if table.HasEventIndex {
		header = append(header, EventIndexColumn)
	}
	header = append(header, "SegmentsMerged", "Source")
	for _, name := range table.ExtraColumns {
		header = append(header, name)
	}
	header = append(header, "OriginalRowIndex")

	rows := [][]any{header}
	for _, e := range res.Timeline {
		merged := e.OriginalRowIndex < 0

		row := keyCells(e.Key)
		if merged {
			row = append(row, e.RunID)
		} else {
			row = append(row, nil)
		}
		row = append(row, num(e.Start), num(e.Stop), num(e.Duration), e.AOI)
		if table.HasEventIndex {
			row = append(row, e.EventIndex)
		}
		if merged {
			row = append(row, e.SegmentsMerged, e.Source)
		} else {
			row = append(row, nil, e.Source)
		}
		for _, name := range table.ExtraColumns {
			row = append(row, e.Extra[name])
		}
		if merged {
			row = append(row, nil)
		} else {
			row = append(row, e.OriginalRowIndex)
		}
		rows = append(rows, row)
	}
	return rows
}

func mergedRunRows(res *merge.Result, table *Table) [][]any {
	header := keyHeader()
	header = append(header, "run_id", "Start", "Stop", "Duration", "AOI", "SegmentsMerged")
	if table.HasEventIndex {
		header = append(header, EventIndexColumn)
	}

	rows := [][]any{header}
	for _, run := range res.Runs {
		row := keyCells(run.Key)
		row = append(row, run.RunID, num(run.Start), num(run.Stop), num(run.Duration),
			run.AOI, run.SegmentsMerged)
		if table.HasEventIndex {
			row = append(row, run.EventIndex)
		}
		rows = append(rows, row)
	}
	return rows
}

func aoiSummaryRows(res *merge.Result) [][]any {
	rows := [][]any{{"AOI", "Rows", "TotalDuration", "FirstStart", "LastStop"}}
	for _, t := range res.AOISummary {
		rows = append(rows, []any{t.AOI, t.Rows, num(t.TotalDuration), num(t.FirstStart), num(t.LastStop)})
	}
	return rows
}

func aoiByGroupRows(res *merge.Result) [][]any {
	header := keyHeader()
	header = append(header, "AOI", "Rows", "TotalDuration", "FirstStart", "LastStop")

	rows := [][]any{header}
	for _, t := range res.AOIByGroup {
		row := keyCells(t.Key)
		row = append(row, t.AOI, t.Rows, num(t.TotalDuration), num(t.FirstStart), num(t.LastStop))
		rows = append(rows, row)
	}
	return rows
}

func rawRows(src []merge.Row, table *Table) [][]any {
	header := keyHeader()
	header = append(header, "Start", "Stop", "Duration", "AOI")
	if table.HasEventIndex {
		header = append(header, EventIndexColumn)
	}
	for _, name := range table.ExtraColumns {
		header = append(header, name)
	}

	rows := [][]any{header}
	for _, r := range src {
		row := keyCells(r.Key)
		row = append(row, num(r.Start), num(r.Stop), num(r.Duration), r.AOI)
		if table.HasEventIndex {
			row = append(row, r.EventIndex)
		}
		for _, name := range table.ExtraColumns {
			row = append(row, r.Extra[name])
		}
		rows = append(rows, row)
	}
	return rows
}
