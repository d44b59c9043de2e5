// Package workbook adapts xlsx export files to and from the merge engine's
// row model. The sheet and column names are a contract with the exporting
// eye-tracker software and with downstream analysis scripts.
package workbook

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/lyu-lab/gazerun/internal/merge"
)

// Required columns beyond the seven grouping columns.
var valueColumns = []string{"Start", "Stop", "Duration", "AOI"}

// EventIndexColumn is optional in the export; runs omit it when absent.
const EventIndexColumn = "EventIndex"

// Table is one sheet's worth of normalized interval rows plus the header
// metadata the writer needs to reproduce passthrough columns.
type Table struct {
	Rows          []merge.Row
	ExtraColumns  []string
	HasEventIndex bool
}

// ReadTable loads the named sheet from an xlsx workbook and normalizes it
// into interval rows. Start, Stop and Duration cells that fail numeric
// coercion become NaN; everything else is kept verbatim. A missing sheet or
// missing required column is an error for this file.
func ReadTable(path, sheet string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheet)
	}

	header := make([]string, len(rows[0]))
	for i, cell := range rows[0] {
		header[i] = strings.TrimSpace(cell)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}

	var missing []string
	for _, name := range append(append([]string{}, merge.KeyColumns...), valueColumns...) {
		if _, ok := index[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("sheet %q missing required column(s): %s",
			sheet, strings.Join(missing, ", "))
	}

	_, hasEventIndex := index[EventIndexColumn]

	known := make(map[string]bool)
	for _, name := range merge.KeyColumns {
		known[name] = true
	}
	for _, name := range valueColumns {
		known[name] = true
	}
	known[EventIndexColumn] = true

	var extraColumns []string
	for _, name := range header {
		if name != "" && !known[name] {
			extraColumns = append(extraColumns, name)
		}
	}

	table := &Table{
		ExtraColumns:  extraColumns,
		HasEventIndex: hasEventIndex,
	}

	for i, raw := range rows[1:] {
		cell := func(name string) string {
			col, ok := index[name]
			if !ok || col >= len(raw) {
				return ""
			}
			return raw[col]
		}

		row := merge.Row{
			Key: merge.Key{
				Recording:   cell("Recording"),
				Participant: cell("Participant"),
				Position:    cell("Position"),
				TOI:         cell("TOI"),
				Interval:    cell("Interval"),
				EventType:   cell("Event_type"),
				Validity:    cell("Validity"),
			},
			Start:    merge.ToNumber(cell("Start")),
			Stop:     merge.ToNumber(cell("Stop")),
			Duration: merge.ToNumber(cell("Duration")),
			AOI:      cell("AOI"),
			Index:    i,
		}
		if hasEventIndex {
			row.EventIndex = cell(EventIndexColumn)
		}
		if len(extraColumns) > 0 {
			row.Extra = make(map[string]string, len(extraColumns))
			for _, name := range extraColumns {
				row.Extra[name] = cell(name)
			}
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}
