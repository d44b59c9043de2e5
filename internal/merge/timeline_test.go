package merge

import (
	"testing"
)

func TestComposeTimeline_OrderAndTags(t *testing.T) {
	rows := []Row{
		makeRow(0, 20, 20, "Puck", 0),
		makeRow(20, 40, 20, "Puck", 1),
		makeRow(40, 140, 100, "Ice", 2),
	}

	res, err := Merge(rows, DefaultOptions())
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}

	if len(res.Timeline) != 2 {
		t.Fatalf("expected 2 timeline entries, got %d", len(res.Timeline))
	}

	first := res.Timeline[0]
	if first.Source != "Merged<=20msRun" {
		t.Errorf("first entry source = %q", first.Source)
	}
	if first.Start != 0 || first.Stop != 40 || first.SegmentsMerged != 2 {
		t.Errorf("first entry = %+v", first)
	}
	if first.OriginalRowIndex != -1 {
		t.Errorf("merged entry must not carry a row index, got %d", first.OriginalRowIndex)
	}

	second := res.Timeline[1]
	if second.Source != "Raw>20msRow" {
		t.Errorf("second entry source = %q", second.Source)
	}
	if second.OriginalRowIndex != 2 {
		t.Errorf("raw entry OriginalRowIndex = %d, want 2", second.OriginalRowIndex)
	}
}

func TestComposeTimeline_StableTieBreak(t *testing.T) {
	// A run and a raw row with identical (Key, Start, Stop): the merged
	// entry must come first, deterministically.
	rows := []Row{
		makeRow(0, 20, 20, "Puck", 0),
		makeRow(0, 20, 100, "Puck", 1),
	}

	res, err := Merge(rows, DefaultOptions())
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if len(res.Timeline) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(res.Timeline))
	}
	if res.Timeline[0].SegmentsMerged != 1 || res.Timeline[1].OriginalRowIndex != 1 {
		t.Errorf("tie break not stable: %+v then %+v", res.Timeline[0], res.Timeline[1])
	}
}

func TestSourceTags_ExactMode(t *testing.T) {
	opts := DefaultOptions()
	opts.Mode = ModeExact
	if tag := opts.MergedSourceTag(); tag != "Merged20msRun" {
		t.Errorf("merged tag = %q", tag)
	}
	if tag := opts.RawSourceTag(); tag != "RawNon20Row" {
		t.Errorf("raw tag = %q", tag)
	}
}

func TestComposeTimeline_RawKeepsPassthroughColumns(t *testing.T) {
	raw := makeRow(0, 100, 100, "Ice", 0)
	raw.Extra = map[string]string{"Eye_movement_type": "Saccade"}

	res, err := Merge([]Row{raw}, DefaultOptions())
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if len(res.Timeline) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(res.Timeline))
	}
	if res.Timeline[0].Extra["Eye_movement_type"] != "Saccade" {
		t.Errorf("passthrough column lost: %+v", res.Timeline[0])
	}
}
