package batch

import (
	"os"
	"path/filepath"
	"testing"
)

func TestState_NewAndSave(t *testing.T) {
	dir := t.TempDir()

	s, err := LoadState(dir)
	if err != nil {
		t.Fatalf("LoadState failed: %v", err)
	}
	s.MarkProcessed("session01.xlsx")
	s.MarkProcessed("session02.xlsx")
	s.AddCounts(8, 24)
	s.AddCounts(4, 16)

	if err := s.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	statePath := filepath.Join(dir, StateFileName)
	if _, err := os.Stat(statePath); err != nil {
		t.Fatalf("state file not created: %v", err)
	}

	// Reload and verify.
	reloaded, err := LoadState(dir)
	if err != nil {
		t.Fatalf("reload state: %v", err)
	}
	if !reloaded.IsProcessed("session01.xlsx") || !reloaded.IsProcessed("session02.xlsx") {
		t.Error("processed files lost on reload")
	}
	if reloaded.RunsProduced != 12 || reloaded.RowsMerged != 40 {
		t.Errorf("counters lost on reload: %d/%d", reloaded.RunsProduced, reloaded.RowsMerged)
	}
}

func TestState_IsProcessed(t *testing.T) {
	s := &State{}

	if s.IsProcessed("session01.xlsx") {
		t.Error("session01 should not be processed yet")
	}

	s.MarkProcessed("session01.xlsx")

	if !s.IsProcessed("session01.xlsx") {
		t.Error("session01 should be processed")
	}
	if s.IsProcessed("session02.xlsx") {
		t.Error("session02 should not be processed")
	}
}

func TestState_AddError(t *testing.T) {
	s := &State{}
	s.AddError("something went wrong")
	s.AddError("another error")

	if len(s.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(s.Errors))
	}
	if s.Errors[0] != "something went wrong" {
		t.Errorf("error[0] = %q", s.Errors[0])
	}
}

func TestState_SaveCreatesDirectories(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")

	s, err := LoadState(dir)
	if err != nil {
		t.Fatalf("LoadState failed: %v", err)
	}
	if err := s.Save(); err != nil {
		t.Fatalf("Save with nested dir failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, StateFileName)); err != nil {
		t.Fatalf("state file not created in nested dir: %v", err)
	}
}
