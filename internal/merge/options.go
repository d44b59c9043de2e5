package merge

import "fmt"

// Mode selects which rows are eligible for merging.
type Mode string

const (
	// ModeAtMost merges rows with Duration <= Threshold.
	ModeAtMost Mode = "at-most"
	// ModeExact merges rows with Duration == Threshold.
	ModeExact Mode = "exact"
)

// DefaultThreshold is the merge threshold in the export's time unit (ms).
const DefaultThreshold = 20

// Options configures one merge pass. The zero value is not usable; call
// DefaultOptions or fill every field.
type Options struct {
	// Threshold is the duration cutoff T.
	Threshold float64
	// Mode selects the partition predicate.
	Mode Mode
	// StepFallback enables the secondary continuity rule: a Start step of
	// exactly T counts as contiguous when both adjacent rows have
	// Duration == T. Under ModeExact every mergeable row already satisfies
	// the duration condition, so the fallback applies unconditionally there.
	StepFallback bool
}

// DefaultOptions mirrors the original export pipeline: merge everything at
// or under 20ms with the step fallback enabled.
func DefaultOptions() Options {
	return Options{
		Threshold:    DefaultThreshold,
		Mode:         ModeAtMost,
		StepFallback: true,
	}
}

// Validate reports configuration errors before a merge pass starts.
func (o Options) Validate() error {
	if o.Threshold <= 0 {
		return fmt.Errorf("threshold must be positive, got %g", o.Threshold)
	}
	switch o.Mode {
	case ModeAtMost, ModeExact:
		return nil
	default:
		return fmt.Errorf("unknown mode %q", o.Mode)
	}
}

// mergeable is the partition predicate. NaN durations fail both modes.
func (o Options) mergeable(duration float64) bool {
	switch o.Mode {
	case ModeExact:
		return duration == o.Threshold
	default:
		return duration <= o.Threshold
	}
}
