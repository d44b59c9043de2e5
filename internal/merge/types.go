package merge

// Key is the 7-field grouping context. Two rows may only merge when all
// seven fields are equal, compared exactly with no normalization.
type Key struct {
	Recording   string
	Participant string
	Position    string
	TOI         string
	Interval    string
	EventType   string
	Validity    string
}

// KeyColumns lists the grouping columns in their canonical export order.
var KeyColumns = []string{
	"Recording",
	"Participant",
	"Position",
	"TOI",
	"Interval",
	"Event_type",
	"Validity",
}

// Fields returns the key fields in KeyColumns order.
func (k Key) Fields() [7]string {
	return [7]string{
		k.Recording,
		k.Participant,
		k.Position,
		k.TOI,
		k.Interval,
		k.EventType,
		k.Validity,
	}
}

// Less orders keys lexicographically across the seven fields.
func (k Key) Less(other Key) bool {
	a, b := k.Fields(), other.Fields()
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

// Row is one gaze-interval observation. Start, Stop and Duration are NaN
// when the source cell failed numeric coercion.
type Row struct {
	Key        Key
	Start      float64
	Stop       float64
	Duration   float64
	AOI        string
	EventIndex string            // raw cell value, empty when the column is absent
	Extra      map[string]string // passthrough columns, untouched by the engine
	Index      int               // position in the input table, 0-based
}

// Run is a maximal sequence of mergeable rows judged as one continuous
// gaze event, folded into a single record.
type Run struct {
	Key            Key
	RunID          int // 1-based within the group
	Start          float64
	Stop           float64
	Duration       float64
	AOI            string
	EventIndex     string
	SegmentsMerged int
}

// TimelineEntry is one line of the combined timeline: either an aggregated
// run or an untouched pass-through row.
type TimelineEntry struct {
	Key              Key
	Source           string
	Start            float64
	Stop             float64
	Duration         float64
	AOI              string
	EventIndex       string
	RunID            int // 0 for raw rows
	SegmentsMerged   int // 0 for raw rows
	OriginalRowIndex int // -1 for merged runs
	Extra            map[string]string
}

// AOITotal is a per-AOI roll-up over the mergeable stream.
type AOITotal struct {
	AOI           string
	Rows          int
	TotalDuration float64
	FirstStart    float64
	LastStop      float64
}

// GroupAOITotal is a per-(group, AOI) roll-up over the mergeable stream.
type GroupAOITotal struct {
	Key Key
	AOITotal
}
