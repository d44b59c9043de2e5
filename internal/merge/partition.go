package merge

// Partition splits rows into the mergeable stream and the pass-through
// stream. Every input row lands in exactly one of the two; rows whose
// Duration failed coercion (NaN) always fall through.
func Partition(rows []Row, opts Options) (mergeable, passThrough []Row) {
	for _, row := range rows {
		if opts.mergeable(row.Duration) {
			mergeable = append(mergeable, row)
		} else {
			passThrough = append(passThrough, row)
		}
	}
	return mergeable, passThrough
}
