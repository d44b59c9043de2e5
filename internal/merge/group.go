package merge

import "sort"

// group is one grouping context with its rows in run-detection order.
type group struct {
	key  Key
	rows []Row
}

// groupRows buckets the mergeable stream by exact Key equality and orders
// each bucket by ascending (Start, Stop), ties broken by input order.
// Groups come back sorted by key so run detection and all derived output
// is reproducible. Continuity decisions depend on this exact ordering.
func groupRows(rows []Row) []group {
	buckets := make(map[Key][]Row)
	for _, row := range rows {
		buckets[row.Key] = append(buckets[row.Key], row)
	}

	groups := make([]group, 0, len(buckets))
	for key, members := range buckets {
		sort.SliceStable(members, func(i, j int) bool {
			if members[i].Start != members[j].Start {
				return lessNumeric(members[i].Start, members[j].Start)
			}
			if members[i].Stop != members[j].Stop {
				return lessNumeric(members[i].Stop, members[j].Stop)
			}
			return false
		})
		groups = append(groups, group{key: key, rows: members})
	}

	sort.Slice(groups, func(i, j int) bool {
		return groups[i].key.Less(groups[j].key)
	})
	return groups
}

// sortedMergeable returns the whole mergeable stream in (Key, Start, Stop)
// order, the order the summary sheets and debug output use.
func sortedMergeable(groups []group) []Row {
	var out []Row
	for _, g := range groups {
		out = append(out, g.rows...)
	}
	return out
}
