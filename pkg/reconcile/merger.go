package reconcile

import "github.com/tracksync/bridge/pkg/types"

// mergeAttributes unions candidate attributes with previously known ones,
// candidate values winning on key collision. The second return reports
// whether the merged set strictly differs from the previous set; callers
// must not emit an update when it is false.
func mergeAttributes(next, prev []types.Attribute) ([]types.Attribute, bool) {
	merged := unionBy(next, prev, func(a types.Attribute) string { return a.Attribute })
	return merged, !sameSet(merged, prev,
		func(a types.Attribute) string { return a.Attribute },
		func(a types.Attribute) string { return a.Value })
}

// mergeDataValues unions candidate data values with a previous event's,
// candidate values winning on key collision.
func mergeDataValues(next, prev []types.DataValue) ([]types.DataValue, bool) {
	merged := unionBy(next, prev, func(d types.DataValue) string { return d.DataElement })
	return merged, !sameSet(merged, prev,
		func(d types.DataValue) string { return d.DataElement },
		func(d types.DataValue) string { return d.Value })
}

// unionBy keeps next's entries in order, then prev's whose key next does
// not carry. Within next, the first entry per key wins.
func unionBy[T any](next, prev []T, key func(T) string) []T {
	seen := make(map[string]struct{}, len(next)+len(prev))
	merged := make([]T, 0, len(next)+len(prev))
	for _, item := range next {
		k := key(item)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		merged = append(merged, item)
	}
	for _, item := range prev {
		k := key(item)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		merged = append(merged, item)
	}
	return merged
}

// sameSet compares two keyed value sets ignoring order.
func sameSet[T any](a, b []T, key, value func(T) string) bool {
	if len(a) != len(b) {
		return false
	}
	vals := make(map[string]string, len(b))
	for _, item := range b {
		vals[key(item)] = value(item)
	}
	for _, item := range a {
		v, ok := vals[key(item)]
		if !ok || v != value(item) {
			return false
		}
	}
	return true
}
