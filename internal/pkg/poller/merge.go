package poller

import "sort"

// Merge folds a fresh server snapshot into the current list. Items are matched by key: a
// snapshot item replaces the current item with the same key, unseen keys are appended, and
// nothing already in current is dropped. With a non-nil less the result is stably sorted.
//
// Items with an empty key cannot be matched, so every one of them is kept. When the snapshot
// carries unkeyed items they supersede the unkeyed items of current, otherwise repeated polls
// would pile up copies.
func Merge[T any](current, snapshot []T, key func(T) string, less func(a, b T) bool) []T {
	out := make([]T, 0, len(current)+len(snapshot))
	index := make(map[string]int, len(current)+len(snapshot))

	snapshotUnkeyed := false
	for _, item := range snapshot {
		if key(item) == "" {
			snapshotUnkeyed = true
			break
		}
	}

	add := func(item T, fromSnapshot bool) {
		k := key(item)
		if k == "" {
			if fromSnapshot || !snapshotUnkeyed {
				out = append(out, item)
			}
			return
		}
		if i, ok := index[k]; ok {
			out[i] = item
			return
		}
		index[k] = len(out)
		out = append(out, item)
	}
	for _, item := range current {
		add(item, false)
	}
	for _, item := range snapshot {
		add(item, true)
	}

	if less != nil {
		sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	}
	return out
}
