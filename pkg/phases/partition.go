// Package phases handles deduplication and partitioning of MPDS phase
// identifiers. The facet endpoint accepts at most a fixed number of
// phase ids per request, so oversized filters are split into several
// sub-batches and retrieved one after another.
package phases

import (
	"sort"
	"strconv"
	"strings"
)

// Partition deduplicates ids and splits them into batches of at most
// maxPerBatch entries. A filter that fits the limit comes back as a
// single batch, possibly empty (empty means "no phase filter").
//
// Ids are normalized to non-negative integers and sorted ascending, so
// repeated calls with the same filter produce identical batches.
func Partition(ids []int, maxPerBatch int) [][]int {
	unique := Dedup(ids)

	if maxPerBatch <= 0 || len(unique) <= maxPerBatch {
		return [][]int{unique}
	}

	// Roughly equal chunks: the first len%n chunks carry one extra id.
	nchunks := (len(unique) + maxPerBatch - 1) / maxPerBatch
	base := len(unique) / nchunks
	extra := len(unique) % nchunks

	batches := make([][]int, 0, nchunks)
	offset := 0
	for i := 0; i < nchunks; i++ {
		size := base
		if i < extra {
			size++
		}
		batches = append(batches, unique[offset:offset+size])
		offset += size
	}

	return batches
}

// Dedup returns the set of ids, normalized to non-negative integers
// and sorted ascending.
func Dedup(ids []int) []int {
	seen := make(map[int]struct{}, len(ids))
	unique := make([]int, 0, len(ids))
	for _, id := range ids {
		if id < 0 {
			id = 0
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	sort.Ints(unique)
	return unique
}

// Join renders a batch as the comma-joined form the facet endpoint
// expects in the "phases" query parameter. An empty batch renders as
// the empty string.
func Join(batch []int) string {
	if len(batch) == 0 {
		return ""
	}

	parts := make([]string, len(batch))
	for i, id := range batch {
		if id < 0 {
			id = 0
		}
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}
