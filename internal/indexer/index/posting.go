package index

import (
	"slices"
	"sort"
)

// insertPosition adds position to the sorted slice if absent. Positions
// usually arrive in increasing order, so appending is checked first.
func insertPosition(positions []int, position int) ([]int, bool) {
	n := len(positions)
	if n == 0 || positions[n-1] < position {
		return append(positions, position), true
	}
	i, found := slices.BinarySearch(positions, position)
	if found {
		return positions, false
	}
	return slices.Insert(positions, i, position), true
}

// unionPositions merges two sorted, duplicate-free slices into a new one.
func unionPositions(a, b []int) []int {
	if len(a) == 0 {
		return slices.Clone(b)
	}
	merged := make([]int, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			merged = append(merged, a[i])
			i++
		case a[i] > b[j]:
			merged = append(merged, b[j])
			j++
		default:
			merged = append(merged, a[i])
			i++
			j++
		}
	}
	merged = append(merged, a[i:]...)
	return append(merged, b[j:]...)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// distinct returns the queries without duplicates, in ascending order.
func distinct(queries []string) []string {
	unique := slices.Clone(queries)
	slices.Sort(unique)
	return slices.Compact(unique)
}
