package graph

import "strings"

// isOneWay reports whether a relationship type forbids reverse traversal.
func isOneWay(relationshipType string) bool {
	return oneWayRelationships[strings.ToLower(strings.TrimSpace(relationshipType))]
}

// compareRanks compares two edge sequences lexicographically by rank.
// A proper prefix sorts first.
func compareRanks(a, b []int) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return 0
}

// PathCost sums the join cost of a path.
func PathCost(path []Edge) JoinCost {
	var total JoinCost
	for _, e := range path {
		total += e.Cost
	}
	return total
}
