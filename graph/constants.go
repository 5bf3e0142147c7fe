package graph

const (
	// DefaultJoinCost applies to edges seeded without a weight.
	DefaultJoinCost JoinCost = 1
)

// oneWayRelationships are relationship types that may only be traversed
// from from_table to to_table. Matched case-insensitively.
var oneWayRelationships = map[string]bool{
	"depends_on": true,
	"one_way":    true,
	"directed":   true,
}
