package graph

// TableID is the interned index of a table. IDs follow table name order, so
// they do not depend on the order nodes were supplied in.
type TableID int32

// JoinCost is the positive cost of traversing one join edge.
type JoinCost int

// Direction records which way an edge is traversed.
type Direction int8

const (
	// Forward traverses from_table to to_table.
	Forward Direction = iota
	// Reverse traverses to_table to from_table.
	Reverse
)

func (d Direction) String() string {
	if d == Reverse {
		return "reverse"
	}
	return "forward"
}

// MarshalText renders the direction by name in JSON output.
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Node is one table in the schema graph.
type Node struct {
	ID          TableID `json:"-"`
	TableName   string  `json:"table_name"`
	TableType   string  `json:"table_type,omitempty"`
	Description string  `json:"description,omitempty"`
}

// Edge is a join relationship between two tables.
type Edge struct {
	FromTable             string   `json:"from_table"`
	ToTable               string   `json:"to_table"`
	RelationshipType      string   `json:"relationship_type,omitempty"`
	JoinColumn            string   `json:"join_column"`
	Cost                  JoinCost `json:"weight"`
	OneWay                bool     `json:"one_way,omitempty"`
	JoinColumnDescription string   `json:"join_column_description,omitempty"`
	NaturalLanguageAlias  string   `json:"natural_language_alias,omitempty"`
	Example               string   `json:"example,omitempty"`
	Context               string   `json:"context,omitempty"`

	from, to TableID
	rank     int
}

// Neighbor is an edge leaving a table together with the direction it is
// traversed in.
type Neighbor struct {
	Edge      Edge      `json:"edge"`
	Direction Direction `json:"direction"`
	Table     string    `json:"table"`
}

// arc is one traversable direction of an edge in the adjacency list.
type arc struct {
	edge int // index into Graph.edges, equal to the edge's rank
	to   TableID
	dir  Direction
}

// Graph is an immutable schema graph. It is safe for concurrent reads.
type Graph struct {
	nodes []Node
	index map[string]TableID
	edges []Edge
	adj   [][]arc
}

// Stats summarises a graph.
type Stats struct {
	TotalNodes int `json:"total_nodes"`
	TotalEdges int `json:"total_edges"`
	OneWay     int `json:"one_way_edges"`
}
