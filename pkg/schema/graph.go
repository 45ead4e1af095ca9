package schema

// NodeKind distinguishes table nodes from column nodes.
type NodeKind string

const (
	NodeTable  NodeKind = "table"
	NodeColumn NodeKind = "column"
)

// EdgeKind distinguishes table-to-column membership from table relationships.
type EdgeKind string

const (
	EdgeHasColumn    EdgeKind = "has_column"
	EdgeRelationship EdgeKind = "relationship"
)

// Node is a vertex of the schema graph. Column node IDs are "table.column".
type Node struct {
	ID       string   `json:"id"`
	Kind     NodeKind `json:"kind"`
	Table    string   `json:"table"`
	DataType string   `json:"data_type,omitempty"`
	// External marks a table only known as a relationship target.
	External bool `json:"external,omitempty"`
}

// Edge is an undirected connection between two nodes.
type Edge struct {
	From string   `json:"from"`
	To   string   `json:"to"`
	Kind EdgeKind `json:"kind"`
}

// Graph is the renderer-neutral structure of a schema.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// BuildGraph lays out a table node per table, a column node per column joined
// to its table, and one relationship edge per referenced table pair.
// Relationships without a referenced table are skipped. Output order is
// deterministic.
func BuildGraph(s *Schema) Graph {
	g := Graph{Nodes: []Node{}, Edges: []Edge{}}
	if s == nil {
		return g
	}

	seenNodes := make(map[string]bool)
	seenPairs := make(map[[2]string]bool)

	for _, tableName := range s.TableNames() {
		table := s.Tables[tableName]
		g.Nodes = append(g.Nodes, Node{ID: tableName, Kind: NodeTable, Table: tableName})
		seenNodes[tableName] = true

		for _, colName := range table.ColumnNames() {
			id := tableName + "." + colName
			g.Nodes = append(g.Nodes, Node{
				ID:       id,
				Kind:     NodeColumn,
				Table:    tableName,
				DataType: table.Columns[colName].Type,
			})
			g.Edges = append(g.Edges, Edge{From: tableName, To: id, Kind: EdgeHasColumn})
		}
	}

	var external []string
	for _, tableName := range s.TableNames() {
		for _, rel := range s.Tables[tableName].Relationships {
			if rel.ReferencedTable == "" {
				continue
			}
			pair := [2]string{tableName, rel.ReferencedTable}
			if pair[0] > pair[1] {
				pair[0], pair[1] = pair[1], pair[0]
			}
			if seenPairs[pair] {
				continue
			}
			seenPairs[pair] = true
			g.Edges = append(g.Edges, Edge{From: tableName, To: rel.ReferencedTable, Kind: EdgeRelationship})

			if !seenNodes[rel.ReferencedTable] {
				seenNodes[rel.ReferencedTable] = true
				external = append(external, rel.ReferencedTable)
			}
		}
	}
	for _, name := range external {
		g.Nodes = append(g.Nodes, Node{ID: name, Kind: NodeTable, Table: name, External: true})
	}

	return g
}
