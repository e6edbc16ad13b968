// Package schema defines the simplified data model extracted from a Power BI
// template and the rules for deriving it from the raw DataModelSchema document.
//
// Every optional field of the raw document defaults to its zero value when
// absent. A missing table name is tolerated: the table still renders with a
// blank identity, but relationships can no longer match it by name.
package schema

// Model is the reduced representation of a template's data model. It is built
// once per document and is not modified afterwards.
type Model struct {
	Tables        []Table        `json:"tables"`
	Relationships []Relationship `json:"relationships"`
}

// Table is a single table with its columns and measures, in document order.
type Table struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	// Source is a human readable label derived from the first partition.
	Source   string    `json:"source"`
	Columns  []Column  `json:"columns"`
	Measures []Measure `json:"measures"`
}

// Column is a table column.
type Column struct {
	Name        string `json:"name"`
	DataType    string `json:"dataType"`
	Description string `json:"description"`
}

// Measure is a calculated measure. Expression holds the DAX text; multi-line
// expressions stored as arrays are joined with newlines.
type Measure struct {
	Name        string `json:"name"`
	Expression  string `json:"expression"`
	Description string `json:"description"`
}

// Relationship joins a column of one table to a column of another. The names
// are free text and are not checked against the table list.
type Relationship struct {
	FromTable  string `json:"fromTable"`
	FromColumn string `json:"fromColumn"`
	ToTable    string `json:"toTable"`
	ToColumn   string `json:"toColumn"`
}

// Stats summarizes the size of a model.
type Stats struct {
	Tables        int `json:"tables"`
	Columns       int `json:"columns"`
	Measures      int `json:"measures"`
	Relationships int `json:"relationships"`
}

// RelationshipsFor returns every relationship in which the named table is
// either endpoint, in document order. Matching is by name only.
func (m *Model) RelationshipsFor(name string) []Relationship {
	var out []Relationship
	for _, r := range m.Relationships {
		if r.FromTable == name || r.ToTable == name {
			out = append(out, r)
		}
	}
	return out
}

// Stats counts the tables, columns, measures and relationships in m.
func (m *Model) Stats() Stats {
	s := Stats{
		Tables:        len(m.Tables),
		Relationships: len(m.Relationships),
	}
	for _, t := range m.Tables {
		s.Columns += len(t.Columns)
		s.Measures += len(t.Measures)
	}
	return s
}
