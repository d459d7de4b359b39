package models

// Column describes one column of the warehouse result set.
type Column struct {
	Name string
	// DatabaseType is the driver-reported type name, e.g. DECIMAL or DATE.
	DatabaseType string
}

// SourceRecord is one row of the warehouse view. Columns is shared by every
// record of the same result set.
type SourceRecord struct {
	Columns []Column
	Values  []interface{}
}

// Lookup returns the value of the named column and whether the column exists.
func (r SourceRecord) Lookup(name string) (interface{}, Column, bool) {
	for i, c := range r.Columns {
		if c.Name == name {
			return r.Values[i], c, true
		}
	}
	return nil, Column{}, false
}

// TargetRow is a HubDB row create input. The remote assigns the row id.
type TargetRow struct {
	Values map[string]interface{} `json:"values"`
}

// ResultSet is the full, ordered result of the warehouse query. Columns is
// populated even when there are no records.
type ResultSet struct {
	Columns []Column
	Records []SourceRecord
}
