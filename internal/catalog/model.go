// Package catalog holds the read-only view descriptors handed over by the
// view engine and the naming rules for the columns that materialize joins.
package catalog

import (
	"github.com/tuannm99/novagrid/internal/column"
)

// Join links a view to another table or view. IDs are unique within the
// view but need not be contiguous or sorted.
type Join struct {
	ID     int    `json:"id" yaml:"id"`
	Table  string `json:"table" yaml:"table"`
	Column string `json:"column,omitempty" yaml:"column,omitempty"`
}

// ViewInfo describes a view: its base table and its ordered joins.
type ViewInfo struct {
	ID        string `json:"id" yaml:"id"`
	Name      string `json:"name,omitempty" yaml:"name,omitempty"`
	BaseTable string `json:"baseTable" yaml:"baseTable"`
	Joins     []Join `json:"joins,omitempty" yaml:"joins,omitempty"`
}

// TableMeta is the column set of one grid table.
type TableMeta struct {
	Name    string              `json:"name"`
	Columns []column.Serialized `json:"columns"`
}

// Join returns the join with the given id.
func (v ViewInfo) Join(id int) (Join, bool) {
	for _, j := range v.Joins {
		if j.ID == id {
			return j, true
		}
	}
	return Join{}, false
}

// HasColumn reports whether a column id is already used by the table.
func (t TableMeta) HasColumn(id string) bool {
	for _, c := range t.Columns {
		if c.ID == id {
			return true
		}
	}
	return false
}
