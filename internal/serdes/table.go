// Package serdes converts view payloads from the view engine into the
// grid's table model and back.
package serdes

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tuannm99/novagrid/internal/catalog"
	"github.com/tuannm99/novagrid/internal/column"
	"github.com/tuannm99/novagrid/internal/record"
)

const (
	// RowIndexKey carries the grid identity of a row.
	RowIndexKey = record.RowIndexKey
	// RowIDKey carries the business identifier of a row, for display.
	RowIDKey = record.RowIDKey
)

var (
	ErrMalformedPayload = errors.New("serdes: malformed payload")
	ErrBadColumn        = errors.New("serdes: bad column descriptor")
	ErrDuplicateColumn  = errors.New("serdes: duplicate column")
	ErrUnknownJoin      = errors.New("serdes: link column references an unknown join")
	ErrMissingCell      = errors.New("serdes: row is missing a column")
	ErrUnknownCell      = errors.New("serdes: row has a value for an unknown column")
	ErrCellType         = errors.New("serdes: cell does not match its column type")
	ErrRowKey           = errors.New("serdes: row key does not match row position")
	ErrNoRow            = errors.New("serdes: row out of range")
	ErrNotEditable      = errors.New("serdes: column is not editable")
)

// Row is one grid row.
type Row struct {
	Index int
	// ID is the value of the payload's key column, nil without one.
	ID    any
	Cells map[string]any
}

// MarshalJSON flattens the row into the object the grid consumes.
func (r Row) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Cells)+2)
	for k, v := range r.Cells {
		out[k] = v
	}
	out[RowIndexKey] = r.Index
	if r.ID != nil {
		out[RowIDKey] = r.ID
	}
	return json.Marshal(out)
}

// Table is the grid-ready form of a view.
type Table struct {
	View      *catalog.ViewInfo   `json:"view,omitempty"`
	KeyColumn string              `json:"keyColumn,omitempty"`
	Columns   []column.Serialized `json:"columns"`
	Rows      []Row               `json:"rows"`
}

// Column returns the position of the column with the given id.
func (t *Table) Column(id string) (int, bool) {
	for i := range t.Columns {
		if t.Columns[i].ID == id {
			return i, true
		}
	}
	return -1, false
}

func (t *Table) TypeMap() TypeMap {
	tm := make(TypeMap, len(t.Columns))
	for _, c := range t.Columns {
		tm[c.ID] = c.ContentType
	}
	return tm
}

// Meta returns the column set of the table.
func (t *Table) Meta() catalog.TableMeta {
	meta := catalog.TableMeta{Columns: t.Columns}
	if t.View != nil {
		meta.Name = t.View.BaseTable
	}
	return meta
}

// AddColumn appends a column and gives every row an empty cell for it.
func (t *Table) AddColumn(col column.Serialized) error {
	if col.ID == "" {
		return fmt.Errorf("%w: empty id", ErrBadColumn)
	}
	if record.IsReservedKey(col.ID) {
		return fmt.Errorf("%w: %q is reserved", ErrBadColumn, col.ID)
	}
	if _, ok := t.Column(col.ID); ok {
		return fmt.Errorf("%w: %q", ErrDuplicateColumn, col.ID)
	}
	if _, err := column.KindOf(col); err != nil {
		return err
	}
	t.Columns = append(t.Columns, col)
	for i := range t.Rows {
		t.Rows[i].Cells[col.ID] = nil
	}
	return nil
}

// SetColumn writes a plain attribute of a column.
func (t *Table) SetColumn(id string, attr column.Attribute, value any) error {
	i, ok := t.Column(id)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCell, id)
	}
	return column.Set(&t.Columns[i], attr, value)
}

// ChangeColumnKind switches a column's kind. A link must point at a join of
// the table's view when the view is known.
func (t *Table) ChangeColumnKind(id string, kind column.Kind) error {
	i, ok := t.Column(id)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCell, id)
	}
	if link, ok := kind.(column.Link); ok && t.View != nil {
		if _, found := t.View.Join(link.JoinID); !found {
			return fmt.Errorf("%w: join %d on column %q", ErrUnknownJoin, link.JoinID, id)
		}
	}
	return column.ChangeKind(&t.Columns[i], kind)
}

// SetCell edits one cell. value is checked against the column type the same
// way stored values are.
func (t *Table) SetCell(row int, id string, value any) error {
	if row < 0 || row >= len(t.Rows) {
		return fmt.Errorf("%w: %d", ErrNoRow, row)
	}
	i, ok := t.Column(id)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCell, id)
	}
	col := t.Columns[i]
	if !col.Editable {
		return fmt.Errorf("%w: %q", ErrNotEditable, id)
	}
	v, err := decodeCell(col.ContentType, value)
	if err != nil {
		return fmt.Errorf("row %d column %q: %w", row, id, err)
	}
	t.Rows[row].Cells[id] = v
	if id == t.KeyColumn {
		t.Rows[row].ID = v
	}
	return nil
}
