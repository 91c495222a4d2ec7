package serdes

import (
	"fmt"

	"github.com/spf13/cast"

	"github.com/tuannm99/novagrid/internal/catalog"
	"github.com/tuannm99/novagrid/internal/column"
	"github.com/tuannm99/novagrid/internal/record"
)

// SerDes moves view data between the view engine's payload and the grid.
// It keeps no state besides the column model, so one value serves
// concurrent requests.
type SerDes struct {
	model *column.Model
}

func New(model *column.Model) *SerDes {
	if model == nil {
		model = column.NewModel()
	}
	return &SerDes{model: model}
}

// DeserializeView turns a raw payload into a grid table. Columns get the
// model defaults and their kind's editor and formatter; cells are decoded
// by the column types; rows get their grid key from their position.
// raw is not modified.
func (s *SerDes) DeserializeView(raw RawPayload) (*Table, error) {
	cols, err := s.deserializeColumns(raw)
	if err != nil {
		return nil, err
	}
	types := TypeMapOf(raw.Columns)

	if raw.KeyColumn != "" {
		if _, ok := types[raw.KeyColumn]; !ok {
			return nil, fmt.Errorf("%w: key column %q is not a column", ErrBadColumn, raw.KeyColumn)
		}
	}

	rows := make([]Row, len(raw.Rows))
	for i, rr := range raw.Rows {
		cells, err := DecodeRow(i, rr, types)
		if err != nil {
			return nil, err
		}
		rows[i] = Row{Index: i, Cells: cells}
		if raw.KeyColumn != "" {
			rows[i].ID = cells[raw.KeyColumn]
		}
	}

	return &Table{
		View:      cloneView(raw.View),
		KeyColumn: raw.KeyColumn,
		Columns:   cols,
		Rows:      rows,
	}, nil
}

func (s *SerDes) deserializeColumns(raw RawPayload) ([]column.Serialized, error) {
	cols := make([]column.Serialized, 0, len(raw.Columns))
	seen := make(map[string]struct{}, len(raw.Columns))
	for _, d := range raw.Columns {
		if d.ID == "" {
			return nil, fmt.Errorf("%w: empty id", ErrBadColumn)
		}
		if record.IsReservedKey(d.ID) {
			return nil, fmt.Errorf("%w: %q is reserved", ErrBadColumn, d.ID)
		}
		if _, dup := seen[d.ID]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, d.ID)
		}
		seen[d.ID] = struct{}{}

		col := s.model.Defaults()
		col.ID = d.ID
		col.Name = d.Name
		col.Kind = d.Kind
		col.ContentType = d.ContentType
		col.Editable = d.Editable
		col.JoinID = d.JoinID
		if err := column.Resolve(&col); err != nil {
			return nil, err
		}
		if col.Kind == column.KindLink && raw.View != nil {
			if _, ok := raw.View.Join(col.JoinID); !ok {
				return nil, fmt.Errorf("%w: join %d on column %q", ErrUnknownJoin, col.JoinID, col.ID)
			}
		}
		cols = append(cols, col)
	}
	return cols, nil
}

// DecodeRow checks one raw row against the column types and returns its
// decoded cells. index is the row's position in the payload.
func DecodeRow(index int, rr RawRow, types TypeMap) (map[string]any, error) {
	cells := make(map[string]any, len(types))
	for id, v := range rr {
		switch id {
		case RowIndexKey:
			if !isInteger(v) {
				return nil, fmt.Errorf("%w: row %d carries %v", ErrRowKey, index, v)
			}
			n, err := cast.ToInt64E(v)
			if err != nil || n != int64(index) {
				return nil, fmt.Errorf("%w: row %d carries %v", ErrRowKey, index, v)
			}
			continue
		case RowIDKey:
			// derived from the key column
			continue
		}
		ct, ok := types[id]
		if !ok {
			return nil, fmt.Errorf("%w: row %d column %q", ErrUnknownCell, index, id)
		}
		decoded, err := decodeCell(ct, v)
		if err != nil {
			return nil, fmt.Errorf("row %d column %q: %w", index, id, err)
		}
		cells[id] = decoded
	}
	for id := range types {
		if _, ok := cells[id]; !ok {
			return nil, fmt.Errorf("%w: row %d column %q", ErrMissingCell, index, id)
		}
	}
	return cells, nil
}

// SerializeView is the inverse of DeserializeView for the write path:
// booleans go back to 0/1, and the row keys and rendering attributes are
// dropped. t is not modified.
func (s *SerDes) SerializeView(t *Table) (RawPayload, error) {
	out := RawPayload{
		View:      cloneView(t.View),
		KeyColumn: t.KeyColumn,
		Columns:   make([]ColumnDescriptor, 0, len(t.Columns)),
		Rows:      make([]RawRow, 0, len(t.Rows)),
	}
	for _, c := range t.Columns {
		if _, err := column.KindOf(c); err != nil {
			return RawPayload{}, err
		}
		out.Columns = append(out.Columns, ColumnDescriptor{
			ID:          c.ID,
			Name:        c.Name,
			Kind:        c.Kind,
			ContentType: c.ContentType,
			Editable:    c.Editable,
			JoinID:      c.JoinID,
		})
	}

	types := t.TypeMap()
	for _, r := range t.Rows {
		rr := make(RawRow, len(t.Columns))
		for id, v := range r.Cells {
			ct, ok := types[id]
			if !ok {
				return RawPayload{}, fmt.Errorf("%w: row %d column %q", ErrUnknownCell, r.Index, id)
			}
			rr[id] = encodeCell(ct, v)
		}
		for _, c := range t.Columns {
			if _, ok := r.Cells[c.ID]; !ok {
				return RawPayload{}, fmt.Errorf("%w: row %d column %q", ErrMissingCell, r.Index, c.ID)
			}
		}
		out.Rows = append(out.Rows, rr)
	}
	return out, nil
}

func cloneView(v *catalog.ViewInfo) *catalog.ViewInfo {
	if v == nil {
		return nil
	}
	c := *v
	if v.Joins != nil {
		c.Joins = append([]catalog.Join(nil), v.Joins...)
	}
	return &c
}
