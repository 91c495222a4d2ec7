package serdes

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tuannm99/novagrid/internal/catalog"
	"github.com/tuannm99/novagrid/internal/column"
	"github.com/tuannm99/novagrid/internal/record"
	"github.com/tuannm99/novagrid/internal/sqlcodec"
)

// samplePayload builds a fresh payload on every call so tests can check
// that inputs are left alone.
func samplePayload() RawPayload {
	return RawPayload{
		View: &catalog.ViewInfo{
			ID:        "v1",
			BaseTable: "tasks",
			Joins:     []catalog.Join{{ID: 1, Table: "users", Column: "j#1_fk"}},
		},
		KeyColumn: "id",
		Columns: []ColumnDescriptor{
			{ID: "id", Name: "ID", Kind: column.KindStandard, ContentType: record.TypeInteger},
			{ID: "title", Name: "Title", Kind: column.KindStandard, ContentType: record.TypeText, Editable: true},
			{ID: "done", Name: "Done", Kind: column.KindStandard, ContentType: record.TypeBoolean, Editable: true},
			{ID: "meta", Name: "Meta", Kind: column.KindStandard, ContentType: record.TypeJSON, Editable: true},
			{ID: "j#1_fk", Name: "Owner", Kind: column.KindLink, ContentType: record.TypeInteger, Editable: true, JoinID: 1},
		},
		Rows: []RawRow{
			{"id": 10, "title": "write docs", "done": 1, "meta": map[string]any{"pinned": true}, "j#1_fk": 3},
			{"id": 11, "title": "review", "done": 0, "meta": nil, "j#1_fk": nil},
		},
	}
}

func TestDeserializeView(t *testing.T) {
	s := New(column.NewModel(column.WithWidth(120)))

	table, err := s.DeserializeView(samplePayload())
	require.NoError(t, err)
	require.Len(t, table.Columns, 5)
	require.Len(t, table.Rows, 2)
	require.Equal(t, "id", table.KeyColumn)
	require.Equal(t, "tasks", table.Meta().Name)

	t.Run("columns", func(t *testing.T) {
		id := table.Columns[0]
		require.Equal(t, column.KindStandard, id.Kind)
		require.False(t, id.Editable)
		require.Equal(t, 120, id.Width)
		require.True(t, id.Resizable)
		require.Equal(t, "integer", id.Formatter)

		done := table.Columns[2]
		require.Equal(t, "checkbox", done.Editor)

		link := table.Columns[4]
		require.Equal(t, column.KindLink, link.Kind)
		require.Equal(t, 1, link.JoinID)
		require.Equal(t, "link", link.Editor)
		require.False(t, link.Sortable)
	})

	t.Run("rows", func(t *testing.T) {
		first := table.Rows[0]
		require.Equal(t, 0, first.Index)
		require.Equal(t, 10, first.ID)
		require.Equal(t, true, first.Cells["done"])
		require.Equal(t, "write docs", first.Cells["title"])
		require.Equal(t, map[string]any{"pinned": true}, first.Cells["meta"])
		require.Equal(t, 3, first.Cells["j#1_fk"])

		second := table.Rows[1]
		require.Equal(t, 1, second.Index)
		require.Equal(t, 11, second.ID)
		require.Equal(t, false, second.Cells["done"])
		require.Contains(t, second.Cells, "meta")
		require.Nil(t, second.Cells["meta"])
	})
}

func TestDeserializeView_DoesNotMutateInput(t *testing.T) {
	raw := samplePayload()
	table, err := New(nil).DeserializeView(raw)
	require.NoError(t, err)
	require.Equal(t, samplePayload(), raw)

	table.View.Joins[0].Table = "changed"
	require.Equal(t, "users", raw.View.Joins[0].Table)
}

func TestRoundTrip(t *testing.T) {
	s := New(column.NewModel())

	raw := samplePayload()
	table, err := s.DeserializeView(raw)
	require.NoError(t, err)

	back, err := s.SerializeView(table)
	require.NoError(t, err)
	require.Equal(t, samplePayload(), back)

	again, err := s.DeserializeView(back)
	require.NoError(t, err)
	require.Equal(t, table, again)
}

func TestRoundTrip_FloatEncodedBooleans(t *testing.T) {
	s := New(nil)
	raw := samplePayload()
	raw.Rows[0]["done"] = 1.0
	raw.Rows[1]["done"] = 0.0

	table, err := s.DeserializeView(raw)
	require.NoError(t, err)
	back, err := s.SerializeView(table)
	require.NoError(t, err)
	require.Equal(t, 1, back.Rows[0]["done"])
	require.Equal(t, 0, back.Rows[1]["done"])

	again, err := s.DeserializeView(back)
	require.NoError(t, err)
	require.Equal(t, table, again)
}

func TestSerializeView_DropsClientFields(t *testing.T) {
	s := New(nil)
	table, err := s.DeserializeView(samplePayload())
	require.NoError(t, err)

	require.NoError(t, table.SetColumn("title", column.AttrWidth, 400))
	require.NoError(t, table.SetColumn("title", column.AttrFrozen, true))

	raw, err := s.SerializeView(table)
	require.NoError(t, err)
	for _, r := range raw.Rows {
		require.NotContains(t, r, RowIndexKey)
		require.NotContains(t, r, RowIDKey)
	}

	data, err := json.Marshal(raw.Columns)
	require.NoError(t, err)
	require.NotContains(t, string(data), "width")
	require.NotContains(t, string(data), "frozen")

	again, err := s.DeserializeView(raw)
	require.NoError(t, err)
	require.Equal(t, column.DefaultWidth, again.Columns[1].Width)
	require.False(t, again.Columns[1].Frozen)
}

func TestSerializeView_EncodesEditedBooleans(t *testing.T) {
	s := New(nil)
	table, err := s.DeserializeView(samplePayload())
	require.NoError(t, err)

	require.NoError(t, table.SetCell(1, "done", true))
	require.NoError(t, table.SetCell(0, "meta", map[string]any{"flag": false}))

	raw, err := s.SerializeView(table)
	require.NoError(t, err)
	require.Equal(t, 1, raw.Rows[1]["done"])
	// json documents are stored as they are
	require.Equal(t, map[string]any{"flag": false}, raw.Rows[0]["meta"])
}

func TestDeserializeView_Errors(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(p *RawPayload)
		want   error
	}{
		{"unknown kind", func(p *RawPayload) { p.Columns[1].Kind = "formula" }, column.ErrUnknownKind},
		{"empty kind", func(p *RawPayload) { p.Columns[1].Kind = "" }, column.ErrUnknownKind},
		{"unknown content type", func(p *RawPayload) { p.Columns[1].ContentType = "blob" }, record.ErrUnknownContentType},
		{"empty column id", func(p *RawPayload) { p.Columns[1].ID = "" }, ErrBadColumn},
		{"reserved column id", func(p *RawPayload) { p.Columns[1].ID = RowIndexKey }, ErrBadColumn},
		{"duplicate column", func(p *RawPayload) { p.Columns[1].ID = "id" }, ErrDuplicateColumn},
		{"key column missing", func(p *RawPayload) { p.KeyColumn = "nope" }, ErrBadColumn},
		{"link without join id", func(p *RawPayload) { p.Columns[4].JoinID = 0 }, column.ErrJoinRequired},
		{"link to unknown join", func(p *RawPayload) { p.Columns[4].JoinID = 9 }, ErrUnknownJoin},
		{"missing cell", func(p *RawPayload) { delete(p.Rows[1], "title") }, ErrMissingCell},
		{"unknown cell", func(p *RawPayload) { p.Rows[0]["extra"] = 1 }, ErrUnknownCell},
		{"boolean out of range", func(p *RawPayload) { p.Rows[0]["done"] = 2 }, sqlcodec.ErrNotBoolean},
		{"boolean as word", func(p *RawPayload) { p.Rows[0]["done"] = "yes" }, ErrCellType},
		{"text holding a number", func(p *RawPayload) { p.Rows[0]["title"] = 5 }, ErrCellType},
		{"integer holding a fraction", func(p *RawPayload) { p.Rows[0]["id"] = 1.5 }, ErrCellType},
		{"row key out of place", func(p *RawPayload) { p.Rows[1][RowIndexKey] = 0 }, ErrRowKey},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p := samplePayload()
			c.mutate(&p)
			_, err := New(nil).DeserializeView(p)
			require.ErrorIs(t, err, c.want)
		})
	}
}

func TestDeserializeView_AcceptsOwnRowKeys(t *testing.T) {
	p := samplePayload()
	p.Rows[0][RowIndexKey] = 0
	p.Rows[1][RowIndexKey] = 1
	p.Rows[1][RowIDKey] = 11

	table, err := New(nil).DeserializeView(p)
	require.NoError(t, err)
	require.NotContains(t, table.Rows[1].Cells, RowIndexKey)
	require.NotContains(t, table.Rows[1].Cells, RowIDKey)
}

func TestDeserializeView_WithoutViewOrKey(t *testing.T) {
	p := samplePayload()
	p.View = nil
	p.KeyColumn = ""
	p.Columns[4].JoinID = 7

	table, err := New(nil).DeserializeView(p)
	require.NoError(t, err)
	require.Nil(t, table.Rows[0].ID)
	require.Empty(t, table.Meta().Name)
}

func TestDeserializeView_Empty(t *testing.T) {
	table, err := New(nil).DeserializeView(RawPayload{})
	require.NoError(t, err)
	require.Empty(t, table.Columns)
	require.Empty(t, table.Rows)

	raw, err := New(nil).SerializeView(table)
	require.NoError(t, err)
	require.Empty(t, raw.Columns)
	require.Empty(t, raw.Rows)
}

func TestRow_MarshalJSON(t *testing.T) {
	table, err := New(nil).DeserializeView(samplePayload())
	require.NoError(t, err)

	data, err := json.Marshal(table.Rows[0])
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	require.Equal(t, float64(0), got[RowIndexKey])
	require.Equal(t, float64(10), got[RowIDKey])
	require.Equal(t, true, got["done"])
	require.Equal(t, "write docs", got["title"])

	noID, err := json.Marshal(Row{Index: 3, Cells: map[string]any{"a": 1}})
	require.NoError(t, err)
	require.JSONEq(t, `{"__rowIndex__":3,"a":1}`, string(noID))
}

func TestTable_SetCell(t *testing.T) {
	newTable := func() *Table {
		table, err := New(nil).DeserializeView(samplePayload())
		require.NoError(t, err)
		return table
	}

	t.Run("boolean from store encoding", func(t *testing.T) {
		table := newTable()
		require.NoError(t, table.SetCell(1, "done", 1))
		require.Equal(t, true, table.Rows[1].Cells["done"])
	})

	t.Run("type mismatch", func(t *testing.T) {
		table := newTable()
		require.ErrorIs(t, table.SetCell(0, "done", "maybe"), ErrCellType)
		require.ErrorIs(t, table.SetCell(0, "title", 3), ErrCellType)
		require.Equal(t, true, table.Rows[0].Cells["done"])
	})

	t.Run("read-only column", func(t *testing.T) {
		table := newTable()
		require.ErrorIs(t, table.SetCell(0, "id", 99), ErrNotEditable)
	})

	t.Run("key column updates row id", func(t *testing.T) {
		table := newTable()
		require.NoError(t, table.SetColumn("id", column.AttrEditable, true))
		require.NoError(t, table.SetCell(0, "id", 99))
		require.Equal(t, 99, table.Rows[0].ID)
	})

	t.Run("bad address", func(t *testing.T) {
		table := newTable()
		require.ErrorIs(t, table.SetCell(5, "title", "x"), ErrNoRow)
		require.ErrorIs(t, table.SetCell(-1, "title", "x"), ErrNoRow)
		require.ErrorIs(t, table.SetCell(0, "nope", "x"), ErrUnknownCell)
	})
}

func TestTable_AddColumn(t *testing.T) {
	m := column.NewModel()
	s := New(m)
	table, err := s.DeserializeView(samplePayload())
	require.NoError(t, err)

	col, err := m.NewStandard(column.StandardSpecifier{Name: "Title", ContentType: record.TypeText, Editable: true}, table.Columns)
	require.NoError(t, err)
	require.Equal(t, "title_2", col.ID)
	require.NoError(t, table.AddColumn(col))
	for _, r := range table.Rows {
		require.Contains(t, r.Cells, "title_2")
	}
	require.ErrorIs(t, table.AddColumn(col), ErrDuplicateColumn)
	require.ErrorIs(t, table.AddColumn(column.Serialized{ID: "x", Kind: "odd"}), column.ErrUnknownKind)

	meta := table.Meta()
	link, _, err := catalog.AddLink(m, table.View, meta, catalog.LinkRequest{Table: "projects"})
	require.NoError(t, err)
	require.Equal(t, "j#2_fk", link.ID)
	require.NoError(t, table.AddColumn(link))

	raw, err := s.SerializeView(table)
	require.NoError(t, err)
	require.Len(t, raw.Columns, 7)
	require.Len(t, raw.View.Joins, 2)

	again, err := s.DeserializeView(raw)
	require.NoError(t, err)
	require.Len(t, again.Columns, 7)
}

func TestTable_AddColumn_RowKeyNames(t *testing.T) {
	m := column.NewModel()
	s := New(m)
	table, err := s.DeserializeView(samplePayload())
	require.NoError(t, err)

	for _, name := range []string{RowIDKey, RowIndexKey} {
		col, err := m.NewStandard(column.StandardSpecifier{Name: name, ContentType: record.TypeText, Editable: true}, table.Columns)
		require.NoError(t, err)
		require.False(t, record.IsReservedKey(col.ID), col.ID)
		require.NoError(t, table.AddColumn(col))
	}
	_, ok := table.Column("__rowid___2")
	require.True(t, ok)
	_, ok = table.Column("__rowindex___2")
	require.True(t, ok)

	raw, err := s.SerializeView(table)
	require.NoError(t, err)
	again, err := s.DeserializeView(raw)
	require.NoError(t, err)
	require.Equal(t, table.Columns, again.Columns)

	for _, id := range []string{RowIDKey, "__ROWINDEX__", ""} {
		err := table.AddColumn(column.Serialized{ID: id, Kind: column.KindStandard, ContentType: record.TypeText})
		require.ErrorIs(t, err, ErrBadColumn, id)
	}
}

func TestDecodeRow_RowIndex(t *testing.T) {
	types := TypeMap{"a": record.TypeInteger}

	for _, v := range []any{1, int64(1), uint8(1), 1.0, json.Number("1")} {
		cells, err := DecodeRow(1, RawRow{"a": 5, RowIndexKey: v}, types)
		require.NoError(t, err, "%T %v", v, v)
		require.Equal(t, map[string]any{"a": 5}, cells)
	}

	for _, v := range []any{true, "1", 1.5, json.Number("1.5"), 2, nil} {
		_, err := DecodeRow(1, RawRow{"a": 5, RowIndexKey: v}, types)
		require.ErrorIs(t, err, ErrRowKey, "%T %v", v, v)
	}

	_, err := DecodeRow(0, RawRow{"a": 5, RowIndexKey: false}, types)
	require.ErrorIs(t, err, ErrRowKey)
	_, err = DecodeRow(0, RawRow{"a": 5, RowIndexKey: "0"}, types)
	require.ErrorIs(t, err, ErrRowKey)
}

func TestTable_ChangeColumnKind(t *testing.T) {
	table, err := New(nil).DeserializeView(samplePayload())
	require.NoError(t, err)

	require.ErrorIs(t, table.ChangeColumnKind("id", column.Link{JoinID: 2}), ErrUnknownJoin)
	require.ErrorIs(t, table.ChangeColumnKind("nope", column.Standard{}), ErrUnknownCell)

	require.NoError(t, table.ChangeColumnKind("id", column.Link{JoinID: 1}))
	i, ok := table.Column("id")
	require.True(t, ok)
	require.Equal(t, column.KindLink, table.Columns[i].Kind)

	require.NoError(t, table.ChangeColumnKind("j#1_fk", column.Standard{}))
	i, _ = table.Column("j#1_fk")
	require.Zero(t, table.Columns[i].JoinID)
}

func TestSerializeView_Errors(t *testing.T) {
	s := New(nil)

	t.Run("unknown kind", func(t *testing.T) {
		table, err := s.DeserializeView(samplePayload())
		require.NoError(t, err)
		table.Columns[0].Kind = "mystery"
		_, err = s.SerializeView(table)
		require.ErrorIs(t, err, column.ErrUnknownKind)
	})

	t.Run("missing cell", func(t *testing.T) {
		table, err := s.DeserializeView(samplePayload())
		require.NoError(t, err)
		delete(table.Rows[0].Cells, "title")
		_, err = s.SerializeView(table)
		require.ErrorIs(t, err, ErrMissingCell)
	})

	t.Run("unknown cell", func(t *testing.T) {
		table, err := s.DeserializeView(samplePayload())
		require.NoError(t, err)
		table.Rows[0].Cells["ghost"] = 1
		_, err = s.SerializeView(table)
		require.ErrorIs(t, err, ErrUnknownCell)
	})
}

func TestDeserializeView_Concurrent(t *testing.T) {
	s := New(nil)
	raw := samplePayload()
	want, err := s.DeserializeView(raw)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]*Table, 16)
	errs := make([]error, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = s.DeserializeView(raw)
		}(i)
	}
	wg.Wait()

	for i := range results {
		require.NoError(t, errs[i])
		require.Equal(t, want, results[i])
	}
}
