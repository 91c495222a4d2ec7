package sqlcodec

import (
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestToSQL_Scalars(t *testing.T) {
	require.Equal(t, 1, ToSQL(true))
	require.Equal(t, 0, ToSQL(false))

	require.Equal(t, 42, ToSQL(42))
	require.Equal(t, 3.5, ToSQL(3.5))
	require.Equal(t, "true", ToSQL("true"))
	require.Nil(t, ToSQL(nil))

	type flag bool
	require.Equal(t, 1, ToSQL(flag(true)))
}

func TestToSQL_NestedMaps(t *testing.T) {
	in := map[string]any{
		"active": true,
		"name":   "alice",
		"score":  7,
		"prefs": map[string]any{
			"dark":  false,
			"fonts": map[string]any{"mono": true, "size": 12},
		},
		"missing": nil,
	}

	out := ToSQL(in)
	require.Equal(t, map[string]any{
		"active": 1,
		"name":   "alice",
		"score":  7,
		"prefs": map[string]any{
			"dark":  0,
			"fonts": map[string]any{"mono": 1, "size": 12},
		},
		"missing": nil,
	}, out)

	// input untouched
	require.Equal(t, true, in["active"])
	require.Equal(t, false, in["prefs"].(map[string]any)["dark"])
}

func TestToSQL_TypedMap(t *testing.T) {
	out := ToSQL(map[string]bool{"a": true, "b": false})
	require.Equal(t, map[string]any{"a": 1, "b": 0}, out)
}

func TestToSQL_ArraysAreNotTraversed(t *testing.T) {
	list := []any{true, false, map[string]any{"x": true}}
	out := ToSQL(list)
	require.Equal(t, []any{true, false, map[string]any{"x": true}}, out)

	arr := [2]bool{true, false}
	require.Equal(t, arr, ToSQL(arr))

	nested := ToSQL(map[string]any{"tags": []bool{true}})
	require.Equal(t, map[string]any{"tags": []bool{true}}, nested)
}

type address struct {
	City    string `json:"city"`
	Primary bool   `json:"primary"`
}

type Audit struct {
	Reviewed bool `json:"reviewed"`
}

type person struct {
	Audit
	Name     string         `json:"name"`
	Active   bool           `json:"active,omitempty"`
	Address  address        `json:"address"`
	Home     *address       `json:"home"`
	Created  time.Time      `json:"created"`
	Note     sql.NullString `json:"note"`
	Secret   bool           `json:"-"`
	internal bool
}

func TestToSQL_Structs(t *testing.T) {
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	p := person{
		Audit:   Audit{Reviewed: true},
		Name:    "bob",
		Active:  true,
		Address: address{City: "Hanoi", Primary: true},
		Created: created,
		Note:    sql.NullString{String: "x", Valid: true},
		Secret:  true,
	}

	out, err := ToSQLMap(p)
	require.NoError(t, err)
	require.Equal(t, map[string]any{
		"reviewed": 1,
		"name":     "bob",
		"active":   1,
		"address":  map[string]any{"city": "Hanoi", "primary": 1},
		"home":     (*address)(nil),
		"created":  created,
		"note":     sql.NullString{String: "x", Valid: true},
	}, out)

	viaPtr, err := ToSQLMap(&p)
	require.NoError(t, err)
	require.Equal(t, out, viaPtr)
}

type Base struct {
	ID   int  `json:"id"`
	Flag bool `json:"flag"`
}

type Extra struct {
	Flag  bool `json:"flag"`
	Note  string
	Label string
}

type Wrapped struct{ Base }

type Other struct {
	Note  string
	Title string `json:"Label"`
}

func TestToSQL_EmbeddedFieldNames(t *testing.T) {
	t.Run("outer field wins whatever the order", func(t *testing.T) {
		type outerLast struct {
			Base
			ID string `json:"id"`
		}
		type outerFirst struct {
			ID string `json:"id"`
			Base
		}
		want := map[string]any{"id": "outer", "flag": 1}

		got, err := ToSQLMap(outerLast{Base: Base{ID: 1, Flag: true}, ID: "outer"})
		require.NoError(t, err)
		require.Equal(t, want, got)

		got, err = ToSQLMap(outerFirst{ID: "outer", Base: Base{ID: 1, Flag: true}})
		require.NoError(t, err)
		require.Equal(t, want, got)
	})

	t.Run("shallower embedded field wins", func(t *testing.T) {
		type nested struct {
			Wrapped
			Extra
			Deep struct{ Base } `json:"deep"`
		}
		got, err := ToSQLMap(nested{Wrapped: Wrapped{Base{ID: 2, Flag: true}}, Extra: Extra{Flag: false}})
		require.NoError(t, err)
		require.Equal(t, 0, got["flag"])
		require.Equal(t, 2, got["id"])
		require.Equal(t, map[string]any{"id": 0, "flag": 0}, got["deep"])
	})

	t.Run("ties at the same depth", func(t *testing.T) {
		type tied struct {
			Extra
			Other
		}
		v := tied{Extra: Extra{Flag: true, Note: "a", Label: "x"}, Other: Other{Note: "b", Title: "y"}}
		got, err := ToSQLMap(v)
		require.NoError(t, err)
		require.Equal(t, map[string]any{"flag": 1, "Label": "y"}, got)

		var viaJSON map[string]any
		data, err := json.Marshal(v)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(data, &viaJSON))
		require.Len(t, viaJSON, len(got))
		for k := range got {
			require.Contains(t, viaJSON, k)
		}
	})
}

func TestToSQLMap_RejectsNonStructures(t *testing.T) {
	_, err := ToSQLMap(true)
	require.ErrorIs(t, err, ErrNotStructure)

	_, err = ToSQLMap([]any{map[string]any{}})
	require.ErrorIs(t, err, ErrNotStructure)
}

func TestFromSQLBool(t *testing.T) {
	truthy := []any{true, 1, int64(1), uint8(1), 1.0, float32(1), json.Number("1"), "1", "true"}
	for _, v := range truthy {
		b, err := FromSQLBool(v)
		require.NoError(t, err, "%#v", v)
		require.True(t, b, "%#v", v)
	}

	falsy := []any{false, 0, int32(0), 0.0, json.Number("0"), json.Number("0.0"), "0", "false"}
	for _, v := range falsy {
		b, err := FromSQLBool(v)
		require.NoError(t, err, "%#v", v)
		require.False(t, b, "%#v", v)
	}

	bad := []any{2, -1, 0.5, json.Number("7"), "yes", nil, []int{1}, map[string]any{}}
	for _, v := range bad {
		_, err := FromSQLBool(v)
		require.ErrorIs(t, err, ErrNotBoolean, "%#v", v)
	}
}

func TestBool_InverseOfFromSQLBool(t *testing.T) {
	for _, b := range []bool{true, false} {
		got, err := FromSQLBool(Bool(b))
		require.NoError(t, err)
		require.Equal(t, b, got)
	}
}
