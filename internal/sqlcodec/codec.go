// Package sqlcodec converts application values into the relational store's
// encoding, where booleans are stored as the integers 0 and 1.
package sqlcodec

import (
	"database/sql/driver"
	"encoding"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/spf13/cast"
)

var (
	ErrNotBoolean   = errors.New("sqlcodec: value is not a 0/1 boolean")
	ErrNotStructure = errors.New("sqlcodec: value is not a keyed structure")
)

// Bool encodes a boolean the way the store keeps it.
func Bool(b bool) int {
	if b {
		return 1
	}
	return 0
}

// ToSQL replaces every boolean reachable through keyed structures with 0/1.
//
// Maps with string keys and plain structs are rebuilt with their values
// converted recursively; structs come back as map[string]any keyed by their
// json names. Slices and arrays are returned untouched, so a boolean inside
// an element is not converted. Every other value is returned as is.
// The argument is never mutated.
func ToSQL(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case bool:
		return Bool(x)
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = ToSQL(e)
		}
		return out
	}

	rv := reflect.ValueOf(v)
	switch {
	case rv.Kind() == reflect.Bool:
		return Bool(rv.Bool())
	case rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String:
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = ToSQL(iter.Value().Interface())
		}
		return out
	case isPlainStruct(rv):
		return ToSQL(flatten(rv))
	}
	return v
}

// ToSQLMap converts a keyed structure (map or struct) and returns the
// resulting map.
func ToSQLMap(v any) (map[string]any, error) {
	out, ok := ToSQL(v).(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrNotStructure, v)
	}
	return out, nil
}

// FromSQLBool decodes a cell of a column known to be boolean.
// Accepts bool, integer or float 0/1, json.Number and the strings
// understood by strconv.ParseBool.
func FromSQLBool(v any) (bool, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case float32:
		return floatBool(float64(x), v)
	case float64:
		return floatBool(x, v)
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return intBool(n, v)
		}
		f, err := x.Float64()
		if err != nil {
			return false, fmt.Errorf("%w: %q", ErrNotBoolean, x)
		}
		return floatBool(f, v)
	case string:
		b, err := cast.ToBoolE(x)
		if err != nil {
			return false, fmt.Errorf("%w: %q", ErrNotBoolean, x)
		}
		return b, nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		n, err := cast.ToInt64E(x)
		if err != nil {
			return false, fmt.Errorf("%w: %v", ErrNotBoolean, x)
		}
		return intBool(n, v)
	}
	return false, fmt.Errorf("%w: %T", ErrNotBoolean, v)
}

func intBool(n int64, orig any) (bool, error) {
	switch n {
	case 0:
		return false, nil
	case 1:
		return true, nil
	}
	return false, fmt.Errorf("%w: %v", ErrNotBoolean, orig)
}

func floatBool(f float64, orig any) (bool, error) {
	switch f {
	case 0:
		return false, nil
	case 1:
		return true, nil
	}
	return false, fmt.Errorf("%w: %v", ErrNotBoolean, orig)
}

var (
	textMarshalerType = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
	jsonMarshalerType = reflect.TypeOf((*json.Marshaler)(nil)).Elem()
	valuerType        = reflect.TypeOf((*driver.Valuer)(nil)).Elem()
)

// isPlainStruct reports whether rv is a struct (or non-nil pointer to one)
// that carries its own fields rather than a custom encoding, so time.Time
// and sql.Null* values stay leaves.
func isPlainStruct(rv reflect.Value) bool {
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return false
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return false
	}
	t := rv.Type()
	pt := reflect.PointerTo(t)
	for _, iface := range []reflect.Type{textMarshalerType, jsonMarshalerType, valuerType} {
		if t.Implements(iface) || pt.Implements(iface) {
			return false
		}
	}
	return true
}

// flatten copies the exported fields of a struct into a map keyed by json
// name. Fields tagged "-" and unexported fields are skipped; untagged
// exported embedded structs are inlined. Name clashes resolve as in
// encoding/json: the shallowest field wins, a json tag breaks a tie at the
// same depth, and an unbroken tie drops the name.
func flatten(rv reflect.Value) map[string]any {
	if rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	fields := make(map[string]flatField, rv.NumField())
	collect(fields, rv, 0)

	out := make(map[string]any, len(fields))
	for name, f := range fields {
		if !f.clash {
			out[name] = f.value
		}
	}
	return out
}

type flatField struct {
	value  any
	depth  int
	tagged bool
	clash  bool
}

func collect(fields map[string]flatField, rv reflect.Value, depth int) {
	t := rv.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		tag := f.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, _, _ := strings.Cut(tag, ",")
		tagged := name != ""
		fv := rv.Field(i)

		if f.Anonymous && name == "" {
			if fv.Kind() == reflect.Pointer {
				if fv.IsNil() {
					continue
				}
				fv = fv.Elem()
			}
			if fv.Kind() == reflect.Struct {
				collect(fields, fv, depth+1)
				continue
			}
		}
		if name == "" {
			name = f.Name
		}

		cur := flatField{value: fv.Interface(), depth: depth, tagged: tagged}
		prev, seen := fields[name]
		switch {
		case !seen || depth < prev.depth:
			fields[name] = cur
		case depth > prev.depth:
		case tagged && !prev.tagged:
			fields[name] = cur
		case tagged == prev.tagged:
			prev.clash = true
			fields[name] = prev
		}
	}
}
