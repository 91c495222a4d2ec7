package record

import (
	"errors"
	"fmt"
	"strings"
)

// ContentType tags the kind of value a column stores.
type ContentType string

const (
	TypeText     ContentType = "text"
	TypeInteger  ContentType = "integer"
	TypeNumber   ContentType = "number"
	TypeBoolean  ContentType = "boolean"
	TypeDate     ContentType = "date"
	TypeDateTime ContentType = "datetime"
	TypeJSON     ContentType = "json"
)

// Keys the grid adds to every row next to the cells. No column may use
// them, in any letter case.
const (
	RowIndexKey = "__rowIndex__"
	RowIDKey    = "__rowId__"
)

var ErrUnknownContentType = errors.New("record: unknown content type")

var contentTypes = map[ContentType]struct{}{
	TypeText:     {},
	TypeInteger:  {},
	TypeNumber:   {},
	TypeBoolean:  {},
	TypeDate:     {},
	TypeDateTime: {},
	TypeJSON:     {},
}

// ParseContentType accepts a tag case-insensitively, plus the "bool" and
// "int" short forms.
func ParseContentType(tag string) (ContentType, error) {
	t := ContentType(strings.ToLower(strings.TrimSpace(tag)))
	switch t {
	case "bool":
		t = TypeBoolean
	case "int":
		t = TypeInteger
	}
	if _, ok := contentTypes[t]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownContentType, tag)
	}
	return t, nil
}

func (t ContentType) Valid() bool {
	_, ok := contentTypes[t]
	return ok
}

// IsReservedKey reports whether id collides with a row key.
func IsReservedKey(id string) bool {
	return strings.EqualFold(id, RowIndexKey) || strings.EqualFold(id, RowIDKey)
}
