package column

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"
)

// Attribute names a column attribute as it appears on the wire.
type Attribute string

const (
	AttrKind           Attribute = "kind"
	AttrID             Attribute = "id"
	AttrName           Attribute = "name"
	AttrContentType    Attribute = "contentType"
	AttrEditable       Attribute = "editable"
	AttrWidth          Attribute = "width"
	AttrFrozen         Attribute = "frozen"
	AttrResizable      Attribute = "resizable"
	AttrSortable       Attribute = "sortable"
	AttrHeaderRenderer Attribute = "headerRenderer"
	AttrEditor         Attribute = "editor"
	AttrFormatter      Attribute = "formatter"
	AttrJoinID         Attribute = "joinId"
)

// interdependent attributes drag other attributes along when they change.
var interdependent = map[Attribute]struct{}{
	AttrKind: {},
}

// readOnly attributes are fixed at creation (id) or owned by the view
// engine and the kind (contentType, joinId).
var readOnly = map[Attribute]struct{}{
	AttrID:          {},
	AttrContentType: {},
	AttrJoinID:      {},
}

type setter func(col *Serialized, value any) error

var plain = map[Attribute]setter{
	AttrName:           setName,
	AttrEditable:       setBool(func(c *Serialized) *bool { return &c.Editable }),
	AttrFrozen:         setBool(func(c *Serialized) *bool { return &c.Frozen }),
	AttrResizable:      setBool(func(c *Serialized) *bool { return &c.Resizable }),
	AttrSortable:       setBool(func(c *Serialized) *bool { return &c.Sortable }),
	AttrWidth:          setWidth,
	AttrHeaderRenderer: setString(func(c *Serialized) *string { return &c.HeaderRenderer }),
	AttrEditor:         setString(func(c *Serialized) *string { return &c.Editor }),
	AttrFormatter:      setString(func(c *Serialized) *string { return &c.Formatter }),
}

// ParseAttribute maps a wire name to its Attribute.
func ParseAttribute(name string) (Attribute, error) {
	a := Attribute(name)
	if _, ok := plain[a]; ok {
		return a, nil
	}
	if _, ok := interdependent[a]; ok {
		return a, nil
	}
	if _, ok := readOnly[a]; ok {
		return a, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAttribute, name)
}

// Interdependent reports whether changing attr requires recomputing other
// attributes, in which case Set refuses it.
func Interdependent(attr Attribute) bool {
	_, ok := interdependent[attr]
	return ok
}

// Settable reports whether attr can go through Set.
func Settable(attr Attribute) bool {
	_, ok := plain[attr]
	return ok
}

// Set writes a plain attribute. value is coerced to the attribute's type.
func Set(col *Serialized, attr Attribute, value any) error {
	if Interdependent(attr) {
		return fmt.Errorf("%w: %s", ErrInterdependent, attr)
	}
	if _, ok := readOnly[attr]; ok {
		return fmt.Errorf("%w: %s", ErrReadOnly, attr)
	}
	set, ok := plain[attr]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownAttribute, attr)
	}
	if err := set(col, value); err != nil {
		return fmt.Errorf("set %s on column %q: %w", attr, col.ID, err)
	}
	return nil
}

func setName(col *Serialized, value any) error {
	s, err := cast.ToStringE(value)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return ErrEmptyName
	}
	col.Name = s
	return nil
}

func setWidth(col *Serialized, value any) error {
	w, err := cast.ToIntE(value)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	if w <= 0 {
		return fmt.Errorf("%w: width %d", ErrInvalidValue, w)
	}
	col.Width = w
	return nil
}

func setBool(field func(*Serialized) *bool) setter {
	return func(col *Serialized, value any) error {
		b, err := cast.ToBoolE(value)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidValue, err)
		}
		*field(col) = b
		return nil
	}
}

func setString(field func(*Serialized) *string) setter {
	return func(col *Serialized, value any) error {
		s, err := cast.ToStringE(value)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidValue, err)
		}
		*field(col) = s
		return nil
	}
}
