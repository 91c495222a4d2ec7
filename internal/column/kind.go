package column

import (
	"fmt"
	"sort"

	"github.com/tuannm99/novagrid/internal/record"
)

const (
	KindStandard = "standard"
	KindLink     = "link"
)

// Kind decides how a column is edited, rendered and stored.
// The set of kinds is closed: implementations live in this package and are
// listed in the registry below.
type Kind interface {
	Name() string
	// apply moves col to this kind and updates the attributes that depend on it.
	apply(col *Serialized) error
	kindNode()
}

// ----- standard -----

// Standard is a plain value column edited according to its content type.
type Standard struct{}

func (Standard) Name() string { return KindStandard }
func (Standard) kindNode()    {}

func (Standard) apply(col *Serialized) error {
	r, ok := renderers[col.ContentType]
	if !ok {
		return fmt.Errorf("%w: %q on column %q", record.ErrUnknownContentType, col.ContentType, col.ID)
	}
	if col.Kind == KindLink {
		col.Sortable = true
	}
	col.Kind = KindStandard
	col.Editor = r.editor
	col.Formatter = r.formatter
	col.JoinID = 0
	return nil
}

// ----- link -----

// Link materializes a join of the view as an editable reference.
type Link struct {
	JoinID int
}

func (Link) Name() string { return KindLink }
func (Link) kindNode()    {}

func (k Link) apply(col *Serialized) error {
	if k.JoinID <= 0 {
		return fmt.Errorf("%w: column %q", ErrJoinRequired, col.ID)
	}
	col.Kind = KindLink
	col.Editor = "link"
	col.Formatter = "link"
	col.Sortable = false
	col.JoinID = k.JoinID
	return nil
}

type renderer struct {
	editor    string
	formatter string
}

var renderers = map[record.ContentType]renderer{
	record.TypeText:     {editor: "text", formatter: "text"},
	record.TypeInteger:  {editor: "number", formatter: "integer"},
	record.TypeNumber:   {editor: "number", formatter: "number"},
	record.TypeBoolean:  {editor: "checkbox", formatter: "checkbox"},
	record.TypeDate:     {editor: "date", formatter: "date"},
	record.TypeDateTime: {editor: "datetime", formatter: "datetime"},
	record.TypeJSON:     {editor: "json", formatter: "json"},
}

// ----- registry -----

// registry rebuilds a Kind from a persisted column.
var registry = map[string]func(col Serialized) Kind{
	KindStandard: func(Serialized) Kind { return Standard{} },
	KindLink:     func(col Serialized) Kind { return Link{JoinID: col.JoinID} },
}

// KindOf resolves the kind recorded on col. Unknown kinds are an error,
// never a fallback to standard.
func KindOf(col Serialized) (Kind, error) {
	build, ok := registry[col.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q on column %q", ErrUnknownKind, col.Kind, col.ID)
	}
	return build(col), nil
}

// KindNames lists the registered kinds in sorted order.
func KindNames() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve runs the migration of the kind recorded on col, filling in the
// attributes that depend on it.
func Resolve(col *Serialized) error {
	k, err := KindOf(*col)
	if err != nil {
		return err
	}
	return ChangeKind(col, k)
}

// ChangeKind is the path for the interdependent kind attribute: it switches
// col to target and updates editor, formatter and the other attributes the
// kind controls. col is left untouched on error.
func ChangeKind(col *Serialized, target Kind) error {
	if target == nil {
		return fmt.Errorf("%w: nil kind", ErrUnknownKind)
	}
	next := *col
	if err := target.apply(&next); err != nil {
		return err
	}
	*col = next
	return nil
}
