package column

import (
	"fmt"
	"strings"

	"github.com/tuannm99/novagrid/internal/ident"
	"github.com/tuannm99/novagrid/internal/record"
)

// NewStandard creates a standard column from spec. The identifier is the
// sanitized name, suffixed when it is already used by one of existing or
// collides with a row key.
// This and NewLink are the only places an identifier is assigned.
func (m *Model) NewStandard(spec StandardSpecifier, existing []Serialized) (Serialized, error) {
	name := strings.TrimSpace(spec.Name)
	if name == "" {
		return Serialized{}, ErrEmptyName
	}
	if !spec.ContentType.Valid() {
		return Serialized{}, fmt.Errorf("%w: %q", record.ErrUnknownContentType, spec.ContentType)
	}
	base, err := ident.Identifier(name)
	if err != nil {
		return Serialized{}, err
	}

	taken := make(map[string]struct{}, len(existing))
	for _, c := range existing {
		taken[c.ID] = struct{}{}
	}
	id := ident.Unique(base, func(s string) bool {
		_, ok := taken[s]
		return ok || record.IsReservedKey(s)
	})

	col := m.Defaults()
	col.ID = id
	col.Name = name
	col.ContentType = spec.ContentType
	col.Editable = spec.Editable
	if err := ChangeKind(&col, Standard{}); err != nil {
		return Serialized{}, err
	}
	return col, nil
}

// NewLink creates a link column with a precomputed identifier, as derived
// for a join of the view.
func (m *Model) NewLink(id, name string, contentType record.ContentType, joinID int) (Serialized, error) {
	if id == "" {
		return Serialized{}, ident.ErrEmptyIdentifier
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return Serialized{}, ErrEmptyName
	}
	if !contentType.Valid() {
		return Serialized{}, fmt.Errorf("%w: %q", record.ErrUnknownContentType, contentType)
	}

	col := m.Defaults()
	col.ID = id
	col.Name = name
	col.ContentType = contentType
	if err := ChangeKind(&col, Link{JoinID: joinID}); err != nil {
		return Serialized{}, err
	}
	return col, nil
}
