package catalog

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/tuannm99/novagrid/internal/column"
	"github.com/tuannm99/novagrid/internal/record"
)

var (
	ErrColumnExists = errors.New("catalog: column already exists")
	ErrNoTable      = errors.New("catalog: link target table is empty")
)

// NextJoinID is one more than the highest join id of the view, or 1 for a
// view without joins. Ids of removed joins are never handed out again while
// a higher id exists.
func NextJoinID(view ViewInfo) int {
	highest := 0
	for _, j := range view.Joins {
		if j.ID > highest {
			highest = j.ID
		}
	}
	return highest + 1
}

// ForeignKeyColumnName derives the identifier of the column for the next
// join of view: "j#<n>_fk". Sanitized names never contain '#', so it cannot
// clash with a user named column.
//
// The result reflects the joins passed in; callers creating the join must
// hold the view's lock from Locks until it is persisted.
func ForeignKeyColumnName(view ViewInfo) string {
	return foreignKeyName(NextJoinID(view))
}

func foreignKeyName(joinID int) string {
	return "j#" + strconv.Itoa(joinID) + "_fk"
}

// LinkRequest asks for a new link column joining Table into the view.
type LinkRequest struct {
	Name        string
	Table       string
	ContentType record.ContentType
}

// AddLink derives the next join of view, creates its link column and
// appends the join to view. table is the current column set the new column
// joins; the column is returned, not added.
func AddLink(m *column.Model, view *ViewInfo, table TableMeta, req LinkRequest) (column.Serialized, Join, error) {
	target := strings.TrimSpace(req.Table)
	if target == "" {
		return column.Serialized{}, Join{}, ErrNoTable
	}
	name := req.Name
	if strings.TrimSpace(name) == "" {
		name = target
	}
	ct := req.ContentType
	if ct == "" {
		ct = record.TypeInteger
	}

	joinID := NextJoinID(*view)
	id := foreignKeyName(joinID)
	if table.HasColumn(id) {
		return column.Serialized{}, Join{}, fmt.Errorf("%w: %q", ErrColumnExists, id)
	}

	col, err := m.NewLink(id, name, ct, joinID)
	if err != nil {
		return column.Serialized{}, Join{}, err
	}
	join := Join{ID: joinID, Table: target, Column: id}
	view.Joins = append(view.Joins, join)
	return col, join, nil
}
