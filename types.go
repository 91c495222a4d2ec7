// Package novagrid is the top-level facade: it turns relational view
// payloads into grid tables and back, and derives the identifiers used when
// columns are added to a view.
package novagrid

import (
	"github.com/tuannm99/novagrid/internal/catalog"
	"github.com/tuannm99/novagrid/internal/column"
	"github.com/tuannm99/novagrid/internal/ident"
	"github.com/tuannm99/novagrid/internal/serdes"
	"github.com/tuannm99/novagrid/internal/sqlcodec"
)

type (
	ViewInfo          = catalog.ViewInfo
	Join              = catalog.Join
	LinkRequest       = catalog.LinkRequest
	Locks             = catalog.Locks
	Column            = column.Serialized
	StandardSpecifier = column.StandardSpecifier
	ColumnModel       = column.Model
	RawPayload        = serdes.RawPayload
	ColumnDescriptor  = serdes.ColumnDescriptor
	RawRow            = serdes.RawRow
	Table             = serdes.Table
	Row               = serdes.Row
	SerDes            = serdes.SerDes
	Result            = serdes.Result
)

var (
	WithWidth          = column.WithWidth
	WithHeaderRenderer = column.WithHeaderRenderer
)

// New returns a SerDes whose new columns get the given defaults.
func New(opts ...column.Option) *SerDes {
	return serdes.New(column.NewModel(opts...))
}

func Sanitize(name string) string { return ident.Sanitize(name) }

func ForeignKeyColumnName(view ViewInfo) string { return catalog.ForeignKeyColumnName(view) }

func ToSQL(v any) any { return sqlcodec.ToSQL(v) }

func FromSQLBool(v any) (bool, error) { return sqlcodec.FromSQLBool(v) }

// PayloadFromResult keys a positional query result by column identifier.
func PayloadFromResult(res Result, cols []ColumnDescriptor) (RawPayload, error) {
	return serdes.PayloadFromResult(res, cols)
}

func NewLocks() *Locks { return catalog.NewLocks() }
