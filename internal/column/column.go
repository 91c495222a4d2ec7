// Package column describes grid columns: their persisted attributes, the
// defaults of newly created columns and the rules for changing them.
package column

import (
	"errors"

	"github.com/tuannm99/novagrid/internal/record"
)

var (
	ErrEmptyName        = errors.New("column: name is empty")
	ErrUnknownKind      = errors.New("column: unknown column kind")
	ErrUnknownAttribute = errors.New("column: unknown attribute")
	ErrReadOnly         = errors.New("column: attribute is read-only")
	ErrInterdependent   = errors.New("column: attribute must be changed through its dedicated path")
	ErrInvalidValue     = errors.New("column: invalid attribute value")
	ErrJoinRequired     = errors.New("column: link column needs a join id")
)

const (
	DefaultWidth          = 150
	DefaultHeaderRenderer = "default"
)

// Serialized is the persisted form of a column.
type Serialized struct {
	Kind           string             `json:"kind" yaml:"kind"`
	ID             string             `json:"id" yaml:"id"`
	Name           string             `json:"name" yaml:"name"`
	ContentType    record.ContentType `json:"contentType" yaml:"contentType"`
	Editable       bool               `json:"editable" yaml:"editable"`
	Width          int                `json:"width" yaml:"width"`
	Frozen         bool               `json:"frozen" yaml:"frozen"`
	Resizable      bool               `json:"resizable" yaml:"resizable"`
	Sortable       bool               `json:"sortable" yaml:"sortable"`
	HeaderRenderer string             `json:"headerRenderer" yaml:"headerRenderer"`
	Editor         string             `json:"editor,omitempty" yaml:"editor,omitempty"`
	Formatter      string             `json:"formatter,omitempty" yaml:"formatter,omitempty"`
	JoinID         int                `json:"joinId,omitempty" yaml:"joinId,omitempty"`
}

// StandardSpecifier is the minimal input for creating a standard column.
type StandardSpecifier struct {
	Name        string             `json:"name"`
	ContentType record.ContentType `json:"contentType"`
	Editable    bool               `json:"editable"`
}

// Model holds the defaults applied to new columns.
type Model struct {
	width          int
	headerRenderer string
}

type Option func(m *Model)

func WithWidth(width int) Option {
	return func(m *Model) {
		if width > 0 {
			m.width = width
		}
	}
}

func WithHeaderRenderer(renderer string) Option {
	return func(m *Model) {
		if renderer != "" {
			m.headerRenderer = renderer
		}
	}
}

func NewModel(opts ...Option) *Model {
	m := &Model{
		width:          DefaultWidth,
		headerRenderer: DefaultHeaderRenderer,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Defaults returns the attributes every new standard column starts with.
// ID, Name and ContentType are left for the caller.
func (m *Model) Defaults() Serialized {
	return Serialized{
		Kind:           KindStandard,
		Editable:       true,
		Width:          m.width,
		Frozen:         false,
		Resizable:      true,
		Sortable:       true,
		HeaderRenderer: m.headerRenderer,
	}
}
