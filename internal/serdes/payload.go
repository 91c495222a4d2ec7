package serdes

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"

	"github.com/tuannm99/novagrid/internal/catalog"
	"github.com/tuannm99/novagrid/internal/record"
)

// RawPayload is a view's data as the view engine hands it over.
type RawPayload struct {
	View      *catalog.ViewInfo  `json:"view,omitempty" yaml:"view,omitempty"`
	KeyColumn string             `json:"keyColumn,omitempty" yaml:"keyColumn,omitempty"`
	Columns   []ColumnDescriptor `json:"columns" yaml:"columns"`
	Rows      []RawRow           `json:"rows" yaml:"rows"`
}

// ColumnDescriptor is the engine-owned part of a column. Rendering
// attributes are not part of it.
type ColumnDescriptor struct {
	ID          string             `json:"id" yaml:"id"`
	Name        string             `json:"name,omitempty" yaml:"name,omitempty"`
	Kind        string             `json:"kind" yaml:"kind"`
	ContentType record.ContentType `json:"contentType" yaml:"contentType"`
	Editable    bool               `json:"editable" yaml:"editable"`
	JoinID      int                `json:"joinId,omitempty" yaml:"joinId,omitempty"`
}

// RawRow maps column identifiers to stored cell values.
type RawRow map[string]any

// TypeMap gives the content type of every column by identifier. Cells are
// decoded by it, never by looking at the values themselves.
type TypeMap map[string]record.ContentType

func TypeMapOf(cols []ColumnDescriptor) TypeMap {
	tm := make(TypeMap, len(cols))
	for _, c := range cols {
		tm[c.ID] = c.ContentType
	}
	return tm
}

// DecodePayload builds a RawPayload from a generic document, as produced by
// a JSON or YAML decoder. Unknown keys are rejected.
func DecodePayload(doc map[string]any) (RawPayload, error) {
	var p RawPayload
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:     "json",
		ErrorUnused: true,
		Result:      &p,
	})
	if err != nil {
		return RawPayload{}, err
	}
	if err := dec.Decode(doc); err != nil {
		return RawPayload{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return p, nil
}
