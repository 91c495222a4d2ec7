package serdes

import "fmt"

// Result is a positional query result, the shape SQL executors return.
type Result struct {
	Columns []string
	Rows    [][]any
}

// PayloadFromResult keys the positional rows of res by column identifier.
// cols describes every column of res, in any order.
func PayloadFromResult(res Result, cols []ColumnDescriptor) (RawPayload, error) {
	described := make(map[string]struct{}, len(cols))
	for _, c := range cols {
		described[c.ID] = struct{}{}
	}
	seen := make(map[string]struct{}, len(res.Columns))
	for _, name := range res.Columns {
		if _, ok := described[name]; !ok {
			return RawPayload{}, fmt.Errorf("%w: result column %q has no descriptor", ErrUnknownCell, name)
		}
		if _, dup := seen[name]; dup {
			return RawPayload{}, fmt.Errorf("%w: result column %q", ErrDuplicateColumn, name)
		}
		seen[name] = struct{}{}
	}
	for _, c := range cols {
		if _, ok := seen[c.ID]; !ok {
			return RawPayload{}, fmt.Errorf("%w: descriptor %q has no result column", ErrMissingCell, c.ID)
		}
	}

	rows := make([]RawRow, len(res.Rows))
	for i, values := range res.Rows {
		if len(values) != len(res.Columns) {
			return RawPayload{}, fmt.Errorf("%w: row %d has %d values for %d columns", ErrMalformedPayload, i, len(values), len(res.Columns))
		}
		rr := make(RawRow, len(values))
		for j, v := range values {
			rr[res.Columns[j]] = v
		}
		rows[i] = rr
	}
	return RawPayload{Columns: cols, Rows: rows}, nil
}
