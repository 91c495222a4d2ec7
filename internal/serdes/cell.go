package serdes

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/tuannm99/novagrid/internal/record"
	"github.com/tuannm99/novagrid/internal/sqlcodec"
)

// decodeCell checks a stored value against its column type. Boolean cells
// are turned from 0/1 into bool; every other value is returned unchanged.
// nil is valid for every type.
func decodeCell(ct record.ContentType, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch ct {
	case record.TypeBoolean:
		b, err := sqlcodec.FromSQLBool(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCellType, err)
		}
		return b, nil
	case record.TypeInteger:
		if !isInteger(v) {
			return nil, cellTypeError(ct, v)
		}
	case record.TypeNumber:
		if !isNumber(v) {
			return nil, cellTypeError(ct, v)
		}
	case record.TypeText:
		if _, ok := v.(string); !ok {
			return nil, cellTypeError(ct, v)
		}
	case record.TypeDate, record.TypeDateTime:
		switch v.(type) {
		case string, time.Time:
		default:
			return nil, cellTypeError(ct, v)
		}
	case record.TypeJSON:
	default:
		return nil, fmt.Errorf("%w: %q", record.ErrUnknownContentType, ct)
	}
	return v, nil
}

// encodeCell prepares a grid value for the store. JSON documents are kept
// as they are.
func encodeCell(ct record.ContentType, v any) any {
	if ct == record.TypeJSON {
		return v
	}
	return sqlcodec.ToSQL(v)
}

func cellTypeError(ct record.ContentType, v any) error {
	return fmt.Errorf("%w: %T is not %s", ErrCellType, v, ct)
}

func isInteger(v any) bool {
	switch x := v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	case float32:
		return isIntegral(float64(x))
	case float64:
		return isIntegral(x)
	case json.Number:
		_, err := x.Int64()
		return err == nil
	}
	return false
}

func isNumber(v any) bool {
	switch x := v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return true
	case json.Number:
		_, err := x.Float64()
		return err == nil
	}
	return false
}

func isIntegral(f float64) bool {
	return f == math.Trunc(f) && !math.IsInf(f, 0)
}
