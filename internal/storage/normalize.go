package storage

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"time"

	"github.com/guregu/null/v6"
)

// tabular is implemented by date-indexed series that persist as row mappings
// with the index exposed as a regular column.
type tabular interface {
	Records() []map[string]any
}

// normalize converts an arbitrary value tree into plain JSON-representable
// values: maps, slices, strings, numbers, booleans and nil. Values with no
// natural JSON form fall back to their fmt representation.
func normalize(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case tabular:
		rows := x.Records()
		out := make([]any, len(rows))
		for i, row := range rows {
			out[i] = normalize(row)
		}
		return out
	case time.Time:
		return x.Format(time.RFC3339)
	case *time.Time:
		if x == nil {
			return nil
		}
		return x.Format(time.RFC3339)
	case time.Duration:
		return x.String()
	case null.Float:
		if !x.Valid {
			return nil
		}
		return normalizeFloat(x.Float64)
	case null.Int:
		if !x.Valid {
			return nil
		}
		return x.Int64
	case null.String:
		if !x.Valid {
			return nil
		}
		return x.String
	case null.Bool:
		if !x.Valid {
			return nil
		}
		return x.Bool
	case null.Time:
		if !x.Valid {
			return nil
		}
		return x.Time.Format(time.RFC3339)
	case *big.Float:
		if x == nil {
			return nil
		}
		return x.Text('f', -1)
	case *big.Int:
		if x == nil {
			return nil
		}
		return x.String()
	case *big.Rat:
		if x == nil {
			return nil
		}
		return x.FloatString(10)
	case json.Number:
		return x.String()
	case float64:
		return normalizeFloat(x)
	case float32:
		return normalizeFloat(float64(x))
	case string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return x
	case []byte:
		return string(x)
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[k] = normalize(val)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, val := range x {
			out[i] = normalize(val)
		}
		return out
	case error:
		return x.Error()
	case fmt.Stringer:
		return x.String()
	}

	return normalizeReflect(reflect.ValueOf(v))
}

// normalizeFloat maps non-finite values to nil since JSON cannot carry them.
func normalizeFloat(f float64) any {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return f
}

// normalizeReflect handles container and struct kinds not matched by type.
func normalizeReflect(rv reflect.Value) any {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		return normalize(rv.Elem().Interface())
	case reflect.Map:
		if rv.IsNil() {
			return nil
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[fmt.Sprint(iter.Key().Interface())] = normalize(iter.Value().Interface())
		}
		return out
	case reflect.Slice:
		if rv.IsNil() {
			return nil
		}
		fallthrough
	case reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = normalize(rv.Index(i).Interface())
		}
		return out
	case reflect.Struct:
		return normalizeStruct(rv.Interface())
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint()
	case reflect.Float32, reflect.Float64:
		return normalizeFloat(rv.Float())
	}
	return fmt.Sprint(rv.Interface())
}

// normalizeStruct converts a struct to a map using its JSON field tags.
func normalizeStruct(v any) any {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Sprint(v)
	}
	return normalize(out)
}
