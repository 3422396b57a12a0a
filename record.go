package medreg

import (
	"fmt"
	"reflect"
)

// Well-known record fields present on every record reaching the sink.
const (
	FieldURL    = "url"
	FieldSource = "source"
)

// Record is a flat mapping from field name to value for one discovered entity.
// Values are strings, comma-joined strings representing lists, or nil for
// absent optional fields until the record is normalized.
type Record map[string]any

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// String returns the value of a field as a string.
// Absent fields and non-string values return "".
func (r Record) String(field string) string {
	s, _ := r[field].(string)
	return s
}

// Validate returns an error if the record lacks its canonical source URL.
func (r Record) Validate() error {
	if r.String(FieldURL) == "" {
		return Errorf(EINVALID, "record url required")
	}
	return nil
}

// NormalizeRecord makes a record safe for the dataset schema.
// The result holds only JSON-primitive values, maps and slices.
func NormalizeRecord(r Record) Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = Normalize(v)
	}
	return out
}

// Normalize recursively replaces nil values with "", passes strings,
// booleans and numbers through unchanged and converts anything else to its
// string representation. Normalize is idempotent.
func Normalize(v any) any {
	switch v := v.(type) {
	case nil:
		return ""
	case string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return v
	case Record:
		return map[string]any(NormalizeRecord(v))
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			out[k] = Normalize(item)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = Normalize(item)
		}
		return out
	case fmt.Stringer:
		if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer && rv.IsNil() {
			return ""
		}
		return v.String()
	}
	return normalizeValue(reflect.ValueOf(v))
}

// normalizeValue handles typed containers and pointers that the fast path
// in Normalize does not match, e.g. []string or *string.
func normalizeValue(rv reflect.Value) any {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return ""
		}
		return Normalize(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return []any{}
		}
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = Normalize(rv.Index(i).Interface())
		}
		return out
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			break
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = Normalize(iter.Value().Interface())
		}
		return out
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint()
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	}
	return fmt.Sprint(rv.Interface())
}
