// Package record defines the plain-data record shared by collections,
// the store and the UI layer.
package record

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// DefaultIDAttribute is the attribute that identifies a record unless a
// collection is configured otherwise.
const DefaultIDAttribute = "id"

// Record is a plain-data object as decoded from the server.
type Record map[string]any

// IDOf returns the normalized string id stored under attr.
// Numbers are formatted without a trailing ".0" so that 7 and "7" collide.
func IDOf(r Record, attr string) (string, bool) {
	v, ok := r[attr]
	if !ok || v == nil {
		return "", false
	}
	switch id := v.(type) {
	case string:
		return id, id != ""
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(id), 'f', -1, 32), true
	case int:
		return strconv.Itoa(id), true
	case int64:
		return strconv.FormatInt(id, 10), true
	case int32:
		return strconv.FormatInt(int64(id), 10), true
	case uint64:
		return strconv.FormatUint(id, 10), true
	case json.Number:
		return id.String(), true
	case fmt.Stringer:
		return id.String(), true
	default:
		return fmt.Sprint(id), true
	}
}

// ID returns the record's id under DefaultIDAttribute.
func (r Record) ID() string {
	id, _ := IDOf(r, DefaultIDAttribute)
	return id
}

// Clone returns a deep copy of the record. Nested maps and slices are
// copied; other values are shared.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return map[string]any(Record(t).Clone())
	case Record:
		return t.Clone()
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

// Merge copies every attribute of src into r, overwriting existing keys.
func (r Record) Merge(src Record) {
	for k, v := range src {
		r[k] = cloneValue(v)
	}
}

// CloneAll deep-copies a slice of records.
func CloneAll(in []Record) []Record {
	if in == nil {
		return nil
	}
	out := make([]Record, len(in))
	for i, r := range in {
		out[i] = r.Clone()
	}
	return out
}
