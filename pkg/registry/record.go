package registry

import "fmt"

// Record is one designer-config row, decoded from the configList JSON as a
// schema-less map. Narrow, table-specific wrappers (see items.go and
// friends) sit on top of this and name the fields they actually use.
type Record map[string]any

// Int reads a numeric field as an int. JSON numbers decode to float64; a
// missing or non-numeric field returns 0, false.
func (r Record) Int(key string) (int, bool) {
	v, ok := r[key]
	if !ok {
		return 0, false
	}
	f, ok := v.(float64)
	if !ok {
		return 0, false
	}
	return int(f), true
}

// Float reads a numeric field as a float64.
func (r Record) Float(key string) (float64, bool) {
	v, ok := r[key]
	if !ok {
		return 0, false
	}
	f, ok := v.(float64)
	return f, ok
}

// String reads a string field.
func (r Record) String(key string) (string, bool) {
	v, ok := r[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Bool reads a boolean field.
func (r Record) Bool(key string) (bool, bool) {
	v, ok := r[key]
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// Slice reads an array field as a raw []any, useful for callers that need
// to decode each element with a type-specific helper.
func (r Record) Slice(key string) ([]any, bool) {
	v, ok := r[key]
	if !ok {
		return nil, false
	}
	s, ok := v.([]any)
	return s, ok
}

// IntSlice reads an array field and coerces each element to int, skipping
// elements that aren't numeric.
func (r Record) IntSlice(key string) []int {
	raw, ok := r.Slice(key)
	if !ok {
		return nil
	}
	out := make([]int, 0, len(raw))
	for _, v := range raw {
		if f, ok := v.(float64); ok {
			out = append(out, int(f))
		}
	}
	return out
}

// Tags reads the record's "tags" field (a JSON array; non-string elements
// are skipped) as a set for membership checks, e.g. style/book/NPC
// clothing classification in pkg/text.
func (r Record) Tags() map[string]struct{} {
	raw, ok := r.Slice("tags")
	if !ok {
		return nil
	}
	out := make(map[string]struct{}, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out[s] = struct{}{}
		}
	}
	return out
}

// MustInt panics if the field is absent or non-numeric. Reserved for
// table-specific wrappers that have already validated the shape of their
// table at load time.
func (r Record) MustInt(key string) int {
	v, ok := r.Int(key)
	if !ok {
		panic(fmt.Sprintf("registry: record missing int field %q", key))
	}
	return v
}

// MustString panics if the field is absent or not a string.
func (r Record) MustString(key string) string {
	v, ok := r.String(key)
	if !ok {
		panic(fmt.Sprintf("registry: record missing string field %q", key))
	}
	return v
}
