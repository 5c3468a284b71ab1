package domain

import (
	"encoding/json"
	"fmt"
)

// Meta maps a metadata key to its values. Posts, terms, and comments allow
// multiple values per key.
type Meta map[string][]MetaValue

// UserMeta maps a metadata key to a single value.
type UserMeta map[string]MetaValue

// MetaValue is a single metadata value: either a plain string scalar or a
// structured value (number, bool, array, object) carried as raw JSON.
// The distinction matters in exactly one place — the URL rewriter only
// touches string-shaped values.
type MetaValue struct {
	str        string
	structured json.RawMessage
}

// StringValue wraps a plain string scalar.
func StringValue(s string) MetaValue {
	return MetaValue{str: s}
}

// StructuredValue wraps a non-string JSON value.
func StructuredValue(raw json.RawMessage) MetaValue {
	return MetaValue{structured: raw}
}

// IsString reports whether the value is a plain string scalar.
func (v MetaValue) IsString() bool {
	return v.structured == nil
}

// Text returns the string scalar. For structured values it returns the raw
// JSON text.
func (v MetaValue) Text() string {
	if v.structured != nil {
		return string(v.structured)
	}
	return v.str
}

// MapString returns a copy with f applied to the scalar; structured values
// pass through untouched.
func (v MetaValue) MapString(f func(string) string) MetaValue {
	if v.structured != nil {
		return v
	}
	return MetaValue{str: f(v.str)}
}

// Stored returns the serialized form written to the destination store:
// strings are stored bare, structured values as compact JSON.
func (v MetaValue) Stored() string {
	return v.Text()
}

// FromStored reconstructs a MetaValue from its stored form. Text that parses
// as a JSON object, array, number, bool, or null round-trips as structured;
// everything else is a string scalar. This is deliberately blunt: a bare
// numeric string comes back as a number.
func FromStored(s string) MetaValue {
	trimmed := []byte(s)
	if json.Valid(trimmed) {
		var decoded interface{}
		if err := json.Unmarshal(trimmed, &decoded); err == nil {
			if _, isStr := decoded.(string); !isStr {
				return MetaValue{structured: json.RawMessage(s)}
			}
		}
	}
	return MetaValue{str: s}
}

// MarshalJSON emits the string scalar as a JSON string, structured values
// verbatim.
func (v MetaValue) MarshalJSON() ([]byte, error) {
	if v.structured != nil {
		return v.structured, nil
	}
	return json.Marshal(v.str)
}

// UnmarshalJSON keeps JSON strings as scalars and everything else raw.
func (v *MetaValue) UnmarshalJSON(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("empty metadata value")
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = MetaValue{str: s}
		return nil
	}
	raw := make(json.RawMessage, len(data))
	copy(raw, data)
	*v = MetaValue{structured: raw}
	return nil
}
