// Package codec converts records to and from one row of a flat tabular
// text file. Values cross this boundary as an explicit tagged variant so
// callers pattern-match on Kind instead of re-guessing types from strings.
package codec

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// Kind discriminates the value variant stored in a record field.
type Kind uint8

const (
	KindString Kind = iota
	KindNumber
	KindList
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Value is one field value: a string, a number, a list of values or a map
// of values. The zero Value is the empty string.
type Value struct {
	kind Kind
	str  string
	num  float64
	list []Value
	obj  map[string]Value
}

func String(s string) Value  { return Value{kind: KindString, str: s} }
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }
func List(vs ...Value) Value { return Value{kind: KindList, list: vs} }
func Map(m map[string]Value) Value {
	if m == nil {
		m = map[string]Value{}
	}
	return Value{kind: KindMap, obj: m}
}

func (v Value) Kind() Kind { return v.kind }

// AsString returns the string payload. Non-string values return their
// canonical cell text.
func (v Value) AsString() string {
	if v.kind == KindString {
		return v.str
	}
	return v.Cell()
}

// AsNumber reports the numeric payload, false when the value is not a number.
func (v Value) AsNumber() (float64, bool) {
	if v.kind == KindNumber {
		return v.num, true
	}
	return 0, false
}

// NumberOr returns the numeric payload or def for non-numbers.
func (v Value) NumberOr(def float64) float64 {
	if v.kind == KindNumber {
		return v.num
	}
	return def
}

func (v Value) AsList() ([]Value, bool) {
	if v.kind == KindList {
		return v.list, true
	}
	return nil, false
}

func (v Value) AsMap() (map[string]Value, bool) {
	if v.kind == KindMap {
		return v.obj, true
	}
	return nil, false
}

// IsEmpty reports whether the value is the empty string (the serialized form
// of an absent field).
func (v Value) IsEmpty() bool { return v.kind == KindString && v.str == "" }

// Equal compares two values structurally; numbers compare numerically.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == o.str
	case KindNumber:
		return v.num == o.num
	case KindList:
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(o.list[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if len(v.obj) != len(o.obj) {
			return false
		}
		for k, ve := range v.obj {
			oe, ok := o.obj[k]
			if !ok || !ve.Equal(oe) {
				return false
			}
		}
		return true
	}
	return false
}

// Interface converts the value to its plain Go shape (string, float64,
// []interface{}, map[string]interface{}) for JSON responses.
func (v Value) Interface() interface{} {
	switch v.kind {
	case KindNumber:
		return v.num
	case KindList:
		out := make([]interface{}, len(v.list))
		for i, e := range v.list {
			out[i] = e.Interface()
		}
		return out
	case KindMap:
		out := make(map[string]interface{}, len(v.obj))
		for k, e := range v.obj {
			out[k] = e.Interface()
		}
		return out
	default:
		return v.str
	}
}

// FromAny converts a JSON-decoded value into the tagged variant. Booleans
// and nulls have no variant of their own: nil becomes the empty string and
// bools become the strings "true"/"false", mirroring how the flat file
// serializes them.
func FromAny(x interface{}) Value {
	switch t := x.(type) {
	case nil:
		return String("")
	case string:
		return String(t)
	case float64:
		return Number(t)
	case int:
		return Number(float64(t))
	case int64:
		return Number(float64(t))
	case bool:
		return String(strconv.FormatBool(t))
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return String(t.String())
		}
		return Number(f)
	case []interface{}:
		vs := make([]Value, len(t))
		for i, e := range t {
			vs[i] = FromAny(e)
		}
		return List(vs...)
	case map[string]interface{}:
		m := make(map[string]Value, len(t))
		for k, e := range t {
			m[k] = FromAny(e)
		}
		return Map(m)
	default:
		return String(fmt.Sprintf("%v", t))
	}
}

// MarshalJSON emits the plain JSON shape of the value.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		return json.Marshal(v.num)
	case KindList:
		if v.list == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.list)
	case KindMap:
		// Deterministic key order keeps encoded cells stable across writes.
		keys := make([]string, 0, len(v.obj))
		for k := range v.obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		buf := []byte{'{'}
		for i, k := range keys {
			if i > 0 {
				buf = append(buf, ',')
			}
			kb, _ := json.Marshal(k)
			vb, err := json.Marshal(v.obj[k])
			if err != nil {
				return nil, err
			}
			buf = append(buf, kb...)
			buf = append(buf, ':')
			buf = append(buf, vb...)
		}
		return append(buf, '}'), nil
	}
	return json.Marshal(v.str)
}

// UnmarshalJSON accepts any JSON value and classifies it into the variant.
func (v *Value) UnmarshalJSON(b []byte) error {
	var raw interface{}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*v = FromAny(raw)
	return nil
}

// Record is an ordered-by-header mapping of field name to value. Field order
// is carried by the collection header, not by the map itself.
type Record map[string]Value

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Fields converts the record to its plain JSON shape.
func (r Record) Fields() map[string]interface{} {
	out := make(map[string]interface{}, len(r))
	for k, v := range r {
		out[k] = v.Interface()
	}
	return out
}

// RecordFromAny converts a JSON-decoded object into a Record.
func RecordFromAny(m map[string]interface{}) Record {
	out := make(Record, len(m))
	for k, v := range m {
		out[k] = FromAny(v)
	}
	return out
}
