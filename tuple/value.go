// Package tuple implements the ordered composite-key type this database
// is built on: Value, the sum type stored inside a Tuple, and Tuple
// itself, an ordered sequence of Values that forms a database key.
//
// The total order over Tuples and the order-preserving byte encoding
// used by backends that only understand byte keys both live here.
package tuple

import "sort"

// Kind identifies the concrete type carried by a Value.
type Kind uint8

// Type order, stable across the pair of sentinels: Min is below every
// real value, Max is above every real value.
const (
	KindMin Kind = iota
	KindNull
	KindObject
	KindArray
	KindNumber
	KindString
	KindBool
	KindMax

	kindAbsent // internal only: marks an object entry to be dropped
)

// Min and Max are sentinels used only as range bounds; they are never
// stored inside a key/value pair.
var (
	Min = Value{kind: KindMin}
	Max = Value{kind: KindMax}
	Null = Value{kind: KindNull}

	// Absent marks a map entry that Object should drop rather than
	// store. It must never appear inside a committed Tuple.
	Absent = Value{kind: kindAbsent}
)

// Entry is a single (key, value) pair of an Object-kind Value.
type Entry struct {
	Key   string
	Value Value
}

// Value is the sum type stored inside a Tuple: an identifier/unicode
// string, a finite number, a boolean, null, a homogeneous-at-type-level
// array of Value, an ordered string-keyed map, or one of the two
// sentinels Min/Max.
type Value struct {
	kind Kind

	num  float64
	str  string
	bol  bool
	arr  []Value
	obj  []Entry // sorted by Key, absent entries already dropped
}

// Kind reports the Value's dynamic type.
func (v Value) Kind() Kind { return v.kind }

// Bool constructs a boolean Value.
func Bool(b bool) Value { return Value{kind: KindBool, bol: b} }

// Number constructs a finite numeric Value.
func Number(n float64) Value { return Value{kind: KindNumber, num: n} }

// String constructs a string Value (used for both identifier strings
// and general unicode text; this implementation does not distinguish
// the two at the type level).
func String(s string) Value { return Value{kind: KindString, str: s} }

// Array constructs a Value wrapping an ordered sequence of Values.
func Array(vs ...Value) Value {
	cp := make([]Value, len(vs))
	copy(cp, vs)
	return Value{kind: KindArray, arr: cp}
}

// Object constructs a Value wrapping an ordered string-keyed mapping.
// Entries whose value is Absent are dropped, matching the data model's
// "absent" convention for optional fields.
func Object(entries map[string]Value) Value {
	out := make([]Entry, 0, len(entries))
	for k, v := range entries {
		if v.kind == kindAbsent {
			continue
		}
		out = append(out, Entry{Key: k, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return Value{kind: KindObject, obj: out}
}

// IsNull reports whether v is the null Value.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsBool returns the boolean payload; only meaningful when Kind() == KindBool.
func (v Value) AsBool() bool { return v.bol }

// AsNumber returns the numeric payload; only meaningful when Kind() == KindNumber.
func (v Value) AsNumber() float64 { return v.num }

// AsString returns the string payload; only meaningful when Kind() == KindString.
func (v Value) AsString() string { return v.str }

// AsArray returns the element slice; only meaningful when Kind() == KindArray.
func (v Value) AsArray() []Value { return v.arr }

// AsObject returns the sorted entry slice; only meaningful when Kind() == KindObject.
func (v Value) AsObject() []Entry { return v.obj }

// Equal reports whether v and other represent the same Value.
func (v Value) Equal(other Value) bool { return Compare(v, other) == 0 }
