// Package ron reads and writes the subset of Rusty Object Notation used by
// the game's data files (shader descriptors, sound maps, editor settings).
//
// Documents are modeled as a generic value tree that preserves declaration
// order for struct fields, list elements and map entries, so a parsed file
// can be written back without reshuffling its contents.
package ron

import "reflect"

// Value is a node in a parsed RON document.
type Value interface {
	isValue()
}

// Bool is a boolean literal.
type Bool bool

// Int is an integer literal. Hex literals are folded to their numeric value.
type Int int64

// Float is a floating point literal.
type Float float64

// String is a string literal. Both escaped and raw string forms parse into
// the same value.
type String string

// Ident is a bare identifier: a unit enum variant such as Back, Keep or None.
type Ident string

// List is an ordered sequence: [a, b, c].
type List []Value

// MapEntry is a single key/value pair of a Map.
type MapEntry struct {
	Key   Value
	Value Value
}

// Map is an ordered key/value collection: {key: value, ...}. Entries keep
// the order they were declared in.
type Map []MapEntry

// Field is a named field of a Struct.
type Field struct {
	Name  string
	Value Value
}

// Struct is a (possibly named) struct or enum variant. Exactly one of
// Fields or Items is populated: Fields for the named-field form
// (name: value, ...), Items for the tuple form (a, b, ...). A unit value
// has neither.
type Struct struct {
	Name   string
	Fields []Field
	Items  []Value
}

func (Bool) isValue()   {}
func (Int) isValue()    {}
func (Float) isValue()  {}
func (String) isValue() {}
func (Ident) isValue()  {}
func (List) isValue()   {}
func (Map) isValue()    {}
func (Struct) isValue() {}

// Field returns the value of the named field, if present.
func (s Struct) Field(name string) (Value, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// HasField reports whether the struct declares the named field.
func (s Struct) HasField(name string) bool {
	_, ok := s.Field(name)
	return ok
}

// Get returns the value stored under the given key. Keys are compared by
// value equality, so both String and Ident keys work.
func (m Map) Get(key Value) (Value, bool) {
	for _, e := range m {
		if Equal(e.Key, key) {
			return e.Value, true
		}
	}
	return nil, false
}

// Equal reports whether two value trees are structurally identical.
func Equal(a, b Value) bool {
	return reflect.DeepEqual(a, b)
}

// None is the unit Option variant.
func None() Value { return Ident("None") }

// Some wraps a value in the Option variant Some(v).
func Some(v Value) Value {
	return Struct{Name: "Some", Items: []Value{v}}
}

// Option unwraps an optional value. It returns (inner, true) for Some(x),
// and (nil, false) for None or a nil value. Any other value is treated as a
// bare inner value, for files that omit the Some wrapper.
func Option(v Value) (Value, bool) {
	switch t := v.(type) {
	case nil:
		return nil, false
	case Ident:
		if t == "None" {
			return nil, false
		}
	case Struct:
		if t.Name == "Some" && len(t.Items) == 1 {
			return t.Items[0], true
		}
	}
	return v, true
}
