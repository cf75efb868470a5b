package tsv

import "strings"

// Value holds either a scalar string or a deep-copied list. Value is copied
// by value (its list field is the only reference type, and every accessor
// below clones it), so callers can freely mutate a Value they received
// without corrupting what the Store still holds.
type Value struct {
	scalar string
	isList bool
	list   []string
}

// NewScalar builds a string-valued Value.
func NewScalar(s string) Value {
	return Value{scalar: s}
}

// NewList builds a list-valued Value, deep-copying elems so the caller's
// backing array is never aliased by the store.
func NewList(elems []string) Value {
	return Value{isList: true, list: cloneList(elems)}
}

// IsList reports whether v holds a list rather than a scalar.
func (v Value) IsList() bool { return v.isList }

// String renders v in its canonical string form: the scalar itself, or the
// list elements space-joined, matching Tcl-list convention for array
// get/set round-tripping.
func (v Value) String() string {
	if !v.isList {
		return v.scalar
	}
	return strings.Join(v.list, " ")
}

// List returns a deep copy of v's elements. If v is a scalar, it is treated
// as a single-element list, mirroring Tcl's "every string is a valid list
// of one element" convention.
func (v Value) List() []string {
	if !v.isList {
		return []string{v.scalar}
	}
	return cloneList(v.list)
}

func cloneList(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
