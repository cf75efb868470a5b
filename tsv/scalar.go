package tsv

import (
	"math/big"

	"github.com/joeycumines/floater"
	"github.com/joeycumines/go-scriptthread/scripterr"
)

// Get returns a deep copy of the value stored at name/key.
func (s *Store) Get(name, key string) (Value, error) {
	var v Value
	err := s.withArray(name, false, func(a *array) {
		var ok bool
		v, ok = a.entries[key]
		if !ok {
			v = Value{}
		}
	})
	if err != nil {
		return Value{}, err
	}
	return s.exists(name, key, v)
}

func (s *Store) exists(name, key string, v Value) (Value, error) {
	ok, err := s.Exists(name, key)
	if err != nil {
		return Value{}, err
	}
	if !ok {
		return Value{}, scripterr.ErrNotFound
	}
	return v, nil
}

// Exists reports whether name/key currently holds a value. It never returns
// scripterr.ErrNotFound for the array-not-created case and an error for the
// key-not-set case alike — both simply report false.
func (s *Store) Exists(name, key string) (bool, error) {
	found := false
	err := s.withArray(name, false, func(a *array) {
		_, found = a.entries[key]
	})
	if err != nil {
		// a missing array means the key certainly doesn't exist either,
		// but Exists-mode callers should see false, not ErrNotFound.
		return false, nil
	}
	return found, nil
}

// Set stores a deep copy of value at name/key, creating the array if
// necessary.
func (s *Store) Set(name, key string, value Value) error {
	return s.withArray(name, true, func(a *array) {
		a.entries[key] = deepCopyValue(value)
	})
}

func deepCopyValue(v Value) Value {
	if v.isList {
		return NewList(v.list)
	}
	return NewScalar(v.scalar)
}

// Append concatenates val onto the current string value at name/key
// (creating it as "" first if absent), following Tcl's `append` command.
func (s *Store) Append(name, key string, vals ...string) (Value, error) {
	var result Value
	err := s.withArray(name, true, func(a *array) {
		cur := a.entries[key].String()
		for _, v := range vals {
			cur += v
		}
		nv := NewScalar(cur)
		a.entries[key] = nv
		result = nv
	})
	return result, err
}

// LAppend appends vals as new list elements onto name/key, treating an
// existing scalar as a single-element list first (Tcl's `lappend`).
func (s *Store) LAppend(name, key string, vals ...string) (Value, error) {
	var result Value
	err := s.withArray(name, true, func(a *array) {
		cur := a.entries[key]
		elems := cur.List()
		if !cur.isList && cur.scalar == "" {
			elems = nil
		}
		elems = append(elems, vals...)
		nv := NewList(elems)
		a.entries[key] = nv
		result = nv
	})
	return result, err
}

// Incr adds by (default 1) to the numeric value at name/key, creating it as
// "0" first if absent. Arithmetic goes through big.Rat via floater so
// repeated increments never accumulate binary-float rounding error.
func (s *Store) Incr(name, key string, by *big.Rat) (Value, error) {
	if by == nil {
		by = big.NewRat(1, 1)
	}
	var result Value
	err := s.withArray(name, true, func(a *array) {
		cur := a.entries[key]
		curRat := new(big.Rat)
		if cur.scalar != "" {
			if _, ok := curRat.SetString(cur.scalar); !ok {
				curRat.SetInt64(0)
			}
		}
		sum := new(big.Rat).Add(curRat, by)
		nv := NewScalar(floater.FormatDecimalRat(sum, -1, 64))
		a.entries[key] = nv
		result = nv
	})
	return result, err
}
