package tsv

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/joeycumines/go-scriptthread/scripterr"
)

// SearchMode selects how LSearch compares elements: exact, glob, or
// regular-expression matching.
type SearchMode int

const (
	SearchExact SearchMode = iota
	SearchGlob
	SearchRegex
)

// ParseIndex resolves a script-visible list index against length, accepting
// either a plain integer or the symbolic forms "end" / "end-<int>". The
// returned index is not yet clamped to [0, length) — callers apply the
// clamping rule appropriate to their operation.
func ParseIndex(s string, length int) (int, error) {
	if s == "end" {
		return length - 1, nil
	}
	if rest, ok := strings.CutPrefix(s, "end-"); ok {
		n, err := strconv.Atoi(rest)
		if err != nil {
			return 0, scripterr.ErrNotFound
		}
		return length - 1 - n, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, scripterr.ErrNotFound
	}
	return n, nil
}

func clamp(i, lo, hi int) int {
	if i < lo {
		return lo
	}
	if i > hi {
		return hi
	}
	return i
}

func (s *Store) withList(name, key string, create bool, fn func(elems []string) []string) (Value, error) {
	var result Value
	err := s.withArray(name, create, func(a *array) {
		cur, ok := a.entries[key]
		if !ok {
			if !create {
				return
			}
			cur = NewList(nil)
		}
		elems := cur.List()
		newElems := fn(elems)
		nv := NewList(newElems)
		a.entries[key] = nv
		result = nv
	})
	return result, err
}

// LLength returns the number of elements in the list at name/key.
func (s *Store) LLength(name, key string) (int, error) {
	v, err := s.Get(name, key)
	if err != nil {
		return 0, err
	}
	return len(v.List()), nil
}

// LIndex returns the element at idx (accepting "end"/"end-N"). Out-of-range
// indices return "", false with no error, matching Tcl's lindex.
func (s *Store) LIndex(name, key, idx string) (string, bool, error) {
	v, err := s.Get(name, key)
	if err != nil {
		return "", false, err
	}
	elems := v.List()
	i, err := ParseIndex(idx, len(elems))
	if err != nil {
		return "", false, err
	}
	if i < 0 || i >= len(elems) {
		return "", false, nil
	}
	return elems[i], true, nil
}

// LRange returns the inclusive slice [from, to] of the list at name/key,
// with both endpoints clamped into range rather than erroring.
func (s *Store) LRange(name, key, from, to string) ([]string, error) {
	v, err := s.Get(name, key)
	if err != nil {
		return nil, err
	}
	elems := v.List()
	fi, err := ParseIndex(from, len(elems))
	if err != nil {
		return nil, err
	}
	ti, err := ParseIndex(to, len(elems))
	if err != nil {
		return nil, err
	}
	fi = clamp(fi, 0, len(elems))
	ti = clamp(ti, -1, len(elems)-1)
	if fi > ti {
		return []string{}, nil
	}
	out := make([]string, ti-fi+1)
	copy(out, elems[fi:ti+1])
	return out, nil
}

// LInsert inserts vals before idx, clamping idx into [0, len(elems)].
func (s *Store) LInsert(name, key, idx string, vals ...string) (Value, error) {
	return s.withList(name, key, true, func(elems []string) []string {
		i, err := ParseIndex(idx, len(elems))
		if err != nil {
			i = len(elems)
		}
		i = clamp(i, 0, len(elems))
		out := make([]string, 0, len(elems)+len(vals))
		out = append(out, elems[:i]...)
		out = append(out, vals...)
		out = append(out, elems[i:]...)
		return out
	})
}

// LPush is LInsert under another name, the distinct script-visible verb
// for the same clamped-insert semantics.
func (s *Store) LPush(name, key, idx string, vals ...string) (Value, error) {
	return s.LInsert(name, key, idx, vals...)
}

// LPop removes and returns the element at idx. An out-of-range idx is a
// silent no-op returning ("", false).
func (s *Store) LPop(name, key, idx string) (string, bool, error) {
	var popped string
	var ok bool
	_, err := s.withList(name, key, false, func(elems []string) []string {
		i, perr := ParseIndex(idx, len(elems))
		if perr != nil || i < 0 || i >= len(elems) {
			return elems
		}
		popped = elems[i]
		ok = true
		out := make([]string, 0, len(elems)-1)
		out = append(out, elems[:i]...)
		out = append(out, elems[i+1:]...)
		return out
	})
	if err != nil {
		return "", false, err
	}
	return popped, ok, nil
}

// LReplace replaces the inclusive range [first, last] with vals, with both
// endpoints clamped into range.
func (s *Store) LReplace(name, key, first, last string, vals ...string) (Value, error) {
	return s.withList(name, key, true, func(elems []string) []string {
		fi, err := ParseIndex(first, len(elems))
		if err != nil {
			fi = 0
		}
		li, err := ParseIndex(last, len(elems))
		if err != nil {
			li = len(elems) - 1
		}
		fi = clamp(fi, 0, len(elems))
		li = clamp(li, -1, len(elems)-1)
		if fi > li+1 {
			fi = li + 1
		}
		out := make([]string, 0, len(elems)-(li-fi+1)+len(vals))
		out = append(out, elems[:fi]...)
		out = append(out, vals...)
		if li+1 <= len(elems) {
			out = append(out, elems[li+1:]...)
		}
		return out
	})
}

// LSearch returns the indices of every element in the list at name/key that
// matches pattern under mode. all controls whether every match is returned,
// Tcl's `lsearch -all`, or only the first.
func (s *Store) LSearch(name, key, pattern string, mode SearchMode, all bool) ([]int, error) {
	v, err := s.Get(name, key)
	if err != nil {
		return nil, err
	}
	elems := v.List()

	var matches func(elem string) (bool, error)
	switch mode {
	case SearchGlob:
		matches = func(elem string) (bool, error) {
			return filepath.Match(pattern, elem)
		}
	case SearchRegex:
		re, rerr := regexp.Compile(pattern)
		if rerr != nil {
			return nil, rerr
		}
		matches = func(elem string) (bool, error) {
			return re.MatchString(elem), nil
		}
	default:
		matches = func(elem string) (bool, error) {
			return elem == pattern, nil
		}
	}

	var out []int
	for i, e := range elems {
		ok, merr := matches(e)
		if merr != nil {
			return nil, merr
		}
		if ok {
			out = append(out, i)
			if !all {
				return out, nil
			}
		}
	}
	return out, nil
}
