// Package tsv implements a process-wide shared-variable store: a bucketed
// two-level map (array name -> key -> value) where each bucket owns its own
// mutex, so unrelated arrays never contend on the same lock. The name "tsv"
// (thread shared variable) matches Tcl's Thread package terminology for the
// same concept.
package tsv

import (
	"sync"

	"github.com/joeycumines/go-scriptthread/scripterr"
)

const defaultBucketCount = 8

// Store is the shared-variable store. The zero value is not usable; build
// one with New.
type Store struct {
	buckets []bucket
}

type bucket struct {
	mu     sync.Mutex
	arrays map[string]*array
}

type array struct {
	entries map[string]Value
}

// Option configures a Store at construction time.
type Option func(*storeConfig)

type storeConfig struct {
	bucketCount int
}

// WithBucketCount overrides the default bucket count (8). Values less
// than 1 are treated as 1.
func WithBucketCount(n int) Option {
	return func(c *storeConfig) {
		c.bucketCount = n
	}
}

// New constructs a Store with the given options applied.
func New(opts ...Option) *Store {
	cfg := storeConfig{bucketCount: defaultBucketCount}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.bucketCount < 1 {
		cfg.bucketCount = 1
	}
	s := &Store{buckets: make([]bucket, cfg.bucketCount)}
	for i := range s.buckets {
		s.buckets[i].arrays = make(map[string]*array)
	}
	return s
}

// hashArrayName is an FNV-1 style rolling hash, deterministic within a
// process, so an array name always maps to the same bucket for the life of
// the Store.
func hashArrayName(name string) uint32 {
	var h uint32 = 2166136261
	for i := 0; i < len(name); i++ {
		h = (h * 16777619) ^ uint32(name[i])
	}
	return h
}

func (s *Store) bucketFor(name string) *bucket {
	idx := hashArrayName(name) % uint32(len(s.buckets))
	return &s.buckets[idx]
}

// withArray runs fn with the owning bucket locked and the named Array
// resolved, creating it first if create is true and it does not yet exist.
// Returns scripterr.ErrNotFound if create is false and the array is absent.
func (s *Store) withArray(name string, create bool, fn func(a *array)) error {
	b := s.bucketFor(name)
	b.mu.Lock()
	defer b.mu.Unlock()

	a, ok := b.arrays[name]
	if !ok {
		if !create {
			return scripterr.ErrNotFound
		}
		a = &array{entries: make(map[string]Value)}
		b.arrays[name] = a
	}
	fn(a)
	return nil
}

// ArrayExists reports whether name has ever been created (and not fully
// unset).
func (s *Store) ArrayExists(name string) bool {
	b := s.bucketFor(name)
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.arrays[name]
	return ok
}

// ArrayReset clears every key in name without deleting the array itself.
func (s *Store) ArrayReset(name string) error {
	return s.withArray(name, true, func(a *array) {
		a.entries = make(map[string]Value)
	})
}

// ArraySize reports the number of keys in name.
func (s *Store) ArraySize(name string) (int, error) {
	var n int
	err := s.withArray(name, false, func(a *array) {
		n = len(a.entries)
	})
	return n, err
}

// ArrayNames returns every key currently set in name.
func (s *Store) ArrayNames(name string) ([]string, error) {
	var names []string
	err := s.withArray(name, false, func(a *array) {
		names = make([]string, 0, len(a.entries))
		for k := range a.entries {
			names = append(names, k)
		}
	})
	return names, err
}

// ArrayGet returns a flattened key/value sequence for every entry in name,
// matching Tcl's `array get` (a flat list, not a Go map, so callers that
// reconstruct a Tcl-style list see a stable key-then-value shape rather
// than Go's randomized map iteration being exposed directly as structure).
func (s *Store) ArrayGet(name string) ([]string, error) {
	var out []string
	err := s.withArray(name, false, func(a *array) {
		out = make([]string, 0, len(a.entries)*2)
		for k, v := range a.entries {
			out = append(out, k, v.String())
		}
	})
	return out, err
}

// ArraySet bulk-loads a flattened key/value sequence into name, as produced
// by ArrayGet. An odd-length kvs is an error.
func (s *Store) ArraySet(name string, kvs []string) error {
	if len(kvs)%2 != 0 {
		return scripterr.ErrNotFound
	}
	return s.withArray(name, true, func(a *array) {
		for i := 0; i < len(kvs); i += 2 {
			a.entries[kvs[i]] = NewScalar(kvs[i+1])
		}
	})
}

// Unset removes one key from name, or the entire array if key is "".
func (s *Store) Unset(name, key string) error {
	b := s.bucketFor(name)
	b.mu.Lock()
	defer b.mu.Unlock()

	a, ok := b.arrays[name]
	if !ok {
		return scripterr.ErrNotFound
	}
	if key == "" {
		delete(b.arrays, name)
		return nil
	}
	if _, ok := a.entries[key]; !ok {
		return scripterr.ErrNotFound
	}
	delete(a.entries, key)
	return nil
}
