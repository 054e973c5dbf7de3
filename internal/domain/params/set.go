// Package params models the search parameter set exchanged between the
// results page, facet links and the persisted search session.
//
// A Set behaves like a map: copies of the pointer share storage. Operations
// that derive a new set (Clone, Except, Merge, Sanitize, Reset) always return
// a deep copy, so callers holding a set read from a stored session can derive
// from it without corrupting the stored value.
package params

import (
	"slices"
	"strconv"
)

// FacetKey is the key holding the facet sub-map (field -> active values).
const FacetKey = "f"

// Value is a parameter value: Scalar, List or a nested *Set.
type Value interface {
	isEmpty() bool
	clone() Value
	equal(other Value) bool
}

// Scalar is a single string value.
type Scalar string

// Int returns the Scalar form of n.
func Int(n int) Scalar { return Scalar(strconv.Itoa(n)) }

func (s Scalar) isEmpty() bool { return s == "" }
func (s Scalar) clone() Value  { return s }

func (s Scalar) equal(other Value) bool {
	o, ok := other.(Scalar)
	return ok && o == s
}

// List is an ordered list of string values.
type List []string

func (l List) isEmpty() bool { return len(l) == 0 }
func (l List) clone() Value  { return slices.Clone(l) }

func (l List) equal(other Value) bool {
	o, ok := other.(List)
	return ok && slices.Equal(l, o)
}

// Set is an insertion-ordered mapping from keys to values.
// The zero value is not usable; create sets with New.
type Set struct {
	keys   []string
	values map[string]Value
}

// New creates an empty Set.
func New() *Set {
	return &Set{values: make(map[string]Value)}
}

// Len returns the number of keys. A nil set has length 0.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.keys)
}

// Keys returns the keys in insertion order.
func (s *Set) Keys() []string {
	if s == nil {
		return nil
	}
	return slices.Clone(s.keys)
}

// Has reports whether key is present (even with a nil value).
func (s *Set) Has(key string) bool {
	if s == nil {
		return false
	}
	_, ok := s.values[key]
	return ok
}

// Get returns the value stored at key.
func (s *Set) Get(key string) (Value, bool) {
	if s == nil {
		return nil, false
	}
	v, ok := s.values[key]
	return v, ok
}

// Scalar returns the scalar at key, or "" when absent or not a scalar.
func (s *Set) Scalar(key string) string {
	v, _ := s.Get(key)
	sc, _ := v.(Scalar)
	return string(sc)
}

// List returns a copy of the list at key. A scalar is returned as a
// one-element list; anything else yields nil.
func (s *Set) List(key string) List {
	v, _ := s.Get(key)
	switch t := v.(type) {
	case List:
		return slices.Clone(t)
	case Scalar:
		return List{string(t)}
	}
	return nil
}

// Nested returns the nested set at key, or nil. The returned set is shared
// with s; Clone it before mutating.
func (s *Set) Nested(key string) *Set {
	v, _ := s.Get(key)
	n, _ := v.(*Set)
	return n
}

// Put stores v at key, keeping the original position of an existing key.
func (s *Set) Put(key string, v Value) *Set {
	if _, ok := s.values[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.values[key] = v
	return s
}

// Delete removes keys in place.
func (s *Set) Delete(keys ...string) *Set {
	if s == nil {
		return s
	}
	for _, k := range keys {
		if _, ok := s.values[k]; !ok {
			continue
		}
		delete(s.values, k)
		s.keys = slices.DeleteFunc(s.keys, func(x string) bool { return x == k })
	}
	return s
}

// Clone returns a deep copy. Cloning nil yields an empty set.
func (s *Set) Clone() *Set {
	out := New()
	if s == nil {
		return out
	}
	out.keys = slices.Clone(s.keys)
	for k, v := range s.values {
		if v == nil {
			out.values[k] = nil
			continue
		}
		out.values[k] = v.clone()
	}
	return out
}

// Except returns a deep copy without the given keys.
func (s *Set) Except(keys ...string) *Set {
	return s.Clone().Delete(keys...)
}

// Merge returns a deep copy of s with every entry of other stored over it.
// The merge is shallow: a nested set in other replaces the one in s.
func (s *Set) Merge(other *Set) *Set {
	out := s.Clone()
	if other == nil {
		return out
	}
	for _, k := range other.keys {
		v := other.values[k]
		if v != nil {
			v = v.clone()
		}
		out.Put(k, v)
	}
	return out
}

// Equal reports whether both sets hold equal values for the same keys,
// regardless of key order.
func (s *Set) Equal(other *Set) bool {
	if s.Len() != other.Len() {
		return false
	}
	if s == nil {
		return true
	}
	for k, v := range s.values {
		ov, ok := other.values[k]
		if !ok || !ValuesEqual(v, ov) {
			return false
		}
	}
	return true
}

// ValuesEqual compares two possibly-absent values.
func ValuesEqual(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.equal(b)
}

func (s *Set) isEmpty() bool { return s.Len() == 0 }

func (s *Set) clone() Value { return s.Clone() }

func (s *Set) equal(other Value) bool {
	o, ok := other.(*Set)
	return ok && s.Equal(o)
}
