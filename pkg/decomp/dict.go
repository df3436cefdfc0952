package decomp

import "reflect"

// Dict is an insertion-ordered key/value container with keys of any type.
// It is what dict-shaped data decodes into: Go maps cannot preserve
// insertion order or hold arbitrary key types, so the library ships its
// own generic container.
//
// Keys of non-comparable dynamic type (slices, maps, functions) are
// stored but not indexed: they are reachable through [Dict.At] iteration
// while [Dict.Get] reports them absent. Comparable keys behave like map
// keys.
//
// The zero value is not usable - use [NewDict]. Dict is not safe for
// concurrent use.
type Dict struct {
	pairs []Pair
	index map[any]int
}

// Pair is a single key/value entry of a [Dict].
type Pair struct {
	Key   any
	Value any
}

// NewDict creates an empty dict.
func NewDict() *Dict {
	return &Dict{index: make(map[any]int)}
}

// Set binds key to value. A new key is appended; an existing comparable
// key is replaced in place, keeping its insertion position.
func (d *Dict) Set(key, value any) {
	if comparableKey(key) {
		if i, ok := d.index[key]; ok {
			d.pairs[i].Value = value
			return
		}
		d.index[key] = len(d.pairs)
	}
	d.pairs = append(d.pairs, Pair{Key: key, Value: value})
}

// Get returns the value bound to a comparable key.
func (d *Dict) Get(key any) (any, bool) {
	if !comparableKey(key) {
		return nil, false
	}
	i, ok := d.index[key]
	if !ok {
		return nil, false
	}
	return d.pairs[i].Value, true
}

// Len returns the number of entries.
func (d *Dict) Len() int { return len(d.pairs) }

// At returns the i-th entry in insertion order.
func (d *Dict) At(i int) Pair { return d.pairs[i] }

// Pairs returns a copy of the entries in insertion order.
func (d *Dict) Pairs() []Pair {
	out := make([]Pair, len(d.pairs))
	copy(out, d.pairs)
	return out
}

func comparableKey(key any) bool {
	if key == nil {
		return true
	}
	return reflect.TypeOf(key).Comparable()
}
