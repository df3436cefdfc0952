// Package basic defines the tree representation shared by the preserialize
// and depreserialize engines and by the document codecs.
//
// A tree is built from three variants: primitives (null, bool, integer,
// float, text), ordered sequences, and insertion-ordered mappings with
// unique text keys. Mappings may carry the reserved metadata keys `$type`,
// `$version` and `$ref`, which are always interpreted before ordinary keys.
//
// The package is pure vocabulary: construction, inspection, structural
// equality and path addressing. It carries no traversal or registry logic.
package basic

// Kind identifies the variant stored in a [Value].
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindSequence
	KindMapping
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	}
	return "invalid"
}

// Value is one node of a basic tree. Exactly seven concrete types implement
// it: [Null], [Bool], [Int], [Float], [String], [*Sequence] and [*Mapping].
// Containers are pointer types so that a node has a stable identity for the
// lifetime of its tree.
type Value interface {
	Kind() Kind
}

// Null is the null primitive.
type Null struct{}

// Bool is the boolean primitive.
type Bool bool

// Int is the integer primitive. All Go integer widths normalize to int64.
type Int int64

// Float is the floating-point primitive.
type Float float64

// String is the text primitive.
type String string

// Sequence is an ordered list of values.
//
// Elems may be mutated in place while a tree is under construction; once a
// tree has been handed to a consumer it is treated as frozen.
type Sequence struct {
	Elems []Value
}

func (Null) Kind() Kind      { return KindNull }
func (Bool) Kind() Kind      { return KindBool }
func (Int) Kind() Kind       { return KindInt }
func (Float) Kind() Kind     { return KindFloat }
func (String) Kind() Kind    { return KindString }
func (*Sequence) Kind() Kind { return KindSequence }
func (*Mapping) Kind() Kind  { return KindMapping }

// NewSequence creates a sequence with n empty (nil) element slots.
func NewSequence(n int) *Sequence {
	return &Sequence{Elems: make([]Value, n)}
}

// Seq creates a sequence from the given elements.
func Seq(elems ...Value) *Sequence {
	return &Sequence{Elems: elems}
}

// Entry is a single key/value pair of a [Mapping].
type Entry struct {
	Key   string
	Value Value
}

// Mapping is an ordered set of key/value pairs with unique text keys.
// Iteration order is insertion order; replacing an existing key keeps its
// original position.
//
// The zero value is not usable - use [NewMapping].
type Mapping struct {
	entries []Entry
	index   map[string]int
}

// NewMapping creates an empty mapping.
func NewMapping() *Mapping {
	return &Mapping{index: make(map[string]int)}
}

// Map creates a mapping from the given entries in order.
// Duplicate keys overwrite earlier entries in place.
func Map(entries ...Entry) *Mapping {
	m := NewMapping()
	for _, e := range entries {
		m.Set(e.Key, e.Value)
	}
	return m
}

// Set binds key to value. A new key is appended; an existing key is
// replaced without changing its position.
func (m *Mapping) Set(key string, value Value) {
	if i, ok := m.index[key]; ok {
		m.entries[i].Value = value
		return
	}
	m.index[key] = len(m.entries)
	m.entries = append(m.entries, Entry{Key: key, Value: value})
}

// Get returns the value bound to key and whether the key is present.
func (m *Mapping) Get(key string) (Value, bool) {
	i, ok := m.index[key]
	if !ok {
		return nil, false
	}
	return m.entries[i].Value, true
}

// Has reports whether key is present.
func (m *Mapping) Has(key string) bool {
	_, ok := m.index[key]
	return ok
}

// Len returns the number of entries.
func (m *Mapping) Len() int { return len(m.entries) }

// At returns the i-th entry in insertion order.
func (m *Mapping) At(i int) Entry { return m.entries[i] }

// Entries returns a copy of the entries in insertion order.
func (m *Mapping) Entries() []Entry {
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

// NewRef creates a reference node: a mapping whose sole entry is the
// reserved key `$ref` bound to the given pointer expression.
func NewRef(pointer string) *Mapping {
	m := NewMapping()
	m.Set(RefKey, String(pointer))
	return m
}

// RefTarget reports whether v is a reference node, and if so returns its
// pointer expression. A reference node is a mapping containing only `$ref`
// with a text value.
func RefTarget(v Value) (string, bool) {
	m, ok := v.(*Mapping)
	if !ok || m.Len() != 1 {
		return "", false
	}
	s, ok := m.entries[0].Value.(String)
	if !ok || m.entries[0].Key != RefKey {
		return "", false
	}
	return string(s), true
}

// Equal reports structural equality of two trees. Mappings compare
// order-sensitively: equal mappings have the same entries in the same
// insertion order. Reference nodes compare by pointer expression like any
// other mapping.
//
// Equal walks with an explicit stack, so arbitrarily deep trees compare
// without native stack growth. Trees are assumed acyclic (reference nodes
// are leaves).
func Equal(a, b Value) bool {
	type pair struct{ a, b Value }
	stack := []pair{{a, b}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if p.a == nil || p.b == nil {
			if p.a != p.b {
				return false
			}
			continue
		}
		if p.a.Kind() != p.b.Kind() {
			return false
		}
		switch av := p.a.(type) {
		case Null:
		case Bool, Int, Float, String:
			if p.a != p.b {
				return false
			}
		case *Sequence:
			bv := p.b.(*Sequence)
			if len(av.Elems) != len(bv.Elems) {
				return false
			}
			for i := range av.Elems {
				stack = append(stack, pair{av.Elems[i], bv.Elems[i]})
			}
		case *Mapping:
			bv := p.b.(*Mapping)
			if av.Len() != bv.Len() {
				return false
			}
			for i := range av.entries {
				if av.entries[i].Key != bv.entries[i].Key {
					return false
				}
				stack = append(stack, pair{av.entries[i].Value, bv.entries[i].Value})
			}
		}
	}
	return true
}
