package engine

import (
	"fmt"
	"math"
	"reflect"
	"sort"

	"github.com/matzehuels/pretree/pkg/basic"
	"github.com/matzehuels/pretree/pkg/decomp"
	"github.com/matzehuels/pretree/pkg/registry"
)

// slot is the destination of one work item's output: an element of a
// sequence under construction, a keyed entry of a mapping, or the root.
type slot struct {
	seq *basic.Sequence
	idx int
	m   *basic.Mapping
	key string
	out *basic.Value
}

func (s slot) assign(v basic.Value) {
	switch {
	case s.out != nil:
		*s.out = v
	case s.seq != nil:
		s.seq.Elems[s.idx] = v
	default:
		s.m.Set(s.key, v)
	}
}

type encFrame struct {
	obj  any
	path *pathNode
	dst  slot
}

type encoder struct {
	reg     *registry.Registry
	visited map[identity]*pathNode
	stack   []encFrame
}

// Preserialize converts an object graph into a basic tree, replacing every
// repeat visit to an identity with a reference node pointing at the first
// visit's path. The registry must cover every non-native type reachable in
// the graph; an unregistered type aborts the call with
// [registry.ErrUnregisteredType] and no partial tree is returned.
//
// The input graph is read-only for the duration of the call and must not
// be mutated concurrently.
func Preserialize(root any, reg *registry.Registry) (basic.Value, error) {
	e := &encoder{reg: reg, visited: make(map[identity]*pathNode)}
	var out basic.Value
	e.stack = append(e.stack, encFrame{obj: root, dst: slot{out: &out}})
	for len(e.stack) > 0 {
		f := e.stack[len(e.stack)-1]
		e.stack = e.stack[:len(e.stack)-1]
		if err := e.encode(f); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// encode processes one work item: emit a reference for a known identity,
// or classify the object and either emit a primitive or allocate a
// container and push child items.
func (e *encoder) encode(f encFrame) error {
	if f.obj == nil {
		f.dst.assign(basic.Null{})
		return nil
	}
	rv := reflect.ValueOf(f.obj)

	if id, ok := identityOf(rv); ok {
		if first, seen := e.visited[id]; seen {
			f.dst.assign(basic.NewRef(first.path().Pointer()))
			return nil
		}
		// Recorded before descending so a self-cycle resolves on its
		// first re-encounter.
		e.visited[id] = f.path
	}

	// A nil pointer is null no matter what its type is; registered types
	// dispatch on non-nil values only.
	if rv.Kind() == reflect.Pointer && rv.IsNil() {
		f.dst.assign(basic.Null{})
		return nil
	}

	if e.reg.Registered(rv.Type()) {
		return e.encodeInstance(f, rv)
	}
	if d, ok := f.obj.(*decomp.Dict); ok {
		return e.encodeDict(f, d.Pairs())
	}

	switch rv.Kind() {
	case reflect.Bool, reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64, reflect.String:
		if rv.Type().PkgPath() != "" {
			break // named scalar type, registration required
		}
		p, err := primitive(rv)
		if err != nil {
			return err
		}
		f.dst.assign(p)
		return nil
	case reflect.Slice, reflect.Array:
		if rv.Type().Name() != "" {
			break
		}
		return e.encodeSequence(f, rv)
	case reflect.Map:
		if rv.Type().Name() != "" {
			break
		}
		return e.encodeDict(f, mapPairs(rv))
	}

	_, err := e.reg.ForType(rv.Type())
	return err
}

func primitive(rv reflect.Value) (basic.Value, error) {
	switch rv.Kind() {
	case reflect.Bool:
		return basic.Bool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return basic.Int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return nil, fmt.Errorf("%w: %d overflows the integer primitive", decomp.ErrDecomposition, u)
		}
		return basic.Int(int64(u)), nil
	case reflect.Float32, reflect.Float64:
		return basic.Float(rv.Float()), nil
	}
	return basic.String(rv.String()), nil
}

func (e *encoder) encodeSequence(f encFrame, rv reflect.Value) error {
	n := rv.Len()
	seq := basic.NewSequence(n)
	f.dst.assign(seq)
	for i := n - 1; i >= 0; i-- {
		e.stack = append(e.stack, encFrame{
			obj:  rv.Index(i).Interface(),
			path: f.path.child(basic.Index(i)),
			dst:  slot{seq: seq, idx: i},
		})
	}
	return nil
}

// encodeInstance decomposes a registered object into a type-tagged
// mapping: positional elements under the catch-all key, named attributes
// under their escaped names.
func (e *encoder) encodeInstance(f encFrame, rv reflect.Value) error {
	reg, err := e.reg.ForType(rv.Type())
	if err != nil {
		return err
	}
	dec, err := reg.Decomposer.Decompose(f.obj)
	if err != nil {
		return err
	}

	m := basic.NewMapping()
	m.Set(basic.TypeKey, basic.String(reg.Name))
	if reg.Version != 0 {
		m.Set(basic.VersionKey, basic.Int(reg.Version))
	}
	f.dst.assign(m)

	var children []encFrame
	if dec.Elems != nil {
		seq := basic.NewSequence(len(dec.Elems))
		m.Set(basic.DataKey, seq)
		base := f.path.child(basic.Key(basic.DataKey))
		for i, elem := range dec.Elems {
			children = append(children, encFrame{
				obj:  elem,
				path: base.child(basic.Index(i)),
				dst:  slot{seq: seq, idx: i},
			})
		}
	}
	for _, fl := range dec.Fields {
		key, ok := basic.EscapeKey(fl.Name)
		if !ok {
			return fmt.Errorf("%w: attribute name %q of %s is not representable", decomp.ErrDecomposition, fl.Name, reg.Name)
		}
		if m.Has(key) {
			return fmt.Errorf("%w: duplicate attribute %q of %s", decomp.ErrDecomposition, fl.Name, reg.Name)
		}
		m.Set(key, nil)
		children = append(children, encFrame{
			obj:  fl.Value,
			path: f.path.child(basic.Key(key)),
			dst:  slot{m: m, key: key},
		})
	}
	pushReversed(e, children)
	return nil
}

// encodeDict writes a generic key/value container. When every key is a
// string representable as a direct mapping key, entries are written
// directly under their escaped keys; otherwise the whole container routes
// through the catch-all association list, where each key and each value
// is an independently traversed node subject to the same cycle and
// sharing detection.
func (e *encoder) encodeDict(f encFrame, pairs []decomp.Pair) error {
	m := basic.NewMapping()
	m.Set(basic.TypeKey, basic.String(registry.DictName))
	f.dst.assign(m)

	direct := true
	keys := make([]string, len(pairs))
	for i, p := range pairs {
		s, isStr := stringKey(p.Key)
		if !isStr {
			direct = false
			break
		}
		escaped, ok := basic.EscapeKey(s)
		if !ok {
			direct = false
			break
		}
		keys[i] = escaped
	}

	var children []encFrame
	if direct {
		for i, p := range pairs {
			m.Set(keys[i], nil)
			children = append(children, encFrame{
				obj:  p.Value,
				path: f.path.child(basic.Key(keys[i])),
				dst:  slot{m: m, key: keys[i]},
			})
		}
	} else {
		outer := basic.NewSequence(len(pairs))
		m.Set(basic.DataKey, outer)
		base := f.path.child(basic.Key(basic.DataKey))
		for i, p := range pairs {
			pairSeq := basic.NewSequence(2)
			outer.Elems[i] = pairSeq
			pb := base.child(basic.Index(i))
			children = append(children,
				encFrame{obj: p.Key, path: pb.child(basic.Index(0)), dst: slot{seq: pairSeq, idx: 0}},
				encFrame{obj: p.Value, path: pb.child(basic.Index(1)), dst: slot{seq: pairSeq, idx: 1}},
			)
		}
	}
	pushReversed(e, children)
	return nil
}

// pushReversed pushes children so the LIFO work stack visits them in
// their natural order, keeping first-visit paths identical to what a
// depth-first recursion would assign.
func pushReversed(e *encoder, children []encFrame) {
	for i := len(children) - 1; i >= 0; i-- {
		e.stack = append(e.stack, children[i])
	}
}

func stringKey(key any) (string, bool) {
	if key == nil {
		return "", false
	}
	rv := reflect.ValueOf(key)
	if rv.Kind() != reflect.String {
		return "", false
	}
	return rv.String(), true
}

// mapPairs snapshots a reflect map in a deterministic order: Go map
// iteration is randomized, so entries sort by key (lexically for string
// keys, by formatted representation otherwise).
func mapPairs(rv reflect.Value) []decomp.Pair {
	keys := rv.MapKeys()
	sort.Slice(keys, func(i, j int) bool {
		return mapKeyOrder(keys[i]) < mapKeyOrder(keys[j])
	})
	pairs := make([]decomp.Pair, len(keys))
	for i, k := range keys {
		pairs[i] = decomp.Pair{Key: k.Interface(), Value: rv.MapIndex(k).Interface()}
	}
	return pairs
}

func mapKeyOrder(k reflect.Value) string {
	if k.Kind() == reflect.String {
		return k.String()
	}
	return fmt.Sprintf("%v\x00%T", k.Interface(), k.Interface())
}
