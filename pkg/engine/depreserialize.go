package engine

import (
	"fmt"

	"github.com/matzehuels/pretree/pkg/basic"
	"github.com/matzehuels/pretree/pkg/decomp"
	"github.com/matzehuels/pretree/pkg/registry"
)

type decoder struct {
	reg  *registry.Registry
	root basic.Value

	// placeholder table: container node -> the instance allocated for it.
	// Entries are added the moment an instance is allocated, before its
	// attributes are filled, so references into not-yet-finished
	// ancestors resolve to the correct instance.
	built map[basic.Value]any

	// order lists every distinct container node in allocation order.
	order []basic.Value
}

// Depreserialize reconstructs an object graph from a basic tree. Decoding
// is two-phase: first every non-reference container node is allocated
// (instances via their reconstructor's allocate phase) into the
// placeholder table; then children are linked, resolving `$ref` pointers
// through the table - including references to instances still under
// construction - and instances are finalized with their populate phase.
//
// The caller owns the returned graph. On any failure no partial graph is
// returned.
func Depreserialize(tree basic.Value, reg *registry.Registry) (any, error) {
	if tree == nil {
		return nil, nil
	}
	d := &decoder{reg: reg, root: tree, built: make(map[basic.Value]any)}
	if err := d.allocate(); err != nil {
		return nil, err
	}
	if err := d.link(); err != nil {
		return nil, err
	}
	return d.resolve(tree)
}

// allocate walks the tree with an explicit stack and creates a bare value
// for every non-reference container node.
func (d *decoder) allocate() error {
	stack := []basic.Value{d.root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		switch node := n.(type) {
		case *basic.Sequence:
			if _, dup := d.built[node]; dup {
				continue
			}
			d.built[node] = make([]any, len(node.Elems))
			d.order = append(d.order, node)
			for _, c := range node.Elems {
				stack = append(stack, c)
			}
		case *basic.Mapping:
			if _, isRef := basic.RefTarget(node); isRef {
				continue
			}
			if _, dup := d.built[node]; dup {
				continue
			}
			obj, err := d.allocateMapping(node)
			if err != nil {
				return err
			}
			d.built[node] = obj
			d.order = append(d.order, node)
			for i := 0; i < node.Len(); i++ {
				if e := node.At(i); e.Key != basic.TypeKey && e.Key != basic.VersionKey {
					stack = append(stack, e.Value)
				}
			}
		}
	}
	return nil
}

func (d *decoder) allocateMapping(node *basic.Mapping) (any, error) {
	name, version, err := typeTag(node)
	if err != nil {
		return nil, err
	}
	if name == registry.DictName {
		return decomp.NewDict(), nil
	}
	reg, err := d.lookupDecode(name, version)
	if err != nil {
		return nil, err
	}
	return reg.Reconstructor.Allocate()
}

// link fills every allocated container with its resolved children and
// finalizes instances. Linking runs in reverse allocation order: every
// container node appears in the tree exactly once (sharing goes through
// reference nodes), so a child is always allocated after its parent and
// reverse order completes children before a parent's populate phase
// copies from them. Cyclic references bind through the placeholder
// table and may observe an instance that is still mid-population.
func (d *decoder) link() error {
	for i := len(d.order) - 1; i >= 0; i-- {
		switch node := d.order[i].(type) {
		case *basic.Sequence:
			s := d.built[node].([]any)
			for i, c := range node.Elems {
				v, err := d.resolve(c)
				if err != nil {
					return err
				}
				s[i] = v
			}
		case *basic.Mapping:
			if err := d.linkMapping(node); err != nil {
				return err
			}
		}
	}
	return nil
}

func (d *decoder) linkMapping(node *basic.Mapping) error {
	name, version, err := typeTag(node)
	if err != nil {
		return err
	}
	if name == registry.DictName {
		return d.linkDict(node)
	}

	reg, err := d.lookupDecode(name, version)
	if err != nil {
		return err
	}
	var dec decomp.Decomposition
	for i := 0; i < node.Len(); i++ {
		e := node.At(i)
		switch e.Key {
		case basic.TypeKey, basic.VersionKey:
		case basic.RefKey:
			return fmt.Errorf("%w: %s key inside a populated mapping", ErrMalformedTree, basic.RefKey)
		case basic.DataKey:
			elems, err := d.resolveElems(e.Value)
			if err != nil {
				return err
			}
			dec.Elems = elems
		default:
			v, err := d.resolve(e.Value)
			if err != nil {
				return err
			}
			dec.Fields = append(dec.Fields, decomp.Field{Name: basic.UnescapeKey(e.Key), Value: v})
		}
	}
	return reg.Reconstructor.Populate(d.built[node], dec)
}

// linkDict rebuilds a generic key/value container, pulling pairs from
// either the direct mapping entries (un-escaping reserved-prefix
// collisions) or the catch-all association list, preserving original key
// types and insertion order.
func (d *decoder) linkDict(node *basic.Mapping) error {
	dict := d.built[node].(*decomp.Dict)
	for i := 0; i < node.Len(); i++ {
		e := node.At(i)
		switch e.Key {
		case basic.TypeKey, basic.VersionKey:
		case basic.RefKey:
			return fmt.Errorf("%w: %s key inside a populated mapping", ErrMalformedTree, basic.RefKey)
		case basic.DataKey:
			outer, ok := e.Value.(*basic.Sequence)
			if !ok {
				return fmt.Errorf("%w: catch-all value is %s, want sequence", ErrMalformedTree, kindOf(e.Value))
			}
			for _, p := range outer.Elems {
				pair, ok := p.(*basic.Sequence)
				if !ok || len(pair.Elems) != 2 {
					return fmt.Errorf("%w: catch-all entries must be two-element sequences", ErrMalformedTree)
				}
				key, err := d.resolve(pair.Elems[0])
				if err != nil {
					return err
				}
				value, err := d.resolve(pair.Elems[1])
				if err != nil {
					return err
				}
				dict.Set(key, value)
			}
		default:
			v, err := d.resolve(e.Value)
			if err != nil {
				return err
			}
			dict.Set(basic.UnescapeKey(e.Key), v)
		}
	}
	return nil
}

func (d *decoder) resolveElems(v basic.Value) ([]any, error) {
	seq, ok := v.(*basic.Sequence)
	if !ok {
		return nil, fmt.Errorf("%w: catch-all value is %s, want sequence", ErrMalformedTree, kindOf(v))
	}
	elems := make([]any, len(seq.Elems))
	for i, c := range seq.Elems {
		e, err := d.resolve(c)
		if err != nil {
			return nil, err
		}
		elems[i] = e
	}
	return elems, nil
}

// resolve produces the decoded value for one node: primitives decode in
// place, containers look up their placeholder, and reference nodes follow
// their pointer. A reference may bind to a target that is still
// mid-population - that is the cyclic case.
func (d *decoder) resolve(v basic.Value) (any, error) {
	switch node := v.(type) {
	case nil:
		return nil, fmt.Errorf("%w: missing node", ErrMalformedTree)
	case basic.Null:
		return nil, nil
	case basic.Bool:
		return bool(node), nil
	case basic.Int:
		return int64(node), nil
	case basic.Float:
		return float64(node), nil
	case basic.String:
		return string(node), nil
	case *basic.Sequence:
		return d.built[node], nil
	case *basic.Mapping:
		ptr, isRef := basic.RefTarget(node)
		if !isRef {
			return d.built[node], nil
		}
		path, err := basic.ParsePointer(ptr)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDanglingReference, err)
		}
		target, err := basic.Resolve(d.root, path)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDanglingReference, err)
		}
		if _, refAgain := basic.RefTarget(target); refAgain {
			return nil, fmt.Errorf("%w: %s points at another reference", ErrDanglingReference, ptr)
		}
		switch target.(type) {
		case *basic.Sequence, *basic.Mapping:
			obj, ok := d.built[target]
			if !ok {
				return nil, fmt.Errorf("%w: %s target never materializes", ErrDanglingReference, ptr)
			}
			return obj, nil
		}
		return d.resolve(target)
	}
	return nil, fmt.Errorf("%w: unsupported node", ErrMalformedTree)
}

func (d *decoder) lookupDecode(name string, version int) (*registry.Registration, error) {
	if version < 0 {
		def, ok := d.reg.DefaultVersion(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", registry.ErrUnknownTypeVersion, name)
		}
		version = def
	}
	return d.reg.ForName(name, version)
}

// typeTag extracts the `$type` name and `$version` of a mapping.
// A version of -1 means the tag is absent and the registry default
// applies.
func typeTag(node *basic.Mapping) (string, int, error) {
	tv, ok := node.Get(basic.TypeKey)
	if !ok {
		return "", 0, fmt.Errorf("%w: mapping without %s", ErrMalformedTree, basic.TypeKey)
	}
	name, ok := tv.(basic.String)
	if !ok {
		return "", 0, fmt.Errorf("%w: %s is %s, want string", ErrMalformedTree, basic.TypeKey, kindOf(tv))
	}
	version := -1
	if vv, present := node.Get(basic.VersionKey); present {
		vi, ok := vv.(basic.Int)
		if !ok {
			return "", 0, fmt.Errorf("%w: %s is %s, want integer", ErrMalformedTree, basic.VersionKey, kindOf(vv))
		}
		version = int(vi)
	}
	return string(name), version, nil
}

func kindOf(v basic.Value) string {
	if v == nil {
		return "missing"
	}
	return v.Kind().String()
}
