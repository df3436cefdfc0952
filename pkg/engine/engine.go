// Package engine implements the two graph transformers: Preserialize turns
// an arbitrary, possibly cyclic object graph into a basic tree, and
// Depreserialize reconstructs the graph from such a tree.
//
// Both directions run as explicit work-stack machines, so native stack
// usage is independent of graph depth. Sharing and cycles are detected by
// object identity on the way in and resolved through reference nodes
// (`$ref` pointers) on the way out; any object reachable by multiple paths
// materializes exactly once.
//
// The engines handle primitives, unnamed slices, arrays and maps, and the
// insertion-ordered [decomp.Dict] natively. Every other type must be
// registered explicitly - there is no best-effort fallback.
package engine

import (
	"errors"
	"reflect"

	"github.com/matzehuels/pretree/pkg/basic"
	"github.com/matzehuels/pretree/pkg/decomp"
	"github.com/matzehuels/pretree/pkg/registry"
)

var (
	// ErrDanglingReference is returned by [Depreserialize] when a `$ref`
	// pointer does not address a real node: malformed syntax, a missing
	// path, or a reference whose target is itself a reference.
	ErrDanglingReference = errors.New("dangling reference")

	// ErrMalformedTree is returned by [Depreserialize] for structural
	// format violations that are not reference failures: a mapping
	// without `$type`, a non-integer `$version`, or a broken catch-all
	// association list.
	ErrMalformedTree = errors.New("malformed tree")
)

// identity keys the visited table. Only pointer-shaped values carry
// identity in Go: pointers, maps and slices. Scalars and strings are
// immutable values and are never deduplicated.
type identity struct {
	ptr    uintptr
	length int // slices only: distinguishes prefixes of one array
	typ    reflect.Type
}

func identityOf(rv reflect.Value) (identity, bool) {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.UnsafePointer, reflect.Chan, reflect.Func:
		if rv.IsNil() {
			return identity{}, false
		}
		return identity{ptr: rv.Pointer(), typ: rv.Type()}, true
	case reflect.Slice:
		if rv.IsNil() || rv.Len() == 0 {
			return identity{}, false
		}
		return identity{ptr: rv.Pointer(), length: rv.Len(), typ: rv.Type()}, true
	}
	return identity{}, false
}

// pathNode is a shared-prefix path representation: each traversal frame
// extends its parent's node by one step, so recording a path per visited
// object costs O(1). A nil node is the root. Full paths materialize only
// when a reference is emitted.
type pathNode struct {
	parent *pathNode
	step   basic.Step
}

func (n *pathNode) child(step basic.Step) *pathNode {
	return &pathNode{parent: n, step: step}
}

func (n *pathNode) path() basic.Path {
	depth := 0
	for c := n; c != nil; c = c.parent {
		depth++
	}
	p := make(basic.Path, depth)
	for c := n; c != nil; c = c.parent {
		depth--
		p[depth] = c.step
	}
	return p
}

// RegisterStruct registers the reflect-based struct codec for *T under
// (name, version). Instances of T must be passed to [Preserialize] as
// pointers. Fields named in ignore are excluded from decomposition.
func RegisterStruct[T any](r *registry.Registry, name string, version int, ignore ...string) error {
	c, err := decomp.ForStruct((*T)(nil), ignore...)
	if err != nil {
		return err
	}
	return r.Register(c.Type(), name, version, c, c)
}

// RegisterSeq registers a sequence-coercible codec for typ.
func RegisterSeq(r *registry.Registry, typ reflect.Type, name string, version int, f decomp.SeqFuncs) error {
	return r.Register(typ, name, version, f, f)
}

// RegisterFuncs registers a custom codec for typ.
func RegisterFuncs(r *registry.Registry, typ reflect.Type, name string, version int, f decomp.Funcs) error {
	return r.Register(typ, name, version, f, f)
}

// Stats summarizes the shape of a basic tree.
type Stats struct {
	Nodes     int // every node, containers included
	Sequences int
	Mappings  int // non-reference mappings
	Refs      int // reference nodes
	MaxDepth  int // 0 for a bare primitive root
}

// Stat walks tree iteratively and counts its nodes.
func Stat(tree basic.Value) Stats {
	var s Stats
	type item struct {
		v     basic.Value
		depth int
	}
	stack := []item{{tree, 0}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if it.v == nil {
			continue
		}
		s.Nodes++
		if it.depth > s.MaxDepth {
			s.MaxDepth = it.depth
		}
		switch node := it.v.(type) {
		case *basic.Sequence:
			s.Sequences++
			for _, c := range node.Elems {
				stack = append(stack, item{c, it.depth + 1})
			}
		case *basic.Mapping:
			if _, isRef := basic.RefTarget(node); isRef {
				s.Refs++
				continue
			}
			s.Mappings++
			for i := 0; i < node.Len(); i++ {
				stack = append(stack, item{node.At(i).Value, it.depth + 1})
			}
		}
	}
	return s
}
