package engine

import (
	"fmt"

	"github.com/matzehuels/pretree/pkg/basic"
)

// Verify checks the structural invariants of a tree without a registry:
// tag keys have the right kinds, `$ref` stands alone in its mapping, and
// every reference resolves to a container that is not itself a
// reference. It is what the CLI runs on documents whose types live in
// someone else's program.
//
// Verify does not check that type names are registered; use
// [Depreserialize] for a full check against a registry.
func Verify(tree basic.Value) error {
	type item struct {
		v    basic.Value
		path *pathNode
	}
	stack := []item{{v: tree}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch node := it.v.(type) {
		case *basic.Sequence:
			for i := len(node.Elems) - 1; i >= 0; i-- {
				stack = append(stack, item{node.Elems[i], it.path.child(basic.Index(i))})
			}
		case *basic.Mapping:
			if ptr, isRef := basic.RefTarget(node); isRef {
				if err := verifyRef(tree, ptr, it.path); err != nil {
					return err
				}
				continue
			}
			if node.Has(basic.RefKey) {
				return fmt.Errorf("%w: %s amid other keys at %s", ErrMalformedTree, basic.RefKey, it.path.path().Pointer())
			}
			if tv, ok := node.Get(basic.TypeKey); ok {
				if _, isStr := tv.(basic.String); !isStr {
					return fmt.Errorf("%w: %s is %s at %s, want string", ErrMalformedTree, basic.TypeKey, kindOf(tv), it.path.path().Pointer())
				}
			}
			if vv, ok := node.Get(basic.VersionKey); ok {
				if _, isInt := vv.(basic.Int); !isInt {
					return fmt.Errorf("%w: %s is %s at %s, want integer", ErrMalformedTree, basic.VersionKey, kindOf(vv), it.path.path().Pointer())
				}
			}
			for i := node.Len() - 1; i >= 0; i-- {
				e := node.At(i)
				stack = append(stack, item{e.Value, it.path.child(basic.Key(e.Key))})
			}
		}
	}
	return nil
}

func verifyRef(root basic.Value, ptr string, at *pathNode) error {
	path, err := basic.ParsePointer(ptr)
	if err != nil {
		return fmt.Errorf("%w: %s at %s: %v", ErrDanglingReference, ptr, at.path().Pointer(), err)
	}
	target, err := basic.Resolve(root, path)
	if err != nil {
		return fmt.Errorf("%w: %s at %s: %v", ErrDanglingReference, ptr, at.path().Pointer(), err)
	}
	switch target.(type) {
	case *basic.Sequence, *basic.Mapping:
	default:
		return fmt.Errorf("%w: %s at %s points at a primitive", ErrDanglingReference, ptr, at.path().Pointer())
	}
	if _, isRef := basic.RefTarget(target); isRef {
		return fmt.Errorf("%w: %s at %s points at another reference", ErrDanglingReference, ptr, at.path().Pointer())
	}
	return nil
}
