// Package bsondoc serializes basic trees to and from BSON documents.
//
// Mappings convert to [bson.D] so entry order survives storage, and
// sequences convert to [bson.A]. The package is the storage-side
// counterpart of jsondoc: the same tree can go to a wire document or
// into a Mongo collection without reshaping. Both converters drive an
// explicit stack, so tree depth is bounded by memory, not by the
// goroutine stack.
package bsondoc

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/matzehuels/pretree/pkg/basic"
)

// ErrNotDocument is returned by [Marshal] when the tree root is not a
// mapping: BSON can only carry a document at the top level.
var ErrNotDocument = errors.New("tree root is not a mapping")

// ErrUnsupportedValue is returned by [FromBSON] for BSON values with no
// basic-tree counterpart.
var ErrUnsupportedValue = errors.New("value not representable in a basic tree")

// toSlot is one pending node of a tree-to-BSON walk, carrying the slot
// in the already-allocated parent container that receives the result.
// A nil arr and doc means the node is the root.
type toSlot struct {
	src basic.Value
	arr bson.A
	doc bson.D
	idx int
}

func (s *toSlot) put(v any, root *any) {
	switch {
	case s.arr != nil:
		s.arr[s.idx] = v
	case s.doc != nil:
		s.doc[s.idx].Value = v
	default:
		*root = v
	}
}

// ToBSON converts a basic tree to a BSON-compatible value: [bson.D] for
// mappings, [bson.A] for sequences, and plain Go scalars otherwise.
func ToBSON(tree basic.Value) (any, error) {
	var root any
	stack := []toSlot{{src: tree}}
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		switch node := s.src.(type) {
		case nil, basic.Null:
			s.put(nil, &root)
		case basic.Bool:
			s.put(bool(node), &root)
		case basic.Int:
			s.put(int64(node), &root)
		case basic.Float:
			s.put(float64(node), &root)
		case basic.String:
			s.put(string(node), &root)
		case *basic.Sequence:
			arr := make(bson.A, len(node.Elems))
			s.put(arr, &root)
			for i, e := range node.Elems {
				stack = append(stack, toSlot{src: e, arr: arr, idx: i})
			}
		case *basic.Mapping:
			doc := make(bson.D, node.Len())
			s.put(doc, &root)
			for i := 0; i < node.Len(); i++ {
				e := node.At(i)
				doc[i].Key = e.Key
				stack = append(stack, toSlot{src: e.Value, doc: doc, idx: i})
			}
		default:
			return nil, fmt.Errorf("%w: %T", ErrUnsupportedValue, s.src)
		}
	}
	return root, nil
}

// fromSlot is one pending value of a BSON-to-tree walk, carrying the
// slot in the already-allocated parent node that receives the result.
type fromSlot struct {
	src any
	seq *basic.Sequence
	m   *basic.Mapping
	idx int
	key string
}

func (s *fromSlot) put(v basic.Value, root *basic.Value) {
	switch {
	case s.seq != nil:
		s.seq.Elems[s.idx] = v
	case s.m != nil:
		s.m.Set(s.key, v)
	default:
		*root = v
	}
}

// FromBSON converts a decoded BSON value back into a basic tree. Both
// int32 and int64 become integers; nested documents must be [bson.D] so
// entry order is preserved.
func FromBSON(v any) (basic.Value, error) {
	var root basic.Value
	stack := []fromSlot{{src: v}}
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		switch t := s.src.(type) {
		case nil:
			s.put(basic.Null{}, &root)
		case bool:
			s.put(basic.Bool(t), &root)
		case int32:
			s.put(basic.Int(t), &root)
		case int64:
			s.put(basic.Int(t), &root)
		case int:
			s.put(basic.Int(t), &root)
		case float64:
			s.put(basic.Float(t), &root)
		case string:
			s.put(basic.String(t), &root)
		case bson.A:
			seq := basic.NewSequence(len(t))
			s.put(seq, &root)
			for i, e := range t {
				stack = append(stack, fromSlot{src: e, seq: seq, idx: i})
			}
		case bson.D:
			m := basic.NewMapping()
			s.put(m, &root)
			// Entering keys up front fixes their order; Set later
			// replaces the value in place.
			for _, e := range t {
				m.Set(e.Key, basic.Null{})
			}
			for _, e := range t {
				stack = append(stack, fromSlot{src: e.Value, m: m, key: e.Key})
			}
		case bson.M:
			return nil, fmt.Errorf("%w: unordered document (decode into bson.D)", ErrUnsupportedValue)
		default:
			return nil, fmt.Errorf("%w: %T", ErrUnsupportedValue, s.src)
		}
	}
	return root, nil
}

// Marshal renders a mapping-rooted tree as a BSON document.
func Marshal(tree basic.Value) ([]byte, error) {
	if _, ok := tree.(*basic.Mapping); !ok {
		return nil, fmt.Errorf("%w: %T", ErrNotDocument, tree)
	}
	doc, err := ToBSON(tree)
	if err != nil {
		return nil, err
	}
	data, err := bson.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}
	return data, nil
}

// Unmarshal parses a BSON document into a mapping-rooted basic tree.
func Unmarshal(data []byte) (basic.Value, error) {
	var doc bson.D
	if err := bson.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}
	return FromBSON(doc)
}
