// Package decomp defines the per-type plugin capability that drives
// decomposition and reconstruction: a [Decomposer] extracts an ordered
// attribute (or element) sequence from an instance, and a [Reconstructor]
// rebuilds an instance from one in two phases.
//
// The two-phase reconstruction contract exists so that an instance can be
// referenced by its own descendants: Allocate produces an addressable but
// empty instance that the depreserialize engine registers before any of
// the instance's attributes are resolved; Populate fills the fields once
// every child value exists.
//
// Three variants are provided: [StructCodec] (reflection over struct
// fields), [SeqFuncs] (sequence-coercible types such as sets), and [Funcs]
// (fully custom pairs).
package decomp

import "errors"

// Sentinel errors for plugin failures. Plugins wrap these so that the
// engines can propagate them unchanged to the top-level caller.
var (
	// ErrDecomposition is returned when a decomposer cannot handle a
	// particular instance state.
	ErrDecomposition = errors.New("decomposition failed")

	// ErrReconstruction is returned when a reconstructor cannot rebuild
	// an instance from the decoded attribute set.
	ErrReconstruction = errors.New("reconstruction failed")
)

// Field is one named attribute of a decomposed instance.
type Field struct {
	Name  string
	Value any
}

// Decomposition is the ordered output of a [Decomposer]: positional
// elements, named fields, or both. Either slice may be nil.
type Decomposition struct {
	Elems  []any
	Fields []Field
}

// Decomposer extracts the stored state of an instance without invoking
// arbitrary user logic beyond field access.
type Decomposer interface {
	Decompose(obj any) (Decomposition, error)
}

// Reconstructor builds an instance from a decomposition in two phases.
type Reconstructor interface {
	// Allocate returns a bare instance with no field initialization side
	// effects. The engine records it before resolving any attributes, so
	// cyclic back-references bind to the correct instance.
	Allocate() (any, error)

	// Populate fills obj, previously returned by Allocate, with the
	// resolved elements and fields.
	Populate(obj any, dec Decomposition) error
}
