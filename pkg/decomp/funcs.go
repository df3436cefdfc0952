package decomp

import "fmt"

// Funcs is the custom variant: a caller-supplied decomposer/reconstructor
// pair following the two-phase contract. Any of the functions may be nil,
// in which case the corresponding operation fails.
type Funcs struct {
	DecomposeFn func(obj any) (Decomposition, error)
	AllocateFn  func() (any, error)
	PopulateFn  func(obj any, dec Decomposition) error
}

func (f Funcs) Decompose(obj any) (Decomposition, error) {
	if f.DecomposeFn == nil {
		return Decomposition{}, fmt.Errorf("%w: no decompose function", ErrDecomposition)
	}
	return f.DecomposeFn(obj)
}

func (f Funcs) Allocate() (any, error) {
	if f.AllocateFn == nil {
		return nil, fmt.Errorf("%w: no allocate function", ErrReconstruction)
	}
	return f.AllocateFn()
}

func (f Funcs) Populate(obj any, dec Decomposition) error {
	if f.PopulateFn == nil {
		return fmt.Errorf("%w: no populate function", ErrReconstruction)
	}
	return f.PopulateFn(obj, dec)
}

// SeqFuncs is the sequence-coercible variant for value categories that
// behave like an ordered collection (a set-like type, say): decomposition
// yields the elements as a sequence rather than named attributes, and
// population rebuilds the instance from the materialized sequence.
type SeqFuncs struct {
	ElemsFn    func(obj any) ([]any, error)
	AllocateFn func() (any, error)
	PopulateFn func(obj any, elems []any) error
}

func (f SeqFuncs) Decompose(obj any) (Decomposition, error) {
	if f.ElemsFn == nil {
		return Decomposition{}, fmt.Errorf("%w: no elements function", ErrDecomposition)
	}
	elems, err := f.ElemsFn(obj)
	if err != nil {
		return Decomposition{}, err
	}
	if elems == nil {
		elems = []any{}
	}
	return Decomposition{Elems: elems}, nil
}

func (f SeqFuncs) Allocate() (any, error) {
	if f.AllocateFn == nil {
		return nil, fmt.Errorf("%w: no allocate function", ErrReconstruction)
	}
	return f.AllocateFn()
}

func (f SeqFuncs) Populate(obj any, dec Decomposition) error {
	if f.PopulateFn == nil {
		return fmt.Errorf("%w: no populate function", ErrReconstruction)
	}
	if len(dec.Fields) > 0 {
		return fmt.Errorf("%w: sequence-coercible type takes elements, not fields", ErrReconstruction)
	}
	return f.PopulateFn(obj, dec.Elems)
}
