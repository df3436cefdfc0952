package decomp

import (
	"fmt"
	"reflect"
)

// StructCodec is the reflection-based instance variant: it decomposes a
// struct pointer into its exported fields in declaration order and
// reconstructs one by allocating a zero struct and setting fields.
//
// Instances are handled as pointers (*T): values need a stable identity
// for cycle and sharing detection, and population must be visible through
// every reference to the instance.
type StructCodec struct {
	typ    reflect.Type // the struct type T
	ignore map[string]struct{}
}

// ForStruct creates a codec for the struct type of prototype, which may be
// a T value or a *T pointer (nil is fine). Fields named in ignore are
// skipped during decomposition.
func ForStruct(prototype any, ignore ...string) (*StructCodec, error) {
	typ := reflect.TypeOf(prototype)
	if typ != nil && typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	if typ == nil || typ.Kind() != reflect.Struct {
		return nil, fmt.Errorf("decomp: %T is not a struct type", prototype)
	}
	c := &StructCodec{typ: typ}
	if len(ignore) > 0 {
		c.ignore = make(map[string]struct{}, len(ignore))
		for _, name := range ignore {
			c.ignore[name] = struct{}{}
		}
	}
	return c, nil
}

// Type returns the type instances of this codec are registered under: *T.
func (c *StructCodec) Type() reflect.Type { return reflect.PointerTo(c.typ) }

// Decompose lists the exported fields of a *T instance in declaration
// order, minus the ignored ones.
func (c *StructCodec) Decompose(obj any) (Decomposition, error) {
	rv := reflect.ValueOf(obj)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Type().Elem() != c.typ {
		return Decomposition{}, fmt.Errorf("%w: want non-nil *%s, got %T", ErrDecomposition, c.typ, obj)
	}
	rv = rv.Elem()
	var fields []Field
	for i := 0; i < c.typ.NumField(); i++ {
		f := c.typ.Field(i)
		if !f.IsExported() {
			continue
		}
		if _, skip := c.ignore[f.Name]; skip {
			continue
		}
		fields = append(fields, Field{Name: f.Name, Value: rv.Field(i).Interface()})
	}
	return Decomposition{Fields: fields}, nil
}

// Allocate returns a zero *T. No constructor logic runs.
func (c *StructCodec) Allocate() (any, error) {
	return reflect.New(c.typ).Interface(), nil
}

// Populate sets the named fields of obj. Decoded values are coerced to the
// field types: integer and float widths convert, []any fills typed slices
// and arrays, and a [*Dict] fills a typed map.
func (c *StructCodec) Populate(obj any, dec Decomposition) error {
	if len(dec.Elems) > 0 {
		return fmt.Errorf("%w: %s takes named fields, not elements", ErrReconstruction, c.typ)
	}
	rv := reflect.ValueOf(obj)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Type().Elem() != c.typ {
		return fmt.Errorf("%w: want non-nil *%s, got %T", ErrReconstruction, c.typ, obj)
	}
	rv = rv.Elem()
	for _, f := range dec.Fields {
		sf, ok := c.typ.FieldByName(f.Name)
		if !ok || !sf.IsExported() {
			return fmt.Errorf("%w: %s has no field %q", ErrReconstruction, c.typ, f.Name)
		}
		fv, err := coerce(f.Value, sf.Type)
		if err != nil {
			return fmt.Errorf("%w: field %s.%s: %v", ErrReconstruction, c.typ, f.Name, err)
		}
		rv.FieldByIndex(sf.Index).Set(fv)
	}
	return nil
}

// coerce adapts a decoded value (int64, float64, string, bool, []any,
// *Dict, or a reconstructed instance) to the target type.
func coerce(v any, t reflect.Type) (reflect.Value, error) {
	if v == nil {
		switch t.Kind() {
		case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Chan, reflect.Func:
			return reflect.Zero(t), nil
		}
		return reflect.Value{}, fmt.Errorf("cannot store null in %s", t)
	}
	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(t) {
		return rv, nil
	}
	if convertibleScalar(rv.Type(), t) {
		return rv.Convert(t), nil
	}
	switch t.Kind() {
	case reflect.Slice:
		if elems, ok := v.([]any); ok {
			out := reflect.MakeSlice(t, len(elems), len(elems))
			for i, e := range elems {
				ev, err := coerce(e, t.Elem())
				if err != nil {
					return reflect.Value{}, fmt.Errorf("element %d: %v", i, err)
				}
				out.Index(i).Set(ev)
			}
			return out, nil
		}
	case reflect.Array:
		if elems, ok := v.([]any); ok && len(elems) == t.Len() {
			out := reflect.New(t).Elem()
			for i, e := range elems {
				ev, err := coerce(e, t.Elem())
				if err != nil {
					return reflect.Value{}, fmt.Errorf("element %d: %v", i, err)
				}
				out.Index(i).Set(ev)
			}
			return out, nil
		}
	case reflect.Map:
		if d, ok := v.(*Dict); ok {
			out := reflect.MakeMapWithSize(t, d.Len())
			for i := 0; i < d.Len(); i++ {
				p := d.At(i)
				kv, err := coerce(p.Key, t.Key())
				if err != nil {
					return reflect.Value{}, fmt.Errorf("key %v: %v", p.Key, err)
				}
				vv, err := coerce(p.Value, t.Elem())
				if err != nil {
					return reflect.Value{}, fmt.Errorf("value for key %v: %v", p.Key, err)
				}
				out.SetMapIndex(kv, vv)
			}
			return out, nil
		}
	}
	return reflect.Value{}, fmt.Errorf("cannot adapt %T to %s", v, t)
}

// convertibleScalar limits reflect conversion to same-family scalars so
// that surprises like int-to-string rune conversion cannot happen.
func convertibleScalar(from, to reflect.Type) bool {
	return scalarFamily(from.Kind()) != 0 && scalarFamily(from.Kind()) == scalarFamily(to.Kind())
}

func scalarFamily(k reflect.Kind) int {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return 1
	case reflect.String:
		return 2
	case reflect.Bool:
		return 3
	}
	return 0
}
