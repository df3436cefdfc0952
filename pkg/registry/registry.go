// Package registry maps runtime types to their decomposer/reconstructor
// registrations. The encode direction is keyed by [reflect.Type]; the
// decode direction is keyed by (name, version), so multiple versions of
// one name can coexist to reconstruct legacy data.
package registry

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"

	"github.com/matzehuels/pretree/pkg/decomp"
)

var (
	// ErrDuplicateRegistration is returned by [Registry.Register] when the
	// (name, version) pair is already bound.
	ErrDuplicateRegistration = errors.New("duplicate registration")

	// ErrUnregisteredType is returned by [Registry.ForType] when the
	// runtime type of an object being decomposed has no registration.
	// Lookup is intentionally strict: every type reachable in a graph
	// must be registered explicitly, so silent data loss cannot occur.
	ErrUnregisteredType = errors.New("unregistered type")

	// ErrUnknownTypeVersion is returned by [Registry.ForName] when no
	// registration matches the (name, version) pair found in the data.
	ErrUnknownTypeVersion = errors.New("unknown type version")

	// ErrInvalidTypeName is returned by [Registry.Register] for names that
	// are not dotted identifiers, or that collide with the reserved
	// dict marker.
	ErrInvalidTypeName = errors.New("invalid type name")
)

// DictName is the type marker the engines reserve for generic key/value
// containers. It cannot be registered.
const DictName = "dict"

var typeNameRe = regexp.MustCompile(`^[\p{L}_][\p{L}\p{N}_]*(\.[\p{L}_][\p{L}\p{N}_]*)*$`)

// Registration binds a runtime type to a name, a version, and the plugin
// pair that decomposes and reconstructs its instances.
type Registration struct {
	Type          reflect.Type
	Name          string
	Version       int
	Decomposer    decomp.Decomposer
	Reconstructor decomp.Reconstructor
}

type nameVersion struct {
	name    string
	version int
}

// Registry is the binding table consumed by both engines.
//
// The zero value is not usable - use [New]. A Registry is not safe for
// concurrent mutation; register everything up front, then share it.
type Registry struct {
	byType   map[reflect.Type]*Registration
	byName   map[nameVersion]*Registration
	versions map[string][]int // name -> registered versions, unsorted
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		byType:   make(map[reflect.Type]*Registration),
		byName:   make(map[nameVersion]*Registration),
		versions: make(map[string][]int),
	}
}

// Register binds typ to (name, version) with the given plugin pair.
// It fails with [ErrDuplicateRegistration] if (name, version) is already
// bound. Re-registering a type overwrites its current encode-direction
// binding: the last registration wins for decomposition, while earlier
// (name, version) pairs stay resolvable for decoding legacy data.
//
// Version 0 means unversioned: the encoder omits the `$version` tag.
func (r *Registry) Register(typ reflect.Type, name string, version int, d decomp.Decomposer, rec decomp.Reconstructor) error {
	if name == DictName {
		return fmt.Errorf("%w: %q is reserved", ErrInvalidTypeName, name)
	}
	if !typeNameRe.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidTypeName, name)
	}
	if version < 0 {
		return fmt.Errorf("%w: version %d of %q", ErrInvalidTypeName, version, name)
	}
	key := nameVersion{name, version}
	if _, bound := r.byName[key]; bound {
		return fmt.Errorf("%w: %s version %d", ErrDuplicateRegistration, name, version)
	}
	reg := &Registration{Type: typ, Name: name, Version: version, Decomposer: d, Reconstructor: rec}
	r.byName[key] = reg
	r.byType[typ] = reg
	r.versions[name] = append(r.versions[name], version)
	return nil
}

// ForType returns the current encode-direction registration for typ.
func (r *Registry) ForType(typ reflect.Type) (*Registration, error) {
	reg, ok := r.byType[typ]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnregisteredType, typ)
	}
	return reg, nil
}

// Registered reports whether typ has an encode-direction registration.
func (r *Registry) Registered(typ reflect.Type) bool {
	_, ok := r.byType[typ]
	return ok
}

// ForName returns the registration bound to (name, version).
func (r *Registry) ForName(name string, version int) (*Registration, error) {
	reg, ok := r.byName[nameVersion{name, version}]
	if !ok {
		return nil, fmt.Errorf("%w: %s version %d", ErrUnknownTypeVersion, name, version)
	}
	return reg, nil
}

// DefaultVersion returns the version used when data carries no `$version`
// tag for name: the lowest registered version. The second return is false
// when the name is entirely unknown.
func (r *Registry) DefaultVersion(name string) (int, bool) {
	versions, ok := r.versions[name]
	if !ok {
		return 0, false
	}
	low := versions[0]
	for _, v := range versions[1:] {
		if v < low {
			low = v
		}
	}
	return low, true
}
