package basic

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrBadPointer is returned by [ParsePointer] for expressions that are not
// root-relative pointers, and by [Resolve] when a pointer does not address
// a node in the tree.
var ErrBadPointer = errors.New("invalid pointer")

// Step is one component of a [Path]: either a mapping key or a sequence
// index.
type Step struct {
	key     string
	index   int
	indexed bool
}

// Key creates a mapping-key step.
func Key(k string) Step { return Step{key: k} }

// Index creates a sequence-index step.
func Index(i int) Step { return Step{index: i, indexed: true} }

// IsIndex reports whether the step addresses a sequence element.
func (s Step) IsIndex() bool { return s.indexed }

// Key returns the mapping key of a key step.
func (s Step) Key() string { return s.key }

// Index returns the element index of an index step.
func (s Step) Index() int { return s.index }

func (s Step) String() string {
	if s.indexed {
		return strconv.Itoa(s.index)
	}
	return s.key
}

// Path addresses a node relative to the root of a tree.
type Path []Step

// Pointer renders the path as a root-relative pointer expression: a `#`
// root marker followed by `/`-separated segments with `~` and `/` escaped
// per the JSON Reference convention (`~0`, `~1`).
func (p Path) Pointer() string {
	var b strings.Builder
	b.WriteByte('#')
	for _, s := range p {
		b.WriteByte('/')
		if s.indexed {
			b.WriteString(strconv.Itoa(s.index))
		} else {
			b.WriteString(escapeSegment(s.key))
		}
	}
	return b.String()
}

func escapeSegment(s string) string {
	s = strings.ReplaceAll(s, "~", "~0")
	return strings.ReplaceAll(s, "/", "~1")
}

func unescapeSegment(s string) string {
	s = strings.ReplaceAll(s, "~1", "/")
	return strings.ReplaceAll(s, "~0", "~")
}

// ParsePointer parses a pointer expression produced by [Path.Pointer].
// Segments consisting solely of decimal digits parse as index steps; all
// others parse as key steps. `#` alone is the root path.
func ParsePointer(expr string) (Path, error) {
	rest, ok := strings.CutPrefix(expr, "#")
	if !ok {
		return nil, fmt.Errorf("%w: %q is not root-relative", ErrBadPointer, expr)
	}
	if rest == "" {
		return Path{}, nil
	}
	if !strings.HasPrefix(rest, "/") {
		return nil, fmt.Errorf("%w: %q", ErrBadPointer, expr)
	}
	segs := strings.Split(rest[1:], "/")
	path := make(Path, 0, len(segs))
	for _, seg := range segs {
		if i, err := strconv.Atoi(seg); err == nil && i >= 0 {
			path = append(path, Index(i))
			continue
		}
		path = append(path, Key(unescapeSegment(seg)))
	}
	return path, nil
}

// Resolve walks path from root and returns the addressed node.
// It fails with [ErrBadPointer] when a step does not match the shape of
// the node it is applied to or addresses a missing key or index.
func Resolve(root Value, path Path) (Value, error) {
	cur := root
	for _, s := range path {
		switch node := cur.(type) {
		case *Sequence:
			if !s.IsIndex() || s.Index() >= len(node.Elems) {
				return nil, fmt.Errorf("%w: no element %s", ErrBadPointer, s)
			}
			cur = node.Elems[s.Index()]
		case *Mapping:
			if s.IsIndex() {
				return nil, fmt.Errorf("%w: index %d into mapping", ErrBadPointer, s.Index())
			}
			v, ok := node.Get(s.Key())
			if !ok {
				return nil, fmt.Errorf("%w: no key %q", ErrBadPointer, s.Key())
			}
			cur = v
		default:
			return nil, fmt.Errorf("%w: step %s into %s node", ErrBadPointer, s, cur.Kind())
		}
	}
	return cur, nil
}
