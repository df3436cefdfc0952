// Package refgraph renders basic trees as Graphviz diagrams.
//
// Containers become boxes, child edges carry their key or index, and
// reference nodes become dashed back-edges to the container they point
// at. The picture makes shared substructure and cycles visible at a
// glance, which is the part of a document that is hardest to read from
// its JSON form.
package refgraph

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/pretree/pkg/basic"
)

// Options configures reference-graph rendering.
type Options struct {
	// Detailed includes primitive leaves in the diagram. When false,
	// only containers and reference edges are shown.
	Detailed bool
}

// ToDOT converts a basic tree to Graphviz DOT format.
// The resulting DOT string can be rendered with [RenderSVG].
func ToDOT(tree basic.Value, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph refs {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n\n")

	w := &dotWalker{
		buf:     &buf,
		opts:    opts,
		ids:     make(map[basic.Value]string),
		emitted: make(map[string]bool),
		root:    tree,
	}
	w.walk()

	buf.WriteString("}\n")
	return buf.String()
}

type dotWalker struct {
	buf     *bytes.Buffer
	opts    Options
	ids     map[basic.Value]string
	emitted map[string]bool
	root    basic.Value
	next    int
	leaf    int
}

type dotEdge struct {
	v      basic.Value
	parent string
	label  string
}

func (w *dotWalker) walk() {
	// First pass: an ID per container, so reference edges can point at
	// containers visited in either order.
	w.assignIDs()

	stack := []dotEdge{{v: w.root}}
	for len(stack) > 0 {
		e := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		stack = w.emit(e, stack)
	}
}

func (w *dotWalker) assignIDs() {
	stack := []basic.Value{w.root}
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		switch node := v.(type) {
		case *basic.Sequence:
			if _, seen := w.ids[v]; seen {
				continue
			}
			w.ids[v] = w.id()
			for i := len(node.Elems) - 1; i >= 0; i-- {
				stack = append(stack, node.Elems[i])
			}
		case *basic.Mapping:
			if _, isRef := basic.RefTarget(node); isRef {
				continue
			}
			if _, seen := w.ids[v]; seen {
				continue
			}
			w.ids[v] = w.id()
			for i := node.Len() - 1; i >= 0; i-- {
				stack = append(stack, node.At(i).Value)
			}
		}
	}
}

func (w *dotWalker) id() string {
	id := fmt.Sprintf("n%d", w.next)
	w.next++
	return id
}

func (w *dotWalker) emit(e dotEdge, stack []dotEdge) []dotEdge {
	switch node := e.v.(type) {
	case *basic.Sequence:
		id := w.ids[e.v]
		w.connect(e, id, "")
		if w.emitted[id] {
			return stack
		}
		w.emitted[id] = true
		fmt.Fprintf(w.buf, "  %s [label=%q];\n", id, fmt.Sprintf("list[%d]", len(node.Elems)))
		for i := len(node.Elems) - 1; i >= 0; i-- {
			stack = append(stack, dotEdge{v: node.Elems[i], parent: id, label: strconv.Itoa(i)})
		}
	case *basic.Mapping:
		if ptr, isRef := basic.RefTarget(node); isRef {
			w.emitRef(e, ptr)
			return stack
		}
		id := w.ids[e.v]
		w.connect(e, id, "")
		if w.emitted[id] {
			return stack
		}
		w.emitted[id] = true
		fmt.Fprintf(w.buf, "  %s [label=%q];\n", id, mappingLabel(node))
		for i := node.Len() - 1; i >= 0; i-- {
			entry := node.At(i)
			if basic.IsReservedKey(entry.Key) {
				continue
			}
			stack = append(stack, dotEdge{v: entry.Value, parent: id, label: entry.Key})
		}
	default:
		if !w.opts.Detailed || e.parent == "" {
			return stack
		}
		id := fmt.Sprintf("p%d", w.leaf)
		w.leaf++
		fmt.Fprintf(w.buf, "  %s [label=%q, shape=plaintext, style=\"\"];\n", id, primitiveLabel(e.v))
		w.connect(e, id, "")
	}
	return stack
}

// emitRef draws a dashed edge to the referenced container, or a red
// marker node when the pointer does not resolve.
func (w *dotWalker) emitRef(e dotEdge, ptr string) {
	target, err := resolveTarget(w.root, ptr)
	if err == nil {
		if id, ok := w.ids[target]; ok {
			w.connect(e, id, "dashed")
			return
		}
	}
	id := w.id()
	fmt.Fprintf(w.buf, "  %s [label=%q, fillcolor=lightpink];\n", id, "dangling "+ptr)
	w.connect(e, id, "dashed")
}

func (w *dotWalker) connect(e dotEdge, to, style string) {
	if e.parent == "" {
		return
	}
	attrs := []string{fmt.Sprintf("label=%q", e.label)}
	if style != "" {
		attrs = append(attrs, fmt.Sprintf("style=%s", style))
	}
	fmt.Fprintf(w.buf, "  %s -> %s [%s];\n", e.parent, to, strings.Join(attrs, ", "))
}

func resolveTarget(root basic.Value, ptr string) (basic.Value, error) {
	path, err := basic.ParsePointer(ptr)
	if err != nil {
		return nil, err
	}
	return basic.Resolve(root, path)
}

func mappingLabel(m *basic.Mapping) string {
	tag, ok := m.Get(basic.TypeKey)
	if !ok {
		return "mapping"
	}
	name, _ := tag.(basic.String)
	label := string(name)
	if v, ok := m.Get(basic.VersionKey); ok {
		if ver, ok := v.(basic.Int); ok {
			label = fmt.Sprintf("%s v%d", label, int64(ver))
		}
	}
	return label
}

func primitiveLabel(v basic.Value) string {
	var s string
	switch t := v.(type) {
	case nil, basic.Null:
		s = "null"
	case basic.Bool:
		s = strconv.FormatBool(bool(t))
	case basic.Int:
		s = strconv.FormatInt(int64(t), 10)
	case basic.Float:
		s = strconv.FormatFloat(float64(t), 'g', -1, 64)
	case basic.String:
		s = strconv.Quote(string(t))
	default:
		s = fmt.Sprintf("%v", v)
	}
	if len(s) > 32 {
		s = s[:29] + "..."
	}
	return s
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox pins the SVG origin to 0 0 so embedding contexts can
// scale the image without Graphviz's translation offsets.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
