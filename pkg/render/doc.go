// Package render provides visualization rendering for tree documents.
//
// # Overview
//
// This package groups the renderers that turn tree documents into visual
// outputs:
//
//   - Reference graphs (in [refgraph] subpackage)
//
// # Reference Graphs
//
// The [refgraph] subpackage renders the reference structure of a document
// as a directed graph using Graphviz. Containers appear as boxes; references
// appear as dashed edges pointing at their resolved targets.
//
//	dot := refgraph.ToDOT(tree, refgraph.Options{})
//	svg, err := refgraph.RenderSVG(dot)
//
// [refgraph]: github.com/matzehuels/pretree/pkg/render/refgraph
package render
