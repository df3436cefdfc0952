// Package pkg provides the core libraries for pretree preserialization.
//
// # Overview
//
// Pretree transforms native object graphs into basic trees that any generic
// serializer can write out, and reconstructs the original graphs from those
// trees. Cycles and shared substructure survive the round trip: the encoder
// detects repeated identities and replaces them with pointer references that
// the decoder links back together. The pkg directory is organized as:
//
//  1. [basic] - The basic value model: scalars, sequences, ordered mappings,
//     reserved keys, and reference pointers
//  2. [engine] - The preserialize/depreserialize engines that walk object
//     graphs and tagged trees
//  3. [registry] - The versioned vocabulary of registered types
//  4. [decomp] - Decomposer/reconstructor codecs for structs, dicts and
//     sequence-coercible types
//  5. [encoding] - Document formats ([encoding/jsondoc], [encoding/bsondoc])
//  6. [render] - Reference-graph visualization ([render/refgraph])
//  7. [cache] - Cache backends used by the HTTP server and CLI
//  8. [errors] - Error codes shared across the API surface
//
// # Architecture
//
// The typical data flow through pretree:
//
//	Native object graph
//	         ↓
//	    [engine] Preserialize (identity detection, type tagging)
//	         ↓
//	    [basic] tagged tree
//	         ↓
//	    [encoding/jsondoc] or [encoding/bsondoc]
//	         ↓
//	    JSON/BSON document
//
// and back again through Depreserialize, which allocates every node first
// and then links references, so cyclic graphs reconstruct exactly.
//
// # Quick Start
//
//	reg := registry.New()
//	engine.RegisterStruct[Parrot](reg, "parrot", 1)
//
//	tree, err := engine.Preserialize(pet, reg)
//	data, err := jsondoc.Marshal(tree)
//
//	tree, err = jsondoc.Unmarshal(data)
//	back, err := engine.Depreserialize(tree, reg)
//
// [basic]: github.com/matzehuels/pretree/pkg/basic
// [engine]: github.com/matzehuels/pretree/pkg/engine
// [registry]: github.com/matzehuels/pretree/pkg/registry
// [decomp]: github.com/matzehuels/pretree/pkg/decomp
// [encoding/jsondoc]: github.com/matzehuels/pretree/pkg/encoding/jsondoc
// [encoding/bsondoc]: github.com/matzehuels/pretree/pkg/encoding/bsondoc
// [render/refgraph]: github.com/matzehuels/pretree/pkg/render/refgraph
// [cache]: github.com/matzehuels/pretree/pkg/cache
// [errors]: github.com/matzehuels/pretree/pkg/errors
package pkg
