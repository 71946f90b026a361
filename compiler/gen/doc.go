// Package gen assembles the resolved model of a parsed diagram and renders
// it into project files.
//
// # Architecture
//
//	load.Diagram (classes, attributes, raw relationships)
//	        ↓
//	   Resolve (effective multiplicities, owning side, relation type)
//	        ↓
//	   Graph (types, fields, edges, relations; validated)
//	        ↓
//	   Generator (quarkus templates here; Go, SQL and GraphQL in
//	   sub-packages and contrib)
//
// # Key Types
//
//   - Graph: the immutable model with its warnings
//   - Type: a class with fields, parent, children and edges
//   - Field: a class attribute
//   - Relation: a relationship with its Resolution
//   - Edge: one endpoint of a structural relationship, as seen from the
//     type holding it (O2O, O2M, M2O, M2M)
//   - Config: parse and generation settings, built from options or a
//     pumlgen.yaml file
//
// # Error Handling
//
// Diagram errors are *pumlgen.ParseError values wrapping a pumlgen
// sentinel. Configuration and rendering failures are *ConfigError and
// *GenerationError, matched with errors.Is against ErrMissingConfig and
// ErrGenerationFailed:
//
//	if err := gen.Quarkus.Generate(ctx, g); gen.IsGenerationError(err) {
//	    // template or filesystem failure
//	}
//
// # Templates
//
// The quarkus target renders the embedded templates under
// template/quarkus. A directory of *.tmpl files set with WithTemplates
// overrides templates by name; templates whose name looks like a file
// path ("docs/model.md") are rendered once with the Graph.
package gen
