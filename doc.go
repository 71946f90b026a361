// Package pumlgen turns PlantUML class diagrams into a resolved
// entity-relationship model and renders it into source files.
//
// # Pipeline
//
//	diagram text (*.puml)
//	        ↓
//	   compiler/load   (scan, classify, parse classes and relationships)
//	        ↓
//	   compiler/gen    (resolve cardinality, assemble and validate the Graph)
//	        ↓
//	   generators      (quarkus templates, Go structs, SQL DDL, GraphQL SDL)
//
// This package holds the error taxonomy shared by every stage. Structural
// problems are fatal and reported as a *ParseError wrapping one of the
// sentinel errors:
//
//	g, err := compiler.Parse(strings.NewReader(src))
//	if errors.Is(err, pumlgen.ErrDanglingReference) {
//	    // the diagram names a class it never declares
//	}
//
// Quality problems (untyped attributes, unknown statements) never stop a
// parse. They are collected as Diagnostics and returned with the model.
package pumlgen
