// Package edge defines the relationship vocabulary of a class diagram.
//
// # Arrows
//
// Every supported arrow maps to a relationship Kind:
//
//	--  -->  <--     association
//	o--  --o        aggregation (the "o" end is the whole)
//	*--  --*        composition (the "*" end is the whole)
//	<|--  --|>      inheritance (the triangle end is the parent)
//	..>  <..        dependency
//
// Tokens are normalized before lookup, so "--->" and "-left->" resolve to
// "-->". Anything else is rejected by the parser.
//
// # Multiplicity
//
// Multiplicities are parsed from the quoted tokens around an arrow:
//
//	Flower "many" --> "1" Pot
//
// and normalized into one of exactly-one, zero-or-one, many, an exact count
// or a lo..hi range:
//
//	m, _ := edge.ParseMultiplicity("1..*")
//	m.IsMany() // true
//
// # Ownership
//
// OwningSide records which endpoint physically carries the reference once
// the cardinality is resolved (see compiler/gen.Resolve).
package edge
