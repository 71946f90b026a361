// Package graphql renders the GraphQL schema (SDL) of a diagram model.
//
// Every class becomes a type with an ID field, its attributes and its
// relationship edges. Abstract classes become interfaces that their
// subclasses implement. A Query type exposes a lookup by id and a list
// field per concrete class:
//
//	interface Party {
//	  id: ID!
//	  name: String
//	}
//
//	type Customer implements Party {
//	  id: ID!
//	  name: String
//	  orders: [Order!]!
//	}
//
// Attribute types map to the built-in scalars (String, Int, Float,
// Boolean, ID) and to a Time scalar for dates. Attributes are nullable.
// Singular edges are non-null unless their multiplicity allows zero.
//
// The schema is built as a gqlparser AST, printed with its formatter and
// validated before it is written.
//
// # gqlgen
//
// With WithConfigPath the extension also maintains a gqlgen.yml that
// points at the schema and, given WithModelPackage, binds every type to
// the struct rendered by the go target:
//
//	ex, err := graphql.NewExtension(
//	    graphql.WithConfigPath("gqlgen.yml"),
//	    graphql.WithModelPackage("github.com/acme/shop/model"),
//	)
package graphql
