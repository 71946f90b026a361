// Package field holds the attribute vocabulary shared by the parser and
// the generators: visibility markers, collection detection and the
// classification of raw declared types.
//
// Declared types stay opaque strings in the model:
//
//	- tags : List<String>
//
// is recorded with Type "List<String>". Collection reports the element
// type, and Classify maps a raw name to a Type a generator can translate:
//
//	elem, _ := field.Collection("List<String>") // "String"
//	field.Classify(elem)                        // field.TypeString
package field
