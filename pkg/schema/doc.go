// Package schema declares the types carried by ports and literal parameters.
//
// A port type is checked once, when two ports are wired together:
//
//	schema.Compatible(schema.Int(), schema.Int())      // true
//	schema.Compatible(schema.Any(), schema.String())   // true, wildcard
//	schema.Compatible(schema.Param("T"), schema.Int()) // true, unresolved parameter
//	schema.Compatible(schema.Int(), schema.String())   // false
//
// Messages are never validated per send. Coerce is used on the receiving side
// to restore the declared Go representation of values that went through a
// serializer (e.g. int64 back to int).
//
// Literal parameters of a node can be described with a Schema and validated
// with Validate or ValidateField.
package schema
