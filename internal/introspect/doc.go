// Package introspect gives the schema engine uniform access to source records.
//
// A source record is any value whose named properties can be enumerated and
// read: Go structs, string-keyed maps such as decoded JSON objects, and types
// implementing Record. Reflect is the reflection-driven Introspector used for
// all of them.
//
// Key types:
//   - Property: name, accessor, declared kind and category of one property
//   - Introspector: enumerate, read, classify and iterate values
//   - AccessError: a property that could not be read, recovered as null by callers
package introspect
