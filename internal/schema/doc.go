// Package schema infers the shape of source records and merges the shapes of
// many records into one global schema tree.
//
// Inference rules:
//   - declared scalars become scalar nodes
//   - nested records become struct nodes
//   - collections become repeated nodes whose element shapes are merged
//   - nulls become placeholders that later samples may fill in
//
// Merging is commutative and associative, so the schema of a record set does
// not depend on the order the records are seen in. Two samples that disagree
// on the shape of a field produce a *ConflictError.
package schema
