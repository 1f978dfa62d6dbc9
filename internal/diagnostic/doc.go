// Package diagnostic provides structured warnings and errors collected
// while a table schema is inferred from sampled records.
//
// Key capabilities:
//   - Accessor failures recovered as null values
//   - Kind widening when samples disagree on a scalar kind
//   - Column name collisions resolved during flattening
//   - Schema conflicts that abort construction
package diagnostic
