// Package materialize re-walks source records along the paths recorded in a
// column list and produces one Row per record.
//
// Cells are coerced to the column kind: dates and timestamps to epoch
// milliseconds, decimals to decimal128.Num with primitive.DecimalScale
// fractional digits, enums and other named scalars to strings. Any step
// that meets null or fails yields a nil cell instead of an error.
package materialize
