// Package tabular turns collections of heterogeneous, nested records into
// tables.
//
// Build samples the records once to infer a schema and a column list. The
// resulting Table materializes any record, sampled or not, into a row that
// matches its columns. Cells that cannot be resolved on a record are nil.
package tabular
