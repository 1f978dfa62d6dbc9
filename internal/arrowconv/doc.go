// Package arrowconv converts column lists and materialized rows into Arrow
// schemas and records, and writes them as parquet files.
package arrowconv
