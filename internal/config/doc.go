// Package config loads the YAML settings of the tabulate command.
//
// Example:
//
//	version: "1"
//	expand_arrays: true
//	expand_structs: true
//	sample_size: 500
//	columns: [docNumber, totalAmt]
package config
