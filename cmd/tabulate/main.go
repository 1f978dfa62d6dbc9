// Package main provides the CLI entrypoint for tabulate.
//
// tabulate reads JSON records and exposes them as a table:
//   - schema prints the inferred schema and column list as YAML
//   - rows prints one JSON object per record
//   - export writes the table as a Parquet file
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "tabulate",
		Short:        "Turn heterogeneous JSON records into a table",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "YAML config file")
	root.PersistentFlags().Bool("expand-arrays", false, "expand bounded arrays into indexed columns")
	root.PersistentFlags().Bool("expand-structs", false, "flatten nested structs into parent_child columns")
	root.PersistentFlags().StringSlice("columns", nil, "project the named columns, in order")
	root.PersistentFlags().Int("sample-size", 0, "infer the schema from the first records only")
	root.PersistentFlags().Int("workers", 0, "goroutines used to materialize rows")
	root.PersistentFlags().StringP("output", "o", "", "output file (default: stdout)")
	root.PersistentFlags().BoolP("verbose", "v", false, "log schema construction")

	addCommands(root)

	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
