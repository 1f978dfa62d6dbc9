package main

import (
	"fmt"
	"io"
	"os"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tabular-mapper/internal/arrowconv"
	"tabular-mapper/internal/config"
	"tabular-mapper/internal/source"
	"tabular-mapper/tabular"
)

func addCommands(root *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "schema [file]",
		Short: "Print the inferred schema and columns as YAML",
		Args:  cobra.MaximumNArgs(1),
		RunE:  printSchema}
	root.AddCommand(cmd)

	cmd = &cobra.Command{
		Use:   "rows [file]",
		Short: "Print one JSON object per record",
		Args:  cobra.MaximumNArgs(1),
		RunE:  printRows}
	root.AddCommand(cmd)

	cmd = &cobra.Command{
		Use:   "export [file]",
		Short: "Write the records as a Parquet file",
		Args:  cobra.MaximumNArgs(1),
		RunE:  exportParquet}
	root.AddCommand(cmd)
}

// Represents the state used when processing a command.
type action struct {
	cmd     *cobra.Command
	cfg     *config.Config
	logger  *zap.Logger
	records []any
	table   *tabular.Table
}

func newAction(cmd *cobra.Command, args []string) (*action, error) {
	a := &action{cmd: cmd}

	cfg, err := a.loadConfig()
	if err != nil {
		return nil, err
	}

	a.cfg = cfg

	a.logger, err = newLogger(a.getBool("verbose"))
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	a.records, err = readRecords(cmd, args)
	if err != nil {
		return nil, err
	}

	a.table, err = tabular.Build(a.records, tabular.Config{
		Flags:      cfg.Flags(),
		SampleSize: cfg.SampleSize,
		Workers:    cfg.Workers,
		Logger:     a.logger,
	})
	if err != nil {
		return nil, err
	}

	if len(cfg.Columns) > 0 {
		a.table, err = a.table.Project(cfg.Columns...)
		if err != nil {
			return nil, fmt.Errorf("failed to project columns: %w", err)
		}
	}

	return a, nil
}

// loadConfig reads the config file, if any, and applies the flags set on the command line.
func (a *action) loadConfig() (*config.Config, error) {
	cfg := config.Default()

	if path := a.getString("config"); path != "" {
		var err error

		cfg, err = config.LoadFile(path)
		if err != nil {
			return nil, err
		}
	}

	flags := a.cmd.Flags()
	if flags.Changed("expand-arrays") {
		cfg.ExpandArrays = a.getBool("expand-arrays")
	}

	if flags.Changed("expand-structs") {
		cfg.ExpandStructs = a.getBool("expand-structs")
	}

	if flags.Changed("sample-size") {
		cfg.SampleSize = a.getInt("sample-size")
	}

	if flags.Changed("workers") {
		cfg.Workers = a.getInt("workers")
	}

	if flags.Changed("columns") {
		columns, _ := flags.GetStringSlice("columns")
		cfg.Columns = columns
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// newLogger logs warnings as JSON, or everything in console form when verbose.
func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)

	return cfg.Build()
}

func (a *action) getBool(name string) bool {
	v, _ := a.cmd.Flags().GetBool(name)
	return v
}

func (a *action) getInt(name string) int {
	v, _ := a.cmd.Flags().GetInt(name)
	return v
}

func (a *action) getString(name string) string {
	v, _ := a.cmd.Flags().GetString(name)
	return v
}

// output opens the --output file, or returns the command's stdout.
func (a *action) output() (io.WriteCloser, error) {
	path := a.getString("output")
	if path == "" {
		return nopCloser{a.cmd.OutOrStdout()}, nil
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}

	return f, nil
}

func (a *action) close() {
	_ = a.logger.Sync()
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

func readRecords(cmd *cobra.Command, args []string) ([]any, error) {
	if len(args) == 0 {
		return source.Decode(cmd.InOrStdin())
	}

	f, err := os.Open(args[0])
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	defer f.Close()

	return source.Decode(f)
}

func printSchema(cmd *cobra.Command, args []string) error {
	a, err := newAction(cmd, args)
	if err != nil {
		return err
	}
	defer a.close()

	data, err := a.table.DescribeYAML()
	if err != nil {
		return fmt.Errorf("failed to describe table: %w", err)
	}

	out, err := a.output()
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = out.Write(data)

	return err
}

func printRows(cmd *cobra.Command, args []string) error {
	a, err := newAction(cmd, args)
	if err != nil {
		return err
	}
	defer a.close()

	rows, err := a.table.Rows(cmd.Context(), a.records)
	if err != nil {
		return err
	}

	out, err := a.output()
	if err != nil {
		return err
	}
	defer out.Close()

	return source.EncodeRows(out, a.table.Columns(), rows)
}

func exportParquet(cmd *cobra.Command, args []string) error {
	a, err := newAction(cmd, args)
	if err != nil {
		return err
	}
	defer a.close()

	rows, err := a.table.Rows(cmd.Context(), a.records)
	if err != nil {
		return err
	}

	rec, err := a.table.Record(memory.NewGoAllocator(), rows)
	if err != nil {
		return fmt.Errorf("failed to build record: %w", err)
	}
	defer rec.Release()

	out, err := a.output()
	if err != nil {
		return err
	}
	defer out.Close()

	return arrowconv.WriteParquet(out, rec)
}
