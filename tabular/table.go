package tabular

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"tabular-mapper/internal/arrowconv"
	"tabular-mapper/internal/diagnostic"
	"tabular-mapper/internal/flatten"
	"tabular-mapper/internal/introspect"
	"tabular-mapper/internal/match"
	"tabular-mapper/internal/materialize"
	"tabular-mapper/internal/schema"
	"tabular-mapper/options"
)

// Config holds configuration for building a table.
type Config struct {
	// Flags select struct flattening and array expansion.
	Flags options.FlagEnum
	// SampleSize limits schema inference to the first records, 0 uses all of them.
	SampleSize int
	// Workers bounds the goroutines used by Rows, 0 uses GOMAXPROCS.
	Workers int
	// Logger receives construction and recovery logs, nil discards them.
	Logger *zap.Logger
	// Introspector reads records, nil uses reflection.
	Introspector introspect.Introspector
}

// DefaultConfig returns the default table configuration: nested columns, every record sampled.
func DefaultConfig() Config {
	return Config{Flags: options.FlagNone}
}

// Table is the schema inferred from a record set together with its column list.
// It is immutable and safe for concurrent use.
type Table struct {
	config       Config
	root         *schema.Node
	columns      []flatten.Column
	materializer *materialize.Materializer
	diagnostics  diagnostic.Diagnostics
}

// Build infers the schema of records and derives the column list.
//
// Struct flattening or array expansion requested in the flags runs the
// flattener, which always splices nested structs and expands arrays only with
// options.FlagExpandArrays. Without either flag the columns are the top-level
// properties, with nested structs and collections as struct and array columns.
func Build(records []any, config Config) (*Table, error) {
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}

	if config.Introspector == nil {
		config.Introspector = introspect.NewReflect()
	}

	sample := records
	if config.SampleSize > 0 && len(sample) > config.SampleSize {
		sample = sample[:config.SampleSize]
	}

	gen := schema.NewGenerator(config.Introspector, config.Logger)

	root, err := gen.InferAll(sample)
	if err != nil {
		var conflict *schema.ConflictError
		if errors.As(err, &conflict) && conflict.Diagnostics.HasErrors() {
			config.Logger.Error("schema conflict",
				zap.String("record", conflict.Record),
				zap.Int("warnings", len(conflict.Diagnostics.Warnings)),
				zap.Error(conflict.Diagnostics.Error()))
		}

		return nil, fmt.Errorf("failed to infer schema: %w", err)
	}

	t := &Table{
		config:       config,
		materializer: materialize.New(config.Introspector, config.Logger),
		diagnostics:  gen.Diagnostics(),
	}

	if config.Flags.Has(options.FlagExpandStructs) || config.Flags.Has(options.FlagExpandArrays) {
		f := flatten.New(config.Logger)

		t.columns, t.root, err = f.Flatten(root, config.Flags.Has(options.FlagExpandArrays))
		if err != nil {
			return nil, fmt.Errorf("failed to flatten schema: %w", err)
		}

		t.diagnostics.Merge(f.Diagnostics())
	} else {
		t.root = root
		t.columns = flatten.Columns(root)
	}

	config.Logger.Info("table schema built",
		zap.Int("records", len(sample)),
		zap.Int("columns", len(t.columns)),
		zap.Stringer("flags", config.Flags),
		zap.Int("warnings", len(t.diagnostics.Warnings)))

	return t, nil
}

// Columns returns the column list.
func (t *Table) Columns() []flatten.Column {
	return slices.Clone(t.columns)
}

// Root returns the schema tree the columns were derived from.
func (t *Table) Root() *schema.Node {
	return t.root
}

// Diagnostics returns the warnings and infos collected while building the table.
func (t *Table) Diagnostics() diagnostic.Diagnostics {
	return t.diagnostics
}

// Row materializes one record.
func (t *Table) Row(record any) materialize.Row {
	return t.materializer.Row(record, t.columns)
}

// Rows materializes records in parallel, keeping their order.
func (t *Table) Rows(ctx context.Context, records []any) ([]materialize.Row, error) {
	return t.materializer.Rows(ctx, records, t.columns, t.config.Workers)
}

// Project returns a table with only the named columns, in the given order.
// A name that is not a column is resolved against the schema tree, so a field
// nested in a struct column or an index of an array column can be selected too.
func (t *Table) Project(names ...string) (*Table, error) {
	columns := make([]flatten.Column, 0, len(names))

	for _, name := range names {
		idx := slices.IndexFunc(t.columns, func(c flatten.Column) bool { return c.Name == name })
		if idx >= 0 {
			columns = append(columns, t.columns[idx])
			continue
		}

		col, err := flatten.ResolvePath(t.root, name)
		if err != nil {
			if hint, ok := match.Closest(name, t.columnNames()); ok {
				return nil, fmt.Errorf("%w, did you mean %q?", err, hint)
			}

			return nil, err
		}

		columns = append(columns, col)
	}

	projected := *t
	projected.columns = columns

	return &projected, nil
}

func (t *Table) columnNames() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
	}

	return names
}

// ArrowSchema returns the Arrow schema of the column list.
func (t *Table) ArrowSchema() *arrow.Schema {
	return arrowconv.Schema(t.columns)
}

// Record builds an Arrow record from rows of this table. The caller must Release it.
func (t *Table) Record(mem memory.Allocator, rows []materialize.Row) (arrow.Record, error) {
	return arrowconv.Record(mem, t.ArrowSchema(), rows)
}

// ColumnDescription is the exported form of a column.
type ColumnDescription struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
	Kind string `yaml:"kind,omitempty"`
	Path string `yaml:"path"`
}

// Description is the exported form of a table.
type Description struct {
	Flags   string                    `yaml:"flags"`
	Columns []ColumnDescription       `yaml:"columns"`
	Schema  []schema.FieldDescription `yaml:"schema"`
}

// Describe returns the exported form of the table.
func (t *Table) Describe() *Description {
	d := &Description{
		Flags:   t.config.Flags.String(),
		Columns: make([]ColumnDescription, 0, len(t.columns)),
		Schema:  schema.Describe(t.root),
	}

	for _, c := range t.columns {
		cd := ColumnDescription{Name: c.Name, Type: c.Type.String(), Path: c.Path.String()}
		if c.Kind != 0 {
			cd.Kind = c.Kind.TypeName()
		}

		d.Columns = append(d.Columns, cd)
	}

	return d
}

// DescribeYAML serializes the exported form of the table.
func (t *Table) DescribeYAML() ([]byte, error) {
	return yaml.Marshal(t.Describe())
}
