package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/nconklindev/sheetwise/internal/config"
	"github.com/nconklindev/sheetwise/internal/logging"
	"github.com/nconklindev/sheetwise/internal/processor"
	"github.com/nconklindev/sheetwise/internal/sheet"
	"github.com/nconklindev/sheetwise/internal/types"
)

func usage(w io.Writer) {
	fmt.Fprint(w, `Usage: sheetwise [command] [flags]

Commands:
  standardize  rename columns and add a constant column
  split        write one file per distinct value of a column
  run          standardize, then split the standardized file
  preview      print the first rows of a file

Run without a command for the interactive mode.
Use "sheetwise <command> -h" for command flags.
`)
}

// mappingFlag collects repeated -map old=new flags.
type mappingFlag map[string]string

func (m mappingFlag) String() string {
	pairs := make([]string, 0, len(m))
	for k, v := range m {
		pairs = append(pairs, k+"="+v)
	}
	sort.Strings(pairs)
	return strings.Join(pairs, ",")
}

func (m mappingFlag) Set(s string) error {
	from, to, ok := strings.Cut(s, "=")
	if !ok || from == "" || to == "" {
		return fmt.Errorf("expected old=new, got %q", s)
	}
	m[from] = to
	return nil
}

type app struct {
	cfg      *config.Config
	log      *slog.Logger
	proc     *processor.Processor
	closeLog func() error
}

func setup(configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	logger, closeLog, err := logging.Initialize(cfg.Logging)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:      cfg,
		log:      logger,
		proc:     processor.New(sheetOptions(cfg), logger),
		closeLog: closeLog,
	}, nil
}

func sheetOptions(cfg *config.Config) sheet.Options {
	return sheet.Options{
		Sheet:        cfg.Sheet.Name,
		DetectHeader: cfg.Sheet.DetectHeader,
	}
}

type standardizeFlags struct {
	mapping mappingFlag
	column  string
	value   string
	out     string
}

func (f *standardizeFlags) register(fs *flag.FlagSet) {
	f.mapping = mappingFlag{}
	fs.Var(f.mapping, "map", "column rename old=new (repeatable, replaces the configured mapping)")
	fs.StringVar(&f.column, "column", "", "name of the constant column to add")
	fs.StringVar(&f.value, "value", "", "value of the constant column")
	fs.StringVar(&f.out, "out", "", "output file (defaults to the input name plus the configured suffix)")
}

func (f *standardizeFlags) apply(cfg *config.Config) {
	if len(f.mapping) > 0 {
		cfg.Standardize.Mapping = f.mapping
	}
	if f.column != "" {
		cfg.Standardize.NewColumn = f.column
	}
	if f.value != "" {
		cfg.Standardize.NewValue = f.value
	}
}

func (a *app) standardize(in, out string) (*types.StandardizeResult, error) {
	if out == "" {
		out = processor.StandardizedPath(in, a.cfg.Standardize.OutputSuffix)
	}
	return a.proc.Standardize(in, out,
		a.cfg.Standardize.Mapping,
		a.cfg.Standardize.NewColumn,
		a.cfg.Standardize.NewValue,
		nil)
}

func (a *app) split(in, key, dir string) error {
	if key == "" {
		key = a.cfg.Partition.KeyColumn
	}
	if dir == "" {
		dir = a.cfg.Partition.OutputDir
	}
	result, err := a.proc.PartitionByColumn(in, key, dir, nil)
	if result != nil {
		printPartitions(os.Stdout, result)
	}
	return err
}

func runStandardize(args []string) error {
	fs := flag.NewFlagSet("standardize", flag.ExitOnError)
	configPath := fs.String("config", "", "config file")
	in := fs.String("in", "", "input .xlsx or .csv file")
	var sf standardizeFlags
	sf.register(fs)
	fs.Parse(args)

	if *in == "" {
		return errors.New("standardize: -in is required")
	}

	a, err := setup(*configPath)
	if err != nil {
		return err
	}
	defer a.closeLog()
	sf.apply(a.cfg)

	result, err := a.standardize(*in, sf.out)
	if err != nil {
		return err
	}
	fmt.Printf("Saved %s (%d rows, columns: %s)\n", result.OutputFile, result.RowsProcessed, strings.Join(result.Columns, ", "))
	return nil
}

func runSplit(args []string) error {
	fs := flag.NewFlagSet("split", flag.ExitOnError)
	configPath := fs.String("config", "", "config file")
	in := fs.String("in", "", "input .xlsx or .csv file")
	key := fs.String("key", "", "column to split by")
	dir := fs.String("dir", "", "output directory")
	fs.Parse(args)

	if *in == "" {
		return errors.New("split: -in is required")
	}

	a, err := setup(*configPath)
	if err != nil {
		return err
	}
	defer a.closeLog()

	return a.split(*in, *key, *dir)
}

// runPipeline standardizes the input and splits the standardized file by
// the configured key column.
func runPipeline(args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	configPath := fs.String("config", "", "config file")
	in := fs.String("in", "", "input .xlsx or .csv file")
	key := fs.String("key", "", "column to split by")
	dir := fs.String("dir", "", "output directory")
	var sf standardizeFlags
	sf.register(fs)
	fs.Parse(args)

	if *in == "" {
		return errors.New("run: -in is required")
	}

	a, err := setup(*configPath)
	if err != nil {
		return err
	}
	defer a.closeLog()
	sf.apply(a.cfg)

	result, err := a.standardize(*in, sf.out)
	if err != nil {
		return err
	}
	a.log.Info("Splitting standardized spreadsheet", slog.String("file", result.OutputFile))
	return a.split(result.OutputFile, *key, *dir)
}

func runPreview(args []string) error {
	fs := flag.NewFlagSet("preview", flag.ExitOnError)
	configPath := fs.String("config", "", "config file")
	in := fs.String("in", "", "input .xlsx or .csv file")
	rows := fs.Int("rows", 10, "number of rows to show (0 for all)")
	fs.Parse(args)

	if *in == "" {
		return errors.New("preview: -in is required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	t, err := sheet.ReadTable(*in, sheetOptions(cfg))
	if err != nil {
		return fmt.Errorf("preview: %w", err)
	}
	return sheet.Preview(t, os.Stdout, *rows)
}

func printPartitions(w io.Writer, result *types.PartitionResult) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.Style().Format = table.FormatOptions{
		Footer: text.FormatDefault,
		Header: text.FormatDefault,
		Row:    text.FormatDefault,
	}
	tw.AppendHeader(table.Row{result.KeyColumn, "File", "Rows"})
	total := 0
	for _, f := range result.Files {
		tw.AppendRow(table.Row{f.Value, filepath.Base(f.Path), f.Rows})
		total += f.Rows
	}
	tw.AppendFooter(table.Row{"", fmt.Sprintf("%d files", len(result.Files)), total})
	tw.Render()

	if result.SkippedRows > 0 {
		fmt.Fprintf(w, "%d row(s) without %s were skipped\n", result.SkippedRows, result.KeyColumn)
	}
}
