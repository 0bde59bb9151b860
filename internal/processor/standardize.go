package processor

import (
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/nconklindev/sheetwise/internal/sheet"
	"github.com/nconklindev/sheetwise/internal/types"
)

// StandardizedPath returns the default output path for a standardized copy
// of inputFile: the input name with suffix inserted before the extension.
func StandardizedPath(inputFile, suffix string) string {
	ext := filepath.Ext(inputFile)
	return strings.TrimSuffix(inputFile, ext) + suffix + ext
}

// Standardize renames the columns of inputFile according to mapping, sets
// newColumn to newValue on every row and writes the result to outputFile.
// Mapping keys missing from the file are ignored. An existing column named
// newColumn is overwritten. Nothing is written to outputFile on failure.
func (p *Processor) Standardize(inputFile, outputFile string, mapping map[string]string, newColumn string, newValue any, progressChan chan<- float64) (*types.StandardizeResult, error) {
	const op = "standardize"

	t, err := sheet.ReadTable(inputFile, p.opts)
	if err != nil {
		return nil, p.fail(readErr(op, inputFile, err))
	}
	p.log.Info("Spreadsheet read",
		slog.String("file", filepath.Base(inputFile)),
		slog.Int("rows", t.NumRows()))
	reportProgress(progressChan, 1.0/3)

	renamed := t.Rename(mapping)
	p.log.Info("Column names standardized", slog.Any("renamed", renamed))

	value := types.ValueOf(newValue)
	overwritten := t.SetConstant(newColumn, value)
	p.log.Info("Column added",
		slog.String("column", newColumn),
		slog.String("value", value.String()),
		slog.Bool("overwritten", overwritten))
	reportProgress(progressChan, 2.0/3)

	if err := sheet.WriteTable(t, outputFile); err != nil {
		return nil, p.fail(writeErr(op, outputFile, err))
	}
	p.log.Info("Modified spreadsheet saved", slog.String("file", filepath.Base(outputFile)))
	reportProgress(progressChan, 1)

	return &types.StandardizeResult{
		InputFile:      inputFile,
		OutputFile:     outputFile,
		Columns:        t.Headers(),
		RenamedColumns: renamed,
		AddedColumn:    newColumn,
		Overwritten:    overwritten,
		RowsProcessed:  t.NumRows(),
	}, nil
}

func (p *Processor) fail(e *Error) *Error {
	p.log.Error("Operation failed",
		slog.String("op", e.Op),
		slog.String("kind", e.Kind.String()),
		slog.String("path", e.Path),
		slog.Any("error", e.Err))
	return e
}
