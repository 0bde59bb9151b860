package processor

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/nconklindev/sheetwise/internal/sheet"
	"github.com/nconklindev/sheetwise/internal/types"
)

var ErrNameCollision = errors.New("distinct values map to the same file name")

// PartitionFileName builds "<keyColumn>_<value><ext>" with every "/" in the
// value replaced by "-".
func PartitionFileName(keyColumn string, v types.Value, ext string) string {
	return fmt.Sprintf("%s_%s%s", keyColumn, strings.ReplaceAll(v.String(), "/", "-"), ext)
}

// PartitionByColumn writes one file per distinct non-missing value of
// keyColumn into outputDir, which is created if needed. Output files use
// the input file's format. Rows with no key value are left out. On error
// the partially filled result is returned with the files written so far,
// which stay on disk.
func (p *Processor) PartitionByColumn(inputFile, keyColumn, outputDir string, progressChan chan<- float64) (*types.PartitionResult, error) {
	const op = "partition"

	t, err := sheet.ReadTable(inputFile, p.opts)
	if err != nil {
		return nil, p.fail(readErr(op, inputFile, err))
	}
	p.log.Info("Spreadsheet read",
		slog.String("file", filepath.Base(inputFile)),
		slog.Int("rows", t.NumRows()))

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, p.fail(writeErr(op, outputDir, err))
	}

	values, err := t.Distinct(keyColumn)
	if err != nil {
		return nil, p.fail(&Error{Kind: ReadError, Op: op, Path: inputFile, Err: err})
	}
	skipped, err := t.CountMissing(keyColumn)
	if err != nil {
		return nil, p.fail(&Error{Kind: ReadError, Op: op, Path: inputFile, Err: err})
	}

	result := &types.PartitionResult{
		InputFile:   inputFile,
		OutputDir:   outputDir,
		KeyColumn:   keyColumn,
		SkippedRows: skipped,
	}

	ext := filepath.Ext(inputFile)
	names := make(map[string]types.Value, len(values))

	for i, v := range values {
		name := PartitionFileName(keyColumn, v, ext)
		path := filepath.Join(outputDir, name)

		if prev, ok := names[name]; ok {
			err := fmt.Errorf("%w: %s %q and %s %q", ErrNameCollision, prev.Kind, prev.String(), v.Kind, v.String())
			return result, p.fail(writeErr(op, path, err))
		}
		names[name] = v

		part, err := t.Filter(keyColumn, v)
		if err != nil {
			return result, p.fail(&Error{Kind: ReadError, Op: op, Path: inputFile, Err: err})
		}

		if err := sheet.WriteTable(part, path); err != nil {
			return result, p.fail(writeErr(op, path, err))
		}

		result.Files = append(result.Files, types.PartitionFile{
			Value: v.String(),
			Path:  path,
			Rows:  part.NumRows(),
		})
		p.log.Info("Spreadsheet created for value",
			slog.String("value", v.String()),
			slog.String("file", name),
			slog.Int("rows", part.NumRows()))

		reportProgress(progressChan, float64(i+1)/float64(len(values)))
	}

	if skipped > 0 {
		p.log.Warn("Rows without a key value were skipped",
			slog.String("column", keyColumn),
			slog.Int("rows", skipped))
	}

	return result, nil
}
