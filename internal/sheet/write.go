package sheet

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/nconklindev/sheetwise/internal/types"

	"github.com/xuri/excelize/v2"
)

const DefaultSheetName = "Sheet1"

// WriteTable writes the table to filePath as .csv or .xlsx, header first,
// without a row index. The file is written to a temporary name in the same
// directory and renamed into place, so a failed write leaves nothing at
// filePath.
func WriteTable(t *types.Table, filePath string) error {
	ext := strings.ToLower(filepath.Ext(filePath))

	switch ext {
	case ".csv":
		return writeAtomic(filePath, func(w io.Writer) error {
			return writeCSV(t, w)
		})
	case ".xlsx", ".xlsm":
		return writeAtomic(filePath, func(w io.Writer) error {
			return writeXLSX(t, w)
		})
	default:
		return fmt.Errorf("unsupported file type: %s", ext)
	}
}

func writeAtomic(filePath string, encode func(io.Writer) error) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(filePath), "."+filepath.Base(filePath)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = encode(tmp); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), filePath)
}

func writeCSV(t *types.Table, w io.Writer) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(t.Headers()); err != nil {
		return err
	}

	record := make([]string, len(t.Columns))
	for i := 0; i < t.NumRows(); i++ {
		for j, c := range t.Columns {
			record[j] = c.Values[i].String()
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func writeXLSX(t *types.Table, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := DefaultSheetName
	headers := t.Headers()
	if err := f.SetSheetRow(sheetName, "A1", &headers); err != nil {
		return err
	}

	styles := make(map[string]int)
	for rowIdx := 0; rowIdx < t.NumRows(); rowIdx++ {
		for colIdx, c := range t.Columns {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				return err
			}
			if err := writeCell(f, sheetName, cell, c.Values[rowIdx], styles); err != nil {
				return fmt.Errorf("cell %s: %w", cell, err)
			}
		}
	}

	return f.Write(w)
}

func writeCell(f *excelize.File, sheetName, cell string, v types.Value, styles map[string]int) error {
	switch v.Kind {
	case types.Missing:
		return nil
	case types.String:
		return f.SetCellStr(sheetName, cell, v.Text)
	case types.Bool:
		return f.SetCellBool(sheetName, cell, v.Bool)
	case types.Date:
		if v.NumFmt == 0 && v.CustomNumFmt == "" {
			// No format from a source workbook: excelize applies its
			// default date format to time values.
			return f.SetCellValue(sheetName, cell, v.Time)
		}
	}

	if err := f.SetCellFloat(sheetName, cell, v.Num, -1, 64); err != nil {
		return err
	}
	if v.NumFmt == 0 && v.CustomNumFmt == "" {
		return nil
	}

	styleID, err := numFmtStyle(f, v, styles)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheetName, cell, cell, styleID)
}

func numFmtStyle(f *excelize.File, v types.Value, styles map[string]int) (int, error) {
	key := fmt.Sprintf("%d|%s", v.NumFmt, v.CustomNumFmt)
	if id, ok := styles[key]; ok {
		return id, nil
	}

	style := &excelize.Style{NumFmt: v.NumFmt}
	if v.CustomNumFmt != "" {
		custom := v.CustomNumFmt
		style.CustomNumFmt = &custom
	}

	id, err := f.NewStyle(style)
	if err != nil {
		return 0, err
	}
	styles[key] = id
	return id, nil
}
