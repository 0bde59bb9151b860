package sheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/nconklindev/sheetwise/internal/types"

	"github.com/xuri/excelize/v2"
)

const RowDetectionLimit = 10

var ErrEmptyFile = errors.New("empty file")

type Options struct {
	// Sheet selects the worksheet to read. The first sheet is used when empty.
	Sheet string
	// DetectHeader looks for the header among the first rows instead of
	// taking row 1.
	DetectHeader bool
}

// ReadTable loads a .csv or .xlsx file into a table. A missing file is
// reported with an error wrapping fs.ErrNotExist.
func ReadTable(filePath string, opts Options) (*types.Table, error) {
	if _, err := os.Stat(filePath); err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(filePath))

	switch ext {
	case ".csv":
		return readCSV(filePath, opts)
	case ".xlsx", ".xlsm":
		return readXLSX(filePath, opts)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", ext)
	}
}

func readCSV(filePath string, opts Options) (*types.Table, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(records) == 0 {
		return nil, ErrEmptyFile
	}
	if len(records[0]) > 0 {
		records[0][0] = strings.TrimPrefix(records[0][0], "\ufeff")
	}

	headerRowIdx, err := headerRow(records, opts)
	if err != nil {
		return nil, err
	}

	t := types.NewTable(normalizeHeaders(records[headerRowIdx], records[headerRowIdx+1:]))
	for _, record := range records[headerRowIdx+1:] {
		values := make([]types.Value, len(record))
		for i, cell := range record {
			values[i] = types.StringValue(cell)
		}
		t.AppendRow(values)
	}

	return t, nil
}

func readXLSX(filePath string, opts Options) (*types.Table, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheetName := opts.Sheet
	if sheetName == "" {
		sheetName = f.GetSheetName(0)
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, err
	}
	raw, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}

	headerRowIdx, err := headerRow(rows, opts)
	if err != nil {
		return nil, err
	}

	x := &xlsxReader{f: f, sheet: sheetName, styles: make(map[int]*excelize.Style)}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		x.date1904 = *props.Date1904
	}

	t := types.NewTable(normalizeHeaders(rows[headerRowIdx], rows[headerRowIdx+1:]))
	for rowIdx := headerRowIdx + 1; rowIdx < len(rows); rowIdx++ {
		values := make([]types.Value, len(rows[rowIdx]))
		for colIdx, text := range rows[rowIdx] {
			rawText := text
			if rowIdx < len(raw) && colIdx < len(raw[rowIdx]) {
				rawText = raw[rowIdx][colIdx]
			}
			v, err := x.value(colIdx, rowIdx, text, rawText)
			if err != nil {
				return nil, err
			}
			values[colIdx] = v
		}
		t.AppendRow(values)
	}

	return t, nil
}

type xlsxReader struct {
	f        *excelize.File
	sheet    string
	date1904 bool
	styles   map[int]*excelize.Style
}

// value types a cell using the cell type recorded in the workbook. Cells
// without a string or boolean type that parse as numbers are numbers, and
// numbers carrying a date format become dates.
func (x *xlsxReader) value(colIdx, rowIdx int, text, raw string) (types.Value, error) {
	if text == "" && raw == "" {
		return types.Value{}, nil
	}

	cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)
	if err != nil {
		return types.Value{}, err
	}

	cellType, err := x.f.GetCellType(x.sheet, cell)
	if err != nil {
		return types.Value{}, err
	}

	switch cellType {
	case excelize.CellTypeBool:
		return types.BoolValue(raw == "1" || strings.EqualFold(raw, "true")), nil
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeFormula, excelize.CellTypeError:
		return types.StringValue(text), nil
	}

	num, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return types.StringValue(text), nil
	}

	v := types.Value{Kind: types.Number, Num: num, Text: text}

	styleID, err := x.f.GetCellStyle(x.sheet, cell)
	if err != nil {
		return types.Value{}, err
	}
	if styleID != 0 {
		style, err := x.style(styleID)
		if err != nil {
			return types.Value{}, err
		}
		v.NumFmt = style.NumFmt
		if style.CustomNumFmt != nil {
			v.CustomNumFmt = *style.CustomNumFmt
		}
	}

	if isDateFormat(v.NumFmt, v.CustomNumFmt) {
		if tm, err := excelize.ExcelDateToTime(num, x.date1904); err == nil {
			v.Kind = types.Date
			v.Time = tm
		}
	}

	return v, nil
}

func (x *xlsxReader) style(id int) (*excelize.Style, error) {
	if s, ok := x.styles[id]; ok {
		return s, nil
	}
	s, err := x.f.GetStyle(id)
	if err != nil {
		return nil, err
	}
	x.styles[id] = s
	return s, nil
}

// isDateFormat reports whether a number format renders a calendar date.
// Time-only formats are left as numbers.
func isDateFormat(numFmt int, custom string) bool {
	if custom != "" {
		var b strings.Builder
		quoted, bracket := false, false
		for _, r := range strings.ToLower(custom) {
			switch {
			case r == '"':
				quoted = !quoted
			case r == '[' && !quoted:
				bracket = true
			case r == ']' && !quoted:
				bracket = false
			case !quoted && !bracket:
				b.WriteRune(r)
			}
		}
		f := b.String()
		return strings.ContainsAny(f, "yd")
	}

	switch {
	case numFmt >= 14 && numFmt <= 17, numFmt == 22:
		return true
	case numFmt >= 27 && numFmt <= 36:
		return true
	case numFmt >= 50 && numFmt <= 58:
		return true
	}
	return false
}

func headerRow(rows [][]string, opts Options) (int, error) {
	if !opts.DetectHeader {
		return 0, nil
	}
	idx := findHeaderRow(rows)
	if idx == -1 {
		return 0, fmt.Errorf("could not find header row")
	}
	return idx, nil
}

// normalizeHeaders widens the header to the widest data row, names blank
// headers "Unnamed: <index>" and suffixes repeated names with ".1", ".2".
func normalizeHeaders(header []string, rows [][]string) []string {
	width := len(header)
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}

	names := make([]string, width)
	seen := make(map[string]int)
	for i := 0; i < width; i++ {
		name := ""
		if i < len(header) {
			name = strings.TrimSpace(header[i])
		}
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}

		base := name
		for n := seen[base]; seen[name] > 0; n++ {
			name = fmt.Sprintf("%s.%d", base, n)
		}
		seen[base]++
		if name != base {
			seen[name]++
		}
		names[i] = name
	}
	return names
}

// findHeaderRow locates the first row that appears to be a header
// by finding the row with the most non-empty text cells
func findHeaderRow(rows [][]string) int {
	maxNonEmpty := 0
	headerIdx := -1

	// Look at first 20 rows max
	searchLimit := len(rows)
	if searchLimit > RowDetectionLimit*2 {
		searchLimit = RowDetectionLimit * 2
	}

	for i := 0; i < searchLimit; i++ {
		nonEmptyCount := 0
		hasText := false

		for _, cell := range rows[i] {
			trimmed := strings.TrimSpace(cell)
			if trimmed != "" {
				nonEmptyCount++
				if containsLetters(trimmed) {
					hasText = true
				}
			}
		}

		// Header should have multiple columns AND contain text
		if nonEmptyCount >= 2 && hasText && nonEmptyCount > maxNonEmpty {
			maxNonEmpty = nonEmptyCount
			headerIdx = i
		}
	}

	return headerIdx
}

func containsLetters(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
