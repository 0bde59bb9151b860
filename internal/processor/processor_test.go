package processor

import (
	"bytes"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nconklindev/sheetwise/internal/sheet"
	"github.com/nconklindev/sheetwise/internal/types"
)

func newTestProcessor(buf *bytes.Buffer) *Processor {
	return New(sheet.Options{}, slog.New(slog.NewTextHandler(buf, nil)))
}

func writeFixture(t *testing.T, path string, headers []string, rows ...[]any) {
	t.Helper()
	tbl := types.NewTable(headers)
	for _, row := range rows {
		values := make([]types.Value, len(row))
		for i, v := range row {
			values[i] = types.ValueOf(v)
		}
		tbl.AppendRow(values)
	}
	require.NoError(t, sheet.WriteTable(tbl, path))
}

func TestStandardize(t *testing.T) {
	tmpDir := t.TempDir()
	inputFile := filepath.Join(tmpDir, "processos_forum.xlsx")
	outputFile := filepath.Join(tmpDir, "processos_padronizados.xlsx")
	writeFixture(t, inputFile, []string{"Num. Proc.", "Cliente"},
		[]any{"12345", "Empresa X"},
		[]any{"67890", "João Silva"},
		[]any{"11223", "Maria Santos"},
	)

	var logs bytes.Buffer
	progress := make(chan float64, 10)
	result, err := newTestProcessor(&logs).Standardize(inputFile, outputFile,
		map[string]string{"Num. Proc.": "Numero_Processo", "Descr. Processo": "Descricao_Processo"},
		"Status", "A Analisar", progress)
	require.NoError(t, err)

	assert.Equal(t, []string{"Numero_Processo", "Cliente", "Status"}, result.Columns)
	assert.Equal(t, []string{"Numero_Processo"}, result.RenamedColumns)
	assert.Equal(t, 3, result.RowsProcessed)
	assert.False(t, result.Overwritten)

	out, err := sheet.ReadTable(outputFile, sheet.Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Numero_Processo", "Cliente", "Status"}, out.Headers())
	assert.Equal(t, 3, out.NumRows())

	status, err := out.Column("Status")
	require.NoError(t, err)
	for _, v := range status.Values {
		assert.Equal(t, types.String, v.Kind)
		assert.Equal(t, "A Analisar", v.Text)
	}

	close(progress)
	var last float64
	for p := range progress {
		last = p
	}
	assert.Equal(t, 1.0, last)

	assert.Contains(t, logs.String(), "Modified spreadsheet saved")
}

func TestStandardizeEmptyMappingKeepsColumns(t *testing.T) {
	tmpDir := t.TempDir()
	inputFile := filepath.Join(tmpDir, "in.csv")
	outputFile := filepath.Join(tmpDir, "out.csv")
	writeFixture(t, inputFile, []string{"A", "B"}, []any{"1", "2"})

	var logs bytes.Buffer
	result, err := newTestProcessor(&logs).Standardize(inputFile, outputFile, nil, "B", 3, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B"}, result.Columns)
	assert.True(t, result.Overwritten)

	out, err := sheet.ReadTable(outputFile, sheet.Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, out.Headers())
	assert.Equal(t, "3", out.Row(0)[1].String())
}

func TestStandardizeFailures(t *testing.T) {
	tmpDir := t.TempDir()
	outputFile := filepath.Join(tmpDir, "out.xlsx")

	broken := filepath.Join(tmpDir, "broken.xlsx")
	require.NoError(t, os.WriteFile(broken, []byte("not a workbook"), 0o644))

	valid := filepath.Join(tmpDir, "valid.xlsx")
	writeFixture(t, valid, []string{"A"}, []any{"1"})

	tests := []struct {
		name   string
		input  string
		output string
		kind   Kind
	}{
		{"Missing input", filepath.Join(tmpDir, "processos_forum.xlsx"), outputFile, NotFound},
		{"Malformed input", broken, outputFile, ReadError},
		{"Unwritable output", valid, filepath.Join(tmpDir, "no", "such", "dir", "out.xlsx"), WriteError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs bytes.Buffer
			result, err := newTestProcessor(&logs).Standardize(tt.input, tt.output, nil, "Status", "A Analisar", nil)
			require.Error(t, err)
			assert.Nil(t, result)
			assert.Equal(t, tt.kind, KindOf(err))
			assert.Contains(t, logs.String(), tt.kind.String())

			_, statErr := os.Stat(tt.output)
			assert.True(t, errors.Is(statErr, fs.ErrNotExist), "no output file expected")
		})
	}
}

func TestStandardizeNotFoundMessage(t *testing.T) {
	var logs bytes.Buffer
	_, err := newTestProcessor(&logs).Standardize("processos_forum.xlsx", filepath.Join(t.TempDir(), "out.xlsx"), nil, "Status", "A Analisar", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	var e *Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, "standardize", e.Op)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestPartitionByColumn(t *testing.T) {
	tmpDir := t.TempDir()
	inputFile := filepath.Join(tmpDir, "processos_padronizados.xlsx")
	outputDir := filepath.Join(tmpDir, "nested", "planilhas_por_data")
	writeFixture(t, inputFile, []string{"Numero_Processo", "Data_Entrada"},
		[]any{"12345", "2024-01-15"},
		[]any{"67890", "2024-01-15"},
		[]any{"11223", "2024-02-20"},
		[]any{"44556", nil},
	)

	var logs bytes.Buffer
	progress := make(chan float64, 10)
	result, err := newTestProcessor(&logs).PartitionByColumn(inputFile, "Data_Entrada", outputDir, progress)
	require.NoError(t, err)

	require.Len(t, result.Files, 2)
	assert.Equal(t, 1, result.SkippedRows)

	entries, err := os.ReadDir(outputDir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	assert.Equal(t, []string{"Data_Entrada_2024-01-15.xlsx", "Data_Entrada_2024-02-20.xlsx"}, names)

	expectedRows := map[string][]string{
		"Data_Entrada_2024-01-15.xlsx": {"12345", "67890"},
		"Data_Entrada_2024-02-20.xlsx": {"11223"},
	}
	for name, ids := range expectedRows {
		part, err := sheet.ReadTable(filepath.Join(outputDir, name), sheet.Options{})
		require.NoError(t, err)
		assert.Equal(t, []string{"Numero_Processo", "Data_Entrada"}, part.Headers())
		require.Equal(t, len(ids), part.NumRows(), name)

		keys, err := part.Distinct("Data_Entrada")
		require.NoError(t, err)
		assert.Len(t, keys, 1, "every row in a partition shares one key")

		for i, id := range ids {
			assert.Equal(t, id, part.Row(i)[0].String())
		}
	}

	close(progress)
	var last float64
	for p := range progress {
		last = p
	}
	assert.Equal(t, 1.0, last)
	assert.Contains(t, logs.String(), "Spreadsheet created for value")
}

func TestPartitionByColumnReplacesSlashes(t *testing.T) {
	tmpDir := t.TempDir()
	inputFile := filepath.Join(tmpDir, "in.csv")
	writeFixture(t, inputFile, []string{"Data"},
		[]any{"15/01/2024"},
		[]any{"20/02/2024"},
	)

	var logs bytes.Buffer
	result, err := newTestProcessor(&logs).PartitionByColumn(inputFile, "Data", tmpDir, nil)
	require.NoError(t, err)
	require.Len(t, result.Files, 2)
	assert.Equal(t, filepath.Join(tmpDir, "Data_15-01-2024.csv"), result.Files[0].Path)
	assert.Equal(t, filepath.Join(tmpDir, "Data_20-02-2024.csv"), result.Files[1].Path)
	assert.Equal(t, "15/01/2024", result.Files[0].Value)
}

func TestPartitionByColumnFailures(t *testing.T) {
	tmpDir := t.TempDir()
	inputFile := filepath.Join(tmpDir, "in.xlsx")
	writeFixture(t, inputFile, []string{"Data_Entrada"}, []any{"2024-01-15"})

	t.Run("Missing input", func(t *testing.T) {
		var logs bytes.Buffer
		_, err := newTestProcessor(&logs).PartitionByColumn(filepath.Join(tmpDir, "nope.xlsx"), "Data_Entrada", tmpDir, nil)
		assert.Equal(t, NotFound, KindOf(err))
	})

	t.Run("Unknown column", func(t *testing.T) {
		var logs bytes.Buffer
		_, err := newTestProcessor(&logs).PartitionByColumn(inputFile, "Data", filepath.Join(tmpDir, "out"), nil)
		assert.Equal(t, ReadError, KindOf(err))
		assert.True(t, errors.Is(err, types.ErrColumnNotFound))
	})

	t.Run("Output dir is a file", func(t *testing.T) {
		var logs bytes.Buffer
		_, err := newTestProcessor(&logs).PartitionByColumn(inputFile, "Data_Entrada", inputFile, nil)
		assert.Equal(t, WriteError, KindOf(err))
	})
}

func TestPartitionByColumnNameCollision(t *testing.T) {
	tmpDir := t.TempDir()
	inputFile := filepath.Join(tmpDir, "in.csv")
	outputDir := filepath.Join(tmpDir, "out")
	writeFixture(t, inputFile, []string{"K"},
		[]any{"a/b"},
		[]any{"a-b"},
		[]any{"c"},
	)

	var logs bytes.Buffer
	result, err := newTestProcessor(&logs).PartitionByColumn(inputFile, "K", outputDir, nil)
	require.Error(t, err)
	assert.Equal(t, WriteError, KindOf(err))
	assert.True(t, errors.Is(err, ErrNameCollision))

	// The loop stops at the failure; earlier files stay on disk.
	require.NotNil(t, result)
	require.Len(t, result.Files, 1)
	_, statErr := os.Stat(filepath.Join(outputDir, "K_a-b.csv"))
	assert.NoError(t, statErr)
	_, statErr = os.Stat(filepath.Join(outputDir, "K_c.csv"))
	assert.True(t, errors.Is(statErr, fs.ErrNotExist))
}

func TestPartitionFileName(t *testing.T) {
	tests := []struct {
		name     string
		value    types.Value
		expected string
	}{
		{"ISO date text", types.StringValue("2024-01-15"), "Data_Entrada_2024-01-15.xlsx"},
		{"Slashes", types.StringValue("1/15/2024"), "Data_Entrada_1-15-2024.xlsx"},
		{"Number", types.NumberValue(7), "Data_Entrada_7.xlsx"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, PartitionFileName("Data_Entrada", tt.value, ".xlsx"))
		})
	}
}

func TestStandardizedPath(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"processos_forum.xlsx", "processos_forum_padronizado.xlsx"},
		{"dir/dados.csv", "dir/dados_padronizado.csv"},
		{"sem_extensao", "sem_extensao_padronizado"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, StandardizedPath(tt.input, "_padronizado"))
		})
	}
}
