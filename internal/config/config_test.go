package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sheetwise.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SHEETWISE_CONFIG", "")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultMapping(), cfg.Standardize.Mapping)
	assert.Equal(t, "Status", cfg.Standardize.NewColumn)
	assert.Equal(t, "A Analisar", cfg.Standardize.NewValue)
	assert.Equal(t, "Data_Entrada", cfg.Partition.KeyColumn)
	assert.Equal(t, "planilhas_por_data", cfg.Partition.OutputDir)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Output)
	assert.False(t, cfg.Sheet.DetectHeader)
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: debug
  format: json
standardize:
  mapping:
    "Proc.": Processo
  new_column: Situacao
  new_value: Pendente
partition:
  key_column: Data
  output_dir: saida
sheet:
  detect_header: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"Proc.": "Processo"}, cfg.Standardize.Mapping)
	assert.Equal(t, "Situacao", cfg.Standardize.NewColumn)
	assert.Equal(t, "Pendente", cfg.Standardize.NewValue)
	assert.Equal(t, "Data", cfg.Partition.KeyColumn)
	assert.Equal(t, "saida", cfg.Partition.OutputDir)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.True(t, cfg.Sheet.DetectHeader)
	// Unset fields still get defaults.
	assert.Equal(t, "_padronizado", cfg.Standardize.OutputSuffix)
}

func TestLoadEmptyMappingIsKept(t *testing.T) {
	path := writeConfig(t, "standardize:\n  mapping: {}\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Empty(t, cfg.Standardize.Mapping)
	assert.NotNil(t, cfg.Standardize.Mapping)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "partition:\n  key_column: Data\n")
	t.Setenv("SHEETWISE_PARTITION_KEY_COLUMN", "Data_Saida")
	t.Setenv("SHEETWISE_STANDARDIZE_MAPPING", "Cliente:Nome_Cliente")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Data_Saida", cfg.Partition.KeyColumn)
	assert.Equal(t, map[string]string{"Cliente": "Nome_Cliente"}, cfg.Standardize.Mapping)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"Invalid level", "logging:\n  level: loud\n"},
		{"Invalid output", "logging:\n  output: printer\n"},
		{"Unknown key", "partition:\n  column: Data\n"},
		{"Malformed YAML", "standardize: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}

	t.Run("Missing explicit file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}
