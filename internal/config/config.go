package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

const (
	EnvPrefix         = "SHEETWISE"
	DefaultConfigFile = "sheetwise.yaml"
)

// Config represents the complete application configuration
type Config struct {
	Logging     LoggingConfig     `yaml:"logging" envconfig:"LOGGING"`
	Sheet       SheetConfig       `yaml:"sheet" envconfig:"SHEET"`
	Standardize StandardizeConfig `yaml:"standardize" envconfig:"STANDARDIZE"`
	Partition   PartitionConfig   `yaml:"partition" envconfig:"PARTITION"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" validate:"required_unless=Output console"`
}

type SheetConfig struct {
	Name         string `yaml:"name" envconfig:"NAME"`
	DetectHeader bool   `yaml:"detect_header" envconfig:"DETECT_HEADER"`
}

// StandardizeConfig holds the column rename mapping and the constant column
// added to every row.
type StandardizeConfig struct {
	Mapping      map[string]string `yaml:"mapping" envconfig:"MAPPING"`
	NewColumn    string            `yaml:"new_column" envconfig:"NEW_COLUMN" validate:"required"`
	NewValue     string            `yaml:"new_value" envconfig:"NEW_VALUE"`
	OutputSuffix string            `yaml:"output_suffix" envconfig:"OUTPUT_SUFFIX" validate:"required"`
}

type PartitionConfig struct {
	KeyColumn string `yaml:"key_column" envconfig:"KEY_COLUMN" validate:"required"`
	OutputDir string `yaml:"output_dir" envconfig:"OUTPUT_DIR" validate:"required"`
}

// DefaultMapping renames the columns of the court process spreadsheets the
// tool was written for.
func DefaultMapping() map[string]string {
	return map[string]string{
		"Num. Proc.":      "Numero_Processo",
		"Cliente":         "Nome_Cliente",
		"Descr. Processo": "Descricao_Processo",
		"Data Entr.":      "Data_Entrada",
	}
}

// Load reads configuration from an optional YAML file, then environment
// variables, then fills defaults for anything left unset. path may be
// empty, in which case SHEETWISE_CONFIG or ./sheetwise.yaml is used when
// present.
func Load(path string) (*Config, error) {
	var cfg Config

	explicit := path != ""
	if path == "" {
		path = os.Getenv(EnvPrefix + "_CONFIG")
		explicit = path != ""
	}
	if path == "" {
		path = DefaultConfigFile
	}

	if _, err := os.Stat(path); err == nil {
		if err := loadFromFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	} else if explicit {
		return nil, fmt.Errorf("config file: %w", err)
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.UnmarshalStrict(data, cfg)
}

// applyDefaults only touches zero values. A mapping explicitly set to an
// empty map is kept empty.
func (c *Config) applyDefaults() {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "console"
	}
	if c.Logging.FilePath == "" {
		c.Logging.FilePath = "sheetwise.log"
	}

	if c.Standardize.Mapping == nil {
		c.Standardize.Mapping = DefaultMapping()
	}
	if c.Standardize.NewColumn == "" {
		c.Standardize.NewColumn = "Status"
	}
	if c.Standardize.NewValue == "" {
		c.Standardize.NewValue = "A Analisar"
	}
	if c.Standardize.OutputSuffix == "" {
		c.Standardize.OutputSuffix = "_padronizado"
	}

	if c.Partition.KeyColumn == "" {
		c.Partition.KeyColumn = "Data_Entrada"
	}
	if c.Partition.OutputDir == "" {
		c.Partition.OutputDir = "planilhas_por_data"
	}
}

func (c *Config) Validate() error {
	return validator.New().Struct(c)
}
