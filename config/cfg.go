package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	TemplateFieldName string

	HighlightConfig struct {
		Outline       string `yaml:"outline" validate:"required"`
		OutlineOffset string `yaml:"outline_offset" validate:"required"`
	}

	EditorConfig struct {
		IDLength        int             `yaml:"id_length" validate:"min=4,max=32"`
		MaxResolveDepth int             `yaml:"max_resolve_depth" validate:"min=1,max=64"`
		DefaultTag      string          `yaml:"default_tag" validate:"required"`
		Highlight       HighlightConfig `yaml:"highlight"`
	}

	SchemaConfig struct {
		// directory with elements.yaml, properties.yaml and inputs.yaml
		// replacing built in tables
		Directory string `yaml:"directory,omitempty" sanitize:"path_clean" validate:"omitempty,dir"`
	}

	StoreConfig struct {
		Database string `yaml:"database" sanitize:"path_clean,assure_dir_exists_for_file" validate:"required"`
	}

	RenderConfig struct {
		Format             string `yaml:"format" validate:"oneof=html xhtml page css json"`
		TitleTemplate      string `yaml:"title_template"`
		OutputNameTemplate string `yaml:"output_name_template"`
	}

	Config struct {
		Version   int            `yaml:"version" validate:"eq=1"`
		Editor    EditorConfig   `yaml:"editor"`
		Schema    SchemaConfig   `yaml:"schema"`
		Store     StoreConfig    `yaml:"store"`
		Render    RenderConfig   `yaml:"render"`
		Logging   LoggingConfig  `yaml:"logging"`
		Reporting ReporterConfig `yaml:"reporting"`
	}
)

const (
	// NOTE: must match yaml field name above
	TitleTemplateFieldName      TemplateFieldName = "title_template"
	OutputNameTemplateFieldName TemplateFieldName = "output_name_template"
)

var requiredOptions = append([]func(*gencfg.ProcessingOptions){},
	gencfg.WithDoNotExpandField(string(TitleTemplateFieldName)),
	gencfg.WithDoNotExpandField(string(OutputNameTemplateFieldName)),
)

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// We want to use only fields we defined so we cannot use yaml.Unmarshal
	// directly here
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, fmt.Errorf("failed to sanitize configuration: %w", err)
		}
		if err := gencfg.Validate(cfg); err != nil {
			return nil, fmt.Errorf("failed to validate configuration: %w", err)
		}
	}
	return cfg, nil
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposes its values on top of expanded configuration template to provide
// sane defaults and performs validation.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, append(requiredOptions, options...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	// overwrite cfg values with values from the file
	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare generates configuration file from template and returns it as a byte
// slice.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl, requiredOptions...)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %w", err)
	}
	return data, nil
}
