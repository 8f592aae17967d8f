// Package config binds spanlog options to a YAML file and the environment
// and keeps them up to date while the file changes.
package config

import (
	"io/fs"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/erc7824/tracelog/pkg/spanlog"
)

// FileConfig is the file and environment representation of spanlog
// options. Environment variables override file values.
type FileConfig struct {
	IncludeLoggerName    bool   `yaml:"include_logger_name" env:"TRACELOG_INCLUDE_LOGGER_NAME"`
	IncludeKeyValuePairs bool   `yaml:"include_key_value_pairs" env:"TRACELOG_INCLUDE_KEY_VALUE_PAIRS"`
	MinLevel             string `yaml:"min_level" env:"TRACELOG_MIN_LEVEL" env-default:"Trace" validate:"level"`
}

// Level returns the parsed minimum level.
func (c FileConfig) Level() (spanlog.Level, error) {
	return spanlog.ParseLevel(c.MinLevel)
}

// Options returns spanlog options carrying the file settings. The span
// resolver is left unset.
func (c FileConfig) Options() spanlog.Options {
	return spanlog.Options{
		IncludeLoggerName:    c.IncludeLoggerName,
		IncludeKeyValuePairs: c.IncludeKeyValuePairs,
	}
}

// Load reads the configuration at path. A .env file in the same directory
// is loaded into the environment first when present. An empty path reads
// the environment only.
func Load(path string) (FileConfig, error) {
	var cfg FileConfig

	if path == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return FileConfig{}, errors.Wrap(err, "read env")
		}
	} else {
		dotEnvPath := filepath.Join(filepath.Dir(path), ".env")
		if err := godotenv.Load(dotEnvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return FileConfig{}, errors.Wrapf(err, "load %s", dotEnvPath)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return FileConfig{}, errors.Wrapf(err, "read config %s", path)
		}
	}

	if err := getValidator().Struct(cfg); err != nil {
		return FileConfig{}, errors.Wrap(err, "validate config")
	}

	return cfg, nil
}

// MarshalYAML renders cfg as YAML.
func MarshalYAML(cfg FileConfig) ([]byte, error) {
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "marshal config")
	}
	return out, nil
}

func getValidator() *validator.Validate {
	validate := validator.New()

	if err := validate.RegisterValidation("level", func(fl validator.FieldLevel) bool {
		_, err := spanlog.ParseLevel(fl.Field().String())
		return err == nil
	}); err != nil {
		panic(err)
	}

	return validate
}
