// Package config loads cuke.yaml and applies environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "cuke.yaml"

// Config is the contents of cuke.yaml. Features is the directory searched
// when no paths are given; Glob selects feature files below a directory in
// doublestar syntax. Tags is a tag expression such as "@wip and not @slow".
type Config struct {
	Features string  `yaml:"features" default:"features" validate:"required"`
	Glob     string  `yaml:"glob" default:"**/*.feature" validate:"required"`
	Format   string  `yaml:"format" default:"pretty" validate:"oneof=pretty progress"`
	Strict   bool    `yaml:"strict"`
	Tags     string  `yaml:"tags,omitempty"`
	History  History `yaml:"history"`
	Logging  Logging `yaml:"logging"`
}

type History struct {
	Enabled bool   `yaml:"enabled" default:"true"`
	Path    string `yaml:"path" default:"features/cuke.db" validate:"required_if=Enabled true"`
}

type Logging struct {
	Type  string `yaml:"type" default:"tint" validate:"oneof=json text tint"`
	Level string `yaml:"level" default:"warn" validate:"oneof=debug info warn error"`
}

var validate = validator.New()

func Default() Config {
	var cfg Config
	if err := defaults.Set(&cfg); err != nil {
		panic(err)
	}
	return cfg
}

// Validate checks the values a run depends on.
func Validate(cfg Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("invalid config: %w", err)
	}
	var msgs []string
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: %q fails %s", fe.Namespace(), fe.Value(), fe.Tag()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// Load reads path over the defaults. A missing file is not an error.
// Environment variables CUKE_FORMAT, CUKE_STRICT, CUKE_TAGS, CUKE_HISTORY,
// CUKE_LOG_TYPE and CUKE_LOG_LEVEL override the file.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("reading %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, Validate(cfg)
}

// LoadEnv loads a .env file into the process environment if it exists.
func LoadEnv(path string) (bool, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err := godotenv.Load(path); err != nil {
		return false, fmt.Errorf("loading %s: %w", path, err)
	}
	return true, nil
}

func applyEnv(cfg *Config) error {
	if v, ok := os.LookupEnv("CUKE_FORMAT"); ok {
		cfg.Format = v
	}
	if v, ok := os.LookupEnv("CUKE_STRICT"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("CUKE_STRICT: %w", err)
		}
		cfg.Strict = b
	}
	if v, ok := os.LookupEnv("CUKE_TAGS"); ok {
		cfg.Tags = v
	}
	if v, ok := os.LookupEnv("CUKE_HISTORY"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("CUKE_HISTORY: %w", err)
		}
		cfg.History.Enabled = b
	}
	if v, ok := os.LookupEnv("CUKE_LOG_TYPE"); ok {
		cfg.Logging.Type = v
	}
	if v, ok := os.LookupEnv("CUKE_LOG_LEVEL"); ok {
		cfg.Logging.Level = v
	}
	return nil
}

// Marshal renders cfg as written by `cuke init`.
func Marshal(cfg Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}
