// Package config loads the optional .subcc.yaml project file
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"

	"github.com/raymyers/subcc/pkg/parser"
)

// DefaultFile is looked up in the working directory when no path is given
const DefaultFile = ".subcc.yaml"

// Color modes
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

var (
	// ErrInvalid wraps every validation failure
	ErrInvalid = errors.New("invalid configuration")
	// ErrVersion is returned when the tool does not satisfy requires
	ErrVersion = errors.New("version constraint not satisfied")
)

// Config is the contents of a config file
type Config struct {
	Requires    string `yaml:"requires"`
	MaxDepth    int    `yaml:"max_depth"`
	MaxCallArgs int    `yaml:"max_call_args"`
	Werror      bool   `yaml:"werror"`
	Color       string `yaml:"color"`
}

// Default returns the configuration used when no file is present
func Default() *Config {
	return &Config{
		MaxDepth:    parser.DefaultMaxDepth,
		MaxCallArgs: parser.DefaultMaxCallArgs,
		Color:       ColorAuto,
	}
}

// Parse decodes YAML from r over the defaults. Unknown keys are rejected.
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return cfg, nil
}

// Load reads the config at path. An empty path means DefaultFile, which
// may be absent; an explicit path must exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	cfg, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks field ranges and the requires constraint against the
// running tool version
func (c *Config) Validate(toolVersion string) error {
	if c.MaxDepth <= 0 {
		return fmt.Errorf("%w: max_depth must be positive, got %d", ErrInvalid, c.MaxDepth)
	}
	if c.MaxCallArgs < 1 || c.MaxCallArgs > parser.DefaultMaxCallArgs {
		return fmt.Errorf("%w: max_call_args must be between 1 and %d, got %d",
			ErrInvalid, parser.DefaultMaxCallArgs, c.MaxCallArgs)
	}
	switch c.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("%w: color must be auto, always or never, got %q", ErrInvalid, c.Color)
	}
	if c.Requires == "" {
		return nil
	}
	con, err := semver.NewConstraint(c.Requires)
	if err != nil {
		return fmt.Errorf("%w: requires %q: %v", ErrInvalid, c.Requires, err)
	}
	v, err := semver.NewVersion(toolVersion)
	if err != nil {
		return fmt.Errorf("tool version %q: %w", toolVersion, err)
	}
	if ok, errs := con.Validate(v); !ok {
		return fmt.Errorf("%w: %s does not satisfy %q: %v", ErrVersion, v, c.Requires, errors.Join(errs...))
	}
	return nil
}

// ParserOptions maps the config onto parser options
func (c *Config) ParserOptions() parser.Options {
	return parser.Options{
		MaxDepth:    c.MaxDepth,
		MaxCallArgs: c.MaxCallArgs,
	}
}
