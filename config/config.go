// Package config handles intcode.toml run configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/ezrec/intcode/translate"
)

var f = translate.From

// Run modes.
const (
	MODE_RUN      = "run"      // Run to halt, print outputs and cell 0.
	MODE_SEARCH   = "search"   // Noun and verb search for a target.
	MODE_SERIES   = "series"   // Best signal through a series chain.
	MODE_FEEDBACK = "feedback" // Best signal through a feedback chain.
)

// Program formats.
const (
	FORMAT_AUTO  = ""      // Guess from the file extension.
	FORMAT_IMAGE = "image" // Comma separated integers.
	FORMAT_ASM   = "asm"   // Assembly source.
)

// DEFAULT_NAME is the configuration file searched for by FindAndLoad.
const DEFAULT_NAME = "intcode.toml"

var modes = []string{MODE_RUN, MODE_SEARCH, MODE_SERIES, MODE_FEEDBACK}

// Config represents an intcode.toml run configuration.
type Config struct {
	Program Program `toml:"program"`
	Run     Run     `toml:"run"`

	// Dir is the directory containing the configuration (set at load time).
	Dir string `toml:"-"`
}

// Program configures the program to load.
type Program struct {
	Path    string           `toml:"path"`
	Format  string           `toml:"format"`
	Patch   map[string]int64 `toml:"patch"`
	Defines map[string]int64 `toml:"defines"`
}

// Run configures how the program is executed.
type Run struct {
	Mode       string  `toml:"mode"`
	Inputs     []int64 `toml:"inputs"`
	Phases     []int64 `toml:"phases"`
	Signal     int64   `toml:"signal"`
	Target     int64   `toml:"target"`
	Concurrent bool    `toml:"concurrent"`
	Capacity   int     `toml:"capacity"`
	Verbose    bool    `toml:"verbose"`
}

// ErrConfig is an invalid configuration value.
type ErrConfig struct {
	Key   string
	Value string
}

func (err *ErrConfig) Error() string {
	return f("invalid %v '%v'", err.Key, err.Value)
}

// Default returns the configuration used when no file is given.
func Default() (cfg *Config) {
	cfg = &Config{}
	cfg.setDefaults()

	return
}

func (cfg *Config) setDefaults() {
	if len(cfg.Run.Mode) == 0 {
		cfg.Run.Mode = MODE_RUN
	}
}

// Load parses a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	cfg.Dir, err = filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", path, err)
	}

	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &cfg, nil
}

// FindAndLoad walks up from startDir to find an intcode.toml file, then
// loads and returns it. Returns nil if no file is found.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, DEFAULT_NAME)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, nil
		}
		dir = parent
	}
}

// Validate checks the enumerated values.
func (cfg *Config) Validate() error {
	if !slices.Contains(modes, cfg.Run.Mode) {
		return &ErrConfig{Key: "run.mode", Value: cfg.Run.Mode}
	}

	switch cfg.Program.Format {
	case FORMAT_AUTO, FORMAT_IMAGE, FORMAT_ASM:
	default:
		return &ErrConfig{Key: "program.format", Value: cfg.Program.Format}
	}

	if cfg.Run.Capacity < 0 {
		return &ErrConfig{Key: "run.capacity", Value: fmt.Sprint(cfg.Run.Capacity)}
	}

	return nil
}

// ProgramPath returns the program path, relative to the configuration directory.
func (cfg *Config) ProgramPath() string {
	if len(cfg.Program.Path) == 0 || filepath.IsAbs(cfg.Program.Path) || len(cfg.Dir) == 0 {
		return cfg.Program.Path
	}

	return filepath.Join(cfg.Dir, cfg.Program.Path)
}

// ProgramFormat returns the program format, guessing from the file
// extension when not set.
func (cfg *Config) ProgramFormat() string {
	if cfg.Program.Format != FORMAT_AUTO {
		return cfg.Program.Format
	}

	switch strings.ToLower(filepath.Ext(cfg.Program.Path)) {
	case ".ic", ".asm", ".s":
		return FORMAT_ASM
	}

	return FORMAT_IMAGE
}
