// Package config loads decteify settings from a YAML or CUE file.
//
// Both formats are checked against the same embedded CUE schema, which
// rejects unknown fields, unsupported dialects and log levels, and a suffix
// that could make an output file overwrite its input.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"

	"github.com/roach88/decteify/internal/decte"
)

//go:embed schema.cue
var schemaSource string

// DefaultSuffix is appended to an input file's stem to name its output.
const DefaultSuffix = "_decteified"

// Config holds every setting the CLI and watcher read.
type Config struct {
	OutputDir      string        `yaml:"output_dir" json:"output_dir"`
	Suffix         string        `yaml:"suffix" json:"suffix"`
	GuardDivisions bool          `yaml:"guard_divisions" json:"guard_divisions"`
	Strict         StrictConfig  `yaml:"strict" json:"strict"`
	Verify         VerifyConfig  `yaml:"verify" json:"verify"`
	History        HistoryConfig `yaml:"history" json:"history"`
	LogLevel       string        `yaml:"log_level" json:"log_level"`
}

// StrictConfig turns rewrite warnings into errors.
type StrictConfig struct {
	FailOnCycle     bool `yaml:"fail_on_cycle" json:"fail_on_cycle"`
	FailOnMalformed bool `yaml:"fail_on_malformed" json:"fail_on_malformed"`
}

// VerifyConfig selects the engine used to check rewritten SQL.
type VerifyConfig struct {
	Dialect string `yaml:"dialect" json:"dialect"`
	DSN     string `yaml:"dsn" json:"dsn"`
}

// HistoryConfig points at the SQLite database recording rewrite runs.
type HistoryConfig struct {
	DB string `yaml:"db" json:"db"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Suffix:         DefaultSuffix,
		GuardDivisions: true,
		LogLevel:       "info",
	}
}

// Error reports an invalid configuration file.
type Error struct {
	File    string
	Line    int
	Message string
}

func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.File, e.Message)
}

// Load reads the configuration at path. An empty path yields Default().
// Files ending in .cue are evaluated as CUE; anything else is read as YAML.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if filepath.Ext(path) == ".cue" {
		return loadCUE(path, data)
	}
	return loadYAML(path, data)
}

func loadYAML(path string, data []byte) (*Config, error) {
	cfg := Default()

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, &Error{File: path, Message: fmt.Sprintf("failed to parse YAML: %v", err)}
	}

	ctx := cuecontext.New()
	schema, err := compileSchema(ctx)
	if err != nil {
		return nil, err
	}
	value := schema.Unify(ctx.Encode(cfg))
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return nil, cueError(path, err)
	}
	return cfg, nil
}

func loadCUE(path string, data []byte) (*Config, error) {
	ctx := cuecontext.New()
	schema, err := compileSchema(ctx)
	if err != nil {
		return nil, err
	}

	user := ctx.CompileBytes(data, cue.Filename(path))
	if err := user.Err(); err != nil {
		return nil, cueError(path, err)
	}

	value := schema.Unify(user)
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return nil, cueError(path, err)
	}

	cfg := &Config{}
	if err := value.Decode(cfg); err != nil {
		return nil, cueError(path, err)
	}
	return cfg, nil
}

func compileSchema(ctx *cue.Context) (cue.Value, error) {
	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return cue.Value{}, fmt.Errorf("compiling config schema: %w", err)
	}
	return schema.LookupPath(cue.ParsePath("#Config")), nil
}

// cueError reduces a CUE error to its first message and line.
func cueError(path string, err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &Error{File: path, Message: err.Error()}
	}

	first := errs[0]
	out := &Error{File: path, Message: first.Error()}
	for _, pos := range cueerrors.Positions(first) {
		if pos.Filename() == path {
			out.Line = pos.Line()
			break
		}
	}
	return out
}

// RewriteOptions converts the configuration into pipeline options.
func (c *Config) RewriteOptions(logger *slog.Logger) decte.Options {
	return decte.Options{
		GuardDivisions:  c.GuardDivisions,
		FailOnCycle:     c.Strict.FailOnCycle,
		FailOnMalformed: c.Strict.FailOnMalformed,
		Logger:          logger,
	}
}

// Level returns the slog level named by LogLevel.
func (c *Config) Level() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// OutputPath returns where the rewrite of input is written:
// <stem><suffix><ext>, in OutputDir or next to the input.
func (c *Config) OutputPath(input string) string {
	ext := filepath.Ext(input)
	base := filepath.Base(input)
	name := strings.TrimSuffix(base, ext) + c.suffix() + ext

	dir := c.OutputDir
	if dir == "" {
		dir = filepath.Dir(input)
	}
	return filepath.Join(dir, name)
}

// IsOutput reports whether path already names a rewritten file.
func (c *Config) IsOutput(path string) bool {
	base := filepath.Base(path)
	return strings.HasSuffix(strings.TrimSuffix(base, filepath.Ext(base)), c.suffix())
}

func (c *Config) suffix() string {
	if c.Suffix == "" {
		return DefaultSuffix
	}
	return c.Suffix
}
