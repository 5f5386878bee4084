// Package config loads menukit configuration from CUE.
//
// A config file is unified with the embedded #Config definition, so
// defaults, ranges and unknown-field checks all come from one schema:
//
//	max_id_length: 100
//	log: level: "debug"
//	trace: db: "menukit.db"
//	menus: "settings.profile": {id: "sp", version: 2}
package config

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/menukit/internal/menu"
)

//go:embed schema.cue
var schemaCUE string

// Config is the decoded configuration.
type Config struct {
	MaxIDLength int                     `json:"max_id_length"`
	Log         LogConfig               `json:"log"`
	Trace       TraceConfig             `json:"trace"`
	Menus       map[string]MenuOverride `json:"menus"`
}

// LogConfig selects the log level.
type LogConfig struct {
	Level string `json:"level"`
}

// TraceConfig locates the dispatch trace database.
type TraceConfig struct {
	DB string `json:"db"`
}

// MenuOverride replaces the identifier or version of one menu path.
type MenuOverride struct {
	ID      string  `json:"id,omitempty"`
	Version *uint64 `json:"version,omitempty"`
}

// LoadError is a configuration error, with the CUE position when known.
type LoadError struct {
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Message)
	}
	return e.Message
}

// Default returns the configuration of an empty file.
func Default() *Config {
	cfg, err := Parse("default.cue", nil)
	if err != nil {
		panic(fmt.Sprintf("config: embedded schema is invalid: %v", err))
	}
	return cfg
}

// Load reads and validates the CUE file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Message: fmt.Sprintf("read config: %v", err)}
	}
	return Parse(path, data)
}

// Parse validates CUE source against #Config and decodes it. filename is
// used in error positions only.
func Parse(filename string, data []byte) (*Config, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	file := ctx.CompileBytes(data, cue.Filename(filename))
	if err := file.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	value := schema.LookupPath(cue.ParsePath("#Config")).Unify(file)
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	var cfg Config
	if err := value.Decode(&cfg); err != nil {
		return nil, formatCUEError(err)
	}
	if cfg.Menus == nil {
		cfg.Menus = map[string]MenuOverride{}
	}
	return &cfg, nil
}

// formatCUEError keeps the first CUE error and its position.
func formatCUEError(err error) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return &LoadError{Message: err.Error()}
	}
	first := errs[0]
	le := &LoadError{Message: first.Error()}
	if positions := errors.Positions(first); len(positions) > 0 {
		le.Pos = positions[0]
	}
	return le
}

// Level maps log.level to a slog level.
func (c *Config) Level() slog.Level {
	switch c.Log.Level {
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

// RegistryOptions turns the configuration into registry options. Overrides
// are applied in path order.
func (c *Config) RegistryOptions() []menu.RegistryOption {
	opts := []menu.RegistryOption{menu.WithMaxIDLength(c.MaxIDLength)}

	paths := make([]string, 0, len(c.Menus))
	for path := range c.Menus {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	for _, path := range paths {
		o := c.Menus[path]
		opts = append(opts, menu.WithOverride(path, menu.Override{ID: o.ID, Version: o.Version}))
	}
	return opts
}
