package gen

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/syssam/pumlgen/compiler/load"
)

// Generation targets.
const (
	TargetQuarkus = "quarkus"
	TargetGo      = "go"
	TargetSQL     = "sql"
	TargetGraphQL = "graphql"
)

// Config holds the configuration of a parse and generation run. It maps
// one to one to the pumlgen.yaml file.
type Config struct {
	// Target is the output directory.
	Target string `yaml:"target"`
	// Package is the base package of generated sources, for example
	// "com.example.shop". Go output uses its last element.
	Package string `yaml:"package"`
	// Header is written at the top of generated source files.
	Header string `yaml:"header"`
	// Targets lists the generators to run.
	Targets []string `yaml:"targets"`
	// Templates is a directory of *.tmpl files overriding or extending
	// the built-in project templates.
	Templates string `yaml:"templates"`
	// Workers bounds the number of files rendered in parallel.
	Workers int `yaml:"workers"`
	// Dialect is the SQL dialect of the sql target: postgres, mysql or sqlite.
	Dialect string `yaml:"dialect"`
	// Snapshot is the path of the model snapshot used to skip
	// regeneration when the diagram did not change.
	Snapshot string `yaml:"snapshot"`
	// StrictAttributes makes duplicate attribute names fatal.
	StrictAttributes bool `yaml:"strict_attributes"`
	// CrowsFoot accepts entity-relationship arrows such as "||--o{".
	CrowsFoot bool `yaml:"crows_foot"`
	// Logger receives debug events. Defaults to a discarding logger.
	Logger *slog.Logger `yaml:"-"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Target:  "out",
		Package: "com.example.app",
		Targets: []string{TargetQuarkus},
		Workers: runtime.GOMAXPROCS(0),
		Dialect: "postgres",
	}
}

// LoadConfig reads a configuration file. Missing fields are filled with
// defaults; options are applied on top of the file.
func LoadConfig(path string, opts ...Option) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Apply(opts...); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return NewConfigError("Workers", c.Workers, "must not be negative")
	}
	for _, t := range c.Targets {
		if !slices.Contains([]string{TargetQuarkus, TargetGo, TargetSQL, TargetGraphQL}, t) {
			return NewConfigError("Targets", t, "unknown target; use quarkus, go, sql or graphql")
		}
	}
	switch c.Dialect {
	case "", "postgres", "mysql", "sqlite":
	default:
		return NewConfigError("Dialect", c.Dialect, "unsupported dialect; use postgres, mysql or sqlite")
	}
	return nil
}

// HasTarget reports whether the named target is enabled.
func (c *Config) HasTarget(name string) bool {
	return slices.Contains(c.Targets, name)
}

// LoadOptions returns the parser options implied by the configuration.
func (c *Config) LoadOptions() []load.Option {
	var opts []load.Option
	if c.StrictAttributes {
		opts = append(opts, load.WithStrictAttributes())
	}
	if c.CrowsFoot {
		opts = append(opts, load.WithCrowsFoot())
	}
	return opts
}

// Log returns the configured logger, or one that discards everything.
func (c *Config) Log() *slog.Logger {
	if c == nil || c.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return c.Logger
}
