package gen

import (
	"errors"
	"log/slog"
)

// Option configures parsing and code generation.
type Option func(*Config) error

// WithHeader sets the file header comment.
// The header is added at the top of each generated source file.
func WithHeader(header string) Option {
	return func(c *Config) error {
		c.Header = header
		return nil
	}
}

// WithPackage sets the base package of generated sources.
// For example: "com.example.shop".
func WithPackage(pkg string) Option {
	return func(c *Config) error {
		if pkg == "" {
			return NewConfigError("Package", nil, "package cannot be empty")
		}
		c.Package = pkg
		return nil
	}
}

// WithTarget sets the output directory.
func WithTarget(dir string) Option {
	return func(c *Config) error {
		if dir == "" {
			return NewConfigError("Target", nil, "target directory cannot be empty")
		}
		c.Target = dir
		return nil
	}
}

// WithTargets replaces the list of generators to run.
func WithTargets(targets ...string) Option {
	return func(c *Config) error {
		if len(targets) == 0 {
			return NewConfigError("Targets", nil, "at least one target is required")
		}
		c.Targets = targets
		return nil
	}
}

// WithTemplates sets a directory of templates overriding the built-in ones.
func WithTemplates(dir string) Option {
	return func(c *Config) error {
		c.Templates = dir
		return nil
	}
}

// WithWorkers sets the number of parallel workers.
func WithWorkers(n int) Option {
	return func(c *Config) error {
		if n <= 0 {
			return NewConfigError("Workers", n, "must be positive")
		}
		c.Workers = n
		return nil
	}
}

// WithDialect sets the SQL dialect by name.
// Supported dialects: "postgres", "mysql", "sqlite".
func WithDialect(name string) Option {
	return func(c *Config) error {
		switch name {
		case "postgres", "mysql", "sqlite":
			c.Dialect = name
			return nil
		default:
			return NewConfigError("Dialect", name, "unsupported dialect; use postgres, mysql or sqlite")
		}
	}
}

// WithLogger sets the logger receiving debug events.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) error {
		c.Logger = l
		return nil
	}
}

// WithSnapshot sets the path of the model snapshot.
func WithSnapshot(path string) Option {
	return func(c *Config) error {
		c.Snapshot = path
		return nil
	}
}

// WithStrictAttributes makes duplicate attribute names within a class fatal.
func WithStrictAttributes() Option {
	return func(c *Config) error {
		c.StrictAttributes = true
		return nil
	}
}

// WithCrowsFoot accepts entity-relationship arrows such as "||--o{".
func WithCrowsFoot() Option {
	return func(c *Config) error {
		c.CrowsFoot = true
		return nil
	}
}

// Apply applies options to the config.
// It returns the first error encountered.
func (c *Config) Apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	return nil
}

// ApplyAll applies options and collects all errors.
// Returns a joined error if any options failed.
func (c *Config) ApplyAll(opts ...Option) error {
	var errs []error
	for _, opt := range opts {
		if err := opt(c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewConfig creates a new Config from the defaults and the given options.
func NewConfig(opts ...Option) (*Config, error) {
	c := Default()
	if err := c.Apply(opts...); err != nil {
		return nil, err
	}
	return c, nil
}

// MustNewConfig creates a new Config with the given options.
// It panics if any option fails.
func MustNewConfig(opts ...Option) *Config {
	c, err := NewConfig(opts...)
	if err != nil {
		panic(err)
	}
	return c
}
