package main

import (
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/syssam/pumlgen/compiler/gen"
)

// defaultConfigFile is read when present and --config is not given.
const defaultConfigFile = "pumlgen.yaml"

// cli holds the state shared by all commands.
type cli struct {
	v   *viper.Viper
	log *slog.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{v: viper.New()}
	root := &cobra.Command{
		Use:           "pumlgen",
		Short:         "PlantUML class diagram compiler",
		Long:          "pumlgen turns PlantUML class diagrams into an entity-relationship model and generates Quarkus projects, Go structs, SQL and GraphQL schemas from it.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.init(cmd.ErrOrStderr())
		},
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "Config file (default: ./"+defaultConfigFile+" when present)")
	flags.BoolP("verbose", "v", false, "Debug logging")
	flags.Bool("strict-attributes", false, "Treat duplicate attribute names as errors")
	flags.Bool("crows-foot", false, "Accept entity-relationship arrows such as ||--o{")
	flags.String("dialect", "", "SQL dialect: postgres, mysql or sqlite")
	_ = c.v.BindPFlag("config", flags.Lookup("config"))
	_ = c.v.BindPFlag("verbose", flags.Lookup("verbose"))
	_ = c.v.BindPFlag("strict_attributes", flags.Lookup("strict-attributes"))
	_ = c.v.BindPFlag("crows_foot", flags.Lookup("crows-foot"))
	_ = c.v.BindPFlag("dialect", flags.Lookup("dialect"))

	root.AddCommand(
		c.generateCmd(),
		c.checkCmd(),
		c.ddlCmd(),
		c.migrateCmd(),
		c.watchCmd(),
		c.serveCmd(),
		c.mcpCmd(),
	)
	return root
}

func (c *cli) init(stderr io.Writer) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	c.v.SetEnvPrefix("PUMLGEN")
	c.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.v.AutomaticEnv()
	level := slog.LevelInfo
	if c.v.GetBool("verbose") {
		level = slog.LevelDebug
	}
	c.log = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	return nil
}

// config assembles the generator configuration: defaults, then the config
// file, then flags and PUMLGEN_ environment variables.
func (c *cli) config(extra ...gen.Option) (*gen.Config, error) {
	var opts []gen.Option
	if c.v.IsSet("target") {
		opts = append(opts, gen.WithTarget(c.v.GetString("target")))
	}
	if c.v.IsSet("package") {
		opts = append(opts, gen.WithPackage(c.v.GetString("package")))
	}
	if c.v.IsSet("targets") {
		opts = append(opts, gen.WithTargets(c.v.GetStringSlice("targets")...))
	}
	if c.v.IsSet("templates") {
		opts = append(opts, gen.WithTemplates(c.v.GetString("templates")))
	}
	if c.v.IsSet("header") {
		opts = append(opts, gen.WithHeader(c.v.GetString("header")))
	}
	if c.v.IsSet("workers") {
		opts = append(opts, gen.WithWorkers(c.v.GetInt("workers")))
	}
	if c.v.IsSet("snapshot") {
		opts = append(opts, gen.WithSnapshot(c.v.GetString("snapshot")))
	}
	if d := c.v.GetString("dialect"); d != "" {
		opts = append(opts, gen.WithDialect(d))
	}
	if c.v.GetBool("strict_attributes") {
		opts = append(opts, gen.WithStrictAttributes())
	}
	if c.v.GetBool("crows_foot") {
		opts = append(opts, gen.WithCrowsFoot())
	}
	opts = append(opts, gen.WithLogger(c.log))
	opts = append(opts, extra...)

	path := c.v.GetString("config")
	if path == "" {
		if _, err := os.Stat(defaultConfigFile); err == nil {
			path = defaultConfigFile
		}
	}
	if path != "" {
		c.log.Debug("loading config", "path", path)
		return gen.LoadConfig(path, opts...)
	}
	cfg, err := gen.NewConfig(opts...)
	if err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

// report logs the warnings of a parsed graph.
func (c *cli) report(g *gen.Graph, path string) {
	for _, d := range g.Diagnostics {
		c.log.Warn(d.Message, "file", path, "line", d.Line, "code", d.Code)
	}
}
