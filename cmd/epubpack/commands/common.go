package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/epubpack/internal/config"
	"git.home.luguber.info/inful/epubpack/internal/docmodel"
)

// Global context passed to subcommands if we need to share global state later.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags - used by commands that need access to root config.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"epubpack.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build BuildCmd `cmd:"" help:"Package the configured documentation into an EPUB archive"`
	Init  InitCmd  `cmd:"" help:"Initialize a new configuration file"`
	Watch WatchCmd `cmd:"" help:"Watch source files and repackage on change"`
}

// AfterApply runs after flag parsing; setup logging once. Commands that load
// a configuration re-apply logging with the configured level and format.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// loadConfig loads and validates the configuration, then installs the
// configured logging setup.
func loadConfig(root *CLI) (*config.Config, error) {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg.Logging.SetupLogging(root.Verbose)
	return cfg, nil
}

// loadNodes loads the node manifest when one is configured. A configuration
// with only extras and no manifest is valid.
func loadNodes(cfg *config.Config) ([]docmodel.Node, error) {
	if cfg.Nodes == "" {
		return nil, nil
	}
	return docmodel.LoadManifest(cfg.Nodes)
}
