package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/lemu/seamless-sea-sub003/pkg/board"
	"github.com/lemu/seamless-sea-sub003/pkg/buildinfo"
	"github.com/lemu/seamless-sea-sub003/pkg/config"
	"github.com/lemu/seamless-sea-sub003/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = config.AppName

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	backend    string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level. At debug level the layout engine's
// observability hooks are routed to the logger as well.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	if level <= log.DebugLevel {
		installLogHooks(c.Logger)
	}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Seamless places dashboard widgets and keeps board layouts in sync",
		Long:         `Seamless is the layout engine behind the chartering dashboards: it places new widgets on a responsive grid, persists user drags and resizes once they settle, and shares layouts between sessions.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/seamless/config.toml)")
	root.PersistentFlags().StringVar(&c.backend, "store", "", "layout store backend (memory, file, sqlite, redis, mongo)")

	// Register all subcommands
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.placeCommand())
	root.AddCommand(c.tuiCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Config & Store Factory
// =============================================================================

// loadConfig reads the config file and applies command-line overrides.
func (c *CLI) loadConfig() (*config.Config, error) {
	cfg, err := config.Read(c.configPath)
	if err != nil {
		return nil, err
	}
	if c.backend != "" {
		cfg.Store.Backend = c.backend
	}
	if err := applyPathDefaults(cfg); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

// applyPathDefaults places file and sqlite data under the data directory
// unless the config says otherwise.
func applyPathDefaults(cfg *config.Config) error {
	if cfg.Store.Backend == config.BackendFile && cfg.Store.Dir == "" {
		dir, err := dataDir()
		if err != nil {
			return err
		}
		cfg.Store.Dir = filepath.Join(dir, "boards")
	}
	if cfg.Store.Backend == config.BackendSQLite && !filepath.IsAbs(cfg.Store.DSN) && cfg.Store.DSN != ":memory:" {
		dir, err := dataDir()
		if err != nil {
			return err
		}
		cfg.Store.DSN = filepath.Join(dir, cfg.Store.DSN)
	}
	return nil
}

// openStore opens the configured repository. Keys are scoped to the board's
// owner so that personal and organisation boards never collide.
func (c *CLI) openStore(ctx context.Context, cfg *config.Config, b *board.Board) (store.Repository, error) {
	sc := cfg.Store
	if b != nil {
		sc.KeyPrefix += b.Scope.KeyPrefix()
	}
	return store.Open(ctx, sc, c.Logger)
}

// viewOptions maps the grid and commit config onto board view options.
func viewOptions(cfg *config.Config, logger *log.Logger, width, height int) board.Options {
	return board.Options{
		Breakpoints: cfg.Grid.Breakpoints,
		RowHeight:   cfg.Grid.RowHeight,
		RowMargin:   cfg.Grid.RowMargin,
		RowCeiling:  cfg.Grid.RowCeiling,
		CommitDelay: cfg.Commit.Delay.Duration,
		Width:       width,
		Height:      height,
		Logger:      logger,
	}
}

// =============================================================================
// Paths
// =============================================================================

// dataDir returns the data directory using XDG standard (~/.local/share/seamless/).
func dataDir() (string, error) {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", appName), nil
}
