// Package config loads the seamless configuration file.
//
// The file is TOML. Every field has a default, so an empty or missing file
// yields a working in-memory setup:
//
//	[grid]
//	row_height = 100
//	row_margin = 10
//	row_ceiling = 24
//
//	[[grid.breakpoints]]
//	name = "wide"
//	min_width = 1200
//	columns = 12
//
//	[commit]
//	delay = "500ms"
//
//	[store]
//	backend = "redis"
//	key_prefix = "org:acme:"
//
//	[store.redis]
//	addr = "localhost:6379"
//
//	[server]
//	addr = ":8080"
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/lemu/seamless-sea-sub003/pkg/errors"
	"github.com/lemu/seamless-sea-sub003/pkg/grid"
)

// AppName names the configuration directory.
const AppName = "seamless"

// Store backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// Config is the whole configuration file.
type Config struct {
	Grid   Grid   `toml:"grid"`
	Commit Commit `toml:"commit"`
	Store  Store  `toml:"store"`
	Server Server `toml:"server"`
}

// Grid holds the grid geometry.
type Grid struct {
	RowHeight   int              `toml:"row_height"`
	RowMargin   int              `toml:"row_margin"`
	RowCeiling  int              `toml:"row_ceiling"`
	Breakpoints grid.Breakpoints `toml:"breakpoints"`
}

// Commit configures the interaction commit pipeline.
type Commit struct {
	Delay Duration `toml:"delay"`
}

// Store selects and configures the layout repository.
type Store struct {
	Backend   string `toml:"backend"`
	Dir       string `toml:"dir"`
	DSN       string `toml:"dsn"`
	KeyPrefix string `toml:"key_prefix"`
	Redis     Redis  `toml:"redis"`
	Mongo     Mongo  `toml:"mongo"`
}

// Redis configures the redis backend.
type Redis struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// Mongo configures the mongo backend.
type Mongo struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// Server configures the HTTP API.
type Server struct {
	Addr string `toml:"addr"`
}

// Duration is a time.Duration written as a Go duration string ("750ms").
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Grid: Grid{
			RowHeight:   100,
			RowMargin:   10,
			RowCeiling:  grid.DefaultRowCeiling,
			Breakpoints: grid.DefaultBreakpoints(),
		},
		Commit: Commit{Delay: Duration{500 * time.Millisecond}},
		Store: Store{
			Backend: BackendMemory,
			DSN:     "seamless.db",
			Redis:   Redis{Addr: "localhost:6379"},
			Mongo: Mongo{
				URI:        "mongodb://localhost:27017",
				Database:   "seamless",
				Collection: "layouts",
			},
		},
		Server: Server{Addr: ":8080"},
	}
}

// Load reads the file at path over the defaults and validates the result.
// A missing file is not an error; an empty path uses Path().
func Load(path string) (*Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

// Read is Load without validation, for callers that adjust the
// configuration before validating it.
func Read(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		p, err := Path()
		if err != nil {
			return nil, err
		}
		path = p
	}

	// Breakpoints from the file replace the defaults as a whole.
	cfg.Grid.Breakpoints = nil
	md, err := toml.DecodeFile(path, cfg)
	if cfg.Grid.Breakpoints == nil {
		cfg.Grid.Breakpoints = grid.DefaultBreakpoints()
	}
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown key %q in %s", undecoded[0].String(), path)
	}

	cfg.Grid.Breakpoints = cfg.Grid.Breakpoints.Normalize()
	return cfg, nil
}

// Validate checks the configuration for values no component can work with.
func (c *Config) Validate() error {
	if c.Grid.RowHeight < 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "grid.row_height must be positive, got %d", c.Grid.RowHeight)
	}
	if c.Grid.RowMargin < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "grid.row_margin must not be negative, got %d", c.Grid.RowMargin)
	}
	if c.Grid.RowCeiling < 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "grid.row_ceiling must be positive, got %d", c.Grid.RowCeiling)
	}
	if err := c.Grid.Breakpoints.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "grid.breakpoints")
	}
	if c.Commit.Delay.Duration <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "commit.delay must be positive, got %s", c.Commit.Delay)
	}

	switch c.Store.Backend {
	case BackendMemory:
	case BackendFile:
		if c.Store.Dir == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "store.dir is required for the file backend")
		}
	case BackendSQLite:
		if c.Store.DSN == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "store.dsn is required for the sqlite backend")
		}
	case BackendRedis:
		if err := errors.ValidateAddr(c.Store.Redis.Addr); err != nil {
			return err
		}
	case BackendMongo:
		if c.Store.Mongo.URI == "" || c.Store.Mongo.Database == "" || c.Store.Mongo.Collection == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "store.mongo needs uri, database and collection")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown store.backend %q", c.Store.Backend)
	}

	if c.Server.Addr != "" {
		if err := errors.ValidateAddr(c.Server.Addr); err != nil {
			return err
		}
	}
	return nil
}

// Path returns the default configuration file using the XDG layout
// (~/.config/seamless/config.toml).
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Dir returns the configuration directory.
func Dir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".config", AppName), nil
}

// Encode writes cfg as TOML.
func (c *Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}
