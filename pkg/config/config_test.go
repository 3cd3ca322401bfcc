package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/lemu/seamless-sea-sub003/pkg/errors"
	"github.com/lemu/seamless-sea-sub003/pkg/grid"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() error: %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadOverrides(t *testing.T) {
	path := writeFile(t, `
[grid]
row_height = 80
row_ceiling = 12

[[grid.breakpoints]]
name = "phone"
min_width = 0
columns = 2

[[grid.breakpoints]]
name = "desk"
min_width = 1000
columns = 10

[commit]
delay = "750ms"

[store]
backend = "redis"
key_prefix = "org:acme:"

[store.redis]
addr = "cache:6380"
db = 2
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Grid.RowHeight != 80 || cfg.Grid.RowMargin != 10 || cfg.Grid.RowCeiling != 12 {
		t.Errorf("grid = %+v", cfg.Grid)
	}
	wantBPs := grid.Breakpoints{
		{Name: "desk", MinWidth: 1000, Columns: 10},
		{Name: "phone", MinWidth: 0, Columns: 2},
	}
	if diff := cmp.Diff(wantBPs, cfg.Grid.Breakpoints); diff != "" {
		t.Errorf("breakpoints mismatch (-want +got):\n%s", diff)
	}
	if cfg.Commit.Delay.Duration != 750*time.Millisecond {
		t.Errorf("commit.delay = %s, want 750ms", cfg.Commit.Delay)
	}
	if cfg.Store.Backend != BackendRedis || cfg.Store.KeyPrefix != "org:acme:" {
		t.Errorf("store = %+v", cfg.Store)
	}
	if cfg.Store.Redis.Addr != "cache:6380" || cfg.Store.Redis.DB != 2 {
		t.Errorf("store.redis = %+v", cfg.Store.Redis)
	}
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"syntax", "[grid\n"},
		{"unknown key", "[grid]\nrows = 3\n"},
		{"bad duration", "[commit]\ndelay = \"soon\"\n"},
		{"zero row height", "[grid]\nrow_height = 0\n"},
		{"unknown backend", "[store]\nbackend = \"etcd\"\n"},
		{"file without dir", "[store]\nbackend = \"file\"\n"},
		{"no zero breakpoint", "[[grid.breakpoints]]\nname = \"wide\"\nmin_width = 100\ncolumns = 12\n"},
		{"bad server addr", "[server]\naddr = \"localhost\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.body))
			if err == nil {
				t.Fatal("Load() succeeded, want error")
			}
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("Load() error code = %s, want %s", errors.GetCode(err), errors.ErrCodeInvalidConfig)
			}
		})
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := Default().Encode(&buf); err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	cfg, err := Load(writeFile(t, buf.String()))
	if err != nil {
		t.Fatalf("Load() error: %v\n%s", err, buf.String())
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	p, err := Path()
	if err != nil {
		t.Fatalf("Path() error: %v", err)
	}
	if want := filepath.Join("/tmp/xdg", AppName, "config.toml"); p != want {
		t.Errorf("Path() = %q, want %q", p, want)
	}

	t.Setenv("XDG_CONFIG_HOME", "")
	p, err = Path()
	if err != nil {
		t.Fatalf("Path() error: %v", err)
	}
	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, ".config", AppName, "config.toml"); p != want {
		t.Errorf("Path() = %q, want %q", p, want)
	}
}

func TestReadSkipsValidation(t *testing.T) {
	cfg, err := Read(writeFile(t, "[store]\nbackend = \"file\"\n"))
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if cfg.Store.Backend != BackendFile {
		t.Errorf("store.backend = %q, want %q", cfg.Store.Backend, BackendFile)
	}
	if err := cfg.Validate(); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("Validate() = %v, want %s", err, errors.ErrCodeInvalidConfig)
	}
}

func TestLoadExample(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "examples", "config.toml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Store.Backend != BackendSQLite || cfg.Store.KeyPrefix != "desk:" {
		t.Errorf("store = %+v", cfg.Store)
	}
	if diff := cmp.Diff(grid.DefaultBreakpoints(), cfg.Grid.Breakpoints); diff != "" {
		t.Errorf("breakpoints mismatch (-want +got):\n%s", diff)
	}
}
