package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/lemu/seamless-sea-sub003/pkg/config"
	"github.com/lemu/seamless-sea-sub003/pkg/errors"
	"github.com/lemu/seamless-sea-sub003/pkg/grid"
	"github.com/lemu/seamless-sea-sub003/pkg/store"
)

const boardYAML = `
id: fixtures
title: Fixtures
widgets:
  - id: rates
    type: chart
  - id: positions
    type: table
`

func writeTemp(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	c := New(io.Discard, log.InfoLevel)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCommandSubcommands(t *testing.T) {
	root := New(io.Discard, log.InfoLevel).RootCommand()
	want := []string{"serve", "place", "tui", "config", "completion"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestConfigPath(t *testing.T) {
	out, err := run(t, "config", "path", "--config", "/etc/seamless.toml")
	if err != nil {
		t.Fatalf("config path error: %v", err)
	}
	if strings.TrimSpace(out) != "/etc/seamless.toml" {
		t.Errorf("config path = %q", out)
	}
}

func TestConfigShow(t *testing.T) {
	path := writeTemp(t, "config.toml", "[grid]\nrow_ceiling = 12\n")
	out, err := run(t, "config", "show", "--config", path, "--store", "sqlite")
	if err != nil {
		t.Fatalf("config show error: %v", err)
	}
	for _, want := range []string{"row_ceiling = 12", `backend = "sqlite"`} {
		if !strings.Contains(out, want) {
			t.Errorf("config show missing %q:\n%s", want, out)
		}
	}
}

func TestConfigShowRejectsBackend(t *testing.T) {
	_, err := run(t, "config", "show", "--config", filepath.Join(t.TempDir(), "none.toml"), "--store", "etcd")
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("error = %v, want %s", err, errors.ErrCodeInvalidConfig)
	}
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seamless", "config.toml")
	if _, err := run(t, "config", "init", "--config", path); err != nil {
		t.Fatalf("config init error: %v", err)
	}
	if _, err := config.Load(path); err != nil {
		t.Errorf("written config does not load: %v", err)
	}

	_, err := run(t, "config", "init", "--config", path)
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("second init error = %v, want %s", err, errors.ErrCodeInvalidInput)
	}
	if _, err := run(t, "config", "init", "--config", path, "--force"); err != nil {
		t.Errorf("config init --force error: %v", err)
	}
}

func TestPlaceWrite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "boards")
	cfgPath := writeTemp(t, "config.toml", "[store]\nbackend = \"file\"\ndir = \""+filepath.ToSlash(dir)+"\"\n")
	boardPath := writeTemp(t, "board.yaml", boardYAML)

	if _, err := run(t, "place", boardPath, "--config", cfgPath, "--write"); err != nil {
		t.Fatalf("place --write error: %v", err)
	}

	ctx := context.Background()
	repo, err := store.Open(ctx, config.Store{Backend: config.BackendFile, Dir: dir}, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer repo.Close()
	ls, err := repo.ReadLayouts(ctx, "fixtures")
	if err != nil {
		t.Fatal(err)
	}
	want := grid.Layout{
		{WidgetID: "rates", X: 0, Y: 0, W: 1, H: 1},
		{WidgetID: "positions", X: 1, Y: 0, W: 1, H: 1},
	}
	if !ls[grid.Wide].Equal(want) {
		t.Errorf("stored wide layout = %+v, want %+v", ls[grid.Wide], want)
	}
	if _, ok := ls[grid.Narrow]; ok {
		t.Error("place wrote a breakpoint other than the active one")
	}
}

func TestPlaceMissingBoard(t *testing.T) {
	_, err := run(t, "place", filepath.Join(t.TempDir(), "none.yaml"), "--config", filepath.Join(t.TempDir(), "none.toml"))
	if !errors.Is(err, errors.ErrCodeBoardNotFound) {
		t.Errorf("error = %v, want %s", err, errors.ErrCodeBoardNotFound)
	}
}

func TestServeRejectsAddr(t *testing.T) {
	_, err := run(t, "serve", "--addr", "nope", "--config", filepath.Join(t.TempDir(), "none.toml"))
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("error = %v, want %s", err, errors.ErrCodeInvalidConfig)
	}
}
