package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/park285/cheese-review-bot/internal/config"
	"github.com/park285/cheese-review-bot/internal/replay"
	"github.com/park285/cheese-review-bot/internal/reviewbuilder"
	"github.com/park285/cheese-review-bot/internal/tui"
)

const miniature = `[Event "Blitz"]
[White "kim"]
[Black "lee"]
[Result "1-0"]

1. e4 e5 2. Qh5 Nc6 3. Bc4 Nf6 4. Qxf7# 1-0`

func clearStoreEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"DATABASE_URL", "SQLITE_PATH", "REDIS_URL"} {
		t.Setenv(key, "")
	}
}

type resolved struct {
	provider replay.Provider
	gameID   int64
}

// resolve runs the app with an action that only resolves the flags.
func resolve(t *testing.T, args ...string) (resolved, error) {
	t.Helper()
	v := &viewerCmd{logger: zap.NewNop()}
	app := newApp(v)
	var got resolved
	app.Action = func(ctx context.Context, cmd *cli.Command) error {
		provider, id, cleanup, err := v.source(ctx, cmd, config.LoadTUI())
		if err != nil {
			return err
		}
		t.Cleanup(cleanup)
		got = resolved{provider: provider, gameID: id}
		return nil
	}
	err := app.Run(context.Background(), append([]string{"review-tui"}, args...))
	return got, err
}

func TestSourceFromPGNFile(t *testing.T) {
	clearStoreEnv(t)
	path := filepath.Join(t.TempDir(), "game.pgn")
	if err := os.WriteFile(path, []byte(miniature), 0o644); err != nil {
		t.Fatalf("write pgn: %v", err)
	}

	got, err := resolve(t, "--pgn", path, "--color", "black")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	loaded, err := got.provider.FetchReplay(context.Background(), got.gameID)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if loaded.Replay.Len() != 7 {
		t.Fatalf("plies = %d, want 7", loaded.Replay.Len())
	}
	if loaded.Orientation != replay.BlackPerspective {
		t.Fatalf("orientation = %v, want black", loaded.Orientation)
	}
}

func TestSourceFromStoredGame(t *testing.T) {
	clearStoreEnv(t)
	db := filepath.Join(t.TempDir(), "games.db")
	ctx := context.Background()

	cfg := config.LoadTUI()
	cfg.SQLitePath = db
	deps, err := reviewbuilder.New(ctx, cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("builder: %v", err)
	}
	res, err := deps.Service.ImportSample(ctx, reviewbuilder.LocalMeta("", ""))
	if err != nil {
		t.Fatalf("import sample: %v", err)
	}
	if err := deps.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	got, err := resolve(t, "--db", db, "#"+strconv.FormatInt(res.GameID, 10))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.gameID != res.GameID {
		t.Fatalf("game id = %d, want %d", got.gameID, res.GameID)
	}
	loaded, err := got.provider.FetchReplay(ctx, got.gameID)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if !strings.Contains(loaded.Title, "Sample") {
		t.Fatalf("title = %q", loaded.Title)
	}

	other, err := resolve(t, "--db", db, "--sender", "someone-else", strconv.FormatInt(res.GameID, 10))
	if err != nil {
		t.Fatalf("resolve other: %v", err)
	}
	if _, err := other.provider.FetchReplay(ctx, other.gameID); err == nil {
		t.Fatalf("another sender could load the game")
	}
}

func TestSourceErrors(t *testing.T) {
	clearStoreEnv(t)
	cases := map[string][]string{
		"no source":   {},
		"no store":    {"3"},
		"bad id":      {"--db", filepath.Join(t.TempDir(), "x.db"), "abc"},
		"bad color":   {"--pgn", "game.pgn", "--color", "green"},
		"missing pgn": {"--pgn", filepath.Join(t.TempDir(), "missing.pgn")},
	}
	for name, args := range cases {
		if _, err := resolve(t, args...); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
	if _, err := resolve(t); !errors.Is(err, errNoSource) {
		t.Fatalf("err = %v, want errNoSource", err)
	}
}

func TestRunHandsModelToProgram(t *testing.T) {
	clearStoreEnv(t)
	path := filepath.Join(t.TempDir(), "game.pgn")
	if err := os.WriteFile(path, []byte(miniature), 0o644); err != nil {
		t.Fatalf("write pgn: %v", err)
	}

	var got tea.Model
	v := &viewerCmd{logger: zap.NewNop(), program: func(m tea.Model) error {
		got = m
		return nil
	}}
	if err := newApp(v).Run(context.Background(), []string{"review-tui", "--pgn", path}); err != nil {
		t.Fatalf("run: %v", err)
	}
	if _, ok := got.(*tui.Model); !ok {
		t.Fatalf("program got %T, want *tui.Model", got)
	}
}
