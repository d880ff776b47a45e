package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/urfave/cli/v3"
)

const scholarsMate = `[Event "Club night"]
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

func runApp(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{Output: out, Input: strings.NewReader(stdin)})
	app := &cli.Command{Name: "review-bot", Commands: runner.register()}
	err := app.Run(context.Background(), append([]string{"review-bot"}, args...))
	return out.String(), err
}

func TestNewRunnerDefaults(t *testing.T) {
	r := NewRunner(RunnerOpts{})
	if r.logger == nil || r.output == nil || r.input == nil {
		t.Fatalf("defaults not applied: %+v", r)
	}
	names := map[string]bool{}
	for _, c := range r.register() {
		names[c.Name] = true
	}
	for _, want := range []string{"serve", "import", "seed", "list", "export", "render", "irischeck"} {
		if !names[want] {
			t.Fatalf("command %q not registered", want)
		}
	}
}

func TestSeedListExportRender(t *testing.T) {
	clearStoreEnv(t)
	dir := t.TempDir()
	db := filepath.Join(dir, "review.db")

	out, err := runApp(t, "", "seed", "--db", db)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if !strings.Contains(out, "Stored game #1") || !strings.Contains(out, "(7 plies)") {
		t.Fatalf("seed output = %q", out)
	}

	out, err = runApp(t, "", "list", "--db", db)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "#1") || !strings.Contains(out, "sample") {
		t.Fatalf("list output = %q", out)
	}

	out, err = runApp(t, "", "export", "--db", db, "1")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.Contains(out, `[Result "1-0"]`) || !strings.Contains(out, "Qxf7#") {
		t.Fatalf("export output = %q", out)
	}

	png := filepath.Join(dir, "start.png")
	if _, err := runApp(t, "", "render", "--db", db, "--ply", "0", "-o", png, "1"); err != nil {
		t.Fatalf("render: %v", err)
	}
	data, err := os.ReadFile(png)
	if err != nil {
		t.Fatalf("read png: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Fatalf("render did not write a PNG")
	}
}

func TestImportFromStdinIsOwnerScoped(t *testing.T) {
	clearStoreEnv(t)
	db := filepath.Join(t.TempDir(), "review.db")

	out, err := runApp(t, scholarsMate, "import", "--db", db, "--color", "black", "-")
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if !strings.Contains(out, "Club night") {
		t.Fatalf("import output = %q", out)
	}

	out, err = runApp(t, "", "list", "--db", db)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "black") {
		t.Fatalf("list output = %q", out)
	}

	out, err = runApp(t, "", "list", "--db", db, "--sender", "someone-else")
	if err != nil {
		t.Fatalf("list other: %v", err)
	}
	if !strings.Contains(out, "No stored games.") {
		t.Fatalf("other owner sees games: %q", out)
	}
	if _, err := runApp(t, "", "export", "--db", db, "--sender", "someone-else", "1"); err == nil {
		t.Fatalf("export of another owner's game should fail")
	}
}

func TestCommandArgumentErrors(t *testing.T) {
	clearStoreEnv(t)
	db := filepath.Join(t.TempDir(), "review.db")

	if _, err := runApp(t, "", "seed"); !errors.Is(err, errNoStore) {
		t.Fatalf("seed without store err = %v", err)
	}
	if _, err := runApp(t, "", "import", "--db", db); err == nil {
		t.Fatalf("import without source should fail")
	}
	if _, err := runApp(t, "", "import", "--db", db, "--color", "green", "-"); err == nil {
		t.Fatalf("import with bad color should fail")
	}
	if _, err := runApp(t, "1. e4 e5 2. Kxe8 *", "import", "--db", db, "-"); err == nil {
		t.Fatalf("import of an illegal game should fail")
	}
	if _, err := runApp(t, "", "render", "--db", db, "abc"); err == nil {
		t.Fatalf("render with bad id should fail")
	}
	if _, err := runApp(t, "", "irischeck", "--base-url", ""); err == nil {
		t.Fatalf("irischeck without base url should fail")
	}
}

func TestIsChessComRef(t *testing.T) {
	cases := map[string]bool{
		"https://www.chess.com/game/live/123": true,
		"games/club.pgn":                      false,
		"-":                                   false,
	}
	for in, want := range cases {
		if got := isChessComRef(in); got != want {
			t.Fatalf("isChessComRef(%q) = %v", in, got)
		}
	}
}
