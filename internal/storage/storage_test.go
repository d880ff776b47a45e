package storage

import (
	"context"
	"path/filepath"
	"testing"
)

func TestRebind(t *testing.T) {
	q := "SELECT id FROM review_games WHERE id = ? AND owner_hash = ?"
	if got := SQLite.Rebind(q); got != q {
		t.Fatalf("sqlite rebind changed the query: %q", got)
	}
	want := "SELECT id FROM review_games WHERE id = $1 AND owner_hash = $2"
	if got := Postgres.Rebind(q); got != want {
		t.Fatalf("postgres rebind: %q", got)
	}
}

func TestParseDialect(t *testing.T) {
	for in, want := range map[string]Dialect{"postgresql": Postgres, "PQ": Postgres, "sqlite": SQLite, "sqlite3": SQLite} {
		got, err := ParseDialect(in)
		if err != nil || got != want {
			t.Fatalf("ParseDialect(%q)=%q,%v", in, got, err)
		}
	}
	if _, err := ParseDialect("mysql"); err == nil {
		t.Fatalf("expected mysql to be rejected")
	}
}

func TestOpenSQLiteMigratesTwice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "review.db")
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		db, err := Open(ctx, SQLite, path)
		if err != nil {
			t.Fatalf("Open #%d: %v", i, err)
		}
		var n int
		if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM review_games").Scan(&n); err != nil {
			t.Fatalf("query after migrate: %v", err)
		}
		_ = db.Close()
	}
}

func TestSQLiteDSN(t *testing.T) {
	if got := SQLiteDSN("/tmp/x.db"); got != "file:/tmp/x.db?_foreign_keys=on" {
		t.Fatalf("SQLiteDSN: %q", got)
	}
	if got := SQLiteDSN("file:keep.db?mode=ro"); got != "file:keep.db?mode=ro" {
		t.Fatalf("SQLiteDSN should keep explicit dsn: %q", got)
	}
}
