// Package storage opens the review database and keeps its schema current.
package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed migrations/postgres/*.sql migrations/sqlite3/*.sql
var migrationFS embed.FS

// Dialect names a supported SQL backend. The value doubles as the
// database/sql driver name.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite3"
)

// DB is a connection pool plus the dialect its queries must be written in.
type DB struct {
	*sql.DB
	Dialect Dialect
}

// Open connects, pings and migrates.
func Open(ctx context.Context, dialect Dialect, dsn string) (*DB, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("%s dsn is required", dialect)
	}
	if dialect == SQLite {
		dsn = SQLiteDSN(dsn)
	}
	if err := Migrate(dialect, dsn); err != nil {
		return nil, fmt.Errorf("migrate %s: %w", dialect, err)
	}

	db, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialect, err)
	}
	switch dialect {
	case Postgres:
		db.SetMaxOpenConns(16)
		db.SetMaxIdleConns(8)
		db.SetConnMaxLifetime(30 * time.Minute)
	case SQLite:
		// single writer
		db.SetMaxOpenConns(1)
	default:
		_ = db.Close()
		return nil, fmt.Errorf("unsupported dialect: %s", dialect)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", dialect, err)
	}
	return &DB{DB: db, Dialect: dialect}, nil
}

// SQLiteDSN turns a bare path into a DSN with foreign keys on.
func SQLiteDSN(path string) string {
	if strings.HasPrefix(path, "file:") {
		return path
	}
	return fmt.Sprintf("file:%s?_foreign_keys=on", path)
}

// Migrate applies the embedded up migrations on a dedicated connection.
// Migration drivers close the pool they wrap, so the caller's pool is never
// handed to them.
func Migrate(dialect Dialect, dsn string) error {
	src, err := iofs.New(migrationFS, "migrations/"+string(dialect))
	if err != nil {
		return err
	}
	db, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return err
	}

	var m *migrate.Migrate
	switch dialect {
	case Postgres:
		driver, derr := migratepg.WithInstance(db, &migratepg.Config{})
		if derr != nil {
			_ = db.Close()
			return derr
		}
		m, err = migrate.NewWithInstance("iofs", src, string(dialect), driver)
	case SQLite:
		driver, derr := migratesqlite.WithInstance(db, &migratesqlite.Config{})
		if derr != nil {
			_ = db.Close()
			return derr
		}
		m, err = migrate.NewWithInstance("iofs", src, string(dialect), driver)
	default:
		_ = db.Close()
		return fmt.Errorf("unsupported dialect: %s", dialect)
	}
	if err != nil {
		_ = db.Close()
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// Rebind rewrites '?' placeholders into the dialect's form.
func (d Dialect) Rebind(query string) string {
	if d != Postgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ParseDialect accepts the driver name or a DSN scheme.
func ParseDialect(raw string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "postgres", "postgresql", "pq":
		return Postgres, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	default:
		return "", fmt.Errorf("unsupported dialect: %q", raw)
	}
}
