package document

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const (
	existsDocument = `SELECT EXISTS (SELECT 1 FROM documents WHERE name = $1)`
	readDocument   = `SELECT body FROM documents WHERE name = $1`
	writeDocument  = `INSERT INTO documents (name, body, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (name) DO UPDATE SET body = EXCLUDED.body, updated_at = now()`
)

// DBTX is the subset of pgxpool.Pool used by PostgresBackend.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresBackend keeps each document as one jsonb row of the documents table.
type PostgresBackend struct {
	db   DBTX
	name string
}

var _ Backend = (*PostgresBackend)(nil)

func NewPostgresBackend(db DBTX, name string) *PostgresBackend {
	return &PostgresBackend{db: db, name: name}
}

func (b *PostgresBackend) Name() string {
	return "postgres:documents/" + b.name
}

func (b *PostgresBackend) Exists(ctx context.Context) (bool, error) {
	var exists bool
	if err := b.db.QueryRow(ctx, existsDocument, b.name).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check document %s: %w", b.name, err)
	}
	return exists, nil
}

func (b *PostgresBackend) Read(ctx context.Context) ([]byte, error) {
	var body []byte
	if err := b.db.QueryRow(ctx, readDocument, b.name).Scan(&body); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotExist
		}
		return nil, fmt.Errorf("failed to read document %s: %w", b.name, err)
	}
	return body, nil
}

func (b *PostgresBackend) Write(ctx context.Context, data []byte) error {
	if _, err := b.db.Exec(ctx, writeDocument, b.name, data); err != nil {
		return fmt.Errorf("failed to write document %s: %w", b.name, err)
	}
	return nil
}

// Migrate applies the embedded schema migrations to the database at databaseURL.
func Migrate(databaseURL string) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to open embedded migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer func() {
		_, _ = m.Close()
	}()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}
