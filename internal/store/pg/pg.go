// Package pg implementa el credential store sobre Postgres (pgx).
package pg

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/coaching2100/sallyport/internal/store"
)

type pgStore struct {
	pool *pgxpool.Pool
}

// queryTimeout acota cada lookup; el credential store no debe colgar el
// flujo de autenticación (fail closed).
const queryTimeout = 5 * time.Second

// New abre el pool y verifica conectividad.
func New(ctx context.Context, dsn string) (store.CredentialStore, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("pg: parse dsn: %w", err)
	}
	cfg.MaxConns = 10
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("pg: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg: ping: %w", err)
	}
	return &pgStore{pool: pool}, nil
}

func (s *pgStore) GetClient(ctx context.Context, clientID string) (*store.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	const query = `
		SELECT client_id, secret_hash, grant_types, scopes, tenant_id
		FROM clients WHERE client_id = $1
	`
	var c store.Client
	err := s.pool.QueryRow(ctx, query, clientID).Scan(
		&c.ClientID, &c.SecretHash, &c.GrantTypes, &c.Scopes, &c.Tenant,
	)
	if err == pgx.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("pg: get client: %w", err)
	}
	return &c, nil
}

// Migrate aplica las migraciones embebidas en orden lexicográfico. Cada
// archivo ya aplicado se salta (tabla schema_migrations).
func Migrate(ctx context.Context, dsn string, fsys fs.FS, dir string) error {
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return fmt.Errorf("pg: connect: %w", err)
	}
	defer conn.Close(ctx)

	if _, err := conn.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			name       TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`); err != nil {
		return fmt.Errorf("pg: schema_migrations: %w", err)
	}

	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("pg: read migrations: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		var done bool
		err := conn.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE name = $1)`, name,
		).Scan(&done)
		if err != nil {
			return fmt.Errorf("pg: check %s: %w", name, err)
		}
		if done {
			continue
		}

		sqlBytes, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return fmt.Errorf("pg: read %s: %w", name, err)
		}

		tx, err := conn.Begin(ctx)
		if err != nil {
			return fmt.Errorf("pg: begin %s: %w", name, err)
		}
		if _, err := tx.Exec(ctx, string(sqlBytes)); err != nil {
			_ = tx.Rollback(ctx)
			return fmt.Errorf("pg: apply %s: %w", name, err)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO schema_migrations (name) VALUES ($1)`, name,
		); err != nil {
			_ = tx.Rollback(ctx)
			return fmt.Errorf("pg: record %s: %w", name, err)
		}
		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("pg: commit %s: %w", name, err)
		}
	}
	return nil
}

func (s *pgStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	return s.pool.Ping(ctx)
}

func (s *pgStore) Close() { s.pool.Close() }
