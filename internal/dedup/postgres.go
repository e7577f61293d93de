package dedup

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const createSeenTable = `
	CREATE TABLE IF NOT EXISTS seen_links (
		url        TEXT PRIMARY KEY,
		first_seen TIMESTAMPTZ NOT NULL DEFAULT now()
	)`

// PostgresStore keeps the seen set in the seen_links table. Save only inserts,
// so rows are never removed by the application.
type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database url: %w", err)
	}

	config.MaxConns = 4
	config.MinConns = 1
	config.MaxConnLifetime = time.Hour

	// Transaction-mode poolers (PgBouncer, Supabase) reject cached prepared statements.
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeExec

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}

	if _, err := pool.Exec(ctx, createSeenTable); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create seen_links table: %w", err)
	}

	return &PostgresStore{db: pool}, nil
}

func (ps *PostgresStore) Close() {
	if ps.db != nil {
		ps.db.Close()
	}
}

func (ps *PostgresStore) Load(ctx context.Context) SeenSet {
	seen := NewSeenSet()

	rows, err := ps.db.Query(ctx, "SELECT url FROM seen_links")
	if err != nil {
		log.Printf("⚠️ Failed to query seen_links, starting with an empty seen set: %v", err)
		return seen
	}
	links, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		log.Printf("⚠️ Failed to read seen_links, starting with an empty seen set: %v", err)
		return seen
	}

	for _, l := range links {
		seen.Add(l)
	}
	log.Printf("📋 Loaded %d previously seen links from database", seen.Len())
	return seen
}

// Save inserts every link in one statement; existing rows keep their first_seen.
func (ps *PostgresStore) Save(ctx context.Context, seen SeenSet) error {
	links := seen.Sorted()
	if len(links) == 0 {
		return nil
	}

	tag, err := ps.db.Exec(ctx,
		"INSERT INTO seen_links (url) SELECT unnest($1::text[]) ON CONFLICT (url) DO NOTHING",
		links)
	if err != nil {
		return fmt.Errorf("failed to save seen links: %w", err)
	}

	log.Printf("💾 Saved %d seen links to database (%d new)", len(links), tag.RowsAffected())
	return nil
}
