// Package store persists documents, images, text chunks and chunk-image
// links in Postgres.
package store

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("store: not found")

//go:embed schema.sql
var schema string

type Postgres struct {
	pool *pgxpool.Pool
}

// Open connects to databaseURL and checks the connection.
func Open(ctx context.Context, databaseURL string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

func (p *Postgres) Close() { p.pool.Close() }

// Migrate creates the tables when they do not exist.
func (p *Postgres) Migrate(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Document is a source manual.
type Document struct {
	ID           string
	Abbreviation string
	Title        string
}

func (p *Postgres) Documents(ctx context.Context) ([]Document, error) {
	rows, err := p.pool.Query(ctx, `SELECT id::text, abbreviation, title FROM source_documents ORDER BY abbreviation, title`)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	docs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Document, error) {
		var d Document
		err := row.Scan(&d.ID, &d.Abbreviation, &d.Title)
		return d, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan documents: %w", err)
	}
	return docs, nil
}

func (p *Postgres) Document(ctx context.Context, id string) (Document, error) {
	var d Document
	err := p.pool.QueryRow(ctx,
		`SELECT id::text, abbreviation, title FROM source_documents WHERE id = $1`, id,
	).Scan(&d.ID, &d.Abbreviation, &d.Title)
	if errors.Is(err, pgx.ErrNoRows) {
		return Document{}, fmt.Errorf("document %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Document{}, fmt.Errorf("query document %s: %w", id, err)
	}
	return d, nil
}
