package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"

	"github.com/thywilljoshua/pdf-corpus/internal/backfill"
	"github.com/thywilljoshua/pdf-corpus/internal/ingest"
	"github.com/thywilljoshua/pdf-corpus/internal/linker"
)

// ChunksMissingPages returns the chunks of a document with no page_start,
// in chunk order.
func (p *Postgres) ChunksMissingPages(ctx context.Context, documentID string) ([]backfill.Chunk, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id::text, content
		FROM source_chunks
		WHERE document_id = $1 AND page_start IS NULL
		ORDER BY chunk_index`, documentID)
	if err != nil {
		return nil, fmt.Errorf("query chunks of %s: %w", documentID, err)
	}
	chunks, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (backfill.Chunk, error) {
		var c backfill.Chunk
		err := row.Scan(&c.ID, &c.Content)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan chunks of %s: %w", documentID, err)
	}
	return chunks, nil
}

func (p *Postgres) UpdateChunkPages(ctx context.Context, chunkID string, start, end int) error {
	tag, err := p.pool.Exec(ctx,
		`UPDATE source_chunks SET page_start = $2, page_end = $3 WHERE id = $1`, chunkID, start, end)
	if err != nil {
		return fmt.Errorf("update pages of chunk %s: %w", chunkID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("chunk %s: %w", chunkID, ErrNotFound)
	}
	return nil
}

func (p *Postgres) CountChunks(ctx context.Context, documentID string) (int, error) {
	var n int
	err := p.pool.QueryRow(ctx, `SELECT count(*) FROM source_chunks WHERE document_id = $1`, documentID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count chunks of %s: %w", documentID, err)
	}
	return n, nil
}

// InsertChunks stores chunks in one transaction and returns their IDs in
// input order. Rows start with a stale embedding.
func (p *Postgres) InsertChunks(ctx context.Context, documentID string, chunks []ingest.Chunk) ([]string, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	ids := make([]string, len(chunks))
	batch := &pgx.Batch{}
	for i, c := range chunks {
		ids[i] = uuid.NewString()
		batch.Queue(`
			INSERT INTO source_chunks (
				id, document_id, chunk_index, heading, content,
				page_start, page_end, token_count, embedding_status
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 'stale')`,
			ids[i], documentID, c.Index, nullString(c.Heading), c.Content,
			c.PageStart, c.PageEnd, c.TokenCount,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return nil, fmt.Errorf("insert chunks of %s: %w", documentID, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return ids, nil
}

func (p *Postgres) UpdateChunkEmbedding(ctx context.Context, chunkID string, embedding []float32) error {
	_, err := p.pool.Exec(ctx,
		`UPDATE source_chunks SET embedding = $2, embedding_status = 'current' WHERE id = $1`,
		chunkID, pgvector.NewVector(embedding))
	if err != nil {
		return fmt.Errorf("update embedding of chunk %s: %w", chunkID, err)
	}
	return nil
}

func (p *Postgres) chunks(ctx context.Context, docIDs []string, pagedOnly bool) ([]linker.Chunk, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id::text, document_id::text, content, page_start, page_end
		FROM source_chunks
		WHERE ($1::text[] IS NULL OR document_id::text = ANY($1::text[]))
		  AND (NOT $2 OR page_start IS NOT NULL)
		ORDER BY document_id, chunk_index`, docIDs, pagedOnly)
	if err != nil {
		return nil, fmt.Errorf("query chunks: %w", err)
	}
	chunks, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (linker.Chunk, error) {
		var c linker.Chunk
		err := row.Scan(&c.ID, &c.DocumentID, &c.Content, &c.PageStart, &c.PageEnd)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan chunks: %w", err)
	}
	return chunks, nil
}

func (p *Postgres) Chunks(ctx context.Context, docIDs []string) ([]linker.Chunk, error) {
	return p.chunks(ctx, docIDs, false)
}

func (p *Postgres) PagedChunks(ctx context.Context, docIDs []string) ([]linker.Chunk, error) {
	return p.chunks(ctx, docIDs, true)
}
