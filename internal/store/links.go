package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/thywilljoshua/pdf-corpus/internal/linker"
)

// UpsertLink stores l unless the pair already has a link of higher rank.
func (p *Postgres) UpsertLink(ctx context.Context, l linker.Link) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO chunk_image_links (chunk_id, image_id, link_type, relevance_score)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (chunk_id, image_id) DO UPDATE
		SET link_type = EXCLUDED.link_type, relevance_score = EXCLUDED.relevance_score
		WHERE link_rank(EXCLUDED.link_type) >= link_rank(chunk_image_links.link_type)`,
		l.ChunkID, l.ImageID, l.Type.String(), l.Score)
	if err != nil {
		return fmt.Errorf("upsert link %s/%s: %w", l.ChunkID, l.ImageID, err)
	}
	return nil
}

// LinkCounts returns the number of stored links per link type.
func (p *Postgres) LinkCounts(ctx context.Context) (map[string]int, error) {
	rows, err := p.pool.Query(ctx, `SELECT link_type, count(*) FROM chunk_image_links GROUP BY link_type`)
	if err != nil {
		return nil, fmt.Errorf("count links: %w", err)
	}
	counts := make(map[string]int)
	var (
		typ string
		n   int
	)
	_, err = pgx.ForEachRow(rows, []any{&typ, &n}, func() error {
		counts[typ] = n
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("count links: %w", err)
	}
	return counts, nil
}
