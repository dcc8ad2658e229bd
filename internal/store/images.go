package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/thywilljoshua/pdf-corpus/internal/extract"
	"github.com/thywilljoshua/pdf-corpus/internal/linker"
)

func (p *Postgres) ImageExistsByHash(ctx context.Context, hash string) (bool, error) {
	var exists bool
	err := p.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM source_images WHERE content_hash = $1)`, hash,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("lookup hash %s: %w", hash, err)
	}
	return exists, nil
}

// InsertImage stores the metadata of an uploaded image and returns its ID.
func (p *Postgres) InsertImage(ctx context.Context, documentID, storagePath string, img extract.ExtractedImage) (string, error) {
	id := uuid.NewString()
	var bbox [4]*float64
	if img.BBox != nil {
		for i := range img.BBox {
			bbox[i] = &img.BBox[i]
		}
	}
	_, err := p.pool.Exec(ctx, `
		INSERT INTO source_images (
			id, document_id, page_number, figure_label, caption, image_category,
			storage_path, width, height, file_size_bytes, content_hash, format,
			extraction_method, quality_score, is_oral_exam_relevant,
			bbox_x0, bbox_y0, bbox_x1, bbox_y1
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`,
		id, documentID, img.Page, nullString(img.FigureLabel), nullString(img.Caption), string(img.Category),
		storagePath, img.Width, img.Height, img.ByteSize, img.ContentHash, string(img.Format),
		string(img.Method), img.Quality, img.Relevant,
		bbox[0], bbox[1], bbox[2], bbox[3],
	)
	if err != nil {
		return "", fmt.Errorf("insert image %s: %w", storagePath, err)
	}
	return id, nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

const imageColumns = `id::text, document_id::text, page_number, coalesce(figure_label, ''), coalesce(caption, '')`

func (p *Postgres) images(ctx context.Context, where string) ([]linker.Image, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT `+imageColumns+` FROM source_images WHERE is_oral_exam_relevant AND `+where+` ORDER BY document_id, page_number, id`)
	if err != nil {
		return nil, fmt.Errorf("query images: %w", err)
	}
	imgs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (linker.Image, error) {
		var img linker.Image
		err := row.Scan(&img.ID, &img.DocumentID, &img.Page, &img.FigureLabel, &img.Caption)
		return img, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan images: %w", err)
	}
	return imgs, nil
}

func (p *Postgres) LabeledImages(ctx context.Context) ([]linker.Image, error) {
	return p.images(ctx, `figure_label IS NOT NULL AND figure_label <> ''`)
}

func (p *Postgres) CaptionedImages(ctx context.Context) ([]linker.Image, error) {
	return p.images(ctx, `caption IS NOT NULL AND caption <> ''`)
}

func (p *Postgres) RelevantImages(ctx context.Context) ([]linker.Image, error) {
	return p.images(ctx, `true`)
}
