package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/thywilljoshua/pdf-corpus/internal/backfill"
	"github.com/thywilljoshua/pdf-corpus/internal/pdfdoc"
)

type ChunkStore interface {
	ChunksMissingPages(ctx context.Context, documentID string) ([]backfill.Chunk, error)
	UpdateChunkPages(ctx context.Context, chunkID string, start, end int) error
}

type BackfillReport struct {
	Chunks       int `json:"chunks"`
	Matches      int `json:"backfill_matches"`
	Misses       int `json:"backfill_misses"`
	UpdateErrors int `json:"update_errors"`
}

func (r *BackfillReport) Add(o BackfillReport) {
	r.Chunks += o.Chunks
	r.Matches += o.Matches
	r.Misses += o.Misses
	r.UpdateErrors += o.UpdateErrors
}

// Backfill assigns page numbers to the chunks of a document that have none.
type Backfill struct {
	Chunks ChunkStore
	DryRun bool
	Log    *zap.Logger
}

func (b *Backfill) Document(ctx context.Context, t Target) (BackfillReport, error) {
	log := b.Log
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("document_id", t.Document.ID))

	chunks, err := b.Chunks.ChunksMissingPages(ctx, t.Document.ID)
	if err != nil {
		return BackfillReport{}, fmt.Errorf("load chunks: %w", err)
	}
	rep := BackfillReport{Chunks: len(chunks)}
	if len(chunks) == 0 {
		return rep, nil
	}

	s := backfill.NewSession(pdfdoc.PageTexts(t.Source.Doc))
	for i := range chunks {
		c := &chunks[i]
		if !s.Locate(c) {
			log.Debug("no page found", zap.String("chunk_id", c.ID))
			continue
		}
		if b.DryRun {
			continue
		}
		if err := b.Chunks.UpdateChunkPages(ctx, c.ID, *c.PageStart, *c.PageEnd); err != nil {
			if ctx.Err() != nil {
				return rep, ctx.Err()
			}
			log.Error("update chunk pages", zap.String("chunk_id", c.ID), zap.Error(err))
			rep.UpdateErrors++
		}
	}
	rep.Matches, rep.Misses = s.Matches, s.Misses
	log.Info("backfilled", zap.Int("matches", s.Matches), zap.Int("misses", s.Misses))
	return rep, nil
}
