package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/thywilljoshua/pdf-corpus/internal/ai"
)

const (
	DefaultBatchSize = 50
	DefaultPause     = 500 * time.Millisecond
)

// ErrHasChunks is returned when the document already owns chunks.
var ErrHasChunks = errors.New("ingest: document already has chunks")

// Store persists chunks. InsertChunks stores rows with a stale embedding
// status and returns their IDs in input order.
type Store interface {
	CountChunks(ctx context.Context, documentID string) (int, error)
	InsertChunks(ctx context.Context, documentID string, chunks []Chunk) ([]string, error)
	UpdateChunkEmbedding(ctx context.Context, chunkID string, embedding []float32) error
}

type Result struct {
	Pages       int `json:"pages_with_text"`
	Chunks      int `json:"chunks"`
	Inserted    int `json:"inserted"`
	Embedded    int `json:"embedded"`
	EmbedErrors int `json:"embed_errors"`
}

type Ingester struct {
	Store    Store
	Embedder ai.Embedder // nil skips embedding
	// MaxTokens bounds the estimated size of one chunk.
	MaxTokens int
	BatchSize int
	// Pause is the wait between embedding batches.
	Pause  time.Duration
	DryRun bool
	Log    *zap.Logger
}

func New(store Store, embedder ai.Embedder, log *zap.Logger) *Ingester {
	if log == nil {
		log = zap.NewNop()
	}
	return &Ingester{
		Store:     store,
		Embedder:  embedder,
		MaxTokens: DefaultMaxTokens,
		BatchSize: DefaultBatchSize,
		Pause:     DefaultPause,
		Log:       log,
	}
}

// Ingest chunks pages and, unless DryRun, stores and embeds the chunks under
// documentID. The chunks are returned in both cases.
func (in *Ingester) Ingest(ctx context.Context, documentID string, pages []PageText) ([]Chunk, Result, error) {
	chunks := ChunkPages(pages, in.MaxTokens)
	res := Result{Pages: len(pages), Chunks: len(chunks)}
	if in.DryRun || len(chunks) == 0 {
		return chunks, res, nil
	}

	n, err := in.Store.CountChunks(ctx, documentID)
	if err != nil {
		return chunks, res, fmt.Errorf("count chunks: %w", err)
	}
	if n > 0 {
		return chunks, res, fmt.Errorf("%w: %d existing", ErrHasChunks, n)
	}

	ids, err := in.Store.InsertChunks(ctx, documentID, chunks)
	if err != nil {
		return chunks, res, fmt.Errorf("insert chunks: %w", err)
	}
	res.Inserted = len(ids)
	in.Log.Info("inserted chunks", zap.String("document_id", documentID), zap.Int("count", len(ids)))

	if in.Embedder == nil {
		return chunks, res, nil
	}
	if err := in.embed(ctx, chunks, ids, &res); err != nil {
		return chunks, res, err
	}
	return chunks, res, nil
}

func (in *Ingester) embed(ctx context.Context, chunks []Chunk, ids []string, res *Result) error {
	size := in.BatchSize
	if size <= 0 {
		size = DefaultBatchSize
	}
	for lo := 0; lo < len(ids); lo += size {
		hi := min(lo+size, len(ids))
		texts := make([]string, 0, hi-lo)
		for _, c := range chunks[lo:hi] {
			texts = append(texts, c.Content)
		}
		vecs, err := in.Embedder.Embed(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed chunks %d-%d: %w", lo, hi-1, err)
		}
		if len(vecs) != len(texts) {
			return fmt.Errorf("embed chunks %d-%d: got %d vectors", lo, hi-1, len(vecs))
		}
		for i, v := range vecs {
			id := ids[lo+i]
			if err := in.Store.UpdateChunkEmbedding(ctx, id, v); err != nil {
				res.EmbedErrors++
				in.Log.Warn("update embedding", zap.String("chunk_id", id), zap.Error(err))
				continue
			}
			res.Embedded++
		}
		if hi < len(ids) && in.Pause > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(in.Pause):
			}
		}
	}
	return nil
}
