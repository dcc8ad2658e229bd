package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thywilljoshua/pdf-corpus/internal/ai"
	"github.com/thywilljoshua/pdf-corpus/internal/ingest"
	"github.com/thywilljoshua/pdf-corpus/internal/metrics"
	"github.com/thywilljoshua/pdf-corpus/internal/pdfdoc"
)

const previewChunks = 10

type chunkPreview struct {
	Index     int    `json:"index"`
	PageStart int    `json:"page_start"`
	PageEnd   int    `json:"page_end"`
	Tokens    int    `json:"tokens"`
	Heading   string `json:"heading,omitempty"`
}

func ingestCmd(verbose *bool) *cobra.Command {
	var pdfPath string
	var docID string
	var dryRun bool
	var skipEmbeddings bool
	var maxTokens int

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Chunk the text of a PDF and store it with embeddings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(*verbose)
			if err != nil {
				return err
			}
			defer a.log.Sync()

			in := ingest.New(nil, nil, a.log)
			in.MaxTokens = maxTokens
			in.DryRun = dryRun
			if !dryRun {
				if !skipEmbeddings {
					if err := a.cfg.RequireEmbeddings(); err != nil {
						return err
					}
					emb, err := ai.NewEmbedder(ctx, ai.EmbedderOptions{
						Provider:   a.cfg.EmbeddingProvider,
						APIKey:     a.cfg.EmbeddingKey(),
						Model:      a.cfg.EmbeddingModel(),
						Dimensions: a.cfg.EmbeddingDimensions,
					})
					if err != nil {
						return err
					}
					in.Embedder = emb
				}
				db, err := a.openStore(ctx)
				if err != nil {
					return err
				}
				defer db.Close()
				if _, err := db.Document(ctx, docID); err != nil {
					return err
				}
				in.Store = db
			}

			f, err := pdfdoc.Open(pdfPath)
			if err != nil {
				return fmt.Errorf("open %s: %w", pdfPath, err)
			}
			pages := ingest.PagesFromDocument(f)
			f.Close()

			chunks, res, ingestErr := in.Ingest(ctx, docID, pages)

			run := metrics.New("pdfcorpus_ingest")
			run.Chunks.WithLabelValues("inserted").Add(float64(res.Inserted))
			run.Chunks.WithLabelValues("embedded").Add(float64(res.Embedded))
			run.Chunks.WithLabelValues("embed_error").Add(float64(res.EmbedErrors))
			a.push(ctx, run)

			var preview []chunkPreview
			if dryRun {
				for _, c := range chunks[:min(previewChunks, len(chunks))] {
					preview = append(preview, chunkPreview{c.Index, c.PageStart, c.PageEnd, c.TokenCount, c.Heading})
				}
			}
			if err := printJSON(cmd, struct {
				Result  ingest.Result  `json:"result"`
				Preview []chunkPreview `json:"preview,omitempty"`
				DryRun  bool           `json:"dry_run"`
			}{res, preview, dryRun}); err != nil {
				return err
			}
			return ingestErr
		},
	}
	cmd.Flags().StringVar(&pdfPath, "pdf", "", "path to the PDF file")
	cmd.Flags().StringVar(&docID, "doc-id", "", "ID of the source document the chunks belong to")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show chunks without storing them")
	cmd.Flags().BoolVar(&skipEmbeddings, "skip-embeddings", false, "store chunks without generating embeddings")
	cmd.Flags().IntVar(&maxTokens, "max-tokens", ingest.DefaultMaxTokens, "upper bound on estimated tokens per chunk")
	cmd.MarkFlagRequired("pdf")
	cmd.MarkFlagRequired("doc-id")
	return cmd
}
