package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/thywilljoshua/pdf-corpus/internal/metrics"
	"github.com/thywilljoshua/pdf-corpus/internal/pipeline"
)

func backfillCmd(verbose *bool) *cobra.Command {
	var sourceDir string
	var filter string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "Recover page numbers of text chunks by matching them against the PDF text",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			files, err := pipeline.FindPDFs(sourceDir, filter)
			if err != nil {
				return err
			}
			a, err := newApp(*verbose)
			if err != nil {
				return err
			}
			defer a.log.Sync()

			db, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer db.Close()
			docs, err := db.Documents(ctx)
			if err != nil {
				return err
			}

			b := &pipeline.Backfill{Chunks: db, DryRun: dryRun, Log: a.log}
			runner := &pipeline.Runner{Documents: docs, Log: a.log}
			run := metrics.New("pdfcorpus_backfill")

			var total pipeline.BackfillReport
			rep, runErr := runner.Each(ctx, files, func(ctx context.Context, t pipeline.Target) error {
				r, err := b.Document(ctx, t)
				total.Add(r)
				return err
			})

			run.Chunks.WithLabelValues("matched").Add(float64(total.Matches))
			run.Chunks.WithLabelValues("missed").Add(float64(total.Misses))
			run.Chunks.WithLabelValues("update_error").Add(float64(total.UpdateErrors))
			observeRun(run, rep)
			a.push(ctx, run)

			if err := printJSON(cmd, struct {
				Run      pipeline.RunReport      `json:"run"`
				Backfill pipeline.BackfillReport `json:"backfill"`
				DryRun   bool                    `json:"dry_run"`
			}{rep, total, dryRun}); err != nil {
				return err
			}
			return runErr
		},
	}
	cmd.Flags().StringVar(&sourceDir, "source-dir", "", "directory searched recursively for PDF files")
	cmd.Flags().StringVar(&filter, "document-filter", "", "only process PDFs whose name contains this substring")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "match chunks without writing page numbers")
	cmd.MarkFlagRequired("source-dir")
	return cmd
}
