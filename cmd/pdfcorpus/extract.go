package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/thywilljoshua/pdf-corpus/internal/extract"
	"github.com/thywilljoshua/pdf-corpus/internal/metrics"
	"github.com/thywilljoshua/pdf-corpus/internal/objstore"
	"github.com/thywilljoshua/pdf-corpus/internal/pipeline"
)

func extractCmd(verbose *bool) *cobra.Command {
	var sourceDir string
	var filter string
	var dryRun bool
	var renderPages []int

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract, deduplicate and upload the images of every PDF in a directory",
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

			var objects objstore.Store
			if !dryRun {
				if objects, err = a.objects(ctx); err != nil {
					return err
				}
			}
			cache, closeCache := a.hashCache(ctx)
			defer closeCache()

			ex := extract.New(a.log)
			ex.DPI = a.cfg.RenderDPI
			x := &pipeline.Extraction{
				Extractor:   ex,
				Images:      db,
				Objects:     objects,
				Cache:       cache,
				DryRun:      dryRun,
				RenderPages: pageIndices(renderPages),
				Log:         a.log,
			}
			runner := &pipeline.Runner{Documents: docs, Log: a.log}
			run := metrics.New("pdfcorpus_extract")

			var total pipeline.ExtractReport
			rep, runErr := runner.Each(ctx, files, func(ctx context.Context, t pipeline.Target) error {
				r, err := x.Document(ctx, t)
				total.Add(r)
				return err
			})

			run.ObserveExtraction(total.Stats)
			run.Images.WithLabelValues("uploaded").Add(float64(total.Uploaded))
			run.Images.WithLabelValues("upload_error").Add(float64(total.UploadErrors))
			run.Images.WithLabelValues("insert_error").Add(float64(total.InsertErrors))
			observeRun(run, rep)
			a.push(ctx, run)

			if err := printJSON(cmd, struct {
				Run        pipeline.RunReport     `json:"run"`
				Extraction pipeline.ExtractReport `json:"extraction"`
				DryRun     bool                   `json:"dry_run"`
			}{rep, total, dryRun}); err != nil {
				return err
			}
			return runErr
		},
	}
	cmd.Flags().StringVar(&sourceDir, "source-dir", "", "directory searched recursively for PDF files")
	cmd.Flags().StringVar(&filter, "document-filter", "", "only process PDFs whose name contains this substring")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report what would be uploaded without writing anything")
	cmd.Flags().IntSliceVar(&renderPages, "render-pages", nil, "1-based pages to rasterize whole, e.g. 12,13")
	cmd.MarkFlagRequired("source-dir")
	return cmd
}

// pageIndices converts 1-based page numbers to 0-based indices.
func pageIndices(pages []int) []int {
	out := make([]int, 0, len(pages))
	for _, p := range pages {
		out = append(out, p-1)
	}
	return out
}

func observeRun(run *metrics.Run, rep pipeline.RunReport) {
	run.Documents.WithLabelValues("processed").Add(float64(rep.Processed))
	run.Documents.WithLabelValues("unresolved").Add(float64(len(rep.Unresolved)))
	run.Documents.WithLabelValues("failed").Add(float64(len(rep.Failed)))
}
