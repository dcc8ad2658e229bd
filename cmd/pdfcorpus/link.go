package main

import (
	"github.com/spf13/cobra"

	"github.com/thywilljoshua/pdf-corpus/internal/linker"
	"github.com/thywilljoshua/pdf-corpus/internal/metrics"
	"github.com/thywilljoshua/pdf-corpus/internal/pipeline"
)

func linkCmd(verbose *bool) *cobra.Command {
	var strategy string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "link",
		Short: "Link text chunks to the images they reference",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			strategies, err := linker.ParseStrategy(strategy)
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

			rep, runErr := pipeline.Link(ctx, linker.New(db, dryRun, a.log), strategies, db)

			run := metrics.New("pdfcorpus_link")
			run.Links.WithLabelValues(linker.FigureRef.String()).Add(float64(rep.FigureRef))
			run.Links.WithLabelValues(linker.CaptionMatch.String()).Add(float64(rep.CaptionMatch))
			run.Links.WithLabelValues(linker.SamePage.String()).Add(float64(rep.SamePage))
			a.push(ctx, run)

			if err := printJSON(cmd, struct {
				Links  pipeline.LinkReport `json:"links"`
				DryRun bool                `json:"dry_run"`
			}{rep, dryRun}); err != nil {
				return err
			}
			return runErr
		},
	}
	cmd.Flags().StringVar(&strategy, "strategy", "all", "figure_ref|caption_match|same_page|all")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "count links without writing them")
	return cmd
}
