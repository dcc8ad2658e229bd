package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/thywilljoshua/pdf-corpus/internal/ai"
	"github.com/thywilljoshua/pdf-corpus/internal/pdfdoc"
)

func tocCmd(verbose *bool) *cobra.Command {
	var pdfPath string
	var maxDepth int
	var tocPages int
	var repair bool

	cmd := &cobra.Command{
		Use:   "toc",
		Short: "Print the section hierarchy of a PDF from its bookmarks or printed contents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(*verbose)
			if err != nil {
				return err
			}
			defer a.log.Sync()

			var repairer ai.ToCRepairer = ai.Noop{}
			if repair {
				g, err := ai.NewGemini(ctx, a.cfg.GoogleAPIKey, a.cfg.GeminiModel)
				if err != nil {
					return fmt.Errorf("toc repair: %w", err)
				}
				repairer = g
			}

			f, err := pdfdoc.Open(pdfPath)
			if err != nil {
				return fmt.Errorf("open %s: %w", pdfPath, err)
			}
			defer f.Close()

			source := "outline"
			entries, err := f.Outline()
			if err != nil {
				a.log.Warn("read outline", zap.Error(err))
			}
			if len(entries) == 0 {
				source = "text"
				lines := pdfdoc.ToCLines(pdfdoc.PageTexts(f), tocPages)
				if lines, err = repairer.RepairToC(ctx, lines); err != nil {
					return err
				}
				entries = pdfdoc.ParseToCLines(lines)
			}

			return printJSON(cmd, struct {
				Source   string                `json:"source"`
				Pages    int                   `json:"pages"`
				Entries  []pdfdoc.OutlineEntry `json:"entries"`
				Sections []pdfdoc.Section      `json:"sections"`
			}{source, f.NumPages(), entries, pdfdoc.BuildSections(entries, maxDepth, f.NumPages())})
		},
	}
	cmd.Flags().StringVar(&pdfPath, "pdf", "", "path to the PDF file")
	cmd.Flags().IntVar(&maxDepth, "max-depth", 3, "maximum section depth")
	cmd.Flags().IntVar(&tocPages, "toc-pages", 16, "scan up to N early pages for a printed table of contents")
	cmd.Flags().BoolVar(&repair, "repair", false, "normalize printed contents lines with Gemini (needs GOOGLE_API_KEY)")
	cmd.MarkFlagRequired("pdf")
	return cmd
}
