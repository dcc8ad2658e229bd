package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

func main() {
	var verbose bool
	root := &cobra.Command{
		Use:           "pdfcorpus",
		Short:         "Build an image and text corpus from technical-manual PDFs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging to the console")

	root.AddCommand(
		extractCmd(&verbose),
		backfillCmd(&verbose),
		linkCmd(&verbose),
		ingestCmd(&verbose),
		tocCmd(&verbose),
		migrateCmd(&verbose),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := root.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
