package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"quill/internal/catalog"
	"quill/internal/ingest"
	"quill/internal/textclean"
)

func newBackfillCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "backfill",
		Short: "Re-run the text normalizer over every stored chapter",
		Long: fmt.Sprintf("Re-applies the current normalization pattern set (version %d) to all chapters\n"+
			"and persists cleaned text where it changed. Safe to run repeatedly.", textclean.Version),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := catalog.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			res, err := ingest.BackfillCleanText(cmd.Context(), store, nil)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Scanned %d chapters, updated %d", res.ChaptersScanned, res.ChaptersUpdated)
			if res.EmptiedKept > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), " (%d kept original: cleaning would empty them)", res.EmptiedKept)
			}
			fmt.Fprintln(cmd.OutOrStdout())
			return nil
		},
	}
}
