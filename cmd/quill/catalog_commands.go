package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"quill/internal/catalog"
	"quill/internal/ingest"
)

func newCatalogCommand(ctx *commandContext) *cobra.Command {
	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect the relational catalog",
	}
	catalogCmd.AddCommand(newCatalogListCommand(ctx))
	catalogCmd.AddCommand(newCatalogChaptersCommand(ctx))
	catalogCmd.AddCommand(newCatalogTriageCommand(ctx))
	return catalogCmd
}

func newCatalogListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List catalog novels",
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

			novels, err := store.ListNovels(cmd.Context())
			if err != nil {
				return err
			}
			if len(novels) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Catalog is empty.")
				return nil
			}

			rows := make([][]string, 0, len(novels))
			for _, novel := range novels {
				count, err := store.ChapterCount(cmd.Context(), novel.ID)
				if err != nil {
					return err
				}
				source := "manual"
				if novel.Ingested {
					source = "ingested"
				}
				rows = append(rows, []string{
					strconv.FormatInt(novel.ID, 10),
					novel.Slug,
					truncate(novel.Title, 40),
					string(novel.Status),
					strconv.Itoa(count),
					source,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Slug", "Title", "Status", "Chapters", "Origin"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}
}

func newCatalogTriageCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "triage <title>...",
		Short: "Report which candidate titles are not in the catalog yet",
		Long: "Checks each candidate title against the catalog with the same loose match\n" +
			"the importer uses, so candidates it reports as new will not merge into an\n" +
			"existing novel when ingested.",
		Args: cobra.MinimumNArgs(1),
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

			entries, err := store.ListTitles(cmd.Context())
			if err != nil {
				return err
			}
			existing := make([]string, 0, len(entries))
			for _, entry := range entries {
				existing = append(existing, entry.Title)
			}

			fresh := ingest.FilterNew(args, existing)
			newSet := make(map[string]struct{}, len(fresh))
			for _, title := range fresh {
				newSet[title] = struct{}{}
			}

			rows := make([][]string, 0, len(args))
			for _, title := range args {
				verdict := "already present"
				if _, ok := newSet[title]; ok {
					verdict = "new"
				}
				rows = append(rows, []string{truncate(title, 48), verdict})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Title", "Verdict"},
				rows,
				[]columnAlignment{alignLeft, alignLeft},
			))
			return nil
		},
	}
}

func newCatalogChaptersCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "chapters <slug>",
		Short: "List a novel's chapters",
		Args:  cobra.ExactArgs(1),
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

			novel, err := store.FindBySlug(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if novel == nil {
				return fmt.Errorf("no novel with slug %q", args[0])
			}

			chapters, err := store.ListChapters(cmd.Context(), novel.ID)
			if err != nil {
				return err
			}
			if len(chapters) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No chapters.")
				return nil
			}

			rows := make([][]string, 0, len(chapters))
			for _, ch := range chapters {
				rows = append(rows, []string{
					strconv.Itoa(ch.Number),
					truncate(ch.Title, 48),
					strconv.Itoa(ch.WordCount),
					ch.UpdatedAt.Format("2006-01-02 15:04"),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"#", "Title", "Words", "Updated"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}
}
