package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"quill/internal/api"
)

func newAuditCommand(ctx *commandContext) *cobra.Command {
	var repair bool

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Verify every ingested novel has its metadata and cover artifacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/audit"
			if repair {
				path += "?repair=1"
			}
			var report struct {
				Findings   []api.AuditFinding `json:"findings"`
				RepairJobs []api.Job          `json:"repairJobs"`
				Skipped    []string           `json:"skipped"`
			}
			if err := ctx.apiGet(path, &report); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(report.Findings) == 0 {
				fmt.Fprintln(out, "All novel namespaces are complete.")
				return nil
			}

			rows := make([][]string, 0, len(report.Findings))
			for _, f := range report.Findings {
				rows = append(rows, []string{f.Slug, missingMark(f.MissingMetadata), missingMark(f.MissingCover)})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Novel", "Metadata", "Cover"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft},
			))

			if repair {
				fmt.Fprintf(out, "Submitted %d repair jobs\n", len(report.RepairJobs))
				for _, slug := range report.Skipped {
					fmt.Fprintf(out, "Skipped %s: no source URL on record\n", slug)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&repair, "repair", false, "Submit a fresh ingestion job for each incomplete novel")
	return cmd
}

func missingMark(missing bool) string {
	if missing {
		return "missing"
	}
	return "ok"
}
