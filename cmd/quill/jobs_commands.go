package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"quill/internal/api"
	"quill/internal/jobs"
)

func newSubmitCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "submit <source-url>",
		Short: "Submit a novel source URL for ingestion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var job api.Job
			if err := ctx.apiPost("/api/jobs", map[string]string{"sourceUrl": args[0]}, &job); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Job %d submitted (%s)\n", job.ID, job.Status)
			return nil
		},
	}
}

func newJobsCommand(ctx *commandContext) *cobra.Command {
	var statusFilter string
	jobsCmd := &cobra.Command{
		Use:   "jobs",
		Short: "List ingestion jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			var response struct {
				Jobs []api.Job `json:"jobs"`
			}
			if err := ctx.apiGet("/api/jobs", &response); err != nil {
				return err
			}
			listed := response.Jobs
			if statusFilter != "" {
				filtered := make([]api.Job, 0, len(listed))
				for _, job := range listed {
					if strings.EqualFold(job.Status, statusFilter) {
						filtered = append(filtered, job)
					}
				}
				listed = filtered
			}
			if len(listed) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No jobs.")
				return nil
			}
			rows := make([][]string, 0, len(listed))
			for _, job := range listed {
				detail := job.ProgressMessage
				if job.ErrorMessage != "" {
					detail = job.ErrorMessage
				}
				rows = append(rows, []string{
					strconv.FormatInt(job.ID, 10),
					job.Status,
					job.NovelSlug,
					strconv.Itoa(job.ChaptersImported),
					truncate(job.SourceURL, 48),
					truncate(detail, 56),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Status", "Novel", "Chapters", "Source", "Detail"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
			))
			return nil
		},
	}

	jobsCmd.Flags().StringVar(&statusFilter, "status", "", "only show jobs with this status")
	jobsCmd.AddCommand(newJobsClearCommand(ctx))
	return jobsCmd
}

// newJobsClearCommand removes completed and failed jobs. Jobs are an audit
// trail, so clearing is an explicit operator action and never automatic.
func newJobsClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete completed and failed jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := jobs.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			removed, err := store.ClearTerminal(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d terminal jobs\n", removed)
			return nil
		},
	}
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <job-id>",
		Short: "Show one job in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid job id %q", args[0])
			}
			var job api.Job
			if err := ctx.apiGet(fmt.Sprintf("/api/jobs/%d", id), &job); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Job %d\n", job.ID)
			fmt.Fprintf(out, "  Status:    %s\n", job.Status)
			fmt.Fprintf(out, "  Source:    %s\n", job.SourceURL)
			if job.NovelSlug != "" {
				fmt.Fprintf(out, "  Novel:     %s (id %d)\n", job.NovelSlug, job.NovelID)
			}
			if job.ChaptersImported > 0 {
				fmt.Fprintf(out, "  Chapters:  %d\n", job.ChaptersImported)
			}
			if job.ProgressStage != "" {
				fmt.Fprintf(out, "  Progress:  %s - %s\n", job.ProgressStage, job.ProgressMessage)
			}
			if job.ErrorMessage != "" {
				fmt.Fprintf(out, "  Error:     %s\n", job.ErrorMessage)
			}
			fmt.Fprintf(out, "  Created:   %s\n", job.CreatedAt)
			fmt.Fprintf(out, "  Updated:   %s\n", job.UpdatedAt)
			return nil
		},
	}
}

func truncate(value string, limit int) string {
	value = strings.TrimSpace(value)
	if limit <= 3 || len(value) <= limit {
		return value
	}
	return value[:limit-3] + "..."
}
