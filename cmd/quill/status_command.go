package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"quill/internal/api"
	"quill/internal/jobs"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon and queue status",
		RunE: func(cmd *cobra.Command, args []string) error {
			var status api.DaemonStatus
			if err := ctx.apiGet("/api/status", &status); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			state := "stopped"
			if status.Running {
				state = "running"
			}
			fmt.Fprintf(out, "Daemon: %s (pid %d)\n", state, status.PID)
			if status.LastError != "" {
				fmt.Fprintf(out, "Last error: %s\n", status.LastError)
			}

			rows := make([][]string, 0, len(jobs.AllStatuses()))
			for _, st := range jobs.AllStatuses() {
				rows = append(rows, []string{string(st), fmt.Sprintf("%d", status.JobStats[string(st)])})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Status", "Jobs"},
				rows,
				[]columnAlignment{alignLeft, alignRight},
			))

			if len(status.StageHealth) > 0 {
				healthRows := make([][]string, 0, len(status.StageHealth))
				for _, st := range status.StageHealth {
					ready := "ok"
					if !st.Ready {
						ready = "unavailable"
					}
					healthRows = append(healthRows, []string{st.Name, ready, st.Detail})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Stage", "Health", "Detail"},
					healthRows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft},
				))
			}
			return nil
		},
	}
}
