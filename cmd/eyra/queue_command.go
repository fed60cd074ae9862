package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"eyra/internal/ipc"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	queueCmd := &cobra.Command{
		Use:   "queue",
		Short: "Verification queue operations",
	}
	queueCmd.AddCommand(newQueueNextCommand(ctx))
	return queueCmd
}

func newQueueNextCommand(ctx *commandContext) *cobra.Command {
	var reviewerID int64
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "next",
		Short: "Claim the next session to verify",
		RunE: func(cmd *cobra.Command, args []string) error {
			if reviewerID <= 0 {
				return fmt.Errorf("--reviewer is required")
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.NextSession(reviewerID)
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, resp)
				}
				stdout := cmd.OutOrStdout()
				if !resp.Assigned {
					fmt.Fprintln(stdout, "Nothing to verify right now")
					return nil
				}
				assignment := resp.Assignment
				pass := "primary"
				if assignment.IsSecondary {
					pass = "secondary"
				}
				fmt.Fprintf(stdout, "Session %d assigned (%s pass", assignment.SessionID, pass)
				if assignment.IsPriority {
					fmt.Fprint(stdout, ", priority")
				}
				fmt.Fprintln(stdout, ")")

				rows := make([][]string, 0, len(assignment.Pending))
				for _, pending := range assignment.Pending {
					rows = append(rows, []string{
						strconv.FormatInt(pending.RecordingID, 10),
						pending.PromptText,
						pending.AudioPath,
						strconv.Itoa(pending.NumVerified),
					})
				}
				fmt.Fprintln(stdout, renderTable(
					[]string{"Recording", "Prompt", "Audio", "Prior verdicts"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight},
				))
				return nil
			})
		},
	}

	cmd.Flags().Int64Var(&reviewerID, "reviewer", 0, "Reviewer identifier")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON output")
	return cmd
}
