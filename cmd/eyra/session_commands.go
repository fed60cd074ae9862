package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"eyra/internal/ipc"
)

func newSessionCommand(ctx *commandContext) *cobra.Command {
	sessionCmd := &cobra.Command{
		Use:   "session",
		Short: "Inspect and manage verification sessions",
	}
	sessionCmd.AddCommand(newSessionShowCommand(ctx))
	sessionCmd.AddCommand(newSessionRemoveCommand(ctx))
	sessionCmd.AddCommand(newSessionReleaseCommand(ctx))
	sessionCmd.AddCommand(newSessionFlagCommand(ctx))
	return sessionCmd
}

func parseID(kind, raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", kind, raw)
	}
	return id, nil
}

func newSessionShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show <session-id>",
		Short: "Show a session and its outstanding work",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sessionID, err := parseID("session", args[0])
			if err != nil {
				return err
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.SessionDescribe(sessionID)
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, resp)
				}
				printSessionDetail(cmd, resp.Detail)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON output")
	return cmd
}

func printSessionDetail(cmd *cobra.Command, detail ipc.SessionDetail) {
	stdout := cmd.OutOrStdout()
	session := detail.Session

	attrs := []string{}
	if session.IsPriority {
		attrs = append(attrs, "priority")
	}
	if session.HasPriority {
		attrs = append(attrs, "fast-track")
	}
	if session.IsDev {
		attrs = append(attrs, "dev")
	}
	suffix := ""
	if len(attrs) > 0 {
		suffix = " (" + strings.Join(attrs, ", ") + ")"
	}
	fmt.Fprintf(stdout, "Session %d%s\n", session.ID, suffix)
	if session.CollectionID != nil {
		fmt.Fprintf(stdout, "  Collection: %d\n", *session.CollectionID)
	}
	fmt.Fprintf(stdout, "  Primary pass:   %s\n", passSummary(session.IsVerified, session.VerifiedBy, len(detail.PendingPrimary)))
	fmt.Fprintf(stdout, "  Secondary pass: %s\n", passSummary(session.IsSecondarilyVerified, session.SecondarilyVerifiedBy, len(detail.PendingSecondary)))

	if len(detail.PendingPrimary) > 0 {
		fmt.Fprintln(stdout, "\nPending primary verdicts:")
		fmt.Fprintln(stdout, pendingTable(detail.PendingPrimary))
	}
	if len(detail.PendingSecondary) > 0 {
		fmt.Fprintln(stdout, "\nPending secondary verdicts:")
		fmt.Fprintln(stdout, pendingTable(detail.PendingSecondary))
	}
}

func passSummary(completed bool, lockedBy *int64, pending int) string {
	if completed {
		return "complete"
	}
	if lockedBy != nil {
		return fmt.Sprintf("assigned to reviewer %d, %d pending", *lockedBy, pending)
	}
	return fmt.Sprintf("unassigned, %d pending", pending)
}

func pendingTable(pending []ipc.PendingRecording) string {
	rows := make([][]string, 0, len(pending))
	for _, p := range pending {
		rows = append(rows, []string{
			strconv.FormatInt(p.RecordingID, 10),
			p.PromptText,
			p.AudioPath,
			strconv.Itoa(p.NumVerified),
		})
	}
	return renderTable(
		[]string{"Recording", "Prompt", "Audio", "Prior verdicts"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight},
	)
}

func newSessionRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <session-id>",
		Short: "Delete a session and detach its recordings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sessionID, err := parseID("session", args[0])
			if err != nil {
				return err
			}
			return ctx.withClient(func(client *ipc.Client) error {
				if _, err := client.SessionRemove(sessionID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Session %d removed\n", sessionID)
				return nil
			})
		},
	}
}

func newSessionReleaseCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "release <session-id>",
		Short: "Release a session's assignment locks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sessionID, err := parseID("session", args[0])
			if err != nil {
				return err
			}
			return ctx.withClient(func(client *ipc.Client) error {
				if _, err := client.SessionRelease(sessionID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Session %d released\n", sessionID)
				return nil
			})
		},
	}
}

func newSessionFlagCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "flag <recording-id>",
		Short: "Move a recording into a fresh priority session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			recordingID, err := parseID("recording", args[0])
			if err != nil {
				return err
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.FlagPriority(recordingID)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Recording %d moved to priority session %d\n", recordingID, resp.SessionID)
				return nil
			})
		},
	}
}
