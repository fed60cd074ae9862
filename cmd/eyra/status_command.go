package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"eyra/internal/ipc"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon status and preflight checks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Status()
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, resp)
				}
				stdout := cmd.OutOrStdout()
				colorize := shouldColorize(stdout)

				for _, line := range renderSectionHeader("Daemon", colorize) {
					fmt.Fprintln(stdout, line)
				}
				daemonKind := statusError
				daemonDetail := "stopped"
				if resp.Running {
					daemonKind = statusOK
					daemonDetail = fmt.Sprintf("running (pid %d)", resp.PID)
				}
				fmt.Fprintln(stdout, renderStatusLine("State", daemonKind, daemonDetail, colorize))
				fmt.Fprintln(stdout, renderStatusLine("Database", statusInfo, resp.DatabasePath, colorize))
				fmt.Fprintln(stdout, renderStatusLine("Lock file", statusInfo, resp.LockPath, colorize))

				if len(resp.Checks) > 0 {
					fmt.Fprintln(stdout)
					for _, line := range renderSectionHeader("Preflight Checks", colorize) {
						fmt.Fprintln(stdout, line)
					}
					for _, check := range resp.Checks {
						kind := statusOK
						if !check.Passed {
							kind = statusError
						}
						fmt.Fprintln(stdout, renderStatusLine(check.Name, kind, check.Detail, colorize))
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON output")
	return cmd
}
