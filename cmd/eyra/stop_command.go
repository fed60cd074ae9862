package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"eyra/internal/ipc"
)

func newStopCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the running daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Stop()
				if err != nil {
					return err
				}
				if resp.Stopped {
					fmt.Fprintln(cmd.OutOrStdout(), "Daemon stopping")
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), "Daemon was not running")
				}
				return nil
			})
		},
	}
}
