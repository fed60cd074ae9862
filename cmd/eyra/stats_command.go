package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"eyra/internal/ipc"
)

func newStatsCommand(ctx *commandContext) *cobra.Command {
	var (
		from       string
		to         string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show verification statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			if (from == "") != (to == "") {
				return fmt.Errorf("--from and --to must be given together")
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Stats(from, to)
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, resp)
				}
				stats := resp.Stats
				rows := [][]string{
					{"Total verdicts", strconv.Itoa(stats.Total)},
					{"Single verified", strconv.Itoa(stats.SingleVerified)},
					{"Double verified", strconv.Itoa(stats.DoubleVerified)},
					{"Past week", strconv.Itoa(stats.PastWeek)},
					{"Marked good", strconv.Itoa(stats.Good)},
					{"Marked bad", strconv.Itoa(stats.Bad)},
				}
				if stats.RangeApplied {
					rows = append(rows, []string{
						fmt.Sprintf("In range %s to %s", from, to),
						strconv.Itoa(stats.RangeCount),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Metric", "Count"},
					rows,
					[]columnAlignment{alignLeft, alignRight},
				))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Range start (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "Range end (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON output")
	return cmd
}
