package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"eyra/internal/ipc"
)

func newVerifyCommand(ctx *commandContext) *cobra.Command {
	verifyCmd := &cobra.Command{
		Use:   "verify",
		Short: "Record, undo, and export verification verdicts",
	}
	verifyCmd.AddCommand(newVerifyRecordCommand(ctx))
	verifyCmd.AddCommand(newVerifyUndoCommand(ctx))
	verifyCmd.AddCommand(newVerifyExportCommand(ctx))
	return verifyCmd
}

func newVerifyRecordCommand(ctx *commandContext) *cobra.Command {
	var (
		reviewerID int64
		flagLow    bool
		flagHigh   bool
		flagWrong  bool
		flagGlitch bool
		flagOut    bool
		flagOK     bool
		comment    string
		trimStart  float64
		trimEnd    float64
	)

	cmd := &cobra.Command{
		Use:   "record <recording-id>",
		Short: "Record a verdict on a recording",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			recordingID, err := strconv.ParseInt(strings.TrimSpace(args[0]), 10, 64)
			if err != nil || recordingID <= 0 {
				return fmt.Errorf("invalid recording id %q", args[0])
			}
			if reviewerID <= 0 {
				return fmt.Errorf("--reviewer is required")
			}

			req := ipc.VerdictRequest{
				RecordingID:       recordingID,
				ReviewerID:        reviewerID,
				VolumeIsLow:       flagLow,
				VolumeIsHigh:      flagHigh,
				WrongWording:      flagWrong,
				HasGlitch:         flagGlitch,
				GlitchOutsideTrim: flagOut,
				IsOK:              flagOK,
				Comment:           strings.TrimSpace(comment),
			}
			if cmd.Flags().Changed("trim-start") || cmd.Flags().Changed("trim-end") {
				start, end := trimStart, trimEnd
				req.TrimStart = &start
				req.TrimEnd = &end
			}

			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.RecordVerdict(req)
				if err != nil {
					return err
				}
				stdout := cmd.OutOrStdout()
				pass := "primary"
				if resp.Result.IsSecondary {
					pass = "secondary"
				}
				fmt.Fprintf(stdout, "Verdict %d recorded (%s pass)\n", resp.Result.VerificationID, pass)
				if resp.Result.SessionCompleted {
					fmt.Fprintln(stdout, "Session fully verified for this pass")
				}
				return nil
			})
		},
	}

	cmd.Flags().Int64Var(&reviewerID, "reviewer", 0, "Reviewer identifier")
	cmd.Flags().BoolVar(&flagLow, "low", false, "Volume is too low")
	cmd.Flags().BoolVar(&flagHigh, "high", false, "Volume is too high")
	cmd.Flags().BoolVar(&flagWrong, "wrong", false, "Recording has wrong wording")
	cmd.Flags().BoolVar(&flagGlitch, "glitch", false, "Recording has a glitch")
	cmd.Flags().BoolVar(&flagOut, "glitch-outside", false, "Glitch falls outside the trim range")
	cmd.Flags().BoolVar(&flagOK, "ok", false, "Recording is fine")
	cmd.Flags().StringVar(&comment, "comment", "", "Free-form reviewer comment")
	cmd.Flags().Float64Var(&trimStart, "trim-start", 0, "Trim start in seconds")
	cmd.Flags().Float64Var(&trimEnd, "trim-end", 0, "Trim end in seconds")
	return cmd
}

func newVerifyUndoCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "undo <verification-id>",
		Short: "Undo a verdict and roll back its flags",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			verificationID, err := strconv.ParseInt(strings.TrimSpace(args[0]), 10, 64)
			if err != nil || verificationID <= 0 {
				return fmt.Errorf("invalid verification id %q", args[0])
			}
			return ctx.withClient(func(client *ipc.Client) error {
				if _, err := client.UndoVerdict(verificationID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Verdict %d undone\n", verificationID)
				return nil
			})
		},
	}
}

func newVerifyExportCommand(ctx *commandContext) *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all verdicts as TSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Export()
				if err != nil {
					return err
				}
				if strings.TrimSpace(outputPath) == "" {
					fmt.Fprint(cmd.OutOrStdout(), resp.TSV)
					return nil
				}
				if err := os.WriteFile(outputPath, []byte(resp.TSV), 0o644); err != nil {
					return fmt.Errorf("write export: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote export to %s\n", outputPath)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the TSV to a file instead of stdout")
	return cmd
}
