package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"clipshare/internal/api"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show the full state of one job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parsePositiveIDs(args)
			if err != nil {
				return err
			}
			return ctx.withQueue(func(runCtx context.Context, service *api.QueueService) error {
				item, err := service.Describe(runCtx, ids[0])
				if err != nil {
					return err
				}
				if item == nil {
					return fmt.Errorf("item %d not found", ids[0])
				}
				if jsonOut {
					return writeJSON(cmd, item)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Job %d (%s)\n", item.ID, item.Status)
				fmt.Fprintf(out, "  Client:    %s\n", item.ClientID)
				fmt.Fprintf(out, "  Source:    %s\n", item.VideoURL)
				fmt.Fprintf(out, "  Message:   %s\n", item.TweetText)
				fmt.Fprintf(out, "  Trim:      start %.3fs, duration %.3fs\n", item.TrimStart, item.TrimDuration)
				fmt.Fprintf(out, "  Progress:  %s %.0f%% %s\n", item.Progress.Stage, item.Progress.Percent, item.Progress.Message)
				fmt.Fprintf(out, "  Attempts:  %d\n", item.Attempts)
				if item.SourceFile != "" {
					fmt.Fprintf(out, "  Download:  %s\n", item.SourceFile)
				}
				if item.TrimmedFile != "" {
					fmt.Fprintf(out, "  Trimmed:   %s\n", item.TrimmedFile)
				}
				if item.TweetID != "" {
					fmt.Fprintf(out, "  Tweet:     %s\n", item.TweetID)
				}
				if item.ErrorMessage != "" {
					fmt.Fprintf(out, "  Error:     %s\n", item.ErrorMessage)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON output")
	return cmd
}
