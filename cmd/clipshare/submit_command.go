package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"clipshare/internal/api"
)

func newSubmitCommand(ctx *commandContext) *cobra.Command {
	var req api.SubmitRequest
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Queue a video for download, trim, and tweet",
		RunE: func(cmd *cobra.Command, args []string) error {
			if req.ClientID == "" {
				req.ClientID = uuid.NewString()
			}
			return ctx.withQueue(func(runCtx context.Context, service *api.QueueService) error {
				item, err := service.Submit(runCtx, req)
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, item)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Queued job %d for client %s\n", item.ID, item.ClientID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&req.ClientID, "client", "", "Client identifier for completion events (generated when omitted)")
	cmd.Flags().StringVar(&req.VideoURL, "url", "", "Source video URL")
	cmd.Flags().StringVar(&req.TweetText, "text", "", "Tweet message")
	cmd.Flags().StringVar(&req.AccessToken, "token", "", "Caller access token")
	cmd.Flags().StringVar(&req.AccessSecret, "token-secret", "", "Caller access token secret")
	cmd.Flags().Float64Var(&req.TrimStart, "start", 0, "Trim start offset in seconds")
	cmd.Flags().Float64Var(&req.TrimDuration, "duration", 0, "Trim duration in seconds (0 keeps the rest of the clip)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON output")
	_ = cmd.MarkFlagRequired("url")
	_ = cmd.MarkFlagRequired("token")
	_ = cmd.MarkFlagRequired("token-secret")
	return cmd
}
