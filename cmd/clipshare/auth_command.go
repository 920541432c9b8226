package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"clipshare/internal/logging"
	"clipshare/internal/twitter"
)

func newAuthCommand(ctx *commandContext) *cobra.Command {
	var callback string

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Obtain a caller access token pair via the three-legged flow",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			client := twitter.NewClient(cfg, logging.NewNop())
			runCtx := cmd.Context()
			out := cmd.OutOrStdout()

			request, err := client.RequestToken(runCtx, callback)
			if err != nil {
				return fmt.Errorf("request token: %w", err)
			}
			fmt.Fprintf(out, "Open this URL and approve access:\n  %s\n", client.AuthorizeURL(request.OAuthToken))
			fmt.Fprint(out, "Enter the verifier (PIN): ")

			reader := bufio.NewReader(cmd.InOrStdin())
			verifier, err := reader.ReadString('\n')
			if err != nil {
				return fmt.Errorf("read verifier: %w", err)
			}
			verifier = strings.TrimSpace(verifier)
			if verifier == "" {
				return fmt.Errorf("verifier is required")
			}

			access, err := client.AccessToken(runCtx, request.OAuthToken, verifier)
			if err != nil {
				return fmt.Errorf("exchange verifier: %w", err)
			}

			fmt.Fprintf(out, "Authorized as @%s (user id %s)\n", access.ScreenName, access.UserID)
			fmt.Fprintf(out, "Access token:        %s\n", access.OAuthToken)
			fmt.Fprintf(out, "Access token secret: %s\n", access.OAuthTokenSecret)
			fmt.Fprintln(out, "Pass these to 'clipshare submit' via --token and --token-secret.")
			return nil
		},
	}

	cmd.Flags().StringVar(&callback, "callback", "oob", "OAuth callback URL (oob for PIN-based flow)")
	return cmd
}

func newWhoamiCommand(ctx *commandContext) *cobra.Command {
	var token twitter.Token
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Verify a caller token pair by fetching its profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			client := twitter.NewClient(cfg, logging.NewNop())

			raw, err := client.Profile(cmd.Context(), token, "", "")
			if err != nil {
				return fmt.Errorf("fetch profile: %w", err)
			}
			if jsonOut {
				fmt.Fprintln(cmd.OutOrStdout(), string(raw))
				return nil
			}

			var profile struct {
				ID         string `json:"id_str"`
				ScreenName string `json:"screen_name"`
				Name       string `json:"name"`
			}
			if err := json.Unmarshal(raw, &profile); err != nil {
				return fmt.Errorf("decode profile: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Authenticated as @%s (%s, user id %s)\n",
				profile.ScreenName, profile.Name, profile.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&token.Key, "token", "", "Caller access token")
	cmd.Flags().StringVar(&token.Secret, "token-secret", "", "Caller access token secret")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the raw profile document")
	_ = cmd.MarkFlagRequired("token")
	_ = cmd.MarkFlagRequired("token-secret")
	return cmd
}
