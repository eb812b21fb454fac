package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-studio/internal/auth"
	"github.com/jonathan/resume-studio/internal/config"
	"github.com/jonathan/resume-studio/internal/subscription"
)

var (
	tokenUserID string
	tokenPlan   string
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an API token for a user",
	Long: `Signs a bearer token with JWT_SECRET for local testing of the API.

With --plan the user's subscription is recorded too, which needs DATABASE_URL.`,
	RunE: runToken,
}

func init() {
	tokenCmd.Flags().StringVarP(&tokenUserID, "user-id", "u", "", "User ID (required)")
	tokenCmd.Flags().StringVar(&tokenPlan, "plan", "", "Record a subscription: Free, Pro or Enterprise")
	_ = tokenCmd.MarkFlagRequired("user-id")
	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, _ []string) error {
	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return err
	}

	if tokenPlan != "" {
		cfg, err := loadSettings()
		if err != nil {
			return err
		}
		if cfg.DatabaseURL == "" {
			return fmt.Errorf("--plan requires DATABASE_URL")
		}
		ctx := context.Background()
		store, database, err := newStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		tier := subscription.ParseTier(tokenPlan)
		if _, err := subscription.Subscribe(ctx, store, tokenUserID, tier); err != nil {
			return fmt.Errorf("failed to record subscription: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Subscribed %s to %s\n", tokenUserID, tier)
	}

	token, err := auth.NewJWTService(jwtConfig).GenerateToken(tokenUserID)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
