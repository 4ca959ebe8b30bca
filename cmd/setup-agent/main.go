// Command setup-agent runs the dashboard client runtime headlessly: it signs
// in, keeps the setup stores fresh, mirrors the setup-state projection and
// follows onboarding redirects
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"perfsuite/dashboard/dashboard-backend/internal/client"
)

var (
	baseURL      string
	email        string
	password     string
	verbose      bool
	pollInterval time.Duration
	staleTime    time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "setup-agent",
	Short: "Headless dashboard client for onboarding state",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if email == "" {
			email = os.Getenv("DASHBOARD_EMAIL")
		}
		if password == "" {
			password = os.Getenv("DASHBOARD_PASSWORD")
		}
	},
}

func init() {
	defaults := client.DefaultConfig()

	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", envOr("DASHBOARD_URL", defaults.BaseURL), "dashboard API origin")
	rootCmd.PersistentFlags().StringVar(&email, "email", "", "account email (or DASHBOARD_EMAIL)")
	rootCmd.PersistentFlags().StringVar(&password, "password", "", "account password (or DASHBOARD_PASSWORD)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().DurationVar(&pollInterval, "poll-interval", defaults.PollInterval, "onboarding status re-check interval")
	rootCmd.PersistentFlags().DurationVar(&staleTime, "stale-time", defaults.StaleTime, "age after which cached collections are refetched")

	rootCmd.AddCommand(statusCmd, watchCmd)
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func newLogger() *zap.Logger {
	build := zap.NewProduction
	if verbose {
		build = zap.NewDevelopment
	}
	logger, err := build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// signedInClient builds a client and signs in when credentials are set
func signedInClient(cmd *cobra.Command, logger *zap.Logger) (*client.Client, error) {
	cfg := client.DefaultConfig()
	cfg.BaseURL = baseURL
	cfg.PollInterval = pollInterval
	cfg.StaleTime = staleTime

	c, err := client.New(cfg, logger)
	if err != nil {
		return nil, err
	}
	if email == "" {
		return c, nil
	}
	if err := c.SignIn(cmd.Context(), email, password); err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}
	return c, nil
}
