package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"perfsuite/dashboard/dashboard-backend/internal/client"
)

// statusCmd prints the server's onboarding completeness
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether onboarding is complete",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	defer logger.Sync()

	c, err := signedInClient(cmd, logger)
	if err != nil {
		return err
	}

	complete, err := c.OnboardingStatus(cmd.Context())
	switch {
	case errors.Is(err, client.ErrUnauthenticated):
		return fmt.Errorf("not signed in: pass --email and --password")
	case err != nil:
		return err
	}

	if complete {
		fmt.Fprintln(cmd.OutOrStdout(), "onboarding complete")
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), "onboarding incomplete")
	}
	return nil
}
