package main

import (
	"context"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"perfsuite/dashboard/dashboard-backend/internal/client"
	"perfsuite/dashboard/dashboard-backend/internal/client/live"
	"perfsuite/dashboard/dashboard-backend/internal/client/redirect"
	"perfsuite/dashboard/dashboard-backend/internal/client/setupstate"
	"perfsuite/dashboard/dashboard-backend/internal/client/stores"
	"perfsuite/dashboard/dashboard-backend/internal/notifications"
)

var (
	storagePath string
	startPath   string
	introPath   string
	headless    bool
)

// watchCmd runs the client runtime until interrupted
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Keep setup state in sync and follow onboarding redirects",
	Long: `Load the organization, teams and performers, mirror the setup-state
projection into local storage and the cookie jar, listen for server
invalidations and re-check onboarding completeness on a schedule.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&storagePath, "storage", filepath.Join(".perfsuite", "storage.json"), "local storage file")
	watchCmd.Flags().StringVar(&startPath, "path", "/dashboard", "page the session starts on")
	watchCmd.Flags().StringVar(&introPath, "intro-path", "/dashboard/onboarding/intro", "onboarding introduction page")
	watchCmd.Flags().BoolVar(&headless, "ssr", false, "run as server-side render (no storage or cookie writes)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c, err := signedInClient(cmd, logger)
	if err != nil {
		return err
	}

	config := stores.NewConfigStore(c)
	teams := stores.NewCollectionStore[client.Team]("teams", c.Teams, staleTime, logger)
	performers := stores.NewCollectionStore[client.Performer]("performers", c.Performers, staleTime, logger)

	synchronizer := setupstate.NewSynchronizer(config, teams, performers,
		setupstate.NewFileStorage(storagePath),
		setupstate.JarCookies{Jar: c.Jar(), Origin: c.BaseURL()},
		setupstate.Runtime{Browser: !headless, Secure: c.Secure()},
		logger,
	)
	go synchronizer.Start(ctx)

	if err := config.Invalidate(ctx); err != nil {
		logger.Warn("Failed to load organization", zap.Error(err))
	}
	for _, load := range []func(context.Context) error{teams.EnsureFresh, performers.EnsureFresh} {
		if err := load(ctx); err != nil {
			logger.Warn("Initial load failed", zap.Error(err))
		}
	}

	listener := live.NewListener(c.BaseURL(), c.Jar(), logger)
	listener.Register(notifications.ResourceOrganization, config)
	listener.Register(notifications.ResourceTeams, teams)
	listener.Register(notifications.ResourcePerformers, performers)
	go func() {
		if err := listener.Run(ctx); err != nil {
			logger.Warn("Invalidation listener stopped", zap.Error(err))
		}
	}()

	navigator := redirect.NewHistoryNavigator(startPath, func(path string) {
		logger.Info("Navigated", zap.String("path", path))
	})
	observer := redirect.NewObserver(navigator, introPath, logger)
	poller := redirect.NewPoller(c, observer, pollInterval, logger)
	if err := poller.Start(ctx); err != nil {
		return err
	}
	defer poller.Stop()

	<-ctx.Done()
	status := synchronizer.Status()
	logger.Info("Stopping",
		zap.Bool("setup_complete", status.IsComplete),
		zap.String("redirect_state", string(observer.State())),
		zap.String("path", navigator.Pathname()),
	)
	return nil
}
