package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"perfsuite/dashboard/dashboard-backend/internal/auth"
	"perfsuite/dashboard/dashboard-backend/internal/config"
	"perfsuite/dashboard/dashboard-backend/internal/gate"
	"perfsuite/dashboard/dashboard-backend/internal/notifications/websocket"
	"perfsuite/dashboard/dashboard-backend/internal/onboarding"
	"perfsuite/dashboard/dashboard-backend/internal/organizations"
	"perfsuite/dashboard/dashboard-backend/pkg/requestmeta"
	"perfsuite/dashboard/dashboard-backend/pkg/response"
)

// DashboardAPI holds the dashboard API dependencies
type DashboardAPI struct {
	Identity      auth.Identity
	Gate          *gate.Gate
	Hub           *websocket.Manager
	Auth          *auth.Handler
	Organizations *organizations.Handler
	Onboarding    *onboarding.Handler
}

// SetupDashboardAPI builds the API on top of the gorm and sqlx handles
func SetupDashboardAPI(db *gorm.DB, sqlDB *sqlx.DB, cfg *config.Config, logger *zap.Logger) *DashboardAPI {
	return NewDashboardAPI(
		organizations.NewRepository(db),
		onboarding.NewFactsRepository(sqlDB, logger),
		cfg,
		logger,
	)
}

// NewDashboardAPI wires services and handlers from repositories
func NewDashboardAPI(repo organizations.Repository, facts onboarding.FactsRepository, cfg *config.Config, logger *zap.Logger) *DashboardAPI {
	tokens := auth.NewTokenIssuer(cfg.Security.JWTSecret, cfg.Security.TokenTTL)
	identity := auth.NewJWTIdentity(tokens, cfg.Setup.SignInPath)
	hub := websocket.NewManager(logger)
	policy := requestmeta.SchemePolicy{TrustForwardedProto: cfg.Server.TrustForwardedProto}

	authService := auth.NewService(organizations.NewAccountStore(repo), tokens, logger)
	orgService := organizations.NewService(repo, hub, logger)
	onboardingService := onboarding.NewService(facts, logger)

	return &DashboardAPI{
		Identity: identity,
		Gate: gate.New(identity, gate.Paths{
			Dashboard:       cfg.Setup.DashboardPath,
			Onboarding:      cfg.Setup.OnboardingPath,
			OnboardingIntro: cfg.Setup.OnboardingIntroPath,
		}, logger),
		Hub:           hub,
		Auth:          auth.NewHandler(authService, policy, logger),
		Organizations: organizations.NewHandler(orgService, logger),
		Onboarding:    onboarding.NewHandler(onboardingService, logger),
	}
}

// RegisterRoutes installs the route gate and every API route
func RegisterRoutes(router *gin.Engine, api *DashboardAPI) {
	router.Use(api.Gate.Middleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "healthy",
			"timestamp":   time.Now(),
			"connections": api.Hub.GetConnectionCount(),
		})
	})

	apiGroup := router.Group("/api")
	api.Auth.RegisterRoutes(apiGroup)

	protected := apiGroup.Group("", auth.RequireUser(api.Identity))
	{
		api.Organizations.RegisterRoutes(protected)
		api.Onboarding.RegisterRoutes(protected)
		protected.GET("/ws", api.Hub.ServeWS)
	}

	router.NoRoute(func(c *gin.Context) {
		response.Fail(c, http.StatusNotFound, "not found")
	})
}
