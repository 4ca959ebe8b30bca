// Package gate intercepts page requests and steers sessions through the
// onboarding flow using the client-written setup-state cookie
//
// The cookie is client controlled. Decisions made here only pick the page a
// user lands on; protected data is authorized by each API route
package gate

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"perfsuite/dashboard/dashboard-backend/internal/auth"
	"perfsuite/dashboard/dashboard-backend/internal/setup"
)

const faviconPath = "/favicon.ico"

// Paths configures the onboarding flow locations
type Paths struct {
	Dashboard       string
	Onboarding      string
	OnboardingIntro string
}

// DefaultPaths returns the standard dashboard layout
func DefaultPaths() Paths {
	return Paths{
		Dashboard:       "/dashboard",
		Onboarding:      "/dashboard/onboarding",
		OnboardingIntro: "/dashboard/onboarding/intro",
	}
}

// Gate is the route gate middleware
type Gate struct {
	identity auth.Identity
	paths    Paths
	logger   *zap.Logger
}

// New creates a route gate
func New(identity auth.Identity, paths Paths, logger *zap.Logger) *Gate {
	return &Gate{identity: identity, paths: paths, logger: logger}
}

// Middleware returns the gin handler for the gate
func (g *Gate) Middleware() gin.HandlerFunc {
	return g.handle
}

func (g *Gate) handle(c *gin.Context) {
	path := c.Request.URL.Path
	if !Applies(path) {
		c.Next()
		return
	}

	if IsPublic(path) {
		// Identity is attached when present so API handlers can use it
		if userID, err := g.identity.Authenticate(c.Request); err == nil {
			auth.SetUserID(c, userID)
		}
		c.Next()
		return
	}

	userID, err := g.identity.Authenticate(c.Request)
	if err != nil {
		g.logger.Debug("Challenging anonymous request", zap.String("path", path), zap.Error(err))
		g.identity.Challenge(c)
		return
	}
	auth.SetUserID(c, userID)

	if target, ok := g.redirectFor(c.Request); ok {
		g.logger.Debug("Redirecting to onboarding",
			zap.String("path", path),
			zap.String("target", target),
			zap.String("user_id", userID),
		)
		c.Redirect(http.StatusTemporaryRedirect, target)
		c.Abort()
		return
	}

	c.Next()
}

// redirectFor decides the onboarding redirect for an authenticated request
func (g *Gate) redirectFor(r *http.Request) (string, bool) {
	path := r.URL.Path
	if !g.isDashboardPage(path) {
		return "", false
	}

	switch path {
	case g.paths.Onboarding:
		return g.paths.OnboardingIntro, true
	case g.paths.Dashboard:
		if !setup.ReadCookie(r).Complete() {
			return g.paths.OnboardingIntro, true
		}
	}
	return "", false
}

func (g *Gate) isDashboardPage(path string) bool {
	if !hasPrefixSegment(path, g.paths.Dashboard) {
		return false
	}
	return path != faviconPath && !strings.Contains(path, ".")
}
