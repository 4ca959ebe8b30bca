package auth

import "github.com/gin-gonic/gin"

// RegisterRoutes registers the public auth routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	authGroup := rg.Group("/auth")
	{
		authGroup.POST("/sign-up", h.SignUp)
		authGroup.POST("/sign-in", h.SignIn)
		authGroup.POST("/sign-out", h.SignOut)
	}
}
