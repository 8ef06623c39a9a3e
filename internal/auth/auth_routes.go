package auth

import (
	"go-onboarding/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, jwtSecret string) {
	auth := r.Group("/auth")
	{
		auth.POST("/login", middleware.RateLimitByIP(0.2, 5), handler.Login)
		auth.GET("/me", middleware.AuthMiddleware(jwtSecret), middleware.RateLimitByUser(2, 5), handler.Me)
		auth.POST("/logout", middleware.AuthMiddleware(jwtSecret), handler.Logout)
	}
}
