package onboarding

import (
	"go-onboarding/internal/domain"
	"go-onboarding/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService middleware.RBACService,
	rdb redis.Cmdable,
	jwtSecret string,
	logger *zap.Logger,
) {
	const res = domain.ResourceOnboarding

	onboardings := r.Group("/onboardings")
	onboardings.Use(middleware.AuthMiddleware(jwtSecret))
	onboardings.Use(middleware.ExtractUserID())
	onboardings.Use(middleware.ContextLogger(logger))
	{
		onboardings.GET("",
			middleware.RateLimitByUser(3, 10),
			middleware.RBACAuthorize(rbacService, res, domain.ActionRead),
			handler.List,
		)

		onboardings.GET("/summary",
			middleware.RateLimitByUser(3, 10),
			middleware.RBACAuthorize(rbacService, res, domain.ActionRead),
			handler.Summary,
		)

		onboardings.GET("/:id",
			middleware.RateLimitByUser(3, 10),
			middleware.RBACAuthorize(rbacService, res, domain.ActionRead),
			handler.GetByID,
		)

		onboardings.GET("/:id/audit-logs",
			middleware.RateLimitByUser(3, 10),
			middleware.RBACAuthorize(rbacService, res, domain.ActionRead),
			handler.ListAuditLogs,
		)

		onboardings.POST("",
			middleware.RateLimitByUser(0.5, 3),
			middleware.RBACAuthorize(rbacService, res, domain.ActionCreate),
			middleware.Idempotency(rdb),
			handler.Create,
		)

		onboardings.POST("/:id/resend-invite",
			middleware.RateLimitByUser(0.2, 2),
			middleware.RBACAuthorize(rbacService, res, domain.ActionUpdate),
			handler.ResendInvite,
		)

		onboardings.POST("/:id/request-modification",
			middleware.RateLimitByUser(0.5, 2),
			middleware.RBACAuthorize(rbacService, res, domain.ActionUpdate),
			handler.RequestModification,
		)

		onboardings.POST("/:id/confirm-details",
			middleware.RateLimitByUser(0.5, 2),
			middleware.RBACAuthorize(rbacService, res, domain.ActionApprove),
			handler.ConfirmDetails,
		)

		onboardings.POST("/:id/approve",
			middleware.RateLimitByUser(0.5, 2),
			middleware.RBACAuthorize(rbacService, res, domain.ActionApprove),
			handler.Approve,
		)

		onboardings.POST("/:id/terminate",
			middleware.RateLimitByUser(0.5, 2),
			middleware.RBACAuthorize(rbacService, res, domain.ActionTerminate),
			handler.Terminate,
		)

		onboardings.POST("/:id/restore",
			middleware.RateLimitByUser(0.5, 2),
			middleware.RBACAuthorize(rbacService, res, domain.ActionRestore),
			handler.Restore,
		)

		onboardings.PUT("/:id/form",
			middleware.RateLimitByUser(0.5, 2),
			middleware.RBACAuthorize(rbacService, res, domain.ActionUpdate),
			handler.CompleteForm,
		)

		onboardings.DELETE("/:id",
			middleware.RateLimitByUser(0.05, 1),
			middleware.RBACAuthorize(rbacService, res, domain.ActionDelete),
			handler.Delete,
		)
	}
}

// RegisterEmployeeRoutes mounts the public employee channel. The session
// issuer authenticates everything after OTP verification.
func RegisterEmployeeRoutes(
	r *gin.RouterGroup,
	handler *EmployeeHandler,
	sessions middleware.SessionParser,
	logger *zap.Logger,
) {
	employee := r.Group("/employee")
	employee.Use(middleware.ContextLogger(logger))
	employee.Use(middleware.RateLimitByIP(1, 5))
	{
		employee.POST("/invite/verify", handler.VerifyInvite)
		employee.POST("/otp/verify", handler.VerifyOtp)

		authed := employee.Group("/onboarding")
		authed.Use(middleware.EmployeeSession(sessions))
		authed.GET("", handler.GetOnboarding)
		authed.PUT("/form", handler.SaveForm)
		authed.POST("/submit", handler.Submit)
	}
}
