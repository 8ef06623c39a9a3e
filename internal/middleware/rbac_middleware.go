package middleware

import (
	"net/http"

	"go-onboarding/internal/domain"
	"go-onboarding/internal/shared/apperror"
	"go-onboarding/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RBACService is satisfied by anything with an Enforce method, so this
// package does not import the rbac package.
type RBACService interface {
	Enforce(req domain.EnforceRequest) (bool, error)
}

func RBACAuthorize(service RBACService, resource, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("role")
		if role == "" {
			response.Abort(c, http.StatusUnauthorized, apperror.CodeUnauthorized, "Missing auth context", nil)
			return
		}

		allowed, err := service.Enforce(domain.EnforceRequest{
			Role:     role,
			Resource: resource,
			Action:   action,
		})
		if err != nil {
			zap.L().Named("middleware.rbac").Error("enforce failed", zap.Error(err))
			response.Abort(c, http.StatusInternalServerError, apperror.CodeInternalError, "An unexpected error occurred", nil)
			return
		}

		if !allowed {
			response.Abort(c, http.StatusForbidden, apperror.CodeForbidden,
				"You do not have permission to access this resource",
				map[string]any{"required": resource + ":" + action},
			)
			return
		}
		c.Next()
	}
}
