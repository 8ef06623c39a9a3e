package middleware

import (
	"net/http"

	"go-onboarding/internal/shared/apperror"
	"go-onboarding/internal/shared/response"

	"github.com/gin-gonic/gin"
)

func ExtractUserID() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		userID, exists := ctx.Get("user_id")
		if !exists {
			response.Abort(ctx, http.StatusUnauthorized, apperror.CodeUnauthorized, "User is not authenticated", nil)
			return
		}

		userIDStr, ok := userID.(string)
		if !ok || userIDStr == "" {
			response.Abort(ctx, http.StatusUnauthorized, apperror.CodeInvalidUserID, "Invalid user_id format", nil)
			return
		}

		ctx.Set("user_id_validated", userIDStr)
		ctx.Next()
	}
}
