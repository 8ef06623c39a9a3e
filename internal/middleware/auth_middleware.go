package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	autherrors "go-onboarding/internal/auth/errors"
	"go-onboarding/internal/shared/apperror"
	"go-onboarding/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// AuthMiddleware authenticates HR staff from a bearer header or the
// access_token cookie.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	secret := []byte(jwtSecret)
	return func(c *gin.Context) {
		tokenString, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !found {
			tokenString = ""
		}

		if tokenString == "" {
			if cookie, err := c.Cookie("access_token"); err == nil {
				tokenString = cookie
			}
		}

		if tokenString == "" {
			response.Abort(c, http.StatusUnauthorized, apperror.CodeUnauthorized, "Token not found", nil)
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return secret, nil
		})

		if err != nil || !token.Valid {
			errObj := autherrors.ErrInvalidToken
			if errors.Is(err, jwt.ErrTokenExpired) {
				errObj = autherrors.ErrTokenExpired
			}
			response.Abort(c, errObj.HTTPStatus, errObj.Code, errObj.Message, nil)
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			response.Abort(c, http.StatusUnauthorized, apperror.CodeInvalidToken, "Invalid token claims", nil)
			return
		}

		userID, ok := claims["user_id"].(string)
		if !ok || userID == "" {
			response.Abort(c, http.StatusUnauthorized, apperror.CodeInvalidToken, "User ID not found in token", nil)
			return
		}

		role, _ := claims["role"].(string)
		name, _ := claims["name"].(string)
		email, _ := claims["email"].(string)

		c.Set("user_id", userID)
		c.Set("role", role)
		c.Set("name", name)
		c.Set("email", email)

		c.Next()
	}
}

func RoleMiddleware(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole := c.GetString("role")
		for _, role := range allowedRoles {
			if userRole == role {
				c.Next()
				return
			}
		}

		forbidden := autherrors.ErrForbidden
		response.Abort(c, forbidden.HTTPStatus, forbidden.Code, forbidden.Message, nil)
	}
}
