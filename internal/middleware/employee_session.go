package middleware

import (
	"go-onboarding/internal/session"
	"go-onboarding/internal/shared/apperror"
	"go-onboarding/internal/shared/response"

	"github.com/gin-gonic/gin"
)

const (
	ContextOnboardingID = "onboarding_id"
	ContextInviteHash   = "invite_hash"
)

type SessionParser interface {
	Parse(token string) (*session.Claims, error)
}

// EmployeeSession authenticates an employee through the onboarding session
// cookie. Whether the invite is still current is checked by the service
// against the stored record.
func EmployeeSession(parser SessionParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie(session.CookieName)

		claims, err := parser.Parse(token)
		if err != nil {
			abortWith(c, err)
			return
		}
		id, err := claims.OnboardingUUID()
		if err != nil {
			abortWith(c, err)
			return
		}

		c.Set(ContextOnboardingID, id)
		c.Set(ContextInviteHash, claims.InviteHash)
		c.Next()
	}
}

func abortWith(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	response.Abort(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}
