package middleware

import (
	"go-onboarding/internal/shared/contextutil"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

// maxRequestIDLen matches outbox_events.request_id.
const maxRequestIDLen = 64

// RequestID propagates the caller's X-Request-ID, or mints one, into the
// gin context and the request context. Oversized ids are replaced.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(RequestIDHeader)
		if rid == "" || len(rid) > maxRequestIDLen {
			rid = uuid.New().String()
		}

		c.Set("request_id", rid)
		c.Request = c.Request.WithContext(contextutil.WithRequestID(c.Request.Context(), rid))

		c.Header(RequestIDHeader, rid)
		c.Next()
	}
}
