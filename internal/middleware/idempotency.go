package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go-onboarding/internal/shared/apperror"
	"go-onboarding/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	idempotencyLockTTL  = 30 * time.Second
	idempotencyCacheTTL = 24 * time.Hour
)

type cachedResponse struct {
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body"`
}

// bodyRecorder tees the handler's response so it can be replayed.
type bodyRecorder struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

// Idempotency replays the stored response for a repeated POST carrying the
// same Idempotency-Key. Only non-5xx responses are stored.
func Idempotency(rdb redis.Cmdable) gin.HandlerFunc {
	log := zap.L().Named("middleware.idempotency")
	return func(c *gin.Context) {
		idempKey := c.GetHeader("Idempotency-Key")
		if idempKey == "" || c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		userID := c.GetString("user_id_validated")
		cacheKey := fmt.Sprintf("idemp:%s:%s:%s", c.FullPath(), userID, idempKey)
		lockKey := cacheKey + ":lock"
		ctx := c.Request.Context()

		if val, err := rdb.Get(ctx, cacheKey).Bytes(); err == nil {
			var cached cachedResponse
			if err := json.Unmarshal(val, &cached); err == nil {
				c.Header("Idempotent-Replayed", "true")
				c.Data(cached.Status, "application/json; charset=utf-8", cached.Body)
				c.Abort()
				return
			}
		}

		// The lock expires on its own if the process dies mid-request.
		isNew, err := rdb.SetNX(ctx, lockKey, "locked", idempotencyLockTTL).Result()
		if err != nil {
			log.Warn("idempotency lock unavailable", zap.Error(err))
			c.Next()
			return
		}
		if !isNew {
			response.Abort(c, http.StatusConflict, apperror.CodeProcessing,
				"A request with this Idempotency-Key is still being processed", nil)
			return
		}

		rec := &bodyRecorder{ResponseWriter: c.Writer}
		c.Writer = rec
		c.Next()

		// Request context may be cancelled by now.
		store := context.WithoutCancel(ctx)
		if status := rec.Status(); status < http.StatusInternalServerError {
			payload, _ := json.Marshal(cachedResponse{Status: status, Body: rec.buf.Bytes()})
			if err := rdb.Set(store, cacheKey, payload, idempotencyCacheTTL).Err(); err != nil {
				log.Warn("store idempotent response failed", zap.Error(err))
			}
		}
		if err := rdb.Del(store, lockKey).Err(); err != nil {
			log.Warn("release idempotency lock failed", zap.Error(err))
		}
	}
}
