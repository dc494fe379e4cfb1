package middleware

import (
	"bytes"
	"time"

	"github.com/flightworks/aeroops-api/internal/domain/entity"
	"github.com/flightworks/aeroops-api/internal/domain/repository"
	"github.com/flightworks/aeroops-api/internal/presentation/http/dto/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// IdempotencyKeyHeader carries the client-chosen retry key
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotencyReplayedHeader marks a response served from the key store
	IdempotencyReplayedHeader = "X-Idempotency-Replayed"
	// IdempotencyKeyTTL is how long a stored response stays replayable
	IdempotencyKeyTTL = 24 * time.Hour
)

// IdempotencyConfig holds configuration for the idempotency middleware
type IdempotencyConfig struct {
	Repo repository.IdempotencyRepository
}

// responseRecorder wraps gin.ResponseWriter to capture the response body
type responseRecorder struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *responseRecorder) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// IdempotencyRequired makes a mutating billing or check-in route safe to
// retry: the first successful response for a (user, route, key) triple is
// stored, and a retry presenting the same key replays it instead of
// re-executing the operation. Keys are scoped to the route, so reusing one
// key across, say, invoice creation and payment recording cannot cross-replay.
func IdempotencyRequired(config IdempotencyConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			response.BadRequest(c, "Idempotency-Key header is required for this request")
			c.Abort()
			return
		}

		v, exists := c.Get("user_id")
		userID, ok := v.(uuid.UUID)
		if !exists || !ok || userID == uuid.Nil {
			response.Unauthorized(c, "User not authenticated")
			c.Abort()
			return
		}

		endpoint := c.Request.Method + " " + c.FullPath()
		existing, err := config.Repo.GetByRequest(c.Request.Context(), key, userID, endpoint)
		if err != nil {
			response.InternalServerError(c, "Failed to check idempotency key")
			c.Abort()
			return
		}
		if existing != nil && !existing.IsExpired() {
			c.Header(IdempotencyReplayedHeader, "true")
			c.Data(existing.ResponseCode, "application/json", []byte(existing.ResponseBody))
			c.Abort()
			return
		}

		rec := &responseRecorder{body: &bytes.Buffer{}, ResponseWriter: c.Writer}
		c.Writer = rec
		c.Next()

		// Only successful outcomes are stored; a failed attempt may be
		// retried for real with the same key
		if c.Writer.Status() >= 200 && c.Writer.Status() < 300 {
			_ = config.Repo.Create(c.Request.Context(), &entity.IdempotencyKey{
				Key:          key,
				UserID:       userID,
				Endpoint:     endpoint,
				ResponseCode: c.Writer.Status(),
				ResponseBody: rec.body.String(),
				ExpiresAt:    time.Now().Add(IdempotencyKeyTTL),
			})
		}
	}
}
