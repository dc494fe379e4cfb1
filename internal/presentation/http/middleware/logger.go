package middleware

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestLogger tags every request with an id and writes one line per request
// after the handler chain finishes. The id is echoed in the X-Request-ID
// response header and in the response envelope's meta block, so a disputed
// billing call can be matched to its log line.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)

		if c.Request.URL.Path == "/health" {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		// Actor is only known once AuthMiddleware has run
		actor := "-"
		if v, ok := c.Get("user_id"); ok {
			if id, ok := v.(uuid.UUID); ok {
				actor = id.String()
			}
		}

		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		log.Printf("req=%s actor=%s %s %s status=%d latency=%v ip=%s",
			shortID(requestID),
			actor,
			c.Request.Method,
			path,
			c.Writer.Status(),
			time.Since(start),
			c.ClientIP(),
		)
		if c.Writer.Header().Get(IdempotencyReplayedHeader) == "true" {
			log.Printf("req=%s replayed a stored idempotent response", shortID(requestID))
		}
		for _, e := range c.Errors {
			log.Printf("req=%s error: %v", shortID(requestID), e.Err)
		}
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
