package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/opencua/gateway/internal/shared/id"
)

// RequestIDHeader carries the request id on both directions.
const RequestIDHeader = "X-Request-ID"

const requestIDKey = "request_id"

// RequestID tags every request with a prefixed ULID so log lines and
// responses can be correlated. A well-formed incoming id is kept.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(RequestIDHeader)
		if !validRequestID(rid) {
			rid = id.NewRequestID().String()
		}
		c.Set(requestIDKey, rid)
		c.Header(RequestIDHeader, rid)
		c.Next()
	}
}

// GetRequestID returns the id assigned by RequestID, or empty when the
// middleware did not run.
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

func validRequestID(rid string) bool {
	raw, ok := strings.CutPrefix(rid, id.RequestPrefix+"_")
	return ok && id.IsValid(raw)
}
