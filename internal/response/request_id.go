package response

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ContextKeyRequestID is the Gin context key under which the request ID
// is stored for the duration of a request.
const ContextKeyRequestID = "request_id"

// requestIDHeader is honored on the way in (proxies may assign IDs
// upstream) and always set on the way out.
const requestIDHeader = "X-Request-ID"

// RequestIDMiddleware attaches a request ID to every request, reusing
// the caller-supplied header value when present.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set(ContextKeyRequestID, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}
