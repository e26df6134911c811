package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CorrelationHeader is the header carrying the request correlation id
const CorrelationHeader = "X-Correlation-Id"

// correlationKey is the gin context key for the resolved correlation id
const correlationKey = "correlation_id"

// Correlation ensures every request carries a correlation id. An inbound id
// is propagated unchanged; absent one, a fresh UUID is minted. The id is
// echoed back on the response for client-side tracing.
func Correlation() gin.HandlerFunc {
	return func(c *gin.Context) {
		correlationID := c.GetHeader(CorrelationHeader)
		if correlationID == "" {
			correlationID = uuid.NewString()
		}

		c.Set(correlationKey, correlationID)
		c.Writer.Header().Set(CorrelationHeader, correlationID)

		c.Next()
	}
}

// CorrelationID returns the correlation id resolved for the request
func CorrelationID(c *gin.Context) string {
	if id, ok := c.Get(correlationKey); ok {
		if s, ok := id.(string); ok {
			return s
		}
	}
	return ""
}
