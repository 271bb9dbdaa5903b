package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/kart-io/tutor-x/pkg/id"
)

// HeaderXRequestID is the request ID header name.
const HeaderXRequestID = "X-Request-ID"

// requestIDKey is the gin context key for the request ID.
const requestIDKey = "request_id"

// Recovery returns a middleware that recovers from panics and writes a
// JSON 500 response.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Errorf("panic recovered: %v", r)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"error":   "Internal server error",
				})
			}
		}()
		c.Next()
	}
}

// RequestID returns a middleware that attaches a ULID request ID to each
// request. An incoming X-Request-ID header is honored when present.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderXRequestID)
		if requestID == "" {
			requestID = id.New()
		}

		c.Set(requestIDKey, requestID)
		c.Header(HeaderXRequestID, requestID)
		c.Next()
	}
}

// GetRequestID returns the request ID stored by the RequestID middleware.
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// AccessLog returns a middleware that logs each request with the global
// structured logger. Health probes are skipped.
func AccessLog() gin.HandlerFunc {
	skipPaths := map[string]bool{
		"/api/health": true,
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if skipPaths[path] {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		fields := []interface{}{
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"remote_addr", c.ClientIP(),
			"latency_ms", latency.Milliseconds(),
		}
		if requestID := GetRequestID(c); requestID != "" {
			fields = append(fields, "request_id", requestID)
		}
		logger.Infow("HTTP Request", fields...)
	}
}

// CORS returns a permissive CORS middleware.
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization, X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
