package ui

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader carries the per-request uuid on both request and response.
const RequestIDHeader = "X-Request-ID"

const requestIDKey = "request_id"

// requestID keeps a valid incoming id or mints a new one.
func requestID(incoming string) string {
	if id, err := uuid.Parse(incoming); err == nil {
		return id.String()
	}
	return uuid.New().String()
}

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := requestID(c.GetHeader(RequestIDHeader))
		c.Request.Header.Set(RequestIDHeader, id)
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func requestLogFormatter(p gin.LogFormatterParams) string {
	return fmt.Sprintf("[GIN] %s | %3d | %13v | %s | %-7s %s | id=%s\n",
		p.TimeStamp.Format(time.RFC3339),
		p.StatusCode,
		p.Latency,
		p.ClientIP,
		p.Method,
		p.Path,
		p.Request.Header.Get(RequestIDHeader),
	)
}

// setupMiddleware configures Gin middleware
func (s *Server) setupMiddleware() {
	s.router.Use(requestIDMiddleware())
	s.router.Use(gin.LoggerWithFormatter(requestLogFormatter))
	s.router.Use(gin.Recovery())
}
