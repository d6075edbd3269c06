package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oshokin/tube-grabber/internal/logger"
)

// accessLog writes one line per request through the application logger.
func accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		startedAt := time.Now()

		c.Next()

		logger.InfoKV(c.Request.Context(), "HTTP request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"bytes", c.Writer.Size(),
			"client_ip", c.ClientIP(),
			"duration", time.Since(startedAt).Round(time.Millisecond))
	}
}

func recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Errorf(c.Request.Context(), "Handler panicked: %v", recovered)
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	})
}

// limitBody caps the request body; larger bodies fail to decode.
func limitBody(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limit > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}

		c.Next()
	}
}

// admit waits for a free request slot. A client that gives up while waiting is dropped.
func (s *Server) admit(c *gin.Context) {
	ctx := c.Request.Context()

	if err := s.admission.Acquire(ctx, 1); err != nil {
		logger.Debugf(ctx, "Client left while waiting for a slot: %v", err)
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, errorResponse{Error: "request canceled"})

		return
	}

	defer s.admission.Release(1)

	c.Next()
}
