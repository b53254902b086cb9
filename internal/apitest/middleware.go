package apitest

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/instant-hdr/autoenhance-go/internal/models"
)

const apiKeyHeader = "x-api-key"

// apiKeyAuth rejects requests whose x-api-key header does not match.
func apiKeyAuth(expected string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader(apiKeyHeader))
		if key == "" {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "missing api key header"})
			c.Abort()
			return
		}
		if key != expected {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "invalid api key"})
			c.Abort()
			return
		}
		c.Next()
	}
}

func (s *Server) countCalls() gin.HandlerFunc {
	return func(c *gin.Context) {
		if route := c.FullPath(); route != "" {
			s.mu.Lock()
			s.calls[callKey(c.Request.Method, route)]++
			s.mu.Unlock()
		}
		c.Next()
	}
}

func (s *Server) scriptedFailures() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := callKey(c.Request.Method, c.FullPath())

		s.mu.Lock()
		queue := s.failures[key]
		status := 0
		if len(queue) > 0 {
			status, s.failures[key] = queue[0], queue[1:]
		}
		s.mu.Unlock()

		if status != 0 {
			c.AbortWithStatusJSON(status, models.ErrorResponse{
				Error:   "scripted failure",
				Message: http.StatusText(status),
			})
			return
		}
		c.Next()
	}
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
