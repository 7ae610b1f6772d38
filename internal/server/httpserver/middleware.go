package httpserver

import (
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/todokeeper/internal/common"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDKey = "req_id"

// requestLogger tags the request with an id and logs one line when it ends.
// Bodies are never logged: they may carry PINs.
func (s *HTTPServer) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := uuid.New().String()
		c.Set(requestIDKey, reqID)
		c.Header("X-Request-ID", reqID)

		start := time.Now()
		c.Next()

		s.logger.Info(c.Request.Context(), "request",
			requestIDKey, reqID,
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// unlockRequired rejects the request unless it carries a valid unlock token.
// It is a no-op when the server runs without unlock gating.
func (s *HTTPServer) unlockRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.requireUnlock {
			c.Next()
			return
		}

		err := s.svc.Pins.CheckUnlockToken(c.GetHeader(common.UnlockTokenHeaderName))
		if err != nil {
			code := "unlock_required"
			if errors.Is(err, common.ErrTokenExpired) {
				code = "token_expired"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": code})
			return
		}

		c.Next()
	}
}
