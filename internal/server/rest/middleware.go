package rest

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/signmanager/internal/common"
	"github.com/dmitrijs2005/signmanager/internal/server/auth"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDKey = "request_id"

// requestID propagates X-Request-ID or mints one.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(common.RequestIDHeaderName)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(common.RequestIDHeaderName, id)
		c.Next()
	}
}

func (s *HTTPServer) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		args := []any{
			"request_id", c.GetString(requestIDKey),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration", time.Since(start),
		}
		ctx := c.Request.Context()
		switch {
		case status >= http.StatusInternalServerError:
			s.logger.Error(ctx, "http request", args...)
		case status >= http.StatusBadRequest:
			s.logger.Warn(ctx, "http request", args...)
		default:
			s.logger.Info(ctx, "http request", args...)
		}
	}
}

// requireAuth lets the request through only with a valid bearer token and
// stores the principal in the request context.
func (s *HTTPServer) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		token, err := auth.ParseBearer(c.GetHeader(common.AuthorizationHeaderName))
		if err != nil {
			s.logger.Warn(ctx, "rejected request", "path", c.Request.URL.Path, "reason", "missing bearer token")
			respondError(c, http.StatusUnauthorized, CodeUnauthenticated, "unauthenticated", nil)
			return
		}

		principal, err := s.authenticator.Authenticate(token)
		if err != nil {
			s.logger.Warn(ctx, "rejected request", "path", c.Request.URL.Path, "reason", auth.RejectionReason(err))
			respondError(c, http.StatusUnauthorized, CodeUnauthenticated, "unauthenticated", nil)
			return
		}

		c.Request = c.Request.WithContext(auth.WithPrincipal(ctx, principal))
		c.Next()
	}
}
