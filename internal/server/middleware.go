package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pedidofacil/pedidofacil/internal/authorization"
	userdomain "github.com/pedidofacil/pedidofacil/internal/user/domain"
	"go.uber.org/zap"
)

const (
	sessionCookieName   = "pf_session"
	contextRequesterKey = "requester"
)

// RequestLogger logs each request with a correlation id and safe fields.
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := ensureRequestID(c)

		c.Next()

		status := c.Writer.Status()
		route := c.FullPath()
		if strings.TrimSpace(route) == "" {
			route = "unknown"
		}
		fields := []zap.Field{
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		}
		if lastErr := c.Errors.Last(); lastErr != nil {
			fields = append(fields, zap.String("error", lastErr.Err.Error()))
		}

		switch {
		case route == "/metrics" || route == "/health":
			log.Debug("http_request", fields...)
		case status >= http.StatusInternalServerError:
			log.Error("http_request", fields...)
		default:
			log.Info("http_request", fields...)
		}
	}
}

func ensureRequestID(c *gin.Context) string {
	requestID := strings.TrimSpace(c.GetHeader("X-Request-Id"))
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Set("request_id", requestID)
	c.Header("X-Request-Id", requestID)
	return requestID
}

// AuthRequired resolves the session token from the session cookie or an
// Authorization bearer header and stores the requester on the context.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := sessionToken(c)
		if token == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		user, err := s.userSvc.Authenticate(c.Request.Context(), token)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.Set(contextRequesterKey, userdomain.Requester{
			ID:     user.ID,
			Role:   user.Role,
			Active: user.Active,
		})
		c.Next()
	}
}

// RequireAuthorization gates a route on the role policy for one
// object/action pair.
func (s *Server) RequireAuthorization(object, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		requester, ok := requesterFrom(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		if err := s.authzSvc.Authorize(c.Request.Context(), requester, object, action); err != nil {
			AbortWithError(c, err)
			return
		}
		c.Next()
	}
}

// RequireAdmin is a shorthand for routes only administrators may reach.
func (s *Server) RequireAdmin() gin.HandlerFunc {
	return s.RequireAuthorization(authorization.ObjectUser, authorization.ActionUserView)
}

func sessionToken(c *gin.Context) string {
	if cookie, err := c.Cookie(sessionCookieName); err == nil && strings.TrimSpace(cookie) != "" {
		return strings.TrimSpace(cookie)
	}
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" && strings.TrimSpace(parts[1]) != "" {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

func requesterFrom(c *gin.Context) (userdomain.Requester, bool) {
	value, exists := c.Get(contextRequesterKey)
	if !exists {
		return userdomain.Requester{}, false
	}
	requester, ok := value.(userdomain.Requester)
	return requester, ok
}
