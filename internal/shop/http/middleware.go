package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/sirbootoo/minishop-test/internal/shop"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	requestIDHeader = "X-Request-ID"
	userIDHeader    = "X-User-ID"
	userContextKey  = "shop.user"
)

type UserResolver interface {
	FindUser(ctx context.Context, id int64) (shop.User, error)
}

func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(requestIDHeader, requestID)
		c.Set(requestIDHeader, requestID)
		c.Next()
	}
}

func AccessLogMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		requestID, _ := c.Get(requestIDHeader)
		logger.Info("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"request_id", requestID,
			"client_ip", c.ClientIP(),
		)
	}
}

// CurrentUserMiddleware resolves the authenticated user named by the
// X-User-ID header. Session handling proper lives outside this service; the
// header is what the identity boundary hands us.
func CurrentUserMiddleware(users UserResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.GetHeader(userIDHeader), 10, 64)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Error: "authentication required"})
			return
		}

		user, err := users.FindUser(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, shop.ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Error: "authentication required"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse{Error: "failed to load user"})
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

func currentUser(c *gin.Context) (shop.User, bool) {
	value, ok := c.Get(userContextKey)
	if !ok {
		return shop.User{}, false
	}
	user, ok := value.(shop.User)
	return user, ok
}
