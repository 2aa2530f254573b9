package api

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Zachkp/portfolio/internal/logging"
)

const (
	requestIDHeader = "X-Request-ID"
	loggerKey       = "logger"
)

// RequestLogger tags each request with an id, stores a logger carrying it
// for handlers, and logs the request once served.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		log := logging.With(zap.String("request_id", id))
		c.Set(loggerKey, log)
		c.Header(requestIDHeader, id)

		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			log.Error("Request failed", fields...)
		case strings.HasPrefix(c.Request.URL.Path, "/healthz"), c.Request.URL.Path == "/metrics":
			log.Debug("Request served", fields...)
		default:
			log.Info("Request served", fields...)
		}
	}
}

// requestLog returns the request's logger, or a plain child of the global
// one when RequestLogger is not installed.
func requestLog(c *gin.Context) *zap.Logger {
	if v, ok := c.Get(loggerKey); ok {
		if l, ok := v.(*zap.Logger); ok {
			return l
		}
	}
	return logging.With()
}

// Recovery converts panics into a generic 500 without leaking details.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		requestLog(c).Error("Panic while handling request",
			zap.String("path", c.Request.URL.Path),
			zap.Any("panic", recovered),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	})
}

// CORS allows the portfolio frontend origins to call the API.
func CORS(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowOrigins: origins,
		AllowMethods: []string{
			"GET", "POST", "DELETE", "OPTIONS",
		},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Accept", "Authorization", requestIDHeader,
		},
		ExposeHeaders: []string{
			"Content-Type", "Cache-Control", requestIDHeader,
		},
		MaxAge: 12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowOrigins = nil
		cfg.AllowAllOrigins = true
	}
	return cors.New(cfg)
}

// AdminAuth requires "Authorization: Bearer <token>". An empty token
// leaves the route open.
func AdminAuth(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			c.Next()
			return
		}
		got, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			requestLog(c).Warn("Rejected admin request",
				zap.String("path", c.Request.URL.Path),
				zap.String("visitor", shortVisitor(c)),
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}
