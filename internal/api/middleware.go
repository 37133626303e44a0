package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"learnassess/internal/api/handlers"
)

// CORSMiddleware allows credentialed requests from the frontend origin.
func CORSMiddleware(frontendURL string) gin.HandlerFunc {
	if frontendURL == "" {
		frontendURL = "http://localhost:5173"
	}
	origin := strings.TrimSuffix(frontendURL, "/")
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// SessionMiddleware gives every visitor a session ID kept in the cookie
// session and puts it on the context for handlers.
func SessionMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		s := sessions.Default(c)
		raw, _ := s.Get(handlers.SessionIDKey).(string)
		id, err := uuid.Parse(raw)
		if err != nil {
			id = uuid.New()
			s.Set(handlers.SessionIDKey, id.String())
			if err := s.Save(); err != nil {
				logger.Error("saving session cookie failed", zap.Error(err))
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "could not start session"})
				return
			}
			logger.Debug("started session", zap.String("session", id.String()))
		}
		c.Set(handlers.SessionIDContext, id)
		c.Next()
	}
}

// RequestLogger logs each request with zap.
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()))
	}
}
