package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/goliatone/go-formflow/internal/logger"
	"github.com/goliatone/go-formflow/pkg/application"
)

const (
	HeaderActorID   = "X-Actor-ID"
	HeaderActorRole = "X-Actor-Role"

	actorKey = "formflow.actor"
)

// RequireActor reads the caller identity set by the authentication proxy in
// front of the API. Requests without an identity are rejected.
func RequireActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(HeaderActorID))
		if id == "" {
			RespondError(c, http.StatusUnauthorized, "unauthorized", errors.New("missing actor identity"))
			c.Abort()
			return
		}
		role := application.Role(strings.ToLower(strings.TrimSpace(c.GetHeader(HeaderActorRole))))
		if role == "" {
			role = application.RoleCitizen
		}
		if !role.Valid() {
			RespondError(c, http.StatusUnauthorized, "unauthorized", errors.New("unknown actor role"))
			c.Abort()
			return
		}
		c.Set(actorKey, application.Actor{ID: id, Role: role})
		c.Next()
	}
}

func actorFrom(c *gin.Context) application.Actor {
	if v, ok := c.Get(actorKey); ok {
		if actor, ok := v.(application.Actor); ok {
			return actor
		}
	}
	return application.Actor{}
}

// RequestLogger logs one line per request, leveled by status.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if log == nil {
			return
		}
		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		fields := []interface{}{
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if actor := actorFrom(c); actor.ID != "" {
			fields = append(fields, "actor", actor.ID, "role", string(actor.Role))
		}

		switch {
		case status >= 500:
			log.Error("HTTP request", fields...)
		case status >= 400:
			log.Warn("HTTP request", fields...)
		default:
			log.Info("HTTP request", fields...)
		}
	}
}

// CORS allows the configured browser origins. The actor headers must be
// allowed explicitly for the portal front-end to send them.
func CORS(origins []string) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", HeaderActorID, HeaderActorRole},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}
