package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/goliatone/go-formflow/internal/logger"
)

type RouterConfig struct {
	Log                *logger.Logger
	CORSOrigins        []string
	ServiceHandler     *ServiceHandler
	ApplicationHandler *ApplicationHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(cfg.Log))
	if len(cfg.CORSOrigins) > 0 {
		r.Use(CORS(cfg.CORSOrigins))
	}

	r.GET("/healthz", HealthCheck)

	api := r.Group("/api")
	api.Use(RequireActor())
	{
		if cfg.ServiceHandler != nil {
			api.GET("/openapi.json", cfg.ServiceHandler.OpenAPI)
			api.GET("/services", cfg.ServiceHandler.List)
			api.POST("/services", cfg.ServiceHandler.Create)
			api.GET("/services/:id", cfg.ServiceHandler.Get)
			api.PUT("/services/:id", cfg.ServiceHandler.Update)
			api.GET("/services/:id/form", cfg.ServiceHandler.Form)
		}

		if cfg.ApplicationHandler != nil {
			api.POST("/services/:id/applications", cfg.ApplicationHandler.Submit)
			api.GET("/applications", cfg.ApplicationHandler.List)
			api.GET("/applications/:id", cfg.ApplicationHandler.Get)
			api.GET("/applications/:id/versions", cfg.ApplicationHandler.Versions)
			api.POST("/applications/:id/editing", cfg.ApplicationHandler.EnableEditing)
			api.DELETE("/applications/:id/editing", cfg.ApplicationHandler.DisableEditing)
			api.PUT("/applications/:id/data", cfg.ApplicationHandler.Edit)
			api.PATCH("/applications/:id/status", cfg.ApplicationHandler.UpdateStatus)
			api.PATCH("/applications/:id/assignee", cfg.ApplicationHandler.Assign)
		}
	}
	return r
}

func HealthCheck(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}
