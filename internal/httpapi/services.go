package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/goliatone/go-formflow/internal/engine"
	"github.com/goliatone/go-formflow/internal/logger"
	"github.com/goliatone/go-formflow/pkg/application"
	"github.com/goliatone/go-formflow/pkg/openapi"
	"github.com/goliatone/go-formflow/pkg/render"
	"github.com/goliatone/go-formflow/pkg/schema"
)

type ServiceHandler struct {
	log       *logger.Logger
	engine    *engine.Engine
	renderers *render.Registry
}

func NewServiceHandler(log *logger.Logger, eng *engine.Engine, renderers *render.Registry) *ServiceHandler {
	return &ServiceHandler{
		log:       log.With("handler", "ServiceHandler"),
		engine:    eng,
		renderers: renderers,
	}
}

// POST /api/services
func (h *ServiceHandler) Create(c *gin.Context) {
	if !requireAdmin(c) {
		return
	}
	var svc schema.Service
	if err := c.ShouldBindJSON(&svc); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	created, err := h.engine.CreateService(c.Request.Context(), svc)
	if err != nil {
		respondDomainError(c, h.log, err)
		return
	}
	RespondCreated(c, gin.H{"service": created})
}

// PUT /api/services/:id
func (h *ServiceHandler) Update(c *gin.Context) {
	if !requireAdmin(c) {
		return
	}
	var svc schema.Service
	if err := c.ShouldBindJSON(&svc); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	svc.ID = c.Param("id")
	updated, err := h.engine.UpdateService(c.Request.Context(), svc)
	if err != nil {
		respondDomainError(c, h.log, err)
		return
	}
	RespondOK(c, gin.H{"service": updated})
}

// GET /api/services
func (h *ServiceHandler) List(c *gin.Context) {
	activeOnly := !actorFrom(c).Role.Staff()
	if raw := c.Query("active"); raw != "" && !activeOnly {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_request", err)
			return
		}
		activeOnly = v
	}
	services, err := h.engine.ListServices(c.Request.Context(), activeOnly)
	if err != nil {
		respondDomainError(c, h.log, err)
		return
	}
	RespondOK(c, gin.H{"services": services})
}

// GET /api/services/:id
func (h *ServiceHandler) Get(c *gin.Context) {
	svc, ok := h.visibleService(c)
	if !ok {
		return
	}
	RespondOK(c, gin.H{"service": svc})
}

// GET /api/services/:id/form renders the service form. With ?application=<id>
// the form is prefilled from that application and posts an edit.
func (h *ServiceHandler) Form(c *gin.Context) {
	svc, ok := h.visibleService(c)
	if !ok {
		return
	}

	name := c.DefaultQuery("format", "html")
	renderer, err := h.renderers.Get(name)
	if err != nil {
		RespondError(c, http.StatusNotAcceptable, "unsupported_format", err)
		return
	}

	opts := render.RenderOptions{
		Action: "/api/services/" + svc.ID + "/applications",
		Method: http.MethodPost,
	}
	if appID := strings.TrimSpace(c.Query("application")); appID != "" {
		app, err := h.engine.Get(c.Request.Context(), appID)
		if err != nil {
			respondDomainError(c, h.log, err)
			return
		}
		if !canView(actorFrom(c), app) || app.ServiceID != svc.ID {
			respondDomainError(c, h.log, application.ErrForbidden)
			return
		}
		opts.Action = "/api/applications/" + app.ID + "/data"
		opts.Method = http.MethodPut
		opts.Values = app.ApplicationData
		opts.Hidden = []render.HiddenField{render.RevisionField(app.Revision)}
		opts.SubmitLabel = "Resubmit"
		if !app.EditingEnabled {
			opts.FormErrors = []string{"Editing is not enabled for this application"}
		}
	}

	out, err := renderer.Render(c.Request.Context(), svc, opts)
	if err != nil {
		h.log.Error("Render form failed", "service_id", svc.ID, "renderer", name, "error", err)
		RespondError(c, http.StatusInternalServerError, "render_failed", errors.New("could not render form"))
		return
	}
	c.Data(http.StatusOK, renderer.ContentType(), out)
}

// GET /api/openapi.json describes the submission payload of every active
// service.
func (h *ServiceHandler) OpenAPI(c *gin.Context) {
	services, err := h.engine.ListServices(c.Request.Context(), true)
	if err != nil {
		respondDomainError(c, h.log, err)
		return
	}
	RespondOK(c, openapi.Document(openapi.Info{Title: "formflow"}, services))
}

func (h *ServiceHandler) visibleService(c *gin.Context) (schema.Service, bool) {
	svc, err := h.engine.GetService(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondDomainError(c, h.log, err)
		return schema.Service{}, false
	}
	if !svc.Active && !actorFrom(c).Role.Staff() {
		RespondError(c, http.StatusNotFound, "not_found", errors.New("service not found"))
		return schema.Service{}, false
	}
	return svc, true
}

func requireAdmin(c *gin.Context) bool {
	if actorFrom(c).Role != application.RoleAdmin {
		RespondError(c, http.StatusForbidden, "forbidden", errors.New("only administrators manage services"))
		return false
	}
	return true
}
