package httpapi

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/goliatone/go-formflow/internal/engine"
	"github.com/goliatone/go-formflow/internal/logger"
	"github.com/goliatone/go-formflow/internal/store"
	"github.com/goliatone/go-formflow/pkg/application"
)

type ApplicationHandler struct {
	log    *logger.Logger
	engine *engine.Engine
}

func NewApplicationHandler(log *logger.Logger, eng *engine.Engine) *ApplicationHandler {
	return &ApplicationHandler{log: log.With("handler", "ApplicationHandler"), engine: eng}
}

type submitRequest struct {
	ApplicationData map[string]any         `json:"applicationData"`
	Documents       []application.Document `json:"documents"`
}

type editRequest struct {
	ApplicationData map[string]any         `json:"applicationData"`
	Documents       []application.Document `json:"documents"`
	Revision        int                    `json:"revision"`
}

type enableEditingRequest struct {
	Reason string `json:"reason"`
}

type statusRequest struct {
	Status application.Status `json:"status" binding:"required"`
}

type assigneeRequest struct {
	Assignee string `json:"assignee"`
}

// POST /api/services/:id/applications
func (h *ApplicationHandler) Submit(c *gin.Context) {
	actor := actorFrom(c)
	if actor.Role != application.RoleCitizen {
		respondDomainError(c, h.log, application.ErrForbidden)
		return
	}
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	app, err := h.engine.Submit(c.Request.Context(), engine.SubmitRequest{
		ServiceID: c.Param("id"),
		Citizen:   actor,
		Data:      req.ApplicationData,
		Documents: req.Documents,
	})
	if err != nil {
		respondDomainError(c, h.log, err)
		return
	}
	RespondCreated(c, gin.H{"application": app})
}

// GET /api/applications
func (h *ApplicationHandler) List(c *gin.Context) {
	actor := actorFrom(c)
	filter := store.ApplicationFilter{
		ServiceID:  c.Query("service"),
		CitizenID:  c.Query("citizen"),
		AssignedTo: c.Query("assignee"),
		Status:     application.Status(c.Query("status")),
	}
	if !actor.Role.Staff() {
		filter.CitizenID = actor.ID
		filter.AssignedTo = ""
	}
	apps, err := h.engine.List(c.Request.Context(), filter)
	if err != nil {
		respondDomainError(c, h.log, err)
		return
	}
	RespondOK(c, gin.H{"applications": apps})
}

// GET /api/applications/:id
func (h *ApplicationHandler) Get(c *gin.Context) {
	app, ok := h.load(c)
	if !ok {
		return
	}
	RespondOK(c, gin.H{"application": app})
}

// GET /api/applications/:id/versions
func (h *ApplicationHandler) Versions(c *gin.Context) {
	app, ok := h.load(c)
	if !ok {
		return
	}
	RespondOK(c, gin.H{"versions": app.PreviousVersions})
}

// POST /api/applications/:id/editing
func (h *ApplicationHandler) EnableEditing(c *gin.Context) {
	var req enableEditingRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_request", err)
			return
		}
	}
	app, err := h.engine.EnableEditing(c.Request.Context(), c.Param("id"), actorFrom(c), req.Reason)
	if err != nil {
		respondDomainError(c, h.log, err)
		return
	}
	RespondOK(c, gin.H{"application": app})
}

// DELETE /api/applications/:id/editing
func (h *ApplicationHandler) DisableEditing(c *gin.Context) {
	app, err := h.engine.DisableEditing(c.Request.Context(), c.Param("id"), actorFrom(c))
	if err != nil {
		respondDomainError(c, h.log, err)
		return
	}
	RespondOK(c, gin.H{"application": app})
}

// PUT /api/applications/:id/data
func (h *ApplicationHandler) Edit(c *gin.Context) {
	var req editRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	app, err := h.engine.SubmitEdit(c.Request.Context(), engine.EditRequest{
		ApplicationID: c.Param("id"),
		Citizen:       actorFrom(c),
		Data:          req.ApplicationData,
		Documents:     req.Documents,
		Revision:      req.Revision,
	})
	if err != nil {
		respondDomainError(c, h.log, err)
		return
	}
	RespondOK(c, gin.H{"application": app})
}

// PATCH /api/applications/:id/status
func (h *ApplicationHandler) UpdateStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if !req.Status.Valid() {
		RespondError(c, http.StatusBadRequest, "invalid_status", fmt.Errorf("unknown status %q", req.Status))
		return
	}
	app, err := h.engine.UpdateStatus(c.Request.Context(), c.Param("id"), actorFrom(c), req.Status)
	if err != nil {
		respondDomainError(c, h.log, err)
		return
	}
	RespondOK(c, gin.H{"application": app})
}

// PATCH /api/applications/:id/assignee
func (h *ApplicationHandler) Assign(c *gin.Context) {
	var req assigneeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	app, err := h.engine.Assign(c.Request.Context(), c.Param("id"), actorFrom(c), req.Assignee)
	if err != nil {
		respondDomainError(c, h.log, err)
		return
	}
	RespondOK(c, gin.H{"application": app})
}

func (h *ApplicationHandler) load(c *gin.Context) (*application.Application, bool) {
	app, err := h.engine.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondDomainError(c, h.log, err)
		return nil, false
	}
	if !canView(actorFrom(c), app) {
		respondDomainError(c, h.log, application.ErrForbidden)
		return nil, false
	}
	return app, true
}

func canView(actor application.Actor, app *application.Application) bool {
	return actor.Role.Staff() || actor.ID == app.CitizenID
}
