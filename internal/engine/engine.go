package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-formflow/internal/logger"
	"github.com/goliatone/go-formflow/internal/store"
	"github.com/goliatone/go-formflow/pkg/application"
	"github.com/goliatone/go-formflow/pkg/form"
	"github.com/goliatone/go-formflow/pkg/sanitize"
	"github.com/goliatone/go-formflow/pkg/schema"
)

var (
	// ErrServiceInactive is returned when a citizen applies to a disabled
	// service.
	ErrServiceInactive = errors.New("engine: service is not accepting applications")
	// ErrInvalidService is returned for service metadata problems outside the
	// form schema.
	ErrInvalidService = errors.New("engine: invalid service")
)

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithSanitizer toggles markup stripping of submitted values.
func WithSanitizer(enabled bool) Option {
	return func(e *Engine) {
		e.sanitize = enabled
	}
}

// Engine ties service schemas, form validation and the submission store
// together. It performs no authorization; the actor is taken as given.
type Engine struct {
	services     store.ServiceRepo
	applications store.ApplicationRepo
	log          *logger.Logger
	now          func() time.Time
	sanitize     bool
}

// New constructs an Engine.
func New(services store.ServiceRepo, applications store.ApplicationRepo, log *logger.Logger, opts ...Option) *Engine {
	e := &Engine{
		services:     services,
		applications: applications,
		log:          log.With("service", "Engine"),
		now:          func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// CreateService validates the schema as a unit and stores the service.
func (e *Engine) CreateService(ctx context.Context, svc schema.Service) (schema.Service, error) {
	if err := validateService(&svc); err != nil {
		return schema.Service{}, err
	}
	if svc.ID == "" {
		svc.ID = uuid.NewString()
	}
	created, err := e.services.Create(ctx, nil, svc)
	if err != nil {
		e.log.Error("CreateService failed", "service_id", svc.ID, "error", err)
		return schema.Service{}, err
	}
	e.log.Info("Service created", "service_id", created.ID, "fields", len(created.FormSchema))
	return created, nil
}

// UpdateService replaces a service definition. An invalid schema leaves the
// stored one untouched.
func (e *Engine) UpdateService(ctx context.Context, svc schema.Service) (schema.Service, error) {
	if strings.TrimSpace(svc.ID) == "" {
		return schema.Service{}, fmt.Errorf("%w: id is required", ErrInvalidService)
	}
	if err := validateService(&svc); err != nil {
		return schema.Service{}, err
	}
	updated, err := e.services.Update(ctx, nil, svc)
	if err != nil {
		e.log.Error("UpdateService failed", "service_id", svc.ID, "error", err)
		return schema.Service{}, err
	}
	e.log.Info("Service updated", "service_id", updated.ID, "fields", len(updated.FormSchema))
	return updated, nil
}

// GetService returns one service definition.
func (e *Engine) GetService(ctx context.Context, id string) (schema.Service, error) {
	return e.services.Get(ctx, nil, id)
}

// ListServices returns services ordered by name.
func (e *Engine) ListServices(ctx context.Context, activeOnly bool) ([]schema.Service, error) {
	return e.services.List(ctx, nil, activeOnly)
}

// SeedCatalog upserts every service of a loaded catalog.
func (e *Engine) SeedCatalog(ctx context.Context, catalog *schema.Catalog) error {
	for _, svc := range catalog.Services() {
		if err := e.services.Upsert(ctx, nil, svc); err != nil {
			return err
		}
	}
	e.log.Info("Catalog seeded", "services", catalog.Len())
	return nil
}

// SubmitRequest is a citizen's first submission against a service.
type SubmitRequest struct {
	ServiceID string
	Citizen   application.Actor
	Data      map[string]any
	Documents []application.Document
}

// Submit validates the data against the service schema and stores a new
// application. Invalid data is refused with a *form.ValidationError before
// anything is written.
func (e *Engine) Submit(ctx context.Context, req SubmitRequest) (*application.Application, error) {
	svc, err := e.services.Get(ctx, nil, req.ServiceID)
	if err != nil {
		return nil, err
	}
	if !svc.Active {
		return nil, fmt.Errorf("%w: %s", ErrServiceInactive, svc.ID)
	}

	record, err := e.validateRecord(svc, req.Data)
	if err != nil {
		return nil, err
	}

	now := e.now()
	app, err := e.applications.Create(ctx, nil, &application.Application{
		ServiceID:       svc.ID,
		CitizenID:       req.Citizen.ID,
		Status:          application.StatusSubmitted,
		ApplicationData: record,
		Documents:       req.Documents,
		Revision:        1,
		CreatedAt:       now,
		UpdatedAt:       now,
	})
	if err != nil {
		e.log.Error("Submit failed", "service_id", svc.ID, "citizen_id", req.Citizen.ID, "error", err)
		return nil, err
	}
	e.log.Info("Application submitted", "application_id", app.ID, "service_id", svc.ID)
	return app, nil
}

// EnableEditing archives the current data and opens the application for
// edits. Archive failures surface as *application.SnapshotError and leave
// editing disabled.
func (e *Engine) EnableEditing(ctx context.Context, id string, actor application.Actor, reason string) (*application.Application, error) {
	app, _, err := e.applications.EnableEditing(ctx, id, actor, strings.TrimSpace(reason), e.now())
	if err != nil {
		var snapErr *application.SnapshotError
		if errors.As(err, &snapErr) {
			e.log.Error("Snapshot failed; editing stays disabled", "application_id", id, "actor", actor.ID, "error", snapErr.Err)
		}
		return nil, err
	}
	return app, nil
}

// DisableEditing closes the application for edits without changing data.
func (e *Engine) DisableEditing(ctx context.Context, id string, actor application.Actor) (*application.Application, error) {
	return e.applications.DisableEditing(ctx, id, actor, e.now())
}

// EditRequest is a citizen re-submission while editing is enabled.
type EditRequest struct {
	ApplicationID string
	Citizen       application.Actor
	Data          map[string]any
	// Documents replaces the document list when non-nil.
	Documents []application.Document
	// Revision, when non-zero, must match the stored revision.
	Revision int
}

// SubmitEdit re-validates the edited data against the same service schema
// and fully replaces the stored record.
func (e *Engine) SubmitEdit(ctx context.Context, req EditRequest) (*application.Application, error) {
	current, err := e.applications.Get(ctx, nil, req.ApplicationID)
	if err != nil {
		return nil, err
	}
	if current.CitizenID != "" && req.Citizen.ID != current.CitizenID {
		return nil, fmt.Errorf("%w: application belongs to another citizen", application.ErrForbidden)
	}
	if !current.EditingEnabled {
		return nil, application.ErrEditingDisabled
	}

	svc, err := e.services.Get(ctx, nil, current.ServiceID)
	if err != nil {
		return nil, err
	}
	record, err := e.validateRecord(svc, req.Data)
	if err != nil {
		return nil, err
	}

	updated, err := e.applications.ReplaceData(ctx, req.ApplicationID, record, req.Documents, req.Revision, e.now())
	if err != nil {
		e.log.Warn("SubmitEdit rejected", "application_id", req.ApplicationID, "error", err)
		return nil, err
	}
	e.log.Info("Application edited", "application_id", updated.ID, "revision", updated.Revision)
	return updated, nil
}

// ValidateData checks a record against a service schema without storing it.
func (e *Engine) ValidateData(ctx context.Context, serviceID string, data map[string]any) (map[string]any, error) {
	svc, err := e.services.Get(ctx, nil, serviceID)
	if err != nil {
		return nil, err
	}
	return e.validateRecord(svc, data)
}

// Get returns an application with its history.
func (e *Engine) Get(ctx context.Context, id string) (*application.Application, error) {
	return e.applications.Get(ctx, nil, id)
}

// History returns the archived versions, oldest first.
func (e *Engine) History(ctx context.Context, id string) ([]application.Snapshot, error) {
	return e.applications.Versions(ctx, nil, id)
}

// List returns applications matching filter.
func (e *Engine) List(ctx context.Context, filter store.ApplicationFilter) ([]*application.Application, error) {
	return e.applications.List(ctx, nil, filter)
}

// UpdateStatus moves an application to status. Only staff may do so.
func (e *Engine) UpdateStatus(ctx context.Context, id string, actor application.Actor, status application.Status) (*application.Application, error) {
	if !actor.Role.Staff() {
		return nil, application.ErrForbidden
	}
	return e.applications.UpdateStatus(ctx, nil, id, status)
}

// Assign hands an application to an employee. Only staff may do so.
func (e *Engine) Assign(ctx context.Context, id string, actor application.Actor, assignee string) (*application.Application, error) {
	if !actor.Role.Staff() {
		return nil, application.ErrForbidden
	}
	return e.applications.Assign(ctx, nil, id, strings.TrimSpace(assignee))
}

func (e *Engine) validateRecord(svc schema.Service, data map[string]any) (map[string]any, error) {
	if unknown := form.UnknownKeys(svc.FormSchema, data); len(unknown) > 0 {
		e.log.Debug("Dropping keys outside the service schema", "service_id", svc.ID, "keys", unknown)
	}
	record, err := form.Validate(svc.FormSchema, data)
	if err != nil {
		return nil, err
	}
	if e.sanitize {
		record = sanitize.Record(record)
	}
	return record, nil
}

func validateService(svc *schema.Service) error {
	svc.ID = strings.TrimSpace(svc.ID)
	svc.Name = strings.TrimSpace(svc.Name)
	if svc.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidService)
	}
	if svc.Fee < 0 {
		return fmt.Errorf("%w: fee must not be negative", ErrInvalidService)
	}
	return svc.FormSchema.Validate()
}
