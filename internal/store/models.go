package store

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"

	"github.com/goliatone/go-formflow/pkg/application"
	"github.com/goliatone/go-formflow/pkg/schema"
)

// ServiceRow persists a Service with its form schema as a JSON column.
type ServiceRow struct {
	ID                string         `gorm:"primaryKey;type:varchar(64)"`
	Name              string         `gorm:"not null"`
	Description       string
	Fee               float64
	RequiredDocuments datatypes.JSON `gorm:"column:required_documents"`
	FormSchema        datatypes.JSON `gorm:"column:form_schema"`
	Active            bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (ServiceRow) TableName() string { return "services" }

// ApplicationRow persists the live application state. ApplicationData is
// kept schema-less so archived and live records survive schema changes.
type ApplicationRow struct {
	ID              string         `gorm:"primaryKey;type:varchar(36)"`
	ServiceID       string         `gorm:"index;not null"`
	CitizenID       string         `gorm:"index"`
	AssignedTo      string         `gorm:"index"`
	Status          string         `gorm:"index;not null"`
	ApplicationData datatypes.JSON `gorm:"column:application_data"`
	Documents       datatypes.JSON `gorm:"column:documents"`
	EditingEnabled  bool           `gorm:"not null;default:false"`
	EditingReason   string
	EnabledBy       string
	EnabledAt       *time.Time
	Revision        int `gorm:"not null;default:1"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (ApplicationRow) TableName() string { return "applications" }

// VersionRow is one append-only snapshot. Seq orders snapshots per
// application, oldest first.
type VersionRow struct {
	ID              uint           `gorm:"primaryKey"`
	ApplicationID   string         `gorm:"uniqueIndex:idx_application_versions_seq;not null"`
	Seq             int            `gorm:"uniqueIndex:idx_application_versions_seq;not null"`
	ApplicationData datatypes.JSON `gorm:"column:application_data"`
	Documents       datatypes.JSON `gorm:"column:documents"`
	SavedBy         string
	SavedAt         time.Time
}

func (VersionRow) TableName() string { return "application_versions" }

func marshalJSON(v any) (datatypes.JSON, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(data), nil
}

func unmarshalJSON(data datatypes.JSON, dst any) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	return json.Unmarshal(data, dst)
}

func serviceToRow(svc schema.Service) (*ServiceRow, error) {
	formSchema := svc.FormSchema
	if formSchema == nil {
		formSchema = schema.Schema{}
	}
	fs, err := marshalJSON(formSchema)
	if err != nil {
		return nil, fmt.Errorf("store: encode form schema: %w", err)
	}
	docs, err := marshalJSON(svc.RequiredDocuments)
	if err != nil {
		return nil, fmt.Errorf("store: encode required documents: %w", err)
	}
	return &ServiceRow{
		ID:                svc.ID,
		Name:              svc.Name,
		Description:       svc.Description,
		Fee:               svc.Fee,
		RequiredDocuments: docs,
		FormSchema:        fs,
		Active:            svc.Active,
	}, nil
}

func (r *ServiceRow) toDomain() (schema.Service, error) {
	svc := schema.Service{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Fee:         r.Fee,
		Active:      r.Active,
	}
	if err := unmarshalJSON(r.FormSchema, &svc.FormSchema); err != nil {
		return schema.Service{}, fmt.Errorf("store: decode form schema for %s: %w", r.ID, err)
	}
	if err := unmarshalJSON(r.RequiredDocuments, &svc.RequiredDocuments); err != nil {
		return schema.Service{}, fmt.Errorf("store: decode required documents for %s: %w", r.ID, err)
	}
	return svc, nil
}

func applicationToRow(app *application.Application) (*ApplicationRow, error) {
	data := app.ApplicationData
	if data == nil {
		data = map[string]any{}
	}
	encodedData, err := marshalJSON(data)
	if err != nil {
		return nil, fmt.Errorf("store: encode application data: %w", err)
	}
	docs := app.Documents
	if docs == nil {
		docs = []application.Document{}
	}
	encodedDocs, err := marshalJSON(docs)
	if err != nil {
		return nil, fmt.Errorf("store: encode documents: %w", err)
	}
	return &ApplicationRow{
		ID:              app.ID,
		ServiceID:       app.ServiceID,
		CitizenID:       app.CitizenID,
		AssignedTo:      app.AssignedTo,
		Status:          string(app.Status),
		ApplicationData: encodedData,
		Documents:       encodedDocs,
		EditingEnabled:  app.EditingEnabled,
		EditingReason:   app.EditingReason,
		EnabledBy:       app.EnabledBy,
		EnabledAt:       app.EnabledAt,
		Revision:        app.Revision,
		CreatedAt:       app.CreatedAt,
		UpdatedAt:       app.UpdatedAt,
	}, nil
}

func (r *ApplicationRow) toDomain(versions []VersionRow) (*application.Application, error) {
	app := &application.Application{
		ID:               r.ID,
		ServiceID:        r.ServiceID,
		CitizenID:        r.CitizenID,
		AssignedTo:       r.AssignedTo,
		Status:           application.Status(r.Status),
		ApplicationData:  map[string]any{},
		Documents:        []application.Document{},
		PreviousVersions: []application.Snapshot{},
		EditingEnabled:   r.EditingEnabled,
		EditingReason:    r.EditingReason,
		EnabledBy:        r.EnabledBy,
		EnabledAt:        r.EnabledAt,
		Revision:         r.Revision,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
	if err := unmarshalJSON(r.ApplicationData, &app.ApplicationData); err != nil {
		return nil, fmt.Errorf("store: decode application data for %s: %w", r.ID, err)
	}
	if err := unmarshalJSON(r.Documents, &app.Documents); err != nil {
		return nil, fmt.Errorf("store: decode documents for %s: %w", r.ID, err)
	}
	for _, v := range versions {
		snap, err := v.toDomain()
		if err != nil {
			return nil, err
		}
		app.PreviousVersions = append(app.PreviousVersions, snap)
	}
	return app, nil
}

func snapshotToRow(applicationID string, seq int, snap application.Snapshot) (*VersionRow, error) {
	data, err := marshalJSON(snap.ApplicationData)
	if err != nil {
		return nil, fmt.Errorf("store: encode snapshot data: %w", err)
	}
	docs := snap.Documents
	if docs == nil {
		docs = []application.Document{}
	}
	encodedDocs, err := marshalJSON(docs)
	if err != nil {
		return nil, fmt.Errorf("store: encode snapshot documents: %w", err)
	}
	return &VersionRow{
		ApplicationID:   applicationID,
		Seq:             seq,
		ApplicationData: data,
		Documents:       encodedDocs,
		SavedBy:         snap.SavedBy,
		SavedAt:         snap.SavedAt,
	}, nil
}

func (v *VersionRow) toDomain() (application.Snapshot, error) {
	snap := application.Snapshot{
		ApplicationData: map[string]any{},
		Documents:       []application.Document{},
		SavedBy:         v.SavedBy,
		SavedAt:         v.SavedAt,
	}
	if err := unmarshalJSON(v.ApplicationData, &snap.ApplicationData); err != nil {
		return application.Snapshot{}, fmt.Errorf("store: decode snapshot %d: %w", v.Seq, err)
	}
	if err := unmarshalJSON(v.Documents, &snap.Documents); err != nil {
		return application.Snapshot{}, fmt.Errorf("store: decode snapshot %d documents: %w", v.Seq, err)
	}
	return snap, nil
}
