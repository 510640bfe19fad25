package application

import (
	"time"

	"github.com/goliatone/go-formflow/pkg/form"
)

// Role is the actor role supplied by the authentication collaborator.
type Role string

const (
	RoleCitizen  Role = "citizen"
	RoleEmployee Role = "employee"
	RoleAdmin    Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleCitizen || r.Staff()
}

// Staff reports whether the role may manage applications.
func (r Role) Staff() bool {
	return r == RoleEmployee || r == RoleAdmin
}

// Actor identifies who performs an operation.
type Actor struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}

// Status is the processing status of an application.
type Status string

const (
	StatusSubmitted     Status = "submitted"
	StatusInProgress    Status = "in_progress"
	StatusEditRequested Status = "edit_requested"
	StatusResubmitted   Status = "resubmitted"
	StatusCompleted     Status = "completed"
	StatusRejected      Status = "rejected"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusSubmitted, StatusInProgress, StatusEditRequested, StatusResubmitted, StatusCompleted, StatusRejected:
		return true
	default:
		return false
	}
}

// Document is an uploaded supporting document. Storage of the file itself
// belongs to the upload collaborator; only the reference is kept here.
type Document struct {
	Type       string    `json:"type"`
	Path       string    `json:"path"`
	UploadedAt time.Time `json:"uploadedAt,omitempty"`
}

// Snapshot is an archived copy of an application's data taken when editing
// was enabled. Snapshots are never changed after they are appended.
type Snapshot struct {
	ApplicationData map[string]any `json:"applicationData"`
	Documents       []Document     `json:"documents"`
	SavedBy         string         `json:"savedBy"`
	SavedAt         time.Time      `json:"savedAt"`
}

// Application is one citizen request against a Service.
type Application struct {
	ID               string         `json:"id"`
	ServiceID        string         `json:"serviceId"`
	CitizenID        string         `json:"citizenId"`
	AssignedTo       string         `json:"assignedTo,omitempty"`
	Status           Status         `json:"status"`
	ApplicationData  map[string]any `json:"applicationData"`
	Documents        []Document     `json:"documents"`
	PreviousVersions []Snapshot     `json:"previousVersions"`
	EditingEnabled   bool           `json:"editingEnabled"`
	EditingReason    string         `json:"editingReason,omitempty"`
	EnabledBy        string         `json:"enabledBy,omitempty"`
	EnabledAt        *time.Time     `json:"enabledAt,omitempty"`
	Revision         int            `json:"revision"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
}

// CloneDocuments copies a document list.
func CloneDocuments(docs []Document) []Document {
	if docs == nil {
		return nil
	}
	return append([]Document{}, docs...)
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	return Snapshot{
		ApplicationData: form.CloneRecord(s.ApplicationData),
		Documents:       CloneDocuments(s.Documents),
		SavedBy:         s.SavedBy,
		SavedAt:         s.SavedAt,
	}
}

// Clone returns a deep copy of the application.
func (a *Application) Clone() *Application {
	if a == nil {
		return nil
	}
	out := *a
	out.ApplicationData = form.CloneRecord(a.ApplicationData)
	out.Documents = CloneDocuments(a.Documents)
	if a.PreviousVersions != nil {
		out.PreviousVersions = make([]Snapshot, len(a.PreviousVersions))
		for i, snap := range a.PreviousVersions {
			out.PreviousVersions[i] = snap.Clone()
		}
	}
	if a.EnabledAt != nil {
		at := *a.EnabledAt
		out.EnabledAt = &at
	}
	return &out
}
