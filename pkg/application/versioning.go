package application

import (
	"errors"
	"fmt"
	"time"

	"github.com/goliatone/go-formflow/pkg/form"
)

var (
	// ErrEditingAlreadyEnabled is returned when editing is enabled twice
	// without the citizen resubmitting in between.
	ErrEditingAlreadyEnabled = errors.New("application: editing already enabled")
	// ErrEditingDisabled is returned when an edit arrives while the
	// application does not accept writes.
	ErrEditingDisabled = errors.New("application: editing is not enabled")
	// ErrStaleRevision is returned when an edit was prepared against an older
	// revision than the stored one.
	ErrStaleRevision = errors.New("application: stale revision")
	// ErrForbidden is returned when the actor's role may not perform the
	// transition.
	ErrForbidden = errors.New("application: actor not allowed")
)

// SnapshotError reports that archiving the pre-edit state failed. The
// enable-editing transition it belongs to did not take effect.
type SnapshotError struct {
	ApplicationID string
	Err           error
}

func (e *SnapshotError) Error() string {
	return fmt.Sprintf("application: snapshot %s: %v", e.ApplicationID, e.Err)
}

func (e *SnapshotError) Unwrap() error { return e.Err }

// HasData reports whether there is application data worth archiving.
func (a *Application) HasData() bool {
	return a != nil && len(a.ApplicationData) > 0
}

// EnableEditing opens the application for citizen edits. When the
// application carries data, a deep copy of the data and documents is appended
// to PreviousVersions before the flag flips; the returned snapshot is nil
// when there was nothing to archive.
func (a *Application) EnableEditing(actor Actor, reason string, now time.Time) (*Snapshot, error) {
	if !actor.Role.Staff() {
		return nil, ErrForbidden
	}
	if a.EditingEnabled {
		return nil, ErrEditingAlreadyEnabled
	}

	var snap *Snapshot
	if a.HasData() {
		snap = &Snapshot{
			ApplicationData: form.CloneRecord(a.ApplicationData),
			Documents:       CloneDocuments(a.Documents),
			SavedBy:         actor.ID,
			SavedAt:         now,
		}
		if snap.Documents == nil {
			snap.Documents = []Document{}
		}
		a.PreviousVersions = append(a.PreviousVersions, snap.Clone())
	}

	enabledAt := now
	a.EditingEnabled = true
	a.EditingReason = reason
	a.EnabledBy = actor.ID
	a.EnabledAt = &enabledAt
	a.Status = StatusEditRequested
	a.UpdatedAt = now
	return snap, nil
}

// DisableEditing closes the application for edits without changing data or
// history. The status is left untouched.
func (a *Application) DisableEditing(actor Actor, now time.Time) error {
	if !actor.Role.Staff() {
		return ErrForbidden
	}
	a.clearEditing()
	a.UpdatedAt = now
	return nil
}

// ReplaceData applies a citizen edit. The record replaces ApplicationData
// entirely; documents are replaced only when docs is non-nil. A non-zero
// expectedRevision must equal the current revision.
func (a *Application) ReplaceData(record map[string]any, docs []Document, expectedRevision int, now time.Time) error {
	if !a.EditingEnabled {
		return ErrEditingDisabled
	}
	if expectedRevision != 0 && expectedRevision != a.Revision {
		return fmt.Errorf("%w: have %d, got %d", ErrStaleRevision, a.Revision, expectedRevision)
	}

	a.ApplicationData = form.CloneRecord(record)
	if a.ApplicationData == nil {
		a.ApplicationData = map[string]any{}
	}
	if docs != nil {
		a.Documents = CloneDocuments(docs)
	}
	a.clearEditing()
	a.Status = StatusResubmitted
	a.Revision++
	a.UpdatedAt = now
	return nil
}

func (a *Application) clearEditing() {
	a.EditingEnabled = false
	a.EditingReason = ""
	a.EnabledBy = ""
	a.EnabledAt = nil
}
