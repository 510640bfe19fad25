package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/goliatone/go-formflow/internal/logger"
	"github.com/goliatone/go-formflow/pkg/application"
)

// ApplicationFilter narrows List results. Empty fields match everything.
type ApplicationFilter struct {
	ServiceID  string
	CitizenID  string
	AssignedTo string
	Status     application.Status
}

// ApplicationRepo is the submission store. Writes to application data always
// replace the whole record; edit-enabling and its snapshot append commit in
// one transaction.
type ApplicationRepo interface {
	Create(ctx context.Context, tx *gorm.DB, app *application.Application) (*application.Application, error)
	Get(ctx context.Context, tx *gorm.DB, id string) (*application.Application, error)
	List(ctx context.Context, tx *gorm.DB, filter ApplicationFilter) ([]*application.Application, error)
	Versions(ctx context.Context, tx *gorm.DB, id string) ([]application.Snapshot, error)
	EnableEditing(ctx context.Context, id string, actor application.Actor, reason string, now time.Time) (*application.Application, *application.Snapshot, error)
	DisableEditing(ctx context.Context, id string, actor application.Actor, now time.Time) (*application.Application, error)
	ReplaceData(ctx context.Context, id string, record map[string]any, docs []application.Document, expectedRevision int, now time.Time) (*application.Application, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, id string, status application.Status) (*application.Application, error)
	Assign(ctx context.Context, tx *gorm.DB, id, assignee string) (*application.Application, error)
}

type applicationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewApplicationRepo(db *gorm.DB, baseLog *logger.Logger) ApplicationRepo {
	return &applicationRepo{db: db, log: baseLog.With("repo", "ApplicationRepo")}
}

func (r *applicationRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *applicationRepo) Create(ctx context.Context, tx *gorm.DB, app *application.Application) (*application.Application, error) {
	if app == nil {
		return nil, errors.New("store: application is required")
	}
	created := app.Clone()
	if created.ID == "" {
		created.ID = uuid.NewString()
	}
	if created.Status == "" {
		created.Status = application.StatusSubmitted
	}
	if created.Revision == 0 {
		created.Revision = 1
	}

	row, err := applicationToRow(created)
	if err != nil {
		return nil, err
	}
	if err := r.conn(tx).WithContext(ctx).Create(row).Error; err != nil {
		return nil, fmt.Errorf("store: create application: %w", err)
	}
	return r.Get(ctx, tx, row.ID)
}

func (r *applicationRepo) Get(ctx context.Context, tx *gorm.DB, id string) (*application.Application, error) {
	conn := r.conn(tx).WithContext(ctx)
	row, err := loadRow(conn, id)
	if err != nil {
		return nil, err
	}
	versions, err := loadVersions(conn, id)
	if err != nil {
		return nil, err
	}
	return row.toDomain(versions)
}

func (r *applicationRepo) List(ctx context.Context, tx *gorm.DB, filter ApplicationFilter) ([]*application.Application, error) {
	q := r.conn(tx).WithContext(ctx).Model(&ApplicationRow{})
	if filter.ServiceID != "" {
		q = q.Where("service_id = ?", filter.ServiceID)
	}
	if filter.CitizenID != "" {
		q = q.Where("citizen_id = ?", filter.CitizenID)
	}
	if filter.AssignedTo != "" {
		q = q.Where("assigned_to = ?", filter.AssignedTo)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", string(filter.Status))
	}

	var rows []ApplicationRow
	if err := q.Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("store: list applications: %w", err)
	}
	out := make([]*application.Application, 0, len(rows))
	for i := range rows {
		// list views carry live state only; history is fetched per application
		app, err := rows[i].toDomain(nil)
		if err != nil {
			return nil, err
		}
		out = append(out, app)
	}
	return out, nil
}

func (r *applicationRepo) Versions(ctx context.Context, tx *gorm.DB, id string) ([]application.Snapshot, error) {
	conn := r.conn(tx).WithContext(ctx)
	if _, err := loadRow(conn, id); err != nil {
		return nil, err
	}
	rows, err := loadVersions(conn, id)
	if err != nil {
		return nil, err
	}
	out := make([]application.Snapshot, 0, len(rows))
	for i := range rows {
		snap, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	return out, nil
}

// EnableEditing opens the application for edits and archives the current
// data (when present) inside one transaction. The flag only flips if the
// stored row still has editing disabled, and the archive is appended after
// that compare-and-set, so a staff action that loses a race reports
// ErrEditingAlreadyEnabled and archives nothing. A failed archive rolls the whole transition back and
// is reported as *application.SnapshotError.
func (r *applicationRepo) EnableEditing(ctx context.Context, id string, actor application.Actor, reason string, now time.Time) (*application.Application, *application.Snapshot, error) {
	var (
		result *application.Application
		snap   *application.Snapshot
	)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := loadRow(tx, id)
		if err != nil {
			return err
		}
		app, err := row.toDomain(nil)
		if err != nil {
			return err
		}

		snap, err = app.EnableEditing(actor, reason, now)
		if err != nil {
			return err
		}

		res := tx.Model(&ApplicationRow{}).
			Where("id = ? AND editing_enabled = ?", id, false).
			Updates(map[string]any{
				"editing_enabled": true,
				"editing_reason":  app.EditingReason,
				"enabled_by":      app.EnabledBy,
				"enabled_at":      app.EnabledAt,
				"status":          string(app.Status),
				"updated_at":      now,
			})
		if res.Error != nil {
			return fmt.Errorf("store: enable editing %s: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return application.ErrEditingAlreadyEnabled
		}

		// The conditional update holds the row, so the sequence number
		// below cannot be taken by a concurrent enable.
		if snap != nil {
			if err := appendSnapshot(tx, id, *snap); err != nil {
				return &application.SnapshotError{ApplicationID: id, Err: err}
			}
		}

		versions, err := loadVersions(tx, id)
		if err != nil {
			return err
		}
		fresh, err := loadRow(tx, id)
		if err != nil {
			return err
		}
		result, err = fresh.toDomain(versions)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	r.log.Info("Editing enabled", "application_id", id, "actor", actor.ID, "archived", snap != nil)
	return result, snap, nil
}

func (r *applicationRepo) DisableEditing(ctx context.Context, id string, actor application.Actor, now time.Time) (*application.Application, error) {
	var result *application.Application
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := loadRow(tx, id)
		if err != nil {
			return err
		}
		app, err := row.toDomain(nil)
		if err != nil {
			return err
		}
		if err := app.DisableEditing(actor, now); err != nil {
			return err
		}
		err = tx.Model(&ApplicationRow{}).
			Where("id = ?", id).
			Updates(map[string]any{
				"editing_enabled": false,
				"editing_reason":  "",
				"enabled_by":      "",
				"enabled_at":      nil,
				"updated_at":      now,
			}).Error
		if err != nil {
			return fmt.Errorf("store: disable editing %s: %w", id, err)
		}
		result, err = r.Get(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ReplaceData overwrites application data with record. The write is only
// accepted while editing is enabled and, when expectedRevision is non-zero,
// while the stored revision matches it.
func (r *applicationRepo) ReplaceData(ctx context.Context, id string, record map[string]any, docs []application.Document, expectedRevision int, now time.Time) (*application.Application, error) {
	var result *application.Application
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := loadRow(tx, id)
		if err != nil {
			return err
		}
		app, err := row.toDomain(nil)
		if err != nil {
			return err
		}
		loadedRevision := app.Revision
		if err := app.ReplaceData(record, docs, expectedRevision, now); err != nil {
			return err
		}

		next, err := applicationToRow(app)
		if err != nil {
			return err
		}
		res := tx.Model(&ApplicationRow{}).
			Where("id = ? AND editing_enabled = ? AND revision = ?", id, true, loadedRevision).
			Updates(map[string]any{
				"application_data": next.ApplicationData,
				"documents":        next.Documents,
				"editing_enabled":  false,
				"editing_reason":   "",
				"enabled_by":       "",
				"enabled_at":       nil,
				"status":           next.Status,
				"revision":         next.Revision,
				"updated_at":       now,
			})
		if res.Error != nil {
			return fmt.Errorf("store: replace data %s: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: application %s changed concurrently", application.ErrStaleRevision, id)
		}
		result, err = r.Get(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *applicationRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, id string, status application.Status) (*application.Application, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("store: unknown status %q", status)
	}
	return r.updateColumn(ctx, tx, id, "status", string(status))
}

func (r *applicationRepo) Assign(ctx context.Context, tx *gorm.DB, id, assignee string) (*application.Application, error) {
	return r.updateColumn(ctx, tx, id, "assigned_to", assignee)
}

func (r *applicationRepo) updateColumn(ctx context.Context, tx *gorm.DB, id, column string, value any) (*application.Application, error) {
	res := r.conn(tx).WithContext(ctx).
		Model(&ApplicationRow{}).
		Where("id = ?", id).
		Update(column, value)
	if res.Error != nil {
		return nil, fmt.Errorf("store: update %s of %s: %w", column, id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: application %s", ErrNotFound, id)
	}
	return r.Get(ctx, tx, id)
}

func loadRow(conn *gorm.DB, id string) (*ApplicationRow, error) {
	var row ApplicationRow
	err := conn.Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: application %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("store: load application %s: %w", id, err)
	}
	return &row, nil
}

func loadVersions(conn *gorm.DB, id string) ([]VersionRow, error) {
	var rows []VersionRow
	if err := conn.Where("application_id = ?", id).Order("seq ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("store: load versions of %s: %w", id, err)
	}
	return rows, nil
}

func appendSnapshot(tx *gorm.DB, id string, snap application.Snapshot) error {
	var count int64
	if err := tx.Model(&VersionRow{}).Where("application_id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	row, err := snapshotToRow(id, int(count)+1, snap)
	if err != nil {
		return err
	}
	return tx.Create(row).Error
}
