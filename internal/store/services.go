package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/goliatone/go-formflow/internal/logger"
	"github.com/goliatone/go-formflow/pkg/schema"
)

// ServiceRepo persists Service definitions and their form schemas.
type ServiceRepo interface {
	Create(ctx context.Context, tx *gorm.DB, svc schema.Service) (schema.Service, error)
	Update(ctx context.Context, tx *gorm.DB, svc schema.Service) (schema.Service, error)
	Upsert(ctx context.Context, tx *gorm.DB, svc schema.Service) error
	Get(ctx context.Context, tx *gorm.DB, id string) (schema.Service, error)
	List(ctx context.Context, tx *gorm.DB, activeOnly bool) ([]schema.Service, error)
}

type serviceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewServiceRepo(db *gorm.DB, baseLog *logger.Logger) ServiceRepo {
	return &serviceRepo{db: db, log: baseLog.With("repo", "ServiceRepo")}
}

func (r *serviceRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *serviceRepo) Create(ctx context.Context, tx *gorm.DB, svc schema.Service) (schema.Service, error) {
	row, err := serviceToRow(svc)
	if err != nil {
		return schema.Service{}, err
	}
	if err := r.conn(tx).WithContext(ctx).Create(row).Error; err != nil {
		return schema.Service{}, fmt.Errorf("store: create service %s: %w", svc.ID, err)
	}
	return row.toDomain()
}

func (r *serviceRepo) Update(ctx context.Context, tx *gorm.DB, svc schema.Service) (schema.Service, error) {
	row, err := serviceToRow(svc)
	if err != nil {
		return schema.Service{}, err
	}
	res := r.conn(tx).WithContext(ctx).
		Model(&ServiceRow{}).
		Where("id = ?", svc.ID).
		Updates(map[string]any{
			"name":               row.Name,
			"description":        row.Description,
			"fee":                row.Fee,
			"required_documents": row.RequiredDocuments,
			"form_schema":        row.FormSchema,
			"active":             row.Active,
		})
	if res.Error != nil {
		return schema.Service{}, fmt.Errorf("store: update service %s: %w", svc.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return schema.Service{}, fmt.Errorf("%w: service %s", ErrNotFound, svc.ID)
	}
	return r.Get(ctx, tx, svc.ID)
}

func (r *serviceRepo) Upsert(ctx context.Context, tx *gorm.DB, svc schema.Service) error {
	row, err := serviceToRow(svc)
	if err != nil {
		return err
	}
	err = r.conn(tx).WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "description", "fee", "required_documents", "form_schema", "active", "updated_at"}),
		}).
		Create(row).Error
	if err != nil {
		return fmt.Errorf("store: upsert service %s: %w", svc.ID, err)
	}
	return nil
}

func (r *serviceRepo) Get(ctx context.Context, tx *gorm.DB, id string) (schema.Service, error) {
	var row ServiceRow
	err := r.conn(tx).WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return schema.Service{}, fmt.Errorf("%w: service %s", ErrNotFound, id)
	}
	if err != nil {
		return schema.Service{}, fmt.Errorf("store: get service %s: %w", id, err)
	}
	return row.toDomain()
}

func (r *serviceRepo) List(ctx context.Context, tx *gorm.DB, activeOnly bool) ([]schema.Service, error) {
	var rows []ServiceRow
	q := r.conn(tx).WithContext(ctx).Order("name ASC")
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("store: list services: %w", err)
	}
	out := make([]schema.Service, 0, len(rows))
	for i := range rows {
		svc, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, svc)
	}
	return out, nil
}
