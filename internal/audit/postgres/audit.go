package postgres

import (
	"context"

	"github.com/frahmantamala/ldc-construction/internal/audit"
	auditDatamodel "github.com/frahmantamala/ldc-construction/internal/core/datamodel/audit"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) audit.RepositoryAPI {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Create(ctx context.Context, log *auditDatamodel.AuditLog) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(log).Error
}

func (r *AuditRepository) filtered(ctx context.Context, q audit.Query) *gorm.DB {
	tx := r.db.WithContext(ctx).Model(&auditDatamodel.AuditLog{})
	if q.UserID != "" {
		tx = tx.Where("user_id = ?", q.UserID)
	}
	if q.Action != "" {
		tx = tx.Where("action = ?", string(q.Action))
	}
	if q.Resource != "" {
		tx = tx.Where("resource = ?", string(q.Resource))
	}
	if q.ConstructionGroupID != "" {
		tx = tx.Where("(from_construction_group_id = ? OR to_construction_group_id = ?)", q.ConstructionGroupID, q.ConstructionGroupID)
	}
	if q.StartDate != nil {
		tx = tx.Where("created_at >= ?", q.StartDate.UTC())
	}
	if q.EndDate != nil {
		tx = tx.Where("created_at <= ?", q.EndDate.UTC())
	}
	return tx
}

func (r *AuditRepository) withRelations(tx *gorm.DB) *gorm.DB {
	return tx.
		Preload("User").
		Preload("FromConstructionGroup").
		Preload("ToConstructionGroup").
		Order("created_at DESC").
		Order("id DESC")
}

func (r *AuditRepository) List(ctx context.Context, q audit.Query) ([]*auditDatamodel.AuditLog, int64, error) {
	var total int64
	if err := r.filtered(ctx, q).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var logs []*auditDatamodel.AuditLog
	err := r.withRelations(r.filtered(ctx, q)).
		Limit(q.Limit).
		Offset(q.Offset()).
		Find(&logs).Error
	if err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}

func (r *AuditRepository) ListAll(ctx context.Context, q audit.Query, max int) ([]*auditDatamodel.AuditLog, error) {
	var logs []*auditDatamodel.AuditLog
	tx := r.withRelations(r.filtered(ctx, q))
	if max > 0 {
		tx = tx.Limit(max)
	}
	if err := tx.Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
