package postgres

import (
	"context"
	"errors"

	hierarchyDatamodel "github.com/frahmantamala/ldc-construction/internal/core/datamodel/hierarchy"
	volunteerDatamodel "github.com/frahmantamala/ldc-construction/internal/core/datamodel/volunteer"
	"github.com/frahmantamala/ldc-construction/internal/tenancy"
	"github.com/frahmantamala/ldc-construction/internal/volunteer"
	"gorm.io/gorm"
)

type VolunteerRepository struct {
	db *gorm.DB
}

func NewVolunteerRepository(db *gorm.DB) volunteer.RepositoryAPI {
	return &VolunteerRepository{db: db}
}

func (r *VolunteerRepository) List(ctx context.Context, pred tenancy.Predicate, q volunteer.ListQuery) ([]*volunteerDatamodel.Volunteer, int64, error) {
	scoped := func() *gorm.DB {
		tx := r.db.WithContext(ctx).Model(&volunteerDatamodel.Volunteer{}).Where("is_active = ?", true)
		tx = pred.Apply(tx)
		if q.Search != "" {
			like := "%" + q.Search + "%"
			tx = tx.Where("(first_name LIKE ? OR last_name LIKE ? OR email LIKE ?)", like, like, like)
		}
		return tx
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []*volunteerDatamodel.Volunteer
	err := scoped().
		Order("last_name ASC").
		Order("first_name ASC").
		Order("id ASC").
		Limit(q.Limit).
		Offset(q.Offset()).
		Find(&rows).Error
	return rows, total, err
}

func (r *VolunteerRepository) GetByID(ctx context.Context, id string) (*volunteerDatamodel.Volunteer, error) {
	var v volunteerDatamodel.Volunteer
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&v).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &v, nil
}

func (r *VolunteerRepository) Create(ctx context.Context, v *volunteerDatamodel.Volunteer) error {
	return r.db.WithContext(ctx).Create(v).Error
}

func (r *VolunteerRepository) UpdateConstructionGroup(ctx context.Context, id, cgID string) error {
	return r.db.WithContext(ctx).
		Model(&volunteerDatamodel.Volunteer{}).
		Where("id = ?", id).
		Update("construction_group_id", cgID).Error
}

func (r *VolunteerRepository) ActiveConstructionGroupExists(ctx context.Context, cgID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&hierarchyDatamodel.ConstructionGroup{}).
		Where("id = ? AND is_active = ?", cgID, true).
		Count(&n).Error
	return n > 0, err
}
