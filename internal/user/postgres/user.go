package postgres

import (
	"context"
	"errors"

	userDatamodel "github.com/frahmantamala/ldc-construction/internal/core/datamodel/user"
	volunteerDatamodel "github.com/frahmantamala/ldc-construction/internal/core/datamodel/volunteer"
	"github.com/frahmantamala/ldc-construction/internal/user"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) user.RepositoryAPI {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*userDatamodel.User, error) {
	var u userDatamodel.User
	err := r.db.WithContext(ctx).
		Preload("ConstructionGroup").
		Where("id = ?", id).
		First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetVolunteer(ctx context.Context, id string) (*volunteerDatamodel.Volunteer, error) {
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

func (r *UserRepository) LinkVolunteer(ctx context.Context, userID, volunteerID, cgID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&volunteerDatamodel.Volunteer{}).
			Where("user_id = ? AND id <> ?", userID, volunteerID).
			Update("user_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&volunteerDatamodel.Volunteer{}).
			Where("id = ?", volunteerID).
			Update("user_id", userID).Error; err != nil {
			return err
		}
		return tx.Model(&userDatamodel.User{}).
			Where("id = ?", userID).
			Update("construction_group_id", cgID).Error
	})
}
