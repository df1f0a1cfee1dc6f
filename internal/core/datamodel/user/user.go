package user

import (
	"time"

	"github.com/frahmantamala/ldc-construction/internal/core/datamodel/hierarchy"
)

type User struct {
	ID                  string                       `gorm:"primaryKey;size:26"`
	Email               string                       `gorm:"column:email;uniqueIndex;not null"`
	Name                string                       `gorm:"column:name;not null"`
	PasswordHash        string                       `gorm:"column:password_hash;not null"`
	Role                string                       `gorm:"column:role;not null"`
	ConstructionGroupID *string                      `gorm:"column:construction_group_id;size:26;index"`
	ConstructionGroup   *hierarchy.ConstructionGroup `gorm:"foreignKey:ConstructionGroupID"`
	ZoneID              *string                      `gorm:"column:zone_id;size:26"`
	Zone                *hierarchy.Zone              `gorm:"foreignKey:ZoneID"`
	IsActive            bool                         `gorm:"column:is_active;default:true"`
	CreatedAt           time.Time                    `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time                    `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string { return "users" }
