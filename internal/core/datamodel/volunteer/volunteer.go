package volunteer

import "time"

type Volunteer struct {
	ID                  string    `gorm:"primaryKey;size:26"`
	FirstName           string    `gorm:"column:first_name;not null"`
	LastName            string    `gorm:"column:last_name;not null"`
	Email               string    `gorm:"column:email"`
	ConstructionGroupID *string   `gorm:"column:construction_group_id;size:26;index"`
	UserID              *string   `gorm:"column:user_id;size:26;uniqueIndex"`
	IsActive            bool      `gorm:"column:is_active;default:true"`
	CreatedAt           time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Volunteer) TableName() string { return "volunteers" }
