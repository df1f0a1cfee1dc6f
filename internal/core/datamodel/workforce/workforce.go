package workforce

import "time"

// TradeTeam and Project are owned by other services; only their tenant
// link is read here.
type TradeTeam struct {
	ID                  string    `gorm:"primaryKey;size:26"`
	Name                string    `gorm:"column:name;not null"`
	ConstructionGroupID *string   `gorm:"column:construction_group_id;size:26;index"`
	IsActive            bool      `gorm:"column:is_active;default:true"`
	CreatedAt           time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (TradeTeam) TableName() string { return "trade_teams" }

type Project struct {
	ID                  string    `gorm:"primaryKey;size:26"`
	Name                string    `gorm:"column:name;not null"`
	ConstructionGroupID *string   `gorm:"column:construction_group_id;size:26;index"`
	IsActive            bool      `gorm:"column:is_active;default:true"`
	CreatedAt           time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Project) TableName() string { return "projects" }
