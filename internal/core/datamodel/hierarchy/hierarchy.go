package hierarchy

import "time"

type Branch struct {
	ID          string    `gorm:"primaryKey;size:26"`
	Code        string    `gorm:"column:code;uniqueIndex;not null"`
	Name        string    `gorm:"column:name;not null"`
	Description string    `gorm:"column:description"`
	IsActive    bool      `gorm:"column:is_active;default:true"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Branch) TableName() string { return "branches" }

type Zone struct {
	ID          string    `gorm:"primaryKey;size:26"`
	Code        string    `gorm:"column:code;uniqueIndex;not null"`
	Name        string    `gorm:"column:name;not null"`
	Description string    `gorm:"column:description"`
	BranchID    string    `gorm:"column:branch_id;size:26;not null;index"`
	Branch      *Branch   `gorm:"foreignKey:BranchID"`
	IsActive    bool      `gorm:"column:is_active;default:true"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Zone) TableName() string { return "zones" }

type Region struct {
	ID          string    `gorm:"primaryKey;size:26"`
	Code        string    `gorm:"column:code;uniqueIndex;not null"`
	Name        string    `gorm:"column:name;not null"`
	Description string    `gorm:"column:description"`
	ZoneID      string    `gorm:"column:zone_id;size:26;not null;index"`
	Zone        *Zone     `gorm:"foreignKey:ZoneID"`
	IsActive    bool      `gorm:"column:is_active;default:true"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Region) TableName() string { return "regions" }

type ConstructionGroup struct {
	ID          string    `gorm:"primaryKey;size:26"`
	Code        string    `gorm:"column:code;uniqueIndex;not null"`
	Name        string    `gorm:"column:name;not null"`
	Description string    `gorm:"column:description"`
	RegionID    string    `gorm:"column:region_id;size:26;not null;index"`
	Region      *Region   `gorm:"foreignKey:RegionID"`
	IsActive    bool      `gorm:"column:is_active;default:true"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (ConstructionGroup) TableName() string { return "construction_groups" }
