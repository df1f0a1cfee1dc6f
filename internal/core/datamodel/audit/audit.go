package audit

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/frahmantamala/ldc-construction/internal/core/datamodel/hierarchy"
	"github.com/frahmantamala/ldc-construction/internal/core/datamodel/user"
)

// JSONMap is stored as jsonb in postgres and as text in sqlite.
type JSONMap map[string]interface{}

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (m *JSONMap) Scan(src interface{}) error {
	if src == nil {
		*m = nil
		return nil
	}
	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("audit: cannot scan %T into JSONMap", src)
	}
	if len(raw) == 0 {
		*m = nil
		return nil
	}
	return json.Unmarshal(raw, m)
}

type AuditLog struct {
	ID                      string                       `gorm:"primaryKey;size:26"`
	UserID                  *string                      `gorm:"column:user_id;size:26;index"`
	User                    *user.User                   `gorm:"foreignKey:UserID"`
	Action                  string                       `gorm:"column:action;not null;index"`
	Resource                string                       `gorm:"column:resource;not null;index"`
	ResourceID              *string                      `gorm:"column:resource_id"`
	FromConstructionGroupID *string                      `gorm:"column:from_construction_group_id;size:26;index"`
	FromConstructionGroup   *hierarchy.ConstructionGroup `gorm:"foreignKey:FromConstructionGroupID"`
	ToConstructionGroupID   *string                      `gorm:"column:to_construction_group_id;size:26;index"`
	ToConstructionGroup     *hierarchy.ConstructionGroup `gorm:"foreignKey:ToConstructionGroupID"`
	OldValues               JSONMap                      `gorm:"column:old_values;type:jsonb"`
	NewValues               JSONMap                      `gorm:"column:new_values;type:jsonb"`
	Metadata                JSONMap                      `gorm:"column:metadata;type:jsonb"`
	IPAddress               *string                      `gorm:"column:ip_address"`
	UserAgent               *string                      `gorm:"column:user_agent"`
	CreatedAt               time.Time                    `gorm:"column:created_at;index"`
}

func (AuditLog) TableName() string { return "audit_logs" }
