package user

import (
	"time"

	userDatamodel "github.com/frahmantamala/ldc-construction/internal/core/datamodel/user"
)

type ConstructionGroupRef struct {
	ID   string `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

type User struct {
	ID                  string                `json:"id"`
	Email               string                `json:"email"`
	Name                string                `json:"name"`
	Role                string                `json:"role"`
	ConstructionGroupID string                `json:"constructionGroupId,omitempty"`
	ConstructionGroup   *ConstructionGroupRef `json:"constructionGroup,omitempty"`
	ZoneID              string                `json:"zoneId,omitempty"`
	IsActive            bool                  `json:"isActive"`
	CreatedAt           time.Time             `json:"createdAt"`
	UpdatedAt           time.Time             `json:"updatedAt"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// FromDataModel never carries the password hash.
func FromDataModel(u *userDatamodel.User) *User {
	out := &User{
		ID:                  u.ID,
		Email:               u.Email,
		Name:                u.Name,
		Role:                u.Role,
		ConstructionGroupID: deref(u.ConstructionGroupID),
		ZoneID:              deref(u.ZoneID),
		IsActive:            u.IsActive,
		CreatedAt:           u.CreatedAt,
		UpdatedAt:           u.UpdatedAt,
	}
	if u.ConstructionGroup != nil {
		out.ConstructionGroup = &ConstructionGroupRef{
			ID:   u.ConstructionGroup.ID,
			Code: u.ConstructionGroup.Code,
			Name: u.ConstructionGroup.Name,
		}
	}
	return out
}
