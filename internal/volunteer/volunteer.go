package volunteer

import (
	"time"

	volunteerDatamodel "github.com/frahmantamala/ldc-construction/internal/core/datamodel/volunteer"
)

type Volunteer struct {
	ID                  string    `json:"id"`
	FirstName           string    `json:"firstName"`
	LastName            string    `json:"lastName"`
	Email               string    `json:"email,omitempty"`
	ConstructionGroupID string    `json:"constructionGroupId,omitempty"`
	UserID              string    `json:"userId,omitempty"`
	IsActive            bool      `json:"isActive"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

func (v Volunteer) FullName() string {
	return v.FirstName + " " + v.LastName
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func FromDataModel(v *volunteerDatamodel.Volunteer) Volunteer {
	return Volunteer{
		ID:                  v.ID,
		FirstName:           v.FirstName,
		LastName:            v.LastName,
		Email:               v.Email,
		ConstructionGroupID: deref(v.ConstructionGroupID),
		UserID:              deref(v.UserID),
		IsActive:            v.IsActive,
		CreatedAt:           v.CreatedAt,
		UpdatedAt:           v.UpdatedAt,
	}
}
