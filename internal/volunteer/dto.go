package volunteer

import (
	"regexp"
	"strings"

	"github.com/frahmantamala/ldc-construction/internal/core/common/validation"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

type CreateVolunteerDTO struct {
	FirstName           string `json:"firstName"`
	LastName            string `json:"lastName"`
	Email               string `json:"email"`
	ConstructionGroupID string `json:"constructionGroupId"`
}

func (dto *CreateVolunteerDTO) Normalize() {
	dto.FirstName = strings.TrimSpace(dto.FirstName)
	dto.LastName = strings.TrimSpace(dto.LastName)
	dto.Email = strings.ToLower(strings.TrimSpace(dto.Email))
	dto.ConstructionGroupID = strings.TrimSpace(dto.ConstructionGroupID)
}

func (dto CreateVolunteerDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("firstName", dto.FirstName).Required().MaxLength(100)
	v.Field("lastName", dto.LastName).Required().MaxLength(100)
	if dto.Email != "" {
		v.Field("email", dto.Email).MaxLength(255).Matches(emailPattern, "must be a valid email address")
	}
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type TransferDTO struct {
	ToConstructionGroupID string `json:"toConstructionGroupId"`
}

func (dto TransferDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("toConstructionGroupId", strings.TrimSpace(dto.ToConstructionGroupID)).Required()
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type ListResponse struct {
	Volunteers []Volunteer `json:"volunteers"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
}

type TransferResponse struct {
	Volunteer Volunteer `json:"volunteer"`
	Message   string    `json:"message"`
}
