package user

import (
	"strings"

	"github.com/frahmantamala/ldc-construction/internal/core/common/validation"
	"github.com/frahmantamala/ldc-construction/internal/tenancy"
)

type LinkVolunteerDTO struct {
	VolunteerID string `json:"volunteerId"`
}

func (dto *LinkVolunteerDTO) Validate() error {
	dto.VolunteerID = strings.TrimSpace(dto.VolunteerID)
	v := validation.NewValidator()
	v.Field("volunteerId", dto.VolunteerID).Required().MaxLength(26)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type ProfileResponse struct {
	User  *User          `json:"user"`
	Scope *tenancy.Scope `json:"scope"`
}

type LinkVolunteerResponse struct {
	User        *User  `json:"user"`
	VolunteerID string `json:"volunteerId"`
	Message     string `json:"message"`
}
