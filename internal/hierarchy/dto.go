package hierarchy

import (
	"strings"

	"github.com/frahmantamala/ldc-construction/internal/core/common/validation"
)

type CreateConstructionGroupDTO struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
	RegionID    string `json:"regionId"`
}

func (dto *CreateConstructionGroupDTO) Normalize() {
	dto.Code = strings.TrimSpace(dto.Code)
	dto.Name = strings.TrimSpace(dto.Name)
	dto.Description = strings.TrimSpace(dto.Description)
	dto.RegionID = strings.TrimSpace(dto.RegionID)
	if dto.Name == "" {
		dto.Name = dto.Code
	}
}

func (dto CreateConstructionGroupDTO) Validate() error {
	if err := validation.ValidateConstructionGroupCode(dto.Code); err != nil {
		return err
	}
	v := validation.NewValidator()
	v.Field("regionId", dto.RegionID).Required()
	v.Field("name", dto.Name).MaxLength(255)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type UpdateConstructionGroupDTO struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
	RegionID    string `json:"regionId"`
}

func (dto *UpdateConstructionGroupDTO) Normalize() {
	dto.Code = strings.TrimSpace(dto.Code)
	dto.Name = strings.TrimSpace(dto.Name)
	dto.Description = strings.TrimSpace(dto.Description)
	dto.RegionID = strings.TrimSpace(dto.RegionID)
}

func (dto UpdateConstructionGroupDTO) Validate() error {
	if err := validation.ValidateConstructionGroupCode(dto.Code); err != nil {
		return err
	}
	v := validation.NewValidator()
	v.Field("name", dto.Name).Required().MaxLength(255)
	v.Field("regionId", dto.RegionID).Required()
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// CGFilterDTO selects the construction group a super admin views. A null
// id clears the filter.
type CGFilterDTO struct {
	ConstructionGroupID *string `json:"constructionGroupId"`
}

type CGFilterResponse struct {
	Success             bool   `json:"success"`
	Message             string `json:"message"`
	ConstructionGroupID string `json:"constructionGroupId,omitempty"`
}

type CGInfoResponse struct {
	ConstructionGroupID string `json:"constructionGroupId,omitempty"`
	Code                string `json:"code,omitempty"`
	Name                string `json:"name"`
	RegionCode          string `json:"regionCode,omitempty"`
	RegionName          string `json:"regionName"`
	ActiveFilter        string `json:"activeFilter,omitempty"`
}

type HierarchyScope struct {
	ConstructionGroupID string `json:"constructionGroupId,omitempty"`
	CanViewAllBranches  bool   `json:"canViewAllBranches"`
	CanViewZoneRegions  bool   `json:"canViewZoneRegions"`
}

// HierarchyResponse carries only the levels that were requested.
type HierarchyResponse struct {
	Branches           *[]Branch            `json:"branches,omitempty"`
	Zones              *[]Zone              `json:"zones,omitempty"`
	Regions            *[]Region            `json:"regions,omitempty"`
	ConstructionGroups *[]ConstructionGroup `json:"constructionGroups,omitempty"`
	Scope              *HierarchyScope      `json:"scope,omitempty"`
}

type ConstructionGroupResponse struct {
	ConstructionGroup ConstructionGroup `json:"constructionGroup"`
	Message           string            `json:"message,omitempty"`
	Dependencies      *DependencyCounts `json:"dependencies,omitempty"`
}

type ConstructionGroupsResponse struct {
	ConstructionGroups []ConstructionGroup `json:"constructionGroups"`
}
