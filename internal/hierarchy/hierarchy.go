package hierarchy

import (
	"time"

	hierarchyDatamodel "github.com/frahmantamala/ldc-construction/internal/core/datamodel/hierarchy"
)

type Level string

const (
	LevelAll                Level = "all"
	LevelBranches           Level = "branches"
	LevelZones              Level = "zones"
	LevelRegions            Level = "regions"
	LevelConstructionGroups Level = "construction-groups"
)

// ParseLevel accepts "cgs" as an alias for construction groups. An empty
// value means all levels.
func ParseLevel(s string) (Level, bool) {
	switch s {
	case "", string(LevelAll):
		return LevelAll, true
	case string(LevelBranches), string(LevelZones), string(LevelRegions):
		return Level(s), true
	case string(LevelConstructionGroups), "cgs":
		return LevelConstructionGroups, true
	default:
		return "", false
	}
}

type Ref struct {
	ID   string `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

type Branch struct {
	ID          string `json:"id"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IsActive    bool   `json:"isActive"`
}

type Zone struct {
	ID          string `json:"id"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	BranchID    string `json:"branchId"`
	IsActive    bool   `json:"isActive"`
}

type Region struct {
	ID          string `json:"id"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	ZoneID      string `json:"zoneId"`
	Zone        *Ref   `json:"zone,omitempty"`
	IsActive    bool   `json:"isActive"`
}

type ConstructionGroup struct {
	ID          string    `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	RegionID    string    `json:"regionId"`
	Region      *Ref      `json:"region,omitempty"`
	Zone        *Ref      `json:"zone,omitempty"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// DependencyCounts are the active rows still pointing at a construction
// group.
type DependencyCounts struct {
	Users      int64 `json:"users" db:"users"`
	Volunteers int64 `json:"volunteers" db:"volunteers"`
	TradeTeams int64 `json:"tradeTeams" db:"trade_teams"`
	Projects   int64 `json:"projects" db:"projects"`
}

func (c DependencyCounts) Total() int64 {
	return c.Users + c.Volunteers + c.TradeTeams + c.Projects
}

func BranchFromDataModel(b *hierarchyDatamodel.Branch) Branch {
	return Branch{ID: b.ID, Code: b.Code, Name: b.Name, Description: b.Description, IsActive: b.IsActive}
}

func ZoneFromDataModel(z *hierarchyDatamodel.Zone) Zone {
	return Zone{ID: z.ID, Code: z.Code, Name: z.Name, Description: z.Description, BranchID: z.BranchID, IsActive: z.IsActive}
}

func RegionFromDataModel(r *hierarchyDatamodel.Region) Region {
	region := Region{ID: r.ID, Code: r.Code, Name: r.Name, Description: r.Description, ZoneID: r.ZoneID, IsActive: r.IsActive}
	if r.Zone != nil {
		region.Zone = &Ref{ID: r.Zone.ID, Code: r.Zone.Code, Name: r.Zone.Name}
	}
	return region
}

func FromDataModel(cg *hierarchyDatamodel.ConstructionGroup) ConstructionGroup {
	out := ConstructionGroup{
		ID:          cg.ID,
		Code:        cg.Code,
		Name:        cg.Name,
		Description: cg.Description,
		RegionID:    cg.RegionID,
		IsActive:    cg.IsActive,
		CreatedAt:   cg.CreatedAt,
		UpdatedAt:   cg.UpdatedAt,
	}
	if r := cg.Region; r != nil {
		out.Region = &Ref{ID: r.ID, Code: r.Code, Name: r.Name}
		if z := r.Zone; z != nil {
			out.Zone = &Ref{ID: z.ID, Code: z.Code, Name: z.Name}
		}
	}
	return out
}

func (cg ConstructionGroup) auditValues() map[string]interface{} {
	return map[string]interface{}{
		"code":        cg.Code,
		"name":        cg.Name,
		"description": cg.Description,
		"regionId":    cg.RegionID,
		"isActive":    cg.IsActive,
	}
}
