package tenancy

import (
	"context"
	"fmt"
)

// ZoneLookup resolves the zone owning a construction group; "" when the
// group does not exist.
type ZoneLookup interface {
	ZoneOfConstructionGroup(ctx context.Context, cgID string) (string, error)
}

// Policy is the single place where tenant write authorization is decided.
type Policy struct {
	zones ZoneLookup
}

func NewPolicy(zones ZoneLookup) *Policy {
	return &Policy{zones: zones}
}

// CanAccessCG reports whether the principal may read data of cgID.
func (p *Policy) CanAccessCG(ctx context.Context, scope *Scope, cgID string) (bool, error) {
	if scope == nil || cgID == "" {
		return false, nil
	}
	if scope.CanViewAllBranches {
		return true, nil
	}
	if scope.ConstructionGroupID == cgID {
		return true, nil
	}
	if scope.CanViewZoneRegions && scope.ZoneID != "" {
		return p.inZone(ctx, scope.ZoneID, cgID)
	}
	return false, nil
}

// CanManageInCG reports whether the principal may create or modify data
// owned by cgID. Zone-level managers are checked against the database.
func (p *Policy) CanManageInCG(ctx context.Context, scope *Scope, cgID string) (bool, error) {
	if scope == nil || cgID == "" || !scope.CanManageCG {
		return false, nil
	}
	if scope.CanViewAllBranches {
		return true, nil
	}
	if scope.CanViewZoneRegions && scope.ZoneID != "" {
		return p.inZone(ctx, scope.ZoneID, cgID)
	}
	return scope.ConstructionGroupID == cgID, nil
}

func (p *Policy) inZone(ctx context.Context, zoneID, cgID string) (bool, error) {
	if p.zones == nil {
		return false, nil
	}
	got, err := p.zones.ZoneOfConstructionGroup(ctx, cgID)
	if err != nil {
		return false, fmt.Errorf("lookup zone of construction group: %w", err)
	}
	return got != "" && got == zoneID, nil
}

// EffectiveCGID picks the construction group new records are written to.
// Only a super admin may act through a selected group.
func EffectiveCGID(scope *Scope, selected string) string {
	if scope == nil {
		return ""
	}
	if scope.CanViewAllBranches && selected != "" {
		return selected
	}
	return scope.ConstructionGroupID
}
