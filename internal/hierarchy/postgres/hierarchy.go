package postgres

import (
	"context"
	"errors"

	hierarchyDatamodel "github.com/frahmantamala/ldc-construction/internal/core/datamodel/hierarchy"
	"github.com/frahmantamala/ldc-construction/internal/hierarchy"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type HierarchyRepository struct {
	db *gorm.DB
}

func NewHierarchyRepository(db *gorm.DB) hierarchy.RepositoryAPI {
	return &HierarchyRepository{db: db}
}

func (r *HierarchyRepository) ListBranches(ctx context.Context, branchID string) ([]*hierarchyDatamodel.Branch, error) {
	var branches []*hierarchyDatamodel.Branch
	tx := r.db.WithContext(ctx).Where("is_active = ?", true)
	if branchID != "" {
		tx = tx.Where("id = ?", branchID)
	}
	err := tx.Order("code ASC").Find(&branches).Error
	return branches, err
}

func (r *HierarchyRepository) ListZones(ctx context.Context, zoneID string) ([]*hierarchyDatamodel.Zone, error) {
	var zones []*hierarchyDatamodel.Zone
	tx := r.db.WithContext(ctx).Where("is_active = ?", true)
	if zoneID != "" {
		tx = tx.Where("id = ?", zoneID)
	}
	err := tx.Order("code ASC").Find(&zones).Error
	return zones, err
}

func (r *HierarchyRepository) ListRegions(ctx context.Context, q hierarchy.RegionQuery) ([]*hierarchyDatamodel.Region, error) {
	var regions []*hierarchyDatamodel.Region
	tx := r.db.WithContext(ctx).Preload("Zone").Where("is_active = ?", true)
	if q.ZoneID != "" {
		tx = tx.Where("zone_id = ?", q.ZoneID)
	}
	if q.RegionID != "" {
		tx = tx.Where("id = ?", q.RegionID)
	}
	err := tx.Order("code ASC").Find(&regions).Error
	return regions, err
}

// ListConstructionGroups orders by zone code, region code, then group code.
func (r *HierarchyRepository) ListConstructionGroups(ctx context.Context, q hierarchy.CGQuery) ([]*hierarchyDatamodel.ConstructionGroup, error) {
	var groups []*hierarchyDatamodel.ConstructionGroup
	tx := r.db.WithContext(ctx).
		Preload("Region.Zone").
		Joins("JOIN regions ON regions.id = construction_groups.region_id").
		Joins("JOIN zones ON zones.id = regions.zone_id").
		Where("construction_groups.is_active = ?", true)
	if q.ZoneID != "" {
		tx = tx.Where("regions.zone_id = ?", q.ZoneID)
	}
	if q.ID != "" {
		tx = tx.Where("construction_groups.id = ?", q.ID)
	}
	err := tx.
		Order("zones.code ASC").
		Order("regions.code ASC").
		Order("construction_groups.code ASC").
		Find(&groups).Error
	return groups, err
}

func (r *HierarchyRepository) GetConstructionGroup(ctx context.Context, id string) (*hierarchyDatamodel.ConstructionGroup, error) {
	var cg hierarchyDatamodel.ConstructionGroup
	err := r.db.WithContext(ctx).Preload("Region.Zone").Where("id = ?", id).First(&cg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cg, nil
}

func (r *HierarchyRepository) GetConstructionGroupByCode(ctx context.Context, code string) (*hierarchyDatamodel.ConstructionGroup, error) {
	var cg hierarchyDatamodel.ConstructionGroup
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&cg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cg, nil
}

func (r *HierarchyRepository) GetRegion(ctx context.Context, id string) (*hierarchyDatamodel.Region, error) {
	var region hierarchyDatamodel.Region
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&region).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &region, nil
}

func (r *HierarchyRepository) CreateConstructionGroup(ctx context.Context, cg *hierarchyDatamodel.ConstructionGroup) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(cg).Error
}

// UpdateConstructionGroup writes every editable column, including a false
// is_active.
func (r *HierarchyRepository) UpdateConstructionGroup(ctx context.Context, cg *hierarchyDatamodel.ConstructionGroup) error {
	return r.db.WithContext(ctx).
		Model(&hierarchyDatamodel.ConstructionGroup{}).
		Where("id = ?", cg.ID).
		Updates(map[string]interface{}{
			"code":        cg.Code,
			"name":        cg.Name,
			"description": cg.Description,
			"region_id":   cg.RegionID,
			"is_active":   cg.IsActive,
		}).Error
}

func (r *HierarchyRepository) SetConstructionGroupActive(ctx context.Context, id string, active bool) error {
	return r.db.WithContext(ctx).
		Model(&hierarchyDatamodel.ConstructionGroup{}).
		Where("id = ?", id).
		Update("is_active", active).Error
}
