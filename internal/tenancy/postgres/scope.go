package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/frahmantamala/ldc-construction/internal/tenancy"
	"gorm.io/gorm"
)

type ScopeRepository struct {
	db *gorm.DB
}

func NewScopeRepository(db *gorm.DB) *ScopeRepository {
	return &ScopeRepository{db: db}
}

type principalRow struct {
	UserID       string  `gorm:"column:user_id"`
	Role         string  `gorm:"column:role"`
	IsActive     bool    `gorm:"column:is_active"`
	CGID         *string `gorm:"column:cg_id"`
	RegionID     *string `gorm:"column:region_id"`
	ZoneID       *string `gorm:"column:zone_id"`
	BranchID     *string `gorm:"column:branch_id"`
	DirectZone   *string `gorm:"column:d_zone_id"`
	DirectBranch *string `gorm:"column:d_branch"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// FindPrincipal loads the user with its CG → Region → Zone chain in one
// query. A user without a CG falls back to its direct zone assignment.
func (r *ScopeRepository) FindPrincipal(ctx context.Context, userID string) (*tenancy.PrincipalRecord, error) {
	var row principalRow
	err := r.db.WithContext(ctx).Raw(`
SELECT u.id AS user_id, u.role, u.is_active,
       cg.id AS cg_id, rg.id AS region_id, z.id AS zone_id, z.branch_id AS branch_id,
       dz.id AS d_zone_id, dz.branch_id AS d_branch
FROM users u
LEFT JOIN construction_groups cg ON cg.id = u.construction_group_id
LEFT JOIN regions rg ON rg.id = cg.region_id
LEFT JOIN zones z ON z.id = rg.zone_id
LEFT JOIN zones dz ON dz.id = u.zone_id
WHERE u.id = ?`, userID).Scan(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if row.UserID == "" {
		return nil, nil
	}

	rec := &tenancy.PrincipalRecord{
		UserID:              row.UserID,
		Role:                row.Role,
		IsActive:            row.IsActive,
		ConstructionGroupID: deref(row.CGID),
		RegionID:            deref(row.RegionID),
		ZoneID:              deref(row.ZoneID),
		BranchID:            deref(row.BranchID),
	}
	if rec.ConstructionGroupID == "" && row.DirectZone != nil {
		rec.ZoneID = *row.DirectZone
		rec.BranchID = deref(row.DirectBranch)
	}
	return rec, nil
}

// ZoneOfConstructionGroup returns the zone id owning cgID, or "" when the
// group does not exist.
func (r *ScopeRepository) ZoneOfConstructionGroup(ctx context.Context, cgID string) (string, error) {
	var zoneID sql.NullString
	row := r.db.WithContext(ctx).Raw(`
SELECT rg.zone_id FROM construction_groups cg
JOIN regions rg ON rg.id = cg.region_id
WHERE cg.id = ?`, cgID).Row()
	if err := row.Scan(&zoneID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	return zoneID.String, nil
}
