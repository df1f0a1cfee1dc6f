// Package seed creates the reference hierarchy and demo principals. The
// seed command and repository tests share it.
package seed

import (
	"context"
	"fmt"

	"github.com/frahmantamala/ldc-construction/internal/core/datamodel/hierarchy"
	userDatamodel "github.com/frahmantamala/ldc-construction/internal/core/datamodel/user"
	volunteerDatamodel "github.com/frahmantamala/ldc-construction/internal/core/datamodel/volunteer"
	"github.com/frahmantamala/ldc-construction/internal/core/ids"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	BranchCode = "US"
	Region0112 = "01.12"
	Region0205 = "02.05"
	CG0112     = "CG 01.12"
	CG0205     = "CG 02.05"

	DefaultPassword = "password"
)

type Options struct {
	Password   string
	BCryptCost int
}

// Result maps codes and emails onto the ids that were created or found.
type Result struct {
	BranchID string
	Zones    map[string]string
	Regions  map[string]string
	CGs      map[string]string
	Users    map[string]string
}

type demoUser struct {
	Email  string
	Name   string
	Role   string
	CGCode string
	Zone   string
}

var demoUsers = []demoUser{
	{Email: "superadmin@ldc.local", Name: "Super Admin", Role: "SUPER_ADMIN"},
	{Email: "zone01@ldc.local", Name: "Zone 01 Overseer", Role: "ZONE_OVERSEER", Zone: "01"},
	{Email: "cgo.0112@ldc.local", Name: "CG 01.12 Overseer", Role: "CONSTRUCTION_GROUP_OVERSEER", CGCode: CG0112},
	{Email: "pc.0205@ldc.local", Name: "CG 02.05 Personnel Contact", Role: "PERSONNEL_CONTACT", CGCode: CG0205},
	{Email: "readonly.0112@ldc.local", Name: "CG 01.12 Read Only", Role: "READ_ONLY", CGCode: CG0112},
	{Email: "unassigned@ldc.local", Name: "Unassigned Reader", Role: "READ_ONLY"},
}

var demoVolunteers = []struct {
	First, Last, Email, CGCode string
}{
	{"Anna", "Keller", "anna.keller@example.org", CG0112},
	{"Ben", "Ortiz", "ben.ortiz@example.org", CG0112},
	{"Chloe", "Nakamura", "chloe.nakamura@example.org", CG0205},
}

// Run is idempotent: rows are matched by their natural keys.
func Run(ctx context.Context, db *gorm.DB, opts Options) (*Result, error) {
	if opts.Password == "" {
		opts.Password = DefaultPassword
	}
	if opts.BCryptCost == 0 {
		opts.BCryptCost = bcrypt.DefaultCost
	}

	res := &Result{
		Zones:   map[string]string{},
		Regions: map[string]string{},
		CGs:     map[string]string{},
		Users:   map[string]string{},
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := Hierarchy(tx, res); err != nil {
			return err
		}
		if err := users(tx, res, opts); err != nil {
			return err
		}
		return volunteers(tx, res)
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Hierarchy creates the US branch, zones 01 to 05, regions 01.12 and 02.05
// and one construction group per region.
func Hierarchy(tx *gorm.DB, res *Result) error {
	var branch hierarchy.Branch
	if err := tx.Where(hierarchy.Branch{Code: BranchCode}).
		Attrs(hierarchy.Branch{ID: ids.New(), Name: "United States Branch", Description: "United States Branch Office", IsActive: true}).
		FirstOrCreate(&branch).Error; err != nil {
		return fmt.Errorf("seed branch: %w", err)
	}
	res.BranchID = branch.ID

	for i := 1; i <= 5; i++ {
		code := fmt.Sprintf("%02d", i)
		var zone hierarchy.Zone
		if err := tx.Where(hierarchy.Zone{Code: code}).
			Attrs(hierarchy.Zone{ID: ids.New(), Name: fmt.Sprintf("Zone %d", i), BranchID: branch.ID, IsActive: true}).
			FirstOrCreate(&zone).Error; err != nil {
			return fmt.Errorf("seed zone %s: %w", code, err)
		}
		res.Zones[code] = zone.ID
	}

	regions := []struct{ Code, Zone string }{{Region0112, "01"}, {Region0205, "02"}}
	for _, r := range regions {
		var region hierarchy.Region
		if err := tx.Where(hierarchy.Region{Code: r.Code}).
			Attrs(hierarchy.Region{ID: ids.New(), Name: "Region " + r.Code, ZoneID: res.Zones[r.Zone], IsActive: true}).
			FirstOrCreate(&region).Error; err != nil {
			return fmt.Errorf("seed region %s: %w", r.Code, err)
		}
		res.Regions[r.Code] = region.ID
	}

	cgs := []struct{ Code, Region string }{{CG0112, Region0112}, {CG0205, Region0205}}
	for _, c := range cgs {
		var cg hierarchy.ConstructionGroup
		if err := tx.Where(hierarchy.ConstructionGroup{Code: c.Code}).
			Attrs(hierarchy.ConstructionGroup{ID: ids.New(), Name: "Construction Group " + c.Region, RegionID: res.Regions[c.Region], IsActive: true}).
			FirstOrCreate(&cg).Error; err != nil {
			return fmt.Errorf("seed construction group %s: %w", c.Code, err)
		}
		res.CGs[c.Code] = cg.ID
	}
	return nil
}

func optional(m map[string]string, key string) *string {
	if key == "" {
		return nil
	}
	id := m[key]
	return &id
}

func users(tx *gorm.DB, res *Result, opts Options) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(opts.Password), opts.BCryptCost)
	if err != nil {
		return fmt.Errorf("hash seed password: %w", err)
	}

	for _, u := range demoUsers {
		var row userDatamodel.User
		if err := tx.Where(userDatamodel.User{Email: u.Email}).
			Attrs(userDatamodel.User{
				ID:                  ids.New(),
				Name:                u.Name,
				PasswordHash:        string(hash),
				Role:                u.Role,
				ConstructionGroupID: optional(res.CGs, u.CGCode),
				ZoneID:              optional(res.Zones, u.Zone),
				IsActive:            true,
			}).
			FirstOrCreate(&row).Error; err != nil {
			return fmt.Errorf("seed user %s: %w", u.Email, err)
		}
		res.Users[u.Email] = row.ID
	}
	return nil
}

func volunteers(tx *gorm.DB, res *Result) error {
	for _, v := range demoVolunteers {
		var row volunteerDatamodel.Volunteer
		if err := tx.Where(volunteerDatamodel.Volunteer{Email: v.Email}).
			Attrs(volunteerDatamodel.Volunteer{
				ID:                  ids.New(),
				FirstName:           v.First,
				LastName:            v.Last,
				ConstructionGroupID: optional(res.CGs, v.CGCode),
				IsActive:            true,
			}).
			FirstOrCreate(&row).Error; err != nil {
			return fmt.Errorf("seed volunteer %s: %w", v.Email, err)
		}
	}
	return nil
}
