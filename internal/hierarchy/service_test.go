package hierarchy_test

import (
	"context"
	"errors"
	"net/http"

	"github.com/frahmantamala/ldc-construction/internal"
	"github.com/frahmantamala/ldc-construction/internal/audit"
	"github.com/frahmantamala/ldc-construction/internal/core/datamodel"
	hierarchyDatamodel "github.com/frahmantamala/ldc-construction/internal/core/datamodel/hierarchy"
	"github.com/frahmantamala/ldc-construction/internal/core/ids"
	"github.com/frahmantamala/ldc-construction/internal/core/seed"
	"github.com/frahmantamala/ldc-construction/internal/hierarchy"
	hierarchyPostgres "github.com/frahmantamala/ldc-construction/internal/hierarchy/postgres"
	"github.com/frahmantamala/ldc-construction/internal/tenancy"
	tenancyPostgres "github.com/frahmantamala/ldc-construction/internal/tenancy/postgres"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func strPtr(s string) *string { return &s }

func statusOf(err error) int {
	appErr, ok := internal.IsAppError(err)
	if !ok {
		return 0
	}
	return appErr.StatusCode
}

var _ = Describe("Service", func() {
	var (
		ctx     context.Context
		db      *gorm.DB
		fixture *seed.Result
		counter *fakeCounter
		store   *auditLogStore
		svc     *hierarchy.Service

		superAdmin *tenancy.Scope
		zone01     *tenancy.Scope
		cgOverseer *tenancy.Scope
		readOnly   *tenancy.Scope
		unassigned *tenancy.Scope
	)

	BeforeEach(func() {
		var err error
		ctx = context.Background()
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger:                                   logger.Default.LogMode(logger.Silent),
			DisableForeignKeyConstraintWhenMigrating: true,
			TranslateError:                           true,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(db.AutoMigrate(datamodel.All()...)).To(Succeed())

		fixture, err = seed.Run(ctx, db, seed.Options{BCryptCost: bcrypt.MinCost})
		Expect(err).NotTo(HaveOccurred())

		lg := discardLogger()
		counter = &fakeCounter{counts: map[string]hierarchy.DependencyCounts{}}
		store = &auditLogStore{}
		recorder := audit.NewRecorder(audit.NewSyncSink(store, lg), lg)
		policy := tenancy.NewPolicy(tenancyPostgres.NewScopeRepository(db))
		svc = hierarchy.NewService(hierarchyPostgres.NewHierarchyRepository(db), counter, policy, recorder, lg)

		cg0112 := fixture.CGs[seed.CG0112]
		superAdmin = tenancy.NewScope(fixture.Users["superadmin@ldc.local"], tenancy.RoleSuperAdmin, "", "", "", "")
		zone01 = tenancy.NewScope(fixture.Users["zone01@ldc.local"], tenancy.RoleZoneOverseer, "", "", fixture.Zones["01"], fixture.BranchID)
		cgOverseer = tenancy.NewScope(fixture.Users["cgo.0112@ldc.local"], tenancy.RoleCGOverseer,
			cg0112, fixture.Regions[seed.Region0112], fixture.Zones["01"], fixture.BranchID)
		readOnly = tenancy.NewScope(fixture.Users["readonly.0112@ldc.local"], tenancy.RoleReadOnly,
			cg0112, fixture.Regions[seed.Region0112], fixture.Zones["01"], fixture.BranchID)
		unassigned = tenancy.NewScope(fixture.Users["unassigned@ldc.local"], tenancy.RoleReadOnly, "", "", "", "")
	})

	codes := func(groups []hierarchy.ConstructionGroup) []string {
		out := make([]string, 0, len(groups))
		for _, g := range groups {
			out = append(out, g.Code)
		}
		return out
	}

	Describe("AccessibleConstructionGroups", func() {
		It("returns every active group to a super admin, ordered by zone, region and code", func() {
			groups, err := svc.AccessibleConstructionGroups(ctx, superAdmin)
			Expect(err).NotTo(HaveOccurred())
			Expect(codes(groups)).To(Equal([]string{seed.CG0112, seed.CG0205}))
			Expect(groups[0].Region).NotTo(BeNil())
			Expect(groups[0].Region.Code).To(Equal(seed.Region0112))
			Expect(groups[0].Zone.Code).To(Equal("01"))
		})

		It("limits a zone overseer to the groups of their zone", func() {
			groups, err := svc.AccessibleConstructionGroups(ctx, zone01)
			Expect(err).NotTo(HaveOccurred())
			Expect(codes(groups)).To(Equal([]string{seed.CG0112}))
		})

		It("limits a group member to their own group", func() {
			groups, err := svc.AccessibleConstructionGroups(ctx, cgOverseer)
			Expect(err).NotTo(HaveOccurred())
			Expect(codes(groups)).To(Equal([]string{seed.CG0112}))
		})

		It("returns an empty list for a principal without a tenant", func() {
			groups, err := svc.AccessibleConstructionGroups(ctx, unassigned)
			Expect(err).NotTo(HaveOccurred())
			Expect(groups).NotTo(BeNil())
			Expect(groups).To(BeEmpty())
		})

		It("hides deactivated groups", func() {
			_, err := svc.DeleteConstructionGroup(ctx, superAdmin, fixture.CGs[seed.CG0205])
			Expect(err).NotTo(HaveOccurred())

			groups, err := svc.AccessibleConstructionGroups(ctx, superAdmin)
			Expect(err).NotTo(HaveOccurred())
			Expect(codes(groups)).To(Equal([]string{seed.CG0112}))
		})
	})

	Describe("Hierarchy", func() {
		It("returns every level and the scope for a super admin", func() {
			resp, err := svc.Hierarchy(ctx, superAdmin, hierarchy.LevelAll)
			Expect(err).NotTo(HaveOccurred())
			Expect(*resp.Branches).To(HaveLen(1))
			Expect(*resp.Zones).To(HaveLen(5))
			Expect(*resp.Regions).To(HaveLen(2))
			Expect(*resp.ConstructionGroups).To(HaveLen(2))
			Expect(resp.Scope).NotTo(BeNil())
			Expect(resp.Scope.CanViewAllBranches).To(BeTrue())
		})

		It("narrows every level to the zone of a zone overseer", func() {
			resp, err := svc.Hierarchy(ctx, zone01, hierarchy.LevelAll)
			Expect(err).NotTo(HaveOccurred())
			Expect(*resp.Branches).To(HaveLen(1))
			Expect(*resp.Zones).To(HaveLen(1))
			Expect((*resp.Zones)[0].Code).To(Equal("01"))
			Expect(*resp.Regions).To(HaveLen(1))
			Expect((*resp.Regions)[0].Code).To(Equal(seed.Region0112))
			Expect(*resp.ConstructionGroups).To(HaveLen(1))
		})

		It("narrows regions to the own region of a group member", func() {
			resp, err := svc.Hierarchy(ctx, cgOverseer, hierarchy.LevelRegions)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Branches).To(BeNil())
			Expect(resp.Scope).To(BeNil())
			Expect(*resp.Regions).To(HaveLen(1))
			Expect((*resp.Regions)[0].Zone.Code).To(Equal("01"))
		})

		It("returns empty levels to a principal without a tenant", func() {
			resp, err := svc.Hierarchy(ctx, unassigned, hierarchy.LevelAll)
			Expect(err).NotTo(HaveOccurred())
			Expect(*resp.Branches).To(BeEmpty())
			Expect(*resp.Zones).To(BeEmpty())
			Expect(*resp.Regions).To(BeEmpty())
			Expect(*resp.ConstructionGroups).To(BeEmpty())
		})

		It("requires a scope", func() {
			_, err := svc.Hierarchy(ctx, nil, hierarchy.LevelAll)
			Expect(err).To(MatchError(internal.ErrScopeUnavailable))
		})
	})

	Describe("GetConstructionGroup", func() {
		It("returns 404 for an unknown id", func() {
			_, err := svc.GetConstructionGroup(ctx, superAdmin, "01HZZZZZZZZZZZZZZZZZZZZZZZ")
			Expect(err).To(MatchError(internal.ErrCGNotFound))
		})

		It("denies a group the principal cannot see", func() {
			_, err := svc.GetConstructionGroup(ctx, cgOverseer, fixture.CGs[seed.CG0205])
			Expect(err).To(MatchError(internal.ErrCGAccessDenied))
		})

		It("lets a zone overseer read a group of their zone", func() {
			resp, err := svc.GetConstructionGroup(ctx, zone01, fixture.CGs[seed.CG0112])
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.ConstructionGroup.Code).To(Equal(seed.CG0112))
		})

		It("includes dependency counts for managers only", func() {
			cgID := fixture.CGs[seed.CG0112]
			counter.counts[cgID] = hierarchy.DependencyCounts{Volunteers: 2, Users: 2}

			resp, err := svc.GetConstructionGroup(ctx, superAdmin, cgID)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Dependencies).NotTo(BeNil())
			Expect(resp.Dependencies.Volunteers).To(Equal(int64(2)))

			resp, err = svc.GetConstructionGroup(ctx, readOnly, cgID)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Dependencies).To(BeNil())
		})
	})

	Describe("CreateConstructionGroup", func() {
		var dto hierarchy.CreateConstructionGroupDTO

		BeforeEach(func() {
			dto = hierarchy.CreateConstructionGroupDTO{Code: "CG 01.13", RegionID: fixture.Regions[seed.Region0112]}
		})

		It("is restricted to super admins", func() {
			_, _, err := svc.CreateConstructionGroup(ctx, zone01, dto)
			Expect(err).To(MatchError(internal.ErrSuperAdminOnly))
			Expect(store.Actions()).To(BeEmpty())
		})

		It("rejects an invalid code", func() {
			dto.Code = "CG/01"
			_, _, err := svc.CreateConstructionGroup(ctx, superAdmin, dto)
			Expect(statusOf(err)).To(Equal(http.StatusBadRequest))
		})

		It("rejects an unknown region", func() {
			dto.RegionID = "01HZZZZZZZZZZZZZZZZZZZZZZZ"
			_, _, err := svc.CreateConstructionGroup(ctx, superAdmin, dto)
			Expect(err).To(MatchError(internal.ErrRegionNotFound))
		})

		It("rejects a code held by an active group", func() {
			dto.Code = seed.CG0112
			_, _, err := svc.CreateConstructionGroup(ctx, superAdmin, dto)
			Expect(err).To(MatchError(internal.ErrCGCodeConflict))
			Expect(store.Actions()).To(BeEmpty())
		})

		It("creates the group, defaults the name to the code and records CG_CREATED", func() {
			resp, created, err := svc.CreateConstructionGroup(ctx, superAdmin, dto)
			Expect(err).NotTo(HaveOccurred())
			Expect(created).To(BeTrue())
			Expect(resp.ConstructionGroup.Name).To(Equal("CG 01.13"))
			Expect(resp.ConstructionGroup.IsActive).To(BeTrue())
			Expect(resp.ConstructionGroup.Zone.Code).To(Equal("01"))

			Expect(store.Actions()).To(Equal([]string{string(audit.ActionCGCreated)}))
			last := store.Last()
			Expect(*last.ResourceID).To(Equal(resp.ConstructionGroup.ID))
			Expect(*last.UserID).To(Equal(superAdmin.UserID))
		})

		It("reactivates an inactive group holding the same code", func() {
			cgID := fixture.CGs[seed.CG0205]
			_, err := svc.DeleteConstructionGroup(ctx, superAdmin, cgID)
			Expect(err).NotTo(HaveOccurred())

			dto.Code = seed.CG0205
			dto.Name = "Renamed"
			resp, created, err := svc.CreateConstructionGroup(ctx, superAdmin, dto)
			Expect(err).NotTo(HaveOccurred())
			Expect(created).To(BeFalse())
			Expect(resp.ConstructionGroup.ID).To(Equal(cgID))
			Expect(resp.ConstructionGroup.IsActive).To(BeTrue())
			Expect(resp.ConstructionGroup.Name).To(Equal("Renamed"))
			Expect(resp.ConstructionGroup.RegionID).To(Equal(fixture.Regions[seed.Region0112]))

			Expect(store.Actions()).To(Equal([]string{
				string(audit.ActionCGDeleted),
				string(audit.ActionCGReactivated),
			}))
		})
	})

	Describe("UpdateConstructionGroup", func() {
		var dto hierarchy.UpdateConstructionGroupDTO

		BeforeEach(func() {
			dto = hierarchy.UpdateConstructionGroupDTO{
				Code:     seed.CG0112,
				Name:     "North Group",
				RegionID: fixture.Regions[seed.Region0112],
			}
		})

		It("updates the group and records old and new values", func() {
			resp, err := svc.UpdateConstructionGroup(ctx, superAdmin, fixture.CGs[seed.CG0112], dto)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.ConstructionGroup.Name).To(Equal("North Group"))

			last := store.Last()
			Expect(last.Action).To(Equal(string(audit.ActionCGUpdated)))
			Expect(last.OldValues).To(HaveKeyWithValue("name", "Construction Group 01.12"))
			Expect(last.NewValues).To(HaveKeyWithValue("name", "North Group"))
		})

		It("rejects a code already used by another group", func() {
			dto.Code = seed.CG0205
			_, err := svc.UpdateConstructionGroup(ctx, superAdmin, fixture.CGs[seed.CG0112], dto)
			Expect(err).To(MatchError(internal.ErrCGCodeConflict))
		})

		It("returns 404 for an unknown group", func() {
			_, err := svc.UpdateConstructionGroup(ctx, superAdmin, "01HZZZZZZZZZZZZZZZZZZZZZZZ", dto)
			Expect(err).To(MatchError(internal.ErrCGNotFound))
		})

		It("leaves activation to delete and reactivate", func() {
			cgID := fixture.CGs[seed.CG0112]
			counter.counts[cgID] = hierarchy.DependencyCounts{Users: 2}

			resp, err := svc.UpdateConstructionGroup(ctx, superAdmin, cgID, dto)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.ConstructionGroup.IsActive).To(BeTrue())
			Expect(store.Actions()).To(Equal([]string{string(audit.ActionCGUpdated)}))
			Expect(store.Last().NewValues).To(HaveKeyWithValue("isActive", true))
		})
	})

	Describe("DeleteConstructionGroup", func() {
		It("refuses while active dependencies exist and records nothing", func() {
			cgID := fixture.CGs[seed.CG0112]
			counter.counts[cgID] = hierarchy.DependencyCounts{Users: 2, Volunteers: 2}

			_, err := svc.DeleteConstructionGroup(ctx, superAdmin, cgID)
			Expect(statusOf(err)).To(Equal(http.StatusConflict))
			appErr, _ := internal.IsAppError(err)
			Expect(appErr.Code).To(Equal(internal.ErrCodeCGHasDependencies))
			Expect(appErr.Details).To(Equal(hierarchy.DependencyCounts{Users: 2, Volunteers: 2}))
			Expect(store.Actions()).To(BeEmpty())

			groups, err := svc.AccessibleConstructionGroups(ctx, superAdmin)
			Expect(err).NotTo(HaveOccurred())
			Expect(groups).To(HaveLen(2))
		})

		It("deactivates an unreferenced group and records CG_DELETED", func() {
			resp, err := svc.DeleteConstructionGroup(ctx, superAdmin, fixture.CGs[seed.CG0205])
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.ConstructionGroup.IsActive).To(BeFalse())
			Expect(store.Actions()).To(Equal([]string{string(audit.ActionCGDeleted)}))
		})

		It("treats an already inactive group as missing", func() {
			cgID := fixture.CGs[seed.CG0205]
			_, err := svc.DeleteConstructionGroup(ctx, superAdmin, cgID)
			Expect(err).NotTo(HaveOccurred())

			_, err = svc.DeleteConstructionGroup(ctx, superAdmin, cgID)
			Expect(err).To(MatchError(internal.ErrCGNotFound))
		})

		It("surfaces counter failures as internal errors", func() {
			counter.err = errors.New("connection reset")
			_, err := svc.DeleteConstructionGroup(ctx, superAdmin, fixture.CGs[seed.CG0112])
			Expect(statusOf(err)).To(Equal(http.StatusInternalServerError))
		})

		It("is restricted to super admins", func() {
			_, err := svc.DeleteConstructionGroup(ctx, cgOverseer, fixture.CGs[seed.CG0112])
			Expect(err).To(MatchError(internal.ErrSuperAdminOnly))
			Expect(counter.calls).To(BeZero())
		})
	})

	Describe("SetFilter", func() {
		It("records exactly one filter change", func() {
			target := fixture.CGs[seed.CG0205]
			next, err := svc.SetFilter(ctx, superAdmin, "", hierarchy.CGFilterDTO{ConstructionGroupID: &target})
			Expect(err).NotTo(HaveOccurred())
			Expect(next).To(Equal(target))

			Expect(store.Actions()).To(Equal([]string{string(audit.ActionCGFilterChange)}))
			last := store.Last()
			Expect(last.FromConstructionGroupID).To(BeNil())
			Expect(*last.ToConstructionGroupID).To(Equal(target))
		})

		It("clears the filter on a null id", func() {
			next, err := svc.SetFilter(ctx, superAdmin, fixture.CGs[seed.CG0112], hierarchy.CGFilterDTO{})
			Expect(err).NotTo(HaveOccurred())
			Expect(next).To(BeEmpty())
			Expect(*store.Last().FromConstructionGroupID).To(Equal(fixture.CGs[seed.CG0112]))
		})

		It("keeps an unknown previous cookie out of the from column", func() {
			target := fixture.CGs[seed.CG0112]
			_, err := svc.SetFilter(ctx, superAdmin, "bogus", hierarchy.CGFilterDTO{ConstructionGroupID: &target})
			Expect(err).NotTo(HaveOccurred())

			Expect(store.Actions()).To(Equal([]string{string(audit.ActionCGFilterChange)}))
			last := store.Last()
			Expect(last.FromConstructionGroupID).To(BeNil())
			Expect(*last.ToConstructionGroupID).To(Equal(target))
			Expect(last.Metadata).To(HaveKeyWithValue("previousFilterRaw", "bogus"))
		})

		It("rejects an unknown group", func() {
			_, err := svc.SetFilter(ctx, superAdmin, "", hierarchy.CGFilterDTO{ConstructionGroupID: strPtr("01HZZZZZZZZZZZZZZZZZZZZZZZ")})
			Expect(err).To(MatchError(internal.ErrCGNotFound))
			Expect(store.Actions()).To(BeEmpty())
		})

		It("is restricted to super admins", func() {
			_, err := svc.SetFilter(ctx, cgOverseer, "", hierarchy.CGFilterDTO{})
			Expect(err).To(MatchError(internal.ErrSuperAdminOnly))
		})
	})

	Describe("Info", func() {
		It("describes the selected group for a super admin", func() {
			cgID := fixture.CGs[seed.CG0205]
			info, err := svc.Info(ctx, superAdmin, cgID)
			Expect(err).NotTo(HaveOccurred())
			Expect(info.ConstructionGroupID).To(Equal(cgID))
			Expect(info.Code).To(Equal(seed.CG0205))
			Expect(info.RegionCode).To(Equal(seed.Region0205))
			Expect(info.ActiveFilter).To(Equal(cgID))
		})

		It("does not report the group name as its region", func() {
			orphan := &hierarchyDatamodel.ConstructionGroup{ID: ids.New(), Code: "CG 09.01", Name: "Orphan Group", RegionID: ids.New(), IsActive: true}
			Expect(db.Create(orphan).Error).To(Succeed())

			info, err := svc.Info(ctx, superAdmin, orphan.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(info.Name).To(Equal("Orphan Group"))
			Expect(info.RegionName).To(Equal("No Region"))
			Expect(info.RegionCode).To(BeEmpty())
		})

		It("reports all groups for a super admin without a filter", func() {
			info, err := svc.Info(ctx, superAdmin, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(info.Name).To(Equal("All Construction Groups"))
			Expect(info.RegionName).To(Equal("All Regions"))
		})

		It("ignores the cookie for everyone else", func() {
			info, err := svc.Info(ctx, cgOverseer, fixture.CGs[seed.CG0205])
			Expect(err).NotTo(HaveOccurred())
			Expect(info.Code).To(Equal(seed.CG0112))
			Expect(info.ActiveFilter).To(BeEmpty())
		})

		It("reports no group for an unassigned principal", func() {
			info, err := svc.Info(ctx, unassigned, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(info.Name).To(Equal("No Construction Group"))
			Expect(info.RegionName).To(Equal("No Region"))
		})
	})
})
