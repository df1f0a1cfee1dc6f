package tenancy_test

import (
	"github.com/frahmantamala/ldc-construction/internal/tenancy"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Roles", func() {
	It("parses every known role", func() {
		for _, role := range tenancy.Roles() {
			parsed, ok := tenancy.ParseRole(string(role))
			Expect(ok).To(BeTrue(), string(role))
			Expect(parsed).To(Equal(role))
		}
	})

	It("gives unknown roles no capabilities", func() {
		role, ok := tenancy.ParseRole("GALACTIC_EMPEROR")
		Expect(ok).To(BeFalse())
		Expect(role).To(Equal(tenancy.RoleUnknown))
		Expect(role.Capabilities()).To(Equal(tenancy.Capabilities{}))
	})

	It("grants all-branch visibility to super admin only", func() {
		for _, role := range tenancy.Roles() {
			caps := role.Capabilities()
			Expect(caps.CanViewAllBranches).To(Equal(role == tenancy.RoleSuperAdmin), string(role))
		}
	})

	DescribeTable("capabilities",
		func(role tenancy.Role, zone, manage bool) {
			caps := role.Capabilities()
			Expect(caps.CanViewZoneRegions).To(Equal(zone))
			Expect(caps.CanManageCG).To(Equal(manage))
		},
		Entry("super admin", tenancy.RoleSuperAdmin, true, true),
		Entry("zone overseer", tenancy.RoleZoneOverseer, true, true),
		Entry("zone overseer support", tenancy.RoleZoneOverseerSupport, true, true),
		Entry("cg overseer", tenancy.RoleCGOverseer, false, true),
		Entry("personnel contact support", tenancy.RolePersonnelContactSupport, false, true),
		Entry("admin", tenancy.RoleAdmin, false, false),
		Entry("trade team overseer", tenancy.RoleTradeTeamOverseer, false, false),
		Entry("read only", tenancy.RoleReadOnly, false, false),
		Entry("read only admin", tenancy.RoleReadOnlyAdmin, false, false),
	)
})

var _ = Describe("BuildFilter", func() {
	It("never leaves a non super admin unrestricted", func() {
		for _, role := range tenancy.Roles() {
			if role == tenancy.RoleSuperAdmin {
				continue
			}
			for _, s := range []*tenancy.Scope{
				tenancy.NewScope("u", role, "", "", "", ""),
				tenancy.NewScope("u", role, "cg-1", "r-1", "z-1", "b-1"),
				tenancy.NewScope("u", role, "", "", "z-1", "b-1"),
			} {
				p := tenancy.BuildFilter(s)
				Expect(p.Restricted()).To(BeTrue(), string(role))
				Expect(p.Map()).NotTo(BeEmpty(), string(role))
			}
		}
	})

	It("leaves a super admin unrestricted with or without a group", func() {
		for _, s := range []*tenancy.Scope{
			tenancy.NewScope("u", tenancy.RoleSuperAdmin, "", "", "", ""),
			tenancy.NewScope("u", tenancy.RoleSuperAdmin, "cg-1", "r-1", "z-1", "b-1"),
		} {
			p := tenancy.BuildFilter(s)
			Expect(p.Kind).To(Equal(tenancy.PredicateAll))
			Expect(p.Map()).To(BeEmpty())
		}
	})

	It("restricts zone roles with a zone to the zone", func() {
		p := tenancy.BuildFilter(tenancy.NewScope("u", tenancy.RoleZoneOverseer, "cg-1", "r-1", "Z1", "b-1"))
		Expect(p.Kind).To(Equal(tenancy.PredicateZone))
		Expect(p.Map()).To(Equal(map[string]any{
			"constructionGroup": map[string]any{
				"region": map[string]any{"zoneId": "Z1"},
			},
		}))
	})

	It("falls back to the tenant for zone roles without a zone", func() {
		p := tenancy.BuildFilter(tenancy.NewScope("u", tenancy.RoleZoneOverseerAssistant, "cg-1", "", "", ""))
		Expect(p.Kind).To(Equal(tenancy.PredicateTenant))
		Expect(p.Value).To(Equal("cg-1"))
	})

	It("restricts a read only user to its own group", func() {
		p := tenancy.BuildFilter(tenancy.NewScope("u", tenancy.RoleReadOnly, "CG7", "", "", ""))
		Expect(p.Map()).To(Equal(map[string]any{"constructionGroupId": "CG7"}))
	})

	It("matches nothing without a group", func() {
		p := tenancy.BuildFilter(tenancy.NewScope("u", tenancy.RoleReadOnly, "", "", "", ""))
		Expect(p.Kind).To(Equal(tenancy.PredicateNone))
		Expect(p.Map()).To(Equal(map[string]any{"constructionGroupId": tenancy.NoTenantSentinel}))
	})

	It("matches nothing without a scope", func() {
		p := tenancy.BuildFilter(nil)
		Expect(p.Kind).To(Equal(tenancy.PredicateNone))
		Expect(p.Restricted()).To(BeTrue())
	})

	It("honours a custom tenant field", func() {
		p := tenancy.BuildFilter(tenancy.NewScope("u", tenancy.RoleCGOverseer, "cg-9", "", "", ""),
			tenancy.WithField("fromConstructionGroupId", "from_construction_group_id"))
		Expect(p.Map()).To(Equal(map[string]any{"fromConstructionGroupId": "cg-9"}))
		Expect(p.Column).To(Equal("from_construction_group_id"))
	})
})
