package tenancy_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"

	"github.com/frahmantamala/ldc-construction/internal"
	"github.com/frahmantamala/ldc-construction/internal/tenancy"
	"github.com/frahmantamala/ldc-construction/internal/transport"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Policy", func() {
	var (
		zones  *mockZoneLookup
		policy *tenancy.Policy
		ctx    context.Context
	)

	BeforeEach(func() {
		zones = &mockZoneLookup{zones: map[string]string{"cg-1": "zone-1", "cg-2": "zone-1", "cg-3": "zone-2"}}
		policy = tenancy.NewPolicy(zones)
		ctx = context.Background()
	})

	Describe("CanManageInCG", func() {
		It("allows a super admin everywhere without a lookup", func() {
			ok, err := policy.CanManageInCG(ctx, tenancy.NewScope("u", tenancy.RoleSuperAdmin, "", "", "", ""), "cg-3")
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())
			Expect(zones.calls).To(BeZero())
		})

		It("checks zone managers against the group's zone", func() {
			scope := tenancy.NewScope("u", tenancy.RoleZoneOverseer, "", "", "zone-1", "")

			ok, err := policy.CanManageInCG(ctx, scope, "cg-2")
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())

			ok, err = policy.CanManageInCG(ctx, scope, "cg-3")
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())

			ok, err = policy.CanManageInCG(ctx, scope, "cg-missing")
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())
		})

		It("limits group managers to their own group", func() {
			scope := tenancy.NewScope("u", tenancy.RoleCGOverseer, "cg-1", "r-1", "zone-1", "b-1")

			ok, _ := policy.CanManageInCG(ctx, scope, "cg-1")
			Expect(ok).To(BeTrue())
			ok, _ = policy.CanManageInCG(ctx, scope, "cg-2")
			Expect(ok).To(BeFalse())
		})

		It("denies roles without the manage capability", func() {
			ok, err := policy.CanManageInCG(ctx, tenancy.NewScope("u", tenancy.RoleReadOnly, "cg-1", "", "", ""), "cg-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())
		})

		It("denies a nil scope", func() {
			ok, _ := policy.CanManageInCG(ctx, nil, "cg-1")
			Expect(ok).To(BeFalse())
		})
	})

	Describe("CanAccessCG", func() {
		It("lets every role read its own group", func() {
			ok, _ := policy.CanAccessCG(ctx, tenancy.NewScope("u", tenancy.RoleReadOnly, "cg-1", "", "", ""), "cg-1")
			Expect(ok).To(BeTrue())
		})

		It("lets zone roles read groups in their zone", func() {
			scope := tenancy.NewScope("u", tenancy.RoleZoneOverseerSupport, "cg-1", "", "zone-1", "")
			ok, _ := policy.CanAccessCG(ctx, scope, "cg-2")
			Expect(ok).To(BeTrue())
			ok, _ = policy.CanAccessCG(ctx, scope, "cg-3")
			Expect(ok).To(BeFalse())
		})

		It("denies other groups", func() {
			ok, _ := policy.CanAccessCG(ctx, tenancy.NewScope("u", tenancy.RoleAdmin, "cg-1", "", "zone-1", ""), "cg-2")
			Expect(ok).To(BeFalse())
		})
	})

	Describe("EffectiveCGID", func() {
		It("uses the selected group for a super admin", func() {
			Expect(tenancy.EffectiveCGID(tenancy.NewScope("u", tenancy.RoleSuperAdmin, "cg-1", "", "", ""), "cg-9")).To(Equal("cg-9"))
		})

		It("ignores the selection for everyone else", func() {
			Expect(tenancy.EffectiveCGID(tenancy.NewScope("u", tenancy.RoleCGOverseer, "cg-1", "", "", ""), "cg-9")).To(Equal("cg-1"))
		})

		It("is empty without a scope", func() {
			Expect(tenancy.EffectiveCGID(nil, "cg-9")).To(BeEmpty())
		})
	})
})

var _ = Describe("Resolver", func() {
	var (
		repo     *mockPrincipalRepository
		resolver *tenancy.Resolver
		ctx      context.Context
	)

	BeforeEach(func() {
		repo = &mockPrincipalRepository{records: map[string]*tenancy.PrincipalRecord{
			"zo":      {UserID: "zo", Role: "ZONE_OVERSEER", IsActive: true, ZoneID: "zone-1", BranchID: "b-1"},
			"ro":      {UserID: "ro", Role: "READ_ONLY", IsActive: true, ConstructionGroupID: "cg-1", RegionID: "r-1", ZoneID: "zone-1", BranchID: "b-1"},
			"odd":     {UserID: "odd", Role: "WIZARD", IsActive: true, ConstructionGroupID: "cg-1"},
			"retired": {UserID: "retired", Role: "SUPER_ADMIN", IsActive: false},
		}}
		resolver = tenancy.NewResolver(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))
		ctx = context.Background()
	})

	It("returns nil for an empty user id", func() {
		scope, err := resolver.Resolve(ctx, "")
		Expect(err).NotTo(HaveOccurred())
		Expect(scope).To(BeNil())
	})

	It("returns nil for missing and inactive users", func() {
		scope, err := resolver.Resolve(ctx, "ghost")
		Expect(err).NotTo(HaveOccurred())
		Expect(scope).To(BeNil())

		scope, err = resolver.Resolve(ctx, "retired")
		Expect(err).NotTo(HaveOccurred())
		Expect(scope).To(BeNil())
	})

	It("carries the hierarchy chain and derived capabilities", func() {
		scope, err := resolver.Resolve(ctx, "ro")
		Expect(err).NotTo(HaveOccurred())
		Expect(scope.ConstructionGroupID).To(Equal("cg-1"))
		Expect(scope.RegionID).To(Equal("r-1"))
		Expect(scope.ZoneID).To(Equal("zone-1"))
		Expect(scope.BranchID).To(Equal("b-1"))
		Expect(scope.CanManageCG).To(BeFalse())
	})

	It("resolves a zone overseer without a group", func() {
		scope, err := resolver.Resolve(ctx, "zo")
		Expect(err).NotTo(HaveOccurred())
		Expect(scope.HasTenant()).To(BeFalse())
		Expect(tenancy.BuildFilter(scope).Kind).To(Equal(tenancy.PredicateZone))
	})

	It("grants nothing to an unknown role", func() {
		scope, err := resolver.Resolve(ctx, "odd")
		Expect(err).NotTo(HaveOccurred())
		Expect(scope.Role).To(Equal(tenancy.RoleUnknown))
		Expect(scope.Capabilities).To(Equal(tenancy.Capabilities{}))
	})

	It("wraps repository errors", func() {
		repo.err = errors.New("connection refused")
		_, err := resolver.Resolve(ctx, "ro")
		Expect(err).To(MatchError(ContainSubstring("resolve scope")))
	})
})

var _ = Describe("Middleware", func() {
	var (
		repo       *mockPrincipalRepository
		middleware *tenancy.Middleware
		reached    bool
		next       http.Handler
	)

	BeforeEach(func() {
		slogger := slog.New(slog.NewTextHandler(io.Discard, nil))
		repo = &mockPrincipalRepository{records: map[string]*tenancy.PrincipalRecord{
			"admin": {UserID: "admin", Role: "SUPER_ADMIN", IsActive: true},
			"cgo":   {UserID: "cgo", Role: "CONSTRUCTION_GROUP_OVERSEER", IsActive: true, ConstructionGroupID: "cg-1"},
			"ro":    {UserID: "ro", Role: "READ_ONLY", IsActive: true, ConstructionGroupID: "cg-1"},
		}}
		middleware = tenancy.NewMiddleware(transport.NewBaseHandler(slogger), tenancy.NewResolver(repo, slogger))
		reached = false
		next = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, reached = tenancy.ScopeFromContext(r.Context())
			w.WriteHeader(http.StatusNoContent)
		})
	})

	serve := func(h http.Handler, userID string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if userID != "" {
			req = req.WithContext(internal.ContextWithUserID(req.Context(), userID))
		}
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w
	}

	It("stores the scope for downstream handlers", func() {
		w := serve(middleware.ResolveScope(next), "ro")
		Expect(w.Code).To(Equal(http.StatusNoContent))
		Expect(reached).To(BeTrue())
	})

	It("rejects unauthenticated requests", func() {
		w := serve(middleware.ResolveScope(next), "")
		Expect(w.Code).To(Equal(http.StatusUnauthorized))
		Expect(reached).To(BeFalse())
	})

	It("fails closed on resolver errors", func() {
		repo.err = errors.New("timeout")
		w := serve(middleware.ResolveScope(next), "ro")
		Expect(w.Code).To(Equal(http.StatusInternalServerError))
		Expect(reached).To(BeFalse())
	})

	It("restricts super admin routes", func() {
		h := middleware.ResolveScope(middleware.RequireSuperAdmin(next))
		Expect(serve(h, "cgo").Code).To(Equal(http.StatusForbidden))
		Expect(serve(h, "admin").Code).To(Equal(http.StatusNoContent))
	})

	It("restricts manager routes", func() {
		h := middleware.ResolveScope(middleware.RequireCGManager(next))
		Expect(serve(h, "ro").Code).To(Equal(http.StatusForbidden))
		Expect(serve(h, "cgo").Code).To(Equal(http.StatusNoContent))
	})

	It("reads the filter cookie", func() {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		Expect(tenancy.SelectedCG(req)).To(BeEmpty())
		req.AddCookie(&http.Cookie{Name: tenancy.FilterCookieName, Value: "cg-7"})
		Expect(tenancy.SelectedCG(req)).To(Equal("cg-7"))
	})
})

var _ = Describe("Role", func() {
	It("orders roles by hierarchy reach", func() {
		Expect(tenancy.RoleSuperAdmin.Outranks(tenancy.RoleZoneOverseer)).To(BeTrue())
		Expect(tenancy.RoleZoneOverseerSupport.Outranks(tenancy.RoleCGOverseer)).To(BeTrue())
		Expect(tenancy.RoleCGOverseer.Outranks(tenancy.RolePersonnelContact)).To(BeFalse())
		Expect(tenancy.RolePersonnelContact.Outranks(tenancy.RoleReadOnly)).To(BeFalse())
		Expect(tenancy.RoleUnknown.Outranks(tenancy.RoleReadOnly)).To(BeFalse())
		Expect(tenancy.RoleCGOverseer.Outranks(tenancy.RoleZoneOverseer)).To(BeFalse())
	})
})
