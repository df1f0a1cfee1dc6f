package audit_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/frahmantamala/ldc-construction/internal"
	"github.com/frahmantamala/ldc-construction/internal/audit"
	auditDatamodel "github.com/frahmantamala/ldc-construction/internal/core/datamodel/audit"
	"github.com/frahmantamala/ldc-construction/internal/core/datamodel/hierarchy"
	userDatamodel "github.com/frahmantamala/ldc-construction/internal/core/datamodel/user"
	"github.com/frahmantamala/ldc-construction/internal/tenancy"
	"github.com/frahmantamala/ldc-construction/internal/transport"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/xuri/excelize/v2"
)

type mockRepository struct {
	memoryWriter
	rows      []*auditDatamodel.AuditLog
	lastQuery audit.Query
}

func (m *mockRepository) List(_ context.Context, q audit.Query) ([]*auditDatamodel.AuditLog, int64, error) {
	m.lastQuery = q
	end := q.Offset() + q.Limit
	if end > len(m.rows) {
		end = len(m.rows)
	}
	if q.Offset() >= len(m.rows) {
		return nil, int64(len(m.rows)), nil
	}
	return m.rows[q.Offset():end], int64(len(m.rows)), nil
}

func (m *mockRepository) ListAll(_ context.Context, q audit.Query, _ int) ([]*auditDatamodel.AuditLog, error) {
	m.lastQuery = q
	return m.rows, nil
}

func sampleRow(id string) *auditDatamodel.AuditLog {
	cg := "cg-1"
	return &auditDatamodel.AuditLog{
		ID:                      id,
		Action:                  string(audit.ActionCGDeleted),
		Resource:                string(audit.ResourceConstructionGroup),
		FromConstructionGroupID: &cg,
		FromConstructionGroup:   &hierarchy.ConstructionGroup{ID: cg, Code: "CG 01.12", Name: "North"},
		User:                    &userDatamodel.User{ID: "admin-1", Name: "Admin", Email: "admin@example.com", Role: "SUPER_ADMIN"},
		Metadata:                auditDatamodel.JSONMap{"description": "Deactivated Construction Group: CG 01.12 - North"},
		CreatedAt:               time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

var _ = Describe("Service", func() {
	var (
		repo       *mockRepository
		service    *audit.Service
		superAdmin *tenancy.Scope
		ctx        context.Context
		slogger    *slog.Logger
	)

	BeforeEach(func() {
		slogger = slog.New(slog.NewTextHandler(io.Discard, nil))
		repo = &mockRepository{}
		for _, id := range []string{"a", "b", "c"} {
			repo.rows = append(repo.rows, sampleRow(id))
		}
		recorder := audit.NewRecorder(audit.NewSyncSink(repo, slogger), slogger)
		service = audit.NewService(repo, recorder, slogger)
		superAdmin = tenancy.NewScope("admin-1", tenancy.RoleSuperAdmin, "", "", "", "")
		ctx = context.Background()
	})

	Describe("List", func() {
		It("rejects principals without all-branch visibility", func() {
			scope := tenancy.NewScope("zo-1", tenancy.RoleZoneOverseer, "", "", "zone-1", "")
			_, err := service.List(ctx, scope, audit.Query{})
			Expect(err).To(MatchError(internal.ErrSuperAdminOnly))
		})

		It("applies default pagination and reports totals", func() {
			resp, err := service.List(ctx, superAdmin, audit.Query{Limit: 2})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Entries).To(HaveLen(2))
			Expect(resp.Pagination.Page).To(Equal(1))
			Expect(resp.Pagination.Total).To(Equal(int64(3)))
			Expect(resp.Pagination.TotalPages).To(Equal(2))
		})

		It("caps the page size", func() {
			_, err := service.List(ctx, superAdmin, audit.Query{Limit: 10000})
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.lastQuery.Limit).To(Equal(audit.MaxPageLimit))
		})

		It("includes actor and group details", func() {
			resp, err := service.List(ctx, superAdmin, audit.Query{})
			Expect(err).NotTo(HaveOccurred())
			entry := resp.Entries[0]
			Expect(entry.User.Email).To(Equal("admin@example.com"))
			Expect(entry.FromConstructionGroup.Code).To(Equal("CG 01.12"))
			Expect(entry.ToConstructionGroup).To(BeNil())
		})
	})

	Describe("Export", func() {
		It("renders CSV and records one export entry", func() {
			result, err := service.Export(ctx, superAdmin, audit.Query{}, audit.FormatCSV)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Filename).To(MatchRegexp(`^audit-logs-\d{4}-\d{2}-\d{2}\.csv$`))
			Expect(result.Count).To(Equal(3))

			records, err := csv.NewReader(bytes.NewReader(result.Data)).ReadAll()
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(HaveLen(4))
			Expect(records[0][0]).To(Equal("Timestamp"))
			Expect(records[1][4]).To(Equal("CG_DELETED"))
			Expect(records[1][7]).To(Equal("CG 01.12"))

			logs := repo.Logs()
			Expect(logs).To(HaveLen(1))
			Expect(logs[0].Action).To(Equal("EXPORT"))
			Expect(logs[0].Resource).To(Equal("SYSTEM"))
			Expect(logs[0].NewValues).To(HaveKeyWithValue("type", "audit_logs"))
			Expect(logs[0].NewValues).To(HaveKeyWithValue("count", 3))
		})

		It("renders a readable XLSX workbook", func() {
			result, err := service.Export(ctx, superAdmin, audit.Query{}, audit.FormatXLSX)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Filename).To(HaveSuffix(".xlsx"))

			f, err := excelize.OpenReader(bytes.NewReader(result.Data))
			Expect(err).NotTo(HaveOccurred())
			defer f.Close()

			rows, err := f.GetRows("Audit Logs")
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(4))
			Expect(rows[0][1]).To(Equal("User Name"))
			Expect(rows[1][2]).To(Equal("admin@example.com"))
		})

		It("rejects non super admins without recording", func() {
			scope := tenancy.NewScope("u-1", tenancy.RoleReadOnly, "cg-1", "", "", "")
			_, err := service.Export(ctx, scope, audit.Query{}, audit.FormatCSV)
			Expect(err).To(MatchError(internal.ErrSuperAdminOnly))
			Expect(repo.Logs()).To(BeEmpty())
		})
	})
})

var _ = Describe("Handler", func() {
	var (
		repo    *mockRepository
		handler *audit.Handler
		slogger *slog.Logger
	)

	BeforeEach(func() {
		slogger = slog.New(slog.NewTextHandler(io.Discard, nil))
		repo = &mockRepository{rows: []*auditDatamodel.AuditLog{sampleRow("a")}}
		recorder := audit.NewRecorder(audit.NewSyncSink(repo, slogger), slogger)
		handler = audit.NewHandler(transport.NewBaseHandler(slogger), audit.NewService(repo, recorder, slogger))
	})

	withScope := func(req *http.Request, scope *tenancy.Scope) *http.Request {
		return req.WithContext(tenancy.ContextWithScope(req.Context(), scope))
	}

	It("lists entries for a super admin", func() {
		req := httptest.NewRequest(http.MethodGet, "/audit-logs?action=CG_DELETED&page=1&limit=10", nil)
		req = withScope(req, tenancy.NewScope("admin-1", tenancy.RoleSuperAdmin, "", "", "", ""))
		w := httptest.NewRecorder()

		handler.ListAuditLogs(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		var resp audit.ListResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.Entries).To(HaveLen(1))
		Expect(repo.lastQuery.Action).To(Equal(audit.ActionCGDeleted))
		Expect(repo.lastQuery.Limit).To(Equal(10))
	})

	It("rejects an unknown action", func() {
		req := httptest.NewRequest(http.MethodGet, "/audit-logs?action=NOPE", nil)
		req = withScope(req, tenancy.NewScope("admin-1", tenancy.RoleSuperAdmin, "", "", "", ""))
		w := httptest.NewRecorder()

		handler.ListAuditLogs(w, req)

		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("forbids other roles", func() {
		req := httptest.NewRequest(http.MethodGet, "/audit-logs", nil)
		req = withScope(req, tenancy.NewScope("u-1", tenancy.RoleCGOverseer, "cg-1", "", "", ""))
		w := httptest.NewRecorder()

		handler.ListAuditLogs(w, req)

		Expect(w.Code).To(Equal(http.StatusForbidden))
	})

	It("returns 401 without a scope", func() {
		req := httptest.NewRequest(http.MethodGet, "/audit-logs", nil)
		w := httptest.NewRecorder()

		handler.ListAuditLogs(w, req)

		Expect(w.Code).To(Equal(http.StatusUnauthorized))
	})

	It("streams an export as an attachment", func() {
		req := httptest.NewRequest(http.MethodGet, "/audit-logs/export?format=csv", nil)
		req = withScope(req, tenancy.NewScope("admin-1", tenancy.RoleSuperAdmin, "", "", "", ""))
		w := httptest.NewRecorder()

		handler.ExportAuditLogs(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Header().Get("Content-Type")).To(ContainSubstring("text/csv"))
		Expect(w.Header().Get("Content-Disposition")).To(ContainSubstring("audit-logs-"))
	})

	It("rejects an unknown export format", func() {
		req := httptest.NewRequest(http.MethodGet, "/audit-logs/export?format=pdf", nil)
		req = withScope(req, tenancy.NewScope("admin-1", tenancy.RoleSuperAdmin, "", "", "", ""))
		w := httptest.NewRecorder()

		handler.ExportAuditLogs(w, req)

		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})
})
