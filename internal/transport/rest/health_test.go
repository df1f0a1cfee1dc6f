package rest_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/frahmantamala/ldc-construction/internal/transport/rest"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Health", func() {
	var (
		mock   sqlmock.Sqlmock
		router *chi.Mux
	)

	BeforeEach(func() {
		db, m, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(db.Close)
		mock = m

		router = chi.NewRouter()
		rest.RegisterAllRoutes(router, db, fakeHandlers(), rest.Options{}, discardLogger())
	})

	get := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec
	}

	It("reports healthy when the database answers", func() {
		mock.ExpectPing()
		rec := get("/api/v1/health")
		Expect(rec.Code).To(Equal(http.StatusOK))

		var body rest.HealthResponse
		Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
		Expect(body.Status).To(Equal(rest.HealthHealthy))
		Expect(body.Components).To(HaveKey("postgres"))
		Expect(mock.ExpectationsWereMet()).To(Succeed())
	})

	It("reports 503 when the ping fails", func() {
		mock.ExpectPing().WillReturnError(errors.New("connection refused"))
		rec := get("/api/v1/health")
		Expect(rec.Code).To(Equal(http.StatusServiceUnavailable))
		Expect(rec.Body.String()).To(ContainSubstring("connection refused"))
	})

	It("includes extra components and fails on any of them", func() {
		router = chi.NewRouter()
		db, m, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(db.Close)
		m.ExpectPing()

		rest.RegisterAllRoutes(router, db, fakeHandlers(), rest.Options{
			HealthChecks: []rest.HealthCheck{{
				Name:  "audit_dispatcher",
				Check: func(context.Context) error { return errors.New("audit queue closed") },
			}},
		}, discardLogger())

		rec := get("/api/v1/health")
		Expect(rec.Code).To(Equal(http.StatusServiceUnavailable))

		var body rest.HealthResponse
		Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
		Expect(body.Components["postgres"].Status).To(Equal(rest.HealthHealthy))
		Expect(body.Components["audit_dispatcher"].Message).To(Equal("audit queue closed"))
	})

	It("answers ping without the database", func() {
		rec := get("/api/v1/ping")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring(`"OK"`))
	})
})
