package auth

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/frahmantamala/ldc-construction/internal"
	"github.com/frahmantamala/ldc-construction/internal/transport"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var _ = ginkgo.Describe("Handler", func() {
	var (
		handler  *Handler
		auditor  *mockAuditor
		tokenGen *JWTTokenGenerator
	)

	ginkgo.BeforeEach(func() {
		lg := slog.New(slog.NewTextHandler(io.Discard, nil))
		auditor = &mockAuditor{}
		tokenGen = NewJWTTokenGenerator("access", "refresh", time.Minute, time.Hour)
		svc := NewService(newMockUserRepository(), tokenGen, auditor, lg)
		handler = NewHandler(transport.NewBaseHandler(lg), svc)
	})

	ginkgo.Describe("Login", func() {
		ginkgo.It("should return tokens for valid credentials", func() {
			req := httptest.NewRequest(http.MethodPost, "/auth/login",
				strings.NewReader(`{"email":"cgo.0112@ldc.local","password":"correct_password"}`))
			rec := httptest.NewRecorder()

			handler.Login(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
			gomega.Expect(rec.Body.String()).To(gomega.ContainSubstring("access_token"))
		})

		ginkgo.It("should return 401 for a wrong password", func() {
			req := httptest.NewRequest(http.MethodPost, "/auth/login",
				strings.NewReader(`{"email":"cgo.0112@ldc.local","password":"nope"}`))
			rec := httptest.NewRecorder()

			handler.Login(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
			gomega.Expect(rec.Body.String()).To(gomega.ContainSubstring(string(internal.ErrCodeInvalidCredentials)))
		})

		ginkgo.It("should return 400 for a malformed body", func() {
			req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{`))
			rec := httptest.NewRecorder()

			handler.Login(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
		})
	})

	ginkgo.Describe("AuthMiddleware", func() {
		var (
			seenUserID string
			seenRole   string
			next       http.Handler
		)

		ginkgo.BeforeEach(func() {
			seenUserID = ""
			next = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seenUserID = internal.UserIDFromContext(r.Context())
				if p, ok := internal.PrincipalFromContext(r.Context()); ok {
					seenRole = p.Role
				}
				w.WriteHeader(http.StatusNoContent)
			})
		})

		ginkgo.It("should store the user id from a valid token", func() {
			token, err := tokenGen.GenerateAccessToken("01HCGO", "cgo.0112@ldc.local", "CONSTRUCTION_GROUP_OVERSEER")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			rec := httptest.NewRecorder()

			handler.AuthMiddleware(next).ServeHTTP(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusNoContent))
			gomega.Expect(seenUserID).To(gomega.Equal("01HCGO"))
			gomega.Expect(seenRole).To(gomega.Equal("CONSTRUCTION_GROUP_OVERSEER"))
		})

		ginkgo.It("should reject a missing token", func() {
			rec := httptest.NewRecorder()
			handler.AuthMiddleware(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/me", nil))

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
			gomega.Expect(seenUserID).To(gomega.BeEmpty())
		})
	})

	ginkgo.Describe("Logout", func() {
		ginkgo.It("should audit the logout and answer 204", func() {
			token, err := tokenGen.GenerateAccessToken("01HCGO", "cgo.0112@ldc.local", "CONSTRUCTION_GROUP_OVERSEER")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil).WithContext(context.Background())
			req.Header.Set("Authorization", "Bearer "+token)
			rec := httptest.NewRecorder()

			handler.Logout(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusNoContent))
			gomega.Expect(auditor.events).To(gomega.HaveLen(1))
			gomega.Expect(auditor.events[0].action).To(gomega.Equal("LOGOUT"))
		})
	})
})
