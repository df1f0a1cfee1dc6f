package user_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/frahmantamala/ldc-construction/internal"
	"github.com/frahmantamala/ldc-construction/internal/tenancy"
	"github.com/frahmantamala/ldc-construction/internal/transport"
	"github.com/frahmantamala/ldc-construction/internal/user"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type mockService struct {
	target  string
	linkDTO user.LinkVolunteerDTO
	linkErr error
}

func (m *mockService) GetCurrentUser(_ context.Context, scope *tenancy.Scope) (*user.ProfileResponse, error) {
	return &user.ProfileResponse{User: &user.User{ID: scope.UserID, Role: string(scope.Role)}, Scope: scope}, nil
}

func (m *mockService) LinkVolunteer(_ context.Context, _ *tenancy.Scope, target string, dto user.LinkVolunteerDTO) (*user.LinkVolunteerResponse, error) {
	m.target = target
	m.linkDTO = dto
	if m.linkErr != nil {
		return nil, m.linkErr
	}
	return &user.LinkVolunteerResponse{User: &user.User{ID: target}, VolunteerID: dto.VolunteerID}, nil
}

var _ = Describe("Handler", func() {
	var (
		svc    *mockService
		router chi.Router
		scope  *tenancy.Scope
	)

	BeforeEach(func() {
		svc = &mockService{}
		handler := user.NewHandler(transport.NewBaseHandler(discardLogger()), svc)
		scope = tenancy.NewScope("01HUSER0000000000000000000", tenancy.RoleCGOverseer, "01HCG", "", "", "")

		router = chi.NewRouter()
		router.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if scope != nil {
					r = r.WithContext(tenancy.ContextWithScope(r.Context(), scope))
				}
				next.ServeHTTP(w, r)
			})
		})
		router.Get("/users/me", handler.GetCurrentUser)
		router.Post("/users/{id}/link-volunteer", handler.LinkVolunteer)
	})

	serve := func(method, target, body string) *httptest.ResponseRecorder {
		var req *http.Request
		if body == "" {
			req = httptest.NewRequest(method, target, nil)
		} else {
			req = httptest.NewRequest(method, target, strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	It("renders the profile with the scope summary", func() {
		rec := serve(http.MethodGet, "/users/me", "")
		Expect(rec.Code).To(Equal(http.StatusOK))

		var body struct {
			User  map[string]interface{} `json:"user"`
			Scope map[string]interface{} `json:"scope"`
		}
		Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
		Expect(body.User["id"]).To(Equal("01HUSER0000000000000000000"))
		Expect(body.Scope["constructionGroupId"]).To(Equal("01HCG"))
	})

	It("answers 401 without a scope", func() {
		scope = nil
		rec := serve(http.MethodGet, "/users/me", "")
		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
	})

	Describe("LinkVolunteer", func() {
		It("passes the path id and body through", func() {
			rec := serve(http.MethodPost, "/users/01HTARGET/link-volunteer", `{"volunteerId":"01HVOL"}`)
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(svc.target).To(Equal("01HTARGET"))
			Expect(svc.linkDTO.VolunteerID).To(Equal("01HVOL"))
		})

		It("maps an existing link onto 409", func() {
			svc.linkErr = internal.ErrVolunteerLinked
			rec := serve(http.MethodPost, "/users/01HTARGET/link-volunteer", `{"volunteerId":"01HVOL"}`)
			Expect(rec.Code).To(Equal(http.StatusConflict))
			Expect(rec.Body.String()).To(ContainSubstring(string(internal.ErrCodeVolunteerLinked)))
		})
	})
})
