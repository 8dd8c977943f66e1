package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

type mockAuthService struct {
	authenticateResult *LoginResult
	authenticateErr    error
	validateClaims     *Claims
	validateErr        error
	identity           *Identity
	identityErr        error
}

func (m *mockAuthService) Authenticate(_ context.Context, dto LoginDTO) (*LoginResult, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	return m.authenticateResult, m.authenticateErr
}

func (m *mockAuthService) ValidateAccessToken(_ string) (*Claims, error) {
	return m.validateClaims, m.validateErr
}

func (m *mockAuthService) IdentityByCode(_ context.Context, _ string) (*Identity, error) {
	return m.identity, m.identityErr
}

func (m *mockAuthService) HashPassword(password string) (string, error) {
	return password, nil
}

var _ = ginkgo.Describe("AuthHandler", func() {
	var (
		handler *Handler
		mockSvc *mockAuthService
	)

	ginkgo.BeforeEach(func() {
		mockSvc = &mockAuthService{}
		handler = NewHandler(mockSvc)
	})

	ginkgo.Describe("Login", func() {
		ginkgo.It("should return the token and user payload on success", func() {
			mockSvc.authenticateResult = &LoginResult{
				AccessToken: "signed-token",
				Identity: &Identity{
					ID:          1,
					Code:        "admin",
					Name:        "Administrator",
					Language:    "vi",
					Roles:       []RoleRef{{ID: 1, Name: "store-owner"}},
					Permissions: []string{PermSystemSettings},
				},
			}

			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
				strings.NewReader(`{"code":"admin","password":"admin123"}`))
			rec := httptest.NewRecorder()

			handler.Login(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))

			var resp LoginResponse
			gomega.Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(gomega.Succeed())
			gomega.Expect(resp.AccessToken).To(gomega.Equal("signed-token"))
			gomega.Expect(resp.User.Code).To(gomega.Equal("admin"))
			gomega.Expect(resp.User.Roles).To(gomega.HaveLen(1))

			// permissions are resolved per request, never shipped at login
			gomega.Expect(rec.Body.String()).ToNot(gomega.ContainSubstring("permissions"))
		})

		ginkgo.It("should answer 401 with a generic message for bad credentials", func() {
			mockSvc.authenticateErr = ErrInvalidCredentials

			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
				strings.NewReader(`{"code":"admin","password":"nope"}`))
			rec := httptest.NewRecorder()

			handler.Login(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
			gomega.Expect(rec.Body.String()).To(gomega.ContainSubstring("invalid credentials"))
		})

		ginkgo.It("should answer 400 for a malformed body", func() {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
				strings.NewReader(`{not json`))
			rec := httptest.NewRecorder()

			handler.Login(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
		})

		ginkgo.It("should answer 400 when required fields are missing", func() {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
				strings.NewReader(`{"code":"admin"}`))
			rec := httptest.NewRecorder()

			handler.Login(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
		})
	})

	ginkgo.Describe("AuthMiddleware", func() {
		var next http.Handler
		var nextCalled bool
		var seenIdentity *Identity

		ginkgo.BeforeEach(func() {
			nextCalled = false
			seenIdentity = nil
			next = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
				seenIdentity, _ = IdentityFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})
		})

		ginkgo.It("should reject a request without a bearer token", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
			rec := httptest.NewRecorder()

			handler.AuthMiddleware(next).ServeHTTP(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
			gomega.Expect(nextCalled).To(gomega.BeFalse())
		})

		ginkgo.It("should answer the same 401 for expired, tampered and malformed tokens", func() {
			for _, cause := range []error{ErrTokenExpired, ErrTokenSignatureInvalid, ErrTokenMalformed} {
				mockSvc.validateErr = cause

				req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
				req.Header.Set("Authorization", "Bearer some-token")
				rec := httptest.NewRecorder()

				handler.AuthMiddleware(next).ServeHTTP(rec, req)

				gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
				gomega.Expect(rec.Body.String()).To(gomega.ContainSubstring("invalid token"))
				gomega.Expect(nextCalled).To(gomega.BeFalse())
			}
		})

		ginkgo.It("should reject a valid token whose user no longer exists", func() {
			mockSvc.validateClaims = &Claims{Code: "ghost"}
			mockSvc.identity = nil

			req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
			req.Header.Set("Authorization", "Bearer some-token")
			rec := httptest.NewRecorder()

			handler.AuthMiddleware(next).ServeHTTP(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
			gomega.Expect(nextCalled).To(gomega.BeFalse())
		})

		ginkgo.It("should attach the freshly-resolved identity to the request", func() {
			mockSvc.validateClaims = &Claims{Code: "admin"}
			mockSvc.identity = &Identity{ID: 1, Code: "admin", Permissions: []string{PermOverviewAccess}}

			req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
			req.Header.Set("Authorization", "Bearer some-token")
			rec := httptest.NewRecorder()

			handler.AuthMiddleware(next).ServeHTTP(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
			gomega.Expect(nextCalled).To(gomega.BeTrue())
			gomega.Expect(seenIdentity).NotTo(gomega.BeNil())
			gomega.Expect(seenIdentity.Permissions).To(gomega.ConsistOf(PermOverviewAccess))
		})
	})
})
