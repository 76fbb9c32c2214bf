package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/brightclass/backoffice/internal/config"
	"github.com/brightclass/backoffice/internal/domain"
	"github.com/brightclass/backoffice/internal/security"
	"github.com/brightclass/backoffice/internal/service"
)

var middlewareEpoch = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type fakeUserRepo struct {
	users map[uint]*domain.User
}

func (f *fakeUserRepo) FindByID(id uint) (*domain.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) FindByUsername(string) (*domain.User, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) Create(*domain.User) error             { return errors.New("not implemented") }
func (f *fakeUserRepo) Update(*domain.User) error             { return errors.New("not implemented") }
func (f *fakeUserRepo) UpdateLockoutState(*domain.User) error { return errors.New("not implemented") }
func (f *fakeUserRepo) TouchLastLogin(uint, time.Time) error  { return errors.New("not implemented") }
func (f *fakeUserRepo) List() ([]domain.User, error)          { return nil, errors.New("not implemented") }
func (f *fakeUserRepo) ListBySchool(uint) ([]domain.User, error) {
	return nil, errors.New("not implemented")
}

type authFixture struct {
	codec *security.TokenCodec
	users *fakeUserRepo
	clock fixedClock
	mw    func(http.Handler) http.Handler
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	cfg := &config.Config{
		TokenIssuer:        "test-issuer",
		TokenSigningKey:    strings.Repeat("s", 48),
		TokenEncryptionKey: strings.Repeat("e", 32),
		TokenSigningAlg:    config.SigningAlgHS256,
		TokenEncryptionAlg: config.EncryptionAlgA256GCM,
	}
	codec, err := security.NewTokenCodec(cfg)
	if err != nil {
		t.Fatalf("new token codec: %v", err)
	}
	users := &fakeUserRepo{users: map[uint]*domain.User{
		7: {ID: 7, SchoolID: 2, Username: "pat", Role: service.RoleAccountant},
	}}
	clock := fixedClock{now: middlewareEpoch}
	verifier := service.NewSessionVerifier(codec)
	return &authFixture{
		codec: codec,
		users: users,
		clock: clock,
		mw:    AuthMiddleware(verifier, users, clock),
	}
}

func (fx *authFixture) serve(t *testing.T, authorization string) (*httptest.ResponseRecorder, *Principal) {
	t.Helper()
	var principal *Principal
	h := fx.mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, _ = PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr, principal
}

func (fx *authFixture) issue(t *testing.T, subject string, ttl time.Duration, isRefresh bool) string {
	t.Helper()
	token, err := fx.codec.Issue(subject, middlewareEpoch, ttl, isRefresh)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

func TestAuthMiddlewareAcceptsValidAccessToken(t *testing.T) {
	fx := newAuthFixture(t)
	token := fx.issue(t, "7", 30*time.Minute, false)

	rr, principal := fx.serve(t, "Bearer "+token)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if principal == nil {
		t.Fatal("expected principal in context")
	}
	if principal.UserID != 7 || principal.SchoolID != 2 || principal.Role != service.RoleAccountant {
		t.Fatalf("unexpected principal %+v", principal)
	}
}

func TestAuthMiddlewareMissingToken(t *testing.T) {
	fx := newAuthFixture(t)
	rr, _ := fx.serve(t, "")
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestAuthMiddlewareGarbageToken(t *testing.T) {
	fx := newAuthFixture(t)
	rr, _ := fx.serve(t, "Bearer not-a-token")
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestAuthMiddlewareExpiredToken(t *testing.T) {
	fx := newAuthFixture(t)
	token := fx.issue(t, "7", 30*time.Minute, false)
	verifier := service.NewSessionVerifier(fx.codec)
	later := fixedClock{now: middlewareEpoch.Add(31 * time.Minute)}
	mw := AuthMiddleware(verifier, fx.users, later)

	h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "TOKEN_EXPIRED") {
		t.Fatalf("expected TOKEN_EXPIRED code, got %s", rr.Body.String())
	}
}

func TestAuthMiddlewareRejectsRefreshToken(t *testing.T) {
	fx := newAuthFixture(t)
	token := fx.issue(t, "7", 168*time.Hour, true)
	rr, _ := fx.serve(t, "Bearer "+token)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected refresh token rejected with 401, got %d", rr.Code)
	}
}

func TestAuthMiddlewareRejectsUnknownSubject(t *testing.T) {
	fx := newAuthFixture(t)
	token := fx.issue(t, "9999", 30*time.Minute, false)
	rr, _ := fx.serve(t, "Bearer "+token)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unknown subject, got %d", rr.Code)
	}
}

func TestAuthMiddlewareRejectsDeactivatedSubject(t *testing.T) {
	fx := newAuthFixture(t)
	fx.users.users[8] = &domain.User{ID: 8, SchoolID: 2, Username: "gone", Role: service.RoleStaff, Deactivated: true}
	token := fx.issue(t, "8", 30*time.Minute, false)
	rr, _ := fx.serve(t, "Bearer "+token)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for deactivated subject, got %d", rr.Code)
	}
}
