package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/brightclass/backoffice/internal/http/response"
	"github.com/brightclass/backoffice/internal/observability"
	"github.com/brightclass/backoffice/internal/repository"
	"github.com/brightclass/backoffice/internal/service"
)

type contextKey string

const principalContextKey contextKey = "principal"

// Principal is the authenticated caller attached to the request context.
type Principal struct {
	UserID   uint
	SchoolID uint
	Username string
	Role     string
}

// AuthMiddleware authenticates requests from a bearer access token. Refresh
// tokens are structurally valid sessions but are only honored at the refresh
// endpoint, never as API credentials.
func AuthMiddleware(verifier *service.SessionVerifier, users repository.UserRepository, clock service.Clock) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				observability.RecordTokenValidation(r.Context(), "missing")
				response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing access token", nil)
				return
			}

			claim, err := verifier.Verify(raw, clock.Now())
			if errors.Is(err, service.ErrSessionExpired) {
				observability.RecordTokenValidation(r.Context(), "expired")
				response.Error(w, r, http.StatusUnauthorized, "TOKEN_EXPIRED", "access token expired", nil)
				return
			}
			if err != nil {
				observability.RecordTokenValidation(r.Context(), "invalid")
				response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid access token", nil)
				return
			}
			if claim.IsRefreshToken {
				observability.RecordTokenValidation(r.Context(), "refresh_rejected")
				response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid access token", nil)
				return
			}

			userID, err := strconv.ParseUint(claim.SubjectID, 10, 64)
			if err != nil {
				observability.RecordTokenValidation(r.Context(), "invalid")
				response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid access token", nil)
				return
			}
			user, err := users.FindByID(uint(userID))
			if err != nil || user.Deactivated {
				observability.RecordTokenValidation(r.Context(), "subject_rejected")
				response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid access token", nil)
				return
			}

			observability.RecordTokenValidation(r.Context(), "valid")
			principal := &Principal{
				UserID:   user.ID,
				SchoolID: user.SchoolID,
				Username: user.Username,
				Role:     user.Role,
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}

// WithPrincipal attaches the principal to the context. Exposed for handler
// tests that bypass the middleware.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, p)
}

func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalContextKey).(*Principal)
	return p, ok
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}
