package authz

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hrs-suite/hrs/internal/platform/httpx"
	"github.com/hrs-suite/hrs/internal/shared"
)

// Grants describes the permission sets attached to an account. A non-empty
// Override fully replaces the role set.
type Grants struct {
	Override []string
	Role     []string
}

// Effective resolves the set used for authorization checks.
func (g Grants) Effective() []string {
	return EffectiveGrants(g.Override, g.Role)
}

// GrantSource loads the authoritative permission sets for a user. The
// identity cookies may carry stale or forged data, so every check goes back
// to storage through this port.
type GrantSource interface {
	Grants(ctx context.Context, userID int64) (Grants, error)
}

// Middleware gates HTTP handlers on hierarchy permissions.
type Middleware struct {
	Hierarchy *Hierarchy
	Source    GrantSource
	Logger    *slog.Logger
}

// Require ensures the current user is authorized for the permission. The
// request is rejected with 401 when anonymous or when the user row no longer
// exists, and 403 when the permission path is not satisfied.
func (m Middleware) Require(permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := shared.IdentityFromContext(r.Context())
			if identity == nil {
				httpx.Fail(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			grants, err := m.Source.Grants(r.Context(), identity.UserID)
			if err != nil {
				if errors.Is(err, shared.ErrNotFound) {
					httpx.Fail(w, http.StatusUnauthorized, "Unauthorized")
					return
				}
				if m.Logger != nil {
					m.Logger.Error("load grants", slog.Int64("user_id", identity.UserID), slog.Any("error", err))
				}
				httpx.Fail(w, http.StatusInternalServerError, "Internal server error")
				return
			}
			if !m.Hierarchy.Can(grants.Effective(), permission) {
				httpx.Fail(w, http.StatusForbidden, "Forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
