package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/hrs-suite/hrs/internal/auth"
	"github.com/hrs-suite/hrs/internal/observability"
	"github.com/hrs-suite/hrs/internal/platform/httpx"
	"github.com/hrs-suite/hrs/internal/roles"
	"github.com/hrs-suite/hrs/internal/settings"
	"github.com/hrs-suite/hrs/internal/shared"
	"github.com/hrs-suite/hrs/internal/users"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	Settings       *settings.Service
	AuthHandler    *auth.Handler
	RolesHandler   *roles.Handler
	UsersHandler   *users.Handler
	Metrics        *observability.Metrics
}

// NewRouter constructs the chi.Router with HRS defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		companyName := params.Config.CompanyName
		if params.Settings != nil {
			companyName = params.Settings.GetOrDefault(r.Context(), "company_name", companyName)
		}
		httpx.OK(w, map[string]string{"companyName": companyName}, "")
	})

	// Dashboard entry: the login redirect target. Unauthenticated access
	// redirects back to the landing page rather than erroring.
	r.Get("/dashboard", func(w http.ResponseWriter, r *http.Request) {
		identity := shared.IdentityFromContext(r.Context())
		if identity == nil {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		httpx.OK(w, map[string]any{
			"id":        identity.UserID,
			"email":     identity.Email,
			"firstName": identity.FirstName,
			"lastName":  identity.LastName,
		}, "Dashboard")
	})

	params.AuthHandler.MountRoutes(r)

	if params.RolesHandler != nil {
		r.Route("/api/roles", params.RolesHandler.MountRoutes)
	}
	if params.UsersHandler != nil {
		r.Route("/api/users", params.UsersHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
