package auth

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/hrs-suite/hrs/internal/authz"
	"github.com/hrs-suite/hrs/internal/platform/httpx"
	"github.com/hrs-suite/hrs/internal/shared"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	sessions  *shared.SessionManager
	hierarchy *authz.Hierarchy
	grants    authz.GrantSource
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, sessions *shared.SessionManager, hierarchy *authz.Hierarchy, grants authz.GrantSource) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		sessions:  sessions,
		hierarchy: hierarchy,
		grants:    grants,
		validator: validator.New(),
	}
}

// MountRoutes registers auth routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
	r.Get("/api/me", h.handleMe)
}

type loginForm struct {
	Login    string `validate:"required"`
	Password string `validate:"required,min=8"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Malformed form body")
		return
	}
	form := loginForm{
		Login:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
	}
	if form.Login == "" {
		form.Login = r.PostFormValue("username")
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, err := h.service.Authenticate(r.Context(), form.Login, form.Password)
	if err != nil {
		httpx.Fail(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	sessionID, err := h.sessions.Create(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("create session", slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	expiresAt := time.Now().Add(h.sessions.TTL())
	if err := h.service.RegisterSession(r.Context(), sessionID, user.ID, expiresAt, r.RemoteAddr, r.UserAgent()); err != nil {
		h.logger.Warn("register session", slog.Any("error", err))
	}

	h.sessions.IssueCookies(w, sessionID, shared.Identity{
		UserID:    user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	})
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if identity := shared.IdentityFromContext(r.Context()); identity != nil {
		if err := h.sessions.Destroy(r.Context(), identity.SessionID); err != nil {
			h.logger.Warn("destroy session", slog.Any("error", err))
		}
		if err := h.service.RemoveSession(r.Context(), identity.SessionID); err != nil {
			h.logger.Warn("remove session", slog.Any("error", err))
		}
	}
	h.sessions.ClearCookies(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

type meResponse struct {
	ID           int64           `json:"id"`
	Email        string          `json:"email"`
	FirstName    string          `json:"firstName"`
	LastName     string          `json:"lastName"`
	Capabilities map[string]bool `json:"capabilities"`
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	if identity == nil {
		httpx.Fail(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	grants, err := h.grants.Grants(r.Context(), identity.UserID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	effective := grants.Effective()
	caps := map[string]bool{
		"canCreateRoles": h.hierarchy.Can(effective, authz.CreateRoles),
		"canReadRoles":   h.hierarchy.Can(effective, authz.ReadRoles),
		"canUpdateRoles": h.hierarchy.Can(effective, authz.UpdateRoles),
		"canDeleteRoles": h.hierarchy.Can(effective, authz.DeleteRoles),
		"canCreateUsers": h.hierarchy.Can(effective, authz.CreateUsers),
		"canReadUsers":   h.hierarchy.Can(effective, authz.ReadUsers),
		"canUpdateUsers": h.hierarchy.Can(effective, authz.UpdateUsers),
		"canDeleteUsers": h.hierarchy.Can(effective, authz.DeleteUsers),
	}
	httpx.OK(w, meResponse{
		ID:           identity.UserID,
		Email:        identity.Email,
		FirstName:    identity.FirstName,
		LastName:     identity.LastName,
		Capabilities: caps,
	}, "Current user retrieved successfully")
}
