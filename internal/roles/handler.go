package roles

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/hrs-suite/hrs/internal/authz"
	"github.com/hrs-suite/hrs/internal/platform/httpx"
	"github.com/hrs-suite/hrs/internal/shared"
)

// Handler manages the role CRUD endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	authz     authz.Middleware
	hierarchy *authz.Hierarchy
	validator *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, mw authz.Middleware) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		authz:     mw,
		hierarchy: mw.Hierarchy,
		validator: validator.New(),
	}
}

// MountRoutes registers role routes. Creation shares the read gate; clients
// consult /capabilities before offering the action.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.authz.Require(authz.ReadRoles))
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Get("/capabilities", h.capabilities)
		r.Get("/{id}", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.authz.Require(authz.UpdateRoles))
		r.Put("/{id}", h.update)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.authz.Require(authz.DeleteRoles))
		r.Delete("/{id}", h.delete)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filters := parseListFilters(r.URL.Query())
	result, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list roles", slog.Any("error", err))
		httpx.JSON(w, http.StatusInternalServerError, httpx.ListEnvelope{
			Data:  []roleResponse{},
			Error: "Internal server error",
		})
		return
	}
	httpx.JSON(w, http.StatusOK, httpx.ListEnvelope{
		Success:         true,
		RecordsTotal:    result.Total,
		RecordsFiltered: result.Filtered,
		Data:            toRoleResponses(result.Roles),
		Message:         "Roles retrieved successfully",
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.roleID(w, r)
	if !ok {
		return
	}
	role, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, err, "get role")
		return
	}
	httpx.OK(w, toRoleResponse(role), "Role retrieved successfully")
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var payload rolePayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Malformed request body")
		return
	}
	if err := h.validator.Struct(payload); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Role name is required")
		return
	}
	identity := shared.IdentityFromContext(r.Context())
	role, err := h.service.Create(r.Context(), payload.Name, payload.Description, payload.Permissions, identity.UserID)
	if err != nil {
		h.respondError(w, err, "create role")
		return
	}
	httpx.Created(w, toRoleResponse(role), "Role created successfully.")
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.roleID(w, r)
	if !ok {
		return
	}
	var payload rolePayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Malformed request body")
		return
	}
	if err := h.validator.Struct(payload); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Role name is required")
		return
	}
	role, err := h.service.Update(r.Context(), id, payload.Name, payload.Description, payload.Permissions)
	if err != nil {
		h.respondError(w, err, "update role")
		return
	}
	httpx.OK(w, toRoleResponse(role), "Role updated successfully.")
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.roleID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondError(w, err, "delete role")
		return
	}
	httpx.OK(w, nil, "Role deleted successfully.")
}

func (h *Handler) capabilities(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	grants, err := h.authz.Source.Grants(r.Context(), identity.UserID)
	if err != nil {
		h.respondError(w, err, "role capabilities")
		return
	}
	effective := grants.Effective()
	httpx.OK(w, map[string]bool{
		"canCreateRoles": h.hierarchy.Can(effective, authz.CreateRoles),
		"canUpdateRoles": h.hierarchy.Can(effective, authz.UpdateRoles),
		"canDeleteRoles": h.hierarchy.Can(effective, authz.DeleteRoles),
	}, "Capabilities retrieved successfully")
}

func (h *Handler) roleID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid role id.")
		return 0, false
	}
	return id, true
}

func (h *Handler) respondError(w http.ResponseWriter, err error, op string) {
	if shared.IsInternal(err) {
		h.logger.Error(op, slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}

func parseListFilters(q url.Values) ListFilters {
	start, _ := strconv.Atoi(q.Get("start"))
	length, _ := strconv.Atoi(q.Get("length"))
	if start < 0 {
		start = 0
	}
	if length < 0 {
		length = 0
	}
	return ListFilters{
		Search:      q.Get("search[value]"),
		Name:        q.Get("filter[name]"),
		Description: q.Get("filter[description]"),
		Start:       start,
		Length:      length,
		OrderBy:     q.Get("order[0][name]"),
		OrderDir:    q.Get("order[0][dir]"),
	}
}
