package users

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

// Handler manages the user CRUD endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	authz     authz.Middleware
	validator *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, mw authz.Middleware) *Handler {
	return &Handler{logger: logger, service: service, authz: mw, validator: validator.New()}
}

// MountRoutes registers user routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.authz.Require(authz.ReadUsers))
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.authz.Require(authz.CreateUsers))
		r.Post("/", h.create)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.authz.Require(authz.UpdateUsers))
		r.Put("/{id}", h.update)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.authz.Require(authz.DeleteUsers))
		r.Delete("/{id}", h.delete)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filters := parseListFilters(r.URL.Query())
	result, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list users", slog.Any("error", err))
		httpx.JSON(w, http.StatusInternalServerError, httpx.ListEnvelope{
			Data:  []userResponse{},
			Error: "Internal server error",
		})
		return
	}
	httpx.JSON(w, http.StatusOK, httpx.ListEnvelope{
		Success:         true,
		RecordsTotal:    result.Total,
		RecordsFiltered: result.Filtered,
		Data:            toUserResponses(result.Users),
		Message:         "Users retrieved successfully",
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userID(w, r)
	if !ok {
		return
	}
	user, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, err, "get user")
		return
	}
	httpx.OK(w, toUserResponse(user), "User retrieved successfully")
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var payload createUserPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Malformed request body")
		return
	}
	if err := h.validator.Struct(payload); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Username, email, password and role are required")
		return
	}
	user, err := h.service.Create(r.Context(), CreateInput{
		Username:    payload.Username,
		Email:       payload.Email,
		FirstName:   payload.FirstName,
		LastName:    payload.LastName,
		Password:    payload.Password,
		RoleID:      payload.RoleID,
		Permissions: payload.Permissions,
	})
	if err != nil {
		h.respondError(w, err, "create user")
		return
	}
	httpx.Created(w, toUserResponse(user), "User created successfully.")
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userID(w, r)
	if !ok {
		return
	}
	var payload updateUserPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Malformed request body")
		return
	}
	if err := h.validator.Struct(payload); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Username, email and role are required")
		return
	}
	user, err := h.service.Update(r.Context(), id, UpdateInput{
		Username:    payload.Username,
		Email:       payload.Email,
		FirstName:   payload.FirstName,
		LastName:    payload.LastName,
		Password:    payload.Password,
		RoleID:      payload.RoleID,
		Permissions: payload.Permissions,
	})
	if err != nil {
		h.respondError(w, err, "update user")
		return
	}
	httpx.OK(w, toUserResponse(user), "User updated successfully.")
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondError(w, err, "delete user")
		return
	}
	httpx.OK(w, nil, "User deleted successfully.")
}

func (h *Handler) userID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid user id.")
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
		Search:   q.Get("search[value]"),
		Username: q.Get("filter[username]"),
		Email:    q.Get("filter[email]"),
		Start:    start,
		Length:   length,
		OrderBy:  q.Get("order[0][name]"),
		OrderDir: q.Get("order[0][dir]"),
	}
}
