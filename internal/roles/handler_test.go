package roles_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrs-suite/hrs/internal/authz"
	"github.com/hrs-suite/hrs/internal/roles"
	"github.com/hrs-suite/hrs/internal/shared"
)

type memoryRepo struct {
	roles  map[int64]roles.Role
	nextID int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{roles: map[int64]roles.Role{}, nextID: 1}
}

func (m *memoryRepo) Count(context.Context) (int64, error) {
	return int64(len(m.roles)), nil
}

func (m *memoryRepo) CountFiltered(context.Context, roles.ListFilters) (int64, error) {
	return int64(len(m.roles)), nil
}

func (m *memoryRepo) List(context.Context, roles.ListFilters) ([]roles.Role, error) {
	out := make([]roles.Role, 0, len(m.roles))
	for _, r := range m.roles {
		out = append(out, r)
	}
	return out, nil
}

func (m *memoryRepo) Get(_ context.Context, id int64) (roles.Role, error) {
	role, ok := m.roles[id]
	if !ok {
		return roles.Role{}, shared.ErrNotFound
	}
	return role, nil
}

func (m *memoryRepo) Create(_ context.Context, p roles.CreateParams) (roles.Role, error) {
	role := roles.Role{
		ID:              m.nextID,
		Name:            p.Name,
		Description:     p.Description,
		Permissions:     p.Permissions,
		CreatedByUserID: p.CreatedByUserID,
	}
	m.roles[role.ID] = role
	m.nextID++
	return role, nil
}

func (m *memoryRepo) Update(_ context.Context, id int64, p roles.UpdateParams) (roles.Role, error) {
	role, ok := m.roles[id]
	if !ok {
		return roles.Role{}, shared.ErrNotFound
	}
	role.Name = p.Name
	role.Description = p.Description
	role.Permissions = p.Permissions
	m.roles[id] = role
	return role, nil
}

func (m *memoryRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.roles[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.roles, id)
	return nil
}

type grantTable map[int64]authz.Grants

func (g grantTable) Grants(_ context.Context, userID int64) (authz.Grants, error) {
	grants, ok := g[userID]
	if !ok {
		return authz.Grants{}, shared.ErrNotFound
	}
	return grants, nil
}

type fixture struct {
	router   chi.Router
	sessions *shared.SessionManager
	repo     *memoryRepo
}

// newFixture assembles the role routes behind the same identity resolution
// the application router uses: cookies name a session, the session store
// confirms it, and authorization re-loads grants per user.
func newFixture(t *testing.T, grants grantTable) fixture {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	sessions := shared.NewSessionManager(client, 720*time.Hour, false)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := newMemoryRepo()
	mw := authz.Middleware{Hierarchy: authz.NewHierarchy(), Source: grants, Logger: logger}
	handler := roles.NewHandler(logger, roles.NewService(repo), mw)

	router := chi.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := shared.IdentityFromRequest(r)
			if identity != nil {
				userID, err := sessions.Resolve(r.Context(), identity.SessionID)
				if err != nil || userID != identity.UserID {
					identity = nil
				}
			}
			if identity != nil {
				r = r.WithContext(shared.ContextWithIdentity(r.Context(), identity))
			}
			next.ServeHTTP(w, r)
		})
	})
	router.Route("/api/roles", handler.MountRoutes)
	return fixture{router: router, sessions: sessions, repo: repo}
}

func (f fixture) loginAs(t *testing.T, userID int64) []*http.Cookie {
	t.Helper()
	sessionID, err := f.sessions.Create(context.Background(), userID)
	require.NoError(t, err)
	return []*http.Cookie{
		{Name: shared.CookieSessionID, Value: sessionID},
		{Name: shared.CookieUserID, Value: strconv.FormatInt(userID, 10)},
	}
}

func (f fixture) do(method, target, body string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestRolesAnonymousRejected(t *testing.T) {
	f := newFixture(t, grantTable{})

	rec := f.do(http.MethodPost, "/api/roles", `{"name":"HR Manager"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(http.MethodGet, "/api/roles", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRolesForgedSessionRejected(t *testing.T) {
	f := newFixture(t, grantTable{1: {Role: []string{authz.DoEverything}}})

	cookies := []*http.Cookie{
		{Name: shared.CookieSessionID, Value: "not-a-real-session"},
		{Name: shared.CookieUserID, Value: "1"},
	}
	rec := f.do(http.MethodGet, "/api/roles", "", cookies)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRolesSessionUserMismatchRejected(t *testing.T) {
	f := newFixture(t, grantTable{
		1: {Role: []string{authz.DoEverything}},
		2: {Role: []string{authz.ReadReports}},
	})

	cookies := f.loginAs(t, 2)
	// Claim to be user 1 while holding user 2's session.
	cookies[1].Value = "1"
	rec := f.do(http.MethodGet, "/api/roles", "", cookies)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRolesCreateForbiddenWithoutGrant(t *testing.T) {
	f := newFixture(t, grantTable{7: {Role: []string{authz.ReadReports}}})

	rec := f.do(http.MethodPost, "/api/roles", `{"name":"HR Manager"}`, f.loginAs(t, 7))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRolesCreateAsSuperAdministrator(t *testing.T) {
	f := newFixture(t, grantTable{1: {Role: roles.SuperAdministrator.Permissions}})

	body := `{"name":"HR Manager","description":"Manages people","permissions":["Manage Users"]}`
	rec := f.do(http.MethodPost, "/api/roles", body, f.loginAs(t, 1))
	require.Equal(t, http.StatusCreated, rec.Code)

	var envelope struct {
		Success bool `json:"success"`
		Data    struct {
			ID              int64    `json:"id"`
			Name            string   `json:"name"`
			Permissions     []string `json:"permissions"`
			CreatedByUserID *int64   `json:"createdByUserId"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.True(t, envelope.Success)
	assert.Equal(t, "HR Manager", envelope.Data.Name)
	assert.Equal(t, []string{authz.ManageUsers}, envelope.Data.Permissions)
	require.NotNil(t, envelope.Data.CreatedByUserID)
	assert.Equal(t, int64(1), *envelope.Data.CreatedByUserID)
}

func TestRolesListEnvelope(t *testing.T) {
	f := newFixture(t, grantTable{1: {Role: []string{authz.DoEverything}}})
	cookies := f.loginAs(t, 1)

	rec := f.do(http.MethodPost, "/api/roles", `{"name":"HR Manager"}`, cookies)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(http.MethodGet, "/api/roles?start=0&length=10", "", cookies)
	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Success         bool              `json:"success"`
		RecordsTotal    int64             `json:"recordsTotal"`
		RecordsFiltered int64             `json:"recordsFiltered"`
		Data            []json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.True(t, envelope.Success)
	assert.Equal(t, int64(1), envelope.RecordsTotal)
	assert.Equal(t, int64(1), envelope.RecordsFiltered)
	assert.Len(t, envelope.Data, 1)
}

func TestRolesCreateValidation(t *testing.T) {
	f := newFixture(t, grantTable{1: {Role: []string{authz.DoEverything}}})
	cookies := f.loginAs(t, 1)

	rec := f.do(http.MethodPost, "/api/roles", `{"description":"no name"}`, cookies)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodPost, "/api/roles", `{"name":`, cookies)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRolesInvalidID(t *testing.T) {
	f := newFixture(t, grantTable{1: {Role: []string{authz.DoEverything}}})

	rec := f.do(http.MethodGet, "/api/roles/banana", "", f.loginAs(t, 1))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRolesGetMissing(t *testing.T) {
	f := newFixture(t, grantTable{1: {Role: []string{authz.DoEverything}}})

	rec := f.do(http.MethodGet, "/api/roles/99", "", f.loginAs(t, 1))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRolesUpdateAndDelete(t *testing.T) {
	f := newFixture(t, grantTable{1: {Role: []string{authz.DoEverything}}})
	cookies := f.loginAs(t, 1)

	rec := f.do(http.MethodPost, "/api/roles", `{"name":"HR Manager"}`, cookies)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(http.MethodPut, "/api/roles/1", `{"name":"People Ops","permissions":["Read Users"]}`, cookies)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "People Ops", f.repo.roles[1].Name)

	rec = f.do(http.MethodDelete, "/api/roles/1", "", cookies)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, f.repo.roles)
}

func TestRolesCapabilities(t *testing.T) {
	f := newFixture(t, grantTable{5: {Role: []string{authz.ReadRoles, authz.UpdateRoles}}})

	rec := f.do(http.MethodGet, "/api/roles/capabilities", "", f.loginAs(t, 5))
	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Data map[string]bool `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.False(t, envelope.Data["canCreateRoles"])
	assert.True(t, envelope.Data["canUpdateRoles"])
	assert.False(t, envelope.Data["canDeleteRoles"])
}
