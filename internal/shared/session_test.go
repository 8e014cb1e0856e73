package shared

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T, ttl time.Duration) (*SessionManager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSessionManager(client, ttl, false), mr
}

func TestSessionCreateResolveDestroy(t *testing.T) {
	sm, _ := newManager(t, time.Hour)
	ctx := context.Background()

	id, err := sm.Create(ctx, 42)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	userID, err := sm.Resolve(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)

	require.NoError(t, sm.Destroy(ctx, id))
	_, err = sm.Resolve(ctx, id)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestSessionResolveUnknownToken(t *testing.T) {
	sm, _ := newManager(t, time.Hour)
	_, err := sm.Resolve(context.Background(), "never-issued")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestSessionExpiry(t *testing.T) {
	sm, mr := newManager(t, time.Minute)
	ctx := context.Background()

	id, err := sm.Create(ctx, 7)
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)
	_, err = sm.Resolve(ctx, id)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestIssueCookiesSet(t *testing.T) {
	sm, _ := newManager(t, 720*time.Hour)

	rec := httptest.NewRecorder()
	sm.IssueCookies(rec, "token-1", Identity{
		UserID: 3, Email: "jdoe@example.com", FirstName: "Jane", LastName: "Doe",
	})

	cookies := map[string]*http.Cookie{}
	for _, c := range rec.Result().Cookies() {
		cookies[c.Name] = c
	}
	require.Len(t, cookies, 5)
	assert.Equal(t, "token-1", cookies[CookieSessionID].Value)
	assert.Equal(t, "3", cookies[CookieUserID].Value)
	assert.Equal(t, "jdoe@example.com", cookies[CookieEmail].Value)
	assert.True(t, cookies[CookieSessionID].HttpOnly)
	assert.True(t, cookies[CookieUserID].HttpOnly)
	for name, c := range cookies {
		assert.Equal(t, "/", c.Path, "cookie %s", name)
		assert.WithinDuration(t, time.Now().Add(720*time.Hour), c.Expires, time.Minute, "cookie %s", name)
	}
}

func TestClearCookiesExpireAll(t *testing.T) {
	sm, _ := newManager(t, time.Hour)

	rec := httptest.NewRecorder()
	sm.ClearCookies(rec)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 5)
	for _, c := range cookies {
		assert.Less(t, c.MaxAge, 0, "cookie %s", c.Name)
	}
}

func TestIdentityFromRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieSessionID, Value: "token-1"})
	req.AddCookie(&http.Cookie{Name: CookieUserID, Value: "3"})
	req.AddCookie(&http.Cookie{Name: CookieEmail, Value: "jdoe@example.com"})
	req.AddCookie(&http.Cookie{Name: CookieFirstName, Value: "Jane"})
	req.AddCookie(&http.Cookie{Name: CookieLastName, Value: "Doe"})

	id := IdentityFromRequest(req)
	require.NotNil(t, id)
	assert.Equal(t, int64(3), id.UserID)
	assert.Equal(t, "token-1", id.SessionID)
	assert.Equal(t, "jdoe@example.com", id.Email)
	assert.Equal(t, "Jane", id.FirstName)
	assert.Equal(t, "Doe", id.LastName)
}

func TestIdentityFromRequestMissingOrMalformed(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Nil(t, IdentityFromRequest(req))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieSessionID, Value: "token-1"})
	assert.Nil(t, IdentityFromRequest(req), "userId cookie required")

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieSessionID, Value: "token-1"})
	req.AddCookie(&http.Cookie{Name: CookieUserID, Value: "not-a-number"})
	assert.Nil(t, IdentityFromRequest(req))
}
