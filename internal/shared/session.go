package shared

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Identity cookie names. All are issued with the session lifetime and path /.
// Only the first two participate in identity resolution; the display cookies
// exist so clients can render a name without a round trip.
const (
	CookieSessionID = "sessionId"
	CookieUserID    = "userId"
	CookieEmail     = "userEmail"
	CookieFirstName = "userFirstName"
	CookieLastName  = "userLastName"
)

// SessionManager issues opaque session tokens backed by Redis and writes the
// identity cookies that accompany them.
type SessionManager struct {
	client *redis.Client
	ttl    time.Duration
	secure bool
}

// NewSessionManager constructs a SessionManager.
func NewSessionManager(client *redis.Client, ttl time.Duration, secure bool) *SessionManager {
	return &SessionManager{client: client, ttl: ttl, secure: secure}
}

// Create registers a new session for the user and returns its opaque token.
func (sm *SessionManager) Create(ctx context.Context, userID int64) (string, error) {
	id := sm.generateSessionID()
	if err := sm.client.Set(ctx, sm.redisKey(id), strconv.FormatInt(userID, 10), sm.ttl).Err(); err != nil {
		return "", err
	}
	return id, nil
}

// Resolve maps a session token back to the user it was issued for. Unknown
// or expired tokens return ErrUnauthorized.
func (sm *SessionManager) Resolve(ctx context.Context, sessionID string) (int64, error) {
	raw, err := sm.client.Get(ctx, sm.redisKey(sessionID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrUnauthorized
		}
		return 0, err
	}
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, ErrUnauthorized
	}
	return userID, nil
}

// Destroy removes the server-side session record.
func (sm *SessionManager) Destroy(ctx context.Context, sessionID string) error {
	if err := sm.client.Del(ctx, sm.redisKey(sessionID)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	return nil
}

// TTL exposes the configured session lifetime.
func (sm *SessionManager) TTL() time.Duration {
	return sm.ttl
}

// IssueCookies writes the full identity cookie set for a logged-in user.
func (sm *SessionManager) IssueCookies(w http.ResponseWriter, sessionID string, id Identity) {
	expires := time.Now().Add(sm.ttl)
	sm.setCookie(w, CookieSessionID, sessionID, expires, true)
	sm.setCookie(w, CookieUserID, strconv.FormatInt(id.UserID, 10), expires, true)
	sm.setCookie(w, CookieEmail, id.Email, expires, false)
	sm.setCookie(w, CookieFirstName, id.FirstName, expires, false)
	sm.setCookie(w, CookieLastName, id.LastName, expires, false)
}

// ClearCookies expires every identity cookie.
func (sm *SessionManager) ClearCookies(w http.ResponseWriter) {
	for _, name := range []string{CookieSessionID, CookieUserID, CookieEmail, CookieFirstName, CookieLastName} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   sm.secure,
			SameSite: http.SameSiteStrictMode,
		})
	}
}

// IdentityFromRequest reads the identity cookies into a stub. It returns nil
// when either identifying cookie is absent or malformed.
func IdentityFromRequest(r *http.Request) *Identity {
	sessionCookie, err := r.Cookie(CookieSessionID)
	if err != nil || sessionCookie.Value == "" {
		return nil
	}
	userCookie, err := r.Cookie(CookieUserID)
	if err != nil {
		return nil
	}
	userID, err := strconv.ParseInt(userCookie.Value, 10, 64)
	if err != nil {
		return nil
	}
	id := &Identity{UserID: userID, SessionID: sessionCookie.Value}
	if c, err := r.Cookie(CookieEmail); err == nil {
		id.Email = c.Value
	}
	if c, err := r.Cookie(CookieFirstName); err == nil {
		id.FirstName = c.Value
	}
	if c, err := r.Cookie(CookieLastName); err == nil {
		id.LastName = c.Value
	}
	return id
}

func (sm *SessionManager) setCookie(w http.ResponseWriter, name, value string, expires time.Time, httpOnly bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: httpOnly,
		Secure:   sm.secure,
		SameSite: http.SameSiteStrictMode,
	})
}

func (sm *SessionManager) redisKey(id string) string {
	return "session:" + id
}

func (sm *SessionManager) generateSessionID() string {
	if id, err := uuid.NewRandom(); err == nil {
		return id.String()
	}
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return base64.RawURLEncoding.EncodeToString([]byte(time.Now().Format(time.RFC3339Nano)))
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
