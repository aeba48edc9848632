// internal/app/system/auth/auth.go
package auth

// Terminology: User Identifiers
//   - UID / uid: the opaque string identifier that travels in URLs and API
//     payloads and links documents across collections
//   - UserID / user_id: the MongoDB ObjectID (_id) of the user document

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

const (
	isAuthKey   = "is_authenticated"
	uidKey      = "uid"
	nameKey     = "user_name"
	emailKey    = "user_email"
	roleKey     = "user_role"
	isAdminKey  = "user_is_admin"
)

// SessionUser is what we cache in the session and inject into r.Context().
type SessionUser struct {
	UID     string
	Name    string
	Email   string
	Role    string
	IsAdmin bool
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the user and a "found?" flag.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok
}

// WithTestUser injects a user into the request context, bypassing the
// session middleware. For tests only.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}

// SessionManager owns the cookie session store and the auth middleware.
type SessionManager struct {
	store       *sessions.CookieStore
	sessionName string
	log         *zap.Logger
}

// NewSessionManager builds a SessionManager backed by a cookie store.
// In production (secure=true) cookies are Secure + SameSite=Lax.
func NewSessionManager(sessionKey, sessionName, domain string, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, fmt.Errorf("session key is empty; provide ≥32 random chars")
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	store.Options = &sessions.Options{
		Domain:   domain,
		Path:     "/",
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	logger.Info("session store initialized",
		zap.Bool("secure", secure),
		zap.String("domain", domain))

	return &SessionManager{store: store, sessionName: sessionName, log: logger}, nil
}

// SignIn writes the user into the session cookie.
func (sm *SessionManager) SignIn(w http.ResponseWriter, r *http.Request, u *SessionUser) error {
	sess, _ := sm.store.Get(r, sm.sessionName)
	sess.Values[isAuthKey] = true
	sess.Values[uidKey] = u.UID
	sess.Values[nameKey] = u.Name
	sess.Values[emailKey] = u.Email
	sess.Values[roleKey] = u.Role
	sess.Values[isAdminKey] = u.IsAdmin
	return sess.Save(r, w)
}

// SignOut clears the session cookie.
func (sm *SessionManager) SignOut(w http.ResponseWriter, r *http.Request) error {
	sess, _ := sm.store.Get(r, sm.sessionName)
	sess.Values = map[interface{}]interface{}{}
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

// LoadSessionUser injects the user into context if they are signed in.
// It runs on every request so handlers can call auth.CurrentUser.
func (sm *SessionManager) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, _ := sm.store.Get(r, sm.sessionName)

		if isAuth, _ := sess.Values[isAuthKey].(bool); isAuth {
			isAdmin, _ := sess.Values[isAdminKey].(bool)
			u := &SessionUser{
				UID:     getString(sess, uidKey),
				Name:    getString(sess, nameKey),
				Email:   getString(sess, emailKey),
				Role:    getString(sess, roleKey),
				IsAdmin: isAdmin,
			}
			r = withUser(r, u)
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSignedIn ensures there is a user in context (set by LoadSessionUser).
// API callers get a plain 401 body.
func (sm *SessionManager) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); !ok {
			writeJSONError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole ensures there is a signed-in user whose role is one of the
// allowed set. Not signed in → 401; wrong role → 403.
func (sm *SessionManager) RequireRole(allowed ...string) func(http.Handler) http.Handler {
	set := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		set[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := CurrentUser(r)
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			if _, has := set[u.Role]; !has {
				writeJSONError(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// helpers

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

// getString safely extracts a string from a session value.
func getString(s *sessions.Session, key string) string {
	if v, ok := s.Values[key].(string); ok {
		return v
	}
	return ""
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	fmt.Fprintf(w, `{"error":%q}`+"\n", msg)
}
