// internal/app/features/authgoogle/handler.go
package authgoogle

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/policy/rolepolicy"
	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/store/audit"
	loginstore "github.com/Istiyaq-Khan/exam-track-pro/internal/app/store/logins"
	userstore "github.com/Istiyaq-Khan/exam-track-pro/internal/app/store/users"
	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/system/auditlog"
	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/system/auth"
	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/system/ratelimit"
	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/system/timeouts"
	"github.com/Istiyaq-Khan/exam-track-pro/internal/domain/models"
	"github.com/gorilla/securecookie"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const stateCookie = "examtrack_oauth_state"

// Handler handles Google OAuth authentication. A Google sign-in with no
// matching account registers a new student on the spot; existing accounts
// go through the same counter bump and upgrade evaluation as password
// logins.
type Handler struct {
	Users    *userstore.Store
	Logins   *loginstore.Store
	Sessions *auth.SessionManager
	Audit    *auditlog.Logger
	Log      *zap.Logger

	ClientID     string
	ClientSecret string
	RedirectURL  string // e.g. "https://examtrack.app/auth/google/callback"

	cookies *securecookie.SecureCookie
}

// NewHandler creates a new Google OAuth handler. stateKey signs the state
// cookie that ties the callback to the browser that started the flow.
func NewHandler(
	users *userstore.Store,
	logins *loginstore.Store,
	sessions *auth.SessionManager,
	audits *auditlog.Logger,
	clientID, clientSecret, baseURL string,
	stateKey []byte,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Users:        users,
		Logins:       logins,
		Sessions:     sessions,
		Audit:        audits,
		Log:          logger,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  baseURL + "/auth/google/callback",
		cookies:      securecookie.New(stateKey, nil),
	}
}

// oauth2Config returns the Google OAuth2 configuration.
func (h *Handler) oauth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     h.ClientID,
		ClientSecret: h.ClientSecret,
		RedirectURL:  h.RedirectURL,
		Scopes: []string{
			"openid",
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}
}

// IsConfigured returns true if Google OAuth is configured.
func (h *Handler) IsConfigured() bool {
	return h.ClientID != "" && h.ClientSecret != ""
}

// ServeLogin handles GET /auth/google and redirects to Google's consent
// screen with a signed state cookie.
func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	if !h.IsConfigured() {
		h.Log.Warn("Google OAuth not configured")
		http.Redirect(w, r, "/login?error=google_not_configured", http.StatusSeeOther)
		return
	}

	state, err := generateState()
	if err != nil {
		h.Log.Error("failed to generate OAuth state", zap.Error(err))
		http.Redirect(w, r, "/login?error=internal", http.StatusSeeOther)
		return
	}

	encoded, err := h.cookies.Encode(stateCookie, state)
	if err != nil {
		h.Log.Error("failed to encode OAuth state cookie", zap.Error(err))
		http.Redirect(w, r, "/login?error=internal", http.StatusSeeOther)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    encoded,
		Path:     "/auth/google",
		MaxAge:   600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.oauth2Config().AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// ServeCallback handles GET /auth/google/callback: it validates the state,
// exchanges the code, fetches the Google profile, and signs the user in,
// creating a student account when none exists yet.
func (h *Handler) ServeCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.Log.Warn("Google OAuth error",
			zap.String("error", errParam),
			zap.String("description", r.URL.Query().Get("error_description")))
		http.Redirect(w, r, "/login?error=google_denied", http.StatusSeeOther)
		return
	}

	if !h.validState(r) {
		h.Log.Warn("invalid or expired OAuth state")
		http.Redirect(w, r, "/login?error=invalid_state", http.StatusSeeOther)
		return
	}
	// The state is single-use.
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Path: "/auth/google", MaxAge: -1})

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Redirect(w, r, "/login?error=invalid_code", http.StatusSeeOther)
		return
	}

	token, err := h.oauth2Config().Exchange(ctx, code)
	if err != nil {
		h.Log.Error("failed to exchange OAuth code", zap.Error(err))
		http.Redirect(w, r, "/login?error=token_exchange", http.StatusSeeOther)
		return
	}

	googleUser, err := fetchGoogleUserInfo(ctx, token)
	if err != nil {
		h.Log.Error("failed to fetch Google user info", zap.Error(err))
		http.Redirect(w, r, "/login?error=user_info", http.StatusSeeOther)
		return
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, timeouts.Medium())
	defer cancel()

	user, err := h.findOrCreateUser(ctxTimeout, googleUser)
	if err != nil {
		h.Log.Error("Google OAuth: resolve user", zap.Error(err))
		http.Redirect(w, r, "/login?error=internal", http.StatusSeeOther)
		return
	}

	fresh, err := h.Users.RecordLogin(ctxTimeout, user.UID)
	if err != nil {
		h.Log.Error("Google OAuth: record login", zap.Error(err))
		http.Redirect(w, r, "/login?error=internal", http.StatusSeeOther)
		return
	}

	result := rolepolicy.EvaluateUpgrade(rolepolicy.Account{
		UID:        fresh.UID,
		Role:       fresh.Role,
		LoginCount: fresh.LoginCount,
		TotalExams: fresh.ExamProgress.TotalExams,
	})
	if result.Upgraded {
		applied, err := h.Users.ApplyUpgrade(ctxTimeout, fresh.UID, result.PreviousRole, result.NewRole)
		if err != nil {
			h.Log.Error("Google OAuth: apply upgrade", zap.Error(err))
		} else if applied {
			fresh.Role = result.NewRole
			fresh.IsAdmin = rolepolicy.IsPrivileged(result.NewRole)
			h.Audit.RoleEvent(ctx, r, audit.EventRoleAutoUpgraded, fresh.UID, fresh.UID, result.PreviousRole+" -> "+result.NewRole)
		}
	}

	if err := h.Logins.Record(ctxTimeout, models.LoginRecord{
		UserUID:   fresh.UID,
		Provider:  "google",
		IP:        ratelimit.ClientKey(r),
		UserAgent: r.UserAgent(),
	}); err != nil {
		h.Log.Warn("Google OAuth: record login history", zap.Error(err))
	}

	if err := h.Sessions.SignIn(w, r, &auth.SessionUser{
		UID:     fresh.UID,
		Name:    fresh.DisplayName,
		Email:   fresh.Email,
		Role:    fresh.Role,
		IsAdmin: fresh.IsAdmin,
	}); err != nil {
		h.Log.Error("Google OAuth: start session", zap.Error(err))
		http.Redirect(w, r, "/login?error=internal", http.StatusSeeOther)
		return
	}

	h.Audit.AuthEvent(ctx, r, audit.EventLoginSuccess, fresh.UID, true, "")
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (h *Handler) validState(r *http.Request) bool {
	state := r.URL.Query().Get("state")
	if state == "" {
		return false
	}
	cookie, err := r.Cookie(stateCookie)
	if err != nil {
		return false
	}
	var stored string
	if err := h.cookies.Decode(stateCookie, cookie.Value, &stored); err != nil {
		return false
	}
	return stored == state
}

// findOrCreateUser matches the Google profile to an account by email, or
// registers a new student.
func (h *Handler) findOrCreateUser(ctx context.Context, info *googleUserInfo) (*models.User, error) {
	user, err := h.Users.GetByEmail(ctx, info.Email)
	if err == nil {
		return user, nil
	}
	if err != userstore.ErrNotFound {
		return nil, err
	}

	created, err := h.Users.Create(ctx, models.User{
		Email:       info.Email,
		DisplayName: info.Name,
		PhotoURL:    info.Picture,
		AuthMethod:  "google",
		Role:        rolepolicy.RoleStudent,
	})
	if err != nil {
		if err == userstore.ErrDuplicateEmail {
			// Another callback for the same new account won the race.
			return h.Users.GetByEmail(ctx, info.Email)
		}
		return nil, err
	}
	h.Log.Info("user registered via Google", zap.String("uid", created.UID))
	return &created, nil
}

// googleUserInfo represents user info returned from Google.
type googleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// fetchGoogleUserInfo retrieves user information from Google's userinfo endpoint.
func fetchGoogleUserInfo(ctx context.Context, token *oauth2.Token) (*googleUserInfo, error) {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))

	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}
	return &info, nil
}

// generateState returns a cryptographically random state value.
func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
