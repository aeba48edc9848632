// internal/app/features/login/handler.go
package login

import (
	"net/http"

	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/policy/rolepolicy"
	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/store/audit"
	loginstore "github.com/Istiyaq-Khan/exam-track-pro/internal/app/store/logins"
	userstore "github.com/Istiyaq-Khan/exam-track-pro/internal/app/store/users"
	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/system/auditlog"
	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/system/auth"
	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/system/httpjson"
	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/system/normalize"
	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/system/ratelimit"
	"github.com/Istiyaq-Khan/exam-track-pro/internal/domain/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Handler authenticates users with email and password.
type Handler struct {
	Users    *userstore.Store
	Logins   *loginstore.Store
	Sessions *auth.SessionManager
	Audit    *auditlog.Logger
	Limiter  *ratelimit.Limiter
	Log      *zap.Logger
}

func NewHandler(users *userstore.Store, logins *loginstore.Store, sessions *auth.SessionManager, audit *auditlog.Logger, limiter *ratelimit.Limiter, logger *zap.Logger) *Handler {
	return &Handler{
		Users:    users,
		Logins:   logins,
		Sessions: sessions,
		Audit:    audit,
		Limiter:  limiter,
		Log:      logger,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	User     models.User `json:"user"`
	Upgraded bool        `json:"upgraded"`
	NewRole  string      `json:"new_role,omitempty"`
}

// Login handles POST /auth/login.
//
// A successful login bumps the login counter first and then evaluates the
// automatic role upgrade against the fresh counters, so a student's tenth
// login is the one that can promote them to advanced.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if !h.Limiter.Allow(ratelimit.ClientKey(r)) {
		h.Audit.AuthEvent(r.Context(), r, audit.EventLoginFailedRateLimit, "", false, "rate limited")
		httpjson.Error(w, http.StatusTooManyRequests, "too many login attempts, try again later")
		return
	}

	var req loginRequest
	if !httpjson.Decode(w, r, &req) {
		return
	}

	user, err := h.Users.GetByEmail(r.Context(), normalize.Email(req.Email))
	if err != nil {
		if err == userstore.ErrNotFound {
			h.Audit.AuthEvent(r.Context(), r, audit.EventLoginFailedUserNotFound, "", false, req.Email)
			httpjson.Error(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		httpjson.InternalError(w, h.Log, "login: lookup user", err)
		return
	}

	if user.PasswordHash == "" ||
		bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		h.Audit.AuthEvent(r.Context(), r, audit.EventLoginFailedWrongPassword, user.UID, false, "")
		httpjson.Error(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	fresh, err := h.Users.RecordLogin(r.Context(), user.UID)
	if err != nil {
		httpjson.InternalError(w, h.Log, "login: record login", err)
		return
	}

	resp := loginResponse{User: *fresh}
	result := rolepolicy.EvaluateUpgrade(rolepolicy.Account{
		UID:        fresh.UID,
		Role:       fresh.Role,
		LoginCount: fresh.LoginCount,
		TotalExams: fresh.ExamProgress.TotalExams,
	})
	if result.Upgraded {
		applied, err := h.Users.ApplyUpgrade(r.Context(), fresh.UID, result.PreviousRole, result.NewRole)
		if err != nil {
			httpjson.InternalError(w, h.Log, "login: apply upgrade", err)
			return
		}
		if applied {
			resp.Upgraded = true
			resp.NewRole = result.NewRole
			resp.User.Role = result.NewRole
			resp.User.IsAdmin = rolepolicy.IsPrivileged(result.NewRole)
			h.Audit.RoleEvent(r.Context(), r, audit.EventRoleAutoUpgraded, fresh.UID, fresh.UID, result.PreviousRole+" -> "+result.NewRole)
			h.Log.Info("role auto-upgraded",
				zap.String("uid", fresh.UID),
				zap.String("from", result.PreviousRole),
				zap.String("to", result.NewRole),
			)
		}
	}

	if err := h.Logins.Record(r.Context(), models.LoginRecord{
		UserUID:   fresh.UID,
		Provider:  "password",
		IP:        ratelimit.ClientKey(r),
		UserAgent: r.UserAgent(),
	}); err != nil {
		// The login itself succeeded; the record is best-effort.
		h.Log.Warn("login: record login history", zap.Error(err))
	}

	if err := h.Sessions.SignIn(w, r, &auth.SessionUser{
		UID:     resp.User.UID,
		Name:    resp.User.DisplayName,
		Email:   resp.User.Email,
		Role:    resp.User.Role,
		IsAdmin: resp.User.IsAdmin,
	}); err != nil {
		httpjson.InternalError(w, h.Log, "login: start session", err)
		return
	}

	h.Audit.AuthEvent(r.Context(), r, audit.EventLoginSuccess, fresh.UID, true, "")
	httpjson.Write(w, http.StatusOK, resp)
}
