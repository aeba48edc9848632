// internal/app/features/register/handler.go
package register

import (
	"net/http"
	"strings"

	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/policy/rolepolicy"
	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/store/audit"
	settingsstore "github.com/Istiyaq-Khan/exam-track-pro/internal/app/store/settings"
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

// TeacherSignupCode is the shared code that lets someone register directly
// as a teacher. Accounts without it always start as students.
const TeacherSignupCode = "TEACHER2024"

// Handler registers new accounts with email and password.
type Handler struct {
	Users    *userstore.Store
	Settings *settingsstore.Store
	Sessions *auth.SessionManager
	Audit    *auditlog.Logger
	Limiter  *ratelimit.Limiter
	Log      *zap.Logger
}

func NewHandler(users *userstore.Store, settings *settingsstore.Store, sessions *auth.SessionManager, audit *auditlog.Logger, limiter *ratelimit.Limiter, logger *zap.Logger) *Handler {
	return &Handler{
		Users:    users,
		Settings: settings,
		Sessions: sessions,
		Audit:    audit,
		Limiter:  limiter,
		Log:      logger,
	}
}

type registerRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
	TeacherCode string `json:"teacher_code,omitempty"`
	SchoolName  string `json:"school_name,omitempty"`
	StudentID   string `json:"student_id,omitempty"`
}

// Register handles POST /auth/register. New accounts start as students
// unless a valid teacher code is supplied; nobody can register as admin.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	if !h.Limiter.Allow(ratelimit.ClientKey(r)) {
		httpjson.Error(w, http.StatusTooManyRequests, "too many registration attempts, try again later")
		return
	}

	site, err := h.Settings.Get(r.Context())
	if err != nil {
		httpjson.InternalError(w, h.Log, "register: load settings", err)
		return
	}
	if !site.RegistrationEnabled {
		httpjson.Error(w, http.StatusForbidden, "registration is currently disabled")
		return
	}

	var req registerRequest
	if !httpjson.Decode(w, r, &req) {
		return
	}

	email := normalize.Email(req.Email)
	name := normalize.Name(req.DisplayName)
	if email == "" || !strings.Contains(email, "@") {
		httpjson.Error(w, http.StatusBadRequest, "a valid email is required")
		return
	}
	if name == "" {
		httpjson.Error(w, http.StatusBadRequest, "display name is required")
		return
	}
	if len(req.Password) < 8 {
		httpjson.Error(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	role := rolepolicy.RoleStudent
	if req.TeacherCode != "" {
		if req.TeacherCode != TeacherSignupCode {
			httpjson.Error(w, http.StatusBadRequest, "invalid teacher code")
			return
		}
		role = rolepolicy.RoleTeacher
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		httpjson.InternalError(w, h.Log, "register: hash password", err)
		return
	}

	user, err := h.Users.Create(r.Context(), models.User{
		Email:        email,
		DisplayName:  name,
		PasswordHash: string(hash),
		AuthMethod:   "password",
		Role:         role,
		SchoolName:   req.SchoolName,
		StudentID:    req.StudentID,
	})
	if err != nil {
		if err == userstore.ErrDuplicateEmail {
			httpjson.Error(w, http.StatusConflict, err.Error())
			return
		}
		httpjson.InternalError(w, h.Log, "register: create user", err)
		return
	}

	h.Audit.AuthEvent(r.Context(), r, audit.EventUserRegistered, user.UID, true, "")
	h.Log.Info("user registered",
		zap.String("uid", user.UID),
		zap.String("role", user.Role),
	)

	if err := h.Sessions.SignIn(w, r, &auth.SessionUser{
		UID:     user.UID,
		Name:    user.DisplayName,
		Email:   user.Email,
		Role:    user.Role,
		IsAdmin: user.IsAdmin,
	}); err != nil {
		httpjson.InternalError(w, h.Log, "register: start session", err)
		return
	}

	httpjson.Write(w, http.StatusCreated, user)
}
