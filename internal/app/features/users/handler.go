// internal/app/features/users/handler.go
package users

import (
	"net/http"
	"strconv"

	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/policy/rolepolicy"
	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/store/audit"
	userstore "github.com/Istiyaq-Khan/exam-track-pro/internal/app/store/users"
	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/system/auditlog"
	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/system/auth"
	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/system/httpjson"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler serves user account endpoints: self-service profile access and
// the admin management surface.
type Handler struct {
	Users *userstore.Store
	Audit *auditlog.Logger
	Log   *zap.Logger
}

func NewHandler(users *userstore.Store, audits *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{Users: users, Audit: audits, Log: logger}
}

// ServeMe handles GET /users/me.
func (h *Handler) ServeMe(w http.ResponseWriter, r *http.Request) {
	su, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "sign in required")
		return
	}
	user, err := h.Users.GetByUID(r.Context(), su.UID)
	if err != nil {
		if err == userstore.ErrNotFound {
			httpjson.Error(w, http.StatusNotFound, "account no longer exists")
			return
		}
		httpjson.InternalError(w, h.Log, "users: load self", err)
		return
	}
	httpjson.Write(w, http.StatusOK, user)
}

type profileRequest struct {
	DisplayName string `json:"display_name,omitempty"`
	PhotoURL    string `json:"photo_url,omitempty"`
	StudentID   string `json:"student_id,omitempty"`
	SchoolName  string `json:"school_name,omitempty"`
}

// UpdateMe handles PUT /users/me. Role and counters are never writable
// here; they only move through the login flow and the role endpoints.
func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	su, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "sign in required")
		return
	}
	var req profileRequest
	if !httpjson.Decode(w, r, &req) {
		return
	}
	err := h.Users.UpdateProfile(r.Context(), su.UID, userstore.ProfileUpdate{
		DisplayName: req.DisplayName,
		PhotoURL:    req.PhotoURL,
		StudentID:   req.StudentID,
		SchoolName:  req.SchoolName,
	})
	if err != nil {
		if err == userstore.ErrNotFound {
			httpjson.Error(w, http.StatusNotFound, "account no longer exists")
			return
		}
		httpjson.InternalError(w, h.Log, "users: update profile", err)
		return
	}
	user, err := h.Users.GetByUID(r.Context(), su.UID)
	if err != nil {
		httpjson.InternalError(w, h.Log, "users: reload profile", err)
		return
	}
	httpjson.Write(w, http.StatusOK, user)
}

// ServeList handles GET /users (admin). Supports ?role=, ?limit=, ?offset=.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	role := query.Get(r, "role")
	if role != "" && !rolepolicy.IsValidRole(role) {
		httpjson.Error(w, http.StatusBadRequest, "unknown role filter")
		return
	}
	limit, _ := strconv.ParseInt(query.Get(r, "limit"), 10, 64)
	offset, _ := strconv.ParseInt(query.Get(r, "offset"), 10, 64)
	users, err := h.Users.List(r.Context(), role, limit, offset)
	if err != nil {
		httpjson.InternalError(w, h.Log, "users: list", err)
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]any{"users": users, "count": len(users)})
}

// ServeOne handles GET /users/{uid} (admin).
func (h *Handler) ServeOne(w http.ResponseWriter, r *http.Request) {
	user, err := h.Users.GetByUID(r.Context(), chi.URLParam(r, "uid"))
	if err != nil {
		if err == userstore.ErrNotFound {
			httpjson.Error(w, http.StatusNotFound, "user not found")
			return
		}
		httpjson.InternalError(w, h.Log, "users: load", err)
		return
	}
	httpjson.Write(w, http.StatusOK, user)
}

// RecordLogin handles POST /users/{uid}/login. It bumps the login counter
// and applies the automatic upgrade if the fresh counters qualify. A user
// may only record logins for themselves; admins may do it for anyone.
func (h *Handler) RecordLogin(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")
	su, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "sign in required")
		return
	}
	if su.UID != uid && !su.IsAdmin {
		httpjson.Error(w, http.StatusForbidden, "cannot record logins for another user")
		return
	}

	fresh, err := h.Users.RecordLogin(r.Context(), uid)
	if err != nil {
		if err == userstore.ErrNotFound {
			httpjson.Error(w, http.StatusNotFound, "user not found")
			return
		}
		httpjson.InternalError(w, h.Log, "users: record login", err)
		return
	}

	resp := map[string]any{
		"login_count": fresh.LoginCount,
		"role":        fresh.Role,
		"upgraded":    false,
	}
	result := rolepolicy.EvaluateUpgrade(rolepolicy.Account{
		UID:        fresh.UID,
		Role:       fresh.Role,
		LoginCount: fresh.LoginCount,
		TotalExams: fresh.ExamProgress.TotalExams,
	})
	if result.Upgraded {
		applied, err := h.Users.ApplyUpgrade(r.Context(), fresh.UID, result.PreviousRole, result.NewRole)
		if err != nil {
			httpjson.InternalError(w, h.Log, "users: apply upgrade", err)
			return
		}
		if applied {
			resp["upgraded"] = true
			resp["role"] = result.NewRole
			h.Audit.RoleEvent(r.Context(), r, audit.EventRoleAutoUpgraded, fresh.UID, su.UID, result.PreviousRole+" -> "+result.NewRole)
		}
	}
	httpjson.Write(w, http.StatusOK, resp)
}

type upgradeRequest struct {
	ToRole string `json:"to_role"`
}

// Upgrade handles POST /users/{uid}/upgrade (admin). Only the forward
// transitions are allowed: student to advanced, advanced to admin. Admin
// is terminal.
func (h *Handler) Upgrade(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")
	su, _ := auth.CurrentUser(r)

	var req upgradeRequest
	if !httpjson.Decode(w, r, &req) {
		return
	}
	if !rolepolicy.IsValidRole(req.ToRole) {
		httpjson.Error(w, http.StatusBadRequest, "unknown role")
		return
	}

	user, err := h.Users.GetByUID(r.Context(), uid)
	if err != nil {
		if err == userstore.ErrNotFound {
			httpjson.Error(w, http.StatusNotFound, "user not found")
			return
		}
		httpjson.InternalError(w, h.Log, "users: load for upgrade", err)
		return
	}

	if !rolepolicy.ValidUpgrade(user.Role, req.ToRole) {
		httpjson.Error(w, http.StatusBadRequest, "invalid upgrade from "+user.Role+" to "+req.ToRole)
		return
	}

	applied, err := h.Users.ApplyUpgrade(r.Context(), uid, user.Role, req.ToRole)
	if err != nil {
		httpjson.InternalError(w, h.Log, "users: apply upgrade", err)
		return
	}
	if !applied {
		// The role changed between the read and the guarded update.
		httpjson.Error(w, http.StatusConflict, "role changed concurrently, retry")
		return
	}

	h.Audit.RoleEvent(r.Context(), r, audit.EventRoleOverridden, uid, su.UID, user.Role+" -> "+req.ToRole)
	h.Log.Info("role upgraded by admin",
		zap.String("uid", uid),
		zap.String("actor", su.UID),
		zap.String("from", user.Role),
		zap.String("to", req.ToRole),
	)
	httpjson.Write(w, http.StatusOK, map[string]string{"role": req.ToRole})
}

type setRoleRequest struct {
	Role string `json:"role"`
}

// SetRole handles PUT /users/{uid}/role (admin). Unlike Upgrade this can
// move in any direction, including demotions.
func (h *Handler) SetRole(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")
	su, _ := auth.CurrentUser(r)

	var req setRoleRequest
	if !httpjson.Decode(w, r, &req) {
		return
	}
	if !rolepolicy.IsValidRole(req.Role) {
		httpjson.Error(w, http.StatusBadRequest, "unknown role")
		return
	}
	if err := h.Users.SetRole(r.Context(), uid, req.Role); err != nil {
		if err == userstore.ErrNotFound {
			httpjson.Error(w, http.StatusNotFound, "user not found")
			return
		}
		httpjson.InternalError(w, h.Log, "users: set role", err)
		return
	}
	h.Audit.RoleEvent(r.Context(), r, audit.EventRoleOverridden, uid, su.UID, "set to "+req.Role)
	httpjson.Write(w, http.StatusOK, map[string]string{"role": req.Role})
}

// Delete handles DELETE /users/{uid} (admin).
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")
	su, _ := auth.CurrentUser(r)

	if su.UID == uid {
		httpjson.Error(w, http.StatusBadRequest, "admins cannot delete their own account")
		return
	}

	deleted, err := h.Users.Delete(r.Context(), uid)
	if err != nil {
		httpjson.InternalError(w, h.Log, "users: delete", err)
		return
	}
	if deleted == 0 {
		httpjson.Error(w, http.StatusNotFound, "user not found")
		return
	}
	h.Audit.AdminEvent(r.Context(), r, audit.EventUserDeleted, uid, su.UID, "")
	httpjson.Write(w, http.StatusOK, map[string]string{"status": "deleted"})
}
