// internal/app/features/connections/handler.go
package connections

import (
	"errors"
	"net/http"

	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/policy/rolepolicy"
	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/store/audit"
	settingsstore "github.com/Istiyaq-Khan/exam-track-pro/internal/app/store/settings"
	userstore "github.com/Istiyaq-Khan/exam-track-pro/internal/app/store/users"
	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/system/auditlog"
	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/system/auth"
	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/system/httpjson"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler manages teacher/student connections.
type Handler struct {
	Users    *userstore.Store
	Settings *settingsstore.Store
	Audit    *auditlog.Logger
	Log      *zap.Logger
}

func NewHandler(users *userstore.Store, settings *settingsstore.Store, audits *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{Users: users, Settings: settings, Audit: audits, Log: logger}
}

type connectRequest struct {
	StudentUID string `json:"student_uid"`
	// TeacherUID lets an admin connect on behalf of a teacher. Teachers
	// connecting for themselves leave it empty.
	TeacherUID string `json:"teacher_uid,omitempty"`
}

type connectResponse struct {
	Connected        bool   `json:"connected"`
	AlreadyConnected bool   `json:"already_connected"`
	TeacherUID       string `json:"teacher_uid"`
	StudentUID       string `json:"student_uid"`
}

// Connect handles POST /connections.
//
// The teacher side must hold the teacher or admin role and the student
// side must hold student or advanced; both sides are re-read from the
// database so a stale session role cannot authorize a link. Connecting an
// already linked pair reports already_connected instead of failing, and
// never writes a second entry.
func (h *Handler) Connect(w http.ResponseWriter, r *http.Request) {
	su, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "sign in required")
		return
	}

	site, err := h.Settings.Get(r.Context())
	if err != nil {
		httpjson.InternalError(w, h.Log, "connections: load settings", err)
		return
	}
	if !site.Features.TeacherStudentConnect {
		httpjson.Error(w, http.StatusForbidden, "teacher-student connections are disabled")
		return
	}

	var req connectRequest
	if !httpjson.Decode(w, r, &req) {
		return
	}
	if req.StudentUID == "" {
		httpjson.Error(w, http.StatusBadRequest, "student_uid is required")
		return
	}

	teacherUID := su.UID
	if req.TeacherUID != "" && req.TeacherUID != su.UID {
		if !su.IsAdmin {
			httpjson.Error(w, http.StatusForbidden, "only admins can connect on behalf of a teacher")
			return
		}
		teacherUID = req.TeacherUID
	}
	if teacherUID == req.StudentUID {
		httpjson.Error(w, http.StatusBadRequest, "cannot connect an account to itself")
		return
	}

	teacher, err := h.Users.GetByUID(r.Context(), teacherUID)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			httpjson.Error(w, http.StatusNotFound, "teacher not found")
			return
		}
		httpjson.InternalError(w, h.Log, "connections: load teacher", err)
		return
	}
	student, err := h.Users.GetByUID(r.Context(), req.StudentUID)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			httpjson.Error(w, http.StatusNotFound, "student not found")
			return
		}
		httpjson.InternalError(w, h.Log, "connections: load student", err)
		return
	}

	if err := rolepolicy.ConnectDecision(teacher.Role, student.Role); err != nil {
		var perr *rolepolicy.PermissionError
		if errors.As(err, &perr) {
			h.Audit.RoleEvent(r.Context(), r, audit.EventConnectionDenied, student.UID, teacher.UID, perr.Error())
			httpjson.Error(w, http.StatusForbidden, perr.Error())
			return
		}
		httpjson.InternalError(w, h.Log, "connections: decision", err)
		return
	}

	if site.MaxUsersPerTeacher > 0 && len(teacher.Connections) >= site.MaxUsersPerTeacher {
		httpjson.Error(w, http.StatusConflict, "teacher has reached the connection limit")
		return
	}

	// Write the teacher side first; it carries the idempotence check.
	err = h.Users.AddConnection(r.Context(), teacher.UID, student.UID)
	if errors.Is(err, userstore.ErrAlreadyConnected) {
		httpjson.Write(w, http.StatusOK, connectResponse{
			AlreadyConnected: true,
			TeacherUID:       teacher.UID,
			StudentUID:       student.UID,
		})
		return
	}
	if err != nil {
		httpjson.InternalError(w, h.Log, "connections: link teacher side", err)
		return
	}
	if err := h.Users.AddConnection(r.Context(), student.UID, teacher.UID); err != nil &&
		!errors.Is(err, userstore.ErrAlreadyConnected) {
		httpjson.InternalError(w, h.Log, "connections: link student side", err)
		return
	}

	h.Audit.RoleEvent(r.Context(), r, audit.EventStudentConnected, student.UID, teacher.UID, "")
	h.Log.Info("teacher-student connection created",
		zap.String("teacher_uid", teacher.UID),
		zap.String("student_uid", student.UID),
	)

	httpjson.Write(w, http.StatusCreated, connectResponse{
		Connected:  true,
		TeacherUID: teacher.UID,
		StudentUID: student.UID,
	})
}

// connectionView joins a connection entry with the peer's public profile.
type connectionView struct {
	UID         string `json:"uid"`
	Status      string `json:"status"`
	ConnectedAt any    `json:"connected_at"`
	DisplayName string `json:"display_name,omitempty"`
	Role        string `json:"role,omitempty"`
	PhotoURL    string `json:"photo_url,omitempty"`
}

// ServeList handles GET /connections and returns the caller's links with
// peer names resolved.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	su, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "sign in required")
		return
	}
	user, err := h.Users.GetByUID(r.Context(), su.UID)
	if err != nil {
		httpjson.InternalError(w, h.Log, "connections: load self", err)
		return
	}

	views := make([]connectionView, 0, len(user.Connections))
	for _, conn := range user.Connections {
		view := connectionView{UID: conn.UID, Status: conn.Status, ConnectedAt: conn.ConnectedAt}
		if peer, err := h.Users.GetByUID(r.Context(), conn.UID); err == nil {
			view.DisplayName = peer.DisplayName
			view.Role = peer.Role
			view.PhotoURL = peer.PhotoURL
		}
		views = append(views, view)
	}
	httpjson.Write(w, http.StatusOK, map[string]any{"connections": views})
}

// Disconnect handles DELETE /connections/{uid} and removes the link from
// both sides.
func (h *Handler) Disconnect(w http.ResponseWriter, r *http.Request) {
	su, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "sign in required")
		return
	}
	peerUID := chi.URLParam(r, "uid")

	if err := h.Users.RemoveConnection(r.Context(), su.UID, peerUID); err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			httpjson.Error(w, http.StatusNotFound, "connection not found")
			return
		}
		httpjson.InternalError(w, h.Log, "connections: remove own side", err)
		return
	}
	if err := h.Users.RemoveConnection(r.Context(), peerUID, su.UID); err != nil &&
		!errors.Is(err, userstore.ErrNotFound) {
		httpjson.InternalError(w, h.Log, "connections: remove peer side", err)
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]string{"status": "disconnected"})
}
