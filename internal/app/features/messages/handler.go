// internal/app/features/messages/handler.go
package messages

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/policy/rolepolicy"
	settingsstore "github.com/Istiyaq-Khan/exam-track-pro/internal/app/store/settings"
	userstore "github.com/Istiyaq-Khan/exam-track-pro/internal/app/store/users"
	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/system/auth"
	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/system/gates"
	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/system/httpjson"
	"github.com/Istiyaq-Khan/exam-track-pro/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
)

// MessageTeacherToStudent is the message type for teacher guidance sent to
// a connected student.
const MessageTeacherToStudent = "teacher_to_student"

// Handler serves the embedded-inbox messaging endpoints.
type Handler struct {
	Users    *userstore.Store
	Settings *settingsstore.Store
	Log      *zap.Logger

	sanitizer *bluemonday.Policy
}

func NewHandler(users *userstore.Store, settings *settingsstore.Store, logger *zap.Logger) *Handler {
	return &Handler{
		Users:     users,
		Settings:  settings,
		Log:       logger,
		sanitizer: bluemonday.StrictPolicy(),
	}
}

type sendRequest struct {
	ToUID string `json:"to_uid"`
	Body  string `json:"body"`
	Type  string `json:"type,omitempty"`
}

// Send handles POST /messages.
//
// A teacher_to_student message requires an active connection between the
// sender and recipient; a blocked or removed link refuses delivery.
func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	su, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "sign in required")
		return
	}

	site, err := h.Settings.Get(r.Context())
	if err != nil {
		httpjson.InternalError(w, h.Log, "messages: load settings", err)
		return
	}
	if !site.Features.Messaging {
		httpjson.Error(w, http.StatusForbidden, "messaging is disabled")
		return
	}

	var req sendRequest
	if !httpjson.Decode(w, r, &req) {
		return
	}
	body := strings.TrimSpace(h.sanitizer.Sanitize(req.Body))
	if req.ToUID == "" || body == "" {
		httpjson.Error(w, http.StatusBadRequest, "to_uid and body are required")
		return
	}
	if req.ToUID == su.UID {
		httpjson.Error(w, http.StatusBadRequest, "cannot message yourself")
		return
	}
	msgType := req.Type
	if msgType == "" {
		msgType = MessageTeacherToStudent
	}

	if msgType == MessageTeacherToStudent {
		res := gates.RequireCapability(w, r, rolepolicy.CapSendDirectMessages)
		if !res.OK {
			return
		}
		// Admins can reach any student; teachers only their connected ones.
		if res.Role != rolepolicy.RoleAdmin {
			active, err := h.Users.HasActiveConnection(r.Context(), su.UID, req.ToUID)
			if err != nil {
				httpjson.InternalError(w, h.Log, "messages: check connection", err)
				return
			}
			if !active {
				httpjson.Error(w, http.StatusForbidden, "no active connection to this student")
				return
			}
		}
	}

	err = h.Users.PushMessage(r.Context(), req.ToUID, models.Message{
		FromUID:  su.UID,
		FromName: su.Name,
		Body:     body,
		Type:     msgType,
	})
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			httpjson.Error(w, http.StatusNotFound, "recipient not found")
			return
		}
		httpjson.InternalError(w, h.Log, "messages: push", err)
		return
	}

	httpjson.Write(w, http.StatusCreated, map[string]string{"status": "sent"})
}

// ServeInbox handles GET /messages and returns the caller's inbox, newest
// first, with the unread count.
func (h *Handler) ServeInbox(w http.ResponseWriter, r *http.Request) {
	su, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "sign in required")
		return
	}
	msgs, err := h.Users.ListMessages(r.Context(), su.UID)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			httpjson.Error(w, http.StatusNotFound, "account no longer exists")
			return
		}
		httpjson.InternalError(w, h.Log, "messages: list", err)
		return
	}
	unread := 0
	for _, m := range msgs {
		if !m.Read {
			unread++
		}
	}
	httpjson.Write(w, http.StatusOK, map[string]any{"messages": msgs, "unread": unread})
}

// MarkRead handles POST /messages/read/{uid}: it marks every message from
// that sender as read.
func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	su, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "sign in required")
		return
	}
	fromUID := chi.URLParam(r, "uid")
	if err := h.Users.MarkMessagesRead(r.Context(), su.UID, fromUID); err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			httpjson.Error(w, http.StatusNotFound, "account no longer exists")
			return
		}
		httpjson.InternalError(w, h.Log, "messages: mark read", err)
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]string{"status": "read"})
}
