package settings_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/features/settings"
	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/store/audit"
	settingsstore "github.com/Istiyaq-Khan/exam-track-pro/internal/app/store/settings"
	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/system/auditlog"
	"github.com/Istiyaq-Khan/exam-track-pro/internal/domain/models"
	"github.com/Istiyaq-Khan/exam-track-pro/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newHandler(db *mongo.Database) *settings.Handler {
	audits := auditlog.New(audit.New(db), zap.NewNop(), auditlog.Config{Auth: "db", Admin: "db"})
	return settings.NewHandler(settingsstore.New(db), audits, zap.NewNop())
}

func TestGetReturnsDefaultsWhenUnset(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(db)

	req := testutil.NewAuthenticatedRequest("GET", "/admin/settings", testutil.AdminUser())
	rec := testutil.NewRecorder()
	h.ServeGet(rec, req)

	rec.AssertStatus(t, http.StatusOK)

	var got models.SiteSettings
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	want := models.DefaultSiteSettings()
	if got.SiteName != want.SiteName {
		t.Errorf("site name: got %q, want %q", got.SiteName, want.SiteName)
	}
	if !got.RegistrationEnabled {
		t.Error("defaults must enable registration")
	}
}

func TestUpdatePersistsAcrossReads(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(db)
	admin := testutil.AdminUser()

	body := `{"site_name":"Renamed Tracker","registration_enabled":false,"max_upload_size_mb":20,` +
		`"max_users_per_teacher":10,"exam_reminder_days":5,` +
		`"features":{"blogging":false,"exam_tracking":true,"study_materials":true,` +
		`"teacher_student_connect":true,"messaging":true,"analytics":true}}`
	req := testutil.NewJSONRequest("PUT", "/admin/settings", body)
	req = testutil.WithUser(req, admin)
	rec := testutil.NewRecorder()
	h.Update(rec, req)
	rec.AssertStatus(t, http.StatusOK)

	// A second handler backed by the same database sees the change: the
	// state lives in the store, not in the process.
	other := newHandler(db)
	req = testutil.NewAuthenticatedRequest("GET", "/admin/settings", admin)
	rec = testutil.NewRecorder()
	other.ServeGet(rec, req)

	var got models.SiteSettings
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if got.SiteName != "Renamed Tracker" {
		t.Errorf("site name: got %q, want %q", got.SiteName, "Renamed Tracker")
	}
	if got.RegistrationEnabled {
		t.Error("registration_enabled should persist as false")
	}
	if got.Features.Blogging {
		t.Error("features.blogging should persist as false")
	}
	if got.UpdatedByUID != admin.UID {
		t.Errorf("updated_by_uid: got %q, want %q", got.UpdatedByUID, admin.UID)
	}
}

func TestUpdateValidation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(db)
	admin := testutil.AdminUser()

	tests := []struct {
		name string
		body string
	}{
		{"missing site name", `{"max_upload_size_mb":10}`},
		{"zero upload size", `{"site_name":"X","max_upload_size_mb":0}`},
		{"oversized upload limit", `{"site_name":"X","max_upload_size_mb":500}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.NewJSONRequest("PUT", "/admin/settings", tt.body)
			req = testutil.WithUser(req, admin)
			rec := testutil.NewRecorder()
			h.Update(rec, req)
			rec.AssertStatus(t, http.StatusBadRequest)
		})
	}
}

func TestReset(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	h := newHandler(db)
	admin := testutil.AdminUser()

	store := settingsstore.New(db)
	custom := models.DefaultSiteSettings()
	custom.SiteName = "Changed"
	if err := store.Save(ctx, custom, admin.UID, admin.Name); err != nil {
		t.Fatalf("seed settings: %v", err)
	}

	req := testutil.NewAuthenticatedRequest("POST", "/admin/settings/reset", admin)
	rec := testutil.NewRecorder()
	h.Reset(rec, req)
	rec.AssertStatus(t, http.StatusOK)

	got, err := store.Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.SiteName != models.DefaultSiteName {
		t.Errorf("site name after reset: got %q, want %q", got.SiteName, models.DefaultSiteName)
	}
}
