package auditlog_test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	auditlogfeature "github.com/Istiyaq-Khan/exam-track-pro/internal/app/features/auditlog"
	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/store/audit"
	"github.com/Istiyaq-Khan/exam-track-pro/internal/testutil"
	"go.uber.org/zap"
)

func TestListFiltersByCategory(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)

	audits := audit.New(db)
	seed := []audit.Event{
		{Category: audit.CategoryAuth, EventType: audit.EventLoginSuccess, UserUID: "user_a", Success: true},
		{Category: audit.CategoryAuth, EventType: audit.EventLoginFailedWrongPassword, UserUID: "user_a"},
		{Category: audit.CategoryRole, EventType: audit.EventRoleAutoUpgraded, UserUID: "user_a", Success: true},
	}
	for _, ev := range seed {
		if err := audits.Log(ctx, ev); err != nil {
			t.Fatalf("log event: %v", err)
		}
	}

	h := auditlogfeature.NewHandler(audits, zap.NewNop())

	req := testutil.NewAuthenticatedRequest("GET", "/admin/audit?category=auth", testutil.AdminUser())
	rec := testutil.NewRecorder()
	h.ServeList(rec, req)

	rec.AssertStatus(t, http.StatusOK)

	var resp struct {
		Events []audit.Event `json:"events"`
		Page   int           `json:"page"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Events) != 2 {
		t.Fatalf("events len = %d, want 2", len(resp.Events))
	}
	for _, ev := range resp.Events {
		if ev.Category != audit.CategoryAuth {
			t.Errorf("category = %q, want %q", ev.Category, audit.CategoryAuth)
		}
	}
}

func TestListDateWindowExcludesOldEvents(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)

	audits := audit.New(db)
	old := audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventSettingsUpdated,
		Timestamp: time.Now().UTC().AddDate(0, 0, -30),
	}
	recent := audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventSettingsReset,
	}
	if err := audits.Log(ctx, old); err != nil {
		t.Fatalf("log old event: %v", err)
	}
	if err := audits.Log(ctx, recent); err != nil {
		t.Fatalf("log recent event: %v", err)
	}

	h := auditlogfeature.NewHandler(audits, zap.NewNop())

	start := time.Now().UTC().AddDate(0, 0, -7).Format("2006-01-02")
	req := testutil.NewAuthenticatedRequest("GET", "/admin/audit?start_date="+start, testutil.AdminUser())
	rec := testutil.NewRecorder()
	h.ServeList(rec, req)

	rec.AssertStatus(t, http.StatusOK)

	var resp struct {
		Events []audit.Event `json:"events"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Events) != 1 {
		t.Fatalf("events len = %d, want 1", len(resp.Events))
	}
	if resp.Events[0].EventType != audit.EventSettingsReset {
		t.Errorf("event_type = %q, want %q", resp.Events[0].EventType, audit.EventSettingsReset)
	}
}
