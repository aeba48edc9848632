package userstore

import (
	"errors"
	"testing"

	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/policy/rolepolicy"
	"github.com/Istiyaq-Khan/exam-track-pro/internal/domain/models"
	"github.com/Istiyaq-Khan/exam-track-pro/internal/testutil"
)

func TestCreateNormalizesAndDefaults(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := New(db)

	u, err := store.Create(ctx, models.User{
		Email:       "  Rahim@Example.COM ",
		DisplayName: "  Rahim   Uddin ",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if u.Email != "rahim@example.com" {
		t.Errorf("email: got %q, want %q", u.Email, "rahim@example.com")
	}
	if u.DisplayName != "Rahim Uddin" {
		t.Errorf("display name: got %q, want %q", u.DisplayName, "Rahim Uddin")
	}
	if u.Role != rolepolicy.RoleStudent {
		t.Errorf("role: got %q, want %q", u.Role, rolepolicy.RoleStudent)
	}
	if u.IsAdmin {
		t.Error("new student must not be admin")
	}
	if u.UID == "" {
		t.Error("uid was not generated")
	}
}

func TestCreateDuplicateEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := New(db)

	// The email unique index must exist for the duplicate to be rejected.
	ensureEmailIndex(t, ctx, db)

	if _, err := store.Create(ctx, models.User{Email: "dup@example.com", DisplayName: "First"}); err != nil {
		t.Fatalf("first Create: %v", err)
	}
	_, err := store.Create(ctx, models.User{Email: "DUP@example.com", DisplayName: "Second"})
	if !errors.Is(err, ErrDuplicateEmail) {
		t.Errorf("got %v, want ErrDuplicateEmail", err)
	}
}

func TestCreateRejectsUnknownRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := New(db)

	if _, err := store.Create(ctx, models.User{Email: "x@example.com", DisplayName: "X", Role: "superuser"}); err == nil {
		t.Error("expected error for unknown role")
	}
}

func TestRecordLoginIncrements(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := New(db)
	fx := testutil.NewFixtures(t, db)

	u := fx.CreateStudent(ctx, "Login Test", "login@example.com")

	for want := 1; want <= 3; want++ {
		got, err := store.RecordLogin(ctx, u.UID)
		if err != nil {
			t.Fatalf("RecordLogin #%d: %v", want, err)
		}
		if got.LoginCount != want {
			t.Errorf("login count after #%d: got %d, want %d", want, got.LoginCount, want)
		}
	}

	if _, err := store.RecordLogin(ctx, "user_missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing user: got %v, want ErrNotFound", err)
	}
}

func TestApplyUpgradeIsConditional(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := New(db)
	fx := testutil.NewFixtures(t, db)

	u := fx.CreateStudent(ctx, "Upgrade Test", "upgrade@example.com")

	applied, err := store.ApplyUpgrade(ctx, u.UID, rolepolicy.RoleStudent, rolepolicy.RoleAdvanced)
	if err != nil {
		t.Fatalf("ApplyUpgrade: %v", err)
	}
	if !applied {
		t.Fatal("first upgrade should apply")
	}

	// The same transition again must be a no-op: the role guard no longer
	// matches.
	applied, err = store.ApplyUpgrade(ctx, u.UID, rolepolicy.RoleStudent, rolepolicy.RoleAdvanced)
	if err != nil {
		t.Fatalf("second ApplyUpgrade: %v", err)
	}
	if applied {
		t.Error("stale upgrade must not apply")
	}

	got, err := store.GetByUID(ctx, u.UID)
	if err != nil {
		t.Fatalf("GetByUID: %v", err)
	}
	if got.Role != rolepolicy.RoleAdvanced {
		t.Errorf("role: got %q, want %q", got.Role, rolepolicy.RoleAdvanced)
	}
	if got.IsAdmin {
		t.Error("advanced user must not be admin")
	}
}

func TestSetRoleRecomputesIsAdmin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := New(db)
	fx := testutil.NewFixtures(t, db)

	u := fx.CreateUser(ctx, "Role Test", "role@example.com", rolepolicy.RoleAdvanced)

	if err := store.SetRole(ctx, u.UID, rolepolicy.RoleAdmin); err != nil {
		t.Fatalf("SetRole admin: %v", err)
	}
	got, _ := store.GetByUID(ctx, u.UID)
	if !got.IsAdmin {
		t.Error("admin role must set is_admin")
	}

	if err := store.SetRole(ctx, u.UID, rolepolicy.RoleTeacher); err != nil {
		t.Fatalf("SetRole teacher: %v", err)
	}
	got, _ = store.GetByUID(ctx, u.UID)
	if got.IsAdmin {
		t.Error("demotion from admin must clear is_admin")
	}

	if err := store.SetRole(ctx, u.UID, "superuser"); err == nil {
		t.Error("expected error for unknown role")
	}
	if err := store.SetRole(ctx, "user_missing", rolepolicy.RoleTeacher); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing user: got %v, want ErrNotFound", err)
	}
}

func TestIncExamTotals(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := New(db)
	fx := testutil.NewFixtures(t, db)

	u := fx.CreateStudent(ctx, "Exam Totals", "totals@example.com")

	if err := store.IncExamTotals(ctx, u.UID, 1, 0); err != nil {
		t.Fatalf("IncExamTotals: %v", err)
	}
	if err := store.IncExamTotals(ctx, u.UID, 1, 1); err != nil {
		t.Fatalf("IncExamTotals: %v", err)
	}

	got, _ := store.GetByUID(ctx, u.UID)
	if got.ExamProgress.TotalExams != 2 {
		t.Errorf("total exams: got %d, want 2", got.ExamProgress.TotalExams)
	}
	if got.ExamProgress.CompletedExams != 1 {
		t.Errorf("completed exams: got %d, want 1", got.ExamProgress.CompletedExams)
	}
}

func TestCountByRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := New(db)
	fx := testutil.NewFixtures(t, db)

	fx.CreateStudent(ctx, "S1", "s1@example.com")
	fx.CreateStudent(ctx, "S2", "s2@example.com")
	fx.CreateTeacher(ctx, "T1", "t1@example.com")

	counts, err := store.CountByRole(ctx)
	if err != nil {
		t.Fatalf("CountByRole: %v", err)
	}
	if counts[rolepolicy.RoleStudent] != 2 {
		t.Errorf("students: got %d, want 2", counts[rolepolicy.RoleStudent])
	}
	if counts[rolepolicy.RoleTeacher] != 1 {
		t.Errorf("teachers: got %d, want 1", counts[rolepolicy.RoleTeacher])
	}
}
