package bootstrap_test

import (
	"testing"

	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/bootstrap"
	userstore "github.com/Istiyaq-Khan/exam-track-pro/internal/app/store/users"
	"github.com/Istiyaq-Khan/exam-track-pro/internal/testutil"
	"go.uber.org/zap"
)

func TestEnsureAdminAccountPromotesExistingUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)

	u := fx.CreateStudent(ctx, "Future Admin", "boss@example.com")

	users := userstore.New(db)
	if err := bootstrap.EnsureAdminAccount(ctx, users, "boss@example.com", zap.NewNop()); err != nil {
		t.Fatalf("EnsureAdminAccount: %v", err)
	}

	got, err := users.GetByUID(ctx, u.UID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got.Role != "admin" {
		t.Errorf("role = %q, want %q", got.Role, "admin")
	}
	if !got.IsAdmin {
		t.Error("is_admin = false, want true")
	}
}

func TestEnsureAdminAccountMissingUserIsNotFatal(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)

	users := userstore.New(db)
	if err := bootstrap.EnsureAdminAccount(ctx, users, "nobody@example.com", zap.NewNop()); err != nil {
		t.Fatalf("EnsureAdminAccount: %v", err)
	}
}

func TestEnsureAdminAccountBlankEmailIsNoop(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)

	users := userstore.New(db)
	if err := bootstrap.EnsureAdminAccount(ctx, users, "", zap.NewNop()); err != nil {
		t.Fatalf("EnsureAdminAccount: %v", err)
	}
}
