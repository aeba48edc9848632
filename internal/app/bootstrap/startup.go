// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"

	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/policy/rolepolicy"
	userstore "github.com/Istiyaq-Khan/exam-track-pro/internal/app/store/users"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	return EnsureAdminAccount(ctx, userstore.New(deps.MongoDatabase), appCfg.AdminEmail, logger)
}

// EnsureAdminAccount promotes the configured account to admin. The account
// must already exist; startup does not invent credentials. A blank email
// disables the bootstrap.
func EnsureAdminAccount(ctx context.Context, users *userstore.Store, email string, logger *zap.Logger) error {
	if email == "" {
		return nil
	}
	user, err := users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			logger.Warn("admin_email set but no such account; register it first", zap.String("email", email))
			return nil
		}
		return err
	}
	if user.Role == rolepolicy.RoleAdmin {
		return nil
	}
	if err := users.SetRole(ctx, user.UID, rolepolicy.RoleAdmin); err != nil {
		return err
	}
	logger.Info("promoted account to admin", zap.String("uid", user.UID), zap.String("email", email))
	return nil
}
