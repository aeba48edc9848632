// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	analyticsfeature "github.com/Istiyaq-Khan/exam-track-pro/internal/app/features/analytics"
	auditlogfeature "github.com/Istiyaq-Khan/exam-track-pro/internal/app/features/auditlog"
	authgooglefeature "github.com/Istiyaq-Khan/exam-track-pro/internal/app/features/authgoogle"
	blogsfeature "github.com/Istiyaq-Khan/exam-track-pro/internal/app/features/blogs"
	booksfeature "github.com/Istiyaq-Khan/exam-track-pro/internal/app/features/books"
	connectionsfeature "github.com/Istiyaq-Khan/exam-track-pro/internal/app/features/connections"
	dashboardfeature "github.com/Istiyaq-Khan/exam-track-pro/internal/app/features/dashboard"
	examsfeature "github.com/Istiyaq-Khan/exam-track-pro/internal/app/features/exams"
	healthfeature "github.com/Istiyaq-Khan/exam-track-pro/internal/app/features/health"
	loginfeature "github.com/Istiyaq-Khan/exam-track-pro/internal/app/features/login"
	logoutfeature "github.com/Istiyaq-Khan/exam-track-pro/internal/app/features/logout"
	messagesfeature "github.com/Istiyaq-Khan/exam-track-pro/internal/app/features/messages"
	registerfeature "github.com/Istiyaq-Khan/exam-track-pro/internal/app/features/register"
	settingsfeature "github.com/Istiyaq-Khan/exam-track-pro/internal/app/features/settings"
	usersfeature "github.com/Istiyaq-Khan/exam-track-pro/internal/app/features/users"
	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/store/audit"
	blogstore "github.com/Istiyaq-Khan/exam-track-pro/internal/app/store/blogs"
	bookstore "github.com/Istiyaq-Khan/exam-track-pro/internal/app/store/books"
	examstore "github.com/Istiyaq-Khan/exam-track-pro/internal/app/store/exams"
	loginstore "github.com/Istiyaq-Khan/exam-track-pro/internal/app/store/logins"
	settingsstore "github.com/Istiyaq-Khan/exam-track-pro/internal/app/store/settings"
	userstore "github.com/Istiyaq-Khan/exam-track-pro/internal/app/store/users"
	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/system/auditlog"
	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/system/auth"
	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/system/filestore"
	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/system/httpjson"
	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/system/ratelimit"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. It builds the stores, the session
// manager, and the audit logger, then mounts a feature router for each
// part of the API.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	db := deps.MongoDatabase
	users := userstore.New(db)
	settings := settingsstore.New(db)
	logins := loginstore.New(db)
	exams := examstore.New(db)
	blogs := blogstore.New(db)
	books := bookstore.New(db)

	auditStore := audit.New(db)
	audits := auditlog.New(auditStore, logger, auditlog.Config{
		Auth:  appCfg.AuditLogAuth,
		Admin: appCfg.AuditLogAdmin,
	})

	files, err := filestore.New(appCfg.UploadDir)
	if err != nil {
		logger.Error("file store init failed", zap.Error(err))
		return nil, err
	}

	authLimiter := ratelimit.New(appCfg.AuthRateLimit, appCfg.AuthRateWindow)

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if logged in.
	// This makes the current user available to all handlers via auth.CurrentUser(r).
	r.Use(sessionMgr.LoadSessionUser)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httpjson.Error(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httpjson.Error(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Static assets with pre-compressed file support (gzip/brotli)
	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	// Authentication
	registerHandler := registerfeature.NewHandler(users, settings, sessionMgr, audits, authLimiter, logger)
	r.Mount("/auth/register", registerfeature.Routes(registerHandler))

	loginHandler := loginfeature.NewHandler(users, logins, sessionMgr, audits, authLimiter, logger)
	r.Mount("/auth/login", loginfeature.Routes(loginHandler))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, audits, logger)
	r.Mount("/auth/logout", logoutfeature.Routes(logoutHandler))

	if appCfg.GoogleClientID != "" {
		googleHandler := authgooglefeature.NewHandler(
			users, logins, sessionMgr, audits,
			appCfg.GoogleClientID, appCfg.GoogleClientSecret, appCfg.BaseURL,
			[]byte(appCfg.OAuthStateKey), logger,
		)
		r.Mount("/auth/google", authgooglefeature.Routes(googleHandler))
	}

	// Accounts and roles
	usersHandler := usersfeature.NewHandler(users, audits, logger)
	r.Mount("/users", usersfeature.Routes(usersHandler, sessionMgr))

	// Teacher/student connections and direct messages
	connectionsHandler := connectionsfeature.NewHandler(users, settings, audits, logger)
	r.Mount("/connections", connectionsfeature.Routes(connectionsHandler, sessionMgr))

	messagesHandler := messagesfeature.NewHandler(users, settings, logger)
	r.Mount("/messages", messagesfeature.Routes(messagesHandler, sessionMgr))

	// Exam tracking
	examsHandler := examsfeature.NewHandler(exams, users, settings, logger)
	r.Mount("/exams", examsfeature.Routes(examsHandler, sessionMgr))

	// Community content
	blogsHandler := blogsfeature.NewHandler(blogs, settings, audits, logger)
	r.Mount("/blogs", blogsfeature.Routes(blogsHandler, sessionMgr))

	booksHandler := booksfeature.NewHandler(books, files, settings, audits, logger)
	r.Mount("/books", booksfeature.Routes(booksHandler, sessionMgr))

	// Admin surfaces
	settingsHandler := settingsfeature.NewHandler(settings, audits, logger)
	r.Mount("/admin/settings", settingsfeature.Routes(settingsHandler, sessionMgr))

	analyticsHandler := analyticsfeature.NewHandler(users, exams, blogs, books, logins, logger)
	r.Mount("/admin/analytics", analyticsfeature.Routes(analyticsHandler, sessionMgr))

	auditHandler := auditlogfeature.NewHandler(auditStore, logger)
	r.Mount("/admin/audit", auditlogfeature.Routes(auditHandler, sessionMgr))

	// Role-based dashboard
	dashboardHandler := dashboardfeature.NewHandler(users, exams, logins, logger)
	r.Mount("/dashboard", dashboardfeature.Routes(dashboardHandler, sessionMgr))

	return r, nil
}
