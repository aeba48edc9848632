// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig handles framework-level settings (ports, TLS,
// logging, timeouts). AppConfig is everything specific to ExamTrack:
// database connection strings, session secrets, OAuth credentials,
// upload paths, and rate limits.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session management configuration
	SessionKey    string // secret key for signing session cookies
	SessionName   string // cookie name (default: examtrack-session)
	SessionDomain string // cookie domain (blank means current host)

	// Base URL for OAuth redirects and links in outgoing messages
	BaseURL string

	// Google OAuth configuration
	GoogleClientID     string
	GoogleClientSecret string
	OAuthStateKey      string // signs the short-lived OAuth state cookie

	// File storage for uploaded study materials (PDFs)
	UploadDir string

	// Rate limiting for unauthenticated auth endpoints
	AuthRateLimit  int
	AuthRateWindow time.Duration

	// Audit logging: "all" (db+log), "db", "log", or "off"
	AuditLogAuth  string
	AuditLogAdmin string

	// Admin bootstrap: email of an account promoted to admin on startup
	AdminEmail string
}
