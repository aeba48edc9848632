// Package timeouts provides centralized timeout values for handler
// operations. Used with context.WithTimeout around database calls so the
// whole app stays consistent and the values can be tuned in one place.
//
// Guidelines:
//   - Ping: health checks and connectivity verification
//   - Short: single-document reads or lookups
//   - Medium: list queries, moderate writes
//   - Long: multi-collection writes (e.g. connecting two accounts)
package timeouts

import "time"

const (
	ping   = 2 * time.Second
	short  = 5 * time.Second
	medium = 10 * time.Second
	long   = 30 * time.Second
)

// Ping returns the timeout for health checks.
func Ping() time.Duration { return ping }

// Short returns the timeout for simple single-document operations.
func Short() time.Duration { return short }

// Medium returns the timeout for list queries and ordinary writes.
func Medium() time.Duration { return medium }

// Long returns the timeout for writes that touch multiple documents.
func Long() time.Duration { return long }
