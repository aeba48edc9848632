// internal/app/system/normalize/normalize.go
package normalize

import "strings"

// Email lowercases and trims an email address so lookups and the unique
// index agree on one canonical form.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims a display name and collapses interior runs of whitespace.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Slug turns a title into a URL slug: lowercase, alphanumerics kept,
// everything else collapsed to single hyphens.
func Slug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	lastHyphen := true // suppress a leading hyphen
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
