package certificate

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	unsafeChars   = regexp.MustCompile(`[^A-Za-z0-9_\-]`)
)

// Sanitize makes a string safe for use in a filename: whitespace runs become
// a single underscore and anything outside [A-Za-z0-9_-] is stripped.
func Sanitize(s string) string {
	s = strings.TrimSpace(s)
	s = whitespaceRun.ReplaceAllString(s, "_")
	return unsafeChars.ReplaceAllString(s, "")
}

// FileName builds the user-facing certificate filename from the user's full
// name and the course title.
func FileName(fullName, courseTitle string) string {
	return Sanitize(fullName) + "_" + Sanitize(courseTitle) + ".pdf"
}

// ObjectKey builds the storage key a certificate is cached under. Keying by
// (userId, courseId) keeps re-requests idempotent while making sure two users
// with the same sanitized full name (or two same-titled courses) can never
// collide on a cache entry.
func ObjectKey(userID, courseID string) string {
	return fmt.Sprintf("certificates/%s/%s.pdf", userID, courseID)
}
