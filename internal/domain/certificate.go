package domain

// CertificateFile is a rendered completion certificate. FileName is the
// user-facing name derived from the user's full name and the course title;
// ObjectKey is the storage key the artifact is cached under, keyed by
// (userId, courseId) so sanitized-name collisions never cross users or
// courses.
type CertificateFile struct {
	FileName    string `json:"fileName"`
	ObjectKey   string `json:"objectKey"`
	ContentType string `json:"contentType"`
	Content     []byte `json:"-"`
}
