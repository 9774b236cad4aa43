package notify

import (
	"context"

	"openlms/course-app/internal/domain"
)

// Notifier is the outbound notification port invoked after a successful
// state transition. Calls are best-effort: callers log failures and never
// fail the operation that triggered the notification.
type Notifier interface {
	EnrollmentCreated(ctx context.Context, user *domain.User, course *domain.Course) error
	CourseCompleted(ctx context.Context, user *domain.User, course *domain.Course) error
}

// NopNotifier discards every notification. Wired when notifications are
// disabled in config.
type NopNotifier struct{}

func (NopNotifier) EnrollmentCreated(ctx context.Context, user *domain.User, course *domain.Course) error {
	return nil
}

func (NopNotifier) CourseCompleted(ctx context.Context, user *domain.User, course *domain.Course) error {
	return nil
}
