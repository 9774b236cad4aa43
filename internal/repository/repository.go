package repository

import (
	"context" // Standard for request-scoped deadlines, cancellation signals, etc.

	"openlms/course-app/internal/domain" // Import our defined domain models

	"go.mongodb.org/mongo-driver/bson/primitive" // For using ObjectIDs
)

// Error constants for repository layer (optional but good practice)
var (
	ErrNotFound     = RepositoryError("not found")
	ErrDuplicate    = RepositoryError("duplicate record")
	ErrConflict     = RepositoryError("concurrent modification conflict")
	ErrUpdateFailed = RepositoryError("update failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
}

// CourseRepository is the read side of the course catalog consumed by the
// enrollment core: course lookups plus chapter/lesson membership.
type CourseRepository interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Course, error)
	GetChapterByID(ctx context.Context, id primitive.ObjectID) (*domain.Chapter, error)
	GetLessonByID(ctx context.Context, id primitive.ObjectID) (*domain.Lesson, error)
	GetLessonsByCourseID(ctx context.Context, courseID primitive.ObjectID) ([]domain.Lesson, error)
	// CountLessonsByCourseID walks chapters -> lessons; the stored course
	// carries no lesson counter of its own.
	CountLessonsByCourseID(ctx context.Context, courseID primitive.ObjectID) (int, error)
}

// EnrollmentRepository defines the interface for interacting with enrollment data.
type EnrollmentRepository interface {
	// Create inserts a new enrollment. Returns ErrDuplicate when a record
	// for the same (user, course) pair already exists; the unique index
	// backs the one-record-per-pair invariant under concurrent enrolls.
	Create(ctx context.Context, enrollment *domain.Enrollment) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Enrollment, error)
	// GetByUserAndCourse returns the enrollment for the pair regardless of
	// its active flag (suspension keeps the record).
	GetByUserAndCourse(ctx context.Context, userID, courseID primitive.ObjectID) (*domain.Enrollment, error)
	// Update persists the enrollment with an optimistic version check and
	// returns ErrConflict when the stored version moved underneath it.
	Update(ctx context.Context, enrollment *domain.Enrollment) error
	// FindByUser returns one page of the user's enrollments matching the
	// filter, newest first, plus the total matching count.
	FindByUser(ctx context.Context, req domain.PageRequest) ([]domain.Enrollment, int64, error)
	GetActiveByUserAndPlan(ctx context.Context, userID primitive.ObjectID, plan domain.Plan) ([]domain.Enrollment, error)
	CountActiveByCourse(ctx context.Context, courseID primitive.ObjectID) (int, error)
}

// PurchaseRepository defines the interface for the one-off purchase ledger.
type PurchaseRepository interface {
	Create(ctx context.Context, purchase *domain.Purchase) (primitive.ObjectID, error)
	GetByUserAndCourse(ctx context.Context, userID, courseID primitive.ObjectID) (*domain.Purchase, error)
	Delete(ctx context.Context, userID, courseID primitive.ObjectID) error
}
