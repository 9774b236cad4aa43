package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EnrollmentFilter selects which of a user's enrollments a listing returns.
type EnrollmentFilter string

const (
	FilterActive    EnrollmentFilter = "ACTIVE"
	FilterInactive  EnrollmentFilter = "INACTIVE"
	FilterCompleted EnrollmentFilter = "COMPLETED"
)

// Enrollment binds a user to a course and tracks access and progress.
// At most one record exists per (user, course) pair: suspension deactivates
// the record and re-enrollment reactivates the same record, so completion
// history survives suspension. Enrollments are never hard-deleted.
type Enrollment struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID           primitive.ObjectID `bson:"userId" json:"userId"`
	CourseID         primitive.ObjectID `bson:"courseId" json:"courseId"`
	Plan             Plan               `bson:"plan" json:"plan"` // Snapshot of the plan the user enrolled under
	Active           bool               `bson:"active" json:"active"`
	Completed        bool               `bson:"completed" json:"completed"` // Derived from CompletedLessons; recomputed, never authoritative
	EnrolledAt       time.Time          `bson:"enrolledAt" json:"enrolledAt"`
	LastModifiedAt   time.Time          `bson:"lastModifiedAt" json:"lastModifiedAt"`
	SuspendedAt      *time.Time         `bson:"suspendedAt,omitempty" json:"suspendedAt,omitempty"` // Non-nil iff inactive due to suspension
	CompletedLessons []CompletedLesson  `bson:"completedLessons" json:"completedLessons"`
	Version          int64              `bson:"version" json:"-"` // Optimistic concurrency check on updates
}

// CompletedLesson records that a lesson of the enrolled course was completed.
// Unique per (enrollment, lesson); presence implies the lesson was validated
// as belonging to the course at completion time.
type CompletedLesson struct {
	LessonID     primitive.ObjectID `bson:"lessonId" json:"lessonId"`
	EnrollmentID primitive.ObjectID `bson:"enrollmentId" json:"enrollmentId"`
	CompletedAt  time.Time          `bson:"completedAt" json:"completedAt"`
}

// HasCompletedLesson reports whether the lesson is already recorded.
func (e *Enrollment) HasCompletedLesson(lessonID primitive.ObjectID) bool {
	for _, cl := range e.CompletedLessons {
		if cl.LessonID == lessonID {
			return true
		}
	}
	return false
}

// DistinctCompletedLessons counts completed lessons deduplicated by lesson id.
func (e *Enrollment) DistinctCompletedLessons() int {
	seen := make(map[primitive.ObjectID]struct{}, len(e.CompletedLessons))
	for _, cl := range e.CompletedLessons {
		seen[cl.LessonID] = struct{}{}
	}
	return len(seen)
}

// PageRequest describes one page of a user's enrollment listing.
type PageRequest struct {
	UserID     primitive.ObjectID
	Filter     EnrollmentFilter // Defaults to ACTIVE when empty
	PageNumber int              // Zero-based
	PageSize   int
}
