package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CourseStatus type for the course publication lifecycle
type CourseStatus string

const (
	StatusDraft     CourseStatus = "DRAFT"
	StatusInReview  CourseStatus = "IN_REVIEW"
	StatusPublished CourseStatus = "PUBLISHED"
)

// Course represents a course in the catalog. Only PUBLISHED courses accept
// enrollments. Mentored courses additionally require a per-course purchase
// (or an administrator) to enroll, regardless of the user's plan.
type Course struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Status      CourseStatus       `bson:"status" json:"status"`
	Mentored    bool               `bson:"mentored" json:"mentored"`
	SandboxType *string            `bson:"sandboxType,omitempty" json:"sandboxType,omitempty"` // Set when the course provisions a practice sandbox
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (c *Course) IsPublished() bool {
	return c.Status == StatusPublished
}

// Chapter groups the lessons of a course.
type Chapter struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CourseID primitive.ObjectID `bson:"courseId" json:"courseId"`
	Title    string             `bson:"title" json:"title"`
	Sequence int                `bson:"sequence" json:"sequence"` // Order within the course
}

// Lesson is a single unit of content inside a chapter.
type Lesson struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ChapterID primitive.ObjectID `bson:"chapterId" json:"chapterId"`
	Title     string             `bson:"title" json:"title"`
	Sequence  int                `bson:"sequence" json:"sequence"` // Order within the chapter
}

// CourseSummary is the read view of a course enriched with the derived
// counters. Both counters are recomputed from their source collections,
// never incremented in place.
type CourseSummary struct {
	Course
	LessonsCount  int `json:"lessonsCount"`  // Total lessons across all chapters
	EnrolledCount int `json:"enrolledCount"` // Active enrollments
}

// CoursePage is one page of course summaries for a user's enrollments.
type CoursePage struct {
	Items         []CourseSummary `json:"items"`
	PageNumber    int             `json:"pageNumber"`
	PageSize      int             `json:"pageSize"`
	TotalElements int64           `json:"totalElements"`
	TotalPages    int             `json:"totalPages"`
	HasNext       bool            `json:"hasNext"`
	HasPrevious   bool            `json:"hasPrevious"`
}
