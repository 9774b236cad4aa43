package service

import (
	"context"
	"errors"
	"time"

	"openlms/course-app/internal/domain"
	"openlms/course-app/internal/notify"
	"openlms/course-app/internal/repository"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrLessonNotFound     = errors.New("lesson not found")
	ErrChapterUnresolved  = errors.New("the chapter of this lesson cannot be resolved")
	ErrLessonNotInCourse  = errors.New("the lesson does not belong to this course")
	ErrEnrollmentConflict = errors.New("enrollment was modified concurrently, please retry")
)

// --- Service Interface ---
type ProgressService interface {
	// CompleteLesson toggles a lesson's completion state within the user's
	// enrollment and recomputes the overall completed flag.
	CompleteLesson(ctx context.Context, courseID, lessonID, userID primitive.ObjectID, markComplete bool) (*domain.Enrollment, error)
}

// --- Service Implementation ---

// progressService implements the ProgressService interface.
type progressService struct {
	userRepo       repository.UserRepository
	courseRepo     repository.CourseRepository
	enrollmentRepo repository.EnrollmentRepository
	notifier       notify.Notifier
}

// NewProgressService creates a new instance of progressService.
func NewProgressService(
	userRepo repository.UserRepository,
	courseRepo repository.CourseRepository,
	enrollmentRepo repository.EnrollmentRepository,
	notifier notify.Notifier,
) ProgressService {
	return &progressService{
		userRepo:       userRepo,
		courseRepo:     courseRepo,
		enrollmentRepo: enrollmentRepo,
		notifier:       notifier,
	}
}

func (s *progressService) CompleteLesson(ctx context.Context, courseID, lessonID, userID primitive.ObjectID, markComplete bool) (*domain.Enrollment, error) {
	// 1. Resolve lesson -> chapter -> course membership. A lesson whose
	// chapter belongs to a different course must not be completable under a
	// borrowed enrollment.
	lesson, err := s.courseRepo.GetLessonByID(ctx, lessonID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrLessonNotFound
		}
		return nil, err
	}

	chapter, err := s.courseRepo.GetChapterByID(ctx, lesson.ChapterID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrChapterUnresolved
		}
		return nil, err
	}
	if chapter.CourseID != courseID {
		return nil, ErrLessonNotInCourse
	}

	// 2. Load the enrollment.
	enrollment, err := s.enrollmentRepo.GetByUserAndCourse(ctx, userID, courseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrEnrollmentNotFound
		}
		return nil, err
	}

	// 3. Apply the toggle and persist; retry the read-modify-write when a
	// concurrent toggle bumped the version underneath us.
	for attempt := 0; attempt < updateRetries; attempt++ {
		if markComplete && enrollment.HasCompletedLesson(lessonID) {
			return enrollment, nil // Idempotent re-complete
		}

		wasCompleted := enrollment.Completed
		if markComplete {
			enrollment.CompletedLessons = append(enrollment.CompletedLessons, domain.CompletedLesson{
				LessonID:     lessonID,
				EnrollmentID: enrollment.ID,
				CompletedAt:  time.Now().UTC(),
			})
		} else {
			enrollment.CompletedLessons = removeLesson(enrollment.CompletedLessons, lessonID)
		}

		if err := s.recomputeCompleted(ctx, enrollment, courseID); err != nil {
			return nil, err
		}

		err := s.enrollmentRepo.Update(ctx, enrollment)
		if err == nil {
			if enrollment.Completed && !wasCompleted {
				s.notifyCompletion(ctx, enrollment)
			}
			return enrollment, nil
		}
		if !errors.Is(err, repository.ErrConflict) {
			return nil, err
		}

		enrollment, err = s.enrollmentRepo.GetByID(ctx, enrollment.ID)
		if err != nil {
			return nil, err
		}
	}
	return nil, ErrEnrollmentConflict
}

// recomputeCompleted derives the completed flag from the completed-lesson set.
// A course with no lessons is never completed through this path.
func (s *progressService) recomputeCompleted(ctx context.Context, enrollment *domain.Enrollment, courseID primitive.ObjectID) error {
	lessonsCount, err := s.courseRepo.CountLessonsByCourseID(ctx, courseID)
	if err != nil {
		return err
	}
	enrollment.Completed = lessonsCount > 0 && enrollment.DistinctCompletedLessons() == lessonsCount
	return nil
}

// notifyCompletion fires the outbound completion notification. Best-effort:
// a delivery failure never rolls back or fails the lesson completion.
func (s *progressService) notifyCompletion(ctx context.Context, enrollment *domain.Enrollment) {
	user, err := s.userRepo.GetByID(ctx, enrollment.UserID)
	if err != nil {
		log.Warn().Err(err).Str("userId", enrollment.UserID.Hex()).
			Msg("Completion notification skipped: user lookup failed")
		return
	}
	course, err := s.courseRepo.GetByID(ctx, enrollment.CourseID)
	if err != nil {
		log.Warn().Err(err).Str("courseId", enrollment.CourseID.Hex()).
			Msg("Completion notification skipped: course lookup failed")
		return
	}
	if err := s.notifier.CourseCompleted(ctx, user, course); err != nil {
		log.Warn().Err(err).Str("userId", user.ID.Hex()).Str("courseId", course.ID.Hex()).
			Msg("Completion notification failed")
	}
}

func removeLesson(lessons []domain.CompletedLesson, lessonID primitive.ObjectID) []domain.CompletedLesson {
	kept := lessons[:0]
	for _, cl := range lessons {
		if cl.LessonID != lessonID {
			kept = append(kept, cl)
		}
	}
	return kept
}
