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
	ErrUserNotFound             = errors.New("user not found")
	ErrCourseNotFound           = errors.New("the course you are trying to enroll to does not exist")
	ErrCourseNotPublished       = errors.New("cannot enroll to an unpublished course")
	ErrMentoredPurchaseRequired = errors.New("this mentored course requires a purchase to enroll")
	ErrNoActiveEnrollment       = errors.New("no active enrollment for this course")
	ErrEnrollmentNotFound       = errors.New("enrollment not found")
	ErrNotEnrollmentOwner       = errors.New("you are only allowed to look for your enrollments")
)

// updateRetries bounds the optimistic-concurrency retry loops. Contention is
// per single enrollment record, so a couple of attempts is plenty.
const updateRetries = 3

// SandboxDispatcher is the async hand-off for sandbox provisioning. The
// enrollment flow submits and moves on; provisioning outcome never affects it.
type SandboxDispatcher interface {
	Enqueue(user *domain.User, sandboxType string)
}

// --- Service Interface ---
type EnrollmentService interface {
	// Enroll validates eligibility and creates or reactivates the enrollment
	// for (user, course). Enrolling while already active is a no-op.
	Enroll(ctx context.Context, userID, courseID primitive.ObjectID, requestedAsPro bool) (*domain.Enrollment, error)

	// Suspend deactivates the user's active enrollment in the course and,
	// for mentored courses, revokes the purchase.
	Suspend(ctx context.Context, userID, courseID primitive.ObjectID) (*domain.Enrollment, error)

	// SuspendAllByPlan deactivates every active enrollment of the user whose
	// plan snapshot matches. Purchases are kept; only the explicit
	// per-course suspend revokes mentored access.
	SuspendAllByPlan(ctx context.Context, userID primitive.ObjectID, plan domain.Plan) ([]domain.Enrollment, error)

	// FindCourses returns one page of course summaries for the user's
	// enrollments matching the request filter.
	FindCourses(ctx context.Context, req domain.PageRequest) (*domain.CoursePage, error)

	// GetEnrollment returns a single enrollment; only its owner or an
	// administrator may look it up.
	GetEnrollment(ctx context.Context, enrollmentID, executorID primitive.ObjectID) (*domain.Enrollment, error)
}

// --- Service Implementation ---

// enrollmentService implements the EnrollmentService interface.
type enrollmentService struct {
	userRepo       repository.UserRepository
	courseRepo     repository.CourseRepository
	enrollmentRepo repository.EnrollmentRepository
	purchaseRepo   repository.PurchaseRepository
	sandboxes      SandboxDispatcher
	notifier       notify.Notifier
}

// NewEnrollmentService creates a new instance of enrollmentService.
func NewEnrollmentService(
	userRepo repository.UserRepository,
	courseRepo repository.CourseRepository,
	enrollmentRepo repository.EnrollmentRepository,
	purchaseRepo repository.PurchaseRepository,
	sandboxes SandboxDispatcher,
	notifier notify.Notifier,
) EnrollmentService {
	return &enrollmentService{
		userRepo:       userRepo,
		courseRepo:     courseRepo,
		enrollmentRepo: enrollmentRepo,
		purchaseRepo:   purchaseRepo,
		sandboxes:      sandboxes,
		notifier:       notifier,
	}
}

func (s *enrollmentService) Enroll(ctx context.Context, userID, courseID primitive.ObjectID, requestedAsPro bool) (*domain.Enrollment, error) {
	// 1. Load the user.
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	// 2. Load the course and check it accepts enrollments.
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	if !course.IsPublished() {
		return nil, ErrCourseNotPublished
	}

	// 3. Mentored courses require a purchase. An administrator always
	// bypasses; a PRO plan alone does not.
	if course.Mentored && !user.IsAdmin() {
		_, err := s.purchaseRepo.GetByUserAndCourse(ctx, userID, courseID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrMentoredPurchaseRequired
			}
			return nil, err
		}
	}

	// 4. Reuse the existing record when there is one: an active record makes
	// enroll a no-op, a suspended one gets reactivated.
	existing, err := s.enrollmentRepo.GetByUserAndCourse(ctx, userID, courseID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		if existing.Active {
			return existing, nil
		}
		return s.reactivate(ctx, existing)
	}

	// 5. First enrollment for this pair.
	plan := domain.PlanBasic
	if requestedAsPro && user.IsPro() {
		plan = domain.PlanPro
	}
	now := time.Now().UTC()
	enrollment := &domain.Enrollment{
		UserID:           userID,
		CourseID:         courseID,
		Plan:             plan,
		Active:           true,
		Completed:        false,
		EnrolledAt:       now,
		CompletedLessons: []domain.CompletedLesson{},
	}

	enrollmentID, err := s.enrollmentRepo.Create(ctx, enrollment)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// A concurrent enroll won the race; fall back to its record.
			return s.enrollmentRepo.GetByUserAndCourse(ctx, userID, courseID)
		}
		return nil, err
	}
	enrollment.ID = enrollmentID

	// Fire-and-forget sandbox provisioning; never delays or fails enrollment.
	if course.SandboxType != nil && *course.SandboxType != "" {
		s.sandboxes.Enqueue(user, *course.SandboxType)
	}

	if err := s.notifier.EnrollmentCreated(ctx, user, course); err != nil {
		log.Warn().Err(err).Str("userId", userID.Hex()).Str("courseId", courseID.Hex()).
			Msg("Enrollment notification failed")
	}

	return enrollment, nil
}

// reactivate flips a suspended enrollment back to active, clearing the
// suspension timestamp. The record (and its completion history) is reused.
func (s *enrollmentService) reactivate(ctx context.Context, enrollment *domain.Enrollment) (*domain.Enrollment, error) {
	for attempt := 0; attempt < updateRetries; attempt++ {
		enrollment.Active = true
		enrollment.SuspendedAt = nil

		err := s.enrollmentRepo.Update(ctx, enrollment)
		if err == nil {
			return enrollment, nil
		}
		if !errors.Is(err, repository.ErrConflict) {
			return nil, err
		}

		enrollment, err = s.enrollmentRepo.GetByID(ctx, enrollment.ID)
		if err != nil {
			return nil, err
		}
		if enrollment.Active {
			return enrollment, nil
		}
	}
	return nil, repository.ErrConflict
}

func (s *enrollmentService) Suspend(ctx context.Context, userID, courseID primitive.ObjectID) (*domain.Enrollment, error) {
	enrollment, err := s.enrollmentRepo.GetByUserAndCourse(ctx, userID, courseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoActiveEnrollment
		}
		return nil, err
	}
	if !enrollment.Active {
		return nil, ErrNoActiveEnrollment
	}

	if err := s.deactivate(ctx, enrollment); err != nil {
		return nil, err
	}

	// Mentored access is revoked on explicit suspension: the user must
	// purchase again to re-enroll.
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	if course.Mentored {
		if err := s.purchaseRepo.Delete(ctx, userID, courseID); err != nil {
			return nil, err
		}
	}

	return enrollment, nil
}

func (s *enrollmentService) SuspendAllByPlan(ctx context.Context, userID primitive.ObjectID, plan domain.Plan) ([]domain.Enrollment, error) {
	enrollments, err := s.enrollmentRepo.GetActiveByUserAndPlan(ctx, userID, plan)
	if err != nil {
		return nil, err
	}

	suspended := make([]domain.Enrollment, 0, len(enrollments))
	for i := range enrollments {
		// The bulk path never touches purchases; only the explicit
		// per-course suspend revokes mentored access.
		if err := s.deactivate(ctx, &enrollments[i]); err != nil {
			return nil, err
		}
		suspended = append(suspended, enrollments[i])
	}
	return suspended, nil
}

// deactivate marks the enrollment suspended with an optimistic retry on
// concurrent modification.
func (s *enrollmentService) deactivate(ctx context.Context, enrollment *domain.Enrollment) error {
	for attempt := 0; attempt < updateRetries; attempt++ {
		now := time.Now().UTC()
		enrollment.Active = false
		enrollment.SuspendedAt = &now

		err := s.enrollmentRepo.Update(ctx, enrollment)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrConflict) {
			return err
		}

		fresh, err := s.enrollmentRepo.GetByID(ctx, enrollment.ID)
		if err != nil {
			return err
		}
		*enrollment = *fresh
		if !enrollment.Active {
			return nil
		}
	}
	return repository.ErrConflict
}

func (s *enrollmentService) FindCourses(ctx context.Context, req domain.PageRequest) (*domain.CoursePage, error) {
	if req.PageSize <= 0 {
		req.PageSize = 10
	}
	if req.PageNumber < 0 {
		req.PageNumber = 0
	}

	enrollments, total, err := s.enrollmentRepo.FindByUser(ctx, req)
	if err != nil {
		return nil, err
	}

	items := make([]domain.CourseSummary, 0, len(enrollments))
	for _, enrollment := range enrollments {
		course, err := s.courseRepo.GetByID(ctx, enrollment.CourseID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				// Catalog and enrollments can drift; skip rather than fail the page.
				log.Warn().Str("courseId", enrollment.CourseID.Hex()).
					Msg("Enrollment references missing course")
				continue
			}
			return nil, err
		}

		lessonsCount, err := s.courseRepo.CountLessonsByCourseID(ctx, course.ID)
		if err != nil {
			return nil, err
		}
		enrolledCount, err := s.enrollmentRepo.CountActiveByCourse(ctx, course.ID)
		if err != nil {
			return nil, err
		}

		items = append(items, domain.CourseSummary{
			Course:        *course,
			LessonsCount:  lessonsCount,
			EnrolledCount: enrolledCount,
		})
	}

	totalPages := int((total + int64(req.PageSize) - 1) / int64(req.PageSize))
	return &domain.CoursePage{
		Items:         items,
		PageNumber:    req.PageNumber,
		PageSize:      req.PageSize,
		TotalElements: total,
		TotalPages:    totalPages,
		HasNext:       req.PageNumber+1 < totalPages,
		HasPrevious:   req.PageNumber > 0 && total > 0,
	}, nil
}

func (s *enrollmentService) GetEnrollment(ctx context.Context, enrollmentID, executorID primitive.ObjectID) (*domain.Enrollment, error) {
	enrollment, err := s.enrollmentRepo.GetByID(ctx, enrollmentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrEnrollmentNotFound
		}
		return nil, err
	}

	executor, err := s.userRepo.GetByID(ctx, executorID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if !executor.IsAdmin() && enrollment.UserID != executorID {
		return nil, ErrNotEnrollmentOwner
	}
	return enrollment, nil
}
