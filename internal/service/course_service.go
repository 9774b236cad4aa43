package service

import (
	"context"
	"errors"

	"openlms/course-app/internal/domain"
	"openlms/course-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrPurchaseExists = errors.New("purchase already recorded for this user and course")
var ErrPurchaseNotFound = errors.New("purchase not found")

// CourseService exposes the course catalog read surface and the purchase
// ledger used by mentored enrollments.
type CourseService interface {
	GetSummary(ctx context.Context, courseID primitive.ObjectID) (*domain.CourseSummary, error)
	// ListLessons returns the course's lessons in chapter and sequence order.
	ListLessons(ctx context.Context, courseID primitive.ObjectID) ([]domain.Lesson, error)
	RecordPurchase(ctx context.Context, userID, courseID primitive.ObjectID) (*domain.Purchase, error)
	RemovePurchase(ctx context.Context, userID, courseID primitive.ObjectID) error
}

type courseService struct {
	courseRepo     repository.CourseRepository
	enrollmentRepo repository.EnrollmentRepository
	purchaseRepo   repository.PurchaseRepository
}

func NewCourseService(courseRepo repository.CourseRepository, enrollmentRepo repository.EnrollmentRepository, purchaseRepo repository.PurchaseRepository) CourseService {
	return &courseService{
		courseRepo:     courseRepo,
		enrollmentRepo: enrollmentRepo,
		purchaseRepo:   purchaseRepo,
	}
}

func (s *courseService) GetSummary(ctx context.Context, courseID primitive.ObjectID) (*domain.CourseSummary, error) {
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}

	lessonsCount, err := s.courseRepo.CountLessonsByCourseID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	enrolledCount, err := s.enrollmentRepo.CountActiveByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	return &domain.CourseSummary{
		Course:        *course,
		LessonsCount:  lessonsCount,
		EnrolledCount: enrolledCount,
	}, nil
}

func (s *courseService) ListLessons(ctx context.Context, courseID primitive.ObjectID) ([]domain.Lesson, error) {
	if _, err := s.courseRepo.GetByID(ctx, courseID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	return s.courseRepo.GetLessonsByCourseID(ctx, courseID)
}

func (s *courseService) RecordPurchase(ctx context.Context, userID, courseID primitive.ObjectID) (*domain.Purchase, error) {
	if _, err := s.courseRepo.GetByID(ctx, courseID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}

	purchase := &domain.Purchase{UserID: userID, CourseID: courseID}
	id, err := s.purchaseRepo.Create(ctx, purchase)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrPurchaseExists
		}
		return nil, err
	}
	purchase.ID = id
	return purchase, nil
}

func (s *courseService) RemovePurchase(ctx context.Context, userID, courseID primitive.ObjectID) error {
	if _, err := s.purchaseRepo.GetByUserAndCourse(ctx, userID, courseID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPurchaseNotFound
		}
		return err
	}
	return s.purchaseRepo.Delete(ctx, userID, courseID)
}
