package service

import (
	"context"
	"testing"

	"openlms/course-app/internal/domain"
	"openlms/course-app/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type courseFixture struct {
	courseRepo     *mockCourseRepo
	enrollmentRepo *mockEnrollmentRepo
	purchaseRepo   *mockPurchaseRepo
	service        CourseService
}

func newCourseFixture() *courseFixture {
	f := &courseFixture{
		courseRepo:     new(mockCourseRepo),
		enrollmentRepo: new(mockEnrollmentRepo),
		purchaseRepo:   new(mockPurchaseRepo),
	}
	f.service = NewCourseService(f.courseRepo, f.enrollmentRepo, f.purchaseRepo)
	return f
}

func TestGetSummary_CombinesCounts(t *testing.T) {
	f := newCourseFixture()
	ctx := context.Background()
	courseID := primitive.NewObjectID()

	f.courseRepo.On("GetByID", ctx, courseID).Return(publishedCourse(courseID), nil)
	f.courseRepo.On("CountLessonsByCourseID", ctx, courseID).Return(7, nil)
	f.enrollmentRepo.On("CountActiveByCourse", ctx, courseID).Return(120, nil)

	summary, err := f.service.GetSummary(ctx, courseID)

	require.NoError(t, err)
	assert.Equal(t, courseID, summary.ID)
	assert.Equal(t, 7, summary.LessonsCount)
	assert.Equal(t, 120, summary.EnrolledCount)
	f.courseRepo.AssertExpectations(t)
	f.enrollmentRepo.AssertExpectations(t)
}

func TestGetSummary_CourseNotFound(t *testing.T) {
	f := newCourseFixture()
	ctx := context.Background()
	courseID := primitive.NewObjectID()

	f.courseRepo.On("GetByID", ctx, courseID).Return(nil, repository.ErrNotFound)

	_, err := f.service.GetSummary(ctx, courseID)

	assert.ErrorIs(t, err, ErrCourseNotFound)
}

func TestListLessons(t *testing.T) {
	ctx := context.Background()
	courseID := primitive.NewObjectID()

	t.Run("returns course lessons", func(t *testing.T) {
		f := newCourseFixture()
		lessons := []domain.Lesson{
			{ID: primitive.NewObjectID(), Title: "Intro", Sequence: 1},
			{ID: primitive.NewObjectID(), Title: "Setup", Sequence: 2},
		}
		f.courseRepo.On("GetByID", ctx, courseID).Return(publishedCourse(courseID), nil)
		f.courseRepo.On("GetLessonsByCourseID", ctx, courseID).Return(lessons, nil)

		got, err := f.service.ListLessons(ctx, courseID)

		require.NoError(t, err)
		assert.Equal(t, lessons, got)
		f.courseRepo.AssertExpectations(t)
	})

	t.Run("unknown course", func(t *testing.T) {
		f := newCourseFixture()
		f.courseRepo.On("GetByID", ctx, courseID).Return(nil, repository.ErrNotFound)

		_, err := f.service.ListLessons(ctx, courseID)

		assert.ErrorIs(t, err, ErrCourseNotFound)
	})
}

func TestRecordPurchase(t *testing.T) {
	ctx := context.Background()
	userID := primitive.NewObjectID()
	courseID := primitive.NewObjectID()

	t.Run("records new purchase", func(t *testing.T) {
		f := newCourseFixture()
		f.courseRepo.On("GetByID", ctx, courseID).Return(publishedCourse(courseID), nil)
		f.purchaseRepo.On("Create", ctx, &domain.Purchase{UserID: userID, CourseID: courseID}).
			Return(primitive.NewObjectID(), nil)

		purchase, err := f.service.RecordPurchase(ctx, userID, courseID)

		require.NoError(t, err)
		assert.Equal(t, userID, purchase.UserID)
		f.purchaseRepo.AssertExpectations(t)
	})

	t.Run("duplicate purchase", func(t *testing.T) {
		f := newCourseFixture()
		f.courseRepo.On("GetByID", ctx, courseID).Return(publishedCourse(courseID), nil)
		f.purchaseRepo.On("Create", ctx, &domain.Purchase{UserID: userID, CourseID: courseID}).
			Return(primitive.NilObjectID, repository.ErrDuplicate)

		_, err := f.service.RecordPurchase(ctx, userID, courseID)

		assert.ErrorIs(t, err, ErrPurchaseExists)
	})

	t.Run("unknown course", func(t *testing.T) {
		f := newCourseFixture()
		f.courseRepo.On("GetByID", ctx, courseID).Return(nil, repository.ErrNotFound)

		_, err := f.service.RecordPurchase(ctx, userID, courseID)

		assert.ErrorIs(t, err, ErrCourseNotFound)
	})
}

func TestRemovePurchase(t *testing.T) {
	ctx := context.Background()
	userID := primitive.NewObjectID()
	courseID := primitive.NewObjectID()

	t.Run("removes existing purchase", func(t *testing.T) {
		f := newCourseFixture()
		f.purchaseRepo.On("GetByUserAndCourse", ctx, userID, courseID).
			Return(&domain.Purchase{UserID: userID, CourseID: courseID}, nil)
		f.purchaseRepo.On("Delete", ctx, userID, courseID).Return(nil)

		err := f.service.RemovePurchase(ctx, userID, courseID)

		require.NoError(t, err)
		f.purchaseRepo.AssertExpectations(t)
	})

	t.Run("missing purchase", func(t *testing.T) {
		f := newCourseFixture()
		f.purchaseRepo.On("GetByUserAndCourse", ctx, userID, courseID).Return(nil, repository.ErrNotFound)

		err := f.service.RemovePurchase(ctx, userID, courseID)

		assert.ErrorIs(t, err, ErrPurchaseNotFound)
	})
}
