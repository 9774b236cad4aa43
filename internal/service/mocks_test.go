package service

import (
	"context"
	"time"

	"openlms/course-app/internal/certificate"
	"openlms/course-app/internal/domain"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Hand-rolled testify mocks for the repository and port interfaces used by
// the services under test.

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(primitive.ObjectID), args.Error(1)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if u := args.Get(0); u != nil {
		return u.(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if u := args.Get(0); u != nil {
		return u.(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockCourseRepo struct {
	mock.Mock
}

func (m *mockCourseRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Course, error) {
	args := m.Called(ctx, id)
	if c := args.Get(0); c != nil {
		return c.(*domain.Course), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCourseRepo) GetChapterByID(ctx context.Context, id primitive.ObjectID) (*domain.Chapter, error) {
	args := m.Called(ctx, id)
	if c := args.Get(0); c != nil {
		return c.(*domain.Chapter), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCourseRepo) GetLessonByID(ctx context.Context, id primitive.ObjectID) (*domain.Lesson, error) {
	args := m.Called(ctx, id)
	if l := args.Get(0); l != nil {
		return l.(*domain.Lesson), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCourseRepo) GetLessonsByCourseID(ctx context.Context, courseID primitive.ObjectID) ([]domain.Lesson, error) {
	args := m.Called(ctx, courseID)
	if l := args.Get(0); l != nil {
		return l.([]domain.Lesson), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCourseRepo) CountLessonsByCourseID(ctx context.Context, courseID primitive.ObjectID) (int, error) {
	args := m.Called(ctx, courseID)
	return args.Int(0), args.Error(1)
}

type mockEnrollmentRepo struct {
	mock.Mock
}

func (m *mockEnrollmentRepo) Create(ctx context.Context, enrollment *domain.Enrollment) (primitive.ObjectID, error) {
	args := m.Called(ctx, enrollment)
	return args.Get(0).(primitive.ObjectID), args.Error(1)
}

func (m *mockEnrollmentRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Enrollment, error) {
	args := m.Called(ctx, id)
	if e := args.Get(0); e != nil {
		return e.(*domain.Enrollment), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockEnrollmentRepo) GetByUserAndCourse(ctx context.Context, userID, courseID primitive.ObjectID) (*domain.Enrollment, error) {
	args := m.Called(ctx, userID, courseID)
	if e := args.Get(0); e != nil {
		return e.(*domain.Enrollment), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockEnrollmentRepo) Update(ctx context.Context, enrollment *domain.Enrollment) error {
	args := m.Called(ctx, enrollment)
	return args.Error(0)
}

func (m *mockEnrollmentRepo) FindByUser(ctx context.Context, req domain.PageRequest) ([]domain.Enrollment, int64, error) {
	args := m.Called(ctx, req)
	if e := args.Get(0); e != nil {
		return e.([]domain.Enrollment), args.Get(1).(int64), args.Error(2)
	}
	return nil, args.Get(1).(int64), args.Error(2)
}

func (m *mockEnrollmentRepo) GetActiveByUserAndPlan(ctx context.Context, userID primitive.ObjectID, plan domain.Plan) ([]domain.Enrollment, error) {
	args := m.Called(ctx, userID, plan)
	if e := args.Get(0); e != nil {
		return e.([]domain.Enrollment), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockEnrollmentRepo) CountActiveByCourse(ctx context.Context, courseID primitive.ObjectID) (int, error) {
	args := m.Called(ctx, courseID)
	return args.Int(0), args.Error(1)
}

type mockPurchaseRepo struct {
	mock.Mock
}

func (m *mockPurchaseRepo) Create(ctx context.Context, purchase *domain.Purchase) (primitive.ObjectID, error) {
	args := m.Called(ctx, purchase)
	return args.Get(0).(primitive.ObjectID), args.Error(1)
}

func (m *mockPurchaseRepo) GetByUserAndCourse(ctx context.Context, userID, courseID primitive.ObjectID) (*domain.Purchase, error) {
	args := m.Called(ctx, userID, courseID)
	if p := args.Get(0); p != nil {
		return p.(*domain.Purchase), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockPurchaseRepo) Delete(ctx context.Context, userID, courseID primitive.ObjectID) error {
	args := m.Called(ctx, userID, courseID)
	return args.Error(0)
}

type mockDispatcher struct {
	mock.Mock
}

func (m *mockDispatcher) Enqueue(user *domain.User, sandboxType string) {
	m.Called(user, sandboxType)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) EnrollmentCreated(ctx context.Context, user *domain.User, course *domain.Course) error {
	args := m.Called(ctx, user, course)
	return args.Error(0)
}

func (m *mockNotifier) CourseCompleted(ctx context.Context, user *domain.User, course *domain.Course) error {
	args := m.Called(ctx, user, course)
	return args.Error(0)
}

type mockCertificateStorage struct {
	mock.Mock
}

func (m *mockCertificateStorage) Get(ctx context.Context, objectKey string) ([]byte, error) {
	args := m.Called(ctx, objectKey)
	if b := args.Get(0); b != nil {
		return b.([]byte), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCertificateStorage) Put(ctx context.Context, objectKey string, data []byte, contentType string) error {
	args := m.Called(ctx, objectKey, data, contentType)
	return args.Error(0)
}

func (m *mockCertificateStorage) GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error) {
	args := m.Called(ctx, objectKey, expires)
	return args.String(0), args.Error(1)
}

type mockRenderer struct {
	mock.Mock
}

func (m *mockRenderer) Render(templateName string, data certificate.TemplateData) (string, error) {
	args := m.Called(templateName, data)
	return args.String(0), args.Error(1)
}

type mockPDFConverter struct {
	mock.Mock
}

func (m *mockPDFConverter) Convert(ctx context.Context, html string) ([]byte, error) {
	args := m.Called(ctx, html)
	if b := args.Get(0); b != nil {
		return b.([]byte), args.Error(1)
	}
	return nil, args.Error(1)
}
