package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"openlms/course-app/internal/certificate"
	"openlms/course-app/internal/domain"
	"openlms/course-app/internal/repository"
	"openlms/course-app/internal/storage"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
// These two messages are user-visible and stable; callers and clients match
// on them.
var (
	ErrCourseNotCompleted    = errors.New("The certificate cannot be issued. The course has not yet been completed.")
	ErrCertificateGeneration = errors.New("Error during certificate generation.")
)

const certificateTemplateName = "certificate.html.tmpl"

// --- Service Interface ---
type CertificateService interface {
	// GiveCertificate returns the completion certificate for (user, course),
	// rendering and caching it on first request and serving the cached
	// artifact afterwards.
	GiveCertificate(ctx context.Context, userID, courseID primitive.ObjectID) (*domain.CertificateFile, error)

	// DownloadURL issues the certificate if needed and returns a temporary
	// URL for it together with its display file name.
	DownloadURL(ctx context.Context, userID, courseID primitive.ObjectID) (string, string, error)
}

// --- Service Implementation ---

// certificateService implements the CertificateService interface.
type certificateService struct {
	userRepo       repository.UserRepository
	courseRepo     repository.CourseRepository
	enrollmentRepo repository.EnrollmentRepository
	store          storage.CertificateStorage
	renderer       certificate.Renderer
	converter      certificate.PDFConverter
	renderTimeout  time.Duration
}

// NewCertificateService creates a new instance of certificateService.
func NewCertificateService(
	userRepo repository.UserRepository,
	courseRepo repository.CourseRepository,
	enrollmentRepo repository.EnrollmentRepository,
	store storage.CertificateStorage,
	renderer certificate.Renderer,
	converter certificate.PDFConverter,
	renderTimeout time.Duration,
) CertificateService {
	if renderTimeout <= 0 {
		renderTimeout = 30 * time.Second
	}
	return &certificateService{
		userRepo:       userRepo,
		courseRepo:     courseRepo,
		enrollmentRepo: enrollmentRepo,
		store:          store,
		renderer:       renderer,
		converter:      converter,
		renderTimeout:  renderTimeout,
	}
}

func (s *certificateService) GiveCertificate(ctx context.Context, userID, courseID primitive.ObjectID) (*domain.CertificateFile, error) {
	// 1. The certificate exists only for a completed enrollment.
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	enrollment, err := s.enrollmentRepo.GetByUserAndCourse(ctx, userID, courseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCourseNotCompleted
		}
		return nil, err
	}
	if !enrollment.Completed {
		return nil, ErrCourseNotCompleted
	}

	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}

	file := &domain.CertificateFile{
		FileName:    certificate.FileName(user.FullName, course.Title),
		ObjectKey:   certificate.ObjectKey(userID.Hex(), courseID.Hex()),
		ContentType: "application/pdf",
	}

	// 2. Serve the cached artifact when present: a certificate is rendered
	// at most once per (user, course).
	cached, err := s.store.Get(ctx, file.ObjectKey)
	if err == nil {
		file.Content = cached
		return file, nil
	}
	if !errors.Is(err, storage.ErrObjectNotFound) {
		return nil, err
	}

	// 3. Cache miss: render, convert, store under the deterministic key.
	html, err := s.renderer.Render(certificateTemplateName, certificate.TemplateData{
		FullName:    user.FullName,
		CourseTitle: course.Title,
		IssuedOn:    time.Now().UTC().Format("January 2, 2006"),
	})
	if err != nil || strings.TrimSpace(html) == "" {
		if err != nil {
			log.Error().Err(err).Str("userId", userID.Hex()).Str("courseId", courseID.Hex()).
				Msg("Certificate template rendering failed")
		}
		return nil, ErrCertificateGeneration
	}

	convertCtx, cancel := context.WithTimeout(ctx, s.renderTimeout)
	defer cancel()
	pdf, err := s.converter.Convert(convertCtx, html)
	if err != nil {
		log.Error().Err(err).Str("userId", userID.Hex()).Str("courseId", courseID.Hex()).
			Msg("Certificate PDF conversion failed")
		return nil, ErrCertificateGeneration
	}

	if err := s.store.Put(ctx, file.ObjectKey, pdf, file.ContentType); err != nil {
		return nil, err
	}

	file.Content = pdf
	return file, nil
}

func (s *certificateService) DownloadURL(ctx context.Context, userID, courseID primitive.ObjectID) (string, string, error) {
	file, err := s.GiveCertificate(ctx, userID, courseID)
	if err != nil {
		return "", "", err
	}
	url, err := s.store.GeneratePresignedDownloadURL(ctx, file.ObjectKey, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return "", "", err
	}
	return url, file.FileName, nil
}
