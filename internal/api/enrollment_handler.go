package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"openlms/course-app/internal/domain"
	"openlms/course-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EnrollmentHandler holds the enrollment and progress service dependencies.
type EnrollmentHandler struct {
	enrollmentService service.EnrollmentService
	progressService   service.ProgressService
}

// NewEnrollmentHandler creates a new EnrollmentHandler.
func NewEnrollmentHandler(enrollmentService service.EnrollmentService, progressService service.ProgressService) *EnrollmentHandler {
	return &EnrollmentHandler{
		enrollmentService: enrollmentService,
		progressService:   progressService,
	}
}

// --- DTOs ---

type EnrollRequest struct {
	RequestedAsPro bool `json:"requestedAsPro"`
}

type SuspendAllRequest struct {
	Plan domain.Plan `json:"plan" binding:"required,oneof=BASIC PRO"`
}

type CompleteLessonRequest struct {
	Completed *bool `json:"completed" binding:"required"`
}

type CompletedLessonResponse struct {
	LessonID    string    `json:"lessonId"`
	CompletedAt time.Time `json:"completedAt"`
}

// EnrollmentResponse is the DTO for returning enrollment details.
type EnrollmentResponse struct {
	ID               string                    `json:"id"`
	UserID           string                    `json:"userId"`
	CourseID         string                    `json:"courseId"`
	Plan             domain.Plan               `json:"plan"`
	Active           bool                      `json:"active"`
	Completed        bool                      `json:"completed"`
	EnrolledAt       time.Time                 `json:"enrolledAt"`
	LastModifiedAt   time.Time                 `json:"lastModifiedAt"`
	SuspendedAt      *time.Time                `json:"suspendedAt,omitempty"`
	CompletedLessons []CompletedLessonResponse `json:"completedLessons"`
}

// MapEnrollmentToResponse converts a domain.Enrollment to its DTO.
func MapEnrollmentToResponse(e *domain.Enrollment) EnrollmentResponse {
	if e == nil {
		return EnrollmentResponse{}
	}
	lessons := make([]CompletedLessonResponse, len(e.CompletedLessons))
	for i, cl := range e.CompletedLessons {
		lessons[i] = CompletedLessonResponse{
			LessonID:    cl.LessonID.Hex(),
			CompletedAt: cl.CompletedAt,
		}
	}
	return EnrollmentResponse{
		ID:               e.ID.Hex(),
		UserID:           e.UserID.Hex(),
		CourseID:         e.CourseID.Hex(),
		Plan:             e.Plan,
		Active:           e.Active,
		Completed:        e.Completed,
		EnrolledAt:       e.EnrolledAt,
		LastModifiedAt:   e.LastModifiedAt,
		SuspendedAt:      e.SuspendedAt,
		CompletedLessons: lessons,
	}
}

// --- Handler Methods ---

// Enroll enrolls the authenticated user in a course.
// POST /courses/:courseId/enrollment
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	userID, ok := authenticatedUserID(c)
	if !ok {
		return
	}
	courseID, err := primitive.ObjectIDFromHex(c.Param("courseId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid course ID format.")
		return
	}

	// An absent or empty body means a plain BASIC enroll request.
	var req EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		req = EnrollRequest{}
	}

	enrollment, err := h.enrollmentService.Enroll(c.Request.Context(), userID, courseID, req.RequestedAsPro)
	if err != nil {
		respondEnrollmentError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapEnrollmentToResponse(enrollment))
}

// Suspend deactivates the authenticated user's enrollment in a course.
// DELETE /courses/:courseId/enrollment
func (h *EnrollmentHandler) Suspend(c *gin.Context) {
	userID, ok := authenticatedUserID(c)
	if !ok {
		return
	}
	courseID, err := primitive.ObjectIDFromHex(c.Param("courseId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid course ID format.")
		return
	}

	enrollment, err := h.enrollmentService.Suspend(c.Request.Context(), userID, courseID)
	if err != nil {
		respondEnrollmentError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapEnrollmentToResponse(enrollment))
}

// SuspendAllByPlan suspends every active enrollment of a user under the given
// plan. Used by the billing integration when a subscription is downgraded.
// POST /admin/users/:userId/enrollments/suspend
func (h *EnrollmentHandler) SuspendAllByPlan(c *gin.Context) {
	targetUserID, err := primitive.ObjectIDFromHex(c.Param("userId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid user ID format.")
		return
	}

	var req SuspendAllRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	suspended, err := h.enrollmentService.SuspendAllByPlan(c.Request.Context(), targetUserID, req.Plan)
	if err != nil {
		respondEnrollmentError(c, err)
		return
	}

	responses := make([]EnrollmentResponse, len(suspended))
	for i := range suspended {
		responses[i] = MapEnrollmentToResponse(&suspended[i])
	}
	c.JSON(http.StatusOK, gin.H{"suspended": responses})
}

// CompleteLesson toggles a lesson's completion inside the user's enrollment.
// PUT /courses/:courseId/lessons/:lessonId/completion
func (h *EnrollmentHandler) CompleteLesson(c *gin.Context) {
	userID, ok := authenticatedUserID(c)
	if !ok {
		return
	}
	courseID, err := primitive.ObjectIDFromHex(c.Param("courseId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid course ID format.")
		return
	}
	lessonID, err := primitive.ObjectIDFromHex(c.Param("lessonId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid lesson ID format.")
		return
	}

	var req CompleteLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	enrollment, err := h.progressService.CompleteLesson(c.Request.Context(), courseID, lessonID, userID, *req.Completed)
	if err != nil {
		respondEnrollmentError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapEnrollmentToResponse(enrollment))
}

// ListCourses returns one page of the authenticated user's enrolled courses.
// GET /enrollments?filter=ACTIVE&page=0&size=10
func (h *EnrollmentHandler) ListCourses(c *gin.Context) {
	userID, ok := authenticatedUserID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "0"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	filter := domain.EnrollmentFilter(c.DefaultQuery("filter", string(domain.FilterActive)))
	switch filter {
	case domain.FilterActive, domain.FilterInactive, domain.FilterCompleted:
	default:
		abortWithError(c, http.StatusBadRequest, "Invalid filter; expected ACTIVE, INACTIVE or COMPLETED.")
		return
	}

	result, err := h.enrollmentService.FindCourses(c.Request.Context(), domain.PageRequest{
		UserID:     userID,
		Filter:     filter,
		PageNumber: page,
		PageSize:   size,
	})
	if err != nil {
		respondEnrollmentError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetEnrollment returns a single enrollment for its owner or an administrator.
// GET /enrollments/:id
func (h *EnrollmentHandler) GetEnrollment(c *gin.Context) {
	executorID, ok := authenticatedUserID(c)
	if !ok {
		return
	}
	enrollmentID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid enrollment ID format.")
		return
	}

	enrollment, err := h.enrollmentService.GetEnrollment(c.Request.Context(), enrollmentID, executorID)
	if err != nil {
		respondEnrollmentError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapEnrollmentToResponse(enrollment))
}

// --- Helpers ---

// authenticatedUserID extracts and parses the caller's id, aborting on failure.
func authenticatedUserID(c *gin.Context) (primitive.ObjectID, bool) {
	userIDStr, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(userIDStr)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid user ID format in token.")
		return primitive.NilObjectID, false
	}
	return userID, true
}

// respondEnrollmentError maps service errors onto HTTP statuses.
func respondEnrollmentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrCourseNotFound),
		errors.Is(err, service.ErrEnrollmentNotFound),
		errors.Is(err, service.ErrLessonNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrCourseNotPublished),
		errors.Is(err, service.ErrMentoredPurchaseRequired),
		errors.Is(err, service.ErrNoActiveEnrollment),
		errors.Is(err, service.ErrNotEnrollmentOwner),
		errors.Is(err, service.ErrChapterUnresolved),
		errors.Is(err, service.ErrLessonNotInCourse):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrEnrollmentConflict):
		abortWithError(c, http.StatusConflict, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred.")
	}
}
