package api

import (
	"errors"
	"net/http"
	"time"

	"openlms/course-app/internal/domain"
	"openlms/course-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CourseHandler struct {
	courseService service.CourseService
}

func NewCourseHandler(courseService service.CourseService) *CourseHandler {
	return &CourseHandler{courseService: courseService}
}

type CourseSummaryResponse struct {
	ID            string              `json:"id"`
	Title         string              `json:"title"`
	Description   string              `json:"description"`
	Status        domain.CourseStatus `json:"status"`
	Mentored      bool                `json:"mentored"`
	SandboxType   *string             `json:"sandboxType,omitempty"`
	LessonsCount  int                 `json:"lessonsCount"`
	EnrolledCount int                 `json:"enrolledCount"`
}

type PurchaseResponse struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	CourseID    string    `json:"courseId"`
	PurchasedAt time.Time `json:"purchasedAt"`
}

// GetSummary returns a course with its lesson and active enrollment counts.
// GET /courses/:courseId
func (h *CourseHandler) GetSummary(c *gin.Context) {
	courseID, err := primitive.ObjectIDFromHex(c.Param("courseId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid course ID format.")
		return
	}

	summary, err := h.courseService.GetSummary(c.Request.Context(), courseID)
	if err != nil {
		if errors.Is(err, service.ErrCourseNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
			return
		}
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	c.JSON(http.StatusOK, CourseSummaryResponse{
		ID:            summary.ID.Hex(),
		Title:         summary.Title,
		Description:   summary.Description,
		Status:        summary.Status,
		Mentored:      summary.Mentored,
		SandboxType:   summary.SandboxType,
		LessonsCount:  summary.LessonsCount,
		EnrolledCount: summary.EnrolledCount,
	})
}

type LessonResponse struct {
	ID        string `json:"id"`
	ChapterID string `json:"chapterId"`
	Title     string `json:"title"`
	Sequence  int    `json:"sequence"`
}

// ListLessons returns the course's lessons in chapter and sequence order.
// GET /courses/:courseId/lessons
func (h *CourseHandler) ListLessons(c *gin.Context) {
	courseID, err := primitive.ObjectIDFromHex(c.Param("courseId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid course ID format.")
		return
	}

	lessons, err := h.courseService.ListLessons(c.Request.Context(), courseID)
	if err != nil {
		if errors.Is(err, service.ErrCourseNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
			return
		}
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	responses := make([]LessonResponse, len(lessons))
	for i, lesson := range lessons {
		responses[i] = LessonResponse{
			ID:        lesson.ID.Hex(),
			ChapterID: lesson.ChapterID.Hex(),
			Title:     lesson.Title,
			Sequence:  lesson.Sequence,
		}
	}
	c.JSON(http.StatusOK, responses)
}

// RecordPurchase records a course purchase for a user. Admin only, invoked by
// the payment integration once a charge settles.
// POST /admin/users/:userId/courses/:courseId/purchase
func (h *CourseHandler) RecordPurchase(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.Param("userId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid user ID format.")
		return
	}
	courseID, err := primitive.ObjectIDFromHex(c.Param("courseId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid course ID format.")
		return
	}

	purchase, err := h.courseService.RecordPurchase(c.Request.Context(), userID, courseID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCourseNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrPurchaseExists):
			abortWithError(c, http.StatusConflict, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred.")
		}
		return
	}

	c.JSON(http.StatusCreated, PurchaseResponse{
		ID:          purchase.ID.Hex(),
		UserID:      purchase.UserID.Hex(),
		CourseID:    purchase.CourseID.Hex(),
		PurchasedAt: purchase.PurchasedAt,
	})
}

// RemovePurchase deletes a recorded purchase. Admin only.
// DELETE /admin/users/:userId/courses/:courseId/purchase
func (h *CourseHandler) RemovePurchase(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.Param("userId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid user ID format.")
		return
	}
	courseID, err := primitive.ObjectIDFromHex(c.Param("courseId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid course ID format.")
		return
	}

	if err := h.courseService.RemovePurchase(c.Request.Context(), userID, courseID); err != nil {
		if errors.Is(err, service.ErrPurchaseNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
			return
		}
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}
	c.Status(http.StatusNoContent)
}
