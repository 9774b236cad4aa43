package api

import (
	"net/http"

	"openlms/course-app/internal/domain"
	"openlms/course-app/internal/service"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	courseService service.CourseService,
	enrollmentService service.EnrollmentService,
	progressService service.ProgressService,
	certificateService service.CertificateService,
) {

	authHandler := NewAuthHandler(authService)
	courseHandler := NewCourseHandler(courseService)
	enrollmentHandler := NewEnrollmentHandler(enrollmentService, progressService)
	certificateHandler := NewCertificateHandler(certificateService)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", func(c *gin.Context) {
			userIDStr, err := getUserIDFromContext(c)
			if err != nil {
				abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
				return
			}
			role, _ := getUserRoleFromContext(c)
			c.JSON(http.StatusOK, gin.H{"userId": userIDStr, "role": role})
		})

		// --- Course Routes ---
		courseGroup := protected.Group("/courses")
		{
			// GET /api/v1/courses/{courseId}
			courseGroup.GET("/:courseId", courseHandler.GetSummary)
			// GET /api/v1/courses/{courseId}/lessons
			courseGroup.GET("/:courseId/lessons", courseHandler.ListLessons)

			// POST /api/v1/courses/{courseId}/enrollment
			courseGroup.POST("/:courseId/enrollment", enrollmentHandler.Enroll)
			// DELETE /api/v1/courses/{courseId}/enrollment
			courseGroup.DELETE("/:courseId/enrollment", enrollmentHandler.Suspend)

			// PUT /api/v1/courses/{courseId}/lessons/{lessonId}/completion
			courseGroup.PUT("/:courseId/lessons/:lessonId/completion", enrollmentHandler.CompleteLesson)

			// GET /api/v1/courses/{courseId}/certificate
			courseGroup.GET("/:courseId/certificate", certificateHandler.GiveCertificate)
			// GET /api/v1/courses/{courseId}/certificate/url
			courseGroup.GET("/:courseId/certificate/url", certificateHandler.GetDownloadURL)
		}

		// --- Enrollment Routes ---
		enrollmentGroup := protected.Group("/enrollments")
		{
			// GET /api/v1/enrollments?filter=ACTIVE&page=0&size=10
			enrollmentGroup.GET("", enrollmentHandler.ListCourses)
			// GET /api/v1/enrollments/{id} (owner or admin)
			enrollmentGroup.GET("/:id", enrollmentHandler.GetEnrollment)
		}

		// --- Admin Routes ---
		// Back-office surface for the billing and payment integrations.
		adminGroup := protected.Group("/admin")
		adminGroup.Use(RoleMiddleware(domain.RoleAdmin))
		{
			// POST /api/v1/admin/users/{userId}/enrollments/suspend
			adminGroup.POST("/users/:userId/enrollments/suspend", enrollmentHandler.SuspendAllByPlan)

			// POST /api/v1/admin/users/{userId}/courses/{courseId}/purchase
			adminGroup.POST("/users/:userId/courses/:courseId/purchase", courseHandler.RecordPurchase)
			// DELETE /api/v1/admin/users/{userId}/courses/{courseId}/purchase
			adminGroup.DELETE("/users/:userId/courses/:courseId/purchase", courseHandler.RemovePurchase)
		}
	}
}
