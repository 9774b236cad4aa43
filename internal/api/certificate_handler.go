package api

import (
	"errors"
	"net/http"

	"openlms/course-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CertificateHandler struct {
	certificateService service.CertificateService
}

func NewCertificateHandler(certificateService service.CertificateService) *CertificateHandler {
	return &CertificateHandler{certificateService: certificateService}
}

type CertificateURLResponse struct {
	DownloadURL string `json:"downloadUrl"`
	FileName    string `json:"fileName"`
}

// GiveCertificate returns the completion certificate PDF for the
// authenticated user.
// GET /courses/:courseId/certificate
func (h *CertificateHandler) GiveCertificate(c *gin.Context) {
	userID, ok := authenticatedUserID(c)
	if !ok {
		return
	}
	courseID, err := primitive.ObjectIDFromHex(c.Param("courseId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid course ID format.")
		return
	}

	file, err := h.certificateService.GiveCertificate(c.Request.Context(), userID, courseID)
	if err != nil {
		respondCertificateError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+file.FileName+`"`)
	c.Data(http.StatusOK, file.ContentType, file.Content)
}

// GetDownloadURL issues the certificate if needed and returns a presigned URL
// for downloading it directly from object storage.
// GET /courses/:courseId/certificate/url
func (h *CertificateHandler) GetDownloadURL(c *gin.Context) {
	userID, ok := authenticatedUserID(c)
	if !ok {
		return
	}
	courseID, err := primitive.ObjectIDFromHex(c.Param("courseId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid course ID format.")
		return
	}

	url, fileName, err := h.certificateService.DownloadURL(c.Request.Context(), userID, courseID)
	if err != nil {
		respondCertificateError(c, err)
		return
	}

	c.JSON(http.StatusOK, CertificateURLResponse{DownloadURL: url, FileName: fileName})
}

func respondCertificateError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrCourseNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrCourseNotCompleted):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrCertificateGeneration):
		abortWithError(c, http.StatusInternalServerError, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred.")
	}
}
