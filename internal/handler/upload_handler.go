package handler

import (
	"errors"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/shikshaprep/mocktest-backend/internal/middleware"
	"github.com/shikshaprep/mocktest-backend/internal/response"
	"github.com/shikshaprep/mocktest-backend/internal/service"
)

// UploadHandler handles PDF upload endpoints.
type UploadHandler struct {
	uploadService *service.UploadService
}

// NewUploadHandler creates a new UploadHandler.
func NewUploadHandler(uploadService *service.UploadService) *UploadHandler {
	return &UploadHandler{uploadService: uploadService}
}

// Upload godoc
// POST /api/v1/tests/upload
// Accepts a PDF, registers it for processing, and returns 202 immediately.
// The client follows progress over the status WebSocket or by polling.
func (h *UploadHandler) Upload(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}
	defer file.Close()

	test, err := h.uploadService.AcceptPDF(c.Request.Context(), claims.UserID, file, header)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnsupportedFileType):
			response.Fail(c, http.StatusBadRequest, response.ErrUnsupportedFile)
		case errors.Is(err, service.ErrFileTooLarge):
			response.Fail(c, http.StatusBadRequest, response.ErrFileTooLarge)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusAccepted, gin.H{
		"test_id":            test.ID,
		"file_name":          filepath.Base(test.FilePath),
		"name":               test.Name,
		"original_file_name": test.OriginalFileName,
		"status":             test.Status,
		"created_at":         test.CreatedAt,
	})
}
