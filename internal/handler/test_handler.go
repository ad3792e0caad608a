package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shikshaprep/mocktest-backend/internal/middleware"
	"github.com/shikshaprep/mocktest-backend/internal/model"
	"github.com/shikshaprep/mocktest-backend/internal/response"
	"github.com/shikshaprep/mocktest-backend/internal/service"
	"github.com/shikshaprep/mocktest-backend/internal/validator"
)

// TestHandler handles mock test endpoints. Every route is scoped to the
// authenticated owner; other users' tests read as 404.
type TestHandler struct {
	testService *service.MockTestService
}

// NewTestHandler creates a new TestHandler.
func NewTestHandler(testService *service.MockTestService) *TestHandler {
	return &TestHandler{testService: testService}
}

// List godoc
// GET /api/v1/tests
// Returns the caller's tests, newest first.
func (h *TestHandler) List(c *gin.Context) {
	claims := middleware.GetClaims(c)

	tests, err := h.testService.ListByOwner(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"tests": tests})
}

// Get godoc
// GET /api/v1/tests/:id
// Returns the playable test payload for a completed test.
func (h *TestHandler) Get(c *gin.Context) {
	claims := middleware.GetClaims(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	payload, err := h.testService.GetPayload(c.Request.Context(), id, claims.UserID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTestNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrTestNotReady):
			response.Fail(c, http.StatusBadRequest, response.ErrTestNotReady)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, payload)
}

// Submit godoc
// POST /api/v1/tests/:id/submit
// Grades the submitted answers and records the attempt.
func (h *TestHandler) Submit(c *gin.Context) {
	claims := middleware.GetClaims(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.SubmitAnswersRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.testService.Submit(c.Request.Context(), id, claims.UserID, req.Answers)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTestNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrTestNotReady):
			response.Fail(c, http.StatusBadRequest, response.ErrTestNotReady)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, result)
}

// Delete godoc
// DELETE /api/v1/tests/:id
// Removes the test record, its cached payload, and the stored PDF.
func (h *TestHandler) Delete(c *gin.Context) {
	claims := middleware.GetClaims(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.testService.Delete(c.Request.Context(), id, claims.UserID); err != nil {
		if errors.Is(err, service.ErrTestNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// Download godoc
// GET /api/v1/tests/:id/download
// Streams back the original PDF with its upload filename.
func (h *TestHandler) Download(c *gin.Context) {
	claims := middleware.GetClaims(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	path, fileName, err := h.testService.ResolveDownload(c.Request.Context(), id, claims.UserID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTestNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrTestNotReady):
			response.Fail(c, http.StatusBadRequest, response.ErrTestNotReady)
		case errors.Is(err, service.ErrFileMissing):
			response.Fail(c, http.StatusNotFound, response.ErrTestFileMissing)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	c.FileAttachment(path, fileName)
}
