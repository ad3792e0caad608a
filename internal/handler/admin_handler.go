package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shikshaprep/mocktest-backend/internal/response"
	"github.com/shikshaprep/mocktest-backend/internal/service"
)

// AdminHandler handles admin-only endpoints.
type AdminHandler struct {
	userService *service.UserService
	testService *service.MockTestService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(userService *service.UserService, testService *service.MockTestService) *AdminHandler {
	return &AdminHandler{
		userService: userService,
		testService: testService,
	}
}

// ListUsers godoc
// GET /api/v1/admin/users
// Returns a paginated list of accounts.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))

	users, pagination, err := h.userService.List(c.Request.Context(), page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, users, pagination)
}

// Stats godoc
// GET /api/v1/admin/stats
// Returns platform counts, including the ingestion pipeline breakdown.
func (h *AdminHandler) Stats(c *gin.Context) {
	byStatus, err := h.testService.CountByStatus(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	userCount, err := h.userService.Count(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	totalTests := 0
	for _, n := range byStatus {
		totalTests += n
	}

	response.Success(c, http.StatusOK, gin.H{
		"users": gin.H{
			"total": userCount,
		},
		"tests": gin.H{
			"total":     totalTests,
			"by_status": byStatus,
		},
	})
}
