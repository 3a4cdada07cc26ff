package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/admission/internal/app/lifecycle"
	"github.com/yigit/admission/internal/app/models/dto"
	"github.com/yigit/admission/internal/app/services"
	"github.com/yigit/admission/internal/middleware"
)

// AdminController handles the admissions office operations
type AdminController struct {
	adminService services.AdminService
	logger       zerolog.Logger
}

// NewAdminController creates a new AdminController
func NewAdminController(adminService services.AdminService, logger zerolog.Logger) *AdminController {
	return &AdminController{
		adminService: adminService,
		logger:       logger,
	}
}

// Dashboard godoc
// @Summary Admin dashboard
// @Tags admin
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.AdminDashboardResponse}
// @Router /admin/dashboard [get]
func (c *AdminController) Dashboard(ctx *gin.Context) {
	resp, err := c.adminService.Dashboard(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// ListStudents godoc
// @Summary List application records
// @Tags admin
// @Security BearerAuth
// @Param course query int false "Course ID"
// @Param status query string false "INCOMPLETE, PENDING, APPROVED or REJECTED"
// @Param year query int false "Enrollment year"
// @Param search query string false "Name, username or email"
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(20)
// @Success 200 {object} dto.APIResponse{data=dto.StudentListResponse}
// @Router /admin/students [get]
func (c *AdminController) ListStudents(ctx *gin.Context) {
	var req dto.StudentFilterRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		respondValidationError(ctx, err)
		return
	}

	resp, err := c.adminService.ListStudents(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// GetStudent godoc
// @Summary Get an application record with its documents
// @Tags admin
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} dto.APIResponse{data=dto.StudentDetailResponse}
// @Router /admin/students/{id} [get]
func (c *AdminController) GetStudent(ctx *gin.Context) {
	id, ok := idParamOrAbort(ctx, "id")
	if !ok {
		return
	}

	resp, err := c.adminService.GetStudent(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// Decide godoc
// @Summary Approve or reject an application
// @Tags admin
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Param request body dto.DecisionRequest true "Decision"
// @Success 200 {object} dto.APIResponse{data=dto.StudentResponse}
// @Failure 400 {object} dto.ErrorResponse "Rejection reason missing"
// @Router /admin/students/{id}/decision [post]
func (c *AdminController) Decide(ctx *gin.Context) {
	id, ok := idParamOrAbort(ctx, "id")
	if !ok {
		return
	}

	var req dto.DecisionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondValidationError(ctx, err)
		return
	}
	if _, err := lifecycle.ParseDecision(req.Decision); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	adminID, _ := middleware.GetUserID(ctx)
	student, err := c.adminService.Decide(ctx.Request.Context(), id, &req, adminID)
	if err != nil {
		c.logger.Warn().Err(err).Int64("studentID", id).Str("decision", req.Decision).Msg("Decision failed")
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewStudentResponse(student)))
}

// Reopen godoc
// @Summary Return a decided application to PENDING
// @Tags admin
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} dto.APIResponse{data=dto.StudentResponse}
// @Router /admin/students/{id}/reopen [post]
func (c *AdminController) Reopen(ctx *gin.Context) {
	id, ok := idParamOrAbort(ctx, "id")
	if !ok {
		return
	}

	adminID, _ := middleware.GetUserID(ctx)
	student, err := c.adminService.Reopen(ctx.Request.Context(), id, adminID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewStudentResponse(student)))
}

// DeleteStudent godoc
// @Summary Delete an application with its documents
// @Tags admin
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse}
// @Router /admin/students/{id} [delete]
func (c *AdminController) DeleteStudent(ctx *gin.Context) {
	id, ok := idParamOrAbort(ctx, "id")
	if !ok {
		return
	}

	if err := c.adminService.DeleteStudent(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.SuccessResponse{Message: "Student deleted"}))
}

// SetUserActive godoc
// @Summary Activate or deactivate a credential
// @Tags admin
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body dto.SetActiveRequest true "Active flag"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse}
// @Router /admin/users/{id}/active [put]
func (c *AdminController) SetUserActive(ctx *gin.Context) {
	id, ok := idParamOrAbort(ctx, "id")
	if !ok {
		return
	}

	var req dto.SetActiveRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondValidationError(ctx, err)
		return
	}

	if err := c.adminService.SetUserActive(ctx.Request.Context(), id, *req.Active); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	message := "User deactivated"
	if *req.Active {
		message = "User activated"
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.SuccessResponse{Message: message}))
}

// Report godoc
// @Summary Admission report
// @Tags admin
// @Security BearerAuth
// @Param course query int false "Course ID"
// @Param status query string false "Application status"
// @Param year query int false "Enrollment year"
// @Param format query string false "json or csv" default(json)
// @Success 200 {object} dto.APIResponse{data=dto.ReportResponse}
// @Router /admin/reports [get]
func (c *AdminController) Report(ctx *gin.Context) {
	var req dto.ReportRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		respondValidationError(ctx, err)
		return
	}

	report, err := c.adminService.Report(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if req.Format != "csv" {
		ctx.JSON(http.StatusOK, dto.NewSuccessResponse(report))
		return
	}

	filename := fmt.Sprintf("admission-report-%s.csv", report.GeneratedAt.Format("20060102-150405"))
	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	ctx.Header("Content-Type", "text/csv; charset=utf-8")
	ctx.Status(http.StatusOK)
	if err := services.WriteReportCSV(ctx.Writer, report); err != nil {
		c.logger.Error().Err(err).Msg("Failed to write CSV report")
	}
}

// RecentActivity godoc
// @Summary Recent activity log
// @Tags admin
// @Security BearerAuth
// @Param limit query int false "Maximum entries" default(50)
// @Success 200 {object} dto.APIResponse{data=[]models.ActivityLog}
// @Router /admin/activity [get]
func (c *AdminController) RecentActivity(ctx *gin.Context) {
	var req dto.ActivityFilterRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		respondValidationError(ctx, err)
		return
	}

	entries, err := c.adminService.RecentActivity(ctx.Request.Context(), req.Limit)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(entries))
}
