package dto

import (
	"time"

	"github.com/yigit/admission/internal/app/models"
)

// AdminDashboardResponse holds the admin overview counts
type AdminDashboardResponse struct {
	TotalStudents       int64                              `json:"totalStudents"`
	ByStatus            map[models.ApplicationStatus]int64 `json:"byStatus"`
	TotalAdmins         int64                              `json:"totalAdmins"`
	ActiveCourses       int64                              `json:"activeCourses"`
	UnverifiedDocuments int64                              `json:"unverifiedDocuments"`
	RecentActivity      []*models.ActivityLog              `json:"recentActivity"`
}

// ReportRequest holds report filters. Format is json or csv.
type ReportRequest struct {
	CourseID       *int64  `form:"course" binding:"omitempty,gt=0"`
	Status         *string `form:"status" binding:"omitempty,oneof=INCOMPLETE PENDING APPROVED REJECTED"`
	EnrollmentYear *int    `form:"year" binding:"omitempty,gt=0"`
	Format         string  `form:"format,default=json" binding:"omitempty,oneof=json csv"`
}

// ReportRow is one line of the admission report
type ReportRow struct {
	StudentID      int64                    `json:"studentId"`
	Username       string                   `json:"username"`
	FullName       string                   `json:"fullName"`
	Email          string                   `json:"email"`
	Phone          string                   `json:"phone"`
	CourseName     string                   `json:"courseName"`
	EnrollmentYear int                      `json:"enrollmentYear"`
	Status         models.ApplicationStatus `json:"status"`
	RegisteredAt   time.Time                `json:"registrationDate"`
	ApprovedDate   *time.Time               `json:"approvedDate,omitempty"`
}

// ReportResponse is the JSON form of a report
type ReportResponse struct {
	GeneratedAt time.Time   `json:"generatedAt"`
	Count       int         `json:"count"`
	Rows        []ReportRow `json:"rows"`
}

// ActivityFilterRequest bounds the activity listing
type ActivityFilterRequest struct {
	Limit int `form:"limit,default=50" binding:"min=1,max=500"`
}
