package dto

import (
	"time"

	"github.com/yigit/admission/internal/app/models"
)

// UpdateProfileRequest is a student's edit of their own contact details.
// Status and decision bookkeeping are never touched by it.
type UpdateProfileRequest struct {
	FirstName string `json:"firstName" binding:"required,personname"`
	LastName  string `json:"lastName" binding:"required,personname"`
	Phone     string `json:"phone" binding:"required,phone"`
	Address   string `json:"address" binding:"required,max=255"`
	City      string `json:"city" binding:"required,max=50"`
	State     string `json:"state" binding:"required,max=50"`
	ZipCode   string `json:"zipCode" binding:"required,zipcode"`
	Country   string `json:"country" binding:"omitempty,max=50"`
}

// StudentResponse is the view of an application record
type StudentResponse struct {
	ID              int64                    `json:"id"`
	UserID          int64                    `json:"userId"`
	Username        string                   `json:"username"`
	Email           string                   `json:"email"`
	FirstName       string                   `json:"firstName"`
	LastName        string                   `json:"lastName"`
	DateOfBirth     string                   `json:"dateOfBirth"`
	Gender          string                   `json:"gender"`
	Phone           string                   `json:"phone"`
	Address         string                   `json:"address"`
	City            string                   `json:"city"`
	State           string                   `json:"state"`
	ZipCode         string                   `json:"zipCode"`
	Country         string                   `json:"country"`
	CourseID        int64                    `json:"courseId"`
	CourseName      string                   `json:"courseName,omitempty"`
	EnrollmentYear  int                      `json:"enrollmentYear"`
	Status          models.ApplicationStatus `json:"status"`
	RegistrationAt  time.Time                `json:"registrationDate"`
	ApprovedBy      *int64                   `json:"approvedBy,omitempty"`
	ApprovedDate    *time.Time               `json:"approvedDate,omitempty"`
	RejectionReason *string                  `json:"rejectionReason,omitempty"`
}

// NewStudentResponse maps an application record to its view
func NewStudentResponse(s *models.Student) StudentResponse {
	return StudentResponse{
		ID:              s.ID,
		UserID:          s.UserID,
		Username:        s.Username,
		Email:           s.Email,
		FirstName:       s.FirstName,
		LastName:        s.LastName,
		DateOfBirth:     s.DateOfBirth.Format(DateLayout),
		Gender:          s.Gender,
		Phone:           s.Phone,
		Address:         s.Address,
		City:            s.City,
		State:           s.State,
		ZipCode:         s.ZipCode,
		Country:         s.Country,
		CourseID:        s.CourseID,
		CourseName:      s.CourseName,
		EnrollmentYear:  s.EnrollmentYear,
		Status:          s.Status,
		RegistrationAt:  s.RegistrationAt,
		ApprovedBy:      s.ApprovedBy,
		ApprovedDate:    s.ApprovedDate,
		RejectionReason: s.RejectionReason,
	}
}

// DateLayout is the wire format of calendar dates
const DateLayout = "2006-01-02"

// StudentDashboardResponse is what a student sees after login
type StudentDashboardResponse struct {
	Student          StudentResponse       `json:"student"`
	Course           *models.Course        `json:"course,omitempty"`
	Documents        []DocumentResponse    `json:"documents"`
	MissingDocuments []models.DocumentType `json:"missingDocuments"`
	Complete         bool                  `json:"complete"`
}

// StudentFilterRequest holds the query parameters of the admin student listing
type StudentFilterRequest struct {
	CourseID       *int64  `form:"course" binding:"omitempty,gt=0"`
	Status         *string `form:"status" binding:"omitempty,oneof=INCOMPLETE PENDING APPROVED REJECTED"`
	EnrollmentYear *int    `form:"year" binding:"omitempty,gt=0"`
	Search         string  `form:"search" binding:"omitempty,max=100"`
	Page           int     `form:"page,default=1" binding:"min=1"`
	PageSize       int     `form:"pageSize,default=20" binding:"min=1,max=100"`
}

// StudentListResponse represents a page of application records
type StudentListResponse struct {
	Students   []StudentResponse `json:"students"`
	Pagination PaginationInfo    `json:"pagination"`
}

// StudentDetailResponse is the admin view of one record with its documents
type StudentDetailResponse struct {
	Student          StudentResponse       `json:"student"`
	Documents        []DocumentResponse    `json:"documents"`
	MissingDocuments []models.DocumentType `json:"missingDocuments"`
}

// DecisionRequest is an admin verdict, APPROVE or REJECT in any case.
// Reason is required for REJECT and may be empty.
type DecisionRequest struct {
	Decision string  `json:"decision" binding:"required"`
	Reason   *string `json:"reason" binding:"omitempty,max=500"`
}

// SetActiveRequest toggles a credential's active flag
type SetActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}
