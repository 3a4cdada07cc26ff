package models

import (
	"time"
)

// Student is the application record of one registered student ('students' table).
// ApprovedBy records the deciding admin for both approvals and rejections;
// ApprovedDate is only set for approvals.
type Student struct {
	ID              int64             `json:"id" db:"id"`
	UserID          int64             `json:"userId" db:"user_id"`
	FirstName       string            `json:"firstName" db:"first_name"`
	LastName        string            `json:"lastName" db:"last_name"`
	DateOfBirth     time.Time         `json:"dateOfBirth" db:"date_of_birth"`
	Gender          string            `json:"gender" db:"gender"`
	Phone           string            `json:"phone" db:"phone"`
	Address         string            `json:"address" db:"address"`
	City            string            `json:"city" db:"city"`
	State           string            `json:"state" db:"state"`
	ZipCode         string            `json:"zipCode" db:"zip_code"`
	Country         string            `json:"country" db:"country"`
	CourseID        int64             `json:"courseId" db:"course_id"`
	EnrollmentYear  int               `json:"enrollmentYear" db:"enrollment_year"`
	Status          ApplicationStatus `json:"status" db:"status"`
	RegistrationAt  time.Time         `json:"registrationDate" db:"registration_date"`
	ApprovedBy      *int64            `json:"approvedBy,omitempty" db:"approved_by"`
	ApprovedDate    *time.Time        `json:"approvedDate,omitempty" db:"approved_date"`
	RejectionReason *string           `json:"rejectionReason,omitempty" db:"rejection_reason"`

	// Joined columns, read-only
	Email      string `json:"email" db:"-"`
	Username   string `json:"username" db:"-"`
	CourseName string `json:"courseName" db:"-"`
}

// FullName returns "First Last".
func (s *Student) FullName() string {
	return s.FirstName + " " + s.LastName
}

// StatusChange is the status-related column set written in a single UPDATE.
type StatusChange struct {
	Status          ApplicationStatus
	ApprovedBy      *int64
	ApprovedDate    *time.Time
	RejectionReason *string
}

// StudentFilter narrows student listings and reports.
type StudentFilter struct {
	CourseID       *int64
	Status         *ApplicationStatus
	EnrollmentYear *int
	Search         string
	Limit          int
	Offset         uint64
}

// StatusCounts maps each status to the number of records in it.
type StatusCounts map[ApplicationStatus]int64

// Total sums all statuses.
func (c StatusCounts) Total() int64 {
	var total int64
	for _, n := range c {
		total += n
	}
	return total
}
