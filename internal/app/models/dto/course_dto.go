package dto

// CourseRequest creates or updates a course
type CourseRequest struct {
	Code          string  `json:"code" binding:"required,max=20"`
	Name          string  `json:"name" binding:"required,max=100"`
	Description   *string `json:"description" binding:"omitempty,max=1000"`
	DurationYears int     `json:"durationYears" binding:"required,min=1,max=10"`
}
