package models

// Course is reference data a student applies to. Courses are soft-deleted.
type Course struct {
	ID            int64   `json:"id" db:"id"`
	Code          string  `json:"code" db:"course_code"`
	Name          string  `json:"name" db:"course_name"`
	Description   *string `json:"description,omitempty" db:"description"`
	DurationYears int     `json:"durationYears" db:"duration_years"`
	IsActive      bool    `json:"isActive" db:"is_active"`
}
