package models

import "time"

// Activity actions written to the activity log
const (
	ActionLogin        = "LOGIN"
	ActionFailedLogin  = "FAILED_LOGIN"
	ActionLogout       = "LOGOUT"
	ActionRegister     = "REGISTER"
	ActionAccessPrefix = "ACCESS_"
)

// ActivityLog is an audit row in 'activity_log'
type ActivityLog struct {
	ID          int64     `json:"id" db:"id"`
	UserID      *int64    `json:"userId,omitempty" db:"user_id"`
	Action      string    `json:"action" db:"action"`
	Description string    `json:"description" db:"description"`
	IPAddress   string    `json:"ipAddress" db:"ip_address"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}
