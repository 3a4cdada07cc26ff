package models

import "time"

// NotificationStatus is the delivery outcome of an email
type NotificationStatus string

const (
	NotificationSent   NotificationStatus = "SENT"
	NotificationFailed NotificationStatus = "FAILED"
)

// EmailNotification records one email attempt in 'email_notifications'
type EmailNotification struct {
	ID        int64              `json:"id" db:"id"`
	UserID    *int64             `json:"userId,omitempty" db:"user_id"`
	Recipient string             `json:"recipient" db:"recipient"`
	Subject   string             `json:"subject" db:"subject"`
	Message   string             `json:"message" db:"message"`
	Status    NotificationStatus `json:"status" db:"status"`
	SentAt    time.Time          `json:"sentAt" db:"sent_at"`
}
