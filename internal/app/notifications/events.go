package notifications

import (
	"github.com/yigit/admission/internal/app/models"
)

// Kind selects the email template of an Event
type Kind string

const (
	KindRegistration         Kind = "REGISTRATION"
	KindStatusUpdate         Kind = "STATUS_UPDATE"
	KindDocumentVerification Kind = "DOCUMENT_VERIFICATION"
	KindGeneral              Kind = "GENERAL"
)

// Event is something a student should hear about by email
type Event struct {
	Kind      Kind
	UserID    *int64
	Recipient string
	Name      string

	Username     string
	Status       models.ApplicationStatus
	Reason       string
	DocumentType models.DocumentType
	Verified     bool

	// Only for KindGeneral
	Subject string
	Message string
}

// RegistrationConfirmed is sent after a successful registration.
func RegistrationConfirmed(user *models.User, name string) Event {
	id := user.ID
	return Event{
		Kind:      KindRegistration,
		UserID:    &id,
		Recipient: user.Email,
		Name:      name,
		Username:  user.Username,
	}
}

// StatusChanged is sent whenever an application changes status.
func StatusChanged(s *models.Student) Event {
	id := s.UserID
	ev := Event{
		Kind:      KindStatusUpdate,
		UserID:    &id,
		Recipient: s.Email,
		Name:      s.FullName(),
		Status:    s.Status,
	}
	if s.RejectionReason != nil {
		ev.Reason = *s.RejectionReason
	}
	return ev
}

// DocumentVerified is sent when an administrator toggles a document's verification.
func DocumentVerified(s *models.Student, doc *models.Document) Event {
	id := s.UserID
	return Event{
		Kind:         KindDocumentVerification,
		UserID:       &id,
		Recipient:    s.Email,
		Name:         s.FullName(),
		DocumentType: doc.DocumentType,
		Verified:     doc.Verified,
	}
}

// General is a free-form message.
func General(userID *int64, recipient, name, subject, message string) Event {
	return Event{
		Kind:      KindGeneral,
		UserID:    userID,
		Recipient: recipient,
		Name:      name,
		Subject:   subject,
		Message:   message,
	}
}
