package models

// RoleType defines the user role type
type RoleType string

const (
	RoleStudent RoleType = "STUDENT"
	RoleAdmin   RoleType = "ADMIN"
)

// ApplicationStatus is the admission status of a student's application record.
type ApplicationStatus string

const (
	StatusIncomplete ApplicationStatus = "INCOMPLETE"
	StatusPending    ApplicationStatus = "PENDING"
	StatusApproved   ApplicationStatus = "APPROVED"
	StatusRejected   ApplicationStatus = "REJECTED"
)

// AllStatuses lists statuses in lifecycle order.
var AllStatuses = []ApplicationStatus{StatusIncomplete, StatusPending, StatusApproved, StatusRejected}

// IsValid reports whether s is a known status.
func (s ApplicationStatus) IsValid() bool {
	for _, st := range AllStatuses {
		if st == s {
			return true
		}
	}
	return false
}

// DocumentType identifies what an uploaded document proves.
type DocumentType string

const (
	DocumentPhoto               DocumentType = "PHOTO"
	DocumentMarksheet10         DocumentType = "MARKSHEET_10"
	DocumentMarksheet12         DocumentType = "MARKSHEET_12"
	DocumentAadhar              DocumentType = "AADHAR"
	DocumentTransferCertificate DocumentType = "TRANSFER_CERTIFICATE"
	DocumentOther               DocumentType = "OTHER"
)

// AllDocumentTypes lists every accepted document type.
var AllDocumentTypes = []DocumentType{
	DocumentPhoto,
	DocumentMarksheet10,
	DocumentMarksheet12,
	DocumentAadhar,
	DocumentTransferCertificate,
	DocumentOther,
}

// IsValid reports whether t is a known document type.
func (t DocumentType) IsValid() bool {
	for _, dt := range AllDocumentTypes {
		if dt == t {
			return true
		}
	}
	return false
}
