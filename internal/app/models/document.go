package models

import "time"

// Document is the metadata of an uploaded verification document
type Document struct {
	ID           int64        `json:"id" db:"id"`
	StudentID    int64        `json:"studentId" db:"student_id"`
	DocumentType DocumentType `json:"documentType" db:"document_type"`
	FileName     string       `json:"fileName" db:"file_name"`
	FilePath     string       `json:"-" db:"file_path"`
	FileSize     int64        `json:"fileSize" db:"file_size"`
	MimeType     string       `json:"mimeType" db:"mime_type"`
	UploadedAt   time.Time    `json:"uploadedAt" db:"uploaded_at"`
	Verified     bool         `json:"verified" db:"verified"`
	VerifiedBy   *int64       `json:"verifiedBy,omitempty" db:"verified_by"`
	VerifiedAt   *time.Time   `json:"verifiedAt,omitempty" db:"verified_at"`
}
