package dto

import (
	"strconv"
	"time"

	"github.com/yigit/admission/internal/app/models"
)

// UploadDocumentRequest holds the non-file fields of a multipart upload
type UploadDocumentRequest struct {
	DocumentType string `form:"documentType" binding:"required"`
}

// DocumentResponse represents uploaded document metadata
type DocumentResponse struct {
	ID           int64               `json:"id"`
	StudentID    int64               `json:"studentId"`
	DocumentType models.DocumentType `json:"documentType"`
	FileName     string              `json:"fileName"`
	FileSize     int64               `json:"fileSize"`
	MimeType     string              `json:"mimeType"`
	UploadedAt   time.Time           `json:"uploadedAt"`
	Verified     bool                `json:"verified"`
	VerifiedBy   *int64              `json:"verifiedBy,omitempty"`
	VerifiedAt   *time.Time          `json:"verifiedAt,omitempty"`
	DownloadURL  string              `json:"downloadUrl"`
}

// NewDocumentResponse maps a document to its view
func NewDocumentResponse(d *models.Document) DocumentResponse {
	return DocumentResponse{
		ID:           d.ID,
		StudentID:    d.StudentID,
		DocumentType: d.DocumentType,
		FileName:     d.FileName,
		FileSize:     d.FileSize,
		MimeType:     d.MimeType,
		UploadedAt:   d.UploadedAt,
		Verified:     d.Verified,
		VerifiedBy:   d.VerifiedBy,
		VerifiedAt:   d.VerifiedAt,
		DownloadURL:  DocumentDownloadPath(d.ID),
	}
}

// NewDocumentResponses maps a slice of documents
func NewDocumentResponses(docs []*models.Document) []DocumentResponse {
	out := make([]DocumentResponse, 0, len(docs))
	for _, d := range docs {
		out = append(out, NewDocumentResponse(d))
	}
	return out
}

// DocumentDownloadPath is the API path that streams a document
func DocumentDownloadPath(id int64) string {
	return "/api/v1/documents/" + strconv.FormatInt(id, 10) + "/download"
}

// UploadDocumentResponse is returned after an upload
type UploadDocumentResponse struct {
	Document DocumentResponse         `json:"document"`
	Complete bool                     `json:"complete"`
	Status   models.ApplicationStatus `json:"status"`
}

// VerifyDocumentRequest sets a document's verification flag
type VerifyDocumentRequest struct {
	Verified *bool `json:"verified" binding:"required"`
}

// DocumentFilterRequest holds the query parameters of the admin document listing
type DocumentFilterRequest struct {
	Unverified bool `form:"unverified"`
}
