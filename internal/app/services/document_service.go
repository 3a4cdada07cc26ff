package services

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
	appauth "github.com/yigit/admission/internal/app/auth"
	"github.com/yigit/admission/internal/app/lifecycle"
	"github.com/yigit/admission/internal/app/models"
	"github.com/yigit/admission/internal/app/models/dto"
	"github.com/yigit/admission/internal/app/notifications"
	"github.com/yigit/admission/internal/app/repositories"
	"github.com/yigit/admission/internal/pkg/apperrors"
	"github.com/yigit/admission/internal/pkg/filestorage"
	"github.com/yigit/admission/internal/pkg/metrics"
	"github.com/yigit/admission/internal/pkg/validation"
)

// allowedMimeTypes maps each accepted extension to the content types it may carry
var allowedMimeTypes = map[string][]string{
	"pdf":  {"application/pdf"},
	"jpg":  {"image/jpeg"},
	"jpeg": {"image/jpeg"},
	"png":  {"image/png"},
}

// DocumentService defines document operations
type DocumentService interface {
	Upload(ctx context.Context, userID int64, documentType string, file *multipart.FileHeader) (*dto.UploadDocumentResponse, error)
	ListOwn(ctx context.Context, userID int64) ([]*models.Document, error)
	Download(ctx context.Context, documentID int64, principal appauth.Principal) (*models.Document, *os.File, error)
	List(ctx context.Context, unverifiedOnly bool) ([]*models.Document, error)
	Verify(ctx context.Context, documentID int64, verified bool, adminID int64) (*models.Document, error)
	Delete(ctx context.Context, documentID int64) error
}

// documentServiceImpl implements DocumentService
type documentServiceImpl struct {
	documentRepo repositories.IDocumentRepository
	studentRepo  repositories.IStudentRepository
	storage      filestorage.Storage
	lifecycle    ApplicationLifecycle
	authz        *appauth.AuthorizationService
	notifier     lifecycle.Notifier
	logger       zerolog.Logger
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(
	documentRepo repositories.IDocumentRepository,
	studentRepo repositories.IStudentRepository,
	storage filestorage.Storage,
	lc ApplicationLifecycle,
	authz *appauth.AuthorizationService,
	notifier lifecycle.Notifier,
	logger zerolog.Logger,
) DocumentService {
	return &documentServiceImpl{
		documentRepo: documentRepo,
		studentRepo:  studentRepo,
		storage:      storage,
		lifecycle:    lc,
		authz:        authz,
		notifier:     notifier,
		logger:       logger.With().Str("service", "document").Logger(),
	}
}

// ParseDocumentType accepts a document type name in any case
func ParseDocumentType(s string) (models.DocumentType, error) {
	t := models.DocumentType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", &apperrors.FieldError{Field: "documentType", Message: "Unknown document type", Err: apperrors.ErrInvalidDocumentType}
	}
	return t, nil
}

// Upload stores a document for the caller's application record and re-evaluates completeness
func (s *documentServiceImpl) Upload(ctx context.Context, userID int64, documentType string, file *multipart.FileHeader) (*dto.UploadDocumentResponse, error) {
	docType, err := ParseDocumentType(documentType)
	if err != nil {
		return nil, err
	}
	if file == nil {
		return nil, &apperrors.FieldError{Field: "file", Message: "A file is required", Err: apperrors.ErrInvalidFile}
	}
	ext := validation.FileExtension(file.Filename)
	if !validation.IsAllowedExtension(file.Filename) {
		return nil, &apperrors.FieldError{
			Field:   "file",
			Message: "Only " + strings.Join(validation.AllowedExtensions, ", ") + " files are allowed",
			Err:     apperrors.ErrInvalidFile,
		}
	}
	if !validation.IsValidFileSize(file.Size) {
		return nil, &apperrors.FieldError{
			Field:   "file",
			Message: fmt.Sprintf("File must be between 1 byte and %d MB", validation.MaxFileSize/(1024*1024)),
			Err:     apperrors.ErrInvalidFile,
		}
	}

	student, err := s.studentRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	mimeType, err := detectMimeType(src, ext)
	if err != nil {
		return nil, err
	}

	relPath, size, err := s.storage.Save(src, filestorage.StudentDir(student.ID), ext)
	if err != nil {
		return nil, fmt.Errorf("failed to store document: %w", err)
	}

	doc := &models.Document{
		StudentID:    student.ID,
		DocumentType: docType,
		FileName:     validation.SanitizeInput(file.Filename),
		FilePath:     relPath,
		FileSize:     size,
		MimeType:     mimeType,
	}
	if err := s.documentRepo.Create(ctx, doc); err != nil {
		if delErr := s.storage.Delete(relPath); delErr != nil {
			s.logger.Error().Err(delErr).Str("path", relPath).Msg("Failed to remove stored file after metadata insert failed")
		}
		return nil, fmt.Errorf("failed to save document metadata: %w", err)
	}
	metrics.DocumentsUploaded.WithLabelValues(string(docType)).Inc()

	s.logger.Info().
		Int64("studentID", student.ID).
		Int64("documentID", doc.ID).
		Str("documentType", string(docType)).
		Msg("Document uploaded")

	complete, err := s.lifecycle.EvaluateCompleteness(ctx, student.ID)
	if err != nil {
		s.logger.Error().Err(err).Int64("studentID", student.ID).Msg("Completeness evaluation failed after upload")
	}

	status := student.Status
	if complete {
		if refreshed, err := s.studentRepo.GetByID(ctx, student.ID); err == nil {
			status = refreshed.Status
		}
	}

	return &dto.UploadDocumentResponse{
		Document: dto.NewDocumentResponse(doc),
		Complete: complete,
		Status:   status,
	}, nil
}

// detectMimeType sniffs the content and checks it matches the extension. src is rewound.
func detectMimeType(src multipart.File, ext string) (string, error) {
	mt, err := mimetype.DetectReader(src)
	if err != nil {
		return "", fmt.Errorf("failed to read uploaded file: %w", err)
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to rewind uploaded file: %w", err)
	}

	for _, allowed := range allowedMimeTypes[ext] {
		if mt.Is(allowed) {
			return allowed, nil
		}
	}
	return "", &apperrors.FieldError{Field: "file", Message: "File content does not match its extension", Err: apperrors.ErrInvalidFile}
}

// ListOwn returns the caller's documents
func (s *documentServiceImpl) ListOwn(ctx context.Context, userID int64) ([]*models.Document, error) {
	student, err := s.studentRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.documentRepo.ListByStudent(ctx, student.ID)
}

// Download opens a document for its owner or an admin. The caller closes the file.
func (s *documentServiceImpl) Download(ctx context.Context, documentID int64, principal appauth.Principal) (*models.Document, *os.File, error) {
	doc, err := s.authz.AuthorizeDocument(ctx, documentID, principal)
	if err != nil {
		return nil, nil, err
	}

	f, err := s.storage.Open(doc.FilePath)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Error().Int64("documentID", doc.ID).Str("path", doc.FilePath).Msg("Stored file missing for document")
			return nil, nil, apperrors.NewResourceNotFoundError("document file not found")
		}
		return nil, nil, fmt.Errorf("failed to open document: %w", err)
	}
	return doc, f, nil
}

// List returns all documents, or only unverified ones
func (s *documentServiceImpl) List(ctx context.Context, unverifiedOnly bool) ([]*models.Document, error) {
	return s.documentRepo.List(ctx, unverifiedOnly)
}

// Verify sets the verification flag and tells the student
func (s *documentServiceImpl) Verify(ctx context.Context, documentID int64, verified bool, adminID int64) (*models.Document, error) {
	doc, err := s.documentRepo.SetVerified(ctx, documentID, verified, adminID)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("documentID", doc.ID).
		Int64("adminID", adminID).
		Bool("verified", verified).
		Msg("Document verification changed")

	if s.notifier == nil {
		return doc, nil
	}
	student, err := s.studentRepo.GetByID(ctx, doc.StudentID)
	if err != nil {
		s.logger.Warn().Err(err).Int64("studentID", doc.StudentID).Msg("Could not load student for verification notice")
		return doc, nil
	}
	s.notifier.Notify(context.WithoutCancel(ctx), notifications.DocumentVerified(student, doc))
	return doc, nil
}

// Delete removes the document row and then its file
func (s *documentServiceImpl) Delete(ctx context.Context, documentID int64) error {
	doc, err := s.documentRepo.GetByID(ctx, documentID)
	if err != nil {
		return err
	}
	if err := s.documentRepo.Delete(ctx, documentID); err != nil {
		return err
	}
	if err := s.storage.Delete(doc.FilePath); err != nil {
		s.logger.Warn().Err(err).Int64("documentID", documentID).Msg("Document row deleted but file removal failed")
	}
	return nil
}
