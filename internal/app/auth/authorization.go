package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/yigit/admission/internal/app/models"
	"github.com/yigit/admission/internal/app/repositories"
	"github.com/yigit/admission/internal/pkg/apperrors"
	"github.com/yigit/admission/internal/pkg/logger"
)

// Principal is the authenticated caller of a request
type Principal struct {
	UserID int64
	Role   models.RoleType
}

// IsAdmin reports whether the caller is an administrator
func (p Principal) IsAdmin() bool {
	return p.Role == models.RoleAdmin
}

// AuthorizationService decides who may see which application data
type AuthorizationService struct {
	studentRepo  repositories.IStudentRepository
	documentRepo repositories.IDocumentRepository
}

// NewAuthorizationService creates a new AuthorizationService
func NewAuthorizationService(studentRepo repositories.IStudentRepository, documentRepo repositories.IDocumentRepository) *AuthorizationService {
	return &AuthorizationService{
		studentRepo:  studentRepo,
		documentRepo: documentRepo,
	}
}

// CanAccessDocument checks if the caller owns the document's application record or is an admin
func (s *AuthorizationService) CanAccessDocument(ctx context.Context, doc *models.Document, p Principal) (bool, error) {
	if p.IsAdmin() {
		return true, nil
	}
	if p.Role != models.RoleStudent {
		return false, nil
	}

	student, err := s.studentRepo.GetByUserID(ctx, p.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrStudentNotFound) {
			return false, nil
		}
		logger.Error().Err(err).Int64("userID", p.UserID).Msg("Error getting application record in CanAccessDocument")
		return false, fmt.Errorf("failed to check document ownership: %w", err)
	}
	return student.ID == doc.StudentID, nil
}

// AuthorizeDocument loads a document and returns it when the caller may access it.
// A document the caller may not see is reported as forbidden.
func (s *AuthorizationService) AuthorizeDocument(ctx context.Context, documentID int64, p Principal) (*models.Document, error) {
	doc, err := s.documentRepo.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}

	ok, err := s.CanAccessDocument(ctx, doc, p)
	if err != nil {
		return nil, err
	}
	if !ok {
		logger.Warn().Int64("documentID", documentID).Int64("userID", p.UserID).Msg("Document access denied")
		return nil, apperrors.NewForbiddenError("you don't have permission to access this document")
	}
	return doc, nil
}
