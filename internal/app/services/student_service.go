package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/admission/internal/app/lifecycle"
	"github.com/yigit/admission/internal/app/models"
	"github.com/yigit/admission/internal/app/models/dto"
	"github.com/yigit/admission/internal/app/repositories"
	"github.com/yigit/admission/internal/pkg/apperrors"
	"github.com/yigit/admission/internal/pkg/validation"
)

// StudentService defines the operations a student performs on their own record
type StudentService interface {
	GetDashboard(ctx context.Context, userID int64) (*dto.StudentDashboardResponse, error)
	GetProfile(ctx context.Context, userID int64) (*models.Student, error)
	UpdateProfile(ctx context.Context, userID int64, req *dto.UpdateProfileRequest) (*models.Student, error)
}

// studentServiceImpl implements StudentService
type studentServiceImpl struct {
	studentRepo  repositories.IStudentRepository
	documentRepo repositories.IDocumentRepository
	courseRepo   repositories.ICourseRepository
	logger       zerolog.Logger
}

// NewStudentService creates a new StudentService
func NewStudentService(
	studentRepo repositories.IStudentRepository,
	documentRepo repositories.IDocumentRepository,
	courseRepo repositories.ICourseRepository,
	logger zerolog.Logger,
) StudentService {
	return &studentServiceImpl{
		studentRepo:  studentRepo,
		documentRepo: documentRepo,
		courseRepo:   courseRepo,
		logger:       logger.With().Str("service", "student").Logger(),
	}
}

// GetDashboard returns the record, its course, uploaded documents and the missing document checklist
func (s *studentServiceImpl) GetDashboard(ctx context.Context, userID int64) (*dto.StudentDashboardResponse, error) {
	student, err := s.studentRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	docs, err := s.documentRepo.ListByStudent(ctx, student.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	types := make([]models.DocumentType, 0, len(docs))
	for _, d := range docs {
		types = append(types, d.DocumentType)
	}
	missing := lifecycle.MissingDocumentTypes(types)

	resp := &dto.StudentDashboardResponse{
		Student:          dto.NewStudentResponse(student),
		Documents:        dto.NewDocumentResponses(docs),
		MissingDocuments: missing,
		Complete:         len(missing) == 0,
	}

	course, err := s.courseRepo.GetByID(ctx, student.CourseID)
	switch {
	case err == nil:
		resp.Course = course
	case errors.Is(err, apperrors.ErrCourseNotFound):
		s.logger.Warn().Int64("studentID", student.ID).Int64("courseID", student.CourseID).Msg("Course of application record not found")
	default:
		return nil, fmt.Errorf("failed to load course: %w", err)
	}

	return resp, nil
}

// GetProfile returns the caller's application record
func (s *studentServiceImpl) GetProfile(ctx context.Context, userID int64) (*models.Student, error) {
	return s.studentRepo.GetByUserID(ctx, userID)
}

// UpdateProfile edits contact details. Status and decision bookkeeping are preserved.
func (s *studentServiceImpl) UpdateProfile(ctx context.Context, userID int64, req *dto.UpdateProfileRequest) (*models.Student, error) {
	student, err := s.studentRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	student.FirstName = validation.SanitizeInput(req.FirstName)
	student.LastName = validation.SanitizeInput(req.LastName)
	student.Phone = validation.NormalizePhone(req.Phone)
	student.Address = validation.SanitizeInput(req.Address)
	student.City = validation.SanitizeInput(req.City)
	student.State = validation.SanitizeInput(req.State)
	student.ZipCode = strings.TrimSpace(req.ZipCode)
	if country := validation.SanitizeInput(req.Country); country != "" {
		student.Country = country
	}

	if err := s.studentRepo.UpdateProfile(ctx, student); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("studentID", student.ID).Msg("Profile updated")
	return student, nil
}
