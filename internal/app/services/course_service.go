package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/admission/internal/app/models"
	"github.com/yigit/admission/internal/app/models/dto"
	"github.com/yigit/admission/internal/app/repositories"
)

// CourseService defines course operations
type CourseService interface {
	ListActive(ctx context.Context) ([]*models.Course, error)
	GetByID(ctx context.Context, id int64) (*models.Course, error)
	Create(ctx context.Context, req *dto.CourseRequest) (*models.Course, error)
	Update(ctx context.Context, id int64, req *dto.CourseRequest) (*models.Course, error)
	Deactivate(ctx context.Context, id int64) error
}

// courseServiceImpl implements CourseService
type courseServiceImpl struct {
	courseRepo repositories.ICourseRepository
	logger     zerolog.Logger
}

// NewCourseService creates a new CourseService
func NewCourseService(courseRepo repositories.ICourseRepository, logger zerolog.Logger) CourseService {
	return &courseServiceImpl{
		courseRepo: courseRepo,
		logger:     logger.With().Str("service", "course").Logger(),
	}
}

// ListActive returns courses open for admission ordered by name
func (s *courseServiceImpl) ListActive(ctx context.Context) ([]*models.Course, error) {
	return s.courseRepo.ListActive(ctx)
}

// GetByID returns a course
func (s *courseServiceImpl) GetByID(ctx context.Context, id int64) (*models.Course, error) {
	return s.courseRepo.GetByID(ctx, id)
}

func courseFromRequest(req *dto.CourseRequest) *models.Course {
	c := &models.Course{
		Code:          strings.ToUpper(strings.TrimSpace(req.Code)),
		Name:          strings.TrimSpace(req.Name),
		DurationYears: req.DurationYears,
		IsActive:      true,
	}
	if req.Description != nil {
		desc := strings.TrimSpace(*req.Description)
		c.Description = &desc
	}
	return c
}

// Create adds a course
func (s *courseServiceImpl) Create(ctx context.Context, req *dto.CourseRequest) (*models.Course, error) {
	course := courseFromRequest(req)
	if err := s.courseRepo.Create(ctx, course); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("courseID", course.ID).Str("code", course.Code).Msg("Course created")
	return course, nil
}

// Update replaces a course's details
func (s *courseServiceImpl) Update(ctx context.Context, id int64, req *dto.CourseRequest) (*models.Course, error) {
	existing, err := s.courseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	course := courseFromRequest(req)
	course.ID = id
	course.IsActive = existing.IsActive
	if err := s.courseRepo.Update(ctx, course); err != nil {
		return nil, err
	}
	return course, nil
}

// Deactivate soft-deletes a course
func (s *courseServiceImpl) Deactivate(ctx context.Context, id int64) error {
	if err := s.courseRepo.Deactivate(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int64("courseID", id).Msg("Course deactivated")
	return nil
}
