package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yigit/admission/internal/app/models"
	"github.com/yigit/admission/internal/app/models/dto"
	"github.com/yigit/admission/internal/app/notifications"
	"github.com/yigit/admission/internal/pkg/apperrors"
	"github.com/yigit/admission/internal/pkg/metrics"
	"github.com/yigit/admission/internal/pkg/validation"
)

// Register creates a student's credential and application record.
//
// The two inserts are separate steps. If the application record cannot be
// created, the credential is deleted again; if that delete also fails the
// credential is left orphaned and ErrPartialRegistration is returned.
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest, clientIP string) (*dto.RegisterResponse, error) {
	now := s.now()

	user, student, err := s.prepareRegistration(ctx, req, now)
	if err != nil {
		metrics.Registrations.WithLabelValues("rejected").Inc()
		return nil, err
	}

	// Step 1: credential
	if err := s.userRepo.Create(ctx, user); err != nil {
		metrics.Registrations.WithLabelValues("rejected").Inc()
		return nil, conflictField(err)
	}

	// Step 2: application record
	student.UserID = user.ID
	if err := s.studentRepo.Create(ctx, student); err != nil {
		return nil, s.compensateRegistration(ctx, user, err)
	}

	metrics.Registrations.WithLabelValues("success").Inc()
	s.logger.Info().
		Int64("userID", user.ID).
		Int64("studentID", student.ID).
		Str("username", user.Username).
		Msg("Student registered")

	recordActivity(ctx, s.activityRepo, s.logger, int64Ptr(user.ID), models.ActionRegister,
		fmt.Sprintf("Student %s registered", user.Username), clientIP)

	sent := false
	if s.notifier != nil {
		sent = s.notifier.Notify(context.WithoutCancel(ctx), notifications.RegistrationConfirmed(user, student.FullName()))
	}

	return &dto.RegisterResponse{
		UserID:           user.ID,
		StudentID:        student.ID,
		Username:         user.Username,
		Email:            user.Email,
		Status:           student.Status,
		NotificationSent: sent,
	}, nil
}

// prepareRegistration validates what binding tags cannot and checks uniqueness,
// username first, before anything is written.
func (s *AuthService) prepareRegistration(ctx context.Context, req *dto.RegisterRequest, now time.Time) (*models.User, *models.Student, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	dob, err := time.Parse(dto.DateLayout, strings.TrimSpace(req.DateOfBirth))
	if err != nil {
		return nil, nil, apperrors.NewFieldError("dateOfBirth", "Date of birth must be in YYYY-MM-DD format")
	}
	if !validation.IsValidDateOfBirth(dob, now) {
		return nil, nil, apperrors.NewFieldError("dateOfBirth",
			fmt.Sprintf("You must be at least %d years old", validation.MinimumAge))
	}
	if !validation.IsValidEnrollmentYear(req.EnrollmentYear, now) {
		return nil, nil, apperrors.NewFieldError("enrollmentYear", "Enrollment year is out of range")
	}

	course, err := s.courseRepo.GetByID(ctx, req.CourseID)
	if err != nil {
		if errors.Is(err, apperrors.ErrCourseNotFound) {
			return nil, nil, &apperrors.FieldError{Field: "courseId", Message: "Selected course does not exist", Err: err}
		}
		return nil, nil, fmt.Errorf("failed to load course: %w", err)
	}
	if !course.IsActive {
		return nil, nil, &apperrors.FieldError{Field: "courseId", Message: "Selected course is not open for admission", Err: apperrors.ErrCourseInactive}
	}

	exists, err := s.userRepo.UsernameExists(ctx, username)
	if err != nil {
		return nil, nil, fmt.Errorf("error checking if username exists: %w", err)
	}
	if exists {
		return nil, nil, conflictField(apperrors.ErrUsernameExists)
	}

	exists, err = s.userRepo.EmailExists(ctx, email)
	if err != nil {
		return nil, nil, fmt.Errorf("error checking if email exists: %w", err)
	}
	if exists {
		return nil, nil, conflictField(apperrors.ErrEmailExists)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		RoleType:     models.RoleStudent,
		IsActive:     true,
	}
	student := &models.Student{
		FirstName:      validation.SanitizeInput(req.FirstName),
		LastName:       validation.SanitizeInput(req.LastName),
		DateOfBirth:    dob,
		Gender:         req.Gender,
		Phone:          validation.NormalizePhone(req.Phone),
		Address:        validation.SanitizeInput(req.Address),
		City:           validation.SanitizeInput(req.City),
		State:          validation.SanitizeInput(req.State),
		ZipCode:        strings.TrimSpace(req.ZipCode),
		Country:        validation.SanitizeInput(req.Country),
		CourseID:       course.ID,
		EnrollmentYear: req.EnrollmentYear,
		Status:         models.StatusIncomplete,
		RegistrationAt: now,
		Email:          email,
		Username:       username,
		CourseName:     course.Name,
	}
	return user, student, nil
}

// compensateRegistration undoes step 1 after step 2 failed with cause.
func (s *AuthService) compensateRegistration(ctx context.Context, user *models.User, cause error) error {
	s.logger.Warn().Err(cause).Int64("userID", user.ID).Msg("Application record creation failed, removing credential")

	if err := s.userRepo.Delete(context.WithoutCancel(ctx), user.ID); err != nil {
		metrics.OrphanedCredentials.Inc()
		metrics.Registrations.WithLabelValues("partial").Inc()
		s.logger.Error().
			Err(err).
			AnErr("cause", cause).
			Int64("orphanedUserID", user.ID).
			Str("username", user.Username).
			Msg("Compensating delete failed, credential left without application record")
		return fmt.Errorf("%w: %w", apperrors.ErrPartialRegistration, cause)
	}

	metrics.Registrations.WithLabelValues("failed").Inc()
	if errors.Is(cause, apperrors.ErrCourseNotFound) {
		return &apperrors.FieldError{Field: "courseId", Message: "Selected course does not exist", Err: cause}
	}
	return fmt.Errorf("failed to create application record: %w", cause)
}

// conflictField scopes a duplicate credential error to its form field.
func conflictField(err error) error {
	switch {
	case errors.Is(err, apperrors.ErrUsernameExists):
		return &apperrors.FieldError{Field: "username", Message: "Username already exists", Err: apperrors.ErrUsernameExists}
	case errors.Is(err, apperrors.ErrEmailExists):
		return &apperrors.FieldError{Field: "email", Message: "Email already registered", Err: apperrors.ErrEmailExists}
	}
	return err
}
