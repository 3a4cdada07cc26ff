package seed

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/yigit/admission/internal/app/models"
	"github.com/yigit/admission/internal/app/repositories"
	"github.com/yigit/admission/internal/pkg/apperrors"
	"github.com/yigit/admission/internal/pkg/auth"
)

// AdminAccount is the administrator created on first start
type AdminAccount struct {
	Username string
	Email    string
	Password string
}

// DefaultCourses are offered when the catalogue is first created
var DefaultCourses = []models.Course{
	{Code: "CSE", Name: "Computer Science and Engineering", DurationYears: 4},
	{Code: "ECE", Name: "Electronics and Communication Engineering", DurationYears: 4},
	{Code: "ME", Name: "Mechanical Engineering", DurationYears: 4},
	{Code: "BBA", Name: "Bachelor of Business Administration", DurationYears: 3},
	{Code: "MBA", Name: "Master of Business Administration", DurationYears: 2},
}

// CreateDefaultData creates the administrator account and the default courses if they don't exist.
// Every step is attempted; errors are joined.
func CreateDefaultData(
	ctx context.Context,
	users repositories.IUserRepository,
	courses repositories.ICourseRepository,
	hasher *auth.PasswordHasher,
	admin AdminAccount,
	lgr zerolog.Logger,
) error {
	lgr.Info().Msg("Checking/Creating default data (admin account, courses)...")

	finalErr := createAdmin(ctx, users, hasher, admin, lgr)

	for _, c := range DefaultCourses {
		course := c
		course.IsActive = true
		err := courses.Create(ctx, &course)
		if err != nil && !errors.Is(err, apperrors.ErrCourseAlreadyExists) {
			lgr.Error().Err(err).Str("code", c.Code).Msg("Error creating default course")
			finalErr = errors.Join(finalErr, err)
		}
	}

	return finalErr
}

func createAdmin(ctx context.Context, users repositories.IUserRepository, hasher *auth.PasswordHasher, admin AdminAccount, lgr zerolog.Logger) error {
	if admin.Username == "" || admin.Email == "" || admin.Password == "" {
		lgr.Warn().Msg("Admin credentials not configured (ADMIN_USERNAME, ADMIN_EMAIL, ADMIN_PASSWORD), skipping admin seed")
		return nil
	}

	exists, err := users.UsernameExists(ctx, admin.Username)
	if err != nil {
		lgr.Error().Err(err).Msg("Error checking admin account")
		return err
	}
	if exists {
		lgr.Debug().Str("username", admin.Username).Msg("Admin account already exists")
		return nil
	}

	hash, err := hasher.Hash(admin.Password)
	if err != nil {
		return err
	}

	user := &models.User{
		Username:     admin.Username,
		Email:        repositories.NormalizeEmail(admin.Email),
		PasswordHash: hash,
		RoleType:     models.RoleAdmin,
		IsActive:     true,
	}
	if err := users.Create(ctx, user); err != nil {
		lgr.Error().Err(err).Msg("Error creating admin account")
		return err
	}

	lgr.Info().Int64("userID", user.ID).Str("username", user.Username).Msg("Admin account created")
	return nil
}
