package seed

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/yigit/admission/internal/app/models"
	"github.com/yigit/admission/internal/app/repositories"
	"github.com/yigit/admission/internal/pkg/apperrors"
	"github.com/yigit/admission/internal/pkg/auth"
	"golang.org/x/crypto/bcrypt"
)

// mockUsers overrides only the calls made while seeding
type mockUsers struct {
	repositories.IUserRepository
	mock.Mock
}

func (m *mockUsers) UsernameExists(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *mockUsers) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

type mockCourses struct {
	repositories.ICourseRepository
	mock.Mock
}

func (m *mockCourses) Create(ctx context.Context, course *models.Course) error {
	args := m.Called(ctx, course)
	return args.Error(0)
}

var testAdmin = AdminAccount{Username: "registrar", Email: "Registrar@Example.com", Password: "S3cure!pass"}

func TestCreateDefaultData_CreatesAdminAndCourses(t *testing.T) {
	users := new(mockUsers)
	courses := new(mockCourses)
	hasher := auth.NewPasswordHasher(bcrypt.MinCost)

	users.On("UsernameExists", mock.Anything, "registrar").Return(false, nil)
	users.On("Create", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
		return u.RoleType == models.RoleAdmin &&
			u.IsActive &&
			u.Email == "registrar@example.com" &&
			hasher.Check(u.PasswordHash, "S3cure!pass")
	})).Return(nil)
	courses.On("Create", mock.Anything, mock.MatchedBy(func(c *models.Course) bool { return c.IsActive })).
		Return(nil).Times(len(DefaultCourses))

	err := CreateDefaultData(context.Background(), users, courses, hasher, testAdmin, zerolog.Nop())
	require.NoError(t, err)
	users.AssertExpectations(t)
	courses.AssertExpectations(t)
}

func TestCreateDefaultData_IsIdempotent(t *testing.T) {
	users := new(mockUsers)
	courses := new(mockCourses)

	users.On("UsernameExists", mock.Anything, "registrar").Return(true, nil)
	courses.On("Create", mock.Anything, mock.Anything).Return(apperrors.ErrCourseAlreadyExists)

	err := CreateDefaultData(context.Background(), users, courses, auth.NewPasswordHasher(bcrypt.MinCost), testAdmin, zerolog.Nop())
	require.NoError(t, err)
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateDefaultData_SkipsAdminWithoutCredentials(t *testing.T) {
	users := new(mockUsers)
	courses := new(mockCourses)
	courses.On("Create", mock.Anything, mock.Anything).Return(nil)

	err := CreateDefaultData(context.Background(), users, courses, auth.NewPasswordHasher(bcrypt.MinCost),
		AdminAccount{Username: "registrar"}, zerolog.Nop())
	require.NoError(t, err)
	users.AssertNotCalled(t, "UsernameExists", mock.Anything, mock.Anything)
}

func TestCreateDefaultData_JoinsErrors(t *testing.T) {
	users := new(mockUsers)
	courses := new(mockCourses)
	dbDown := errors.New("connection refused")

	users.On("UsernameExists", mock.Anything, "registrar").Return(false, dbDown)
	courses.On("Create", mock.Anything, mock.Anything).Return(dbDown)

	err := CreateDefaultData(context.Background(), users, courses, auth.NewPasswordHasher(bcrypt.MinCost), testAdmin, zerolog.Nop())
	require.Error(t, err)
	assert.ErrorIs(t, err, dbDown)
	courses.AssertNumberOfCalls(t, "Create", len(DefaultCourses))
}
