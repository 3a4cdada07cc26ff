package controllers

import (
	"context"
	"mime/multipart"
	"os"

	"github.com/stretchr/testify/mock"
	appauth "github.com/yigit/admission/internal/app/auth"
	"github.com/yigit/admission/internal/app/models"
	"github.com/yigit/admission/internal/app/models/dto"
)

type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) Register(ctx context.Context, req *dto.RegisterRequest, clientIP string) (*dto.RegisterResponse, error) {
	args := m.Called(ctx, req, clientIP)
	resp, _ := args.Get(0).(*dto.RegisterResponse)
	return resp, args.Error(1)
}

func (m *MockAuthenticator) Login(ctx context.Context, req *dto.LoginRequest, clientIP string) (*dto.AuthResponse, error) {
	args := m.Called(ctx, req, clientIP)
	resp, _ := args.Get(0).(*dto.AuthResponse)
	return resp, args.Error(1)
}

func (m *MockAuthenticator) RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	args := m.Called(ctx, refreshToken)
	resp, _ := args.Get(0).(*dto.TokenResponse)
	return resp, args.Error(1)
}

func (m *MockAuthenticator) Logout(ctx context.Context, userID int64, refreshToken, clientIP string) error {
	args := m.Called(ctx, userID, refreshToken, clientIP)
	return args.Error(0)
}

type MockStudentService struct {
	mock.Mock
}

func (m *MockStudentService) GetDashboard(ctx context.Context, userID int64) (*dto.StudentDashboardResponse, error) {
	args := m.Called(ctx, userID)
	resp, _ := args.Get(0).(*dto.StudentDashboardResponse)
	return resp, args.Error(1)
}

func (m *MockStudentService) GetProfile(ctx context.Context, userID int64) (*models.Student, error) {
	args := m.Called(ctx, userID)
	s, _ := args.Get(0).(*models.Student)
	return s, args.Error(1)
}

func (m *MockStudentService) UpdateProfile(ctx context.Context, userID int64, req *dto.UpdateProfileRequest) (*models.Student, error) {
	args := m.Called(ctx, userID, req)
	s, _ := args.Get(0).(*models.Student)
	return s, args.Error(1)
}

type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) Upload(ctx context.Context, userID int64, documentType string, file *multipart.FileHeader) (*dto.UploadDocumentResponse, error) {
	args := m.Called(ctx, userID, documentType, file)
	resp, _ := args.Get(0).(*dto.UploadDocumentResponse)
	return resp, args.Error(1)
}

func (m *MockDocumentService) ListOwn(ctx context.Context, userID int64) ([]*models.Document, error) {
	args := m.Called(ctx, userID)
	docs, _ := args.Get(0).([]*models.Document)
	return docs, args.Error(1)
}

func (m *MockDocumentService) Download(ctx context.Context, documentID int64, principal appauth.Principal) (*models.Document, *os.File, error) {
	args := m.Called(ctx, documentID, principal)
	doc, _ := args.Get(0).(*models.Document)
	f, _ := args.Get(1).(*os.File)
	return doc, f, args.Error(2)
}

func (m *MockDocumentService) List(ctx context.Context, unverifiedOnly bool) ([]*models.Document, error) {
	args := m.Called(ctx, unverifiedOnly)
	docs, _ := args.Get(0).([]*models.Document)
	return docs, args.Error(1)
}

func (m *MockDocumentService) Verify(ctx context.Context, documentID int64, verified bool, adminID int64) (*models.Document, error) {
	args := m.Called(ctx, documentID, verified, adminID)
	doc, _ := args.Get(0).(*models.Document)
	return doc, args.Error(1)
}

func (m *MockDocumentService) Delete(ctx context.Context, documentID int64) error {
	return m.Called(ctx, documentID).Error(0)
}

type MockAdminService struct {
	mock.Mock
}

func (m *MockAdminService) Dashboard(ctx context.Context) (*dto.AdminDashboardResponse, error) {
	args := m.Called(ctx)
	resp, _ := args.Get(0).(*dto.AdminDashboardResponse)
	return resp, args.Error(1)
}

func (m *MockAdminService) ListStudents(ctx context.Context, req *dto.StudentFilterRequest) (*dto.StudentListResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*dto.StudentListResponse)
	return resp, args.Error(1)
}

func (m *MockAdminService) GetStudent(ctx context.Context, studentID int64) (*dto.StudentDetailResponse, error) {
	args := m.Called(ctx, studentID)
	resp, _ := args.Get(0).(*dto.StudentDetailResponse)
	return resp, args.Error(1)
}

func (m *MockAdminService) Decide(ctx context.Context, studentID int64, req *dto.DecisionRequest, adminID int64) (*models.Student, error) {
	args := m.Called(ctx, studentID, req, adminID)
	s, _ := args.Get(0).(*models.Student)
	return s, args.Error(1)
}

func (m *MockAdminService) Reopen(ctx context.Context, studentID, adminID int64) (*models.Student, error) {
	args := m.Called(ctx, studentID, adminID)
	s, _ := args.Get(0).(*models.Student)
	return s, args.Error(1)
}

func (m *MockAdminService) DeleteStudent(ctx context.Context, studentID int64) error {
	return m.Called(ctx, studentID).Error(0)
}

func (m *MockAdminService) SetUserActive(ctx context.Context, userID int64, active bool) error {
	return m.Called(ctx, userID, active).Error(0)
}

func (m *MockAdminService) Report(ctx context.Context, req *dto.ReportRequest) (*dto.ReportResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*dto.ReportResponse)
	return resp, args.Error(1)
}

func (m *MockAdminService) RecentActivity(ctx context.Context, limit int) ([]*models.ActivityLog, error) {
	args := m.Called(ctx, limit)
	entries, _ := args.Get(0).([]*models.ActivityLog)
	return entries, args.Error(1)
}

type MockCourseService struct {
	mock.Mock
}

func (m *MockCourseService) ListActive(ctx context.Context) ([]*models.Course, error) {
	args := m.Called(ctx)
	courses, _ := args.Get(0).([]*models.Course)
	return courses, args.Error(1)
}

func (m *MockCourseService) GetByID(ctx context.Context, id int64) (*models.Course, error) {
	args := m.Called(ctx, id)
	course, _ := args.Get(0).(*models.Course)
	return course, args.Error(1)
}

func (m *MockCourseService) Create(ctx context.Context, req *dto.CourseRequest) (*models.Course, error) {
	args := m.Called(ctx, req)
	course, _ := args.Get(0).(*models.Course)
	return course, args.Error(1)
}

func (m *MockCourseService) Update(ctx context.Context, id int64, req *dto.CourseRequest) (*models.Course, error) {
	args := m.Called(ctx, id, req)
	course, _ := args.Get(0).(*models.Course)
	return course, args.Error(1)
}

func (m *MockCourseService) Deactivate(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}
