package controllers

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	appauth "github.com/yigit/admission/internal/app/auth"
	"github.com/yigit/admission/internal/app/models"
	"github.com/yigit/admission/internal/app/models/dto"
	"github.com/yigit/admission/internal/middleware"
	"github.com/yigit/admission/internal/pkg/apperrors"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	if err := middleware.RegisterValidators(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// asUser stands in for JWTAuth in handler tests
func asUser(userID int64, role models.RoleType) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserID, userID)
		c.Set(middleware.ContextRole, role)
		c.Next()
	}
}

func doJSON(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	req.RemoteAddr = "10.0.0.5:52000"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorOf(t *testing.T, w *httptest.ResponseRecorder) *dto.ErrorDetail {
	t.Helper()
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	return resp.Error
}

const validRegistration = `{
	"username": "alice01",
	"email": "alice@example.com",
	"password": "Secret@123",
	"confirmPassword": "Secret@123",
	"firstName": "Alice",
	"lastName": "Smith",
	"dateOfBirth": "2006-04-12",
	"gender": "FEMALE",
	"phone": "98765 43210",
	"address": "12 Park Street",
	"city": "Pune",
	"state": "Maharashtra",
	"zipCode": "411001",
	"courseId": 1,
	"enrollmentYear": 2025
}`

func newAuthRouter(svc *MockAuthenticator) *gin.Engine {
	c := NewAuthController(svc, zerolog.Nop())
	r := gin.New()
	r.POST("/auth/register", c.Register)
	r.POST("/auth/login", c.Login)
	r.POST("/auth/refresh", c.RefreshToken)
	r.POST("/auth/logout", asUser(42, models.RoleStudent), c.Logout)
	return r
}

func TestAuthController_Register(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		svc := new(MockAuthenticator)
		svc.On("Register", mock.Anything, mock.MatchedBy(func(req *dto.RegisterRequest) bool {
			return req.Username == "alice01" && req.CourseID == 1
		}), "10.0.0.5").Return(&dto.RegisterResponse{
			UserID: 42, StudentID: 17, Username: "alice01", Email: "alice@example.com",
			Status: models.StatusIncomplete, NotificationSent: true,
		}, nil)

		w := doJSON(newAuthRouter(svc), http.MethodPost, "/auth/register", validRegistration)

		require.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"INCOMPLETE"`)
		svc.AssertExpectations(t)
	})

	t.Run("weak password rejected before the service", func(t *testing.T) {
		svc := new(MockAuthenticator)
		body := strings.ReplaceAll(validRegistration, "Secret@123", "password")

		w := doJSON(newAuthRouter(svc), http.MethodPost, "/auth/register", body)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "password", errorOf(t, w).Field)
		svc.AssertNotCalled(t, "Register", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("duplicate email", func(t *testing.T) {
		svc := new(MockAuthenticator)
		svc.On("Register", mock.Anything, mock.Anything, mock.Anything).Return(nil,
			&apperrors.FieldError{Field: "email", Message: "Email already registered", Err: apperrors.ErrEmailExists})

		w := doJSON(newAuthRouter(svc), http.MethodPost, "/auth/register", validRegistration)

		assert.Equal(t, http.StatusConflict, w.Code)
		detail := errorOf(t, w)
		assert.Equal(t, "email", detail.Field)
		assert.Equal(t, dto.ErrorCodeResourceAlreadyExists, detail.Code)
	})
}

func TestAuthController_Login(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := new(MockAuthenticator)
		svc.On("Login", mock.Anything, &dto.LoginRequest{Identifier: "alice01", Password: "Secret@123"}, "10.0.0.5").
			Return(&dto.AuthResponse{Token: dto.TokenResponse{AccessToken: "jwt", TokenType: "Bearer"}}, nil)

		w := doJSON(newAuthRouter(svc), http.MethodPost, "/auth/login", `{"username":"alice01","password":"Secret@123"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"accessToken":"jwt"`)
	})

	t.Run("locked out", func(t *testing.T) {
		svc := new(MockAuthenticator)
		svc.On("Login", mock.Anything, mock.Anything, "10.0.0.5").Return(nil, &apperrors.LockoutError{RetryAfterSeconds: 900})

		w := doJSON(newAuthRouter(svc), http.MethodPost, "/auth/login", `{"username":"alice01","password":"Secret@123"}`)

		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Equal(t, "900", w.Header().Get("Retry-After"))
	})

	t.Run("invalid credentials are generic", func(t *testing.T) {
		svc := new(MockAuthenticator)
		svc.On("Login", mock.Anything, mock.Anything, mock.Anything).Return(nil, apperrors.ErrInvalidCredentials)

		w := doJSON(newAuthRouter(svc), http.MethodPost, "/auth/login", `{"username":"nobody","password":"x"}`)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Invalid username or password", errorOf(t, w).Message)
	})
}

func TestAuthController_Logout(t *testing.T) {
	svc := new(MockAuthenticator)
	svc.On("Logout", mock.Anything, int64(42), "", "10.0.0.5").Return(nil).Once()
	svc.On("Logout", mock.Anything, int64(42), "refresh-1", "10.0.0.5").Return(nil).Once()
	r := newAuthRouter(svc)

	assert.Equal(t, http.StatusOK, doJSON(r, http.MethodPost, "/auth/logout", "").Code)
	assert.Equal(t, http.StatusOK, doJSON(r, http.MethodPost, "/auth/logout", `{"refreshToken":"refresh-1"}`).Code)
	svc.AssertExpectations(t)
}

func TestStudentController_UpdateProfile(t *testing.T) {
	svc := new(MockStudentService)
	c := NewStudentController(svc, zerolog.Nop())
	r := gin.New()
	r.PUT("/student/profile", asUser(42, models.RoleStudent), c.UpdateProfile)

	svc.On("UpdateProfile", mock.Anything, int64(42), mock.Anything).Return(&models.Student{
		ID: 17, UserID: 42, FirstName: "Alice", LastName: "Smith", Status: models.StatusPending,
		DateOfBirth: time.Date(2006, 4, 12, 0, 0, 0, 0, time.UTC),
	}, nil)

	w := doJSON(r, http.MethodPut, "/student/profile", `{
		"firstName":"Alice","lastName":"Smith","phone":"9876543210","address":"1 Road",
		"city":"Pune","state":"Maharashtra","zipCode":"411001"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"PENDING"`)
	assert.Contains(t, w.Body.String(), `"dateOfBirth":"2006-04-12"`)
}

func multipartUpload(t *testing.T, documentType, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	require.NoError(t, mw.WriteField("documentType", documentType))
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func TestDocumentController_Upload(t *testing.T) {
	svc := new(MockDocumentService)
	c := NewDocumentController(svc, zerolog.Nop())
	r := gin.New()
	r.POST("/student/documents", asUser(42, models.RoleStudent), c.Upload)

	svc.On("Upload", mock.Anything, int64(42), "AADHAR", mock.MatchedBy(func(fh *multipart.FileHeader) bool {
		return fh.Filename == "aadhar.pdf"
	})).Return(&dto.UploadDocumentResponse{
		Document: dto.DocumentResponse{ID: 9, DocumentType: models.DocumentAadhar},
		Complete: true,
		Status:   models.StatusPending,
	}, nil)

	body, contentType := multipartUpload(t, "AADHAR", "aadhar.pdf", []byte("%PDF-1.4\n%%EOF\n"))
	req := httptest.NewRequest(http.MethodPost, "/student/documents", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"complete":true`)
	svc.AssertExpectations(t)
}

func TestDocumentController_UploadWithoutFile(t *testing.T) {
	svc := new(MockDocumentService)
	c := NewDocumentController(svc, zerolog.Nop())
	r := gin.New()
	r.POST("/student/documents", asUser(42, models.RoleStudent), c.Upload)

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	require.NoError(t, mw.WriteField("documentType", "PHOTO"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/student/documents", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "file", errorOf(t, w).Field)
	svc.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDocumentController_Download(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stored.pdf")
	content := []byte("%PDF-1.4 marksheet")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	svc := new(MockDocumentService)
	c := NewDocumentController(svc, zerolog.Nop())
	r := gin.New()
	r.GET("/documents/:id/download", asUser(42, models.RoleStudent), c.Download)

	t.Run("owner gets the file", func(t *testing.T) {
		f, err := os.Open(path)
		require.NoError(t, err)
		svc.On("Download", mock.Anything, int64(9), appauth.Principal{UserID: 42, Role: models.RoleStudent}).
			Return(&models.Document{ID: 9, FileName: "marks 10.pdf", MimeType: "application/pdf", FileSize: int64(len(content))}, f, nil).Once()

		w := doJSON(r, http.MethodGet, "/documents/9/download", "")

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
		assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
		assert.Equal(t, content, w.Body.Bytes())
	})

	t.Run("someone else's document", func(t *testing.T) {
		svc.On("Download", mock.Anything, int64(10), mock.Anything).
			Return(nil, nil, apperrors.NewForbiddenError("You do not have access to this document")).Once()

		w := doJSON(r, http.MethodGet, "/documents/10/download", "")

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		w := doJSON(r, http.MethodGet, "/documents/abc/download", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func newAdminRouter(svc *MockAdminService) *gin.Engine {
	c := NewAdminController(svc, zerolog.Nop())
	r := gin.New()
	admin := r.Group("/admin", asUser(7, models.RoleAdmin))
	admin.POST("/students/:id/decision", c.Decide)
	admin.GET("/students", c.ListStudents)
	admin.GET("/reports", c.Report)
	admin.PUT("/users/:id/active", c.SetUserActive)
	return r
}

func TestAdminController_Decide(t *testing.T) {
	t.Run("reject with reason", func(t *testing.T) {
		svc := new(MockAdminService)
		reason := "Marksheet illegible"
		svc.On("Decide", mock.Anything, int64(17), mock.MatchedBy(func(req *dto.DecisionRequest) bool {
			return req.Decision == "REJECT" && req.Reason != nil && *req.Reason == reason
		}), int64(7)).Return(&models.Student{
			ID: 17, Status: models.StatusRejected, ApprovedBy: int64Ptr(7), RejectionReason: &reason,
		}, nil)

		w := doJSON(newAdminRouter(svc), http.MethodPost, "/admin/students/17/decision",
			`{"decision":"REJECT","reason":"Marksheet illegible"}`)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"REJECTED"`)
		assert.Contains(t, w.Body.String(), `"rejectionReason":"Marksheet illegible"`)
	})

	t.Run("reject without reason", func(t *testing.T) {
		svc := new(MockAdminService)
		svc.On("Decide", mock.Anything, int64(17), mock.Anything, int64(7)).Return(nil, apperrors.ErrRejectionReasonRequired)

		w := doJSON(newAdminRouter(svc), http.MethodPost, "/admin/students/17/decision", `{"decision":"REJECT"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Rejection reason is required", errorOf(t, w).Message)
	})

	t.Run("decision in any case", func(t *testing.T) {
		for _, decision := range []string{"approve", "Approve", "APPROVE"} {
			svc := new(MockAdminService)
			svc.On("Decide", mock.Anything, int64(17), mock.Anything, int64(7)).
				Return(&models.Student{ID: 17, Status: models.StatusApproved, ApprovedBy: int64Ptr(7)}, nil)

			w := doJSON(newAdminRouter(svc), http.MethodPost, "/admin/students/17/decision",
				`{"decision":"`+decision+`"}`)

			assert.Equal(t, http.StatusOK, w.Code, decision)
			svc.AssertNumberOfCalls(t, "Decide", 1)
		}
	})

	t.Run("unknown decision", func(t *testing.T) {
		svc := new(MockAdminService)
		w := doJSON(newAdminRouter(svc), http.MethodPost, "/admin/students/17/decision", `{"decision":"MAYBE"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Decision must be APPROVE or REJECT", errorOf(t, w).Message)
		svc.AssertNotCalled(t, "Decide", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func int64Ptr(v int64) *int64 { return &v }

func TestAdminController_ListStudentsBindsFilters(t *testing.T) {
	svc := new(MockAdminService)
	svc.On("ListStudents", mock.Anything, mock.MatchedBy(func(req *dto.StudentFilterRequest) bool {
		return req.CourseID != nil && *req.CourseID == 2 &&
			req.Status != nil && *req.Status == "PENDING" &&
			req.EnrollmentYear != nil && *req.EnrollmentYear == 2025 &&
			req.Page == 1 && req.PageSize == 20
	})).Return(&dto.StudentListResponse{Students: []dto.StudentResponse{}}, nil)

	w := doJSON(newAdminRouter(svc), http.MethodGet, "/admin/students?course=2&status=PENDING&year=2025", "")

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestAdminController_ReportCSV(t *testing.T) {
	svc := new(MockAdminService)
	generated := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
	svc.On("Report", mock.Anything, mock.Anything).Return(&dto.ReportResponse{
		GeneratedAt: generated,
		Count:       1,
		Rows: []dto.ReportRow{{
			StudentID: 17, Username: "alice01", FullName: "Alice Smith", Email: "alice@example.com",
			Phone: "9876543210", CourseName: "B.Tech CSE", EnrollmentYear: 2025,
			Status: models.StatusApproved, RegisteredAt: generated,
		}},
	}, nil)

	w := doJSON(newAdminRouter(svc), http.MethodGet, "/admin/reports?format=csv", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "admission-report-20250601-093000.csv")
	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "Student ID,Username"))
	assert.Contains(t, lines[1], "alice01,Alice Smith")
}

func TestAdminController_SetUserActiveRequiresFlag(t *testing.T) {
	svc := new(MockAdminService)
	w := doJSON(newAdminRouter(svc), http.MethodPut, "/admin/users/42/active", `{}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "SetUserActive", mock.Anything, mock.Anything, mock.Anything)
}

func TestCourseController(t *testing.T) {
	svc := new(MockCourseService)
	c := NewCourseController(svc, zerolog.Nop())
	r := gin.New()
	r.GET("/courses/:id", c.GetByID)
	r.POST("/admin/courses", c.Create)

	svc.On("GetByID", mock.Anything, int64(3)).Return(nil, apperrors.ErrCourseNotFound)
	svc.On("Create", mock.Anything, mock.Anything).Return(nil, apperrors.ErrCourseAlreadyExists)

	w := doJSON(r, http.MethodGet, "/courses/3", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Course not found", errorOf(t, w).Message)

	w = doJSON(r, http.MethodGet, "/courses/0", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodPost, "/admin/courses", `{"code":"BTCS","name":"B.Tech CSE","durationYears":4}`)
	assert.Equal(t, http.StatusConflict, w.Code)
}
