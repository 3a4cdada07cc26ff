package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/admission/internal/app/controllers"
	"github.com/yigit/admission/internal/app/models"
	"github.com/yigit/admission/internal/middleware"
	"github.com/yigit/admission/internal/pkg/apperrors"
	"github.com/yigit/admission/internal/pkg/auth"
)

type activeUsers map[int64]*models.User

func (u activeUsers) GetByID(_ context.Context, id int64) (*models.User, error) {
	if user, ok := u[id]; ok {
		return user, nil
	}
	return nil, apperrors.ErrUserNotFound
}

type discardActivity struct{}

func (discardActivity) Log(context.Context, *models.ActivityLog) error { return nil }

func newTestRouter(t *testing.T, users activeUsers) (*gin.Engine, *auth.JWTService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	jwtService := auth.NewJWTService(auth.JWTConfig{SecretKey: "routes-test"})
	log := zerolog.Nop()
	h := Controllers{
		Auth:     controllers.NewAuthController(nil, log),
		Student:  controllers.NewStudentController(nil, log),
		Document: controllers.NewDocumentController(nil, log),
		Admin:    controllers.NewAdminController(nil, log),
		Course:   controllers.NewCourseController(nil, log),
	}

	r := gin.New()
	SetupRouter(r, h, middleware.NewAuthMiddleware(jwtService, users),
		middleware.NewIPRateLimiter(10, 10, time.Minute), discardActivity{}, log)
	return r, jwtService
}

func get(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSetupRouter_PublicEndpoints(t *testing.T) {
	r, _ := newTestRouter(t, activeUsers{})

	w := get(r, "/ping", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)

	w = get(r, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestSetupRouter_Protection(t *testing.T) {
	student := &models.User{ID: 42, Username: "alice01", RoleType: models.RoleStudent, IsActive: true}
	admin := &models.User{ID: 7, Username: "admin", RoleType: models.RoleAdmin, IsActive: true}
	r, jwtService := newTestRouter(t, activeUsers{42: student, 7: admin})

	token := func(u *models.User) string {
		pair, err := jwtService.GenerateTokenPair(u, false)
		require.NoError(t, err)
		return pair.AccessToken
	}

	assert.Equal(t, http.StatusUnauthorized, get(r, "/api/v1/admin/dashboard", "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/api/v1/student/dashboard", "").Code)
	assert.Equal(t, http.StatusForbidden, get(r, "/api/v1/admin/dashboard", token(student)).Code)
	assert.Equal(t, http.StatusForbidden, get(r, "/api/v1/student/dashboard", token(admin)).Code)
	assert.Equal(t, http.StatusNotFound, get(r, "/api/v1/unknown", "").Code)
}
