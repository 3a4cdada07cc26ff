package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/yigit/admission/internal/app/controllers"
	"github.com/yigit/admission/internal/app/models"
	"github.com/yigit/admission/internal/app/models/dto"
	"github.com/yigit/admission/internal/middleware"
)

// Controllers groups the HTTP handlers mounted by SetupRouter
type Controllers struct {
	Auth     *controllers.AuthController
	Student  *controllers.StudentController
	Document *controllers.DocumentController
	Admin    *controllers.AdminController
	Course   *controllers.CourseController
}

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	h Controllers,
	authMiddleware *middleware.AuthMiddleware,
	limiter *middleware.IPRateLimiter,
	activity middleware.ActivityWriter,
	logger zerolog.Logger,
) {
	v1 := router.Group("/api/v1")

	// --- Public routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/register", limiter.Middleware(), h.Auth.Register)
		auth.POST("/login", limiter.Middleware(), h.Auth.Login)
		auth.POST("/refresh", h.Auth.RefreshToken)
	}

	courses := v1.Group("/courses")
	{
		courses.GET("", h.Course.ListActive)
		courses.GET("/:id", h.Course.GetByID)
	}

	// --- Authenticated routes ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth(), authMiddleware.ActiveAccountRequired())
	{
		authenticated.POST("/auth/logout", h.Auth.Logout)

		// Owner or admin, checked by the document service
		authenticated.GET("/documents/:id/download", h.Document.Download)

		student := authenticated.Group("/student")
		student.Use(authMiddleware.RoleRequired(models.RoleStudent))
		{
			student.GET("/dashboard", h.Student.Dashboard)
			student.GET("/profile", h.Student.GetProfile)
			student.PUT("/profile", h.Student.UpdateProfile)
			student.GET("/documents", h.Document.ListOwn)
			student.POST("/documents", limiter.Middleware(), h.Document.Upload)
			student.POST("/upload-document", limiter.Middleware(), h.Document.Upload)
		}

		admin := authenticated.Group("/admin")
		admin.Use(authMiddleware.RoleRequired(models.RoleAdmin), middleware.ActivityLogger(activity, logger))
		{
			admin.GET("/dashboard", h.Admin.Dashboard)
			admin.GET("/activity", h.Admin.RecentActivity)
			admin.GET("/reports", h.Admin.Report)

			admin.GET("/students", h.Admin.ListStudents)
			admin.GET("/students/:id", h.Admin.GetStudent)
			admin.POST("/students/:id/decision", h.Admin.Decide)
			admin.POST("/students/:id/reopen", h.Admin.Reopen)
			admin.DELETE("/students/:id", h.Admin.DeleteStudent)

			admin.PUT("/users/:id/active", h.Admin.SetUserActive)

			admin.GET("/documents", h.Document.List)
			admin.PUT("/documents/:id/verify", h.Document.Verify)
			admin.DELETE("/documents/:id", h.Document.Delete)

			admin.POST("/courses", h.Course.Create)
			admin.PUT("/courses/:id", h.Course.Update)
			admin.DELETE("/courses/:id", h.Course.Deactivate)
		}
	}

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{"status": "ok"}))
	})
}
