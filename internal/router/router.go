// Package router mounts every HTTP route of the service on a gin engine.
package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/fefu-lab-api/internal/handler"
	"github.com/noah-isme/fefu-lab-api/internal/middleware"
	"github.com/noah-isme/fefu-lab-api/internal/models"
	"github.com/noah-isme/fefu-lab-api/internal/service"
	"github.com/noah-isme/fefu-lab-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/fefu-lab-api/pkg/middleware/cors"
	hostsmiddleware "github.com/noah-isme/fefu-lab-api/pkg/middleware/hosts"
	reqidmiddleware "github.com/noah-isme/fefu-lab-api/pkg/middleware/requestid"
)

// Handlers bundles the HTTP handlers served by the engine.
type Handlers struct {
	Auth        *handler.AuthHandler
	Home        *handler.HomeHandler
	Students    *handler.StudentHandler
	Courses     *handler.CourseHandler
	Feedback    *handler.FeedbackHandler
	Profile     *handler.ProfileHandler
	Dashboard   *handler.DashboardHandler
	Instructors *handler.InstructorHandler
	Media       *handler.MediaHandler
	Ops         *handler.MetricsHandler
}

// Options carries the cross-cutting pieces of the middleware chain.
type Options struct {
	Logger         *zap.Logger
	Metrics        *service.MetricsService
	Sessions       middleware.SessionResolver
	Audit          middleware.AuditWriter
	CookieName     string
	AllowedHosts   []string
	TrustedOrigins []string
	EnableDocs     bool
}

// New builds the engine with the full middleware chain and route table.
func New(h Handlers, opts Options) *gin.Engine {
	logr := opts.Logger
	if logr == nil {
		logr = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(hostsmiddleware.New(opts.AllowedHosts))
	r.Use(corsmiddleware.New(opts.TrustedOrigins))
	if opts.Metrics != nil {
		r.Use(middleware.Metrics(opts.Metrics))
	}
	r.Use(middleware.WithResponseMeta())
	r.Use(middleware.Session(opts.Sessions, opts.CookieName, logr))

	r.GET("/health", h.Ops.Health)
	r.GET("/ready", h.Ops.Ready)
	r.GET("/metrics", h.Ops.Prometheus)
	if opts.EnableDocs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	loginRequired := middleware.RequireLogin()
	studentOnly := middleware.RequireRoles(models.RoleStudent)
	teacherOrAdmin := middleware.RequireRoles(models.RoleTeacher, models.RoleAdmin)
	adminOnly := middleware.RequireRoles(models.RoleAdmin)

	r.GET("/", h.Home.Home)
	r.GET("/about/", h.Home.About)

	r.GET("/students/", h.Students.List)
	r.GET("/student/:id/", h.Students.Detail)

	r.GET("/courses/", h.Courses.List)
	r.GET("/course/:slug/", h.Courses.Detail)
	r.GET("/course/:slug/enroll/", loginRequired, h.Courses.EnrollForm)
	r.POST("/course/:slug/enroll/", loginRequired, h.Courses.Enroll)

	r.GET("/feedback/", h.Feedback.Form)
	r.POST("/feedback/", h.Feedback.Submit)

	r.GET("/register/", h.Auth.RegisterForm)
	r.POST("/register/", h.Auth.Register)
	r.GET("/login/", h.Auth.LoginForm)
	r.POST("/login/", h.Auth.Login)
	r.GET("/logout/", h.Auth.Logout)
	r.POST("/logout/", h.Auth.Logout)

	profile := r.Group("/profile", loginRequired)
	{
		profile.GET("/", h.Profile.Show)
		profile.POST("/", h.Profile.Update)
	}

	dashboard := r.Group("/dashboard")
	{
		dashboard.GET("/student/", studentOnly, h.Dashboard.Student)
		dashboard.GET("/teacher/", teacherOrAdmin, h.Dashboard.Teacher)

		admin := dashboard.Group("/admin", adminOnly)
		admin.GET("/", h.Dashboard.Admin)
		admin.GET("/courses/:slug/roster.csv", h.Dashboard.RosterCSV)
		admin.GET("/courses/:slug/roster.pdf", h.Dashboard.RosterPDF)
	}

	manage := r.Group("/manage", adminOnly)
	{
		audited := func(action, resource string) gin.HandlerFunc {
			return middleware.Audit(opts.Audit, action, resource, logr)
		}

		manage.GET("/instructors/", h.Instructors.List)
		manage.POST("/instructors/", audited(models.AuditActionManageCreate, "instructor"), h.Instructors.Create)
		manage.PUT("/instructors/:id/", audited(models.AuditActionManageUpdate, "instructor"), h.Instructors.Update)
		manage.DELETE("/instructors/:id/", audited(models.AuditActionManageDelete, "instructor"), h.Instructors.Delete)

		manage.POST("/courses/", audited(models.AuditActionManageCreate, "course"), h.Courses.Create)
		manage.PUT("/courses/:slug/", audited(models.AuditActionManageUpdate, "course"), h.Courses.Update)
		manage.DELETE("/courses/:slug/", audited(models.AuditActionManageDelete, "course"), h.Courses.Delete)

		manage.DELETE("/students/:id/", audited(models.AuditActionManageDelete, "student"), h.Students.Delete)
	}

	enrollments := r.Group("/enrollments")
	{
		enrollments.POST("/:id/cancel/", loginRequired, h.Courses.CancelEnrollment)
		enrollments.POST("/:id/complete/", teacherOrAdmin, h.Courses.CompleteEnrollment)
	}

	r.GET("/media/avatars/:token", h.Media.Avatar)

	return r
}
