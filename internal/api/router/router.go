package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"nesttask/backend/config"
	"nesttask/backend/internal/api/handler"
	"nesttask/backend/internal/api/middleware"
	"nesttask/backend/internal/model"
	"nesttask/backend/pkg/jwt"
	"nesttask/backend/pkg/metrics"
)

// Deps 路由依赖；Blacklist / Limiter / Metrics 可为 nil
type Deps struct {
	JWT       *jwt.Manager
	Blacklist middleware.Blacklist
	Limiter   middleware.RateLimiter
	Metrics   *metrics.Metrics
	Gatherer  prometheus.Gatherer
	// Ping 健康检查，返回 nil 表示依赖可用
	Ping func() error
}

// 登录接口按 IP 限流
const (
	loginRateLimit  = 10
	loginRateWindow = time.Minute
)

// 角色组合
var (
	adminRoles         = []string{model.RoleAdmin, model.RoleSuperAdmin}
	courseManagerRoles = []string{model.RoleAdmin, model.RoleSuperAdmin, model.RoleSectionAdmin}
)

// Setup 初始化并返回 Gin 路由引擎
//
// 路由层 RoleAuth 是授权的实际边界；Service 层的 CheckCourseMutation 只做快速失败，
// super-admin 能通过路由但课程写操作会在 Service 层被拒绝。
func Setup(cfg *config.Config, h *handler.Handler, deps Deps, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger, deps.Metrics))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(&cfg.Server.CORS))
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		if deps.Ping != nil {
			if err := deps.Ping(); err != nil {
				logger.Warn("健康检查失败", zap.Error(err))
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ── 指标 ──
	if deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	importLimit := middleware.RateLimit(deps.Limiter, cfg.Import.RateLimit, cfg.Import.RateWindow)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		auth := v1.Group("/auth")
		{
			auth.POST("/login", middleware.RateLimit(deps.Limiter, loginRateLimit, loginRateWindow), h.Auth.Login)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(deps.JWT, deps.Blacklist))
		{
			// 认证模块（需要认证）
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.GetCurrentUser)
			authorized.PUT("/auth/password", h.Auth.ChangePassword)

			// 用户模块
			users := authorized.Group("/users")
			{
				users.GET("", middleware.RoleAuth(courseManagerRoles...), h.User.ListUsers)
				users.GET("/:id", middleware.RoleAuth(courseManagerRoles...), h.User.GetUser)
				users.PUT("/:id/role", middleware.RoleAuth(adminRoles...), h.User.AssignRole)
			}

			// 分区模块
			sections := authorized.Group("/sections")
			{
				sections.GET("", h.Section.ListSections)
				sections.GET("/:id", h.Section.GetSection)
				sections.POST("", middleware.RoleAuth(adminRoles...), h.Section.CreateSection)
				sections.PUT("/:id", middleware.RoleAuth(adminRoles...), h.Section.UpdateSection)
				sections.DELETE("/:id", middleware.RoleAuth(adminRoles...), h.Section.DeleteSection)
			}

			// 教师模块
			teachers := authorized.Group("/teachers")
			{
				teachers.GET("", h.Teacher.ListTeachers)
				teachers.GET("/:id", h.Teacher.GetTeacher)
				teachers.POST("", middleware.RoleAuth(courseManagerRoles...), h.Teacher.CreateTeacher)
				teachers.PUT("/:id", middleware.RoleAuth(courseManagerRoles...), h.Teacher.UpdateTeacher)
				teachers.DELETE("/:id", middleware.RoleAuth(adminRoles...), h.Teacher.DeleteTeacher)
			}

			// 课程模块
			courses := authorized.Group("/courses")
			{
				courses.GET("", h.Course.ListCourses)
				courses.GET("/export", middleware.RoleAuth(courseManagerRoles...), h.Export.ExportCourses)
				courses.POST("/import", middleware.RoleAuth(courseManagerRoles...), importLimit, h.Import.ImportCourses)
				courses.POST("/import/file", middleware.RoleAuth(courseManagerRoles...), importLimit, h.Import.ImportCourseFile)
				courses.GET("/:id", h.Course.GetCourse)
				courses.GET("/:id/calendar", h.Export.CourseCalendar)
				courses.POST("", middleware.RoleAuth(courseManagerRoles...), h.Course.CreateCourse)
				courses.PUT("/:id", middleware.RoleAuth(courseManagerRoles...), h.Course.UpdateCourse)
				courses.DELETE("/:id", middleware.RoleAuth(courseManagerRoles...), h.Course.DeleteCourse)
			}

			// 学习资料模块
			materials := authorized.Group("/materials")
			{
				materials.GET("", h.StudyMaterial.ListMaterials)
				materials.GET("/:id", h.StudyMaterial.GetMaterial)
				materials.POST("/upload", middleware.RoleAuth(courseManagerRoles...), h.StudyMaterial.UploadFile)
				materials.POST("", middleware.RoleAuth(courseManagerRoles...), h.StudyMaterial.CreateMaterial)
				materials.PUT("/:id", middleware.RoleAuth(courseManagerRoles...), h.StudyMaterial.UpdateMaterial)
				materials.DELETE("/:id", middleware.RoleAuth(courseManagerRoles...), h.StudyMaterial.DeleteMaterial)
			}
		}
	}

	return r
}
