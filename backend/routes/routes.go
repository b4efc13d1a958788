package routes

import (
	"courseplatform/backend/certificates"
	"courseplatform/backend/config"
	"courseplatform/backend/controllers"
	"courseplatform/backend/middleware"
	"courseplatform/backend/models"
	"courseplatform/backend/services"
	"courseplatform/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Dependencies are the collaborators shared by every controller.
type Dependencies struct {
	DB       *gorm.DB
	Cfg      *config.Config
	Log      *utils.Logger
	Renderer certificates.Renderer
	Store    certificates.Store
}

func SetupRoutes(app *fiber.App, deps Dependencies) {
	db, log := deps.DB, deps.Log

	catalog := services.NewCatalogService(db, log)
	management := services.NewManagementService(db, log)
	quizzes := services.NewQuizService(db, log)
	learning := services.NewLearningService(db, log)
	ratings := services.NewRatingService(db, log)
	analytics := services.NewAnalyticsService(db, log)
	admin := services.NewAdminService(db, log)
	auth := services.NewAuthService(db, log, deps.Cfg)
	certs := services.NewCertificateService(db, log, deps.Renderer, deps.Store)

	// Middleware
	authMiddleware := middleware.AuthMiddleware(db, deps.Cfg)
	staffOnly := middleware.RequireRoles(models.RoleTeacher, models.RoleAdmin)
	teacherOnly := middleware.RequireRoles(models.RoleTeacher)
	studentOnly := middleware.RequireRoles(models.RoleStudent)
	adminOnly := middleware.RequireRoles(models.RoleAdmin)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Auth routes
	authController := controllers.NewAuthController(auth)
	app.Post("/api/auth/register", authController.Register)
	app.Post("/api/auth/login", authController.Login)

	// User routes
	userController := controllers.NewUserController(auth, admin)
	app.Get("/api/auth/me", authMiddleware, userController.GetProfile)
	app.Put("/api/auth/me", authMiddleware, userController.UpdateProfile)
	app.Put("/api/auth/me/password", authMiddleware, userController.ChangePassword)

	// Catalog routes; static paths go before /:id
	overviewController := controllers.NewOverviewController(catalog)
	app.Get("/api/courses", overviewController.ListCourses)
	app.Get("/api/courses/search", overviewController.SearchCourses)
	app.Get("/api/courses/teacher/my", authMiddleware, teacherOnly, overviewController.TeacherCourses)
	app.Get("/api/courses/:id", overviewController.GetCourseDetails)
	app.Get("/api/courses/:id/stats", overviewController.GetCourseStats)
	app.Get("/api/courses/:id/reviews", overviewController.GetCourseReviews)

	// Course authoring routes
	coursesController := controllers.NewCoursesController(management)
	app.Post("/api/courses", authMiddleware, staffOnly, coursesController.CreateCourse)
	app.Put("/api/courses/:id", authMiddleware, staffOnly, coursesController.UpdateCourse)
	app.Delete("/api/courses/:id", authMiddleware, staffOnly, coursesController.DeleteCourse)
	app.Post("/api/courses/:id/publish", authMiddleware, staffOnly, coursesController.PublishCourse)
	app.Post("/api/courses/:id/unpublish", authMiddleware, staffOnly, coursesController.UnpublishCourse)
	app.Post("/api/courses/:id/modules", authMiddleware, staffOnly, coursesController.AddModule)
	app.Put("/api/courses/modules/:id", authMiddleware, staffOnly, coursesController.UpdateModule)
	app.Delete("/api/courses/modules/:id", authMiddleware, staffOnly, coursesController.DeleteModule)
	app.Post("/api/courses/modules/:id/lessons", authMiddleware, staffOnly, coursesController.AddLesson)
	app.Put("/api/courses/lessons/:id", authMiddleware, staffOnly, coursesController.UpdateLesson)
	app.Delete("/api/courses/lessons/:id", authMiddleware, staffOnly, coursesController.DeleteLesson)

	// Quiz authoring routes
	quizzesController := controllers.NewQuizzesController(quizzes)
	app.Post("/api/courses/lessons/:id/quiz", authMiddleware, staffOnly, quizzesController.CreateQuiz)
	app.Get("/api/courses/quizzes/:id", authMiddleware, staffOnly, quizzesController.GetQuiz)
	app.Put("/api/courses/quizzes/:id", authMiddleware, staffOnly, quizzesController.UpdateQuiz)
	app.Delete("/api/courses/quizzes/:id", authMiddleware, staffOnly, quizzesController.DeleteQuiz)

	// Student routes
	progressController := controllers.NewProgressController(learning, analytics)
	commentsController := controllers.NewCommentsController(ratings)
	certificateController := controllers.NewCertificateController(certs)
	students := app.Group("/api/students", authMiddleware, studentOnly)
	students.Post("/enroll/:course_id", progressController.Enroll)
	students.Get("/enrollments", progressController.Enrollments)
	students.Get("/enrollments/course/:course_id", progressController.EnrollmentByCourse)
	students.Post("/enrollments/:id/certificate", certificateController.GenerateCertificate)
	students.Get("/certificates/:id/download", certificateController.DownloadCertificate)
	students.Get("/lessons/:id", progressController.Lesson)
	students.Post("/lessons/:id/complete", progressController.CompleteLesson)
	students.Post("/lessons/:id/reset", progressController.ResetLesson)
	students.Post("/modules/:id/complete", progressController.CompleteModule)
	students.Post("/courses/:id/complete", progressController.CompleteCourse)
	students.Post("/courses/:id/rating", commentsController.RateCourse)
	students.Post("/courses/:id/teacher-rating", commentsController.RateTeacher)
	students.Get("/quizzes/:id", quizzesController.StudentQuiz)
	students.Post("/quizzes/:id/submit", quizzesController.SubmitQuiz)
	students.Get("/quizzes/:id/attempts", quizzesController.Attempts)
	students.Get("/progress", progressController.GetProgress)

	// Analytics routes
	analyticsController := controllers.NewAnalyticsController(analytics)
	stats := app.Group("/api/analytics", authMiddleware)
	stats.Get("/teacher/revenue", staffOnly, analyticsController.TeacherRevenue)
	stats.Get("/courses/popularity", staffOnly, analyticsController.CoursePopularity)
	stats.Get("/platform", adminOnly, analyticsController.PlatformStats)

	// Admin routes
	adminRoutes := app.Group("/api/admin", authMiddleware, adminOnly)
	adminRoutes.Get("/users", userController.ListUsers)
	adminRoutes.Delete("/users/:id", userController.DeleteUser)
	adminRoutes.Put("/users/:id/balance", userController.SetBalance)
	adminRoutes.Get("/courses", overviewController.AdminCourses)
}
