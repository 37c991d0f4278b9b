package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/schoolportal/internal/app/controllers"
	"github.com/yigit/schoolportal/internal/app/models"
	"github.com/yigit/schoolportal/internal/middleware"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	lectureController *controllers.LectureSummaryController,
	authMiddleware *middleware.AuthMiddleware,
	loginLimiter middleware.Limiter,
) {
	api := router.Group("/api")

	// --- Auth routes ---
	auth := api.Group("/auth")
	{
		login := []gin.HandlerFunc{authController.Login}
		if loginLimiter != nil {
			login = append([]gin.HandlerFunc{middleware.RateLimit(loginLimiter)}, login...)
		}
		auth.POST("/login", login...)
		auth.GET("/me", authMiddleware.JWTAuth(), authController.Me)
	}

	// --- Lecture summary routes ---
	lectures := api.Group("/lecture-summaries")
	lectures.Use(authMiddleware.JWTAuth())
	{
		// Any signed-in role may read published summaries.
		lectures.GET("/student", lectureController.ListStudent)

		teacherOnly := lectures.Group("")
		teacherOnly.Use(authMiddleware.RoleRequired(models.RoleTeacher))
		{
			teacherOnly.POST("/upload", lectureController.Upload)
			teacherOnly.GET("/teacher", lectureController.ListTeacher)
			teacherOnly.PATCH("/:id/publish", lectureController.Publish)
			teacherOnly.PATCH("/:id", lectureController.Update)
			teacherOnly.DELETE("/:id", lectureController.Delete)
		}
	}
}
