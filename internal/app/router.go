package app

import (
	"quiz_icc_backend/docs"
	"quiz_icc_backend/internal/config"
	"quiz_icc_backend/internal/middleware"
	"quiz_icc_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	router.GET("/", middleware.TrySessionMiddleware(cfg), c.auth.Index)
	router.GET("/login", c.auth.Login)
	router.GET("/authorize", c.auth.Authorize)
	router.GET("/login/dev", c.auth.DevLogin)
	router.GET("/logout", c.auth.Logout)
	router.GET("/api/health", c.health.HealthCheck)

	// 2. 需要会话的路由
	authed := router.Group("/")
	authed.Use(middleware.SessionMiddleware(cfg))
	{
		authed.GET("/dashboard", c.user.Dashboard)
		authed.GET("/profile", c.user.Profile)
		authed.GET("/leaderboard", c.user.Leaderboard)
		authed.GET("/history", c.user.History)
		authed.GET("/history/:id", c.user.HistoryDetail)
		authed.POST("/user/avatar/upload", c.user.UploadAvatar)

		authed.GET("/quiz/select", c.quiz.Select)
		authed.POST("/api/quiz/start", c.quiz.Start)
		authed.GET("/quiz/attempt/:id", c.quiz.Question)
		authed.POST("/quiz/attempt/:id/previous", c.quiz.Previous)
		authed.POST("/quiz/attempt/:id/answer", c.quiz.Answer)
		authed.GET("/quiz/attempt/:id/complete", c.quiz.Complete)
	}
}
