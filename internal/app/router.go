package app

import (
	"exam_bank_backend/docs"
	"exam_bank_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	api := router.Group("/api")
	{
		api.GET("/health", c.health.Check)

		// 크롤링 및 저장
		api.POST("/crawl", c.exam.CrawlAndSave)
		api.POST("/crawl/batch", c.exam.CrawlBatch)

		// 과목 조회
		api.GET("/subjects", c.subject.List)
		api.GET("/subjects/:id", c.subject.Detail)
		api.GET("/subjects/:id/exams", c.subject.Exams)

		// 시험 조회 및 채점
		api.GET("/exams/:id/questions", c.exam.GetExamQuestions)
		api.POST("/exams/:id/submit", c.exam.SubmitExam)
	}
}
