package api

import (
	"net/http"

	"github.com/fyerfyer/question-bank/api/handler"
	"github.com/fyerfyer/question-bank/api/middleware"
	"github.com/gin-gonic/gin"
)

// Handlers 路由依赖的处理器
// Task为空时不注册任务查询接口
type Handlers struct {
	Extract  *handler.ExtractHandler
	Import   *handler.ImportHandler
	Question *handler.QuestionHandler
	Task     *handler.TaskHandler
}

// SetupRouter 设置API路由
// 配置所有的API端点并应用中间件
func SetupRouter(h Handlers) *gin.Engine {
	router := gin.New()

	// 应用全局中间件
	router.Use(middleware.SetTraceID())
	router.Use(middleware.Logger())
	router.Use(middleware.ErrorHandler())

	// 在调试模式下记录请求体和响应体
	if gin.Mode() == gin.DebugMode {
		router.Use(middleware.RequestBodyLog())
		router.Use(middleware.ResponseLogger())
	}

	router.Use(Cors())

	api := router.Group("/api")
	{
		// 直接抽取 - POST /api/extract
		api.POST("/extract", h.Extract.Extract)

		importGroup := api.Group("/imports")
		{
			// 上传题库 - POST /api/imports
			importGroup.POST("", h.Import.UploadImport)

			// 导入列表 - GET /api/imports
			importGroup.GET("", h.Import.ListImports)

			// 导入详情 - GET /api/imports/:id
			importGroup.GET("/:id", h.Import.GetImport)

			// 删除导入 - DELETE /api/imports/:id
			importGroup.DELETE("/:id", h.Import.DeleteImport)

			// 导入的题目 - GET /api/imports/:id/questions
			importGroup.GET("/:id/questions", h.Import.ListImportQuestions)

			// 题型统计 - GET /api/imports/:id/stats
			importGroup.GET("/:id/stats", h.Import.GetImportStats)

			// 导出JSON - GET /api/imports/:id/export
			importGroup.GET("/:id/export", h.Import.ExportImport)

			if h.Task != nil {
				// 导入的任务 - GET /api/imports/:id/tasks
				importGroup.GET("/:id/tasks", h.Task.GetImportTasks)
			}
		}

		questionGroup := api.Group("/questions")
		{
			// 题目查询 - GET /api/questions
			questionGroup.GET("", h.Question.SearchQuestions)

			// 全部题型统计 - GET /api/questions/stats
			questionGroup.GET("/stats", h.Question.GetStats)
		}

		if h.Task != nil {
			// 任务状态 - GET /api/tasks/:id
			api.GET("/tasks/:id", h.Task.GetTaskStatus)
		}

		// 健康检查API
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status": "ok",
			})
		})
	}

	return router
}

// Cors 跨域资源共享中间件
func Cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Trace-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, DELETE")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
