package handler

import (
	"net/http"

	"github.com/fyerfyer/question-bank/api/middleware"
	"github.com/fyerfyer/question-bank/api/model"
	"github.com/fyerfyer/question-bank/internal/repository"
	"github.com/fyerfyer/question-bank/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// QuestionHandler 处理跨导入的题目查询
type QuestionHandler struct {
	importService *services.ImportService // 导入服务
	logger        *logrus.Logger          // 日志记录器
}

// NewQuestionHandler 创建题目查询处理器
func NewQuestionHandler(importService *services.ImportService) *QuestionHandler {
	return &QuestionHandler{
		importService: importService,
		logger:        middleware.GetLogger(),
	}
}

// SearchQuestions 按题型、导入和关键字分页查询题目
// GET /api/questions
func (h *QuestionHandler) SearchQuestions(c *gin.Context) {
	var req model.QuestionSearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.logger.WithError(err).Warn("Invalid question search request")
		middleware.HandleError(c, middleware.NewValidationError("无效的查询参数", err.Error()))
		return
	}

	rows, total, err := h.importService.SearchQuestions(c.Request.Context(), req.Offset(), req.GetPageSize(), repository.QuestionFilter{
		ImportID: req.ImportID,
		Type:     req.Type,
		Keyword:  req.Keyword,
	})
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	questions := make([]model.QuestionInfo, 0, len(rows))
	for _, row := range rows {
		rec, err := row.ToRecord()
		if err != nil {
			middleware.HandleError(c, err)
			return
		}
		questions = append(questions, model.QuestionInfo{
			ImportID: row.ImportID,
			Position: row.Position,
			Record:   rec,
		})
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(model.QuestionListResponse{
		PaginationResponse: model.PaginationResponse{
			Total:    total,
			Page:     req.GetPage(),
			PageSize: req.GetPageSize(),
		},
		Questions: questions,
	}))
}

// GetStats 统计全部导入的题型分布
// GET /api/questions/stats
func (h *QuestionHandler) GetStats(c *gin.Context) {
	stats, err := h.importService.Stats(c.Request.Context(), "")
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.NewSuccessResponse(model.NewStatsResponse("", stats)))
}
