package handler

import (
	"net/http"

	"github.com/fyerfyer/question-bank/api/middleware"
	"github.com/fyerfyer/question-bank/api/model"
	"github.com/fyerfyer/question-bank/internal/extractor"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ExtractHandler 直接对请求中的文本行做题目抽取
type ExtractHandler struct {
	extractor *extractor.Extractor // 题目抽取器
	logger    *logrus.Logger       // 日志记录器
}

// NewExtractHandler 创建抽取处理器
func NewExtractHandler(e *extractor.Extractor) *ExtractHandler {
	logger := middleware.GetLogger()
	if e == nil {
		e = extractor.New(extractor.WithLogger(logger))
	}
	return &ExtractHandler{
		extractor: e,
		logger:    logger,
	}
}

// Extract 抽取题目
// POST /api/extract
func (h *ExtractHandler) Extract(c *gin.Context) {
	var req model.ExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Warn("Invalid extract request")
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(
			http.StatusBadRequest,
			"无效的请求参数",
		))
		return
	}

	records := h.extractor.Extract(req.Pages)

	h.logger.WithFields(logrus.Fields{
		"pages":     len(req.Pages),
		"questions": len(records),
	}).Info("Extracted questions from request")

	c.JSON(http.StatusOK, model.NewSuccessResponse(model.NewExtractResponse(records)))
}
