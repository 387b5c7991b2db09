package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/fyerfyer/question-bank/api/middleware"
	"github.com/fyerfyer/question-bank/api/model"
	"github.com/fyerfyer/question-bank/internal/document"
	"github.com/fyerfyer/question-bank/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ImportHandler 处理题库导入相关的API请求
type ImportHandler struct {
	importService *services.ImportService // 导入服务
	maxUploadSize int64                   // 上传文件大小上限，0表示不限制
	logger        *logrus.Logger          // 日志记录器
}

// ImportHandlerOption 导入处理器配置选项
type ImportHandlerOption func(*ImportHandler)

// WithMaxUploadSize 设置上传文件大小上限（字节）
func WithMaxUploadSize(size int64) ImportHandlerOption {
	return func(h *ImportHandler) {
		h.maxUploadSize = size
	}
}

// NewImportHandler 创建新的导入处理器
func NewImportHandler(importService *services.ImportService, opts ...ImportHandlerOption) *ImportHandler {
	h := &ImportHandler{
		importService: importService,
		logger:        middleware.GetLogger(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// UploadImport 上传题库文件并创建导入
// POST /api/imports
func (h *ImportHandler) UploadImport(c *gin.Context) {
	var req model.ImportUploadRequest
	if err := c.ShouldBind(&req); err != nil {
		h.logger.WithError(err).Warn("Invalid import upload request")
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(
			http.StatusBadRequest,
			"未提供文件",
		))
		return
	}

	filename := req.File.Filename
	if !document.IsSupported(filename) {
		c.JSON(http.StatusUnsupportedMediaType, model.NewErrorResponse(
			http.StatusUnsupportedMediaType,
			"不支持的文件类型，仅支持 .pdf, .md, .markdown, .txt",
		))
		return
	}

	if h.maxUploadSize > 0 && req.File.Size > h.maxUploadSize {
		c.JSON(http.StatusRequestEntityTooLarge, model.NewErrorResponse(
			http.StatusRequestEntityTooLarge,
			fmt.Sprintf("文件大小超过上限 %d 字节", h.maxUploadSize),
		))
		return
	}

	file, err := req.File.Open()
	if err != nil {
		h.logger.WithError(err).WithField("filename", filename).Error("Failed to open uploaded file")
		middleware.HandleError(c, middleware.NewInternalError("无法打开上传的文件", err.Error()))
		return
	}
	defer file.Close()

	job, err := h.importService.Submit(c.Request.Context(), file, filename)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		middleware.FieldImportID: job.ID,
		"filename":               job.FileName,
		"status":                 job.Status,
	}).Info("Import accepted")

	status := http.StatusOK
	if h.importService.AsyncEnabled() {
		status = http.StatusAccepted
	}
	c.JSON(status, model.NewSuccessResponse(model.NewImportInfo(job)))
}

// GetImport 获取导入信息
// GET /api/imports/:id
func (h *ImportHandler) GetImport(c *gin.Context) {
	var uri model.ImportURIRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		middleware.HandleError(c, middleware.NewValidationError("导入ID不能为空"))
		return
	}

	job, err := h.importService.GetImport(c.Request.Context(), uri.ID)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(model.NewImportInfo(job)))
}

// ListImports 分页列出导入
// GET /api/imports
func (h *ImportHandler) ListImports(c *gin.Context) {
	var req model.ImportListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleError(c, middleware.NewValidationError("无效的查询参数", err.Error()))
		return
	}

	filters := make(map[string]interface{})
	if req.Status != "" {
		filters["status"] = req.Status
	}
	if req.FileType != "" {
		filters["file_type"] = req.FileType
	}
	if req.FileName != "" {
		filters["file_name"] = req.FileName
	}

	jobs, total, err := h.importService.ListImports(c.Request.Context(), req.Offset(), req.GetPageSize(), filters)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	imports := make([]model.ImportInfo, 0, len(jobs))
	for _, job := range jobs {
		imports = append(imports, model.NewImportInfo(job))
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(model.ImportListResponse{
		PaginationResponse: model.PaginationResponse{
			Total:    total,
			Page:     req.GetPage(),
			PageSize: req.GetPageSize(),
		},
		Imports: imports,
	}))
}

// DeleteImport 删除导入及其题目
// DELETE /api/imports/:id
func (h *ImportHandler) DeleteImport(c *gin.Context) {
	var uri model.ImportURIRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		middleware.HandleError(c, middleware.NewValidationError("导入ID不能为空"))
		return
	}

	if err := h.importService.DeleteImport(c.Request.Context(), uri.ID); err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(model.ImportDeleteResponse{
		Success:  true,
		ImportID: uri.ID,
	}))
}

// ListImportQuestions 按文档顺序返回导入的全部题目
// GET /api/imports/:id/questions
func (h *ImportHandler) ListImportQuestions(c *gin.Context) {
	var uri model.ImportURIRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		middleware.HandleError(c, middleware.NewValidationError("导入ID不能为空"))
		return
	}

	records, err := h.importService.ListQuestions(c.Request.Context(), uri.ID)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(model.ImportQuestionsResponse{
		ImportID:  uri.ID,
		Count:     len(records),
		Questions: records,
	}))
}

// GetImportStats 按题型统计导入的题目
// GET /api/imports/:id/stats
func (h *ImportHandler) GetImportStats(c *gin.Context) {
	var uri model.ImportURIRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		middleware.HandleError(c, middleware.NewValidationError("导入ID不能为空"))
		return
	}

	stats, err := h.importService.Stats(c.Request.Context(), uri.ID)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(model.NewStatsResponse(uri.ID, stats)))
}

// ExportImport 下载导入的JSON题库
// GET /api/imports/:id/export
func (h *ImportHandler) ExportImport(c *gin.Context) {
	var uri model.ImportURIRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		middleware.HandleError(c, middleware.NewValidationError("导入ID不能为空"))
		return
	}

	job, err := h.importService.GetImport(c.Request.Context(), uri.ID)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := h.importService.Export(c.Request.Context(), uri.ID, &buf); err != nil {
		middleware.HandleError(c, err)
		return
	}

	name := strings.TrimSuffix(job.FileName, filepath.Ext(job.FileName)) + ".json"
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, "application/json; charset=utf-8", buf.Bytes())
}
