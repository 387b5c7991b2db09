package model

import (
	"time"

	"github.com/fyerfyer/question-bank/internal/extractor"
	"github.com/fyerfyer/question-bank/internal/models"
)

// Response 通用响应结构
type Response struct {
	Code    int         `json:"code"`               // 响应状态码，0表示成功
	Message string      `json:"message"`            // 响应消息
	Data    interface{} `json:"data,omitempty"`     // 响应数据，可能为空
	TraceID string      `json:"trace_id,omitempty"` // 调用链追踪ID
}

// NewSuccessResponse 创建成功响应
func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Code:    0,
		Message: "success",
		Data:    data,
	}
}

// NewErrorResponse 创建错误响应
func NewErrorResponse(code int, message string) *Response {
	return &Response{
		Code:    code,
		Message: message,
	}
}

// ExtractResponse 直接抽取响应
type ExtractResponse struct {
	Count     int                `json:"count"`     // 题目数量
	Questions []extractor.Record `json:"questions"` // 题目记录
}

// NewExtractResponse 创建抽取响应
func NewExtractResponse(records []extractor.Record) *ExtractResponse {
	if records == nil {
		records = []extractor.Record{}
	}
	return &ExtractResponse{Count: len(records), Questions: records}
}

// ImportInfo 导入信息
type ImportInfo struct {
	ImportID      string     `json:"import_id"`              // 导入ID
	FileName      string     `json:"filename"`               // 文件名
	FileType      string     `json:"file_type"`              // 文件类型
	FileSize      int64      `json:"file_size"`              // 文件大小
	Status        string     `json:"status"`                 // 导入状态：uploaded、processing、completed、failed
	Error         string     `json:"error,omitempty"`        // 错误信息（如果有）
	PageCount     int        `json:"page_count"`             // 页数
	QuestionCount int        `json:"question_count"`         // 题目数量
	TaskID        string     `json:"task_id,omitempty"`      // 异步任务ID
	CreatedAt     time.Time  `json:"created_at"`             // 创建时间
	UpdatedAt     time.Time  `json:"updated_at"`             // 更新时间
	ProcessedAt   *time.Time `json:"processed_at,omitempty"` // 处理完成时间
}

// NewImportInfo 转换导入记录
func NewImportInfo(job *models.ImportJob) ImportInfo {
	return ImportInfo{
		ImportID:      job.ID,
		FileName:      job.FileName,
		FileType:      job.FileType,
		FileSize:      job.FileSize,
		Status:        string(job.Status),
		Error:         job.Error,
		PageCount:     job.PageCount,
		QuestionCount: job.QuestionCount,
		TaskID:        job.TaskID,
		CreatedAt:     job.CreatedAt,
		UpdatedAt:     job.UpdatedAt,
		ProcessedAt:   job.ProcessedAt,
	}
}

// ImportListResponse 导入列表响应
type ImportListResponse struct {
	PaginationResponse
	Imports []ImportInfo `json:"imports"` // 导入列表
}

// ImportDeleteResponse 导入删除响应
type ImportDeleteResponse struct {
	Success  bool   `json:"success"`   // 是否成功
	ImportID string `json:"import_id"` // 导入ID
}

// ImportQuestionsResponse 单个导入的题目
type ImportQuestionsResponse struct {
	ImportID  string             `json:"import_id"` // 导入ID
	Count     int                `json:"count"`     // 题目数量
	Questions []extractor.Record `json:"questions"` // 按文档顺序排列的题目
}

// QuestionInfo 跨导入查询时的题目信息
type QuestionInfo struct {
	ImportID string `json:"import_id"` // 所属导入
	Position int    `json:"position"`  // 导入内序号
	extractor.Record
}

// QuestionListResponse 题目查询响应
type QuestionListResponse struct {
	PaginationResponse
	Questions []QuestionInfo `json:"questions"` // 题目列表
}

// StatsResponse 题型统计响应
type StatsResponse struct {
	ImportID string                           `json:"import_id"` // 导入ID
	Total    int64                            `json:"total"`     // 题目总数
	ByType   map[extractor.QuestionType]int64 `json:"by_type"`   // 各题型数量
}

// NewStatsResponse 创建统计响应
func NewStatsResponse(importID string, stats map[extractor.QuestionType]int64) *StatsResponse {
	var total int64
	for _, n := range stats {
		total += n
	}
	return &StatsResponse{ImportID: importID, Total: total, ByType: stats}
}

// PaginationResponse 分页响应信息
type PaginationResponse struct {
	Total    int64 `json:"total"`     // 总记录数
	Page     int   `json:"page"`      // 当前页码
	PageSize int   `json:"page_size"` // 每页大小
}
