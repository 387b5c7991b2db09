package model

import "mime/multipart"

// PaginationRequest 分页请求参数
type PaginationRequest struct {
	Page     int `form:"page" json:"page" binding:"omitempty,min=1"`           // 当前页码，从1开始
	PageSize int `form:"page_size" json:"page_size" binding:"omitempty,min=1"` // 每页记录数
}

// GetPage 获取页码，默认为1
func (p *PaginationRequest) GetPage() int {
	if p.Page <= 0 {
		return 1
	}
	return p.Page
}

// GetPageSize 获取每页记录数，默认为10，最大为100
func (p *PaginationRequest) GetPageSize() int {
	if p.PageSize <= 0 {
		return 10
	}
	if p.PageSize > 100 {
		return 100
	}
	return p.PageSize
}

// Offset 当前页的起始偏移
func (p *PaginationRequest) Offset() int {
	return (p.GetPage() - 1) * p.GetPageSize()
}

// ExtractRequest 直接抽取请求，按页给出原始文本行
type ExtractRequest struct {
	Pages [][]string `json:"pages" binding:"required"`
}

// ImportUploadRequest 题库文件上传请求
type ImportUploadRequest struct {
	File *multipart.FileHeader `form:"file" binding:"required"` // 题库文件
}

// ImportURIRequest 路径中的导入ID
type ImportURIRequest struct {
	ID string `uri:"id" binding:"required"` // 导入ID
}

// ImportListRequest 导入列表请求
type ImportListRequest struct {
	PaginationRequest
	Status   string `form:"status" json:"status" binding:"omitempty,oneof=uploaded processing completed failed"` // 导入状态
	FileType string `form:"file_type" json:"file_type" binding:"omitempty,oneof=pdf markdown plaintext"`         // 文件类型
	FileName string `form:"file_name" json:"file_name" binding:"omitempty"`                                      // 文件名模糊匹配
}

// QuestionSearchRequest 题目查询请求
type QuestionSearchRequest struct {
	PaginationRequest
	Type     string `form:"type" json:"type" binding:"omitempty,question_type"` // 题型
	ImportID string `form:"import_id" json:"import_id" binding:"omitempty"`     // 导入ID
	Keyword  string `form:"keyword" json:"keyword" binding:"omitempty"`         // 题干关键字
}
