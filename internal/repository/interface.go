package repository

import "github.com/fyerfyer/question-bank/internal/models"

// ImportRepository 导入任务仓储接口
// 负责导入任务元数据的存储和检索
type ImportRepository interface {
	// Create 创建导入记录
	Create(job *models.ImportJob) error

	// Update 更新导入记录
	Update(job *models.ImportJob) error

	// GetByID 根据ID获取导入记录
	GetByID(id string) (*models.ImportJob, error)

	// List 列出导入记录，支持分页和筛选
	// 支持的筛选键：status, file_type, file_name
	List(offset, limit int, filters map[string]interface{}) ([]*models.ImportJob, int64, error)

	// UpdateStatus 更新导入状态
	UpdateStatus(id string, status models.ImportStatus, errorMsg string) error

	// SetTaskID 记录处理该导入的任务ID
	SetTaskID(id, taskID string) error

	// Delete 删除导入记录及其题目
	Delete(id string) error
}

// QuestionFilter 题目查询条件
type QuestionFilter struct {
	ImportID string // 导入ID
	Type     string // 题型
	Keyword  string // 题干关键字
}

// QuestionRepository 题目仓储接口
type QuestionRepository interface {
	// ReplaceForImport 用新的抽取结果替换导入下的全部题目
	ReplaceForImport(importID string, questions []*models.QuestionRecord) error

	// ListByImport 按文档顺序返回导入下的题目
	ListByImport(importID string) ([]*models.QuestionRecord, error)

	// Search 分页查询题目
	Search(offset, limit int, filter QuestionFilter) ([]*models.QuestionRecord, int64, error)

	// CountByType 按题型统计数量，importID为空时统计全部
	CountByType(importID string) (map[string]int64, error)

	// DeleteByImport 删除导入下的全部题目
	DeleteByImport(importID string) error
}
