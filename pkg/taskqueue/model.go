package taskqueue

import (
	"encoding/json"
	"time"
)

// TaskType 任务类型
type TaskType string

const (
	// TaskExtractQuestions 题库抽取任务
	TaskExtractQuestions TaskType = "extract_questions"
)

// TaskStatus 任务状态
type TaskStatus string

const (
	// StatusPending 等待处理
	StatusPending TaskStatus = "pending"
	// StatusProcessing 处理中
	StatusProcessing TaskStatus = "processing"
	// StatusCompleted 已完成
	StatusCompleted TaskStatus = "completed"
	// StatusFailed 处理失败
	StatusFailed TaskStatus = "failed"
)

// IsFinal 是否为终止状态
func (s TaskStatus) IsFinal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Task 任务基础结构
type Task struct {
	ID          string          `json:"id"`           // 任务唯一标识符
	Type        TaskType        `json:"type"`         // 任务类型
	ImportID    string          `json:"import_id"`    // 关联的导入ID
	Status      TaskStatus      `json:"status"`       // 任务状态
	Payload     json.RawMessage `json:"payload"`      // 任务载荷
	Result      json.RawMessage `json:"result"`       // 任务结果
	Error       string          `json:"error"`        // 最近一次错误信息
	CreatedAt   time.Time       `json:"created_at"`   // 创建时间
	UpdatedAt   time.Time       `json:"updated_at"`   // 更新时间
	StartedAt   *time.Time      `json:"started_at"`   // 开始处理时间
	CompletedAt *time.Time      `json:"completed_at"` // 完成时间
	Attempts    int             `json:"attempts"`     // 已尝试次数
	MaxRetries  int             `json:"max_retries"`  // 最大重试次数
}

// ExtractPayload 抽取任务载荷
type ExtractPayload struct {
	ImportID  string `json:"import_id"`  // 导入ID
	SourceKey string `json:"source_key"` // 源文件存储键
	FileName  string `json:"file_name"`  // 原始文件名
	FileType  string `json:"file_type"`  // 文件类型
}

// ExtractResult 抽取任务结果
type ExtractResult struct {
	ImportID      string `json:"import_id"`      // 导入ID
	PageCount     int    `json:"page_count"`     // 页数
	QuestionCount int    `json:"question_count"` // 题目数
	ExportKey     string `json:"export_key"`     // 导出JSON存储键
	CacheHit      bool   `json:"cache_hit"`      // 是否命中抽取缓存
}
