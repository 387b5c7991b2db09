package models

import (
	"time"

	"gorm.io/gorm"
)

// ImportStatus 导入任务状态类型
type ImportStatus string

const (
	// ImportStatusUploaded 源文件已保存，等待抽取
	ImportStatusUploaded ImportStatus = "uploaded"
	// ImportStatusProcessing 抽取中
	ImportStatusProcessing ImportStatus = "processing"
	// ImportStatusCompleted 抽取完成
	ImportStatusCompleted ImportStatus = "completed"
	// ImportStatusFailed 抽取失败
	ImportStatusFailed ImportStatus = "failed"
)

// IsValid 是否为已知状态
func (s ImportStatus) IsValid() bool {
	switch s {
	case ImportStatusUploaded, ImportStatusProcessing, ImportStatusCompleted, ImportStatusFailed:
		return true
	}
	return false
}

// IsFinal 是否为终止状态
func (s ImportStatus) IsFinal() bool {
	return s == ImportStatusCompleted || s == ImportStatusFailed
}

// ImportJob 题库导入任务
// 一次上传对应一条记录
type ImportJob struct {
	ID            string       `gorm:"primaryKey"`         // 导入ID，主键
	FileName      string       `gorm:"not null"`           // 原始文件名
	FileType      string       `gorm:"not null;size:20"`   // 文件类型：pdf, markdown, plaintext
	SourceKey     string       `gorm:"not null"`           // 源文件在存储中的键
	FileSize      int64        `gorm:"not null"`           // 文件大小（字节）
	ContentHash   string       `gorm:"size:64;index"`      // 源文件SHA-256
	Status        ImportStatus `gorm:"not null;index"`     // 处理状态
	Error         string       `gorm:"type:text"`          // 错误信息
	PageCount     int          `gorm:"not null;default:0"` // 页数
	QuestionCount int          `gorm:"not null;default:0"` // 抽取到的题目数
	ExportKey     string       `gorm:""`                   // 导出JSON在存储中的键
	TaskID        string       `gorm:"size:50;index"`      // 异步任务ID
	CreatedAt     time.Time    `gorm:"not null;index"`     // 创建时间
	UpdatedAt     time.Time    `gorm:"not null"`           // 更新时间
	ProcessedAt   *time.Time   `gorm:"index"`              // 处理完成时间
}

// BeforeCreate GORM的钩子函数，创建记录前自动设置时间
func (j *ImportJob) BeforeCreate(tx *gorm.DB) (err error) {
	now := time.Now()
	if j.CreatedAt.IsZero() {
		j.CreatedAt = now
	}
	j.UpdatedAt = now
	if j.Status == "" {
		j.Status = ImportStatusUploaded
	}
	return nil
}

// BeforeUpdate GORM的钩子函数，更新记录前自动设置更新时间
func (j *ImportJob) BeforeUpdate(tx *gorm.DB) (err error) {
	j.UpdatedAt = time.Now()
	return nil
}

// TableName 明确指定表名
func (ImportJob) TableName() string {
	return "import_jobs"
}
