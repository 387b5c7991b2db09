package models

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/fyerfyer/question-bank/internal/extractor"
)

// QuestionRecord 持久化的题目
// Options保存按原文顺序排列的选项JSON对象
type QuestionRecord struct {
	ID          uint           `gorm:"primaryKey;autoIncrement"`           // 主键ID
	ImportID    string         `gorm:"not null;index:idx_import_position"` // 所属导入ID
	Position    int            `gorm:"not null;index:idx_import_position"` // 在文档中的序号，从0开始
	Type        string         `gorm:"not null;size:20;index"`             // 题型
	Question    string         `gorm:"type:text;not null"`                 // 题干
	Options     datatypes.JSON `gorm:"type:json"`                          // 选项
	Answer      string         `gorm:"type:text"`                          // 答案
	Explanation string         `gorm:"type:text"`                          // 解析
	CreatedAt   time.Time      `gorm:"not null"`                           // 创建时间
}

// BeforeCreate GORM的钩子函数，创建记录前自动设置时间
func (q *QuestionRecord) BeforeCreate(tx *gorm.DB) (err error) {
	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now()
	}
	if len(q.Options) == 0 {
		q.Options = datatypes.JSON("{}")
	}
	return nil
}

// TableName 明确指定表名
func (QuestionRecord) TableName() string {
	return "questions"
}

// NewQuestionRecord 由抽取结果构造持久化记录
func NewQuestionRecord(importID string, position int, rec extractor.Record) (*QuestionRecord, error) {
	options, err := json.Marshal(rec.Options)
	if err != nil {
		return nil, fmt.Errorf("failed to encode options: %w", err)
	}

	return &QuestionRecord{
		ImportID:    importID,
		Position:    position,
		Type:        string(rec.Type),
		Question:    rec.Question,
		Options:     datatypes.JSON(options),
		Answer:      rec.Answer,
		Explanation: rec.Explanation,
	}, nil
}

// ToRecord 还原为抽取结果
func (q *QuestionRecord) ToRecord() (extractor.Record, error) {
	options := extractor.NewOptions()
	if len(q.Options) > 0 && string(q.Options) != "null" {
		if err := json.Unmarshal(q.Options, options); err != nil {
			return extractor.Record{}, fmt.Errorf("failed to decode options of question %d: %w", q.ID, err)
		}
	}

	return extractor.Record{
		Type:        extractor.QuestionType(q.Type),
		Question:    q.Question,
		Options:     options,
		Answer:      q.Answer,
		Explanation: q.Explanation,
	}, nil
}
