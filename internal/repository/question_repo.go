package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/fyerfyer/question-bank/internal/database"
	"github.com/fyerfyer/question-bank/internal/models"
)

// 批量插入的每批条数
const insertBatchSize = 100

// questionRepository 题目仓储实现
type questionRepository struct {
	db *gorm.DB
}

// NewQuestionRepository 使用全局数据库连接创建题目仓储实例
func NewQuestionRepository() QuestionRepository {
	return &questionRepository{db: database.MustDB()}
}

// NewQuestionRepositoryWithDB 使用指定的数据库连接创建题目仓储实例
func NewQuestionRepositoryWithDB(db *gorm.DB) QuestionRepository {
	if db == nil {
		db = database.MustDB()
	}
	return &questionRepository{db: db}
}

// ReplaceForImport 在同一事务中删除旧题目并写入新题目
func (r *questionRepository) ReplaceForImport(importID string, questions []*models.QuestionRecord) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("import_id = ?", importID).Delete(&models.QuestionRecord{}).Error; err != nil {
			return err
		}
		if len(questions) == 0 {
			return nil
		}

		for i, q := range questions {
			q.ID = 0
			q.ImportID = importID
			q.Position = i
		}
		return tx.CreateInBatches(questions, insertBatchSize).Error
	})
}

// ListByImport 按文档顺序返回导入下的题目
func (r *questionRepository) ListByImport(importID string) ([]*models.QuestionRecord, error) {
	var questions []*models.QuestionRecord
	err := r.db.Where("import_id = ?", importID).
		Order("position ASC").
		Find(&questions).Error
	return questions, err
}

// Search 分页查询题目
func (r *questionRepository) Search(offset, limit int, filter QuestionFilter) ([]*models.QuestionRecord, int64, error) {
	var questions []*models.QuestionRecord
	var total int64

	query := r.db.Model(&models.QuestionRecord{})
	if filter.ImportID != "" {
		query = query.Where("import_id = ?", filter.ImportID)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Keyword != "" {
		query = query.Where("question LIKE ?", "%"+filter.Keyword+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("import_id ASC").
		Order("position ASC").
		Offset(offset).
		Limit(limit).
		Find(&questions).Error
	if err != nil {
		return nil, 0, err
	}

	return questions, total, nil
}

// CountByType 按题型统计数量
func (r *questionRepository) CountByType(importID string) (map[string]int64, error) {
	var rows []struct {
		Type  string
		Count int64
	}

	query := r.db.Model(&models.QuestionRecord{}).Select("type, COUNT(*) AS count")
	if importID != "" {
		query = query.Where("import_id = ?", importID)
	}
	if err := query.Group("type").Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Type] = row.Count
	}
	return counts, nil
}

// DeleteByImport 删除导入下的全部题目
func (r *questionRepository) DeleteByImport(importID string) error {
	return r.db.Where("import_id = ?", importID).
		Delete(&models.QuestionRecord{}).Error
}

// WithContext 创建带有上下文的仓储
func (r *questionRepository) WithContext(ctx context.Context) QuestionRepository {
	return &questionRepository{db: r.db.WithContext(ctx)}
}
