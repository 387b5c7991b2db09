package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/fyerfyer/question-bank/internal/database"
	"github.com/fyerfyer/question-bank/internal/models"
)

// importRepository 导入任务仓储实现
type importRepository struct {
	db *gorm.DB // 数据库连接
}

// NewImportRepository 使用全局数据库连接创建导入仓储实例
func NewImportRepository() ImportRepository {
	return &importRepository{db: database.MustDB()}
}

// NewImportRepositoryWithDB 使用指定的数据库连接创建导入仓储实例
func NewImportRepositoryWithDB(db *gorm.DB) ImportRepository {
	if db == nil {
		db = database.MustDB()
	}
	return &importRepository{db: db}
}

// Create 创建导入记录
func (r *importRepository) Create(job *models.ImportJob) error {
	if job.ID == "" {
		return errors.New("import ID cannot be empty")
	}

	return r.db.Create(job).Error
}

// Update 更新导入记录
func (r *importRepository) Update(job *models.ImportJob) error {
	if job.ID == "" {
		return errors.New("import ID cannot be empty")
	}

	return r.db.Save(job).Error
}

// GetByID 根据ID获取导入记录
func (r *importRepository) GetByID(id string) (*models.ImportJob, error) {
	var job models.ImportJob
	err := r.db.Where("id = ?", id).First(&job).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", models.ErrImportNotFound, id)
		}
		return nil, err
	}
	return &job, nil
}

// List 列出导入记录，按创建时间倒序
func (r *importRepository) List(offset, limit int, filters map[string]interface{}) ([]*models.ImportJob, int64, error) {
	var jobs []*models.ImportJob
	var total int64

	query := r.db.Model(&models.ImportJob{})

	if filters != nil {
		if status, ok := filters["status"]; ok {
			switch s := status.(type) {
			case models.ImportStatus:
				query = query.Where("status = ?", string(s))
			case string:
				if s != "" {
					query = query.Where("status = ?", s)
				}
			}
		}

		if fileType, ok := filters["file_type"].(string); ok && fileType != "" {
			query = query.Where("file_type = ?", fileType)
		}

		if fileName, ok := filters["file_name"].(string); ok && fileName != "" {
			query = query.Where("file_name LIKE ?", "%"+fileName+"%")
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&jobs).Error
	if err != nil {
		return nil, 0, err
	}

	return jobs, total, nil
}

// UpdateStatus 更新导入状态，终止状态同时记录处理完成时间
func (r *importRepository) UpdateStatus(id string, status models.ImportStatus, errorMsg string) error {
	if !status.IsValid() {
		return fmt.Errorf("%w: %s", models.ErrInvalidImportStatus, status)
	}

	updates := map[string]interface{}{
		"status":     status,
		"error":      errorMsg,
		"updated_at": time.Now(),
	}

	if status.IsFinal() {
		now := time.Now()
		updates["processed_at"] = &now
	}

	result := r.db.Model(&models.ImportJob{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", models.ErrImportNotFound, id)
	}
	return nil
}

// SetTaskID 只更新task_id列，不覆盖其他字段
func (r *importRepository) SetTaskID(id, taskID string) error {
	result := r.db.Model(&models.ImportJob{}).
		Where("id = ?", id).
		Update("task_id", taskID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", models.ErrImportNotFound, id)
	}
	return nil
}

// Delete 删除导入记录及其题目
func (r *importRepository) Delete(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("import_id = ?", id).Delete(&models.QuestionRecord{}).Error; err != nil {
			return err
		}

		result := tx.Where("id = ?", id).Delete(&models.ImportJob{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: %s", models.ErrImportNotFound, id)
		}
		return nil
	})
}

// WithContext 创建带有上下文的仓储
func (r *importRepository) WithContext(ctx context.Context) ImportRepository {
	return &importRepository{db: r.db.WithContext(ctx)}
}
