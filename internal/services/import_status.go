package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/fyerfyer/question-bank/internal/models"
	"github.com/fyerfyer/question-bank/internal/repository"
)

// validTransitions 允许的导入状态转换
var validTransitions = map[models.ImportStatus][]models.ImportStatus{
	models.ImportStatusUploaded: {
		models.ImportStatusProcessing,
		models.ImportStatusFailed,
	},
	models.ImportStatusProcessing: {
		models.ImportStatusProcessing, // 任务被重新投递
		models.ImportStatusCompleted,
		models.ImportStatusFailed,
	},
	models.ImportStatusCompleted: {},
	models.ImportStatusFailed: {
		models.ImportStatusProcessing, // 允许重试
	},
}

// ValidateStateTransition 验证状态转换的有效性
func ValidateStateTransition(from, to models.ImportStatus) error {
	for _, allowed := range validTransitions[from] {
		if allowed == to {
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", models.ErrInvalidImportStatus, from, to)
}

// ImportStatusManager 导入状态管理器
// 负责导入任务的生命周期状态
type ImportStatusManager struct {
	repo   repository.ImportRepository
	logger *logrus.Logger
	mu     sync.Mutex // 保证读取-校验-写入的原子性
}

// NewImportStatusManager 创建导入状态管理器
func NewImportStatusManager(repo repository.ImportRepository, logger *logrus.Logger) *ImportStatusManager {
	if logger == nil {
		logger = logrus.New()
	}
	return &ImportStatusManager{
		repo:   repo,
		logger: logger,
	}
}

// MarkAsUploaded 创建处于uploaded状态的导入记录
func (m *ImportStatusManager) MarkAsUploaded(ctx context.Context, job *models.ImportJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	job.Status = models.ImportStatusUploaded
	m.logger.WithFields(logrus.Fields{
		"import_id": job.ID,
		"filename":  job.FileName,
	}).Info("Import uploaded")

	return m.repo.Create(job)
}

// MarkAsProcessing 将导入标记为处理中
func (m *ImportStatusManager) MarkAsProcessing(ctx context.Context, importID string) (*models.ImportJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, err := m.repo.GetByID(importID)
	if err != nil {
		return nil, err
	}
	if err := ValidateStateTransition(job.Status, models.ImportStatusProcessing); err != nil {
		return nil, err
	}

	m.logger.WithField("import_id", importID).Info("Import processing")
	if err := m.repo.UpdateStatus(importID, models.ImportStatusProcessing, ""); err != nil {
		return nil, err
	}
	job.Status = models.ImportStatusProcessing
	job.Error = ""
	return job, nil
}

// MarkAsCompleted 将导入标记为完成并记录统计信息
func (m *ImportStatusManager) MarkAsCompleted(ctx context.Context, importID string, pageCount, questionCount int, exportKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, err := m.repo.GetByID(importID)
	if err != nil {
		return err
	}
	if err := ValidateStateTransition(job.Status, models.ImportStatusCompleted); err != nil {
		return err
	}

	if err := m.repo.UpdateStatus(importID, models.ImportStatusCompleted, ""); err != nil {
		return err
	}

	job, err = m.repo.GetByID(importID)
	if err != nil {
		return err
	}
	job.PageCount = pageCount
	job.QuestionCount = questionCount
	job.ExportKey = exportKey

	m.logger.WithFields(logrus.Fields{
		"import_id":      importID,
		"page_count":     pageCount,
		"question_count": questionCount,
	}).Info("Import completed")
	return m.repo.Update(job)
}

// MarkAsFailed 将导入标记为失败
func (m *ImportStatusManager) MarkAsFailed(ctx context.Context, importID string, errorMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, err := m.repo.GetByID(importID)
	if err != nil {
		return err
	}
	if err := ValidateStateTransition(job.Status, models.ImportStatusFailed); err != nil {
		return err
	}

	m.logger.WithFields(logrus.Fields{
		"import_id": importID,
		"error":     errorMsg,
	}).Error("Import failed")
	return m.repo.UpdateStatus(importID, models.ImportStatusFailed, errorMsg)
}
