package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"github.com/fyerfyer/question-bank/internal/document"
	"github.com/fyerfyer/question-bank/internal/models"
	"github.com/fyerfyer/question-bank/pkg/taskqueue"
)

// ProcessTask 处理extract_questions任务
func (s *ImportService) ProcessTask(ctx context.Context, task *taskqueue.Task) (interface{}, error) {
	var payload taskqueue.ExtractPayload
	if err := taskqueue.UnmarshalPayload(task.Payload, &payload); err != nil {
		return nil, fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	if payload.ImportID == "" {
		payload.ImportID = task.ImportID
	}

	s.logger.WithFields(logrus.Fields{
		"task_id":   task.ID,
		"import_id": payload.ImportID,
		"attempt":   task.Attempts,
	}).Info("Processing import task")

	result, err := s.Process(ctx, payload.ImportID)
	if err != nil {
		if isPermanent(err) {
			return nil, fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		return nil, err
	}
	return result, nil
}

// RegisterHandlers 向工作者注册导入任务处理器
func (s *ImportService) RegisterHandlers(worker taskqueue.Worker) {
	worker.RegisterHandler(taskqueue.TaskExtractQuestions, s)
}

// isPermanent 重试也无法成功的错误
func isPermanent(err error) bool {
	return errors.Is(err, document.ErrUnsupportedFileType) ||
		errors.Is(err, document.ErrEmptyDocument) ||
		errors.Is(err, models.ErrImportNotFound) ||
		errors.Is(err, models.ErrInvalidImportStatus)
}
