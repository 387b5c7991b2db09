package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/fyerfyer/question-bank/internal/cache"
	"github.com/fyerfyer/question-bank/internal/document"
	"github.com/fyerfyer/question-bank/internal/export"
	"github.com/fyerfyer/question-bank/internal/extractor"
	"github.com/fyerfyer/question-bank/internal/models"
	"github.com/fyerfyer/question-bank/internal/repository"
	"github.com/fyerfyer/question-bank/pkg/storage"
	"github.com/fyerfyer/question-bank/pkg/taskqueue"
)

// ImportService 题库导入服务
// 负责协调源文件存储、分页读取、题目抽取、持久化和导出
type ImportService struct {
	storage      storage.Storage               // 源文件和导出文件存储
	imports      repository.ImportRepository   // 导入记录仓储
	questions    repository.QuestionRepository // 题目仓储
	status       *ImportStatusManager          // 导入状态管理器
	cache        *cache.ExtractionCache        // 抽取结果缓存，可为空
	taskQueue    taskqueue.Queue               // 任务队列，为空时同步处理
	extractor    *extractor.Extractor          // 题目抽取器
	exportIndent int                           // 导出JSON缩进
	timeout      time.Duration                 // 同步处理超时时间
	logger       *logrus.Logger                // 日志记录器
}

// ImportOption 导入服务配置选项
type ImportOption func(*ImportService)

// NewImportService 创建导入服务
func NewImportService(
	store storage.Storage,
	imports repository.ImportRepository,
	questions repository.QuestionRepository,
	opts ...ImportOption,
) *ImportService {
	srv := &ImportService{
		storage:      store,
		imports:      imports,
		questions:    questions,
		exportIndent: export.DefaultIndent,
		timeout:      5 * time.Minute,
		logger:       logrus.New(),
	}

	for _, opt := range opts {
		opt(srv)
	}

	if srv.extractor == nil {
		srv.extractor = extractor.New(extractor.WithLogger(srv.logger))
	}
	srv.status = NewImportStatusManager(imports, srv.logger)
	return srv
}

// WithLogger 设置日志记录器
func WithLogger(logger *logrus.Logger) ImportOption {
	return func(s *ImportService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithCache 启用抽取结果缓存
func WithCache(c cache.Cache, ttl time.Duration) ImportOption {
	return func(s *ImportService) {
		if c != nil {
			s.cache = cache.NewExtractionCache(c, ttl)
		}
	}
}

// WithTaskQueue 设置任务队列，设置后导入改为异步处理
func WithTaskQueue(queue taskqueue.Queue) ImportOption {
	return func(s *ImportService) {
		s.taskQueue = queue
	}
}

// WithExtractor 设置题目抽取器
func WithExtractor(e *extractor.Extractor) ImportOption {
	return func(s *ImportService) {
		s.extractor = e
	}
}

// WithExportIndent 设置导出JSON的缩进空格数
func WithExportIndent(indent int) ImportOption {
	return func(s *ImportService) {
		s.exportIndent = indent
	}
}

// WithTimeout 设置同步处理超时时间
func WithTimeout(timeout time.Duration) ImportOption {
	return func(s *ImportService) {
		s.timeout = timeout
	}
}

// AsyncEnabled 是否通过任务队列异步处理
func (s *ImportService) AsyncEnabled() bool {
	return s.taskQueue != nil
}

// Submit 保存源文件并创建导入任务
// 配置了任务队列时入队异步处理，否则立即处理；处理失败记录在导入状态中
func (s *ImportService) Submit(ctx context.Context, r io.Reader, filename string) (*models.ImportJob, error) {
	if !document.IsSupported(filename) {
		return nil, fmt.Errorf("%w: %s", document.ErrUnsupportedFileType, filepath.Ext(filename))
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}

	id := uuid.New().String()
	sourceKey := storage.SourceKey(id, filename)
	if _, err := s.storage.Put(ctx, sourceKey, bytes.NewReader(data), storage.MimeType(filename)); err != nil {
		return nil, fmt.Errorf("failed to store source file: %w", err)
	}

	job := &models.ImportJob{
		ID:          id,
		FileName:    filepath.Base(filename),
		FileType:    string(document.DetectContentType(filename)),
		SourceKey:   sourceKey,
		FileSize:    int64(len(data)),
		ContentHash: cache.HashContent(data),
	}
	if err := s.status.MarkAsUploaded(ctx, job); err != nil {
		_ = s.storage.Delete(ctx, sourceKey)
		return nil, fmt.Errorf("failed to create import: %w", err)
	}

	if s.taskQueue != nil {
		return s.enqueue(ctx, job)
	}

	procCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if _, err := s.Process(procCtx, id); err != nil {
		s.logger.WithError(err).WithField("import_id", id).Warn("Inline import processing failed")
	}
	return s.imports.GetByID(id)
}

// enqueue 提交抽取任务并记录任务ID
func (s *ImportService) enqueue(ctx context.Context, job *models.ImportJob) (*models.ImportJob, error) {
	payload := &taskqueue.ExtractPayload{
		ImportID:  job.ID,
		SourceKey: job.SourceKey,
		FileName:  job.FileName,
		FileType:  job.FileType,
	}

	taskID, err := s.taskQueue.Enqueue(ctx, taskqueue.TaskExtractQuestions, job.ID, payload)
	if err != nil {
		_ = s.status.MarkAsFailed(ctx, job.ID, err.Error())
		return nil, fmt.Errorf("failed to enqueue import: %w", err)
	}

	job.TaskID = taskID
	if err := s.imports.SetTaskID(job.ID, taskID); err != nil {
		return nil, fmt.Errorf("failed to record task id: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"import_id": job.ID,
		"task_id":   taskID,
	}).Info("Import queued")
	return job, nil
}

// Process 执行一次导入：读取源文件、抽取、保存题目并写出导出文件
func (s *ImportService) Process(ctx context.Context, importID string) (*taskqueue.ExtractResult, error) {
	job, err := s.status.MarkAsProcessing(ctx, importID)
	if err != nil {
		return nil, err
	}

	result, err := s.process(ctx, job)
	if err != nil {
		if markErr := s.status.MarkAsFailed(ctx, importID, err.Error()); markErr != nil {
			s.logger.WithError(markErr).WithField("import_id", importID).Error("Failed to mark import as failed")
		}
		return nil, err
	}

	if err := s.status.MarkAsCompleted(ctx, importID, result.PageCount, result.QuestionCount, result.ExportKey); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *ImportService) process(ctx context.Context, job *models.ImportJob) (*taskqueue.ExtractResult, error) {
	data, err := s.readObject(ctx, job.SourceKey)
	if err != nil {
		return nil, err
	}

	hash := job.ContentHash
	if hash == "" {
		hash = cache.HashContent(data)
	}

	entry, hit := s.lookupCache(hash)
	if !hit {
		reader, err := document.ReaderFactory(job.FileName)
		if err != nil {
			return nil, err
		}
		pages, err := reader.ReadPagesFrom(bytes.NewReader(data), job.FileName)
		if err != nil {
			return nil, err
		}

		entry = &cache.Entry{
			PageCount: len(pages),
			Records:   s.extractor.Extract(document.ToLines(pages)),
		}
		if s.cache != nil {
			if err := s.cache.Set(hash, *entry); err != nil {
				s.logger.WithError(err).Warn("Failed to cache extraction result")
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := s.saveQuestions(job.ID, entry.Records); err != nil {
		return nil, err
	}

	exportKey := storage.ExportKey(job.ID)
	var buf bytes.Buffer
	if err := export.WriteJSON(&buf, entry.Records, s.exportIndent); err != nil {
		return nil, err
	}
	if _, err := s.storage.Put(ctx, exportKey, &buf, "application/json"); err != nil {
		return nil, fmt.Errorf("failed to store export: %w", err)
	}

	return &taskqueue.ExtractResult{
		ImportID:      job.ID,
		PageCount:     entry.PageCount,
		QuestionCount: len(entry.Records),
		ExportKey:     exportKey,
		CacheHit:      hit,
	}, nil
}

func (s *ImportService) lookupCache(hash string) (*cache.Entry, bool) {
	if s.cache == nil {
		return nil, false
	}
	entry, found, err := s.cache.Get(hash)
	if err != nil {
		s.logger.WithError(err).Warn("Extraction cache lookup failed")
		return nil, false
	}
	if found {
		s.logger.WithField("hash", hash).Debug("Extraction cache hit")
	}
	return entry, found
}

func (s *ImportService) saveQuestions(importID string, records []extractor.Record) error {
	rows := make([]*models.QuestionRecord, 0, len(records))
	for i, rec := range records {
		row, err := models.NewQuestionRecord(importID, i, rec)
		if err != nil {
			return err
		}
		rows = append(rows, row)
	}
	if err := s.questions.ReplaceForImport(importID, rows); err != nil {
		return fmt.Errorf("failed to save questions: %w", err)
	}
	return nil
}

func (s *ImportService) readObject(ctx context.Context, key string) ([]byte, error) {
	rc, err := s.storage.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", key, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, nil
}

// ExtractFile 直接抽取本地文件中的题目，不做持久化
func (s *ImportService) ExtractFile(ctx context.Context, path string) ([]extractor.Record, error) {
	return ExtractFile(path, s.extractor)
}

// ExtractFile 读取本地文件并抽取题目，e为空时使用默认抽取器
func ExtractFile(path string, e *extractor.Extractor) ([]extractor.Record, error) {
	reader, err := document.ReaderFactory(path)
	if err != nil {
		return nil, err
	}
	pages, err := reader.ReadPages(path)
	if err != nil {
		return nil, err
	}
	if e == nil {
		e = extractor.New()
	}
	return e.Extract(document.ToLines(pages)), nil
}

// GetImport 获取导入记录
func (s *ImportService) GetImport(ctx context.Context, importID string) (*models.ImportJob, error) {
	return s.imports.GetByID(importID)
}

// ListImports 分页列出导入记录
func (s *ImportService) ListImports(ctx context.Context, offset, limit int, filters map[string]interface{}) ([]*models.ImportJob, int64, error) {
	return s.imports.List(offset, limit, filters)
}

// ListQuestions 按文档顺序返回导入的全部题目
func (s *ImportService) ListQuestions(ctx context.Context, importID string) ([]extractor.Record, error) {
	if _, err := s.imports.GetByID(importID); err != nil {
		return nil, err
	}

	rows, err := s.questions.ListByImport(importID)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}

	records := make([]extractor.Record, 0, len(rows))
	for _, row := range rows {
		rec, err := row.ToRecord()
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// SearchQuestions 跨导入分页查询题目
func (s *ImportService) SearchQuestions(ctx context.Context, offset, limit int, filter repository.QuestionFilter) ([]*models.QuestionRecord, int64, error) {
	return s.questions.Search(offset, limit, filter)
}

// Stats 按题型统计数量，每个题型都有条目
// importID为空时统计全部导入
func (s *ImportService) Stats(ctx context.Context, importID string) (map[extractor.QuestionType]int64, error) {
	if importID != "" {
		if _, err := s.imports.GetByID(importID); err != nil {
			return nil, err
		}
	}

	counts, err := s.questions.CountByType(importID)
	if err != nil {
		return nil, fmt.Errorf("failed to count questions: %w", err)
	}

	stats := make(map[extractor.QuestionType]int64, len(extractor.AllQuestionTypes()))
	for _, t := range extractor.AllQuestionTypes() {
		stats[t] = counts[string(t)]
	}
	return stats, nil
}

// Export 将导入的题目以JSON写出
// 优先使用处理时生成的导出文件，缺失时从数据库重建
func (s *ImportService) Export(ctx context.Context, importID string, w io.Writer) error {
	job, err := s.imports.GetByID(importID)
	if err != nil {
		return err
	}
	if job.Status != models.ImportStatusCompleted {
		return fmt.Errorf("%w: import %s is %s", models.ErrInvalidImportStatus, importID, job.Status)
	}

	if job.ExportKey != "" {
		rc, err := s.storage.Get(ctx, job.ExportKey)
		if err == nil {
			defer rc.Close()
			_, err = io.Copy(w, rc)
			return err
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return err
		}
		s.logger.WithField("import_id", importID).Warn("Export file missing, rebuilding from database")
	}

	records, err := s.ListQuestions(ctx, importID)
	if err != nil {
		return err
	}
	return export.WriteJSON(w, records, s.exportIndent)
}

// DeleteImport 删除导入记录、题目、存储对象和相关任务
func (s *ImportService) DeleteImport(ctx context.Context, importID string) error {
	job, err := s.imports.GetByID(importID)
	if err != nil {
		return err
	}

	for _, key := range []string{job.SourceKey, job.ExportKey} {
		if key == "" {
			continue
		}
		if err := s.storage.Delete(ctx, key); err != nil && !errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("failed to delete %s: %w", key, err)
		}
	}

	if s.taskQueue != nil {
		tasks, err := s.taskQueue.GetTasksByImport(ctx, importID)
		if err == nil {
			for _, task := range tasks {
				_ = s.taskQueue.DeleteTask(ctx, task.ID)
			}
		}
	}

	if err := s.imports.Delete(importID); err != nil {
		return err
	}
	s.logger.WithField("import_id", importID).Info("Import deleted")
	return nil
}

// WaitForImport 轮询直到导入进入终止状态
func (s *ImportService) WaitForImport(ctx context.Context, importID string, timeout time.Duration) (*models.ImportJob, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		job, err := s.imports.GetByID(importID)
		if err != nil {
			return nil, err
		}
		if job.Status.IsFinal() {
			return job, nil
		}

		select {
		case <-ctx.Done():
			return job, ctx.Err()
		case <-ticker.C:
		}
	}
}
