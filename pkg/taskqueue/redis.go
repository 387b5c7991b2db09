package taskqueue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	// 任务键前缀
	taskKeyPrefix = "task:"
	// 导入任务集合键前缀
	importTasksKeyPrefix = "import_tasks:"
	// 默认任务过期时间（7天）
	defaultTaskExpiry = 7 * 24 * time.Hour
	// WaitForTask轮询间隔
	pollInterval = 200 * time.Millisecond
)

// RedisQueue Redis任务队列实现
// 任务状态以JSON保存在Redis中，执行由asynq调度
type RedisQueue struct {
	client      *asynq.Client    // 用于添加任务
	inspector   *asynq.Inspector // 用于删除未执行的任务
	redisClient *redis.Client    // 保存任务状态
	cfg         *Config          // 队列配置
	logger      *logrus.Logger   // 日志记录器
}

// QueueOption 队列配置选项
type QueueOption func(*RedisQueue)

// WithQueueLogger 设置日志记录器
func WithQueueLogger(logger *logrus.Logger) QueueOption {
	return func(q *RedisQueue) {
		q.logger = logger
	}
}

func redisOpt(cfg *Config) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}
}

// NewRedisQueue 创建Redis任务队列实例
func NewRedisQueue(cfg *Config, opts ...QueueOption) (*RedisQueue, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		redisClient.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	q := &RedisQueue{
		client:      asynq.NewClient(redisOpt(cfg)),
		inspector:   asynq.NewInspector(redisOpt(cfg)),
		redisClient: redisClient,
		cfg:         cfg,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q, nil
}

// Enqueue 将任务加入队列
func (q *RedisQueue) Enqueue(ctx context.Context, taskType TaskType, importID string, payload interface{}) (string, error) {
	return q.enqueue(ctx, taskType, importID, payload)
}

// EnqueueIn 在指定延迟后将任务加入队列
func (q *RedisQueue) EnqueueIn(ctx context.Context, taskType TaskType, importID string, payload interface{}, delay time.Duration) (string, error) {
	return q.enqueue(ctx, taskType, importID, payload, asynq.ProcessIn(delay))
}

func (q *RedisQueue) enqueue(ctx context.Context, taskType TaskType, importID string, payload interface{}, extra ...asynq.Option) (string, error) {
	taskID := uuid.New().String()

	payloadBytes, err := MarshalPayload(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal payload: %w", err)
	}

	now := time.Now()
	task := &Task{
		ID:         taskID,
		Type:       taskType,
		ImportID:   importID,
		Status:     StatusPending,
		Payload:    payloadBytes,
		CreatedAt:  now,
		UpdatedAt:  now,
		MaxRetries: q.cfg.RetryLimit,
	}

	if err := q.saveTask(ctx, task); err != nil {
		return "", fmt.Errorf("failed to save task to redis: %w", err)
	}

	opts := []asynq.Option{
		asynq.TaskID(taskID),
		asynq.Queue(defaultQueue),
		asynq.MaxRetry(q.cfg.RetryLimit),
	}
	if q.cfg.TaskTimeout > 0 {
		opts = append(opts, asynq.Timeout(q.cfg.TaskTimeout))
	}
	opts = append(opts, extra...)

	// asynq载荷只携带任务ID，完整信息从Redis读取
	if _, err := q.client.EnqueueContext(ctx, asynq.NewTask(string(taskType), []byte(taskID)), opts...); err != nil {
		q.removeTask(ctx, task)
		return "", fmt.Errorf("failed to enqueue task: %w", err)
	}

	q.logger.WithFields(logrus.Fields{
		"task_id":   taskID,
		"task_type": taskType,
		"import_id": importID,
	}).Info("Task enqueued successfully")

	return taskID, nil
}

// GetTask 获取任务信息
func (q *RedisQueue) GetTask(ctx context.Context, taskID string) (*Task, error) {
	data, err := q.redisClient.Get(ctx, taskKeyPrefix+taskID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task from redis: %w", err)
	}

	var task Task
	if err := json.Unmarshal(data, &task); err != nil {
		return nil, fmt.Errorf("failed to unmarshal task data: %w", err)
	}
	return &task, nil
}

// GetTasksByImport 获取导入相关的所有任务，按创建时间排序
func (q *RedisQueue) GetTasksByImport(ctx context.Context, importID string) ([]*Task, error) {
	taskIDs, err := q.redisClient.SMembers(ctx, importTasksKeyPrefix+importID).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get import tasks: %w", err)
	}

	tasks := make([]*Task, 0, len(taskIDs))
	for _, taskID := range taskIDs {
		task, err := q.GetTask(ctx, taskID)
		if err != nil {
			if errors.Is(err, ErrTaskNotFound) {
				// 任务可能已过期被删除
				continue
			}
			return nil, err
		}
		tasks = append(tasks, task)
	}

	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
	})
	return tasks, nil
}

// WaitForTask 轮询直到任务进入终止状态
func (q *RedisQueue) WaitForTask(ctx context.Context, taskID string, timeout time.Duration) (*Task, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		task, err := q.GetTask(ctx, taskID)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ErrTaskTimeout
			}
			return nil, err
		}
		if task.Status.IsFinal() {
			return task, nil
		}

		select {
		case <-ctx.Done():
			return nil, ErrTaskTimeout
		case <-ticker.C:
		}
	}
}

// UpdateTaskStatus 更新任务状态
func (q *RedisQueue) UpdateTaskStatus(ctx context.Context, taskID string, status TaskStatus, result interface{}, errMsg string) error {
	task, err := q.GetTask(ctx, taskID)
	if err != nil {
		return err
	}

	now := time.Now()
	task.Status = status
	task.UpdatedAt = now

	if status == StatusProcessing && task.StartedAt == nil {
		task.StartedAt = &now
	}
	if status.IsFinal() {
		task.CompletedAt = &now
	}

	if result != nil {
		resultBytes, err := MarshalPayload(result)
		if err != nil {
			return fmt.Errorf("failed to marshal result: %w", err)
		}
		task.Result = resultBytes
	}
	if errMsg != "" {
		task.Error = errMsg
	}

	return q.saveTask(ctx, task)
}

// DeleteTask 删除任务
func (q *RedisQueue) DeleteTask(ctx context.Context, taskID string) error {
	task, err := q.GetTask(ctx, taskID)
	if err != nil {
		return err
	}

	if err := q.removeTask(ctx, task); err != nil {
		return err
	}

	// 已在处理中或已完成的任务无法从asynq删除
	if err := q.inspector.DeleteTask(defaultQueue, taskID); err != nil && !errors.Is(err, asynq.ErrTaskNotFound) {
		q.logger.WithError(err).WithField("task_id", taskID).Debug("Task not deleted from asynq queue")
	}
	return nil
}

// Close 关闭队列连接
func (q *RedisQueue) Close() error {
	if err := q.client.Close(); err != nil {
		return err
	}
	if err := q.inspector.Close(); err != nil {
		return err
	}
	return q.redisClient.Close()
}

// saveTask 将任务信息保存到Redis
func (q *RedisQueue) saveTask(ctx context.Context, task *Task) error {
	taskData, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}

	pipe := q.redisClient.TxPipeline()
	pipe.Set(ctx, taskKeyPrefix+task.ID, taskData, defaultTaskExpiry)
	if task.ImportID != "" {
		key := importTasksKeyPrefix + task.ImportID
		pipe.SAdd(ctx, key, task.ID)
		pipe.Expire(ctx, key, defaultTaskExpiry)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save task data: %w", err)
	}
	return nil
}

func (q *RedisQueue) removeTask(ctx context.Context, task *Task) error {
	if task.ImportID != "" {
		if err := q.redisClient.SRem(ctx, importTasksKeyPrefix+task.ImportID, task.ID).Err(); err != nil {
			return fmt.Errorf("failed to remove task from import tasks: %w", err)
		}
	}
	if err := q.redisClient.Del(ctx, taskKeyPrefix+task.ID).Err(); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// RedisWorker Redis工作者实现
type RedisWorker struct {
	server   *asynq.Server
	queue    *RedisQueue
	handlers map[TaskType]Handler
	logger   *logrus.Logger
}

// NewRedisWorker 创建Redis工作者
func NewRedisWorker(queue *RedisQueue, cfg *Config) *RedisWorker {
	if cfg == nil {
		cfg = queue.cfg
	}

	queues := cfg.Queues
	if len(queues) == 0 {
		queues = map[string]int{defaultQueue: 1}
	}

	server := asynq.NewServer(redisOpt(cfg), asynq.Config{
		Concurrency: cfg.Concurrency,
		Queues:      queues,
		RetryDelayFunc: func(n int, err error, task *asynq.Task) time.Duration {
			return cfg.RetryDelay
		},
		Logger: queue.logger,
	})

	return &RedisWorker{
		server:   server,
		queue:    queue,
		handlers: make(map[TaskType]Handler),
		logger:   queue.logger,
	}
}

// RegisterHandler 注册任务处理器
func (w *RedisWorker) RegisterHandler(taskType TaskType, handler Handler) {
	w.handlers[taskType] = handler
}

// Start 启动工作者，非阻塞
func (w *RedisWorker) Start() error {
	mux := asynq.NewServeMux()
	for taskType := range w.handlers {
		mux.HandleFunc(string(taskType), w.processTask)
		w.logger.WithField("task_type", taskType).Info("Registered handler for task type")
	}
	return w.server.Start(mux)
}

// Stop 停止工作者
func (w *RedisWorker) Stop() {
	w.server.Shutdown()
}

// processTask 执行一次任务尝试并记录状态
// 还有重试机会时任务回到pending，最后一次失败才标记为failed
func (w *RedisWorker) processTask(ctx context.Context, t *asynq.Task) error {
	taskID := string(t.Payload())
	log := w.logger.WithFields(logrus.Fields{"task_id": taskID, "task_type": t.Type()})

	handler, ok := w.handlers[TaskType(t.Type())]
	if !ok {
		return fmt.Errorf("no handler registered for task type %s: %w", t.Type(), asynq.SkipRetry)
	}

	task, err := w.queue.GetTask(ctx, taskID)
	if err != nil {
		log.WithError(err).Error("Failed to get task info")
		if errors.Is(err, ErrTaskNotFound) {
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		return err
	}

	task.Attempts++
	task.Status = StatusProcessing
	if task.StartedAt == nil {
		now := time.Now()
		task.StartedAt = &now
	}
	if err := w.queue.saveTask(ctx, task); err != nil {
		log.WithError(err).Warn("Failed to mark task as processing")
	}

	result, procErr := handler.ProcessTask(ctx, task)
	if procErr != nil {
		status := StatusFailed
		if !isLastAttempt(ctx) && !errors.Is(procErr, asynq.SkipRetry) {
			status = StatusPending
		}
		if err := w.queue.UpdateTaskStatus(ctx, taskID, status, nil, procErr.Error()); err != nil {
			log.WithError(err).Error("Failed to update task status after failure")
		}
		log.WithError(procErr).WithField("status", status).Warn("Task attempt failed")
		return procErr
	}

	if err := w.queue.UpdateTaskStatus(ctx, taskID, StatusCompleted, result, ""); err != nil {
		log.WithError(err).Error("Failed to update task status after completion")
	}
	log.Info("Task completed")
	return nil
}

// isLastAttempt 当前是否为最后一次尝试，不在asynq上下文中时视为最后一次
func isLastAttempt(ctx context.Context) bool {
	retried, ok1 := asynq.GetRetryCount(ctx)
	maxRetry, ok2 := asynq.GetMaxRetry(ctx)
	if !ok1 || !ok2 {
		return true
	}
	return retried >= maxRetry
}

func init() {
	RegisterQueueFactory("redis", func(cfg *Config) (Queue, error) {
		return NewRedisQueue(cfg)
	})
}
