package taskqueue

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupQueue 基于miniredis创建队列
func setupQueue(t *testing.T) (*RedisQueue, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	q, err := NewRedisQueue(&Config{
		RedisAddr:   mr.Addr(),
		Concurrency: 1,
		RetryLimit:  2,
		RetryDelay:  time.Second,
	}, WithQueueLogger(logger))
	require.NoError(t, err)
	t.Cleanup(func() { q.Close() })
	return q, mr
}

func samplePayload() *ExtractPayload {
	return &ExtractPayload{
		ImportID:  "imp-1",
		SourceKey: "sources/imp-1.pdf",
		FileName:  "bank.pdf",
		FileType:  "pdf",
	}
}

func TestNewRedisQueue_Unavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisQueue(&Config{RedisAddr: addr})
	assert.Error(t, err)
}

func TestRedisQueue_Enqueue(t *testing.T) {
	q, _ := setupQueue(t)
	ctx := context.Background()

	taskID, err := q.Enqueue(ctx, TaskExtractQuestions, "imp-1", samplePayload())
	require.NoError(t, err)
	assert.NotEmpty(t, taskID)

	task, err := q.GetTask(ctx, taskID)
	require.NoError(t, err)
	assert.Equal(t, TaskExtractQuestions, task.Type)
	assert.Equal(t, "imp-1", task.ImportID)
	assert.Equal(t, StatusPending, task.Status)
	assert.Equal(t, 2, task.MaxRetries)

	var payload ExtractPayload
	require.NoError(t, UnmarshalPayload(task.Payload, &payload))
	assert.Equal(t, "sources/imp-1.pdf", payload.SourceKey)

	// asynq队列中存在同ID的待处理任务
	info, err := q.inspector.GetTaskInfo(defaultQueue, taskID)
	require.NoError(t, err)
	assert.Equal(t, string(TaskExtractQuestions), info.Type)
}

func TestRedisQueue_EnqueueIn(t *testing.T) {
	q, _ := setupQueue(t)
	ctx := context.Background()

	taskID, err := q.EnqueueIn(ctx, TaskExtractQuestions, "imp-1", samplePayload(), time.Minute)
	require.NoError(t, err)

	info, err := q.inspector.GetTaskInfo(defaultQueue, taskID)
	require.NoError(t, err)
	assert.Equal(t, asynq.TaskStateScheduled, info.State)
}

func TestRedisQueue_GetTasksByImport(t *testing.T) {
	q, _ := setupQueue(t)
	ctx := context.Background()

	first, err := q.Enqueue(ctx, TaskExtractQuestions, "imp-1", samplePayload())
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	second, err := q.Enqueue(ctx, TaskExtractQuestions, "imp-1", samplePayload())
	require.NoError(t, err)
	_, err = q.Enqueue(ctx, TaskExtractQuestions, "imp-2", nil)
	require.NoError(t, err)

	tasks, err := q.GetTasksByImport(ctx, "imp-1")
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, first, tasks[0].ID)
	assert.Equal(t, second, tasks[1].ID)

	tasks, err = q.GetTasksByImport(ctx, "none")
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestRedisQueue_UpdateTaskStatus(t *testing.T) {
	q, _ := setupQueue(t)
	ctx := context.Background()

	taskID, err := q.Enqueue(ctx, TaskExtractQuestions, "imp-1", samplePayload())
	require.NoError(t, err)

	require.NoError(t, q.UpdateTaskStatus(ctx, taskID, StatusProcessing, nil, ""))
	task, err := q.GetTask(ctx, taskID)
	require.NoError(t, err)
	assert.Equal(t, StatusProcessing, task.Status)
	assert.NotNil(t, task.StartedAt)
	assert.Nil(t, task.CompletedAt)

	result := &ExtractResult{ImportID: "imp-1", QuestionCount: 3, PageCount: 1}
	require.NoError(t, q.UpdateTaskStatus(ctx, taskID, StatusCompleted, result, ""))
	task, err = q.GetTask(ctx, taskID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, task.Status)
	assert.NotNil(t, task.CompletedAt)

	var decoded ExtractResult
	require.NoError(t, UnmarshalPayload(task.Result, &decoded))
	assert.Equal(t, 3, decoded.QuestionCount)

	assert.ErrorIs(t, q.UpdateTaskStatus(ctx, "missing", StatusFailed, nil, "x"), ErrTaskNotFound)
}

func TestRedisQueue_WaitForTask(t *testing.T) {
	q, _ := setupQueue(t)
	ctx := context.Background()

	taskID, err := q.Enqueue(ctx, TaskExtractQuestions, "imp-1", samplePayload())
	require.NoError(t, err)

	_, err = q.WaitForTask(ctx, taskID, 300*time.Millisecond)
	assert.ErrorIs(t, err, ErrTaskTimeout)

	go func() {
		time.Sleep(100 * time.Millisecond)
		q.UpdateTaskStatus(context.Background(), taskID, StatusFailed, nil, "boom")
	}()
	task, err := q.WaitForTask(ctx, taskID, 2*time.Second)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, task.Status)
	assert.Equal(t, "boom", task.Error)
}

func TestRedisQueue_DeleteTask(t *testing.T) {
	q, _ := setupQueue(t)
	ctx := context.Background()

	taskID, err := q.Enqueue(ctx, TaskExtractQuestions, "imp-1", samplePayload())
	require.NoError(t, err)

	require.NoError(t, q.DeleteTask(ctx, taskID))
	_, err = q.GetTask(ctx, taskID)
	assert.ErrorIs(t, err, ErrTaskNotFound)

	tasks, err := q.GetTasksByImport(ctx, "imp-1")
	require.NoError(t, err)
	assert.Empty(t, tasks)

	assert.ErrorIs(t, q.DeleteTask(ctx, taskID), ErrTaskNotFound)
}

func TestRedisWorker_ProcessTask(t *testing.T) {
	q, _ := setupQueue(t)
	ctx := context.Background()

	worker := NewRedisWorker(q, nil)
	var seen *Task
	worker.RegisterHandler(TaskExtractQuestions, HandlerFunc(func(ctx context.Context, task *Task) (interface{}, error) {
		seen = task
		return &ExtractResult{ImportID: task.ImportID, QuestionCount: 7}, nil
	}))

	taskID, err := q.Enqueue(ctx, TaskExtractQuestions, "imp-1", samplePayload())
	require.NoError(t, err)

	require.NoError(t, worker.processTask(ctx, asynq.NewTask(string(TaskExtractQuestions), []byte(taskID))))
	require.NotNil(t, seen)
	assert.Equal(t, StatusProcessing, seen.Status)
	assert.Equal(t, 1, seen.Attempts)

	task, err := q.GetTask(ctx, taskID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, task.Status)
	assert.Equal(t, 1, task.Attempts)
	assert.NotNil(t, task.CompletedAt)

	var result ExtractResult
	require.NoError(t, UnmarshalPayload(task.Result, &result))
	assert.Equal(t, 7, result.QuestionCount)
}

func TestRedisWorker_ProcessTaskFailure(t *testing.T) {
	q, _ := setupQueue(t)
	ctx := context.Background()

	worker := NewRedisWorker(q, nil)
	worker.RegisterHandler(TaskExtractQuestions, HandlerFunc(func(ctx context.Context, task *Task) (interface{}, error) {
		return nil, errors.New("document contains no text")
	}))

	taskID, err := q.Enqueue(ctx, TaskExtractQuestions, "imp-1", samplePayload())
	require.NoError(t, err)

	// 不在asynq上下文中执行时视为最后一次尝试
	err = worker.processTask(ctx, asynq.NewTask(string(TaskExtractQuestions), []byte(taskID)))
	assert.Error(t, err)

	task, err := q.GetTask(ctx, taskID)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, task.Status)
	assert.Equal(t, "document contains no text", task.Error)
}

func TestRedisWorker_UnknownTask(t *testing.T) {
	q, _ := setupQueue(t)
	worker := NewRedisWorker(q, nil)

	err := worker.processTask(context.Background(), asynq.NewTask(string(TaskExtractQuestions), []byte("x")))
	assert.ErrorIs(t, err, asynq.SkipRetry)

	worker.RegisterHandler(TaskExtractQuestions, HandlerFunc(func(ctx context.Context, task *Task) (interface{}, error) {
		return nil, nil
	}))
	err = worker.processTask(context.Background(), asynq.NewTask(string(TaskExtractQuestions), []byte("missing")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestNewQueueFactory(t *testing.T) {
	mr := miniredis.RunT(t)

	q, err := NewQueue("redis", &Config{RedisAddr: mr.Addr()})
	require.NoError(t, err)
	assert.NoError(t, q.Close())

	_, err = NewQueue("kafka", nil)
	assert.Error(t, err)
}

func TestNewWorker(t *testing.T) {
	q, _ := setupQueue(t)

	worker, err := NewWorker(q, nil)
	require.NoError(t, err)
	assert.IsType(t, &RedisWorker{}, worker)

	_, err = NewWorker(nil, nil)
	assert.Error(t, err)
}

func TestTaskInfo(t *testing.T) {
	now := time.Now()
	task := &Task{
		ID:          "task-123",
		Type:        TaskExtractQuestions,
		ImportID:    "imp-1",
		Status:      StatusCompleted,
		CreatedAt:   now,
		CompletedAt: &now,
		Attempts:    2,
	}

	info := NewTaskInfo(task)
	assert.Equal(t, task.ID, info.ID)
	assert.Equal(t, task.ImportID, info.ImportID)
	assert.Equal(t, 2, info.Attempts)
	assert.True(t, info.Status.IsFinal())
	assert.False(t, StatusPending.IsFinal())
}

func TestUnmarshalPayload(t *testing.T) {
	var p ExtractPayload
	assert.ErrorIs(t, UnmarshalPayload(nil, &p), ErrInvalidPayload)
	assert.ErrorIs(t, UnmarshalPayload([]byte("[1"), &p), ErrInvalidPayload)

	data, err := MarshalPayload(nil)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))
}
