package handler

import (
	"encoding/json"
	"net/http"

	"github.com/fyerfyer/question-bank/api/middleware"
	"github.com/fyerfyer/question-bank/api/model"
	"github.com/fyerfyer/question-bank/pkg/taskqueue"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// TaskHandler 处理任务相关的API请求
type TaskHandler struct {
	queue  taskqueue.Queue // 任务队列
	logger *logrus.Logger  // 日志记录器
}

// NewTaskHandler 创建新的任务处理器
func NewTaskHandler(queue taskqueue.Queue) *TaskHandler {
	return &TaskHandler{
		queue:  queue,
		logger: middleware.GetLogger(),
	}
}

// taskView 任务信息及其结果
type taskView struct {
	*taskqueue.TaskInfo
	Result json.RawMessage `json:"result,omitempty"`
}

// GetTaskStatus 获取任务状态
// GET /api/tasks/:id
func (h *TaskHandler) GetTaskStatus(c *gin.Context) {
	taskID := c.Param("id")
	if taskID == "" {
		middleware.HandleError(c, middleware.NewValidationError("任务ID不能为空"))
		return
	}

	task, err := h.queue.GetTask(c.Request.Context(), taskID)
	if err != nil {
		h.logger.WithError(err).WithField("task_id", taskID).Warn("Failed to get task")
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(taskView{
		TaskInfo: taskqueue.NewTaskInfo(task),
		Result:   task.Result,
	}))
}

// GetImportTasks 获取导入相关的所有任务
// GET /api/imports/:id/tasks
func (h *TaskHandler) GetImportTasks(c *gin.Context) {
	importID := c.Param("id")
	if importID == "" {
		middleware.HandleError(c, middleware.NewValidationError("导入ID不能为空"))
		return
	}

	tasks, err := h.queue.GetTasksByImport(c.Request.Context(), importID)
	if err != nil {
		h.logger.WithError(err).WithField(middleware.FieldImportID, importID).Error("Failed to get import tasks")
		middleware.HandleError(c, err)
		return
	}

	infos := make([]*taskqueue.TaskInfo, 0, len(tasks))
	for _, task := range tasks {
		infos = append(infos, taskqueue.NewTaskInfo(task))
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(gin.H{
		"import_id": importID,
		"tasks":     infos,
	}))
}
