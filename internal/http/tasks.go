package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/catalog/internal/tasks"
)

const taskTypeCleanupAuditEvents = "cleanup_audit_events"

// TasksController handles task queue management endpoints.
type TasksController struct {
	client        *tasks.Client
	retentionDays int
}

// NewTasksController creates a new TasksController.
func NewTasksController(client *tasks.Client, retentionDays int) *TasksController {
	return &TasksController{client: client, retentionDays: retentionDays}
}

// TaskTypeInfo describes an available task type.
type TaskTypeInfo struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Queue       string `json:"queue"`
}

// TaskStatusResponse reports where a task is in its lifecycle.
type TaskStatusResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// TaskEnqueuedResponse identifies a newly enqueued task.
type TaskEnqueuedResponse struct {
	TaskID string `json:"task_id"`
	Type   string `json:"type"`
}

// RunTaskRequest is the optional request body for running a task.
type RunTaskRequest struct {
	RetentionDays int `json:"retention_days" binding:"omitempty,min=1"`
}

// ListTaskTypes handles GET /api/tasks/types
func (tc *TasksController) ListTaskTypes(c *gin.Context) {
	respondPayload(c, []TaskTypeInfo{
		{
			Type:        taskTypeCleanupAuditEvents,
			Description: "Delete audit events older than the retention period",
			Queue:       tasks.CleanupAuditEventsTask{}.Config().Name,
		},
	})
}

// GetTaskStatus handles GET /api/tasks/:id
func (tc *TasksController) GetTaskStatus(c *gin.Context) {
	taskID := c.Param("id")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status, err := tc.client.Status(ctx, taskID)
	if err != nil {
		respondInternalError(c, err, "task status")
		return
	}
	if status == backlite.TaskStatusNotFound {
		respondNotFound(c, "Task")
		return
	}

	respondPayload(c, TaskStatusResponse{ID: taskID, Status: taskStatusToString(status)})
}

// RunTask handles POST /api/tasks/:type/run
func (tc *TasksController) RunTask(c *gin.Context) {
	taskType := c.Param("type")

	var req RunTaskRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindingError(c, err)
			return
		}
	}

	var task backlite.Task
	switch taskType {
	case taskTypeCleanupAuditEvents:
		retention := req.RetentionDays
		if retention == 0 {
			retention = tc.retentionDays
		}
		task = tasks.CleanupAuditEventsTask{RetentionDays: retention}
	default:
		respondError(c, http.StatusBadRequest, fmt.Sprintf("unknown task type: %s", taskType))
		return
	}

	ids, err := tc.client.Add(task).Save()
	if err != nil {
		respondInternalError(c, err, "enqueue task")
		return
	}

	respondAccepted(c, TaskEnqueuedResponse{TaskID: ids[0], Type: taskType})
}

func taskStatusToString(status backlite.TaskStatus) string {
	switch status {
	case backlite.TaskStatusPending:
		return "pending"
	case backlite.TaskStatusRunning:
		return "running"
	case backlite.TaskStatusSuccess:
		return "success"
	case backlite.TaskStatusFailure:
		return "failure"
	case backlite.TaskStatusNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}
