package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/bookcatalog/internal/tasks"
)

// TasksController reports on background tasks.
type TasksController struct {
	queue   TaskQueue
	workers int
}

func NewTasksController(queue TaskQueue, workers int) *TasksController {
	return &TasksController{queue: queue, workers: workers}
}

type TaskTypeInfo struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	MaxAttempts int    `json:"max_attempts"`
	Timeout     string `json:"timeout"`
}

// ListTaskTypes handles GET /api/tasks/types
func (tc *TasksController) ListTaskTypes(c *gin.Context) {
	known := tasks.Types()
	types := make([]TaskTypeInfo, 0, len(known))
	for _, t := range known {
		types = append(types, TaskTypeInfo{
			Type:        t.Name,
			Description: t.Description,
			MaxAttempts: t.MaxAttempts,
			Timeout:     t.Timeout.String(),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"task_types": types,
		"workers":    tc.workers,
	})
}

var taskStatusNames = map[backlite.TaskStatus]string{
	backlite.TaskStatusPending:  "pending",
	backlite.TaskStatusRunning:  "running",
	backlite.TaskStatusSuccess:  "success",
	backlite.TaskStatusFailure:  "failure",
	backlite.TaskStatusNotFound: "not_found",
}

// GetTaskStatus handles GET /api/tasks/:id
// Completed tasks are only known until the queue's retention runs out.
func (tc *TasksController) GetTaskStatus(c *gin.Context) {
	taskID, ok := idParam(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status, err := tc.queue.Status(ctx, taskID)
	if err != nil {
		respondInternalError(c, err, "task status")
		return
	}
	if status == backlite.TaskStatusNotFound {
		respondNotFound(c, "task")
		return
	}

	name, ok := taskStatusNames[status]
	if !ok {
		name = "unknown"
	}
	c.JSON(http.StatusOK, gin.H{"id": taskID, "status": name})
}
