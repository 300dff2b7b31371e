package delivery

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"remindkit/internal/session"
	"remindkit/internal/task/domain"
	"remindkit/internal/task/usecase"
)

// TaskHandler handles task-related HTTP requests
type TaskHandler struct {
	taskUsecase usecase.TaskUsecase
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(taskUsecase usecase.TaskUsecase) *TaskHandler {
	return &TaskHandler{
		taskUsecase: taskUsecase,
	}
}

// GetTasks returns tasks matching the query filters
// GET /api/tasks?status=pending&dueToday=1&overdue=1&upcomingDays=7&q=milk
func (h *TaskHandler) GetTasks(c *gin.Context) {
	sess := session.FromContext(c)

	upcomingDays, _ := strconv.Atoi(c.DefaultQuery("upcomingDays", "0"))
	filter := usecase.Filter{
		Status:       c.Query("status"),
		DueToday:     c.Query("dueToday") == "1" || c.Query("dueToday") == "true",
		Overdue:      c.Query("overdue") == "1" || c.Query("overdue") == "true",
		UpcomingDays: upcomingDays,
		Query:        c.Query("q"),
	}

	tasks, err := h.taskUsecase.List(sess, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": tasks,
		"total": len(tasks),
	})
}

// GetSummary returns aggregate counts over the visible tasks
// GET /api/tasks/summary
func (h *TaskHandler) GetSummary(c *gin.Context) {
	sess := session.FromContext(c)

	summary, err := h.taskUsecase.Summary(sess)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GetTaskByID returns a specific task
// GET /api/tasks/:id
func (h *TaskHandler) GetTaskByID(c *gin.Context) {
	sess := session.FromContext(c)

	task, err := h.taskUsecase.Get(sess, c.Param("id"))
	if err != nil {
		respondTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// GetOccurrences previews the virtual occurrence instants in a range
// GET /api/tasks/:id/occurrences?from=...&to=...
func (h *TaskHandler) GetOccurrences(c *gin.Context) {
	sess := session.FromContext(c)

	from, err := time.Parse(time.RFC3339, c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from timestamp"})
		return
	}
	to, err := time.Parse(time.RFC3339, c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to timestamp"})
		return
	}

	occurrences, err := h.taskUsecase.Occurrences(sess, c.Param("id"), from, to)
	if err != nil {
		respondTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"occurrences": occurrences})
}

// CreateTask creates a new task
// POST /api/tasks
func (h *TaskHandler) CreateTask(c *gin.Context) {
	sess := session.FromContext(c)

	var req usecase.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.taskUsecase.Create(sess, req)
	if err != nil {
		respondTaskError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

// UpdateTask updates an existing task
// PUT /api/tasks/:id
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	sess := session.FromContext(c)

	var req usecase.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.taskUsecase.Update(sess, c.Param("id"), req)
	if err != nil {
		respondTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// CompleteTask marks a task as completed
// POST /api/tasks/:id/complete
func (h *TaskHandler) CompleteTask(c *gin.Context) {
	sess := session.FromContext(c)

	task, err := h.taskUsecase.Complete(sess, c.Param("id"))
	if err != nil {
		respondTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// SnoozeRequest is the body for snoozing a task
type SnoozeRequest struct {
	Until time.Time `json:"until" binding:"required"`
}

// SnoozeTask suppresses a task until the given instant
// POST /api/tasks/:id/snooze
func (h *TaskHandler) SnoozeTask(c *gin.Context) {
	sess := session.FromContext(c)

	var req SnoozeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.taskUsecase.Snooze(sess, c.Param("id"), req.Until)
	if err != nil {
		respondTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// ShareRequest is the body for replacing a task's sharedWith set
type ShareRequest struct {
	SharedWith []string `json:"sharedWith"`
}

// ShareTask replaces the task's collaborator set; an empty set unshares
// PUT /api/tasks/:id/share
func (h *TaskHandler) ShareTask(c *gin.Context) {
	sess := session.FromContext(c)

	var req ShareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.taskUsecase.Share(sess, c.Param("id"), req.SharedWith)
	if err != nil {
		respondTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// DeleteTask removes a task (tombstone when signed in, hard remove offline)
// DELETE /api/tasks/:id
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	sess := session.FromContext(c)

	if err := h.taskUsecase.Delete(sess, c.Param("id")); err != nil {
		respondTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func respondTaskError(c *gin.Context, err error) {
	var validationErr *domain.ValidationError
	switch {
	case errors.Is(err, usecase.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
	case errors.Is(err, usecase.ErrAccessDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
