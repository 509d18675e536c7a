package handlers

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/geocoder89/taskhub/internal/apperror"
	"github.com/geocoder89/taskhub/internal/config"
	"github.com/geocoder89/taskhub/internal/domain/task"
	"github.com/gin-gonic/gin"
)

type TaskStore interface {
	Create(ctx context.Context, ownerID int64, req task.CreateTaskRequest) (task.Task, error)
	GetByID(ctx context.Context, id, ownerID int64) (task.Task, error)
	List(ctx context.Context, ownerID int64, filter task.ListFilter) ([]task.Task, error)
	Update(ctx context.Context, id, ownerID int64, req task.UpdateTaskRequest) (task.Task, error)
	Delete(ctx context.Context, id, ownerID int64) error
	Stats(ctx context.Context, ownerID int64) (task.Stats, error)
}

type TasksHandler struct {
	repo TaskStore
}

func NewTasksHandler(repo TaskStore) *TasksHandler {
	return &TasksHandler{repo: repo}
}

func (h *TasksHandler) CreateTask(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var req task.CreateTaskRequest

	if !BindJSON(ctx, &req) {
		return
	}

	if err := req.Validate(); err != nil {
		RespondAppError(ctx, err, "Could not create task")
		return
	}

	cctx, cancel := config.WithTimeoutFrom(ctx.Request.Context(), requestTimeout)
	defer cancel()

	t, err := h.repo.Create(cctx, userID, req)
	if err != nil {
		RespondAppError(ctx, err, "Could not create task")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"message": "Task created successfully.",
		"task":    t,
	})
}

func (h *TasksHandler) ListTasks(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	filter, err := parseListFilter(ctx.Request.URL.Query())
	if err != nil {
		RespondAppError(ctx, err, "Could not list tasks")
		return
	}

	cctx, cancel := config.WithTimeoutFrom(ctx.Request.Context(), requestTimeout)
	defer cancel()

	tasks, err := h.repo.List(cctx, userID, filter)
	if err != nil {
		RespondAppError(ctx, err, "Could not list tasks")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"count": len(tasks),
		"tasks": tasks,
	})
}

func (h *TasksHandler) TaskStats(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeoutFrom(ctx.Request.Context(), requestTimeout)
	defer cancel()

	stats, err := h.repo.Stats(cctx, userID)
	if err != nil {
		RespondAppError(ctx, err, "Could not compute task stats")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"stats": stats})
}

func (h *TasksHandler) GetTaskByID(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeoutFrom(ctx.Request.Context(), requestTimeout)
	defer cancel()

	t, err := h.repo.GetByID(cctx, id, userID)
	if err != nil {
		RespondAppError(ctx, err, "Could not fetch task")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, gin.H{"task": t})
}

func (h *TasksHandler) UpdateTask(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}

	var req task.UpdateTaskRequest

	if !BindJSON(ctx, &req) {
		return
	}

	if err := req.Validate(); err != nil {
		RespondAppError(ctx, err, "Could not update task")
		return
	}

	cctx, cancel := config.WithTimeoutFrom(ctx.Request.Context(), requestTimeout)
	defer cancel()

	t, err := h.repo.Update(cctx, id, userID, req)
	if err != nil {
		RespondAppError(ctx, err, "Could not update task")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Task updated successfully.",
		"task":    t,
	})
}

func (h *TasksHandler) DeleteTask(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeoutFrom(ctx.Request.Context(), requestTimeout)
	defer cancel()

	if err := h.repo.Delete(cctx, id, userID); err != nil {
		RespondAppError(ctx, err, "Could not delete task")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully."})
}

// parseListFilter reads the optional task filters. Empty values mean
// "not filtered".
func parseListFilter(q url.Values) (task.ListFilter, error) {
	var f task.ListFilter

	if v := strings.TrimSpace(q.Get("status")); v != "" {
		s := task.Status(v)
		if !s.IsValid() {
			return task.ListFilter{}, apperror.NewValidationError("Status must be pending, in_progress, or completed.", nil)
		}
		f.Status = &s
	}

	if v := strings.TrimSpace(q.Get("priority")); v != "" {
		p := task.Priority(v)
		if !p.IsValid() {
			return task.ListFilter{}, apperror.NewValidationError("Priority must be low, medium, or high.", nil)
		}
		f.Priority = &p
	}

	if v := strings.TrimSpace(q.Get("project_id")); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return task.ListFilter{}, apperror.NewValidationError("project_id must be an integer.", err)
		}
		f.ProjectID = &id
	}

	if v := strings.TrimSpace(q.Get("search")); v != "" {
		f.Search = &v
	}

	return f, nil
}
