package handlers

import (
	"context"
	"net/http"

	"github.com/geocoder89/taskhub/internal/config"
	"github.com/geocoder89/taskhub/internal/domain/project"
	"github.com/geocoder89/taskhub/internal/domain/task"
	"github.com/gin-gonic/gin"
)

type ProjectStore interface {
	Create(ctx context.Context, ownerID int64, req project.CreateProjectRequest) (project.Project, error)
	GetByID(ctx context.Context, id, ownerID int64) (project.Project, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]project.Project, error)
	Update(ctx context.Context, id, ownerID int64, req project.UpdateProjectRequest) (project.Project, error)
	Delete(ctx context.Context, id, ownerID int64) error
	ListTasks(ctx context.Context, projectID, ownerID int64) ([]task.Task, error)
}

type ProjectsHandler struct {
	repo ProjectStore
}

func NewProjectsHandler(repo ProjectStore) *ProjectsHandler {
	return &ProjectsHandler{repo: repo}
}

func (h *ProjectsHandler) CreateProject(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var req project.CreateProjectRequest

	if !BindJSON(ctx, &req) {
		return
	}

	if err := req.Validate(); err != nil {
		RespondAppError(ctx, err, "Could not create project")
		return
	}

	cctx, cancel := config.WithTimeoutFrom(ctx.Request.Context(), requestTimeout)
	defer cancel()

	p, err := h.repo.Create(cctx, userID, req)
	if err != nil {
		RespondAppError(ctx, err, "Could not create project")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"message": "Project created successfully.",
		"project": p,
	})
}

func (h *ProjectsHandler) ListProjects(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeoutFrom(ctx.Request.Context(), requestTimeout)
	defer cancel()

	projects, err := h.repo.ListByOwner(cctx, userID)
	if err != nil {
		RespondAppError(ctx, err, "Could not list projects")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"count":    len(projects),
		"projects": projects,
	})
}

func (h *ProjectsHandler) GetProjectByID(ctx *gin.Context) {
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

	p, err := h.repo.GetByID(cctx, id, userID)
	if err != nil {
		RespondAppError(ctx, err, "Could not fetch project")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, gin.H{"project": p})
}

func (h *ProjectsHandler) UpdateProject(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}

	var req project.UpdateProjectRequest

	if !BindJSON(ctx, &req) {
		return
	}

	if err := req.Validate(); err != nil {
		RespondAppError(ctx, err, "Could not update project")
		return
	}

	cctx, cancel := config.WithTimeoutFrom(ctx.Request.Context(), requestTimeout)
	defer cancel()

	p, err := h.repo.Update(cctx, id, userID, req)
	if err != nil {
		RespondAppError(ctx, err, "Could not update project")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Project updated successfully.",
		"project": p,
	})
}

func (h *ProjectsHandler) DeleteProject(ctx *gin.Context) {
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
		RespondAppError(ctx, err, "Could not delete project")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Project deleted successfully."})
}

// ListProjectTasks answers 404 unless the caller owns the project.
func (h *ProjectsHandler) ListProjectTasks(ctx *gin.Context) {
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

	if _, err := h.repo.GetByID(cctx, id, userID); err != nil {
		RespondAppError(ctx, err, "Could not list project tasks")
		return
	}

	tasks, err := h.repo.ListTasks(cctx, id, userID)
	if err != nil {
		RespondAppError(ctx, err, "Could not list project tasks")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"count": len(tasks),
		"tasks": tasks,
	})
}
