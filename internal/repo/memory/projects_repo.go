package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/geocoder89/taskhub/internal/domain/project"
	"github.com/geocoder89/taskhub/internal/domain/task"
)

type ProjectsRepo struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]project.Project

	tasks *TasksRepo
}

// NewProjectsRepo returns a project store whose ListTasks reads from tasks.
// Deleting a project never touches tasks.
func NewProjectsRepo(tasks *TasksRepo) *ProjectsRepo {
	return &ProjectsRepo{
		items: make(map[int64]project.Project),
		tasks: tasks,
	}
}

func (r *ProjectsRepo) Create(ctx context.Context, ownerID int64, req project.CreateProjectRequest) (project.Project, error) {
	now := time.Now().UTC()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	p := project.Project{
		ID:          r.nextID,
		Name:        req.Name,
		Description: cloneString(req.Description),
		UserID:      ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	r.items[p.ID] = p

	return p, nil
}

func (r *ProjectsRepo) GetByID(ctx context.Context, id, ownerID int64) (project.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.items[id]
	if !ok || p.UserID != ownerID {
		return project.Project{}, project.ErrNotFound
	}
	return p, nil
}

func (r *ProjectsRepo) ListByOwner(ctx context.Context, ownerID int64) ([]project.Project, error) {
	r.mu.RLock()
	out := make([]project.Project, 0)
	for _, p := range r.items {
		if p.UserID == ownerID {
			out = append(out, p)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})

	return out, nil
}

func (r *ProjectsRepo) Update(ctx context.Context, id, ownerID int64, req project.UpdateProjectRequest) (project.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.items[id]
	if !ok || p.UserID != ownerID {
		return project.Project{}, project.ErrNotFound
	}

	req.Apply(&p)
	p.UpdatedAt = time.Now().UTC()
	r.items[id] = p

	return p, nil
}

func (r *ProjectsRepo) Delete(ctx context.Context, id, ownerID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.items[id]
	if !ok || p.UserID != ownerID {
		return project.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

// ListTasks returns the owner's tasks pointing at projectID. The project row
// itself is not consulted.
func (r *ProjectsRepo) ListTasks(ctx context.Context, projectID, ownerID int64) ([]task.Task, error) {
	if r.tasks == nil {
		return []task.Task{}, nil
	}
	return r.tasks.ListByProject(ctx, projectID, ownerID)
}
