package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/geocoder89/taskhub/internal/domain/task"
)

type TasksRepo struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]task.Task
}

func NewTasksRepo() *TasksRepo {
	return &TasksRepo{
		items: make(map[int64]task.Task),
	}
}

func (r *TasksRepo) Create(ctx context.Context, ownerID int64, req task.CreateTaskRequest) (task.Task, error) {
	req = req.WithDefaults()
	now := time.Now().UTC()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	t := task.Task{
		ID:          r.nextID,
		Title:       req.Title,
		Description: cloneString(req.Description),
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueTime(),
		UserID:      ownerID,
		ProjectID:   cloneInt64(req.ProjectID),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	r.items[t.ID] = t

	return t, nil
}

func (r *TasksRepo) GetByID(ctx context.Context, id, ownerID int64) (task.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.items[id]
	if !ok || t.UserID != ownerID {
		return task.Task{}, task.ErrNotFound
	}
	return t, nil
}

func (r *TasksRepo) List(ctx context.Context, ownerID int64, filter task.ListFilter) ([]task.Task, error) {
	var search string
	if filter.Search != nil {
		search = strings.ToLower(*filter.Search)
	}

	return r.collect(func(t task.Task) bool {
		if t.UserID != ownerID {
			return false
		}
		if filter.Status != nil && t.Status != *filter.Status {
			return false
		}
		if filter.Priority != nil && t.Priority != *filter.Priority {
			return false
		}
		if filter.ProjectID != nil && (t.ProjectID == nil || *t.ProjectID != *filter.ProjectID) {
			return false
		}
		if filter.Search != nil && !matchesSearch(t, search) {
			return false
		}
		return true
	}), nil
}

func (r *TasksRepo) ListByProject(ctx context.Context, projectID, ownerID int64) ([]task.Task, error) {
	return r.List(ctx, ownerID, task.ListFilter{ProjectID: &projectID})
}

func (r *TasksRepo) Update(ctx context.Context, id, ownerID int64, req task.UpdateTaskRequest) (task.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.items[id]
	if !ok || t.UserID != ownerID {
		return task.Task{}, task.ErrNotFound
	}

	req.Apply(&t)
	t.UpdatedAt = time.Now().UTC()
	r.items[id] = t

	return t, nil
}

func (r *TasksRepo) Delete(ctx context.Context, id, ownerID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.items[id]
	if !ok || t.UserID != ownerID {
		return task.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *TasksRepo) Stats(ctx context.Context, ownerID int64) (task.Stats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var s task.Stats
	for _, t := range r.items {
		if t.UserID == ownerID {
			s.Add(t.Status, 1)
		}
	}
	return s, nil
}

func (r *TasksRepo) collect(keep func(task.Task) bool) []task.Task {
	r.mu.RLock()
	out := make([]task.Task, 0)
	for _, t := range r.items {
		if keep(t) {
			out = append(out, t)
		}
	}
	r.mu.RUnlock()

	SortTasks(out)
	return out
}

// SortTasks orders by due date ascending with missing due dates last, then by
// creation time descending; id descending breaks remaining ties.
func SortTasks(tasks []task.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]

		switch {
		case a.DueDate == nil && b.DueDate != nil:
			return false
		case a.DueDate != nil && b.DueDate == nil:
			return true
		case a.DueDate != nil && b.DueDate != nil && !a.DueDate.Equal(*b.DueDate):
			return a.DueDate.Before(*b.DueDate)
		}

		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
}

func matchesSearch(t task.Task, lowered string) bool {
	if strings.Contains(strings.ToLower(t.Title), lowered) {
		return true
	}
	return t.Description != nil && strings.Contains(strings.ToLower(*t.Description), lowered)
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneInt64(n *int64) *int64 {
	if n == nil {
		return nil
	}
	v := *n
	return &v
}
