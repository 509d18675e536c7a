package task

import (
	"strings"
	"time"

	"github.com/geocoder89/taskhub/internal/apperror"
	"github.com/geocoder89/taskhub/internal/domain"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Any status may move to any other; only membership is checked.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type Task struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Status      Status     `json:"status"`
	Priority    Priority   `json:"priority"`
	DueDate     *time.Time `json:"due_date"`
	UserID      int64      `json:"user_id"`
	ProjectID   *int64     `json:"project_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

var ErrNotFound = apperror.NewNotFoundError("Task not found.", nil)

var (
	errInvalidStatus   = apperror.NewValidationError("Status must be pending, in_progress, or completed.", nil)
	errInvalidPriority = apperror.NewValidationError("Priority must be low, medium, or high.", nil)
)

type CreateTaskRequest struct {
	Title       string   `json:"title" binding:"max=500"`
	Description *string  `json:"description" binding:"omitempty,max=10000"`
	Status      Status   `json:"status"`
	Priority    Priority `json:"priority"`
	DueDate     *DueDate `json:"due_date"`
	ProjectID   *int64   `json:"project_id"`
}

func (r CreateTaskRequest) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return apperror.NewValidationError("Task title is required.", nil)
	}
	if r.Status != "" && !r.Status.IsValid() {
		return errInvalidStatus
	}
	if r.Priority != "" && !r.Priority.IsValid() {
		return errInvalidPriority
	}
	return nil
}

// WithDefaults fills status and priority when the caller left them out.
func (r CreateTaskRequest) WithDefaults() CreateTaskRequest {
	if r.Status == "" {
		r.Status = StatusPending
	}
	if r.Priority == "" {
		r.Priority = PriorityMedium
	}
	return r
}

// DueTime converts the optional due date to the stored representation.
func (r CreateTaskRequest) DueTime() *time.Time {
	if r.DueDate == nil {
		return nil
	}
	t := r.DueDate.Time()
	return &t
}

// UpdateTaskRequest is a partial update over the mutable task fields.
type UpdateTaskRequest struct {
	Title       domain.Optional[string]   `json:"title"`
	Description domain.Optional[string]   `json:"description"`
	Status      domain.Optional[Status]   `json:"status"`
	Priority    domain.Optional[Priority] `json:"priority"`
	DueDate     domain.Optional[DueDate]  `json:"due_date"`
	ProjectID   domain.Optional[int64]    `json:"project_id"`
}

func (r UpdateTaskRequest) Validate() error {
	if r.Title.Set && (r.Title.Null || strings.TrimSpace(r.Title.Value) == "") {
		return apperror.NewValidationError("Task title cannot be empty.", nil)
	}
	if r.Status.Set && (r.Status.Null || !r.Status.Value.IsValid()) {
		return errInvalidStatus
	}
	if r.Priority.Set && (r.Priority.Null || !r.Priority.Value.IsValid()) {
		return errInvalidPriority
	}
	return nil
}

// Apply mutates t with the fields present in the request.
func (r UpdateTaskRequest) Apply(t *Task) {
	if r.Title.Set {
		t.Title = r.Title.Value
	}
	if r.Description.Set {
		t.Description = r.Description.Ptr()
	}
	if r.Status.Set {
		t.Status = r.Status.Value
	}
	if r.Priority.Set {
		t.Priority = r.Priority.Value
	}
	if r.DueDate.Set {
		t.DueDate = r.DueTime()
	}
	if r.ProjectID.Set {
		t.ProjectID = r.ProjectID.Ptr()
	}
}

// DueTime returns the new due date, nil when the request clears it.
func (r UpdateTaskRequest) DueTime() *time.Time {
	if !r.DueDate.Present() {
		return nil
	}
	v := r.DueDate.Value.Time()
	return &v
}

// ListFilter holds the optional, conjunctive filters of a task listing.
// nil means "not filtered".
type ListFilter struct {
	Status    *Status
	Priority  *Priority
	ProjectID *int64
	Search    *string
}

type Stats struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	InProgress int `json:"in_progress"`
	Completed  int `json:"completed"`
}

func (s *Stats) Add(status Status, n int) {
	s.Total += n
	switch status {
	case StatusPending:
		s.Pending += n
	case StatusInProgress:
		s.InProgress += n
	case StatusCompleted:
		s.Completed += n
	}
}
