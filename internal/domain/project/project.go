package project

import (
	"strings"
	"time"

	"github.com/geocoder89/taskhub/internal/apperror"
	"github.com/geocoder89/taskhub/internal/domain"
)

type Project struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	UserID      int64     `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

var ErrNotFound = apperror.NewNotFoundError("Project not found.", nil)

type CreateProjectRequest struct {
	Name        string  `json:"name" binding:"max=200"`
	Description *string `json:"description" binding:"omitempty,max=5000"`
}

func (r CreateProjectRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return apperror.NewValidationError("Project name is required.", nil)
	}
	return nil
}

// UpdateProjectRequest is a partial update: only keys present in the body are applied.
type UpdateProjectRequest struct {
	Name        domain.Optional[string] `json:"name"`
	Description domain.Optional[string] `json:"description"`
}

func (r UpdateProjectRequest) Validate() error {
	if r.Name.Set && (r.Name.Null || strings.TrimSpace(r.Name.Value) == "") {
		return apperror.NewValidationError("Project name cannot be empty.", nil)
	}
	return nil
}

// Apply mutates p with the fields present in the request.
func (r UpdateProjectRequest) Apply(p *Project) {
	if r.Name.Set {
		p.Name = r.Name.Value
	}
	if r.Description.Set {
		p.Description = r.Description.Ptr()
	}
}
