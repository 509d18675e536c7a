package postgres

import (
	"fmt"
	"strings"

	"github.com/geocoder89/taskhub/internal/domain/project"
	"github.com/geocoder89/taskhub/internal/domain/task"
)

const taskColumns = `id, title, description, status, priority, due_date, user_id, project_id, created_at, updated_at`

const projectColumns = `id, name, description, user_id, created_at, updated_at`

const taskOrder = ` ORDER BY due_date ASC NULLS LAST, created_at DESC, id DESC`

// setList accumulates "col = $n" fragments for a dynamic UPDATE.
type setList struct {
	cols []string
	args []any
}

func (s *setList) add(col string, v any) {
	s.args = append(s.args, v)
	s.cols = append(s.cols, fmt.Sprintf("%s = $%d", col, len(s.args)))
}

// build renders the UPDATE statement. updated_at is always refreshed, and the
// id/owner predicates take the last two positions.
func (s setList) build(table string, id, ownerID int64, returning string) (string, []any) {
	cols := append(append([]string{}, s.cols...), "updated_at = NOW()")
	args := append(append([]any{}, s.args...), id, ownerID)

	query := fmt.Sprintf(
		"UPDATE %s SET %s WHERE id = $%d AND user_id = $%d RETURNING %s",
		table,
		strings.Join(cols, ", "),
		len(args)-1,
		len(args),
		returning,
	)
	return query, args
}

func buildProjectUpdate(id, ownerID int64, req project.UpdateProjectRequest) (string, []any) {
	var s setList

	if req.Name.Set {
		s.add("name", req.Name.Value)
	}
	if req.Description.Set {
		s.add("description", req.Description.Ptr())
	}

	return s.build("projects", id, ownerID, projectColumns)
}

func buildTaskUpdate(id, ownerID int64, req task.UpdateTaskRequest) (string, []any) {
	var s setList

	if req.Title.Set {
		s.add("title", req.Title.Value)
	}
	if req.Description.Set {
		s.add("description", req.Description.Ptr())
	}
	if req.Status.Set {
		s.add("status", string(req.Status.Value))
	}
	if req.Priority.Set {
		s.add("priority", string(req.Priority.Value))
	}
	if req.DueDate.Set {
		s.add("due_date", req.DueTime())
	}
	if req.ProjectID.Set {
		s.add("project_id", req.ProjectID.Ptr())
	}

	return s.build("tasks", id, ownerID, taskColumns)
}

func buildTaskList(ownerID int64, filter task.ListFilter) (string, []any) {
	conds := []string{"user_id = $1"}
	args := []any{ownerID}

	argsPosition := 2

	if filter.Status != nil {
		conds = append(conds, fmt.Sprintf("status = $%d", argsPosition))
		args = append(args, string(*filter.Status))
		argsPosition++
	}

	if filter.Priority != nil {
		conds = append(conds, fmt.Sprintf("priority = $%d", argsPosition))
		args = append(args, string(*filter.Priority))
		argsPosition++
	}

	if filter.ProjectID != nil {
		conds = append(conds, fmt.Sprintf("project_id = $%d", argsPosition))
		args = append(args, *filter.ProjectID)
		argsPosition++
	}

	if filter.Search != nil {
		conds = append(conds, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", argsPosition, argsPosition))
		args = append(args, "%"+escapeLike(*filter.Search)+"%")
	}

	query := "SELECT " + taskColumns + " FROM tasks WHERE " + strings.Join(conds, " AND ") + taskOrder

	return query, args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes a search term match literally under LIKE's default
// backslash escape.
func escapeLike(term string) string {
	return likeEscaper.Replace(term)
}
