package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/taskhub/internal/domain/project"
	"github.com/geocoder89/taskhub/internal/domain/task"
	"github.com/geocoder89/taskhub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ProjectsRepo struct {
	pool *pgxpool.Pool
	observer
}

func NewProjectsRepo(pool *pgxpool.Pool, prom *observability.Prom) *ProjectsRepo {
	return &ProjectsRepo{
		pool:     pool,
		observer: newObserver(prom),
	}
}

func (r *ProjectsRepo) Create(ctx context.Context, ownerID int64, req project.CreateProjectRequest) (project.Project, error) {
	var p project.Project

	err := r.observe(ctx, "projects.create", func(ctx context.Context) error {
		return scanProject(r.pool.QueryRow(ctx,
			`INSERT INTO projects (name, description, user_id)
			VALUES ($1, $2, $3)
			RETURNING `+projectColumns,
			req.Name, req.Description, ownerID,
		), &p)
	})
	if err != nil {
		return project.Project{}, err
	}

	return p, nil
}

func (r *ProjectsRepo) GetByID(ctx context.Context, id, ownerID int64) (project.Project, error) {
	var p project.Project

	err := r.observe(ctx, "projects.get_by_id", func(ctx context.Context) error {
		return scanProject(r.pool.QueryRow(ctx,
			`SELECT `+projectColumns+` FROM projects WHERE id = $1 AND user_id = $2`,
			id, ownerID,
		), &p)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return project.Project{}, project.ErrNotFound
		}
		return project.Project{}, err
	}

	return p, nil
}

func (r *ProjectsRepo) ListByOwner(ctx context.Context, ownerID int64) ([]project.Project, error) {
	output := make([]project.Project, 0)

	err := r.observe(ctx, "projects.list_by_owner", func(ctx context.Context) error {
		rows, err := r.pool.Query(ctx,
			`SELECT `+projectColumns+` FROM projects
			WHERE user_id = $1
			ORDER BY created_at DESC, id DESC`,
			ownerID,
		)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var p project.Project
			if err := scanProject(rows, &p); err != nil {
				return err
			}
			output = append(output, p)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	return output, nil
}

func (r *ProjectsRepo) Update(ctx context.Context, id, ownerID int64, req project.UpdateProjectRequest) (project.Project, error) {
	query, args := buildProjectUpdate(id, ownerID, req)

	var p project.Project
	err := r.observe(ctx, "projects.update", func(ctx context.Context) error {
		return scanProject(r.pool.QueryRow(ctx, query, args...), &p)
	})
	if err != nil {
		// zero rows: absent or owned by someone else
		if errors.Is(err, pgx.ErrNoRows) {
			return project.Project{}, project.ErrNotFound
		}
		return project.Project{}, err
	}

	return p, nil
}

func (r *ProjectsRepo) Delete(ctx context.Context, id, ownerID int64) error {
	var affected int64

	err := r.observe(ctx, "projects.delete", func(ctx context.Context) error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1 AND user_id = $2`, id, ownerID)
		if err != nil {
			return err
		}
		affected = tag.RowsAffected()
		return nil
	})
	if err != nil {
		return err
	}

	if affected == 0 {
		return project.ErrNotFound
	}

	return nil
}

func (r *ProjectsRepo) ListTasks(ctx context.Context, projectID, ownerID int64) ([]task.Task, error) {
	query, args := buildTaskList(ownerID, task.ListFilter{ProjectID: &projectID})

	var output []task.Task
	err := r.observe(ctx, "projects.list_tasks", func(ctx context.Context) error {
		var err error
		output, err = queryTasks(ctx, r.pool, query, args)
		return err
	})
	if err != nil {
		return nil, err
	}

	return output, nil
}

func scanProject(row pgx.Row, p *project.Project) error {
	return row.Scan(&p.ID, &p.Name, &p.Description, &p.UserID, &p.CreatedAt, &p.UpdatedAt)
}
