package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/taskhub/internal/domain/task"
	"github.com/geocoder89/taskhub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TasksRepo struct {
	pool *pgxpool.Pool
	observer
}

func NewTasksRepo(pool *pgxpool.Pool, prom *observability.Prom) *TasksRepo {
	return &TasksRepo{
		pool:     pool,
		observer: newObserver(prom),
	}
}

func (r *TasksRepo) Create(ctx context.Context, ownerID int64, req task.CreateTaskRequest) (task.Task, error) {
	req = req.WithDefaults()

	var t task.Task
	err := r.observe(ctx, "tasks.create", func(ctx context.Context) error {
		return scanTask(r.pool.QueryRow(ctx,
			`INSERT INTO tasks (title, description, status, priority, due_date, user_id, project_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING `+taskColumns,
			req.Title,
			req.Description,
			string(req.Status),
			string(req.Priority),
			req.DueTime(),
			ownerID,
			req.ProjectID,
		), &t)
	})
	if err != nil {
		return task.Task{}, err
	}

	return t, nil
}

func (r *TasksRepo) GetByID(ctx context.Context, id, ownerID int64) (task.Task, error) {
	var t task.Task

	err := r.observe(ctx, "tasks.get_by_id", func(ctx context.Context) error {
		return scanTask(r.pool.QueryRow(ctx,
			`SELECT `+taskColumns+` FROM tasks WHERE id = $1 AND user_id = $2`,
			id, ownerID,
		), &t)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return task.Task{}, task.ErrNotFound
		}
		return task.Task{}, err
	}

	return t, nil
}

func (r *TasksRepo) List(ctx context.Context, ownerID int64, filter task.ListFilter) ([]task.Task, error) {
	query, args := buildTaskList(ownerID, filter)

	var output []task.Task
	err := r.observe(ctx, "tasks.list", func(ctx context.Context) error {
		var err error
		output, err = queryTasks(ctx, r.pool, query, args)
		return err
	})
	if err != nil {
		return nil, err
	}

	return output, nil
}

func (r *TasksRepo) Update(ctx context.Context, id, ownerID int64, req task.UpdateTaskRequest) (task.Task, error) {
	query, args := buildTaskUpdate(id, ownerID, req)

	var t task.Task
	err := r.observe(ctx, "tasks.update", func(ctx context.Context) error {
		return scanTask(r.pool.QueryRow(ctx, query, args...), &t)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return task.Task{}, task.ErrNotFound
		}
		return task.Task{}, err
	}

	return t, nil
}

func (r *TasksRepo) Delete(ctx context.Context, id, ownerID int64) error {
	var affected int64

	err := r.observe(ctx, "tasks.delete", func(ctx context.Context) error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1 AND user_id = $2`, id, ownerID)
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
		return task.ErrNotFound
	}

	return nil
}

func (r *TasksRepo) Stats(ctx context.Context, ownerID int64) (task.Stats, error) {
	var s task.Stats

	err := r.observe(ctx, "tasks.stats", func(ctx context.Context) error {
		rows, err := r.pool.Query(ctx,
			`SELECT status, COUNT(*) FROM tasks WHERE user_id = $1 GROUP BY status`,
			ownerID,
		)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var status string
			var n int
			if err := rows.Scan(&status, &n); err != nil {
				return err
			}
			s.Add(task.Status(status), n)
		}
		return rows.Err()
	})
	if err != nil {
		return task.Stats{}, err
	}

	return s, nil
}

func queryTasks(ctx context.Context, pool *pgxpool.Pool, query string, args []any) ([]task.Task, error) {
	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	output := make([]task.Task, 0)
	for rows.Next() {
		var t task.Task
		if err := scanTask(rows, &t); err != nil {
			return nil, err
		}
		output = append(output, t)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return output, nil
}

func scanTask(row pgx.Row, t *task.Task) error {
	var status, priority string

	err := row.Scan(
		&t.ID,
		&t.Title,
		&t.Description,
		&status,
		&priority,
		&t.DueDate,
		&t.UserID,
		&t.ProjectID,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return err
	}

	t.Status = task.Status(status)
	t.Priority = task.Priority(priority)
	return nil
}
