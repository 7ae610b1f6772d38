package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/todokeeper/internal/common"
	"github.com/dmitrijs2005/todokeeper/internal/dbx"
	"github.com/dmitrijs2005/todokeeper/internal/server/models"
)

const taskColumns = `id, text, name, priority, notes, status, due_date, created_at`

// PostgresRepository implements task storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner) (*models.Task, error) {
	var (
		t   models.Task
		due sql.NullTime
	)
	if err := s.Scan(&t.ID, &t.Text, &t.Name, &t.Priority, &t.Notes, &t.Status, &due, &t.CreatedAt); err != nil {
		return nil, err
	}
	if due.Valid {
		d := due.Time
		t.DueDate = &d
	}
	return &t, nil
}

func (r *PostgresRepository) selectTasks(ctx context.Context, query string, args ...any) ([]*models.Task, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select tasks: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks
		ORDER BY created_at, id`
	return r.selectTasks(ctx, query)
}

func (r *PostgresRepository) ListActive(ctx context.Context) ([]*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks
		WHERE status <> $1
		ORDER BY created_at, id`
	return r.selectTasks(ctx, query, models.StatusDone)
}

func (r *PostgresRepository) Create(ctx context.Context, t *models.Task) (*models.Task, error) {
	query := `
		INSERT INTO tasks (text, name, priority, notes, status, due_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + taskColumns

	var due any
	if t.DueDate != nil {
		due = *t.DueDate
	}

	created, err := scanTask(r.db.QueryRowContext(ctx, query,
		t.Text, t.Name, t.Priority, t.Notes, t.Status, due))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return created, nil
}

// Update builds the SET clause from the non-nil fields of u only, so column
// names never come from the caller.
func (r *PostgresRepository) Update(ctx context.Context, id int64, u models.TaskUpdate) (*models.Task, error) {
	if u.Empty() {
		return nil, common.ErrMalformedInput
	}

	var (
		sets []string
		args []any
	)
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if u.Text != nil {
		add("text", *u.Text)
	}
	if u.Name != nil {
		add("name", *u.Name)
	}
	if u.Priority != nil {
		add("priority", *u.Priority)
	}
	if u.Notes != nil {
		add("notes", *u.Notes)
	}
	if u.Status != nil {
		add("status", *u.Status)
	}
	switch {
	case u.ClearDueDate:
		add("due_date", nil)
	case u.DueDate != nil:
		add("due_date", *u.DueDate)
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE tasks SET %s
		WHERE id = $%d
		RETURNING %s`, strings.Join(sets, ", "), len(args), taskColumns)

	t, err := scanTask(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
