// Package tasks declares the repository contract for to-do items and
// provides its PostgreSQL implementation.
package tasks

import (
	"context"

	"github.com/dmitrijs2005/todokeeper/internal/server/models"
)

type Repository interface {
	// List returns every task ordered by creation time.
	List(ctx context.Context) ([]*models.Task, error)
	// ListActive returns tasks whose status is not done.
	ListActive(ctx context.Context) ([]*models.Task, error)
	// Create inserts t and returns the stored row with id and created_at set.
	Create(ctx context.Context, t *models.Task) (*models.Task, error)
	// Update applies u to the row with the given id and returns the new row.
	Update(ctx context.Context, id int64, u models.TaskUpdate) (*models.Task, error)
	Delete(ctx context.Context, id int64) error
}
