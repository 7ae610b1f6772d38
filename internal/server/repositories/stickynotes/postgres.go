package stickynotes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/todokeeper/internal/common"
	"github.com/dmitrijs2005/todokeeper/internal/dbx"
	"github.com/dmitrijs2005/todokeeper/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Get returns common.ErrorNotFound when no note with id exists.
func (r *PostgresRepository) Get(ctx context.Context, id int64) (*models.StickyNote, error) {
	query := `SELECT id, content FROM sticky_note WHERE id = $1`

	n := &models.StickyNote{}
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&n.ID, &n.Content); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) Upsert(ctx context.Context, id int64, content string) error {
	query := `
		INSERT INTO sticky_note (id, content)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET content = EXCLUDED.content
	`
	if _, err := r.db.ExecContext(ctx, query, id, content); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
