package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/todokeeper/internal/common"
	"github.com/dmitrijs2005/todokeeper/internal/dbx"
	"github.com/dmitrijs2005/todokeeper/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, id int64) (*models.Setting, error) {
	query :=
		`SELECT id, pin_hash FROM settings
		 WHERE id = $1
		 `

	s := &models.Setting{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&s.ID, &s.PinHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return s, nil
}

func (r *PostgresRepository) UpdatePinHash(ctx context.Context, id int64, hash string) error {
	query :=
		`UPDATE settings SET pin_hash = $1
		 WHERE id = $2
		 `

	res, err := r.db.ExecContext(ctx, query, hash, id)
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

func (r *PostgresRepository) UpsertPinHash(ctx context.Context, id int64, hash string) error {
	query :=
		`INSERT INTO settings (id, pin_hash)
		 VALUES ($1, $2)
		 ON CONFLICT (id) DO UPDATE SET pin_hash = EXCLUDED.pin_hash
		 `

	if _, err := r.db.ExecContext(ctx, query, id, hash); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}
