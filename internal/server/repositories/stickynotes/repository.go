// Package stickynotes stores free-text notes keyed by a small integer id.
package stickynotes

import (
	"context"

	"github.com/dmitrijs2005/todokeeper/internal/server/models"
)

type Repository interface {
	Get(ctx context.Context, id int64) (*models.StickyNote, error)
	Upsert(ctx context.Context, id int64, content string) error
}
