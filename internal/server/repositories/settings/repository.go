// Package settings declares the repository contract for the singleton
// settings row that stores the PIN hash.
package settings

import (
	"context"

	"github.com/dmitrijs2005/todokeeper/internal/server/models"
)

// Repository reads and writes the settings row.
type Repository interface {
	// Get returns the row with the given id, or common.ErrorNotFound.
	Get(ctx context.Context, id int64) (*models.Setting, error)

	// UpdatePinHash replaces the hash of an existing row in a single
	// statement. A missing row yields common.ErrorNotFound.
	UpdatePinHash(ctx context.Context, id int64, hash string) error

	// UpsertPinHash creates or replaces the row. Used only for provisioning.
	UpsertPinHash(ctx context.Context, id int64, hash string) error
}
