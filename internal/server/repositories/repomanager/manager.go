// Package repomanager vends repositories bound to a connection and owns the
// schema migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/todokeeper/internal/dbx"
	"github.com/dmitrijs2005/todokeeper/internal/server/repositories/settings"
	"github.com/dmitrijs2005/todokeeper/internal/server/repositories/stickynotes"
	"github.com/dmitrijs2005/todokeeper/internal/server/repositories/tasks"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Settings(db dbx.DBTX) settings.Repository
	Tasks(db dbx.DBTX) tasks.Repository
	StickyNotes(db dbx.DBTX) stickynotes.Repository
}
