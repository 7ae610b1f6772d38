package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/todokeeper/internal/common"
	"github.com/dmitrijs2005/todokeeper/internal/server/config"
	"github.com/dmitrijs2005/todokeeper/internal/server/models"
	"github.com/dmitrijs2005/todokeeper/internal/server/repositories/repomanager"
)

type StickyNoteService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	defaultID   int64
}

func NewStickyNoteService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *StickyNoteService {
	return &StickyNoteService{db: db, repomanager: m, defaultID: cfg.DefaultNoteID}
}

// GetDefault returns the note shown when the caller names none.
func (s *StickyNoteService) GetDefault(ctx context.Context) (*models.StickyNote, error) {
	return s.Get(ctx, s.defaultID)
}

// Get returns the note, or an empty note when none is stored under id.
func (s *StickyNoteService) Get(ctx context.Context, id int64) (*models.StickyNote, error) {
	n, err := s.repomanager.StickyNotes(s.db).Get(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return &models.StickyNote{ID: id}, nil
		}
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	return n, nil
}

// Update stores content under id, creating the note if needed. Empty content
// is allowed and clears the note.
func (s *StickyNoteService) Update(ctx context.Context, id int64, content string) (*models.StickyNote, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: invalid note id", common.ErrMalformedInput)
	}
	if err := s.repomanager.StickyNotes(s.db).Upsert(ctx, id, content); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	return &models.StickyNote{ID: id, Content: content}, nil
}
