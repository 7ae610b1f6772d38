package services

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/todokeeper/internal/common"
	"github.com/dmitrijs2005/todokeeper/internal/dbx"
	"github.com/dmitrijs2005/todokeeper/internal/server/models"
	settingsrepo "github.com/dmitrijs2005/todokeeper/internal/server/repositories/settings"
	stickynotesrepo "github.com/dmitrijs2005/todokeeper/internal/server/repositories/stickynotes"
	tasksrepo "github.com/dmitrijs2005/todokeeper/internal/server/repositories/tasks"
)

// --- settings ---

type fakeSettingsRepo struct {
	mu      sync.Mutex
	rows    map[int64]string
	getErr  error
	updErr  error
	upsErr  error
	updates int
}

func newFakeSettingsRepo(hash string) *fakeSettingsRepo {
	return &fakeSettingsRepo{rows: map[int64]string{common.SettingsID: hash}}
}

func (f *fakeSettingsRepo) Get(ctx context.Context, id int64) (*models.Setting, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	h, ok := f.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &models.Setting{ID: id, PinHash: h}, nil
}

func (f *fakeSettingsRepo) UpdatePinHash(ctx context.Context, id int64, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updErr != nil {
		return f.updErr
	}
	if _, ok := f.rows[id]; !ok {
		return common.ErrorNotFound
	}
	f.rows[id] = hash
	f.updates++
	return nil
}

func (f *fakeSettingsRepo) UpsertPinHash(ctx context.Context, id int64, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsErr != nil {
		return f.upsErr
	}
	if f.rows == nil {
		f.rows = map[int64]string{}
	}
	f.rows[id] = hash
	return nil
}

func (f *fakeSettingsRepo) hash() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows[common.SettingsID]
}

// --- tasks ---

type fakeTasksRepo struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]*models.Task

	listErr   error
	activeErr error
	createErr error
	updateErr error
	deleteErr error

	lastUpdate models.TaskUpdate
}

func newFakeTasksRepo(tasks ...*models.Task) *fakeTasksRepo {
	f := &fakeTasksRepo{rows: map[int64]*models.Task{}}
	for _, t := range tasks {
		f.rows[t.ID] = t
		if t.ID > f.nextID {
			f.nextID = t.ID
		}
	}
	return f
}

func (f *fakeTasksRepo) sorted(filter func(*models.Task) bool) []*models.Task {
	out := make([]*models.Task, 0, len(f.rows))
	for _, t := range f.rows {
		if filter == nil || filter(t) {
			cp := *t
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeTasksRepo) List(ctx context.Context) ([]*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.sorted(nil), nil
}

func (f *fakeTasksRepo) ListActive(ctx context.Context) ([]*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.activeErr != nil {
		return nil, f.activeErr
	}
	return f.sorted(func(t *models.Task) bool { return t.Status != models.StatusDone }), nil
}

func (f *fakeTasksRepo) Create(ctx context.Context, t *models.Task) (*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextID++
	cp := *t
	cp.ID = f.nextID
	cp.CreatedAt = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	f.rows[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (f *fakeTasksRepo) Update(ctx context.Context, id int64, u models.TaskUpdate) (*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastUpdate = u
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	t, ok := f.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if u.Text != nil {
		t.Text = *u.Text
	}
	if u.Name != nil {
		t.Name = *u.Name
	}
	if u.Priority != nil {
		t.Priority = *u.Priority
	}
	if u.Notes != nil {
		t.Notes = *u.Notes
	}
	if u.Status != nil {
		t.Status = *u.Status
	}
	if u.ClearDueDate {
		t.DueDate = nil
	} else if u.DueDate != nil {
		d := *u.DueDate
		t.DueDate = &d
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTasksRepo) Delete(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.rows[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.rows, id)
	return nil
}

// --- sticky notes ---

type fakeNotesRepo struct {
	mu     sync.Mutex
	rows   map[int64]string
	getErr error
	upsErr error
}

func newFakeNotesRepo(rows map[int64]string) *fakeNotesRepo {
	if rows == nil {
		rows = map[int64]string{}
	}
	return &fakeNotesRepo{rows: rows}
}

func (f *fakeNotesRepo) Get(ctx context.Context, id int64) (*models.StickyNote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	c, ok := f.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &models.StickyNote{ID: id, Content: c}, nil
}

func (f *fakeNotesRepo) Upsert(ctx context.Context, id int64, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsErr != nil {
		return f.upsErr
	}
	f.rows[id] = content
	return nil
}

// --- manager ---

type fakeRepoManager struct {
	s *fakeSettingsRepo
	t *fakeTasksRepo
	n *fakeNotesRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error       { return nil }
func (m *fakeRepoManager) Settings(db dbx.DBTX) settingsrepo.Repository       { return m.s }
func (m *fakeRepoManager) Tasks(db dbx.DBTX) tasksrepo.Repository             { return m.t }
func (m *fakeRepoManager) StickyNotes(db dbx.DBTX) stickynotesrepo.Repository { return m.n }
