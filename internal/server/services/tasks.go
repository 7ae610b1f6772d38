package services

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/dmitrijs2005/todokeeper/internal/common"
	"github.com/dmitrijs2005/todokeeper/internal/logging"
	"github.com/dmitrijs2005/todokeeper/internal/server/config"
	"github.com/dmitrijs2005/todokeeper/internal/server/models"
	"github.com/dmitrijs2005/todokeeper/internal/server/repositories/repomanager"
)

const (
	unknownSender = "Unknown Sender"
	noSubject     = "(No Subject)"
)

var senderNameRe = regexp.MustCompile(`^(.*?)\s*<.*>$`)

// NewTask is the input of TaskService.Create. Empty Priority and Status take
// the defaults New and todo.
type NewTask struct {
	Text     string     `json:"text"`
	Name     string     `json:"name"`
	Priority string     `json:"priority"`
	Notes    string     `json:"notes"`
	Status   string     `json:"status"`
	DueDate  *time.Time `json:"due_date"`
}

// TaskService owns the validation rules for tasks, whatever the entry point
// (UI, email webhook or automation hook).
type TaskService struct {
	db            *sql.DB
	repomanager   repomanager.RepositoryManager
	automationKey string
	log           logging.Logger
}

func NewTaskService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, log logging.Logger) *TaskService {
	return &TaskService{
		db:            db,
		repomanager:   m,
		automationKey: cfg.AutomationSecretKey,
		log:           log.With("module", "tasks"),
	}
}

// List returns all tasks ordered by creation time.
func (s *TaskService) List(ctx context.Context) ([]*models.Task, error) {
	tasks, err := s.repomanager.Tasks(s.db).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	return tasks, nil
}

// Create validates t and stores it. Text is required; priority and status
// default to New and todo and must belong to their enumerations.
func (s *TaskService) Create(ctx context.Context, t NewTask) (*models.Task, error) {
	task := &models.Task{
		Text:     strings.TrimSpace(t.Text),
		Name:     strings.TrimSpace(t.Name),
		Priority: t.Priority,
		Notes:    strings.TrimSpace(t.Notes),
		Status:   t.Status,
		DueDate:  t.DueDate,
	}
	if task.Priority == "" {
		task.Priority = models.PriorityNew
	}
	if task.Status == "" {
		task.Status = models.StatusTodo
	}

	if task.Text == "" {
		return nil, fmt.Errorf("%w: text is required", common.ErrMalformedInput)
	}
	if err := validateEnums(&task.Priority, &task.Status); err != nil {
		return nil, err
	}

	return s.insert(ctx, task)
}

// Update applies a partial update. At least one field must be set.
func (s *TaskService) Update(ctx context.Context, id int64, u models.TaskUpdate) (*models.Task, error) {
	if u.Empty() {
		return nil, fmt.Errorf("%w: no fields to update", common.ErrMalformedInput)
	}
	if u.Text != nil {
		text := strings.TrimSpace(*u.Text)
		if text == "" {
			return nil, fmt.Errorf("%w: text cannot be empty", common.ErrMalformedInput)
		}
		u.Text = &text
	}
	if err := validateEnums(u.Priority, u.Status); err != nil {
		return nil, err
	}

	t, err := s.repomanager.Tasks(s.db).Update(ctx, id, u)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	return t, nil
}

func (s *TaskService) Delete(ctx context.Context, id int64) error {
	if err := s.repomanager.Tasks(s.db).Delete(ctx, id); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	return nil
}

// CreateFromEmail turns an authenticated inbound mail into a task: the
// subject becomes the text and the sender's display name the name.
func (s *TaskService) CreateFromEmail(ctx context.Context, sender, subject string) (*models.Task, error) {
	text := strings.TrimSpace(subject)
	if text == "" {
		text = noSubject
	}

	return s.insert(ctx, &models.Task{
		Text:     text,
		Name:     SenderName(sender),
		Priority: models.PriorityNew,
		Status:   models.StatusTodo,
	})
}

// AutomationRequest is the body of the automation hook.
type AutomationRequest struct {
	Title     string `json:"task_title"`
	DueDate   string `json:"due_date_string"`
	Notes     string `json:"notes_content"`
	SecretKey string `json:"secret_key"`
}

// CreateFromAutomation checks the shared key before anything else. An unset
// key on the server side yields ErrNotConfigured, a wrong one
// ErrAuthenticationFailed. A due date that cannot be parsed is dropped.
func (s *TaskService) CreateFromAutomation(ctx context.Context, req AutomationRequest) (*models.Task, error) {
	if s.automationKey == "" {
		return nil, common.ErrNotConfigured
	}
	if subtle.ConstantTimeCompare([]byte(req.SecretKey), []byte(s.automationKey)) != 1 {
		return nil, common.ErrAuthenticationFailed
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: task_title is required", common.ErrMalformedInput)
	}

	task := &models.Task{
		Text:     title,
		Priority: models.PriorityNew,
		Notes:    strings.TrimSpace(req.Notes),
		Status:   models.StatusTodo,
	}
	if req.DueDate != "" {
		if d, ok := ParseDueDate(req.DueDate); ok {
			task.DueDate = &d
		} else {
			s.log.Warn(ctx, "could not parse due date, ignoring", "due_date_string", req.DueDate)
		}
	}

	return s.insert(ctx, task)
}

// SenderName extracts the display name from "Name <addr>". It falls back to
// the trimmed field, or "Unknown Sender" when the field is empty.
func SenderName(from string) string {
	if strings.TrimSpace(from) == "" {
		return unknownSender
	}
	if m := senderNameRe.FindStringSubmatch(from); m != nil && strings.TrimSpace(m[1]) != "" {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(from)
}

// --- helpers below ---

func (s *TaskService) insert(ctx context.Context, t *models.Task) (*models.Task, error) {
	created, err := s.repomanager.Tasks(s.db).Create(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	s.log.Info(ctx, "task created", "id", created.ID)
	return created, nil
}

func validateEnums(priority, status *string) error {
	if priority != nil && !slices.Contains(models.Priorities, *priority) {
		return fmt.Errorf("%w: unknown priority %q", common.ErrMalformedInput, *priority)
	}
	if status != nil && !slices.Contains(models.Statuses, *status) {
		return fmt.Errorf("%w: unknown status %q", common.ErrMalformedInput, *status)
	}
	return nil
}

// ParseDueDate accepts a calendar date (2006-01-02) or an RFC 3339 timestamp
// and returns it in UTC.
func ParseDueDate(v string) (time.Time, bool) {
	for _, layout := range []string{time.DateOnly, time.RFC3339} {
		if d, err := time.Parse(layout, v); err == nil {
			return d.UTC(), true
		}
	}
	return time.Time{}, false
}
