package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/dmitrijs2005/todokeeper/internal/logging"
	"github.com/dmitrijs2005/todokeeper/internal/server/config"
	"github.com/dmitrijs2005/todokeeper/internal/server/llm"
	"github.com/dmitrijs2005/todokeeper/internal/server/mail"
	"github.com/dmitrijs2005/todokeeper/internal/server/models"
	"github.com/dmitrijs2005/todokeeper/internal/server/repositories/repomanager"
)

const (
	TasksPlaceholder = "{TASKS_DATA}"

	DefaultInstructionPrefix = `You are a helpful to-do list assistant.
Please provide a concise summary of the following tasks.
Highlight any urgent items (High priority, New priority, or overdue).
Mention upcoming deadlines.
Keep the summary actionable and easy to read.`

	noTasksToList   = "No tasks to list."
	noTasksSentence = "No tasks available to summarize at this time."
	noAIResponse    = "Could not get a response from the AI at this time."

	ukDate = "02/01/2006"
)

// Generator produces text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type Mailer interface {
	Send(ctx context.Context, msg mail.Message) error
}

// Archiver stores a copy of the summary and returns where it went.
type Archiver interface {
	Enabled() bool
	Store(ctx context.Context, body string) (string, error)
}

// SummaryTask is the subset of a task that goes into the prompt. DueDate is
// kept as received so that clients may send either a date or a timestamp.
type SummaryTask struct {
	Text     string `json:"text"`
	Status   string `json:"status"`
	Priority string `json:"priority"`
	DueDate  string `json:"due_date"`
}

type SummaryRequest struct {
	Tasks     []SummaryTask `json:"tasks"`
	Scheduled bool          `json:"-"`
}

// SummaryResult is what the caller reports back. A non-empty EmailError means
// the text was generated but could not be delivered.
type SummaryResult struct {
	Message    string `json:"message"`
	AIResponse string `json:"ai_response"`
	EmailError string `json:"emailError,omitempty"`
	ArchiveKey string `json:"archive_key,omitempty"`
}

type SummaryService struct {
	db           *sql.DB
	repomanager  repomanager.RepositoryManager
	generator    Generator
	mailer       Mailer
	archiver     Archiver
	promptNoteID int64
	ownerName    string
	log          logging.Logger
	now          func() time.Time
}

// NewSummaryService wires the collaborators. generator and archiver may be
// nil: the first yields a fixed apology text, the second disables archiving.
func NewSummaryService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config,
	generator Generator, mailer Mailer, archiver Archiver, log logging.Logger) *SummaryService {
	return &SummaryService{
		db:           db,
		repomanager:  m,
		generator:    generator,
		mailer:       mailer,
		archiver:     archiver,
		promptNoteID: cfg.PromptNoteID,
		ownerName:    cfg.OwnerName,
		log:          log.With("module", "summary"),
		now:          time.Now,
	}
}

// Run builds the prompt, asks the generator and mails the answer. Generation
// problems end up as text in the mail; only delivery problems are reported,
// through SummaryResult.EmailError.
func (s *SummaryService) Run(ctx context.Context, req SummaryRequest) (*SummaryResult, error) {
	tasks := req.Tasks
	if req.Scheduled || len(tasks) == 0 {
		tasks = s.activeTasks(ctx)
	}

	prompt := BuildPrompt(s.instruction(ctx), tasks, s.now().Location())
	s.log.Debug(ctx, "summary prompt built", "tasks", len(tasks), "scheduled", req.Scheduled)

	answer := s.generate(ctx, prompt)
	res := &SummaryResult{AIResponse: answer}

	if s.archiver != nil && s.archiver.Enabled() {
		key, err := s.archiver.Store(ctx, answer)
		if err != nil {
			s.log.Warn(ctx, "summary archive failed", "error", err)
		} else {
			res.ArchiveKey = key
		}
	}

	if err := s.mailer.Send(ctx, s.compose(answer)); err != nil {
		s.log.Error(ctx, "summary mail failed", "error", err)
		res.Message = "AI response generated, but sending email failed."
		res.EmailError = err.Error()
		return res, nil
	}

	res.Message = "AI response generated and email sent successfully!"
	return res, nil
}

// BuildPrompt assembles the final prompt. A non-blank instruction containing
// the placeholder gets the task list spliced in; one without it is used
// verbatim. Otherwise the default prefix is followed by the list.
func BuildPrompt(instruction string, tasks []SummaryTask, loc *time.Location) string {
	details := FormatTaskList(tasks, loc)

	instruction = strings.TrimSpace(instruction)
	if instruction != "" {
		if strings.Contains(instruction, TasksPlaceholder) {
			if details == "" {
				details = noTasksToList
			}
			return strings.Replace(instruction, TasksPlaceholder, details, 1)
		}
		return instruction
	}

	if len(tasks) == 0 {
		return DefaultInstructionPrefix + "\n\n" + noTasksSentence
	}
	return DefaultInstructionPrefix + "\n\nTasks:\n" + details + "\n\nConcise Summary:"
}

// FormatTaskList renders one numbered line per task:
// "N. text (Status: s, Priority: p, Due: dd/mm/yyyy)".
func FormatTaskList(tasks []SummaryTask, loc *time.Location) string {
	lines := make([]string, 0, len(tasks))
	for i, t := range tasks {
		priority := t.Priority
		if priority == "" {
			priority = "N/A"
		}
		lines = append(lines, fmt.Sprintf("%d. %s (Status: %s, Priority: %s, Due: %s)",
			i+1, t.Text, t.Status, priority, formatDue(t.DueDate, loc)))
	}
	return strings.Join(lines, "\n")
}

func formatDue(v string, loc *time.Location) string {
	if v == "" {
		return "N/A"
	}
	if d, ok := ParseDueDate(v); ok {
		if loc != nil && strings.Contains(v, "T") {
			d = d.In(loc)
		}
		return d.Format(ukDate)
	}
	return v
}

// --- helpers below ---

func (s *SummaryService) activeTasks(ctx context.Context) []SummaryTask {
	rows, err := s.repomanager.Tasks(s.db).ListActive(ctx)
	if err != nil {
		s.log.Error(ctx, "fetching active tasks failed, summarizing none", "error", err)
		return nil
	}
	return toSummaryTasks(rows)
}

func (s *SummaryService) instruction(ctx context.Context) string {
	n, err := s.repomanager.StickyNotes(s.db).Get(ctx, s.promptNoteID)
	if err != nil {
		s.log.Warn(ctx, "prompt note unavailable, using default prompt", "note_id", s.promptNoteID, "error", err)
		return ""
	}
	return n.Content
}

func (s *SummaryService) generate(ctx context.Context, prompt string) string {
	if s.generator == nil {
		return noAIResponse
	}

	text, err := s.generator.Generate(ctx, prompt)
	if err == nil {
		return text
	}

	var blocked *llm.BlockedError
	switch {
	case errors.As(err, &blocked):
		s.log.Warn(ctx, "generation blocked", "reason", blocked.Reason)
		return fmt.Sprintf("AI content generation was blocked. Reason: %s.", blocked.Reason)
	case errors.Is(err, llm.ErrEmptyResponse):
		s.log.Warn(ctx, "generation returned no text")
		return "Received an unexpected format from the AI service."
	default:
		s.log.Error(ctx, "generation failed", "error", err)
		return fmt.Sprintf("An error occurred while trying to get a response from the AI: %s", err.Error())
	}
}

func (s *SummaryService) compose(answer string) mail.Message {
	date := s.now().Format(ukDate)
	name := s.ownerName
	if name == "" {
		name = "there"
	}

	return mail.Message{
		Subject: fmt.Sprintf("To-Do List Assistant - %s", date),
		Text: fmt.Sprintf("Hi %s,\n\nHere's the response based on your instruction:\n\n%s\n\nRegards,\nYour To-Do App Assistant",
			name, answer),
		HTML: fmt.Sprintf(`<p>Hi %s,</p>
<p>Here's the response based on your instruction:</p>
<pre style="white-space: pre-wrap; font-family: sans-serif; font-size: 1rem;">%s</pre>
<p>Regards,<br>Your To-Do App Assistant</p>`, html.EscapeString(name), html.EscapeString(answer)),
	}
}

func toSummaryTasks(rows []*models.Task) []SummaryTask {
	out := make([]SummaryTask, 0, len(rows))
	for _, t := range rows {
		st := SummaryTask{Text: t.Text, Status: t.Status, Priority: t.Priority}
		if t.DueDate != nil {
			st.DueDate = t.DueDate.Format(time.RFC3339)
		}
		out = append(out, st)
	}
	return out
}
