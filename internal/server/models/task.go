// Package models defines server-side data models persisted in the database.
package models

import "time"

// Task priorities.
const (
	PriorityNew    = "New"
	PriorityHigh   = "High"
	PriorityMedium = "Medium"
	PriorityLow    = "Low"
)

// Task statuses.
const (
	StatusTodo       = "todo"
	StatusInProgress = "inprogress"
	StatusNonUrgent  = "nonurgent"
	StatusDone       = "done"
)

var (
	Priorities = []string{PriorityNew, PriorityHigh, PriorityMedium, PriorityLow}
	Statuses   = []string{StatusTodo, StatusInProgress, StatusNonUrgent, StatusDone}
)

// Task is one row of the tasks table.
type Task struct {
	ID        int64      `json:"id"`
	Text      string     `json:"text"`
	Name      string     `json:"name"`
	Priority  string     `json:"priority"`
	Notes     string     `json:"notes"`
	Status    string     `json:"status"`
	DueDate   *time.Time `json:"due_date"`
	CreatedAt time.Time  `json:"created_at"`
}

// TaskUpdate is a partial update. Nil fields are left unchanged; ClearDueDate
// sets due_date to NULL and takes precedence over DueDate.
type TaskUpdate struct {
	Text         *string
	Name         *string
	Priority     *string
	Notes        *string
	Status       *string
	DueDate      *time.Time
	ClearDueDate bool
}

// Empty reports whether the update touches no column.
func (u TaskUpdate) Empty() bool {
	return u.Text == nil && u.Name == nil && u.Priority == nil && u.Notes == nil &&
		u.Status == nil && u.DueDate == nil && !u.ClearDueDate
}
