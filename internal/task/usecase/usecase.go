package usecase

import (
	"time"

	syncdomain "remindkit/internal/sync/domain"
	"remindkit/internal/task/domain"
)

// TaskUsecase defines the business logic over the local task store. Every
// mutation is durable locally before any remote push is attempted.
type TaskUsecase interface {
	// Create makes a new task owned by the session identity
	Create(session syncdomain.Session, req CreateRequest) (*domain.Task, error)

	// Get returns a task the session identity may see
	Get(session syncdomain.Session, taskID string) (*domain.Task, error)

	// List returns non-deleted tasks matching the filter
	List(session syncdomain.Session, filter Filter) ([]*domain.Task, error)

	// Summary aggregates counts over the visible tasks
	Summary(session syncdomain.Session) (*SummaryResult, error)

	// Update applies the given field changes and bumps sync metadata
	Update(session syncdomain.Session, taskID string, req UpdateRequest) (*domain.Task, error)

	// Complete marks the task done; owner or any sharedWith member may call
	Complete(session syncdomain.Session, taskID string) (*domain.Task, error)

	// Snooze suppresses the task until the given instant
	Snooze(session syncdomain.Session, taskID string, until time.Time) (*domain.Task, error)

	// Share replaces the task's sharedWith set; an empty set unshares
	Share(session syncdomain.Session, taskID string, sharedWith []string) (*domain.Task, error)

	// Delete removes the task. Signed-in sessions write a synced tombstone;
	// signed-out sessions hard-remove locally (there is no remote partition
	// to reconcile against, so no tombstone is kept; a stale remote copy
	// can resurface the task on a later pull).
	Delete(session syncdomain.Session, taskID string) error

	// Occurrences previews the task's virtual due instants in a range
	Occurrences(session syncdomain.Session, taskID string, from, to time.Time) ([]time.Time, error)

	// SetPusher wires the reconciliation engine's fire-and-forget push
	SetPusher(p Pusher)

	// SetReminderScheduler wires the notification scheduling adapter
	SetReminderScheduler(s ReminderScheduler)
}

// Pusher is the slice of the reconciliation engine the task usecase needs
type Pusher interface {
	PushAsync(session syncdomain.Session, task *domain.Task)
}

// ReminderScheduler is notified after every local mutation so platform
// alarms track the stored state
type ReminderScheduler interface {
	TaskChanged(task *domain.Task)
	TaskRemoved(taskID string)
}

// CreateRequest carries the caller-supplied fields for a new task
type CreateRequest struct {
	Title               string         `json:"title" binding:"required"`
	Notes               string         `json:"notes"`
	DueAt               *time.Time     `json:"dueAt"`
	Recurrence          string         `json:"recurrence"`
	WeeklyDays          []time.Weekday `json:"weeklyDays"`
	RecurrenceEndDate   *time.Time     `json:"recurrenceEndDate"`
	RemindBeforeMinutes *int           `json:"remindBeforeMinutes"`
	SharedWith          []string       `json:"sharedWith"`
}

// UpdateRequest carries optional field changes; nil means unchanged.
// ClearDueAt removes the due date; it takes precedence over DueAt.
type UpdateRequest struct {
	Title               *string         `json:"title,omitempty"`
	Notes               *string         `json:"notes,omitempty"`
	DueAt               *time.Time      `json:"dueAt,omitempty"`
	ClearDueAt          bool            `json:"clearDueAt,omitempty"`
	Recurrence          *string         `json:"recurrence,omitempty"`
	WeeklyDays          *[]time.Weekday `json:"weeklyDays,omitempty"`
	RecurrenceEndDate   *time.Time      `json:"recurrenceEndDate,omitempty"`
	RemindBeforeMinutes *int            `json:"remindBeforeMinutes,omitempty"`
	IsDisabled          *bool           `json:"isDisabled,omitempty"`
}

// Filter narrows List output. Zero value lists everything pending+completed.
type Filter struct {
	Status       string // "pending", "completed" or "" for all
	DueToday     bool
	Overdue      bool
	UpcomingDays int    // >0 limits to tasks due within N days
	Query        string // case-insensitive substring over title and notes
}

// SummaryResult mirrors the reminder summary the original service exposes
type SummaryResult struct {
	Total          int     `json:"total"`
	Completed      int     `json:"completed"`
	Pending        int     `json:"pending"`
	Overdue        int     `json:"overdue"`
	DueToday       int     `json:"dueToday"`
	Upcoming       int     `json:"upcoming"`
	CompletionRate float64 `json:"completionRate"`
}
