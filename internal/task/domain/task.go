package domain

import (
	"fmt"
	"strings"
	"time"
)

// Recurrence represents how a task repeats
type Recurrence string

const (
	RecurrenceNone    Recurrence = "none"
	RecurrenceDaily   Recurrence = "daily"
	RecurrenceWeekly  Recurrence = "weekly"
	RecurrenceMonthly Recurrence = "monthly"
)

// ParseRecurrence maps a raw string to a Recurrence, defaulting to none
func ParseRecurrence(s string) Recurrence {
	switch Recurrence(s) {
	case RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly:
		return Recurrence(s)
	default:
		return RecurrenceNone
	}
}

// Task is the single reminder entity. The local id is the merge key between
// the local store and every remote partition; it never changes after create.
type Task struct {
	ID    string `json:"id" firestore:"id" gorm:"primaryKey"`
	Title string `json:"title" firestore:"title" gorm:"not null"`
	Notes string `json:"notes,omitempty" firestore:"notes"`

	CreatedAt time.Time  `json:"createdAt" firestore:"createdAt"`
	DueAt     *time.Time `json:"dueAt" firestore:"dueAt"`

	Recurrence        Recurrence     `json:"recurrence" firestore:"recurrence" gorm:"default:none"`
	WeeklyDays        []time.Weekday `json:"weeklyDays,omitempty" firestore:"weeklyDays" gorm:"serializer:json"`
	RecurrenceEndDate *time.Time     `json:"recurrenceEndDate" firestore:"recurrenceEndDate"`

	RemindBeforeMinutes int `json:"remindBeforeMinutes" firestore:"remindBeforeMinutes"`

	IsCompleted bool       `json:"isCompleted" firestore:"isCompleted"`
	CompletedAt *time.Time `json:"completedAt" firestore:"completedAt"`

	IsDisabled    bool       `json:"isDisabled" firestore:"isDisabled"`
	DisabledUntil *time.Time `json:"disabledUntil" firestore:"disabledUntil"`

	OwnerID        string   `json:"ownerId" firestore:"ownerId" gorm:"index"`
	SharedWith     []string `json:"sharedWith" firestore:"sharedWith" gorm:"serializer:json"`
	IsShared       bool     `json:"isShared" firestore:"isShared"`
	LastModifiedBy string   `json:"lastModifiedBy,omitempty" firestore:"lastModifiedBy"`

	// Sync metadata
	ServerID  string    `json:"serverId,omitempty" firestore:"serverId"`
	UpdatedAt time.Time `json:"updatedAt" firestore:"updatedAt"`
	Version   int64     `json:"version" firestore:"version"`
	Deleted   bool      `json:"deleted" firestore:"deleted"`
}

// Touch records a mutation: bumps the monotonic version and stamps
// updatedAt/lastModifiedBy. Every persisted field change goes through here.
func (t *Task) Touch(by string, now time.Time) {
	t.Version++
	t.UpdatedAt = now
	t.LastModifiedBy = by
}

// RefreshSharedFlag keeps the derived isShared flag consistent with sharedWith
func (t *Task) RefreshSharedFlag() {
	t.IsShared = len(t.SharedWith) > 0
}

// SharedWithUser reports whether the given identity may see this task
func (t *Task) SharedWithUser(userID string) bool {
	if t.OwnerID == userID {
		return true
	}
	for _, id := range t.SharedWith {
		if id == userID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers can mutate without aliasing the
// store's slices.
func (t *Task) Clone() *Task {
	c := *t
	if t.WeeklyDays != nil {
		c.WeeklyDays = append([]time.Weekday(nil), t.WeeklyDays...)
	}
	if t.SharedWith != nil {
		c.SharedWith = append([]string(nil), t.SharedWith...)
	}
	return &c
}

// Validate checks the fields that must be present on any stored task
func (t *Task) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return &ValidationError{Field: "id", Reason: "required"}
	}
	if strings.TrimSpace(t.Title) == "" {
		return &ValidationError{Field: "title", Reason: "required"}
	}
	if t.CreatedAt.IsZero() {
		return &ValidationError{Field: "createdAt", Reason: "required"}
	}
	if t.RemindBeforeMinutes < 0 {
		return &ValidationError{Field: "remindBeforeMinutes", Reason: "must be >= 0"}
	}
	return nil
}

// ValidationError reports a malformed or missing task field. Import treats
// these as per-record failures and keeps going.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid task field %q: %s", e.Field, e.Reason)
}
