package usecase

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	syncdomain "remindkit/internal/sync/domain"
	"remindkit/internal/task/domain"
	"remindkit/internal/task/recurrence"
	"remindkit/internal/task/repository"
)

var (
	ErrNotFound     = errors.New("task not found")
	ErrAccessDenied = errors.New("access denied")
)

// defaultRemindBeforeMinutes matches the original reminder default
const defaultRemindBeforeMinutes = 10

// taskUsecase implements TaskUsecase
type taskUsecase struct {
	store     repository.LocalStore
	pusher    Pusher
	scheduler ReminderScheduler
	log       *logrus.Entry
}

// NewTaskUsecase creates a new instance of taskUsecase
func NewTaskUsecase(store repository.LocalStore, log *logrus.Logger) TaskUsecase {
	return &taskUsecase{
		store: store,
		log:   log.WithField("component", "task"),
	}
}

func (u *taskUsecase) SetPusher(p Pusher) { u.pusher = p }

func (u *taskUsecase) SetReminderScheduler(s ReminderScheduler) { u.scheduler = s }

func (u *taskUsecase) Create(session syncdomain.Session, req CreateRequest) (*domain.Task, error) {
	now := time.Now()
	remindBefore := defaultRemindBeforeMinutes
	if req.RemindBeforeMinutes != nil && *req.RemindBeforeMinutes >= 0 {
		remindBefore = *req.RemindBeforeMinutes
	}

	task := &domain.Task{
		ID:                  uuid.New().String(),
		Title:               strings.TrimSpace(req.Title),
		Notes:               strings.TrimSpace(req.Notes),
		CreatedAt:           now,
		DueAt:               req.DueAt,
		Recurrence:          domain.ParseRecurrence(req.Recurrence),
		WeeklyDays:          req.WeeklyDays,
		RecurrenceEndDate:   req.RecurrenceEndDate,
		RemindBeforeMinutes: remindBefore,
		OwnerID:             session.UserID,
		SharedWith:          req.SharedWith,
		LastModifiedBy:      session.UserID,
		UpdatedAt:           now,
		Version:             0,
	}
	task.RefreshSharedFlag()

	if err := task.Validate(); err != nil {
		return nil, err
	}
	if err := u.store.Put(task); err != nil {
		return nil, err
	}

	u.afterMutation(session, task)
	return task, nil
}

func (u *taskUsecase) Get(session syncdomain.Session, taskID string) (*domain.Task, error) {
	task, err := u.store.Get(taskID)
	if err != nil {
		return nil, err
	}
	if task == nil || task.Deleted {
		return nil, ErrNotFound
	}
	if !u.visible(session, task) {
		return nil, ErrAccessDenied
	}
	return task, nil
}

func (u *taskUsecase) List(session syncdomain.Session, filter Filter) ([]*domain.Task, error) {
	tasks, err := u.store.List()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	out := make([]*domain.Task, 0, len(tasks))
	for _, t := range tasks {
		if !u.visible(session, t) {
			continue
		}
		if !matchesFilter(t, filter, now) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (u *taskUsecase) Summary(session syncdomain.Session) (*SummaryResult, error) {
	tasks, err := u.List(session, Filter{})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	s := &SummaryResult{Total: len(tasks)}
	for _, t := range tasks {
		if t.IsCompleted {
			s.Completed++
			continue
		}
		s.Pending++
		if t.DueAt == nil {
			continue
		}
		switch {
		case t.DueAt.Before(now):
			s.Overdue++
		default:
			s.Upcoming++
		}
		if sameDay(*t.DueAt, now) {
			s.DueToday++
		}
	}
	if s.Total > 0 {
		s.CompletionRate = float64(s.Completed) / float64(s.Total) * 100
	}
	return s, nil
}

func (u *taskUsecase) Update(session syncdomain.Session, taskID string, req UpdateRequest) (*domain.Task, error) {
	return u.mutate(session, taskID, ownerOnly, func(task *domain.Task) error {
		if req.Title != nil {
			title := strings.TrimSpace(*req.Title)
			if title == "" {
				return &domain.ValidationError{Field: "title", Reason: "required"}
			}
			task.Title = title
		}
		if req.Notes != nil {
			task.Notes = strings.TrimSpace(*req.Notes)
		}
		if req.ClearDueAt {
			task.DueAt = nil
		} else if req.DueAt != nil {
			task.DueAt = req.DueAt
		}
		if req.Recurrence != nil {
			task.Recurrence = domain.ParseRecurrence(*req.Recurrence)
		}
		if req.WeeklyDays != nil {
			task.WeeklyDays = *req.WeeklyDays
		}
		if req.RecurrenceEndDate != nil {
			task.RecurrenceEndDate = req.RecurrenceEndDate
		}
		if req.RemindBeforeMinutes != nil {
			if *req.RemindBeforeMinutes < 0 {
				return &domain.ValidationError{Field: "remindBeforeMinutes", Reason: "must be >= 0"}
			}
			task.RemindBeforeMinutes = *req.RemindBeforeMinutes
		}
		if req.IsDisabled != nil {
			task.IsDisabled = *req.IsDisabled
			if !task.IsDisabled {
				task.DisabledUntil = nil
			}
		}
		return nil
	})
}

func (u *taskUsecase) Complete(session syncdomain.Session, taskID string) (*domain.Task, error) {
	return u.mutate(session, taskID, anyParticipant, func(task *domain.Task) error {
		now := time.Now()
		task.IsCompleted = true
		task.CompletedAt = &now
		return nil
	})
}

func (u *taskUsecase) Snooze(session syncdomain.Session, taskID string, until time.Time) (*domain.Task, error) {
	return u.mutate(session, taskID, anyParticipant, func(task *domain.Task) error {
		task.IsDisabled = true
		task.DisabledUntil = &until
		return nil
	})
}

func (u *taskUsecase) Share(session syncdomain.Session, taskID string, sharedWith []string) (*domain.Task, error) {
	return u.mutate(session, taskID, ownerOnly, func(task *domain.Task) error {
		task.SharedWith = sharedWith
		task.RefreshSharedFlag()
		return nil
	})
}

func (u *taskUsecase) Delete(session syncdomain.Session, taskID string) error {
	task, err := u.Get(session, taskID)
	if err != nil {
		return err
	}
	if session.SignedIn && task.OwnerID != session.UserID {
		return ErrAccessDenied
	}

	if !session.SignedIn {
		// Offline hard remove: with no remote partition to reconcile
		// against there is nothing a tombstone could propagate to. A stale
		// remote copy from a previous signed-in life can resurface the
		// task on a later pull; pull only deletes on explicit tombstones.
		if err := u.store.Delete(taskID); err != nil {
			return err
		}
		u.afterRemoval(taskID)
		return nil
	}

	// Signed-in delete: tombstone so collaborators observe the removal.
	// afterMutation cancels the alarm and pushes the tombstone.
	_, err = u.mutate(session, taskID, ownerOnly, func(task *domain.Task) error {
		task.Deleted = true
		return nil
	})
	return err
}

func (u *taskUsecase) Occurrences(session syncdomain.Session, taskID string, from, to time.Time) ([]time.Time, error) {
	task, err := u.Get(session, taskID)
	if err != nil {
		return nil, err
	}
	return recurrence.Occurrences(task, from, to), nil
}

type accessRule int

const (
	ownerOnly accessRule = iota
	anyParticipant
)

// mutate runs a field mutation under the task's id lock, bumps the sync
// metadata, and triggers the push and reschedule side effects.
func (u *taskUsecase) mutate(session syncdomain.Session, taskID string, rule accessRule, apply func(*domain.Task) error) (*domain.Task, error) {
	var updated *domain.Task
	err := u.store.UpdateWithLock(taskID, func(current *domain.Task) (*domain.Task, error) {
		if current == nil || current.Deleted {
			return nil, ErrNotFound
		}
		if rule == ownerOnly && session.SignedIn && current.OwnerID != session.UserID {
			return nil, ErrAccessDenied
		}
		if rule == anyParticipant && session.SignedIn && !current.SharedWithUser(session.UserID) {
			return nil, ErrAccessDenied
		}
		if err := apply(current); err != nil {
			return nil, err
		}
		current.Touch(session.UserID, time.Now())
		updated = current
		return current, nil
	})
	if err != nil {
		return nil, err
	}
	u.afterMutation(session, updated)
	return updated, nil
}

func (u *taskUsecase) afterMutation(session syncdomain.Session, task *domain.Task) {
	if u.scheduler != nil {
		if task.Deleted {
			u.scheduler.TaskRemoved(task.ID)
		} else {
			u.scheduler.TaskChanged(task)
		}
	}
	if u.pusher != nil {
		u.pusher.PushAsync(session, task)
	}
}

func (u *taskUsecase) afterRemoval(taskID string) {
	if u.scheduler != nil {
		u.scheduler.TaskRemoved(taskID)
	}
}

// visible applies the sharing rule; signed-out sessions see everything on
// the device (the store itself is single-owner).
func (u *taskUsecase) visible(session syncdomain.Session, task *domain.Task) bool {
	if !session.SignedIn {
		return true
	}
	return task.SharedWithUser(session.UserID)
}

func matchesFilter(t *domain.Task, f Filter, now time.Time) bool {
	switch f.Status {
	case "pending":
		if t.IsCompleted {
			return false
		}
	case "completed":
		if !t.IsCompleted {
			return false
		}
	}
	if f.DueToday && (t.DueAt == nil || !sameDay(*t.DueAt, now)) {
		return false
	}
	if f.Overdue && (t.IsCompleted || t.DueAt == nil || !t.DueAt.Before(now)) {
		return false
	}
	if f.UpcomingDays > 0 {
		limit := now.AddDate(0, 0, f.UpcomingDays)
		if t.DueAt == nil || t.DueAt.Before(now) || t.DueAt.After(limit) {
			return false
		}
	}
	if f.Query != "" {
		q := strings.ToLower(f.Query)
		if !strings.Contains(strings.ToLower(t.Title), q) &&
			!strings.Contains(strings.ToLower(t.Notes), q) {
			return false
		}
	}
	return true
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
