package notification

import (
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"remindkit/internal/task/domain"
	"remindkit/internal/task/recurrence"
	"remindkit/internal/task/repository"
)

// FireFunc delivers a fired alarm to the user-facing side (notification
// push, readout start). Also the immediate-fire fallback path.
type FireFunc func(payload Payload)

// Adapter keeps platform alarms consistent with stored tasks: one alarm
// per task, rescheduled on every mutation, cancelled on removal.
type Adapter struct {
	platform AlarmPlatform
	fire     FireFunc
	log      *logrus.Entry
}

// NewAdapter creates the scheduling adapter
func NewAdapter(platform AlarmPlatform, fire FireFunc, log *logrus.Logger) *Adapter {
	return &Adapter{
		platform: platform,
		fire:     fire,
		log:      log.WithField("component", "alarms"),
	}
}

// TaskChanged re-derives the task's alarm. The prior alarm for the derived
// id is always cancelled first so a stale alarm can never double-fire.
func (a *Adapter) TaskChanged(task *domain.Task) {
	alarmID := DeriveAlarmID(task.ID)
	a.platform.Cancel(alarmID)

	if task.Deleted || task.IsCompleted {
		return
	}
	now := time.Now()
	// Indefinitely disabled tasks get no alarm; a snooze (disabledUntil
	// set) just pushes the fire time back, handled in nextFire.
	if task.IsDisabled && task.DisabledUntil == nil {
		return
	}

	fireAt, ok := a.nextFire(task, now)
	if !ok {
		return
	}

	payload := Payload{TaskID: task.ID, DerivedAlarmID: alarmID, Action: ActionOpen}
	err := a.platform.Schedule(alarmID, fireAt, payload)
	if err == nil {
		return
	}
	var schedErr *ScheduleError
	if errors.As(err, &schedErr) {
		// The reminder still exists even if its fire time cannot be armed;
		// deliver now rather than drop it.
		a.log.WithField("taskId", task.ID).WithError(err).Warn("platform rejected alarm, firing immediately")
		a.fire(payload)
		return
	}
	a.log.WithField("taskId", task.ID).WithError(err).Error("alarm scheduling failed")
}

// TaskRemoved disarms the task's alarm
func (a *Adapter) TaskRemoved(taskID string) {
	a.platform.Cancel(DeriveAlarmID(taskID))
}

// WatchStore subscribes the adapter to the store's change feed so records
// written outside the task usecase (pull merges, bulk imports) re-arm
// their alarms too. Rescheduling is cancel-then-schedule, so overlapping
// a direct usecase notification is harmless. The returned stop func ends
// the subscription.
func (a *Adapter) WatchStore(store repository.LocalStore) func() {
	events, cancel := store.Watch(64)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for evt := range events {
			if evt.Type == repository.ChangeDeleted {
				a.TaskRemoved(evt.TaskID)
				continue
			}
			a.TaskChanged(evt.Task)
		}
	}()
	return func() {
		cancel()
		<-done
	}
}

// nextFire computes the next reminder instant: the first occurrence after
// now, pulled forward by remindBeforeMinutes, pushed back past any snooze.
func (a *Adapter) nextFire(task *domain.Task, now time.Time) (time.Time, bool) {
	occ, ok := recurrence.NextAfter(task, now)
	if !ok {
		return time.Time{}, false
	}
	fireAt := occ.Add(-time.Duration(task.RemindBeforeMinutes) * time.Minute)
	if task.DisabledUntil != nil && fireAt.Before(*task.DisabledUntil) {
		fireAt = *task.DisabledUntil
	}
	return fireAt, true
}
