package notification

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// TimerPlatform is an in-process AlarmPlatform: one time.Timer per armed
// alarm id, delivering through the configured FireFunc. It stands in for
// the host OS alarm service; delivery accuracy while backgrounded depends
// on the external execution privilege, which this process does not control.
type TimerPlatform struct {
	mu     sync.Mutex
	timers map[int32]*time.Timer
	fire   FireFunc
	log    *logrus.Entry
}

// NewTimerPlatform creates the in-process alarm platform
func NewTimerPlatform(fire FireFunc, log *logrus.Logger) *TimerPlatform {
	return &TimerPlatform{
		timers: make(map[int32]*time.Timer),
		fire:   fire,
		log:    log.WithField("component", "alarm-platform"),
	}
}

func (p *TimerPlatform) Schedule(alarmID int32, fireAt time.Time, payload Payload) error {
	delay := time.Until(fireAt)
	if delay < 0 {
		return &ScheduleError{AlarmID: alarmID, FireAt: fireAt, Reason: "fire time in the past"}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if t, ok := p.timers[alarmID]; ok {
		t.Stop()
	}
	p.timers[alarmID] = time.AfterFunc(delay, func() {
		p.mu.Lock()
		delete(p.timers, alarmID)
		p.mu.Unlock()
		p.log.WithFields(logrus.Fields{"alarmId": alarmID, "taskId": payload.TaskID}).Info("alarm fired")
		p.fire(payload)
	})
	return nil
}

func (p *TimerPlatform) Cancel(alarmID int32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if t, ok := p.timers[alarmID]; ok {
		t.Stop()
		delete(p.timers, alarmID)
	}
}

// MemoryPlatform records schedule/cancel calls without arming anything;
// used by tests.
type MemoryPlatform struct {
	mu        sync.Mutex
	Scheduled map[int32]MemoryAlarm
	Cancelled []int32
	Reject    bool // force a ScheduleError on every Schedule
}

// MemoryAlarm is one recorded Schedule call
type MemoryAlarm struct {
	FireAt  time.Time
	Payload Payload
}

// NewMemoryPlatform creates an empty recording platform
func NewMemoryPlatform() *MemoryPlatform {
	return &MemoryPlatform{Scheduled: make(map[int32]MemoryAlarm)}
}

func (p *MemoryPlatform) Schedule(alarmID int32, fireAt time.Time, payload Payload) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Reject || time.Until(fireAt) < 0 {
		return &ScheduleError{AlarmID: alarmID, FireAt: fireAt, Reason: "rejected"}
	}
	p.Scheduled[alarmID] = MemoryAlarm{FireAt: fireAt, Payload: payload}
	return nil
}

func (p *MemoryPlatform) Cancel(alarmID int32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.Scheduled, alarmID)
	p.Cancelled = append(p.Cancelled, alarmID)
}
