// Package readout drives the bounded repeating spoken announcement for a
// fired reminder: a per-task timer state machine with a duration or count
// cap, cooperative cancellation, and persisted resumable state.
package readout

import (
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

var (
	ErrNotRunning = errors.New("readout not running")
	ErrNotPaused  = errors.New("readout not paused")
)

// Speaker is the text-to-speech collaborator. Speak fires and returns; the
// controller never waits for audio completion.
type Speaker interface {
	Speak(text string)
}

// Options configures one activation. CapDuration and CapCount are the two
// cap flavors; whichever is set stops the activation first. A zero value
// falls back to the controller default cap.
type Options struct {
	Interval    time.Duration
	CapDuration time.Duration
	CapCount    int
	Text        string
}

// state of a single activation
type state int

const (
	stateRunning state = iota
	statePaused
	stateStopped
)

type activation struct {
	taskID    string
	opts      Options
	startTime time.Time
	tickCount int
	state     state
	tickTimer Timer
	capTimer  Timer
}

// Controller manages at most one activation per task id. Independent
// tasks' activations run concurrently, each with its own cap clock.
type Controller struct {
	mu        sync.Mutex
	clock     Clock
	speaker   Speaker
	snapshots SnapshotStore
	defaults  Options
	active    map[string]*activation
	log       *logrus.Entry
}

// NewController creates a readout controller. defaults supplies the
// interval and cap used when Start options leave them zero.
func NewController(clock Clock, speaker Speaker, snapshots SnapshotStore, defaults Options, log *logrus.Logger) *Controller {
	if defaults.Interval <= 0 {
		defaults.Interval = 30 * time.Second
	}
	if defaults.CapDuration <= 0 && defaults.CapCount <= 0 {
		defaults.CapDuration = 5 * time.Minute
	}
	return &Controller{
		clock:     clock,
		speaker:   speaker,
		snapshots: snapshots,
		defaults:  defaults,
		active:    make(map[string]*activation),
		log:       log.WithField("component", "readout"),
	}
}

// Start begins a fresh activation for the task: an immediate announcement,
// then one every interval until a cap or Stop. A no-op when the task
// already has a live activation.
func (c *Controller) Start(taskID string, opts Options) {
	c.mu.Lock()
	if a, ok := c.active[taskID]; ok && a.state != stateStopped {
		c.mu.Unlock()
		return
	}

	if opts.Interval <= 0 {
		opts.Interval = c.defaults.Interval
	}
	if opts.CapDuration <= 0 && opts.CapCount <= 0 {
		opts.CapDuration = c.defaults.CapDuration
		opts.CapCount = c.defaults.CapCount
	}

	a := &activation{
		taskID:    taskID,
		opts:      opts,
		startTime: c.clock.Now(),
	}
	c.active[taskID] = a
	c.armCapTimer(a)
	// Zero-delay first tick: fires right away, yet a Stop that lands
	// before the scheduler delivers it cancels the whole activation with
	// zero announcements.
	a.tickTimer = c.clock.AfterFunc(0, func() { c.tick(a) })
	c.mu.Unlock()
}

// resume re-registers an interrupted activation restored from a snapshot,
// keeping its original start time and tick count.
func (c *Controller) resume(snap *Snapshot, opts Options) {
	c.mu.Lock()
	if a, ok := c.active[snap.TaskID]; ok && a.state != stateStopped {
		c.mu.Unlock()
		return
	}
	a := &activation{
		taskID:    snap.TaskID,
		opts:      opts,
		startTime: snap.StartTime,
		tickCount: snap.ElapsedCount,
	}
	c.active[snap.TaskID] = a
	c.armCapTimer(a)
	a.tickTimer = c.clock.AfterFunc(opts.Interval, func() { c.tick(a) })
	c.mu.Unlock()
}

// armCapTimer schedules the wall-clock cap; the caller holds c.mu
func (c *Controller) armCapTimer(a *activation) {
	if a.opts.CapDuration <= 0 {
		return
	}
	remaining := a.opts.CapDuration - c.clock.Now().Sub(a.startTime)
	if remaining <= 0 {
		remaining = 0
	}
	a.capTimer = c.clock.AfterFunc(remaining, func() {
		c.log.WithField("taskId", a.taskID).Info("duration cap reached")
		c.Stop(a.taskID)
	})
}

// tick performs one announcement attempt and schedules the next one.
// An in-flight tick whose activation was stopped underneath it completes
// without scheduling a successor.
func (c *Controller) tick(a *activation) {
	c.mu.Lock()
	if a.state != stateRunning {
		c.mu.Unlock()
		return
	}
	text := a.opts.Text
	c.mu.Unlock()

	// The callback is synchronous and must never escape the controller
	// boundary; a failing announcement doesn't advance the cap count.
	spoken := c.speak(a.taskID, text)

	c.mu.Lock()
	defer c.mu.Unlock()
	if a.state != stateRunning {
		return
	}
	if spoken {
		a.tickCount++
		c.persist(a)
	}
	if a.opts.CapCount > 0 && a.tickCount >= a.opts.CapCount {
		c.log.WithField("taskId", a.taskID).Info("repeat cap reached")
		c.stopLocked(a)
		return
	}
	a.tickTimer = c.clock.AfterFunc(a.opts.Interval, func() { c.tick(a) })
}

func (c *Controller) speak(taskID, text string) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			c.log.WithField("taskId", taskID).Warnf("speaker panicked: %v", r)
		}
	}()
	c.speaker.Speak(text)
	return true
}

// Pause suspends the interval timer without resetting elapsed time or the
// repeat count. The wall-clock cap keeps running.
func (c *Controller) Pause(taskID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	a, ok := c.active[taskID]
	if !ok || a.state != stateRunning {
		return ErrNotRunning
	}
	a.state = statePaused
	if a.tickTimer != nil {
		a.tickTimer.Stop()
		a.tickTimer = nil
	}
	c.persist(a)
	return nil
}

// Resume continues a paused activation
func (c *Controller) Resume(taskID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	a, ok := c.active[taskID]
	if !ok || a.state != statePaused {
		return ErrNotPaused
	}
	a.state = stateRunning
	a.tickTimer = c.clock.AfterFunc(a.opts.Interval, func() { c.tick(a) })
	return nil
}

// Stop terminates the task's activation. Idempotent; effective before the
// next scheduled tick even if one is in flight.
func (c *Controller) Stop(taskID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	a, ok := c.active[taskID]
	if !ok || a.state == stateStopped {
		return
	}
	c.stopLocked(a)
}

// stopLocked finalizes an activation; the caller holds c.mu
func (c *Controller) stopLocked(a *activation) {
	a.state = stateStopped
	if a.tickTimer != nil {
		a.tickTimer.Stop()
		a.tickTimer = nil
	}
	if a.capTimer != nil {
		a.capTimer.Stop()
		a.capTimer = nil
	}
	delete(c.active, a.taskID)
	if err := c.snapshots.Delete(a.taskID); err != nil {
		c.log.WithField("taskId", a.taskID).WithError(err).Warn("snapshot delete failed")
	}
}

// IsActive reports whether the task has a live activation
func (c *Controller) IsActive(taskID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	a, ok := c.active[taskID]
	return ok && a.state != stateStopped
}

// Restore offers best-effort resumption of activations interrupted by a
// process restart. Snapshots outside the cap window are discarded; the
// rest resume with their original start time and count.
func (c *Controller) Restore(textFor func(taskID string) string) {
	snaps, err := c.snapshots.LoadAll()
	if err != nil {
		c.log.WithError(err).Warn("snapshot restore failed")
		return
	}
	for _, snap := range snaps {
		opts := c.defaults
		if snap.Interval > 0 {
			opts.Interval = snap.Interval
		}
		expired := opts.CapDuration > 0 && c.clock.Now().Sub(snap.StartTime) >= opts.CapDuration
		if expired || (opts.CapCount > 0 && snap.ElapsedCount >= opts.CapCount) {
			if err := c.snapshots.Delete(snap.TaskID); err != nil {
				c.log.WithField("taskId", snap.TaskID).WithError(err).Warn("snapshot delete failed")
			}
			continue
		}
		if textFor != nil {
			opts.Text = textFor(snap.TaskID)
		}
		c.log.WithField("taskId", snap.TaskID).Info("resuming interrupted readout")
		c.resume(snap, opts)
	}
}

// persist overwrites the activation's snapshot in place; caller holds c.mu
func (c *Controller) persist(a *activation) {
	snap := &Snapshot{
		TaskID:       a.taskID,
		StartTime:    a.startTime,
		Interval:     a.opts.Interval,
		ElapsedCount: a.tickCount,
	}
	if err := c.snapshots.Save(snap); err != nil {
		c.log.WithField("taskId", a.taskID).WithError(err).Warn("snapshot save failed")
	}
}
