package scheduler

import (
	"context"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	syncdomain "remindkit/internal/sync/domain"
	taskdomain "remindkit/internal/task/domain"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// countingSync counts sync passes; the other operations are unused here
type countingSync struct {
	pulls  atomic.Int64
	pushes atomic.Int64
}

func (c *countingSync) Push(context.Context, syncdomain.Session, *taskdomain.Task) error { return nil }
func (c *countingSync) PushAsync(syncdomain.Session, *taskdomain.Task) {}
func (c *countingSync) ExportJSON(io.Writer) error { return nil }
func (c *countingSync) ExportCSV(io.Writer) error { return nil }

func (c *countingSync) PushAll(context.Context, syncdomain.Session) error {
	c.pushes.Add(1)
	return nil
}
func (c *countingSync) Import(io.Reader, syncdomain.DuplicateHandling) (*syncdomain.ImportResult, error) {
	return &syncdomain.ImportResult{}, nil
}

func (c *countingSync) Pull(context.Context, syncdomain.Session) (*syncdomain.PullStats, error) {
	c.pulls.Add(1)
	return &syncdomain.PullStats{}, nil
}

func TestSchedulerPullsImmediatelyThenOnInterval(t *testing.T) {
	counter := &countingSync{}
	s := NewPullScheduler(counter, syncdomain.SignedIn("alice"), 20*time.Millisecond, quietLogger())

	s.Start()
	defer s.Stop()

	assert.Eventually(t, func() bool {
		return counter.pulls.Load() >= 3
	}, time.Second, 5*time.Millisecond)
	// Each pass pushes local records back before pulling.
	assert.GreaterOrEqual(t, counter.pushes.Load(), int64(3))
}

func TestSchedulerDisabledWhenSignedOut(t *testing.T) {
	counter := &countingSync{}
	s := NewPullScheduler(counter, syncdomain.Anonymous(), 5*time.Millisecond, quietLogger())

	s.Start()
	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, counter.pulls.Load())
}

func TestSchedulerStopHaltsPulls(t *testing.T) {
	counter := &countingSync{}
	s := NewPullScheduler(counter, syncdomain.SignedIn("alice"), 10*time.Millisecond, quietLogger())

	s.Start()
	assert.Eventually(t, func() bool { return counter.pulls.Load() >= 1 }, time.Second, 5*time.Millisecond)
	s.Stop()

	settled := counter.pulls.Load()
	time.Sleep(50 * time.Millisecond)
	// One in-flight tick may land after Stop, no more after that.
	assert.LessOrEqual(t, counter.pulls.Load(), settled+1)
}
