package repository

import (
	"remindkit/internal/task/domain"
)

// ChangeType classifies a local store mutation
type ChangeType string

const (
	ChangeCreated ChangeType = "created"
	ChangeUpdated ChangeType = "updated"
	ChangeDeleted ChangeType = "deleted"
)

// ChangeEvent is broadcast to watchers after a mutation commits.
// Task is nil for ChangeDeleted.
type ChangeEvent struct {
	Type   ChangeType
	TaskID string
	Task   *domain.Task
}

// LocalStore defines the offline-authoritative task store.
//
// All operations are synchronous. Mutations to the same task id are
// serialized; distinct ids may proceed concurrently.
type LocalStore interface {
	// Get returns the task with the given id, including tombstoned records,
	// or nil when absent.
	Get(id string) (*domain.Task, error)

	// Put upserts the whole record as given. Replaying the same value is a
	// no-op in effect: the stored state is identical and version is whatever
	// the caller set.
	Put(task *domain.Task) error

	// Delete hard-removes the record. Idempotent.
	Delete(id string) error

	// List returns every non-tombstoned task, due-date ascending with
	// undated tasks last.
	List() ([]*domain.Task, error)

	// ListAll returns every record including tombstones, for the full
	// push-back pass of a sync cycle.
	ListAll() ([]*domain.Task, error)

	// UpdateWithLock runs a read-modify-write for one id atomically with
	// respect to every other mutation of that id. fn receives the current
	// record (nil when absent) and returns the record to store; returning
	// nil stores nothing.
	UpdateWithLock(id string, fn func(current *domain.Task) (*domain.Task, error)) error

	// Watch subscribes to change events. The returned cancel func must be
	// called to release the subscription; the channel is closed by cancel.
	// Slow consumers lose events rather than blocking writers.
	Watch(buffer int) (<-chan ChangeEvent, func())
}
