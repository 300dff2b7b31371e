package repository

import (
	"context"
	"sync"

	taskdomain "remindkit/internal/task/domain"
)

// MemoryRemoteStore is an in-memory RemoteStore used in tests and for
// running fully offline. It mirrors the Firestore layout: one private
// partition per owner plus a single shared partition.
type MemoryRemoteStore struct {
	mu      sync.RWMutex
	private map[string]map[string]*taskdomain.Task // ownerID -> taskID -> task
	shared  map[string]*taskdomain.Task            // taskID -> task
}

// NewMemoryRemoteStore creates an empty in-memory remote store
func NewMemoryRemoteStore() *MemoryRemoteStore {
	return &MemoryRemoteStore{
		private: make(map[string]map[string]*taskdomain.Task),
		shared:  make(map[string]*taskdomain.Task),
	}
}

func (r *MemoryRemoteStore) PutPrivate(_ context.Context, ownerID string, task *taskdomain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.private[ownerID] == nil {
		r.private[ownerID] = make(map[string]*taskdomain.Task)
	}
	r.private[ownerID][task.ID] = task.Clone()
	return nil
}

func (r *MemoryRemoteStore) PutShared(_ context.Context, task *taskdomain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shared[task.ID] = task.Clone()
	return nil
}

func (r *MemoryRemoteStore) DeleteShared(_ context.Context, taskID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.shared, taskID)
	return nil
}

func (r *MemoryRemoteStore) FetchOwned(_ context.Context, ownerID string) ([]*taskdomain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var tasks []*taskdomain.Task
	for _, t := range r.private[ownerID] {
		tasks = append(tasks, t.Clone())
	}
	return tasks, nil
}

func (r *MemoryRemoteStore) FetchSharedWith(_ context.Context, userID string) ([]*taskdomain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var tasks []*taskdomain.Task
	for _, t := range r.shared {
		for _, id := range t.SharedWith {
			if id == userID {
				tasks = append(tasks, t.Clone())
				break
			}
		}
	}
	return tasks, nil
}

// SharedMirror returns the shared-partition copy of a task, for tests
func (r *MemoryRemoteStore) SharedMirror(taskID string) *taskdomain.Task {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if t, ok := r.shared[taskID]; ok {
		return t.Clone()
	}
	return nil
}

// PrivateCopy returns the owner-private copy of a task, for tests
func (r *MemoryRemoteStore) PrivateCopy(ownerID, taskID string) *taskdomain.Task {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if t, ok := r.private[ownerID][taskID]; ok {
		return t.Clone()
	}
	return nil
}
